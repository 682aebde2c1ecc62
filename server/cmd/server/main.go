package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/riskpulse/riskpulse/server/internal/api"
	"github.com/riskpulse/riskpulse/server/internal/assess"
	"github.com/riskpulse/riskpulse/server/internal/auth"
	"github.com/riskpulse/riskpulse/server/internal/config"
	"github.com/riskpulse/riskpulse/server/internal/metrics"
	"github.com/riskpulse/riskpulse/server/internal/model"
	"github.com/riskpulse/riskpulse/server/internal/web"
	"github.com/riskpulse/riskpulse/server/internal/ws"
)

// shutdownTimeout bounds graceful shutdown of in-flight requests.
const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "", "path to config file; empty uses built-in defaults and RISKPULSE_* env vars")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, *configPath); err != nil {
		slog.Error("riskpulse-server exiting", "err", err)
		cancel()
		os.Exit(1)
	}
}

// run loads the config and model, then serves until ctx is cancelled. It
// returns before listening when the model cannot be loaded.
func run(ctx context.Context, configPath string) error {
	slog.Info("riskpulse-server starting", "config", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	slog.Info("config loaded",
		"http_port", cfg.Server.HTTPPort,
		"auth_mode", cfg.Server.Auth.Mode,
		"model_path", cfg.Model.Path,
		"default_threshold", cfg.Assessment.DefaultThreshold,
		"live", cfg.Live.Enabled,
	)

	// The classifier is loaded once; every handler shares it read-only.
	clf, err := model.Load(cfg.Model.Path)
	if errors.Is(err, model.ErrArtifactNotFound) {
		slog.Error(fmt.Sprintf("Model not found! Please train and upload `%s`.", cfg.Model.Path))
		return err
	}
	if err != nil {
		return fmt.Errorf("load model: %w", err)
	}
	info := clf.Info()
	slog.Info("Model loaded successfully!", "name", info.Name, "version", info.Version)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	threshold := assess.NewDefaultThreshold(cfg.Assessment.DefaultThreshold)
	reg := metrics.New(info.Name, info.Version, threshold.Load)
	svc := &api.Service{
		Adapter:   assess.NewAdapter(clf),
		Threshold: threshold,
		Metrics:   reg,
	}

	// Live assessment hub; nil when disabled.
	var hub *ws.Hub
	if cfg.Live.Enabled {
		hub = ws.New(svc)
		go hub.Run(ctx)
	}

	// Hot-reload the default threshold. The model is never reloaded.
	if configPath != "" {
		go func() {
			err := config.Watch(ctx, configPath, func(c *config.Config) {
				next := c.Assessment.DefaultThreshold
				if next == threshold.Load() {
					return
				}
				threshold.Store(next)
				if hub != nil {
					hub.NotifyThreshold(next)
				}
				slog.Info("config: default threshold reloaded", "default_threshold", next)
			})
			if err != nil {
				slog.Warn("config watch stopped", "err", err)
			}
		}()
	}

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Server.HTTPPort))
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	httpSrv := &http.Server{
		Handler:           routes(cfg.Server.Auth, svc, info, hub, reg),
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", cfg.Server.HTTPPort)
		if err := httpSrv.Serve(ln); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}
	slog.Info("riskpulse-server shutting down")
	shutdownCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
	defer done()
	httpSrv.Shutdown(shutdownCtx) //nolint:errcheck
	return nil
}

// routes mounts the form, REST API, WebSocket, and metrics on one mux. The
// REST API and the WebSocket share the API-key check; hub may be nil.
func routes(a config.AuthConfig, svc *api.Service, info model.Info, hub *ws.Hub, reg *metrics.Registry) http.Handler {
	withKey := func(next http.Handler) http.Handler {
		return auth.APIKey(a.Mode, a.EffectiveHeader(), a.Key(), next)
	}

	mux := http.NewServeMux()
	mux.Handle("/api/", withKey(api.New(svc, info)))
	if hub != nil {
		mux.Handle("/ws/assess", withKey(hub))
	}
	mux.Handle("/metrics", reg)
	mux.Handle("/", web.New(svc, info))
	return mux
}
