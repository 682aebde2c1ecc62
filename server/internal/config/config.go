package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Default values for the server configuration.
const (
	DefaultHTTPPort  = 8080
	DefaultModelPath = "bdelinquency_model.json"
	DefaultThreshold = 0.50
)

// Config holds the riskpulse server configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Model      ModelConfig      `yaml:"model"`
	Assessment AssessmentConfig `yaml:"assessment"`
	Live       LiveConfig       `yaml:"live"`
}

// ServerConfig holds listener and authentication settings.
type ServerConfig struct {
	// HTTPPort is the port the form, REST API, WebSocket, and metrics
	// endpoints listen on (default 8080).
	HTTPPort int `yaml:"http_port" env:"RISKPULSE_HTTP_PORT"`

	// Auth configures how the server authenticates REST API and WebSocket
	// clients.
	Auth AuthConfig `yaml:"auth"`
}

// AuthConfig controls client authentication on /api/ and /ws/assess.
type AuthConfig struct {
	// Mode is one of: apikey | none.
	Mode string `yaml:"mode" env:"RISKPULSE_AUTH_MODE"`

	// KeyEnv is the name of the environment variable that holds the expected API key.
	KeyEnv string `yaml:"key_env"`

	// Header is the HTTP header to read the key from.
	// Defaults to "X-API-Key" if empty.
	Header string `yaml:"header"`
}

// Key returns the expected API key resolved from the environment.
func (a AuthConfig) Key() string {
	if a.KeyEnv == "" {
		return ""
	}
	return os.Getenv(a.KeyEnv)
}

// EffectiveHeader returns the configured header name, or the default "X-API-Key".
func (a AuthConfig) EffectiveHeader() string {
	if a.Header != "" {
		return a.Header
	}
	return "X-API-Key"
}

// ModelConfig locates the classifier artifact.
type ModelConfig struct {
	// Path is the artifact file loaded once at startup.
	Path string `yaml:"path" env:"RISKPULSE_MODEL_PATH"`
}

// AssessmentConfig holds assessment defaults.
type AssessmentConfig struct {
	// DefaultThreshold is pre-selected on the form and applied to API
	// requests that omit a threshold. Reloaded on config change.
	DefaultThreshold float64 `yaml:"default_threshold" env:"RISKPULSE_DEFAULT_THRESHOLD"`
}

// LiveConfig controls the WebSocket live-assessment endpoint.
type LiveConfig struct {
	// Enabled mounts /ws/assess (default true).
	Enabled bool `yaml:"enabled" env:"RISKPULSE_LIVE_ENABLED"`
}

// Load reads and parses the config file at path. An empty path skips the
// file. Defaults are applied first, then the file, then RISKPULSE_*
// environment overrides, then validation.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("server config: read %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("server config: parse yaml: %w", err)
		}
	}

	if err := ParseEnv(cfg); err != nil {
		return nil, fmt.Errorf("server config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("server config: %w", err)
	}

	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort: DefaultHTTPPort,
		},
		Model: ModelConfig{
			Path: DefaultModelPath,
		},
		Assessment: AssessmentConfig{
			DefaultThreshold: DefaultThreshold,
		},
		Live: LiveConfig{
			Enabled: true,
		},
	}
}

// validate checks structural constraints on the parsed configuration.
func validate(cfg *Config) error {
	if cfg.Server.HTTPPort <= 0 || cfg.Server.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port %d is out of range [1, 65535]", cfg.Server.HTTPPort)
	}
	switch cfg.Server.Auth.Mode {
	case "apikey", "none", "":
	default:
		return fmt.Errorf("server.auth.mode %q unknown: want apikey|none", cfg.Server.Auth.Mode)
	}
	if cfg.Model.Path == "" {
		return fmt.Errorf("model.path is required")
	}
	t := cfg.Assessment.DefaultThreshold
	if math.IsNaN(t) || t < 0 || t > 1 {
		return fmt.Errorf("assessment.default_threshold %v is out of range [0, 1]", t)
	}
	return nil
}
