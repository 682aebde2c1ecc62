// Package config loads and watches the riskpulse server configuration.
//
// Config fields:
//   - Server.HTTPPort               port for every HTTP surface (default 8080)
//   - Server.Auth.Mode              "apikey" or "none"
//   - Server.Auth.KeyEnv            environment variable holding the expected API key
//   - Server.Auth.Header            HTTP header name (default "X-API-Key")
//   - Model.Path                    classifier artifact (default bdelinquency_model.json)
//   - Assessment.DefaultThreshold   form and API default threshold (default 0.50)
//   - Live.Enabled                  mount the WebSocket endpoint (default true)
//
// Load(path) applies defaults, unmarshals the YAML file when path is set,
// overlays RISKPULSE_* environment variables, then validates.
//
// Watch(ctx, path, onChange) uses fsnotify to detect writes and calls
// onChange with the reparsed Config. Only settings that are safe to swap at
// runtime are applied by the server; the model path is read once.
package config
