// Package api implements the HTTP REST API for riskpulse-server.
//
// New(svc, info) returns an http.Handler that serves:
//
//	POST /api/v1/assess   score one customer ([AssessRequest] → assess.Assessment)
//	GET  /api/v1/options  enumerations, numeric bounds, form defaults
//	GET  /api/v1/model    loaded model name, version, feature columns
//	GET  /api/v1/health   liveness plus model identity
//
// All endpoints:
//   - Respond with Content-Type: application/json
//   - Return 405 for the wrong method
//   - Return {"error": "..."} bodies on failure; validation failures add a
//     "fields" list and use status 400
//
// JSON types are defined in types.go. No external HTTP framework is used.
package api
