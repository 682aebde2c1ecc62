// Package types defines the domain types shared by every riskpulse surface
// (HTML form, JSON API, WebSocket): the prediction request, its enumerated
// fields, and the bounds each numeric field must respect.
package types
