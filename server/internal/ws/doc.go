// Package ws implements the live-assessment WebSocket endpoint for
// riskpulse-server.
//
// New(svc) creates a Hub that scores requests through the same service as
// POST /api/v1/assess.
// Hub.Run(ctx) blocks until ctx is cancelled, then closes all active
// connections.
// Hub.ServeHTTP upgrades an HTTP connection to WebSocket, sends the current
// default threshold immediately on connect, then answers every text frame.
// Hub.NotifyThreshold broadcasts a reloaded default threshold to all clients.
//
// Each inbound frame is an assessment request with the same schema as
// POST /api/v1/assess. Replies use one envelope:
//
//	{"event": "assessment", "data": { /* same schema as the REST response */ }}
//	{"event": "error",      "data": {"error": "...", "fields": [...]}}
//	{"event": "threshold",  "data": {"default_threshold": 0.5}}
//
// The upgrader accepts all origins. Apply CORS restrictions at the reverse
// proxy level. The endpoint is mounted at /ws/assess by the server, behind
// the same API-key middleware as /api/. Frames that fail to decode count as
// invalid assessment failures.
package ws
