// Package web serves the server-rendered assessment form at "/".
//
// GET / renders the form pre-filled with the default customer and the
// current default threshold. POST / scores the submission through the same
// service as the REST API and renders the results panel below the form:
// probability bar, SVG gauge, headline with recommended actions, key
// metrics, payment history, and the expandable risk-factor breakdown.
//
// Invalid input re-renders the form as submitted with a message beside each
// offending field and status 400. Templates are embedded from templates/.
package web
