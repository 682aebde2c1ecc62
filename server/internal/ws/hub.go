package ws

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/riskpulse/riskpulse/server/internal/api"
	"github.com/riskpulse/riskpulse/server/internal/metrics"
)

const (
	// writeTimeout is the deadline for a single write to a client.
	writeTimeout = 10 * time.Second

	// pongWait is how long to wait for a pong response before treating the
	// connection as dead.
	pongWait = 60 * time.Second

	// pingPeriod controls how often the server sends WebSocket ping frames.
	// Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// sendBufSize is the per-client outgoing message buffer depth.
	sendBufSize = 16

	// maxMessageBytes caps one inbound assessment request.
	maxMessageBytes = 64 << 10
)

// Event names carried in Message.Event.
const (
	EventThreshold  = "threshold"
	EventAssessment = "assessment"
	EventError      = "error"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// Allow all origins. Callers should apply CORS at the reverse-proxy level.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Message is the JSON envelope sent to clients.
type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// ThresholdData is the payload of a threshold event.
type ThresholdData struct {
	DefaultThreshold float64 `json:"default_threshold"`
}

// Hub manages live-assessment clients. Each inbound text frame is scored and
// answered on the same connection; default-threshold changes are broadcast
// to every client.
type Hub struct {
	svc *api.Service

	mu      sync.RWMutex
	clients map[*client]struct{}
}

// client represents one connected WebSocket client.
type client struct {
	conn *websocket.Conn
	send chan []byte
}

// New creates a Hub that scores requests with svc.
func New(svc *api.Service) *Hub {
	return &Hub{
		svc:     svc,
		clients: make(map[*client]struct{}),
	}
}

// Run blocks until ctx is cancelled, then closes all active connections.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()
	h.closeAll()
}

// ServeHTTP upgrades the HTTP connection to WebSocket and serves the client.
// The current default threshold is sent immediately on connect. Blocks until
// the connection closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader has already written the error response.
		return
	}

	c := &client{
		conn: conn,
		send: make(chan []byte, sendBufSize),
	}
	h.register(c)
	defer h.unregister(c)

	if data, err := thresholdMessage(h.svc.Threshold.Load()); err == nil {
		h.enqueue(c, data)
	}

	go c.writePump()
	h.readPump(r.Context(), c) // blocks until connection closes
}

// NotifyThreshold broadcasts a new default threshold to all clients.
func (h *Hub) NotifyThreshold(threshold float64) {
	data, err := thresholdMessage(threshold)
	if err != nil {
		return
	}
	h.broadcast(data)
}

// Count returns the number of currently connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// --- internal ---------------------------------------------------------------

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// enqueue queues data for c. It reports false if c is gone or its buffer is
// full. Sends happen under the read lock so they never race a close.
func (h *Hub) enqueue(c *client, data []byte) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.clients[c]; !ok {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (h *Hub) broadcast(data []byte) {
	var slow []*client
	h.mu.RLock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	// Client's outgoing buffer is full, disconnect it.
	for _, c := range slow {
		h.unregister(c)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
}

// handle scores one inbound frame and returns the encoded reply.
func (h *Hub) handle(ctx context.Context, frame []byte) ([]byte, error) {
	var in api.AssessRequest
	dec := json.NewDecoder(bytes.NewReader(frame))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		h.svc.Metrics.ObserveFailure(metrics.ReasonInvalid)
		return json.Marshal(Message{Event: EventError, Data: api.ErrorResponse{Error: "invalid request body"}})
	}

	out, err := h.svc.Assess(ctx, in)
	if err != nil {
		_, body := api.ErrorBody(err)
		return json.Marshal(Message{Event: EventError, Data: body})
	}
	return json.Marshal(Message{Event: EventAssessment, Data: out})
}

func thresholdMessage(threshold float64) ([]byte, error) {
	return json.Marshal(Message{
		Event: EventThreshold,
		Data:  ThresholdData{DefaultThreshold: threshold},
	})
}

// writePump drains the client's send channel and forwards messages to the
// WebSocket connection. It also sends periodic ping frames. Runs in its own
// goroutine per client.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				// Channel was closed (hub is shutting down or client removed).
				c.conn.WriteMessage(websocket.CloseMessage, []byte{}) //nolint:errcheck
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump reads assessment requests from the connection and queues one
// reply per request. Blocks until the connection closes.
func (h *Hub) readPump(ctx context.Context, c *client) {
	defer c.conn.Close()
	c.conn.SetReadLimit(maxMessageBytes)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		kind, frame, err := c.conn.ReadMessage()
		if err != nil {
			break
		}
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		if kind != websocket.TextMessage {
			continue
		}

		reply, err := h.handle(ctx, frame)
		if err != nil {
			slog.Error("ws: encode reply", "err", err)
			continue
		}
		if !h.enqueue(c, reply) {
			slog.Warn("ws: dropping slow client")
			break
		}
	}
}
