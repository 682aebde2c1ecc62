package ws_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/riskpulse/riskpulse/pkg/types"
	"github.com/riskpulse/riskpulse/server/internal/api"
	"github.com/riskpulse/riskpulse/server/internal/assess"
	"github.com/riskpulse/riskpulse/server/internal/metrics"
	"github.com/riskpulse/riskpulse/server/internal/model"
	wsHub "github.com/riskpulse/riskpulse/server/internal/ws"
)

// --- helpers ----------------------------------------------------------------

// envelope mirrors ws.Message with a raw payload for two-step decoding.
type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func newService(t *testing.T) *api.Service {
	t.Helper()
	m, err := model.Load("../model/testdata/missed_only.json")
	if err != nil {
		t.Fatalf("load model: %v", err)
	}
	th := assess.NewDefaultThreshold(0.5)
	return &api.Service{
		Adapter:   assess.NewAdapter(m),
		Threshold: th,
		Metrics:   metrics.New("missed-only", "2.0", th.Load),
	}
}

// startHub starts a test HTTP server with the hub as its handler.
// The hub's Run loop is started with a cancellable context.
// Returns the ws:// URL, the hub, and a cancel function.
func startHub(t *testing.T) (wsURL string, hub *wsHub.Hub, cancel func()) {
	t.Helper()
	return startHubWith(t, newService(t))
}

// startHubWith is startHub over a caller-supplied service.
func startHubWith(t *testing.T, svc *api.Service) (wsURL string, hub *wsHub.Hub, cancel func()) {
	t.Helper()

	hub = wsHub.New(svc)
	ctx, cancelFn := context.WithCancel(context.Background())

	srv := httptest.NewServer(http.HandlerFunc(hub.ServeHTTP))
	go hub.Run(ctx)

	t.Cleanup(func() {
		cancelFn()
		srv.Close()
	})

	wsURL = "ws" + strings.TrimPrefix(srv.URL, "http")
	return wsURL, hub, cancelFn
}

// dial connects a WebSocket client to wsURL and returns the connection.
func dial(t *testing.T, wsURL string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", wsURL, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readMessage reads one envelope from conn with a short deadline.
func readMessage(t *testing.T, conn *websocket.Conn) envelope {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	var e envelope
	if err := json.Unmarshal(msg, &e); err != nil {
		t.Fatalf("unmarshal %s: %v", msg, err)
	}
	return e
}

func request(missed int) api.AssessRequest {
	req := types.DefaultRequest()
	in := api.AssessRequest{
		Age:               req.Age,
		Income:            req.Income,
		CreditScore:       req.CreditScore,
		CreditUtilization: req.CreditUtilization,
		LoanBalance:       req.LoanBalance,
		DebtToIncome:      req.DebtToIncome,
		TenureMonths:      req.TenureMonths,
		CardType:          req.CardType,
		EmploymentStatus:  req.EmploymentStatus,
		Location:          req.Location,
		Payments:          req.Payments[:],
	}
	for i := 0; i < missed; i++ {
		in.Payments[i] = types.StatusMissed
	}
	return in
}

// --- tests ------------------------------------------------------------------

func TestHub_Connect_ReceivesThreshold(t *testing.T) {
	wsURL, _, _ := startHub(t)
	conn := dial(t, wsURL)

	e := readMessage(t, conn)
	if e.Event != wsHub.EventThreshold {
		t.Fatalf("event: got %q, want threshold", e.Event)
	}
	var d wsHub.ThresholdData
	json.Unmarshal(e.Data, &d) //nolint:errcheck
	if d.DefaultThreshold != 0.5 {
		t.Errorf("default_threshold: got %v, want 0.5", d.DefaultThreshold)
	}
}

func TestHub_AssessRoundTrip(t *testing.T) {
	wsURL, _, _ := startHub(t)
	conn := dial(t, wsURL)
	readMessage(t, conn) // consume greeting

	for _, tc := range []struct {
		missed int
		high   bool
	}{
		{0, false},
		{3, true},
	} {
		if err := conn.WriteJSON(request(tc.missed)); err != nil {
			t.Fatalf("WriteJSON: %v", err)
		}
		e := readMessage(t, conn)
		if e.Event != wsHub.EventAssessment {
			t.Fatalf("missed=%d: event %q, want assessment (data %s)", tc.missed, e.Event, e.Data)
		}
		var out assess.Assessment
		if err := json.Unmarshal(e.Data, &out); err != nil {
			t.Fatalf("unmarshal assessment: %v", err)
		}
		if out.HighRisk != tc.high {
			t.Errorf("missed=%d: high_risk got %v, want %v", tc.missed, out.HighRisk, tc.high)
		}
		if out.Counts.Missed != tc.missed {
			t.Errorf("derived.missed_count: got %d, want %d", out.Counts.Missed, tc.missed)
		}
	}
}

func TestHub_InvalidRequest_ErrorEvent(t *testing.T) {
	wsURL, _, _ := startHub(t)
	conn := dial(t, wsURL)
	readMessage(t, conn)

	in := request(0)
	in.CreditScore = 900
	conn.WriteJSON(in) //nolint:errcheck
	e := readMessage(t, conn)
	if e.Event != wsHub.EventError {
		t.Fatalf("event: got %q, want error", e.Event)
	}
	var body api.ErrorResponse
	json.Unmarshal(e.Data, &body) //nolint:errcheck
	if len(body.Fields) != 1 || body.Fields[0].Field != "credit_score" {
		t.Errorf("fields: got %+v, want credit_score", body.Fields)
	}

	// Malformed frames do not close the connection.
	conn.WriteMessage(websocket.TextMessage, []byte("not json")) //nolint:errcheck
	if e := readMessage(t, conn); e.Event != wsHub.EventError {
		t.Errorf("event: got %q, want error", e.Event)
	}
	conn.WriteJSON(request(0)) //nolint:errcheck
	if e := readMessage(t, conn); e.Event != wsHub.EventAssessment {
		t.Errorf("event after error: got %q, want assessment", e.Event)
	}
}

func TestHub_InvalidFrames_CountedAsFailures(t *testing.T) {
	svc := newService(t)
	wsURL, _, _ := startHubWith(t, svc)
	conn := dial(t, wsURL)
	readMessage(t, conn)

	conn.WriteMessage(websocket.TextMessage, []byte("not json")) //nolint:errcheck
	readMessage(t, conn)
	conn.WriteMessage(websocket.TextMessage, []byte(`{"age":35,"surprise":true}`)) //nolint:errcheck
	readMessage(t, conn)
	in := request(0)
	in.CreditScore = 900
	conn.WriteJSON(in) //nolint:errcheck
	readMessage(t, conn)

	var invalid float64
	for _, mf := range svc.Metrics.Gather() {
		if mf.GetName() != "riskpulse_assessment_failures_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetValue() == metrics.ReasonInvalid {
					invalid = m.GetCounter().GetValue()
				}
			}
		}
	}
	if invalid != 3 {
		t.Errorf("invalid failures: got %v, want 3", invalid)
	}
}

func TestHub_NotifyThreshold_Broadcasts(t *testing.T) {
	wsURL, hub, _ := startHub(t)

	conns := make([]*websocket.Conn, 3)
	for i := range conns {
		conns[i] = dial(t, wsURL)
		readMessage(t, conns[i])
	}
	time.Sleep(10 * time.Millisecond)

	hub.NotifyThreshold(0.65)
	for i, conn := range conns {
		e := readMessage(t, conn)
		var d wsHub.ThresholdData
		json.Unmarshal(e.Data, &d) //nolint:errcheck
		if e.Event != wsHub.EventThreshold || d.DefaultThreshold != 0.65 {
			t.Errorf("client %d: got %s %s", i, e.Event, e.Data)
		}
	}
}

func TestHub_CountClients(t *testing.T) {
	wsURL, hub, _ := startHub(t)

	for i := 0; i < 3; i++ {
		conn := dial(t, wsURL)
		readMessage(t, conn)
	}

	time.Sleep(10 * time.Millisecond)
	if n := hub.Count(); n != 3 {
		t.Errorf("Count: got %d, want 3", n)
	}
}

func TestHub_CountClients_DecreasesOnDisconnect(t *testing.T) {
	wsURL, hub, _ := startHub(t)

	conn := dial(t, wsURL)
	readMessage(t, conn)
	time.Sleep(10 * time.Millisecond)

	if n := hub.Count(); n != 1 {
		t.Errorf("Count before disconnect: got %d, want 1", n)
	}

	conn.Close()
	time.Sleep(50 * time.Millisecond) // let readPump detect the close

	if n := hub.Count(); n != 0 {
		t.Errorf("Count after disconnect: got %d, want 0", n)
	}
}

func TestHub_CancelContextClosesConnections(t *testing.T) {
	wsURL, hub, cancel := startHub(t)

	conn := dial(t, wsURL)
	readMessage(t, conn)
	time.Sleep(10 * time.Millisecond)

	cancel()

	time.Sleep(50 * time.Millisecond)
	if n := hub.Count(); n != 0 {
		t.Errorf("Count after cancel: got %d, want 0", n)
	}
}

func TestHub_NonWebSocketRequest_Returns400(t *testing.T) {
	hub := wsHub.New(newService(t))
	srv := httptest.NewServer(http.HandlerFunc(hub.ServeHTTP))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", resp.StatusCode)
	}
}
