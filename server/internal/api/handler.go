package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/riskpulse/riskpulse/pkg/types"
	"github.com/riskpulse/riskpulse/server/internal/assess"
	"github.com/riskpulse/riskpulse/server/internal/metrics"
	"github.com/riskpulse/riskpulse/server/internal/model"
)

// maxBodyBytes caps the size of an assessment request body.
const maxBodyBytes = 64 << 10

// Handler is the HTTP handler for all /api/v1/* endpoints.
type Handler struct {
	svc  *Service
	info model.Info
	mux  *http.ServeMux
}

// New creates a Handler wired to svc and registers all routes.
func New(svc *Service, info model.Info) http.Handler {
	h := &Handler{
		svc:  svc,
		info: info,
		mux:  http.NewServeMux(),
	}

	h.mux.HandleFunc("/api/v1/assess", h.assess)
	h.mux.HandleFunc("/api/v1/options", h.options)
	h.mux.HandleFunc("/api/v1/model", h.model)
	h.mux.HandleFunc("/api/v1/health", h.health)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// --- route handlers ---------------------------------------------------------

// assess handles POST /api/v1/assess.
func (h *Handler) assess(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var in AssessRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		h.svc.Metrics.ObserveFailure(metrics.ReasonInvalid)
		jsonErr(w, http.StatusBadRequest, "invalid request body")
		return
	}

	out, err := h.svc.Assess(r.Context(), in)
	if err != nil {
		writeAssessErr(w, err)
		return
	}
	jsonResp(w, http.StatusOK, out)
}

// options handles GET /api/v1/options.
func (h *Handler) options(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, OptionsResponse{
		CardTypes:          types.CardTypes,
		EmploymentStatuses: types.EmploymentStatuses,
		Locations:          types.Locations,
		PaymentStatuses:    types.PaymentStatuses,
		Bounds:             fieldBounds(),
		Defaults:           types.DefaultRequest(),
		DefaultThreshold:   h.svc.Threshold.Load(),
	})
}

// model handles GET /api/v1/model.
func (h *Handler) model(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, h.info)
}

// health handles GET /api/v1/health. A running server always has a model.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, HealthResponse{
		Status:       "ok",
		ModelName:    h.info.Name,
		ModelVersion: h.info.Version,
	})
}

// --- shared with the WebSocket endpoint -------------------------------------

// Service scores wire payloads and records the outcome. It is shared by the
// REST handler and the live WebSocket endpoint.
type Service struct {
	Adapter   *assess.Adapter
	Threshold *assess.DefaultThreshold
	Metrics   *metrics.Registry
}

// Assess converts in to a domain request, resolves the threshold, and
// assesses it.
func (s *Service) Assess(ctx context.Context, in AssessRequest) (*assess.Assessment, error) {
	req, err := in.ToRequest()
	if err != nil {
		s.Metrics.ObserveFailure(metrics.ReasonInvalid)
		return nil, err
	}

	threshold := s.Threshold.Load()
	if in.Threshold != nil {
		threshold = *in.Threshold
	}

	out, err := s.Adapter.Assess(ctx, req, threshold)
	switch {
	case err == nil:
		s.Metrics.ObserveAssessment(out.Probability, out.HighRisk)
	case errors.Is(err, assess.ErrClassifier):
		s.Metrics.ObserveFailure(metrics.ReasonClassifier)
		slog.ErrorContext(ctx, "api: classifier failed", "err", err)
	default:
		s.Metrics.ObserveFailure(metrics.ReasonInvalid)
	}
	return out, err
}

// ToRequest converts the wire payload to a types.Request. A payment list of
// the wrong length is reported as a validation error.
func (in AssessRequest) ToRequest() (types.Request, error) {
	req := types.Request{
		Age:               in.Age,
		Income:            in.Income,
		CreditScore:       in.CreditScore,
		CreditUtilization: in.CreditUtilization,
		LoanBalance:       in.LoanBalance,
		DebtToIncome:      in.DebtToIncome,
		TenureMonths:      in.TenureMonths,
		CardType:          in.CardType,
		EmploymentStatus:  in.EmploymentStatus,
		Location:          in.Location,
	}
	if len(in.Payments) != types.HistoryMonths {
		return req, &assess.ValidationError{Fields: []assess.FieldError{{
			Field:   "payments",
			Message: fmt.Sprintf("must list exactly %d months, got %d", types.HistoryMonths, len(in.Payments)),
		}}}
	}
	copy(req.Payments[:], in.Payments)
	return req, nil
}

// --- helpers ----------------------------------------------------------------

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, ErrorResponse{Error: msg})
}

// writeAssessErr maps an assessment error to a status code and JSON body.
func writeAssessErr(w http.ResponseWriter, err error) {
	code, body := ErrorBody(err)
	jsonResp(w, code, body)
}

// ErrorBody returns the HTTP status and JSON body describing err.
func ErrorBody(err error) (int, ErrorResponse) {
	var ve *assess.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, ErrorResponse{Error: "invalid request", Fields: ve.Fields}
	}
	return http.StatusInternalServerError, ErrorResponse{Error: "assessment failed"}
}

// fieldBounds describes the numeric inputs as the form renders them.
func fieldBounds() map[string]Bounds {
	upper := func(v float64) *float64 { return &v }
	return map[string]Bounds{
		"age":                {Min: types.MinAge, Max: upper(types.MaxAge), Step: 1},
		"income":             {Min: 0, Step: 0.01},
		"credit_score":       {Min: types.MinCreditScore, Max: upper(types.MaxCreditScore), Step: 1},
		"credit_utilization": {Min: 0, Max: upper(1), Step: 0.01},
		"loan_balance":       {Min: 0, Step: 0.01},
		"debt_to_income":     {Min: 0, Max: upper(1), Step: 0.01},
		"tenure_months":      {Min: types.MinTenure, Max: upper(types.MaxTenure), Step: 1},
		"threshold":          {Min: 0, Max: upper(1), Step: 0.01},
	}
}
