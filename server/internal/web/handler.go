package web

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/riskpulse/riskpulse/pkg/types"
	"github.com/riskpulse/riskpulse/server/internal/api"
	"github.com/riskpulse/riskpulse/server/internal/assess"
	"github.com/riskpulse/riskpulse/server/internal/metrics"
	"github.com/riskpulse/riskpulse/server/internal/model"
)

//go:embed templates/*.html
var templatesFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"percent1":  func(f float64) string { return fmt.Sprintf("%.1f%%", f*100) },
	"noFactors": func() string { return assess.NoFactorsText },
}).ParseFS(templatesFS, "templates/*.html"))

// maxFormBytes caps the size of a submitted form.
const maxFormBytes = 64 << 10

// Handler serves the assessment form at "/".
type Handler struct {
	svc  *api.Service
	info model.Info
}

// New returns the form handler.
func New(svc *api.Service, info model.Info) *Handler {
	return &Handler{svc: svc, info: info}
}

// options are the select choices rendered on the form.
type options struct {
	CardTypes          []string
	EmploymentStatuses []string
	Locations          []string
	PaymentStatuses    []types.PaymentStatus
}

// month is one cell of the payment history overview.
type month struct {
	Name   string
	Field  string
	Status string
	Class  string
}

// result is the rendered outcome of a successful submission.
type result struct {
	*assess.Assessment
	Gauge   Gauge
	History []month
}

// view is the data passed to index.html.
type view struct {
	Model    model.Info
	Options  options
	Form     formValues
	Months   []month
	Errors   map[string]string
	Failure  string
	Result   *result
	Indicate struct {
		MissedHigh      int
		LateHigh        int
		UtilizationHigh string
		DebtIncomeHigh  string
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodGet:
		h.render(w, http.StatusOK, h.newView(defaultForm(h.svc.Threshold.Load())))
	case http.MethodPost:
		h.submit(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// submit handles POST /: parse, assess, and render the results panel.
func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		h.svc.Metrics.ObserveFailure(metrics.ReasonInvalid)
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	form := readForm(r.PostForm, h.svc.Threshold.Load())
	v := h.newView(form)

	in, err := form.request()
	if err != nil {
		h.svc.Metrics.ObserveFailure(metrics.ReasonInvalid)
		h.renderErr(w, v, err)
		return
	}
	out, err := h.svc.Assess(r.Context(), in)
	if err != nil {
		h.renderErr(w, v, err)
		return
	}

	v.Result = &result{
		Assessment: out,
		Gauge:      newGauge(out.Probability, out.Threshold),
		History:    v.Months,
	}
	h.render(w, http.StatusOK, v)
}

// renderErr re-renders the form with the failure described.
func (h *Handler) renderErr(w http.ResponseWriter, v view, err error) {
	var ve *assess.ValidationError
	if errors.As(err, &ve) {
		v.Errors = ve.Messages()
		h.render(w, http.StatusBadRequest, v)
		return
	}
	v.Failure = "The risk model could not score this customer. Please try again."
	h.render(w, http.StatusInternalServerError, v)
}

func (h *Handler) newView(form formValues) view {
	v := view{
		Model: h.info,
		Options: options{
			CardTypes:          types.CardTypes,
			EmploymentStatuses: types.EmploymentStatuses,
			Locations:          types.Locations,
			PaymentStatuses:    types.PaymentStatuses,
		},
		Form: form,
	}
	v.Indicate.MissedHigh = assess.MissedHigh
	v.Indicate.LateHigh = assess.LateHigh
	v.Indicate.UtilizationHigh = assess.Percent(assess.UtilizationHigh)
	v.Indicate.DebtIncomeHigh = assess.Percent(assess.DebtIncomeHigh)

	for i, s := range form.Payments {
		v.Months = append(v.Months, month{
			Name:   fmt.Sprintf("Month %d", i+1),
			Field:  monthField(i),
			Status: s,
			Class:  statusClass(types.PaymentStatus(s)),
		})
	}
	return v
}

// render executes index.html into a buffer so a template failure still
// yields a clean 500.
func (h *Handler) render(w http.ResponseWriter, code int, v view) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "index.html", v); err != nil {
		slog.Error("web: render", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	buf.WriteTo(w) //nolint:errcheck
}

func statusClass(s types.PaymentStatus) string {
	switch s {
	case types.StatusOnTime:
		return "ontime"
	case types.StatusLate:
		return "late"
	case types.StatusMissed:
		return "missed"
	}
	return "unknown"
}
