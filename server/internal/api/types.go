package api

import (
	"github.com/riskpulse/riskpulse/pkg/types"
	"github.com/riskpulse/riskpulse/server/internal/assess"
)

// AssessRequest is the payload for POST /api/v1/assess.
type AssessRequest struct {
	Age               int                   `json:"age"`
	Income            float64               `json:"income"`
	CreditScore       int                   `json:"credit_score"`
	CreditUtilization float64               `json:"credit_utilization"`
	LoanBalance       float64               `json:"loan_balance"`
	DebtToIncome      float64               `json:"debt_to_income"`
	TenureMonths      int                   `json:"tenure_months"`
	CardType          string                `json:"card_type"`
	EmploymentStatus  string                `json:"employment_status"`
	Location          string                `json:"location"`
	Payments          []types.PaymentStatus `json:"payments"`

	// Threshold overrides the server default when set.
	Threshold *float64 `json:"threshold,omitempty"`
}

// HealthResponse is the payload for GET /api/v1/health.
type HealthResponse struct {
	Status       string `json:"status"`
	ModelName    string `json:"model_name"`
	ModelVersion string `json:"model_version"`
}

// Bounds is the accepted range of one numeric field. Max is omitted for
// unbounded fields.
type Bounds struct {
	Min  float64  `json:"min"`
	Max  *float64 `json:"max,omitempty"`
	Step float64  `json:"step"`
}

// OptionsResponse is the payload for GET /api/v1/options. It carries
// everything a client needs to render the form.
type OptionsResponse struct {
	CardTypes          []string              `json:"card_types"`
	EmploymentStatuses []string              `json:"employment_statuses"`
	Locations          []string              `json:"locations"`
	PaymentStatuses    []types.PaymentStatus `json:"payment_statuses"`
	Bounds             map[string]Bounds     `json:"bounds"`
	Defaults           types.Request         `json:"defaults"`
	DefaultThreshold   float64               `json:"default_threshold"`
}

// ErrorResponse is a generic JSON error body.
type ErrorResponse struct {
	Error  string              `json:"error"`
	Fields []assess.FieldError `json:"fields,omitempty"`
}
