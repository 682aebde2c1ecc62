package assess

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/riskpulse/riskpulse/pkg/types"
)

// FieldError describes one invalid request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every invalid field of a request.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "assess: invalid request: " + strings.Join(parts, "; ")
}

// Messages returns the field errors keyed by field name.
func (e *ValidationError) Messages() map[string]string {
	out := make(map[string]string, len(e.Fields))
	for _, f := range e.Fields {
		out[f.Field] = f.Message
	}
	return out
}

// Validate checks req against the form bounds and enumerations. It returns a
// *ValidationError naming every offending field, or nil.
func Validate(req types.Request) error {
	var v validator

	v.intRange("age", req.Age, types.MinAge, types.MaxAge)
	v.nonNegative("income", req.Income)
	v.intRange("credit_score", req.CreditScore, types.MinCreditScore, types.MaxCreditScore)
	v.unit("credit_utilization", req.CreditUtilization)
	v.nonNegative("loan_balance", req.LoanBalance)
	v.unit("debt_to_income", req.DebtToIncome)
	v.intRange("tenure_months", req.TenureMonths, types.MinTenure, types.MaxTenure)
	v.oneOf("card_type", req.CardType, types.CardTypes)
	v.oneOf("employment_status", req.EmploymentStatus, types.EmploymentStatuses)
	v.oneOf("location", req.Location, types.Locations)
	for i, s := range req.Payments {
		if !s.Valid() {
			v.add(fmt.Sprintf("payments[%d]", i), fmt.Sprintf("%q is not one of On-time, Late, Missed", s))
		}
	}

	if len(v.errs) == 0 {
		return nil
	}
	return &ValidationError{Fields: v.errs}
}

// ValidateThreshold checks that t lies in [0, 1].
func ValidateThreshold(t float64) error {
	if math.IsNaN(t) || t < 0 || t > 1 {
		return &ValidationError{Fields: []FieldError{{Field: "threshold", Message: "must be between 0 and 1"}}}
	}
	return nil
}

type validator struct {
	errs []FieldError
}

func (v *validator) add(field, msg string) {
	v.errs = append(v.errs, FieldError{Field: field, Message: msg})
}

func (v *validator) intRange(field string, n, lo, hi int) {
	if n < lo || n > hi {
		v.add(field, fmt.Sprintf("must be between %d and %d", lo, hi))
	}
}

func (v *validator) nonNegative(field string, f float64) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		v.add(field, "must be a non-negative number")
	}
}

func (v *validator) unit(field string, f float64) {
	if math.IsNaN(f) || f < 0 || f > 1 {
		v.add(field, "must be between 0 and 1")
	}
}

func (v *validator) oneOf(field, value string, options []string) {
	if !slices.Contains(options, value) {
		v.add(field, fmt.Sprintf("%q is not one of %s", value, strings.Join(options, ", ")))
	}
}
