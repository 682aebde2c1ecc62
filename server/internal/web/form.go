package web

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/riskpulse/riskpulse/pkg/types"
	"github.com/riskpulse/riskpulse/server/internal/api"
	"github.com/riskpulse/riskpulse/server/internal/assess"
)

// Form field names.
const (
	fieldAge          = "age"
	fieldIncome       = "income"
	fieldCreditScore  = "credit_score"
	fieldUtilization  = "credit_utilization"
	fieldLoanBalance  = "loan_balance"
	fieldDebtToIncome = "debt_to_income"
	fieldTenure       = "tenure_months"
	fieldCardType     = "card_type"
	fieldEmployment   = "employment_status"
	fieldLocation     = "location"
	fieldThreshold    = "threshold"
)

// monthField returns the form field name of month i (0-based).
func monthField(i int) string {
	return fmt.Sprintf("month_%d", i+1)
}

// formValues holds the raw form inputs so a rejected submission re-renders
// exactly as typed.
type formValues struct {
	Age          string
	Income       string
	CreditScore  string
	Utilization  string
	LoanBalance  string
	DebtToIncome string
	Tenure       string
	CardType     string
	Employment   string
	Location     string
	Payments     [types.HistoryMonths]string
	Threshold    string
}

// defaultForm returns the form pre-filled with the default request.
func defaultForm(threshold float64) formValues {
	d := types.DefaultRequest()
	f := formValues{
		Age:          strconv.Itoa(d.Age),
		Income:       twoPlaces(d.Income),
		CreditScore:  strconv.Itoa(d.CreditScore),
		Utilization:  twoPlaces(d.CreditUtilization),
		LoanBalance:  twoPlaces(d.LoanBalance),
		DebtToIncome: twoPlaces(d.DebtToIncome),
		Tenure:       strconv.Itoa(d.TenureMonths),
		CardType:     d.CardType,
		Employment:   d.EmploymentStatus,
		Location:     d.Location,
		Threshold:    twoPlaces(threshold),
	}
	for i, s := range d.Payments {
		f.Payments[i] = string(s)
	}
	return f
}

// readForm copies the submitted values. A missing threshold falls back to
// the server default.
func readForm(v url.Values, threshold float64) formValues {
	get := func(k string) string { return strings.TrimSpace(v.Get(k)) }
	f := formValues{
		Age:          get(fieldAge),
		Income:       get(fieldIncome),
		CreditScore:  get(fieldCreditScore),
		Utilization:  get(fieldUtilization),
		LoanBalance:  get(fieldLoanBalance),
		DebtToIncome: get(fieldDebtToIncome),
		Tenure:       get(fieldTenure),
		CardType:     get(fieldCardType),
		Employment:   get(fieldEmployment),
		Location:     get(fieldLocation),
		Threshold:    get(fieldThreshold),
	}
	for i := range f.Payments {
		f.Payments[i] = get(monthField(i))
	}
	if f.Threshold == "" {
		f.Threshold = twoPlaces(threshold)
	}
	return f
}

// request converts the raw values into an assessment request. Values that do
// not parse as numbers are reported together as a *assess.ValidationError.
func (f formValues) request() (api.AssessRequest, error) {
	var (
		in   api.AssessRequest
		errs []assess.FieldError
	)
	parseInt := func(field, raw string, dst *int) {
		n, err := strconv.Atoi(raw)
		if err != nil {
			errs = append(errs, assess.FieldError{Field: field, Message: "must be a whole number"})
			return
		}
		*dst = n
	}
	parseFloat := func(field, raw string, dst *float64) {
		x, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			errs = append(errs, assess.FieldError{Field: field, Message: "must be a number"})
			return
		}
		*dst = x
	}

	parseInt(fieldAge, f.Age, &in.Age)
	parseFloat(fieldIncome, f.Income, &in.Income)
	parseInt(fieldCreditScore, f.CreditScore, &in.CreditScore)
	parseFloat(fieldUtilization, f.Utilization, &in.CreditUtilization)
	parseFloat(fieldLoanBalance, f.LoanBalance, &in.LoanBalance)
	parseFloat(fieldDebtToIncome, f.DebtToIncome, &in.DebtToIncome)
	parseInt(fieldTenure, f.Tenure, &in.TenureMonths)

	var threshold float64
	parseFloat(fieldThreshold, f.Threshold, &threshold)
	in.Threshold = &threshold

	in.CardType = f.CardType
	in.EmploymentStatus = f.Employment
	in.Location = f.Location
	in.Payments = make([]types.PaymentStatus, types.HistoryMonths)
	for i, s := range f.Payments {
		in.Payments[i] = types.PaymentStatus(s)
	}

	if len(errs) > 0 {
		return in, &assess.ValidationError{Fields: errs}
	}
	return in, nil
}

// twoPlaces formats v the way the number inputs display it.
func twoPlaces(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }
