package types

// PaymentStatus is the outcome of one monthly payment.
type PaymentStatus string

// Payment statuses accepted for each of the six history months.
const (
	StatusOnTime PaymentStatus = "On-time"
	StatusLate   PaymentStatus = "Late"
	StatusMissed PaymentStatus = "Missed"
)

// HistoryMonths is the number of monthly statuses in a request.
const HistoryMonths = 6

// PaymentStatuses lists the statuses in display order.
var PaymentStatuses = []PaymentStatus{StatusOnTime, StatusLate, StatusMissed}

// CardTypes lists the accepted credit card types in display order.
var CardTypes = []string{"Standard", "Gold", "Platinum", "Student", "Business"}

// EmploymentStatuses lists the accepted employment statuses in display order.
var EmploymentStatuses = []string{"Employed", "Self-employed", "Unemployed", "Retired"}

// Locations lists the accepted customer locations in display order.
var Locations = []string{"New York", "Los Angeles", "Chicago", "Houston", "Phoenix"}

// Numeric bounds for the request fields. Income and loan balance have no
// upper bound.
const (
	MinAge         = 18
	MaxAge         = 100
	MinCreditScore = 300
	MaxCreditScore = 850
	MinTenure      = 0
	MaxTenure      = 120
)

// Request is one customer submission. It lives for a single assessment and
// is never stored.
type Request struct {
	Age               int     `json:"age"`
	Income            float64 `json:"income"`
	CreditScore       int     `json:"credit_score"`
	CreditUtilization float64 `json:"credit_utilization"`
	LoanBalance       float64 `json:"loan_balance"`
	DebtToIncome      float64 `json:"debt_to_income"`
	TenureMonths      int     `json:"tenure_months"`
	CardType          string  `json:"card_type"`
	EmploymentStatus  string  `json:"employment_status"`
	Location          string  `json:"location"`

	// Payments holds the statuses for months 1 through 6, in order.
	Payments [HistoryMonths]PaymentStatus `json:"payments"`
}

// DefaultRequest returns the values the form is pre-filled with.
func DefaultRequest() Request {
	r := Request{
		Age:               35,
		Income:            50000,
		CreditScore:       650,
		CreditUtilization: 0.30,
		LoanBalance:       20000,
		DebtToIncome:      0.30,
		TenureMonths:      24,
		CardType:          CardTypes[0],
		EmploymentStatus:  EmploymentStatuses[0],
		Location:          Locations[0],
	}
	for i := range r.Payments {
		r.Payments[i] = StatusOnTime
	}
	return r
}

// Valid reports whether s is one of the known payment statuses.
func (s PaymentStatus) Valid() bool {
	switch s {
	case StatusOnTime, StatusLate, StatusMissed:
		return true
	}
	return false
}
