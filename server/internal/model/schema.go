package model

// Column names of the single-row record the classifier scores.
const (
	ColAge               = "Age"
	ColIncome            = "Income"
	ColCreditScore       = "Credit_Score"
	ColCreditUtilization = "Credit_Utilization"
	ColLoanBalance       = "Loan_Balance"
	ColDebtToIncome      = "Debt_to_Income_Ratio"
	ColAccountTenure     = "Account_Tenure"
	ColMissedCount       = "Missed_Payments_Count"
	ColLateCount         = "Late_Payments_Count"
	ColOnTimeCount       = "OnTime_Payments_Count"
	ColConsistency       = "Payment_Consistency"
	ColEmploymentStatus  = "Employment_Status"
	ColCreditCardType    = "Credit_Card_Type"
	ColLocation          = "Location"
)

// NumericColumns are the columns scored as real values.
var NumericColumns = []string{
	ColAge,
	ColIncome,
	ColCreditScore,
	ColCreditUtilization,
	ColLoanBalance,
	ColDebtToIncome,
	ColAccountTenure,
	ColMissedCount,
	ColLateCount,
	ColOnTimeCount,
	ColConsistency,
}

// CategoricalColumns are the columns scored by level.
var CategoricalColumns = []string{
	ColEmploymentStatus,
	ColCreditCardType,
	ColLocation,
}

// Columns returns all fourteen column names in record order.
func Columns() []string {
	out := make([]string, 0, len(NumericColumns)+len(CategoricalColumns))
	out = append(out, NumericColumns...)
	return append(out, CategoricalColumns...)
}

// Row is a single-row tabular record keyed by column name.
type Row struct {
	Numeric     map[string]float64
	Categorical map[string]string
}

// NewRow returns an empty Row ready to be filled.
func NewRow() Row {
	return Row{
		Numeric:     make(map[string]float64, len(NumericColumns)),
		Categorical: make(map[string]string, len(CategoricalColumns)),
	}
}

// Len returns the number of columns set on r.
func (r Row) Len() int {
	return len(r.Numeric) + len(r.Categorical)
}
