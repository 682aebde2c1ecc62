package assess

import (
	"fmt"

	"github.com/riskpulse/riskpulse/server/internal/features"
)

// Thresholds for the risk-factor checks. A value strictly above (or, for
// payment counts, at or above) the high threshold adds one point to the score.
const (
	MissedHigh      = 3
	LateHigh        = 2
	UtilizationHigh = 0.7
	UtilizationMod  = 0.5
	DebtIncomeHigh  = 0.4
	DebtIncomeMod   = 0.3

	// MaxScore is the number of independent high-risk checks.
	MaxScore = 4
)

// Factor levels.
const (
	LevelHigh     = "high"
	LevelModerate = "moderate"
)

// RiskLevels names each possible score, indexed by score.
var RiskLevels = [MaxScore + 1]string{"Low", "Moderate", "Elevated", "High", "Critical"}

// NoFactorsText is shown when no check flags anything.
const NoFactorsText = "No significant risk factors identified"

// Factor is one flagged risk factor.
type Factor struct {
	Key   string `json:"key"`
	Level string `json:"level"`
	Text  string `json:"text"`
}

// Analysis is the rule-based risk-factor breakdown.
type Analysis struct {
	Factors []Factor `json:"factors"`
	Score   int      `json:"score"`
	Level   string   `json:"level"`
}

// Fraction returns Score as a fraction of MaxScore, for progress bars.
func (a Analysis) Fraction() float64 {
	return float64(a.Score) / MaxScore
}

// Analyze runs the four risk-factor checks.
func Analyze(c features.Counts, utilization, debtToIncome float64) Analysis {
	var a Analysis

	switch {
	case c.Missed >= MissedHigh:
		a.flag("missed_payments", LevelHigh, fmt.Sprintf("%d missed payments (High risk)", c.Missed))
	case c.Missed > 0:
		a.flag("missed_payments", LevelModerate, fmt.Sprintf("%d missed payments (Moderate risk)", c.Missed))
	}

	switch {
	case c.Late >= LateHigh:
		a.flag("late_payments", LevelHigh, fmt.Sprintf("%d late payments (High risk)", c.Late))
	case c.Late > 0:
		a.flag("late_payments", LevelModerate, fmt.Sprintf("%d late payments (Moderate risk)", c.Late))
	}

	switch {
	case utilization > UtilizationHigh:
		a.flag("credit_utilization", LevelHigh, "High credit utilization ("+Percent(utilization)+")")
	case utilization > UtilizationMod:
		a.flag("credit_utilization", LevelModerate, "Moderate credit utilization ("+Percent(utilization)+")")
	}

	switch {
	case debtToIncome > DebtIncomeHigh:
		a.flag("debt_to_income", LevelHigh, "High debt-to-income ratio ("+Percent(debtToIncome)+")")
	case debtToIncome > DebtIncomeMod:
		a.flag("debt_to_income", LevelModerate, "Moderate debt-to-income ratio ("+Percent(debtToIncome)+")")
	}

	a.Level = RiskLevels[min(a.Score, MaxScore)]
	if a.Factors == nil {
		a.Factors = []Factor{}
	}
	return a
}

func (a *Analysis) flag(key, level, text string) {
	a.Factors = append(a.Factors, Factor{Key: key, Level: level, Text: text})
	if level == LevelHigh {
		a.Score++
	}
}

// KeyMetric is one headline metric shown beside the prediction.
type KeyMetric struct {
	Label  string `json:"label"`
	Value  string `json:"value"`
	Status string `json:"status"`
	Alert  bool   `json:"alert"`
}

// KeyMetrics returns the missed-payment, utilization, and debt-to-income
// metrics.
func KeyMetrics(c features.Counts, utilization, debtToIncome float64) []KeyMetric {
	return []KeyMetric{
		metric("Missed Payments", fmt.Sprintf("%d/%d", c.Missed, c.Total()), c.Missed >= MissedHigh, "High risk"),
		metric("Credit Utilization", Percent(utilization), utilization > UtilizationHigh, "High"),
		metric("Debt-to-Income", Percent(debtToIncome), debtToIncome > DebtIncomeHigh, "High"),
	}
}

func metric(label, value string, alert bool, alertStatus string) KeyMetric {
	m := KeyMetric{Label: label, Value: value, Status: "Normal", Alert: alert}
	if alert {
		m.Status = alertStatus
	}
	return m
}

// Percent formats a 0-1 fraction as a whole percentage, e.g. 0.75 → "75%".
func Percent(f float64) string {
	return fmt.Sprintf("%.0f%%", f*100)
}
