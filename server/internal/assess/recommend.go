package assess

// Recommended actions for each label.
var (
	HighRiskActions = []string{
		"Proactive outreach & payment assistance",
		"Financial counseling enrollment",
		"Temporary payment relief programs",
		"Credit limit adjustment",
		"Enhanced account monitoring",
	}

	LowRiskActions = []string{
		"Standard account management",
		"Credit limit increase offers",
		"Cross-sell financial wellness tools",
		"Loyalty program enrollment",
		"Periodic account reviews",
	}
)

// Recommendations returns the fixed action list for the label.
func Recommendations(highRisk bool) []string {
	if highRisk {
		return HighRiskActions
	}
	return LowRiskActions
}

// Headline summarises the label with the probability and threshold.
func Headline(highRisk bool, prob, threshold float64) string {
	if highRisk {
		return "High Risk of Delinquency (" + Percent(prob) + " ≥ " + Percent(threshold) + ")"
	}
	return "Low Risk of Delinquency (" + Percent(prob) + " < " + Percent(threshold) + ")"
}
