// Package assess turns a prediction request into a delinquency assessment.
//
// Adapter.Assess validates the request, derives the payment-history
// features, builds the fourteen-column row, calls the classifier, and labels
// the result high risk when the positive-class probability is at or above
// the threshold (inclusive). The classifier is shared read-only across all
// callers.
//
// Analyze runs the rule-based risk-factor checks that accompany every
// prediction:
//
//	missed payments     >= 3 high (+1)   > 0   moderate
//	late payments       >= 2 high (+1)   > 0   moderate
//	credit utilization  > 0.7 high (+1)  > 0.5 moderate
//	debt-to-income      > 0.4 high (+1)  > 0.3 moderate
//
// The score is the number of high factors (0-4) and maps to the levels
// Low, Moderate, Elevated, High, Critical.
package assess
