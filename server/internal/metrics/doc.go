// Package metrics exposes assessment counters in the Prometheus text format.
//
// Registry records every assessment outcome and renders them as
// client_model MetricFamily values encoded with expfmt:
//
//	riskpulse_assessments_total{label="high"|"low"}   counter
//	riskpulse_assessment_failures_total{reason=...}   counter (invalid, classifier)
//	riskpulse_probability                             histogram, buckets 0.1..0.9
//	riskpulse_default_threshold                       gauge
//	riskpulse_model_info{name,version}                gauge, always 1
//
// Registry is safe for concurrent use. It never stores request contents.
package metrics
