package metrics

import (
	"log/slog"
	"net/http"
	"sort"
	"sync"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/protobuf/proto"
)

// Failure reasons recorded by ObserveFailure.
const (
	ReasonInvalid    = "invalid"
	ReasonClassifier = "classifier"
)

// probBuckets are the upper bounds of the probability histogram.
var probBuckets = []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9}

// Registry accumulates assessment metrics.
type Registry struct {
	threshold    func() float64
	modelName    string
	modelVersion string

	mu       sync.Mutex
	byLabel  map[string]uint64
	failures map[string]uint64
	buckets  []uint64 // cumulative counts per probBuckets entry
	count    uint64
	sum      float64
}

// New returns a Registry. threshold is read on every scrape so reloads show
// up immediately.
func New(modelName, modelVersion string, threshold func() float64) *Registry {
	return &Registry{
		threshold:    threshold,
		modelName:    modelName,
		modelVersion: modelVersion,
		byLabel:      map[string]uint64{"high": 0, "low": 0},
		failures:     map[string]uint64{ReasonInvalid: 0, ReasonClassifier: 0},
		buckets:      make([]uint64, len(probBuckets)),
	}
}

// ObserveAssessment records one successful assessment.
func (r *Registry) ObserveAssessment(prob float64, highRisk bool) {
	label := "low"
	if highRisk {
		label = "high"
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.byLabel[label]++
	r.count++
	r.sum += prob
	for i, ub := range probBuckets {
		if prob <= ub {
			r.buckets[i]++
		}
	}
}

// ObserveFailure records one rejected or failed assessment.
func (r *Registry) ObserveFailure(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures[reason]++
}

// Gather returns the current metric families sorted by name.
func (r *Registry) Gather() []*dto.MetricFamily {
	r.mu.Lock()
	assessments := counterFamily("riskpulse_assessments_total",
		"Assessments completed, by predicted label.", "label", r.byLabel)
	failures := counterFamily("riskpulse_assessment_failures_total",
		"Assessments rejected or failed, by reason.", "reason", r.failures)

	h := &dto.Histogram{
		SampleCount: proto.Uint64(r.count),
		SampleSum:   proto.Float64(r.sum),
	}
	for i, ub := range probBuckets {
		h.Bucket = append(h.Bucket, &dto.Bucket{
			UpperBound:      proto.Float64(ub),
			CumulativeCount: proto.Uint64(r.buckets[i]),
		})
	}
	r.mu.Unlock()

	out := []*dto.MetricFamily{
		assessments,
		failures,
		{
			Name:   proto.String("riskpulse_probability"),
			Help:   proto.String("Predicted delinquency probability."),
			Type:   dto.MetricType_HISTOGRAM.Enum(),
			Metric: []*dto.Metric{{Histogram: h}},
		},
		gaugeFamily("riskpulse_default_threshold",
			"Current default classification threshold.", r.threshold(), nil),
		gaugeFamily("riskpulse_model_info",
			"Loaded classifier artifact.", 1, []*dto.LabelPair{
				labelPair("name", r.modelName),
				labelPair("version", r.modelVersion),
			}),
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GetName() < out[j].GetName() })
	return out
}

// ServeHTTP writes the metrics in the Prometheus text exposition format.
func (r *Registry) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	f := expfmt.NewFormat(expfmt.TypeTextPlain)
	w.Header().Set("Content-Type", string(f))
	enc := expfmt.NewEncoder(w, f)
	for _, mf := range r.Gather() {
		if err := enc.Encode(mf); err != nil {
			slog.Error("metrics: encode failed", "family", mf.GetName(), "err", err)
			return
		}
	}
}

// counterFamily builds a counter family with one series per map entry,
// ordered by label value.
func counterFamily(name, help, label string, values map[string]uint64) *dto.MetricFamily {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	mf := &dto.MetricFamily{
		Name: proto.String(name),
		Help: proto.String(help),
		Type: dto.MetricType_COUNTER.Enum(),
	}
	for _, k := range keys {
		mf.Metric = append(mf.Metric, &dto.Metric{
			Label:   []*dto.LabelPair{labelPair(label, k)},
			Counter: &dto.Counter{Value: proto.Float64(float64(values[k]))},
		})
	}
	return mf
}

func gaugeFamily(name, help string, v float64, labels []*dto.LabelPair) *dto.MetricFamily {
	return &dto.MetricFamily{
		Name: proto.String(name),
		Help: proto.String(help),
		Type: dto.MetricType_GAUGE.Enum(),
		Metric: []*dto.Metric{{
			Label: labels,
			Gauge: &dto.Gauge{Value: proto.Float64(v)},
		}},
	}
}

func labelPair(name, value string) *dto.LabelPair {
	return &dto.LabelPair{Name: proto.String(name), Value: proto.String(value)}
}
