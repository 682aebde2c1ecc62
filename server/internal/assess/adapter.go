package assess

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/riskpulse/riskpulse/pkg/types"
	"github.com/riskpulse/riskpulse/server/internal/features"
	"github.com/riskpulse/riskpulse/server/internal/model"
)

// ErrClassifier is returned when the classifier fails or breaks its
// two-class probability contract.
var ErrClassifier = errors.New("classifier error")

// Classifier scores a single-row record and returns per-class probabilities.
// *model.LogisticModel implements it.
type Classifier interface {
	PredictProba(row model.Row) ([]float64, error)
}

// Assessment is the full result of one submission.
type Assessment struct {
	Probability     float64         `json:"probability"`
	Threshold       float64         `json:"threshold"`
	HighRisk        bool            `json:"high_risk"`
	Label           int             `json:"label"`
	Headline        string          `json:"headline"`
	Counts          features.Counts `json:"derived"`
	Metrics         []KeyMetric     `json:"key_metrics"`
	Analysis        Analysis        `json:"risk_factors"`
	Recommendations []string        `json:"recommendations"`
}

// Adapter connects requests to a classifier.
type Adapter struct {
	clf Classifier
}

// NewAdapter returns an Adapter backed by clf. clf must be safe for
// concurrent use; it is never mutated by the adapter.
func NewAdapter(clf Classifier) *Adapter {
	return &Adapter{clf: clf}
}

// Assess validates req, scores it, and builds the full assessment. Invalid
// input yields a *ValidationError; classifier failures wrap ErrClassifier.
func (a *Adapter) Assess(ctx context.Context, req types.Request, threshold float64) (*Assessment, error) {
	invalid := &ValidationError{}
	for _, err := range []error{Validate(req), ValidateThreshold(threshold)} {
		var ve *ValidationError
		if errors.As(err, &ve) {
			invalid.Fields = append(invalid.Fields, ve.Fields...)
		}
	}
	if len(invalid.Fields) > 0 {
		return nil, invalid
	}

	counts := features.Derive(req.Payments)
	prob, err := a.Probability(req, counts)
	if err != nil {
		return nil, err
	}

	high := Label(prob, threshold)
	out := &Assessment{
		Probability:     prob,
		Threshold:       threshold,
		HighRisk:        high,
		Headline:        Headline(high, prob, threshold),
		Counts:          counts,
		Metrics:         KeyMetrics(counts, req.CreditUtilization, req.DebtToIncome),
		Analysis:        Analyze(counts, req.CreditUtilization, req.DebtToIncome),
		Recommendations: Recommendations(high),
	}
	if high {
		out.Label = 1
	}

	slog.DebugContext(ctx, "assess: scored request",
		"prob", prob,
		"threshold", threshold,
		"label", out.Label,
		"risk_score", out.Analysis.Score,
	)
	return out, nil
}

// Probability returns the positive-class probability for req.
func (a *Adapter) Probability(req types.Request, counts features.Counts) (float64, error) {
	probs, err := a.clf.PredictProba(BuildRow(req, counts))
	if err != nil {
		return 0, fmt.Errorf("assess: %w: %w", ErrClassifier, err)
	}
	if len(probs) != 2 {
		return 0, fmt.Errorf("assess: %w: got %d class probabilities, want 2", ErrClassifier, len(probs))
	}
	p := probs[1]
	if math.IsNaN(p) || p < 0 || p > 1 {
		return 0, fmt.Errorf("assess: %w: probability %v outside [0, 1]", ErrClassifier, p)
	}
	return p, nil
}

// Label reports whether prob is at or above threshold.
func Label(prob, threshold float64) bool {
	return prob >= threshold
}

// BuildRow packages the request and its derived counts into the
// fourteen-column record the classifier expects.
func BuildRow(req types.Request, c features.Counts) model.Row {
	row := model.NewRow()
	row.Numeric[model.ColAge] = float64(req.Age)
	row.Numeric[model.ColIncome] = req.Income
	row.Numeric[model.ColCreditScore] = float64(req.CreditScore)
	row.Numeric[model.ColCreditUtilization] = req.CreditUtilization
	row.Numeric[model.ColLoanBalance] = req.LoanBalance
	row.Numeric[model.ColDebtToIncome] = req.DebtToIncome
	row.Numeric[model.ColAccountTenure] = float64(req.TenureMonths)
	row.Numeric[model.ColMissedCount] = float64(c.Missed)
	row.Numeric[model.ColLateCount] = float64(c.Late)
	row.Numeric[model.ColOnTimeCount] = float64(c.OnTime)
	row.Numeric[model.ColConsistency] = float64(c.Consistency)
	row.Categorical[model.ColEmploymentStatus] = req.EmploymentStatus
	row.Categorical[model.ColCreditCardType] = req.CardType
	row.Categorical[model.ColLocation] = req.Location
	return row
}
