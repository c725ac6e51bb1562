package scoring

import (
	"context"
	"math"

	"go.uber.org/zap"

	"github.com/spigell/cv-compare/internal/cv"
)

// FieldScorer computes the similarity of two values of the same field.
type FieldScorer interface {
	Score(ctx context.Context, a, b cv.Value) float64
}

// Aggregator holds a validated weight table.
type Aggregator struct {
	weights Weights
	scorer  FieldScorer
	logger  *zap.Logger
}

// NewAggregator validates weights and returns an aggregator. An invalid table
// is a construction error wrapping ErrInvalidWeights.
func NewAggregator(weights Weights, scorer FieldScorer, logger *zap.Logger) (*Aggregator, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Aggregator{weights: weights.Merge(nil), scorer: scorer, logger: logger}, nil
}

// Weights returns a copy of the table.
func (a *Aggregator) Weights() Weights {
	return a.weights.Merge(nil)
}

// Compare scores every field present in either profile and sums score × weight.
// Fields absent from both profiles add nothing and the remaining weights are
// not renormalized. The composite is rounded to three decimals.
func (a *Aggregator) Compare(ctx context.Context, pa, pb cv.Profile) cv.ScoreReport {
	report := cv.ScoreReport{Fields: make(map[cv.Field]float64)}

	total := 0.0
	for _, f := range cv.AllFields() {
		va, okA := pa.Get(f)
		vb, okB := pb.Get(f)
		if !okA && !okB {
			continue
		}

		score := 0.0
		if okA && okB && a.scorer != nil {
			score = a.scorer.Score(ctx, va, vb)
		}
		report.Fields[f] = score
		total += score * a.weights[f]

		a.logger.Debug("field scored",
			zap.String("field", string(f)),
			zap.Float64("score", score),
			zap.Float64("weight", a.weights[f]),
		)
	}

	report.Composite = Round(total)
	return report
}

// Round rounds x to three decimals and keeps it inside [0,1].
func Round(x float64) float64 {
	r := math.Round(x*1000) / 1000
	return math.Min(1, math.Max(0, r))
}
