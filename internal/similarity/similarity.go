// Package similarity computes [0,1] similarities between field values.
package similarity

import (
	"context"
	"math"

	"go.uber.org/zap"

	"github.com/spigell/cv-compare/internal/cv"
)

// Semantic scores two texts. Results may fall anywhere in [-1,1]; callers clamp.
type Semantic interface {
	Similarity(ctx context.Context, a, b string) (float64, error)
}

// Clamp floors negative and NaN scores to 0 and caps at 1.
func Clamp(x float64) float64 {
	switch {
	case math.IsNaN(x) || x < 0:
		return 0
	case x > 1:
		return 1
	default:
		return x
	}
}

// Jaccard returns |A ∩ B| / |A ∪ B|, or 0 when either set is empty.
func Jaccard(a, b cv.StringSet) float64 {
	if a.IsEmpty() || b.IsEmpty() {
		return 0
	}
	union := a.UnionLen(b)
	if union == 0 {
		return 0
	}
	return float64(len(a.Intersection(b))) / float64(union)
}

// Scorer dispatches on the value kind: set overlap for string sets and
// language names, the semantic provider for records and free text.
type Scorer struct {
	semantic Semantic
	logger   *zap.Logger
}

// NewScorer builds a scorer. A nil semantic provider scores every
// semantically compared field at 0 unless both sides are identical.
func NewScorer(semantic Semantic, logger *zap.Logger) *Scorer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scorer{semantic: semantic, logger: logger}
}

// Score returns the similarity of a and b. It is 0 when either side is absent
// or empty and 1 when both sides are the same non-empty value.
func (s *Scorer) Score(ctx context.Context, a, b cv.Value) float64 {
	if a == nil || b == nil || a.IsEmpty() || b.IsEmpty() || a.Kind() != b.Kind() {
		return 0
	}

	switch av := a.(type) {
	case cv.StringSet:
		return Jaccard(av, b.(cv.StringSet))
	case cv.LanguageList:
		return s.languages(ctx, av, b.(cv.LanguageList))
	default:
		return s.semanticScore(ctx, a.Canonical(), b.Canonical())
	}
}

func (s *Scorer) languages(ctx context.Context, a, b cv.LanguageList) float64 {
	an, bn := a.Names(), b.Names()
	if an.IsEmpty() || bn.IsEmpty() {
		return s.semanticScore(ctx, a.Canonical(), b.Canonical())
	}
	return Jaccard(an, bn)
}

func (s *Scorer) semanticScore(ctx context.Context, a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}
	if s.semantic == nil {
		return 0
	}

	score, err := s.semantic.Similarity(ctx, a, b)
	if err != nil {
		s.logger.Debug("semantic similarity unavailable, scoring 0", zap.Error(err))
		return 0
	}
	return Clamp(score)
}
