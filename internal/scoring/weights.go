// Package scoring combines per-field similarities into one composite score.
package scoring

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/spigell/cv-compare/internal/cv"
)

// ErrInvalidWeights reports a weight table that cannot be used for scoring.
var ErrInvalidWeights = errors.New("invalid weight table")

const sumTolerance = 1e-9

// Weights maps every field to its share of the composite score.
type Weights map[cv.Field]float64

// DefaultWeights returns the canonical ten-field table.
func DefaultWeights() Weights {
	return Weights{
		cv.FieldExperience:     0.25,
		cv.FieldSkills:         0.20,
		cv.FieldEducation:      0.15,
		cv.FieldSummary:        0.10,
		cv.FieldProjects:       0.08,
		cv.FieldLanguages:      0.06,
		cv.FieldCertifications: 0.06,
		cv.FieldCourses:        0.04,
		cv.FieldPersonalSkills: 0.03,
		cv.FieldReferences:     0.03,
	}
}

// Validate checks that the table holds a finite non-negative weight for each
// of the ten fields, and nothing else, and that it sums to 1.
func (w Weights) Validate() error {
	if len(w) == 0 {
		return fmt.Errorf("%w: empty", ErrInvalidWeights)
	}

	fields := make([]string, 0, len(w))
	for f := range w {
		fields = append(fields, string(f))
	}
	sort.Strings(fields)

	sum := 0.0
	for _, name := range fields {
		f := cv.Field(name)
		v := w[f]
		if !f.Known() {
			return fmt.Errorf("%w: unknown field %q", ErrInvalidWeights, name)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("%w: %s weight %v must be a non-negative number", ErrInvalidWeights, name, v)
		}
		sum += v
	}

	for _, f := range cv.AllFields() {
		if _, ok := w[f]; !ok {
			return fmt.Errorf("%w: missing weight for %s", ErrInvalidWeights, f)
		}
	}

	if math.Abs(sum-1) > sumTolerance {
		return fmt.Errorf("%w: weights sum to %.12g, want 1", ErrInvalidWeights, sum)
	}
	return nil
}

// Merge returns a copy of w with the given overrides applied.
func (w Weights) Merge(overrides map[cv.Field]float64) Weights {
	out := make(Weights, len(w)+len(overrides))
	for f, v := range w {
		out[f] = v
	}
	for f, v := range overrides {
		out[f] = v
	}
	return out
}
