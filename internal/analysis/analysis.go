// Package analysis wires segmentation, extraction, scoring and reporting into
// the operations exposed to the command line, HTTP and MCP surfaces.
package analysis

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/cv-compare/internal/ai"
	"github.com/spigell/cv-compare/internal/cv"
	"github.com/spigell/cv-compare/internal/extract"
	"github.com/spigell/cv-compare/internal/logger"
	"github.com/spigell/cv-compare/internal/report"
	"github.com/spigell/cv-compare/internal/scoring"
	"github.com/spigell/cv-compare/internal/segment"
	"github.com/spigell/cv-compare/internal/similarity"
)

// Engine holds the collaborators shared by every analysis. It keeps no
// per-candidate state and is safe for concurrent use.
type Engine struct {
	extractor  *extract.Extractor
	aggregator *scoring.Aggregator
	logger     *zap.Logger
}

// Options select the optional providers and the weight table.
type Options struct {
	Recognizer ai.Recognizer
	Semantic   similarity.Semantic
	Weights    scoring.Weights
	Logger     *zap.Logger
}

// New builds an engine. Nil providers degrade extraction to raw text and
// semantic scores to 0. A nil weight table selects the default one; an invalid
// table is an error wrapping scoring.ErrInvalidWeights.
func New(opts Options) (*Engine, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	weights := opts.Weights
	if weights == nil {
		weights = scoring.DefaultWeights()
	}

	aggregator, err := scoring.NewAggregator(weights, similarity.NewScorer(opts.Semantic, log), log)
	if err != nil {
		return nil, fmt.Errorf("weight table: %w", err)
	}

	return &Engine{
		extractor:  extract.New(opts.Recognizer, log),
		aggregator: aggregator,
		logger:     log,
	}, nil
}

// Segment splits text into canonical sections.
func (e *Engine) Segment(text string) cv.SectionMap {
	return segment.Segment(text)
}

// Extract builds a profile from sections.
func (e *Engine) Extract(ctx context.Context, sections cv.SectionMap) cv.Profile {
	return e.extractor.Extract(ctx, sections)
}

// Compare scores two profiles.
func (e *Engine) Compare(ctx context.Context, a, b cv.Profile) cv.ScoreReport {
	return e.aggregator.Compare(ctx, a, b)
}

// Report renders the narrative lines of a comparison.
func (e *Engine) Report(a, b cv.Profile, r cv.ScoreReport) []string {
	return report.Generate(a, b, r)
}

// Weights returns the weight table in use.
func (e *Engine) Weights() scoring.Weights {
	return e.aggregator.Weights()
}

// Analyze segments text and extracts a profile.
func (e *Engine) Analyze(ctx context.Context, text string) (cv.SectionMap, cv.Profile) {
	sections := e.Segment(text)
	return sections, e.Extract(ctx, sections)
}

// Comparison is the full outcome of comparing two documents.
type Comparison struct {
	A      cv.Profile     `json:"candidate_a"`
	B      cv.Profile     `json:"candidate_b"`
	Score  cv.ScoreReport `json:"score"`
	Report []string       `json:"report"`
}

// CompareTexts analyzes both texts in parallel, then compares and reports.
func (e *Engine) CompareTexts(ctx context.Context, textA, textB string) Comparison {
	var a, b cv.Profile

	var g errgroup.Group
	g.Go(func() error {
		_, a = e.Analyze(ctx, textA)
		logger.WithFields(e.logger, zap.String(logger.FieldCandidate, "A")).Debug("candidate analyzed", zap.Int("fields", len(a.Fields())))
		return nil
	})
	g.Go(func() error {
		_, b = e.Analyze(ctx, textB)
		logger.WithFields(e.logger, zap.String(logger.FieldCandidate, "B")).Debug("candidate analyzed", zap.Int("fields", len(b.Fields())))
		return nil
	})
	_ = g.Wait()

	return e.CompareProfiles(ctx, a, b)
}

// CompareProfiles compares two already extracted profiles and reports.
func (e *Engine) CompareProfiles(ctx context.Context, a, b cv.Profile) Comparison {
	score := e.Compare(ctx, a, b)
	return Comparison{A: a, B: b, Score: score, Report: e.Report(a, b, score)}
}
