// Package extract turns section bodies into typed field values.
package extract

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/cv-compare/internal/ai"
	"github.com/spigell/cv-compare/internal/cv"
)

// Extractor runs the per-field extractors over a section map. The recognizer
// is optional; without it record lists carry raw text only.
type Extractor struct {
	recognizer ai.Recognizer
	logger     *zap.Logger

	warnOnce sync.Once
}

func New(recognizer ai.Recognizer, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{recognizer: recognizer, logger: logger}
}

// Field extracts a single field from its section body.
func (e *Extractor) Field(ctx context.Context, f cv.Field, body string) cv.Value {
	switch f {
	case cv.FieldSkills, cv.FieldPersonalSkills:
		return Skills(body)
	case cv.FieldLanguages:
		return Languages(body)
	case cv.FieldSummary:
		return Summary(body)
	case cv.FieldReferences:
		return References(body)
	case cv.FieldExperience, cv.FieldEducation, cv.FieldProjects:
		return e.Records(ctx, body, shapeDetailed)
	case cv.FieldCertifications, cv.FieldCourses:
		return e.Records(ctx, body, shapeSimple)
	default:
		return nil
	}
}

// Extract builds a profile from sections. Fields whose section is missing or
// whose value comes out empty are absent from the profile. Extractors run
// concurrently and never fail; degraded results are logged.
func (e *Extractor) Extract(ctx context.Context, sections cv.SectionMap) cv.Profile {
	var (
		mu     sync.Mutex
		values = make(map[cv.Field]cv.Value)
		g      errgroup.Group
	)

	for _, f := range cv.AllFields() {
		body, ok := sections.Get(f.Section())
		if !ok {
			continue
		}

		g.Go(func() error {
			v := e.Field(ctx, f, body)
			if v == nil || v.IsEmpty() {
				e.logger.Debug("field extracted empty", zap.String("field", string(f)))
				return nil
			}

			mu.Lock()
			values[f] = v
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	profile := cv.NewProfile(values, Contact(sections))
	e.logger.Debug("profile extracted", zap.Int("fields", len(profile.Fields())))
	return profile
}
