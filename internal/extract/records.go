package extract

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/cv-compare/internal/ai"
	"github.com/spigell/cv-compare/internal/cv"
)

// recordShape selects how an entry's text is kept on the record.
type recordShape int

const (
	// shapeDetailed keeps the first line as raw and the rest as description.
	shapeDetailed recordShape = iota
	// shapeSimple keeps the whole entry as raw.
	shapeSimple
)

// Records splits a record-list body into entries and annotates each entry with
// the first DATE and ORGANIZATION found by the recognizer. Recognition failures
// leave the raw text only. A non-empty body always yields at least one record.
func (e *Extractor) Records(ctx context.Context, body string, shape recordShape) cv.RecordList {
	body = strings.TrimSpace(body)
	if body == "" {
		return cv.RecordList{}
	}

	records := make([]cv.Record, 0)
	for _, lines := range splitEntries(body, "") {
		attrs := make(map[cv.Attribute]string, 4)

		switch shape {
		case shapeDetailed:
			attrs[cv.AttrRaw] = lines[0]
			if len(lines) > 1 {
				attrs[cv.AttrDescription] = strings.Join(lines[1:], " ")
			}
		default:
			attrs[cv.AttrRaw] = strings.Join(lines, " ")
		}

		for k, v := range e.annotate(ctx, strings.Join(lines, "\n")) {
			attrs[k] = v
		}

		if r := cv.NewRecord(attrs); !r.IsEmpty() {
			records = append(records, r)
		}
	}

	if len(records) == 0 {
		records = append(records, cv.NewRecord(map[cv.Attribute]string{cv.AttrRaw: body}))
	}

	return cv.NewRecordList(records...)
}

func (e *Extractor) annotate(ctx context.Context, entry string) map[cv.Attribute]string {
	out := make(map[cv.Attribute]string, 2)
	if e.recognizer == nil {
		return out
	}

	entities, err := e.recognizer.Recognize(ctx, entry)
	if err != nil {
		e.recognitionFailed(err)
		return out
	}

	if date, ok := ai.First(entities, ai.EntityDate); ok {
		out[cv.AttrDate] = date
	}
	if org, ok := ai.First(entities, ai.EntityOrganization); ok {
		out[cv.AttrInstitution] = org
	}
	return out
}

func (e *Extractor) recognitionFailed(err error) {
	e.warnOnce.Do(func() {
		e.logger.Warn("entity recognition failed, records keep raw text only", zap.Error(err))
	})
	e.logger.Debug("entity recognition failed", zap.Error(err))
}
