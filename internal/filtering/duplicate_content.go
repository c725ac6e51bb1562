package filtering

import (
	"context"

	"go.uber.org/zap"

	"github.com/spigell/cv-compare/internal/document"
	"github.com/spigell/cv-compare/internal/logger"
)

type duplicateContentFilter struct {
	toggle
}

// NewDuplicateContent creates a filter that keeps only the first document of
// each group with identical bytes.
func NewDuplicateContent() Filter {
	return &duplicateContentFilter{}
}

func (f *duplicateContentFilter) Name() string { return "duplicate_content" }

func (f *duplicateContentFilter) Validate(*Config) error { return nil }

func (f *duplicateContentFilter) Apply(_ context.Context, deps Deps, d *document.Documents) (*document.Documents, Step, error) {
	initial := d.Len()
	for _, doc := range d.Items {
		if err := doc.EnsureChecksum(); err != nil {
			return d, Step{}, err
		}
	}

	seen := make(map[string]string, d.Len())
	excluded := d.Filter(func(doc *document.Document) bool {
		if first, ok := seen[doc.Checksum]; ok {
			deps.Logger.Debug("duplicate document",
				zap.String(logger.FieldDocument, doc.Name),
				zap.String("same_as", first),
			)
			return false
		}
		seen[doc.Checksum] = doc.Name
		return true
	})
	if len(excluded) > 0 {
		deps.Logger.Info("excluding documents with duplicate content",
			zap.Strings("excluded_documents", excluded),
			zap.Int("documents_left", d.Len()),
		)
	}

	return d, Step{Initial: initial, Dropped: len(excluded), Left: d.Len()}, nil
}

func (f *duplicateContentFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason}
}
