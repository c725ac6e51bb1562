package filtering

import (
	"context"

	"go.uber.org/zap"

	"github.com/spigell/cv-compare/internal/document"
)

type supportedFormatFilter struct {
	toggle
}

// NewSupportedFormat creates a filter that removes files without a known document extension.
func NewSupportedFormat() Filter {
	return &supportedFormatFilter{}
}

func (f *supportedFormatFilter) Name() string { return "supported_format" }

func (f *supportedFormatFilter) Validate(*Config) error { return nil }

func (f *supportedFormatFilter) Apply(_ context.Context, deps Deps, d *document.Documents) (*document.Documents, Step, error) {
	initial := d.Len()
	excluded := d.Filter(func(doc *document.Document) bool {
		return document.Supported(doc.Name)
	})
	if len(excluded) > 0 {
		deps.Logger.Info("skipping files with unsupported format",
			zap.Strings("excluded_documents", excluded),
			zap.Int("documents_left", d.Len()),
		)
	}

	return d, Step{Initial: initial, Dropped: len(excluded), Left: d.Len()}, nil
}

func (f *supportedFormatFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason}
}
