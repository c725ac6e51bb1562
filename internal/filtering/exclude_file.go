package filtering

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/cv-compare/internal/document"
)

type excludeFileFilter struct {
	toggle
	path string
}

// NewExcludeFile creates a filter that removes documents listed in the exclude file,
// matched by file name or by content checksum.
func NewExcludeFile() Filter {
	return &excludeFileFilter{}
}

func (f *excludeFileFilter) Name() string { return "exclude_file" }

func (f *excludeFileFilter) Validate(cfg *Config) error {
	f.path = ""
	if cfg != nil {
		f.path = strings.TrimSpace(cfg.ExcludeFile)
	}
	return nil
}

func (f *excludeFileFilter) Apply(_ context.Context, deps Deps, d *document.Documents) (*document.Documents, Step, error) {
	initial := d.Len()
	if f.path == "" {
		return d, Step{Initial: initial, Dropped: 0, Left: d.Len()}, nil
	}

	excluded, err := document.GetExcludedDocumentsFromFile(f.path)
	if err != nil {
		return d, Step{}, fmt.Errorf("getting excluded documents from file: %w", err)
	}

	removed := d.Exclude(document.DocumentNameField, excluded.Names())

	if sums := excluded.Checksums(); len(sums) > 0 {
		for _, doc := range d.Items {
			if err := doc.EnsureChecksum(); err != nil {
				return d, Step{}, err
			}
		}
		removed = append(removed, d.Exclude(document.DocumentChecksumField, sums)...)
	}

	if len(removed) > 0 {
		deps.Logger.Info("excluding documents based on exclude file",
			zap.String("path", f.path),
			zap.Strings("excluded_documents", removed),
			zap.Int("documents_left", d.Len()),
		)
	}

	return d, Step{Initial: initial, Dropped: len(removed), Left: d.Len()}, nil
}

func (f *excludeFileFilter) Status() Status {
	details := map[string]string{}
	if f.path != "" {
		details["path"] = f.path
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
