package filtering

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/cv-compare/internal/document"
)

func scanDir(t *testing.T, files map[string]string) *document.Documents {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	docs, err := document.Discover(dir)
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	return docs
}

func TestRunDefaultPipeline(t *testing.T) {
	t.Parallel()

	docs := scanDir(t, map[string]string{
		"alice.txt":      "SKILLS\nGo",
		"alice-copy.txt": "SKILLS\nGo",
		"bob.md":         "SKILLS\nSQL",
		"carol.txt":      "SKILLS\nRust",
		"photo.png":      "png",
	})

	excludePath := filepath.Join(t.TempDir(), "exclude.json")
	excluded := &document.ExcludedDocuments{Items: []*document.ExcludedDocument{{Name: "carol.txt"}}}
	if err := excluded.ToFile(excludePath); err != nil {
		t.Fatalf("write exclude file: %v", err)
	}

	core, logs := observer.New(zap.InfoLevel)
	out, err := Run(context.Background(), &Config{ExcludeFile: excludePath}, Deps{Logger: zap.New(core)}, Default(), docs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	names := out.Names()
	if len(names) != 2 || names[0] != "alice-copy.txt" || names[1] != "bob.md" {
		t.Fatalf("unexpected documents left: %v", names)
	}

	if got := logs.FilterMessage("filter step").Len(); got != 3 {
		t.Fatalf("expected 3 step logs, got %d", got)
	}
}

func TestExcludeFileMatchesChecksum(t *testing.T) {
	t.Parallel()

	docs := scanDir(t, map[string]string{
		"renamed.txt": "SKILLS\nGo",
		"other.txt":   "SKILLS\nSQL",
	})

	probe := &document.Document{Path: docs.FindByName("renamed.txt").Path}
	if err := probe.EnsureChecksum(); err != nil {
		t.Fatalf("checksum: %v", err)
	}

	excludePath := filepath.Join(t.TempDir(), "exclude.json")
	excluded := &document.ExcludedDocuments{Items: []*document.ExcludedDocument{{Name: "original.txt", Checksum: probe.Checksum}}}
	if err := excluded.ToFile(excludePath); err != nil {
		t.Fatalf("write exclude file: %v", err)
	}

	out, err := Run(context.Background(), &Config{ExcludeFile: excludePath}, Deps{}, []Filter{NewExcludeFile()}, docs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if names := out.Names(); len(names) != 1 || names[0] != "other.txt" {
		t.Fatalf("unexpected documents left: %v", names)
	}
}

func TestDisabledStepIsSkipped(t *testing.T) {
	t.Parallel()

	docs := scanDir(t, map[string]string{"photo.png": "png", "cv.txt": "x"})
	steps := Default()
	DisableByName(steps, "supported_format", "requested")

	out, err := Run(context.Background(), &Config{}, Deps{}, steps, docs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Len() != 2 {
		t.Fatalf("expected both documents to remain, got %v", out.Names())
	}

	statuses := Describe(steps)
	if len(statuses) != 3 {
		t.Fatalf("expected 3 statuses, got %d", len(statuses))
	}
	if statuses[0].Enabled || statuses[0].Reason != "requested" {
		t.Fatalf("unexpected status: %+v", statuses[0])
	}
	if !statuses[1].Enabled {
		t.Fatalf("exclude_file should stay enabled: %+v", statuses[1])
	}
}
