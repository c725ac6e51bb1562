package document

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

const (
	DocumentNameField     = "Name"
	DocumentChecksumField = "Checksum"
)

// Documents is an ordered collection of candidate files.
type Documents struct {
	Items []*Document
}

// Document is a single candidate file. Text and Checksum are filled by Load.
type Document struct {
	Path     string `json:"path"`
	Name     string `json:"name"`
	Format   Format `json:"format,omitempty"`
	Checksum string `json:"checksum,omitempty"`
	Text     string `json:"-"`
}

// ExcludedDocuments is the content of an exclude file.
type ExcludedDocuments struct {
	Items []*ExcludedDocument
}

// ExcludedDocument identifies a document skipped by later scans.
type ExcludedDocument struct {
	Name       string
	Checksum   string
	ExcludedAt time.Time
}

// Discover lists the regular files directly inside dir, sorted by name.
// Format support is not checked here.
func Discover(dir string) (*Documents, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}

	docs := &Documents{}
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		docs.Items = append(docs.Items, &Document{
			Path: filepath.Join(dir, entry.Name()),
			Name: entry.Name(),
		})
	}

	sort.Slice(docs.Items, func(i, j int) bool { return docs.Items[i].Name < docs.Items[j].Name })
	return docs, nil
}

// Load reads the file, records its checksum and extracts its text.
func (d *Document) Load() error {
	data, err := os.ReadFile(d.Path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", d.Path, err)
	}

	sum := sha256.Sum256(data)
	d.Checksum = fmt.Sprintf("%x", sum[:])

	format, err := DetectFormat(d.Name)
	if err != nil {
		return err
	}
	d.Format = format

	text, err := Parse(d.Name, data)
	if err != nil {
		return err
	}
	d.Text = text
	return nil
}

// EnsureChecksum computes the checksum without extracting text.
func (d *Document) EnsureChecksum() error {
	if d.Checksum != "" {
		return nil
	}
	data, err := os.ReadFile(d.Path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", d.Path, err)
	}
	sum := sha256.Sum256(data)
	d.Checksum = fmt.Sprintf("%x", sum[:])
	return nil
}

func (d *Document) GetStringField(name string) string {
	switch name {
	case DocumentNameField:
		return d.Name
	case DocumentChecksumField:
		return d.Checksum
	default:
		return ""
	}
}

func (v *Documents) Len() int {
	return len(v.Items)
}

// Names returns the file names in collection order.
func (v *Documents) Names() []string {
	names := make([]string, 0, len(v.Items))
	for _, d := range v.Items {
		names = append(names, d.Name)
	}
	return names
}

func (v *Documents) FindByName(name string) *Document {
	for _, d := range v.Items {
		if d.Name == name {
			return d
		}
	}
	return nil
}

// Exclude removes every document whose field matches one of targets and
// returns the removed names. Order is preserved.
func (v *Documents) Exclude(field string, targets []string) []string {
	drop := make(map[string]struct{}, len(targets))
	for _, t := range targets {
		if t != "" {
			drop[t] = struct{}{}
		}
	}

	var excluded []string
	kept := v.Items[:0]
	for _, d := range v.Items {
		if _, ok := drop[d.GetStringField(field)]; ok {
			excluded = append(excluded, d.Name)
			continue
		}
		kept = append(kept, d)
	}
	v.Items = kept
	return excluded
}

// Filter keeps the documents for which keep returns true and returns the removed names.
func (v *Documents) Filter(keep func(*Document) bool) []string {
	var excluded []string
	kept := v.Items[:0]
	for _, d := range v.Items {
		if keep(d) {
			kept = append(kept, d)
			continue
		}
		excluded = append(excluded, d.Name)
	}
	v.Items = kept
	return excluded
}

func (v *Documents) ToExcluded() *ExcludedDocuments {
	excluded := &ExcludedDocuments{}
	for _, d := range v.Items {
		excluded.Items = append(excluded.Items, &ExcludedDocument{
			Name:       d.Name,
			Checksum:   d.Checksum,
			ExcludedAt: time.Now().UTC(),
		})
	}
	return excluded
}

// DumpToTmpFile writes v as indented JSON to a new temporary file and returns its name.
func DumpToTmpFile(pattern string, v any) (string, error) {
	file, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return file.Name(), nil
}

// GetExcludedDocumentsFromFile reads an exclude file. A missing or empty file is an empty list.
func GetExcludedDocumentsFromFile(path string) (*ExcludedDocuments, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &ExcludedDocuments{}, nil
		}
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}

	if stat.Size() == 0 {
		return &ExcludedDocuments{}, nil
	}

	var excluded ExcludedDocuments
	if err := json.NewDecoder(file).Decode(&excluded); err != nil {
		return nil, err
	}
	return &excluded, nil
}

func (v *ExcludedDocuments) Append(s *ExcludedDocuments) {
	v.Items = append(v.Items, s.Items...)
}

func (v *ExcludedDocuments) Names() []string {
	names := make([]string, 0, len(v.Items))
	for _, d := range v.Items {
		names = append(names, d.Name)
	}
	return names
}

func (v *ExcludedDocuments) Checksums() []string {
	sums := make([]string, 0, len(v.Items))
	for _, d := range v.Items {
		if d.Checksum != "" {
			sums = append(sums, d.Checksum)
		}
	}
	return sums
}

func (v *ExcludedDocuments) ToFile(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
