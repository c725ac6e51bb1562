package storage

import (
	"errors"
	"time"

	"github.com/spigell/cv-compare/internal/analysis"
)

// ErrNotFound is returned when a requested comparison does not exist.
var ErrNotFound = errors.New("not found")

// Summary is a history row without the stored comparison payload.
type Summary struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	SourceA   string    `json:"source_a,omitempty"`
	SourceB   string    `json:"source_b,omitempty"`
	NameA     string    `json:"name_a,omitempty"`
	NameB     string    `json:"name_b,omitempty"`
	Composite float64   `json:"composite"`
}

// Record is a stored comparison.
type Record struct {
	Summary
	Comparison analysis.Comparison `json:"comparison"`
}
