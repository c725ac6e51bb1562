// Package ai defines the contracts of the optional model-backed collaborators:
// named-entity recognition and text embeddings.
package ai

import (
	"context"
	"errors"
)

// ErrUnavailable reports that a provider is not configured or failed to initialize.
var ErrUnavailable = errors.New("provider unavailable")

// EntityType is the label of a recognized span.
type EntityType string

const (
	EntityDate         EntityType = "DATE"
	EntityOrganization EntityType = "ORGANIZATION"
	EntityLocation     EntityType = "LOCATION"
	EntityPerson       EntityType = "PERSON"
)

// Entity is a typed span found in a text.
type Entity struct {
	Text string     `json:"text" mapstructure:"text"`
	Type EntityType `json:"type" mapstructure:"type"`
}

// Recognizer finds entities in a text span, in order of appearance.
type Recognizer interface {
	Recognize(ctx context.Context, text string) ([]Entity, error)
}

// Embedder turns a text into a dense vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// First returns the text of the first entity of type t.
func First(entities []Entity, t EntityType) (string, bool) {
	for _, e := range entities {
		if e.Type == t && e.Text != "" {
			return e.Text, true
		}
	}
	return "", false
}
