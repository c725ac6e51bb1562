package gemini

import (
	_ "embed"

	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/spigell/cv-compare/internal/ai"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, system, message string) (string, error)
}

//go:embed ner_prompt.md
var nerPrompt string

const nerSystem = "You are a precise named-entity recognizer. Answer with JSON only."

// entityAliases maps common model labels onto the recognized entity types.
var entityAliases = map[string]ai.EntityType{
	"DATE":         ai.EntityDate,
	"TIME":         ai.EntityDate,
	"ORG":          ai.EntityOrganization,
	"ORGANIZATION": ai.EntityOrganization,
	"COMPANY":      ai.EntityOrganization,
	"LOCATION":     ai.EntityLocation,
	"LOC":          ai.EntityLocation,
	"GPE":          ai.EntityLocation,
	"PERSON":       ai.EntityPerson,
	"PER":          ai.EntityPerson,
}

// Recognizer labels entities by prompting a Gemini model.
type Recognizer struct {
	generator contentGenerator
	logger    *zap.Logger
}

func NewRecognizer(generator contentGenerator, logger *zap.Logger) *Recognizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recognizer{generator: generator, logger: logger}
}

// Recognize returns the entities found in text. Entities with unknown labels are dropped.
func (r *Recognizer) Recognize(ctx context.Context, text string) ([]ai.Entity, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	if r == nil || r.generator == nil {
		return nil, ai.ErrUnavailable
	}

	raw, err := r.generator.GenerateContent(ctx, nerSystem, buildNERPrompt(text))
	if err != nil {
		return nil, err
	}

	entities, err := parseEntities(raw)
	if err != nil {
		r.logger.Debug("unparseable entity response", zap.Error(err))
		return nil, err
	}

	return entities, nil
}

func buildNERPrompt(fragment string) string {
	template := nerPrompt
	if strings.TrimSpace(template) == "" {
		template = "Fragment:\n{{FRAGMENT}}\n\nJSON Response:"
	}
	return strings.ReplaceAll(template, "{{FRAGMENT}}", fragment)
}

type rawEntity struct {
	Text  string `mapstructure:"text"`
	Type  string `mapstructure:"type"`
	Label string `mapstructure:"label"`
}

// parseEntities accepts either {"entities": [...]} or a bare array.
func parseEntities(raw string) ([]ai.Entity, error) {
	cleaned := extractJSON(raw)

	var data any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	if obj, ok := data.(map[string]any); ok {
		data = obj["entities"]
	}
	if data == nil {
		return []ai.Entity{}, nil
	}

	var decoded []rawEntity
	if err := mapstructure.WeakDecode(data, &decoded); err != nil {
		return nil, fmt.Errorf("decode entities: %w", err)
	}

	out := make([]ai.Entity, 0, len(decoded))
	for _, item := range decoded {
		text := strings.TrimSpace(item.Text)
		label := strings.ToUpper(strings.TrimSpace(item.Type))
		if label == "" {
			label = strings.ToUpper(strings.TrimSpace(item.Label))
		}
		entityType, ok := entityAliases[label]
		if !ok || text == "" {
			continue
		}
		out = append(out, ai.Entity{Text: text, Type: entityType})
	}

	return out, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}
