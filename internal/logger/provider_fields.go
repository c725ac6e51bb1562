package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldProviderKind is the structured log field key for the collaborator role (ner, similarity, embedding).
	FieldProviderKind = "provider_kind"
	// FieldProvider is the structured log field key for the provider name.
	FieldProvider = "provider"
	// FieldModel is the structured log field key for the model identifier.
	FieldModel = "model"
	// FieldCandidate is the structured log field key for the candidate label.
	FieldCandidate = "candidate"
	// FieldDocument is the structured log field key for a source document path.
	FieldDocument = "document"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields safely attaches the provided fields to the logger.
// If the logger is nil or no fields are supplied, the input logger is returned
// unchanged, defaulting to a no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// ProviderFields describes a pluggable collaborator. Empty values are ignored
// to keep log entries compact when information is missing.
func ProviderFields(kind, provider, model string) []zap.Field {
	return StringFields(
		StringField{Key: FieldProviderKind, Value: kind},
		StringField{Key: FieldProvider, Value: provider},
		StringField{Key: FieldModel, Value: model},
	)
}

// WithProvider attaches the provider fields to the provided logger.
// If the logger is nil, a no-op logger is created to avoid panics.
func WithProvider(logger *zap.Logger, kind, provider, model string) *zap.Logger {
	return WithFields(logger, ProviderFields(kind, provider, model)...)
}
