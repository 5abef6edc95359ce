package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	FieldRunID    = "run_id"
	FieldFilename = "filename"
	FieldModel    = "ai_model"

	fieldPromptLength    = "prompt_length"
	fieldPromptPreview   = "prompt_preview"
	fieldResponseLength  = "response_length"
	fieldResponsePreview = "response_preview"
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

// WithFields attaches fields to the logger, defaulting to a no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// WithRun tags every entry of a batch analysis with its run identifier.
func WithRun(logger *zap.Logger, runID string) *zap.Logger {
	return WithFields(logger, StringFields(StringField{Key: FieldRunID, Value: runID})...)
}

// WithCandidate tags entries with the candidate document name.
func WithCandidate(logger *zap.Logger, filename string) *zap.Logger {
	return WithFields(logger, StringFields(StringField{Key: FieldFilename, Value: filename})...)
}

// AIRequestFields describe a prompt sent to a model. The preview is expected
// to be truncated by the caller.
func AIRequestFields(model string, length int, preview string) []zap.Field {
	fields := StringFields(StringField{Key: FieldModel, Value: model})
	return append(fields,
		zap.Int(fieldPromptLength, length),
		zap.String(fieldPromptPreview, preview),
	)
}

// AIResponseFields describe a model answer.
func AIResponseFields(model string, length int, preview string) []zap.Field {
	fields := StringFields(StringField{Key: FieldModel, Value: model})
	return append(fields,
		zap.Int(fieldResponseLength, length),
		zap.String(fieldResponsePreview, preview),
	)
}
