package logging

import (
	"context"
	"log/slog"

	"subsweep/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID is the standardized key for the scan run correlation identifier.
	FieldRunID = "run_id"
	// FieldEpisodeID is the standardized key for episode identifiers.
	FieldEpisodeID = "episode_id"
	// FieldEpisode is the standardized key for human-readable episode labels.
	FieldEpisode = "episode"
	// FieldRoot is the standardized key for library root identifiers.
	FieldRoot = "root"
	// FieldSourceID is the standardized key for media source identifiers.
	FieldSourceID = "source_id"
	// FieldPath is the standardized key for filesystem paths.
	FieldPath = "path"
	// FieldEventType classifies warnings and errors for alerting.
	FieldEventType = "event_type"
	// FieldErrorHint suggests the next step to the operator.
	FieldErrorHint = "error_hint"
	// FieldImpact describes the user-facing consequence of a warning.
	FieldImpact = "impact"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	var fields []slog.Attr
	if id, ok := services.RunIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRunID, id))
	}
	if trigger, ok := services.TriggerFromContext(ctx); ok {
		fields = append(fields, slog.String("trigger", trigger))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
