package logging

import (
	"context"
	"log/slog"
)

// ContextKey is a distinct type for context keys in this package.
type ContextKey string

const (
	// GenerationIDKey carries the current generation ID through a pipeline run.
	GenerationIDKey ContextKey = "log_generation_id"
	// UserIDKey carries the acting user's ID.
	UserIDKey ContextKey = "log_user_id"
)

// WithGenerationID returns a context carrying the generation ID.
func WithGenerationID(ctx context.Context, generationID string) context.Context {
	return context.WithValue(ctx, GenerationIDKey, generationID)
}

// WithUserID returns a context carrying the user ID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// GetGenerationID returns the generation ID from the context, or "".
func GetGenerationID(ctx context.Context) string {
	if v, ok := ctx.Value(GenerationIDKey).(string); ok {
		return v
	}
	return ""
}

// GetUserID returns the user ID from the context, or "".
func GetUserID(ctx context.Context) string {
	if v, ok := ctx.Value(UserIDKey).(string); ok {
		return v
	}
	return ""
}

// FromContext returns a logger annotated with any IDs present in the
// context. Returns the logger unchanged when the context carries none.
func FromContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if ctx == nil {
		return logger
	}
	if id := GetGenerationID(ctx); id != "" {
		logger = logger.With("generation_id", id)
	}
	if id := GetUserID(ctx); id != "" {
		logger = logger.With("user_id", id)
	}
	return logger
}
