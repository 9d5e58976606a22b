package logging

import (
	"context"
	"log/slog"

	"cleanvid/internal/services"
)

// WithContext returns a logger carrying any video, step, and request id
// fields found on the context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return NewNop()
	}
	if ctx == nil {
		return logger
	}

	var attrs []any
	if video, ok := services.VideoFromContext(ctx); ok {
		attrs = append(attrs, String(FieldVideo, video))
	}
	if step, ok := services.StepFromContext(ctx); ok {
		attrs = append(attrs, String(FieldStep, step))
	}
	if requestID, ok := services.RequestIDFromContext(ctx); ok {
		attrs = append(attrs, String(FieldRequestID, requestID))
	}
	if len(attrs) == 0 {
		return logger
	}
	return logger.With(attrs...)
}
