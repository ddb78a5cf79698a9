// Package log carries a zap logger and its fields through a context
package log

import (
	"context"

	"go.uber.org/zap"
)

type key int

const (
	fieldsKey key = iota
	loggerKey
)

// WithFields returns a context whose logger fields include fields
func WithFields(ctx context.Context, fields ...zap.Field) context.Context {
	existing := Fields(ctx)
	merged := make([]zap.Field, 0, len(existing)+len(fields))
	merged = append(merged, existing...)

	return context.WithValue(ctx, fieldsKey, append(merged, fields...))
}

// Fields returns the logger fields attached to the context
func Fields(ctx context.Context) []zap.Field {
	if fields, ok := ctx.Value(fieldsKey).([]zap.Field); ok {
		return fields
	}

	return []zap.Field{}
}

// WithLogger returns a context carrying logger
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// Logger returns the logger carried by the context or nil
func Logger(ctx context.Context) *zap.Logger {
	logger, _ := ctx.Value(loggerKey).(*zap.Logger)

	return logger
}

// FromContext returns the logger carried by the context, or zap.L()
// if there is none, enriched with the context's fields.
func FromContext(ctx context.Context) *zap.Logger {
	logger := Logger(ctx)

	if logger == nil {
		logger = zap.L()
	}

	return logger.With(Fields(ctx)...)
}
