package log

import (
	"context"
)

type logCtxKey struct{}

// Context returns a copy of the parent context in which the logger associated
// with it is the one given.
//
// Once a context carries a logger, all logging in this module made on behalf
// of that context goes through it.
func Context(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, logCtxKey{}, l)
}

// FromContext returns the logger attached to ctx by Context, or nil.
func FromContext(ctx context.Context) Logger {
	l, _ := ctx.Value(logCtxKey{}).(Logger)
	return l
}

// With creates a child logger with the given fields and attaches it to a copy
// of ctx.
func With(ctx context.Context, fields ...Field) context.Context {
	return Context(ctx, getLogger(ctx).With(fields...))
}

// Debug logs a message at DebugLevel.
func Debug(ctx context.Context, msg string, fields ...Field) {
	getLogger(ctx).Debug(msg, fields...)
}

// Info logs a message at InfoLevel.
func Info(ctx context.Context, msg string, fields ...Field) {
	getLogger(ctx).Info(msg, fields...)
}

// Warn logs a message at WarnLevel.
func Warn(ctx context.Context, msg string, fields ...Field) {
	getLogger(ctx).Warn(msg, fields...)
}

// Error logs a message at ErrorLevel.
func Error(ctx context.Context, msg string, fields ...Field) {
	getLogger(ctx).Error(msg, fields...)
}

func getLogger(ctx context.Context) Logger {
	if l := FromContext(ctx); l != nil {
		return l
	}
	return DefaultLogger
}
