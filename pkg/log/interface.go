package log

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// CheckedEntry is an Entry together with a collection of Cores that have
// already agreed to log it.
type CheckedEntry = zapcore.CheckedEntry

// A SugaredLogger wraps the base Logger functionality in a slower, but less
// verbose, API.
type SugaredLogger = zap.SugaredLogger

// Logger is the interface that wraps methods needed for a valid logger implementation.
type Logger interface {
	// Check returns a CheckedEntry if logging a message at the specified level
	// is enabled.
	Check(lvl Level, msg string) *CheckedEntry

	// Named adds a new path segment to the logger's name.
	Named(s string) Logger

	// Sugar wraps the logger to provide a more ergonomic, but slightly slower,
	// API.
	Sugar() *SugaredLogger

	// With creates a child logger and adds structured context to it.
	With(fields ...Field) Logger

	// WithLevel creates a child logger that logs on the given level.
	WithLevel(lvl Level) Logger

	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// Level reports the minimum enabled level for this logger.
	Level() Level
}
