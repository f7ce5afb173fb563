package log

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// A Level is a logging priority. Higher levels are more important.
type Level = zapcore.Level

const (
	// DebugLevel logs are typically voluminous, and are usually disabled in
	// production.
	DebugLevel = zapcore.DebugLevel

	// InfoLevel is the default logging priority.
	InfoLevel = zapcore.InfoLevel

	// WarnLevel logs are more important than Info, but don't need individual
	// human review.
	WarnLevel = zapcore.WarnLevel

	// ErrorLevel logs are high-priority. If an application is running smoothly,
	// it shouldn't generate any error-level logs.
	ErrorLevel = zapcore.ErrorLevel
)

// An AtomicLevel is an atomically changeable, dynamic logging level shared by
// a logger and all of its children.
type AtomicLevel = zap.AtomicLevel

// NewAtomicLevel creates an AtomicLevel with InfoLevel and above logging
// enabled.
func NewAtomicLevel() AtomicLevel {
	return zap.NewAtomicLevel()
}

// NewAtomicLevelAt creates an AtomicLevel enabled at l and above.
func NewAtomicLevelAt(l Level) AtomicLevel {
	return zap.NewAtomicLevelAt(l)
}

// ParseLevel parses a level name such as "debug" or "warn".
func ParseLevel(text string) (Level, error) {
	return zapcore.ParseLevel(text)
}
