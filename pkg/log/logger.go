package log

import (
	"io"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultLogger is the logger used when a context carries no logger of its
// own.
//
// DefaultLogger discards all logs. Applications that want the REST client to
// report what it does either set this variable or attach a logger to the
// request context with Context.
var DefaultLogger Logger = &logger{
	Logger: zap.NewNop(),
}

// NewProductionLogger is a reasonable production logging configuration.
// Logging is enabled at given level and above. The level can be later
// adjusted dynamically in runtime by calling SetLevel method.
//
// It writes JSON to standard error by default. Stacktraces are included on
// logs of ErrorLevel and above.
func NewProductionLogger(lvl *AtomicLevel, opts ...Option) Logger {
	opts = append(defaultOptions(), opts...)

	var cfg logConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	var zapOptions []zap.Option

	if cfg.caller {
		zapOptions = append(zapOptions, zap.AddCaller(), zap.AddCallerSkip(cfg.callerSkip))
	}

	if cfg.stacktrace {
		zapOptions = append(zapOptions, zap.AddStacktrace(zap.ErrorLevel))
	}

	zapOptions = append(zapOptions, wrapCoreWithLevel(lvl))

	return &logger{
		Logger: zap.New(newZapCoreAtLevel(zap.DebugLevel, cfg), zapOptions...),
	}
}

// NewFromZap wraps an already built zap logger.
func NewFromZap(l *zap.Logger) Logger {
	return &logger{Logger: l}
}

// logger provides fast, leveled, structured logging. All methods are safe
// for concurrent use.
type logger struct {
	*zap.Logger
}

var _ Logger = (*logger)(nil)

// WithLevel creates a child logger that logs on the given level.
// Child logger contains all fields from the parent.
func (l *logger) WithLevel(level Level) Logger {
	lvl := zap.NewAtomicLevelAt(level)
	return &logger{
		Logger: l.Logger.WithOptions(wrapCoreWithLevel(&lvl)),
	}
}

// With creates a child logger and adds structured context to it. Fields added
// to the child don't affect the parent, and vice versa.
func (l *logger) With(fields ...Field) Logger {
	return &logger{
		Logger: l.Logger.With(fields...),
	}
}

// Named adds a new path segment to the logger's name. Segments are joined by
// periods.
func (l *logger) Named(s string) Logger {
	return &logger{
		Logger: l.Logger.Named(s),
	}
}

// Level reports the minimum enabled level for this logger.
func (l *logger) Level() Level {
	return zapcore.LevelOf(l.Core())
}

type WriteSyncer interface {
	io.Writer
	Sync() error
}

type encoderFactory func(config zapcore.EncoderConfig) zapcore.Encoder

type logConfig struct {
	levelKey   string
	caller     bool
	callerSkip int
	stacktrace bool
	writer     WriteSyncer

	encoderFactory encoderFactory
}

// Option configures a Logger.
type Option func(s *logConfig)

// WithLevelKey configures which key name to use for the log level.
//
// Default value is "level".
func WithLevelKey(key string) Option {
	return func(s *logConfig) {
		s.levelKey = key
	}
}

// WithCaller configures whether to include a "caller" key with the
// file:line in which the log occurred.
func WithCaller(t bool) Option {
	return func(s *logConfig) {
		s.caller = t
	}
}

// WithCallerSkip configures how many frames are skipped when annotating the
// caller, so wrappers are not reported as the call site.
func WithCallerSkip(skip int) Option {
	return func(s *logConfig) {
		s.callerSkip = skip
	}
}

// WithStacktraceOnError configures whether to include a stacktrace on
// "Error" or higher log levels.
func WithStacktraceOnError(b bool) Option {
	return func(s *logConfig) {
		s.stacktrace = b
	}
}

// WithJSONEncoding tells the logger to use JSON as its encoding.
//
// This is the default setting.
func WithJSONEncoding() Option {
	return func(s *logConfig) {
		s.encoderFactory = zapcore.NewJSONEncoder
	}
}

// WithConsoleEncoding tells the logger to use a user-friendly console encoding.
func WithConsoleEncoding() Option {
	return func(s *logConfig) {
		s.encoderFactory = zapcore.NewConsoleEncoder
	}
}

// WithWriter configures the WriteSyncer logs are written to.
//
// Default value is to write to Stderr.
func WithWriter(w WriteSyncer) Option {
	return func(s *logConfig) {
		s.writer = w
	}
}

// Globally declare the stderr writer as writes must be synchronized between
// multiple logger instances.
var _stderr = zapcore.Lock(zapcore.AddSync(os.Stderr))

func defaultOptions() []Option {
	return []Option{
		WithWriter(_stderr),
		WithLevelKey("level"),
		WithStacktraceOnError(true),
		WithCaller(true),
		WithCallerSkip(1),
		WithJSONEncoding(),
	}
}

func newZapCoreAtLevel(lvl zapcore.Level, cfg logConfig) zapcore.Core {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       cfg.levelKey,
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     rfc3339MicroTimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	return zapcore.NewCore(cfg.encoderFactory(encoderConfig), cfg.writer, lvl)
}

// rfc3339MicroTimeEncoder serializes a time.Time to an RFC3339 string with
// microsecond precision padded with zeroes to make it fixed width.
func rfc3339MicroTimeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	const RFC3339Micro = "2006-01-02T15:04:05.000000Z07:00"

	enc.AppendString(t.UTC().Format(RFC3339Micro))
}
