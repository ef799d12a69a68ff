package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"time"
)

// Level represents the severity of a log message.
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l Level) slogLevel() slog.Level {
	switch l {
	case DEBUG:
		return slog.LevelDebug
	case WARN:
		return slog.LevelWarn
	case ERROR:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseLevel parses a string into a Level. Unknown values map to INFO.
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return DEBUG
	case "INFO":
		return INFO
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	default:
		return INFO
	}
}

// Format selects the output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat parses a string into a Format. Unknown values map to FormatText.
func ParseFormat(s string) Format {
	if strings.EqualFold(strings.TrimSpace(s), string(FormatJSON)) {
		return FormatJSON
	}
	return FormatText
}

const prefixKey = "component"

// Logger is a leveled logger rendering through a slog.Handler.
type Logger struct {
	handler slog.Handler
	prefix  string
}

type settings struct {
	out      io.Writer
	level    Level
	prefix   string
	colorize bool
	format   Format
}

// Option configures a Logger.
type Option func(*settings)

// WithOutput sets the output destination.
func WithOutput(w io.Writer) Option {
	return func(s *settings) {
		s.out = w
	}
}

// WithLevel sets the minimum log level.
func WithLevel(level Level) Option {
	return func(s *settings) {
		s.level = level
	}
}

// WithPrefix sets a prefix for log messages.
func WithPrefix(prefix string) Option {
	return func(s *settings) {
		s.prefix = prefix
	}
}

// WithColors enables or disables colorized text output.
func WithColors(enabled bool) Option {
	return func(s *settings) {
		s.colorize = enabled
	}
}

// WithFormat selects text or JSON output.
func WithFormat(f Format) Option {
	return func(s *settings) {
		s.format = f
	}
}

// New creates a new Logger with the given options.
func New(opts ...Option) *Logger {
	s := settings{
		out:      os.Stdout,
		level:    INFO,
		colorize: true,
		format:   FormatText,
	}
	for _, opt := range opts {
		opt(&s)
	}

	var h slog.Handler
	if s.format == FormatJSON {
		h = slog.NewJSONHandler(s.out, &slog.HandlerOptions{
			Level:     s.level.slogLevel(),
			AddSource: true,
		})
	} else {
		h = newConsoleHandler(s.out, s.level.slogLevel(), s.colorize)
	}
	return &Logger{handler: h, prefix: s.prefix}
}

var defaultLogger = New()

// SetDefault sets the default logger.
func SetDefault(l *Logger) {
	defaultLogger = l
}

// Default returns the default logger.
func Default() *Logger {
	return defaultLogger
}

// Slog exposes the logger to libraries that accept a *slog.Logger.
func (l *Logger) Slog() *slog.Logger {
	h := l.handler
	if l.prefix != "" {
		h = h.WithAttrs([]slog.Attr{slog.String(prefixKey, l.prefix)})
	}
	return slog.New(h)
}

// WithField returns a new logger with the given field added.
func (l *Logger) WithField(key string, value any) *Logger {
	return &Logger{
		handler: l.handler.WithAttrs([]slog.Attr{slog.Any(key, value)}),
		prefix:  l.prefix,
	}
}

// WithFields returns a new logger with the given fields added.
func (l *Logger) WithFields(fields map[string]any) *Logger {
	attrs := make([]slog.Attr, 0, len(fields))
	for k, v := range fields {
		attrs = append(attrs, slog.Any(k, v))
	}
	return &Logger{
		handler: l.handler.WithAttrs(attrs),
		prefix:  l.prefix,
	}
}

// WithPrefix returns a new logger with the given prefix.
func (l *Logger) WithPrefix(prefix string) *Logger {
	return &Logger{handler: l.handler, prefix: prefix}
}

func (l *Logger) log(level Level, msg string, args ...any) {
	ctx := context.Background()
	if !l.handler.Enabled(ctx, level.slogLevel()) {
		return
	}

	// Skip runtime.Callers, log, and the exported level method.
	var pcs [1]uintptr
	runtime.Callers(3, pcs[:])

	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}

	r := slog.NewRecord(time.Now(), level.slogLevel(), msg, pcs[0])
	if l.prefix != "" {
		r.AddAttrs(slog.String(prefixKey, l.prefix))
	}
	_ = l.handler.Handle(ctx, r)
}

// Debug logs a message at DEBUG level.
func (l *Logger) Debug(msg string, args ...any) {
	l.log(DEBUG, msg, args...)
}

// Info logs a message at INFO level.
func (l *Logger) Info(msg string, args ...any) {
	l.log(INFO, msg, args...)
}

// Warn logs a message at WARN level.
func (l *Logger) Warn(msg string, args ...any) {
	l.log(WARN, msg, args...)
}

// Error logs a message at ERROR level.
func (l *Logger) Error(msg string, args ...any) {
	l.log(ERROR, msg, args...)
}

// Package-level functions that use the default logger.

func Debug(msg string, args ...any) { defaultLogger.Debug(msg, args...) }
func Info(msg string, args ...any)  { defaultLogger.Info(msg, args...) }
func Warn(msg string, args ...any)  { defaultLogger.Warn(msg, args...) }
func Error(msg string, args ...any) { defaultLogger.Error(msg, args...) }

type ctxKey struct{}

// FromContext returns the logger from the context, or the default logger.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(ctxKey{}).(*Logger); ok {
		return l
	}
	return defaultLogger
}

// NewContext returns a new context with the given logger.
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}
