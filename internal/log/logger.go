package log

import (
	"context"
	"log/slog"

	"github.com/felixgeelhaar/scriptsmith/internal/errors"
)

// Logger provides structured logging with slog
type Logger struct {
	slog   *slog.Logger
	config Config
}

// New creates a new Logger with the given configuration
func New(config Config) *Logger {
	opts := &slog.HandlerOptions{
		Level:     config.Level.ToSlogLevel(),
		AddSource: config.AddSource,
	}
	if config.Redact {
		opts.ReplaceAttr = redactAttr
	}

	var handler slog.Handler
	switch config.Format {
	case FormatJSON:
		handler = slog.NewJSONHandler(config.Output.Writer(), opts)
	case FormatText:
		handler = slog.NewTextHandler(config.Output.Writer(), opts)
	default:
		handler = slog.NewJSONHandler(config.Output.Writer(), opts)
	}

	l := slog.New(handler)
	if config.ServiceName != "" {
		l = l.With("service", config.ServiceName)
	}

	return &Logger{
		slog:   l,
		config: config,
	}
}

// Default creates a logger with default configuration
func Default() *Logger {
	return New(DefaultConfig())
}

// Development creates a logger with development configuration
func Development() *Logger {
	return New(DevelopmentConfig())
}

// Discard creates a logger that writes nothing
func Discard() *Logger {
	return New(DiscardConfig())
}

// With returns a new Logger with the given attributes added to all log entries
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		slog:   l.slog.With(args...),
		config: l.config,
	}
}

// WithGroup returns a new Logger with a group name that prefixes all attributes
func (l *Logger) WithGroup(name string) *Logger {
	return &Logger{
		slog:   l.slog.WithGroup(name),
		config: l.config,
	}
}

// WithSession tags every entry with the generation session and its dialect
func (l *Logger) WithSession(sessionID, dialect string) *Logger {
	return l.With("session_id", sessionID, "dialect", dialect)
}

// WithError adds error details to the logger.
// A ScriptsmithError contributes its code and kind.
func (l *Logger) WithError(err error) *Logger {
	if err == nil {
		return l
	}

	if se, ok := errors.As(err); ok {
		args := []any{
			"error", se.Message,
			"error_code", string(se.Code),
			"error_kind", string(se.Kind()),
		}
		if se.Cause != nil {
			args = append(args, "cause", se.Cause.Error())
		}
		return l.With(args...)
	}

	return l.With("error", err.Error())
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, args ...any) {
	l.slog.Debug(msg, args...)
}

// DebugContext logs a debug message with context
func (l *Logger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.slog.DebugContext(ctx, msg, args...)
}

// Info logs an info message
func (l *Logger) Info(msg string, args ...any) {
	l.slog.Info(msg, args...)
}

// InfoContext logs an info message with context
func (l *Logger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.slog.InfoContext(ctx, msg, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string, args ...any) {
	l.slog.Warn(msg, args...)
}

// WarnContext logs a warning message with context
func (l *Logger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.slog.WarnContext(ctx, msg, args...)
}

// Error logs an error message
func (l *Logger) Error(msg string, args ...any) {
	l.slog.Error(msg, args...)
}

// ErrorContext logs an error message with context
func (l *Logger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.slog.ErrorContext(ctx, msg, args...)
}

// LogError logs a ScriptsmithError with full details
func (l *Logger) LogError(ctx context.Context, msg string, err error) {
	if err == nil {
		return
	}

	if se, ok := errors.As(err); ok {
		args := []any{
			"error_code", string(se.Code),
			"error_kind", string(se.Kind()),
			"error_message", se.Message,
		}
		if len(se.Suggestions) > 0 {
			args = append(args, "suggestions", se.Suggestions)
		}
		if se.Cause != nil {
			args = append(args, "cause", se.Cause.Error())
		}
		l.ErrorContext(ctx, msg, args...)
		return
	}

	l.ErrorContext(ctx, msg, "error", err.Error())
}

// Enabled returns whether the logger is enabled for the given level
func (l *Logger) Enabled(ctx context.Context, level Level) bool {
	return l.slog.Enabled(ctx, level.ToSlogLevel())
}

// Handler returns the underlying slog.Handler
func (l *Logger) Handler() slog.Handler {
	return l.slog.Handler()
}

// Config returns the logger configuration
func (l *Logger) Config() Config {
	return l.config
}
