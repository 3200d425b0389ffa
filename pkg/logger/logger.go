package logger

import "context"

// Field is a single structured key/value attached to a log entry.
type Field struct {
	Key   string
	Value any
}

// Logger is the logging abstraction used across the service.
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...Field)
	Info(ctx context.Context, msg string, fields ...Field)
	Warn(ctx context.Context, msg string, fields ...Field)
	Error(ctx context.Context, msg string, fields ...Field)
	With(fields ...Field) Logger
}

// New picks the implementation from the configured format.
// "console" gives human readable zerolog output, anything else JSON via slog.
func New(env, format string) Logger {
	if format == "console" {
		return NewZeroLog(env)
	}
	return NewLogger(env)
}

// Err is a shorthand for an "error" field.
func Err(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}
