package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
)

type AppLogger struct {
	handler *slog.Logger
}

func NewLogger(env string) *AppLogger {
	return NewLoggerWithWriter(env, os.Stdout)
}

func NewLoggerWithWriter(env string, w io.Writer) *AppLogger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}
	if env == "production" {
		opts.Level = slog.LevelInfo
	}

	return &AppLogger{handler: slog.New(slog.NewJSONHandler(w, opts))}
}

func (l *AppLogger) Info(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, slog.LevelInfo, msg, fields...)
}

func (l *AppLogger) Debug(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, slog.LevelDebug, msg, fields...)
}

func (l *AppLogger) Warn(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, slog.LevelWarn, msg, fields...)
}

func (l *AppLogger) Error(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, slog.LevelError, msg, fields...)
}

func (l *AppLogger) With(fields ...Field) Logger {
	return &AppLogger{handler: l.handler.With(toAttrs(fields)...)}
}

func (l *AppLogger) log(ctx context.Context, level slog.Level, msg string, fields ...Field) {
	l.handler.Log(ctx, level, msg, toAttrs(fields)...)
}

func toAttrs(fields []Field) []any {
	attrs := make([]any, len(fields))
	for i, f := range fields {
		attrs[i] = slog.Any(f.Key, f.Value)
	}
	return attrs
}

// Logger returns the underlying slog.Logger for use with libraries that require it.
func (l *AppLogger) Logger() *slog.Logger {
	return l.handler
}
