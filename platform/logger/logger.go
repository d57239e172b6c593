// Package logger wraps log/slog with the fields this service logs everywhere.
package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

type contextKey string

const (
	// RequestIDKey holds the HTTP request ID on a context.
	RequestIDKey contextKey = "request_id"
	// TaskIDKey holds the asynq task ID on a context.
	TaskIDKey contextKey = "task_id"
)

// Logger is a slog.Logger with a few domain helpers.
type Logger struct {
	*slog.Logger
}

// New logs to stdout: text at debug level in development, JSON at info otherwise.
func New(env string) *Logger {
	return NewWithWriter(env, os.Stdout)
}

// NewWithWriter is New with an explicit destination. emsctl logs to stderr
// so stdout carries only command output.
func NewWithWriter(env string, w io.Writer) *Logger {
	if strings.EqualFold(env, "development") {
		return &Logger{Logger: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))}
	}
	return &Logger{Logger: slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))}
}

// WithContext adds request_id and task_id attributes found on ctx.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}

	var attrs []any
	if id, ok := ctx.Value(RequestIDKey).(string); ok && id != "" {
		attrs = append(attrs, slog.String("request_id", id))
	}
	if id, ok := ctx.Value(TaskIDKey).(string); ok && id != "" {
		attrs = append(attrs, slog.String("task_id", id))
	}
	if len(attrs) == 0 {
		return l
	}
	return &Logger{Logger: l.With(attrs...)}
}

// HTTPRequest logs one served request.
func (l *Logger) HTTPRequest(method, path string, status int, latencyMs float64, clientIP string) {
	l.Info("http_request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Float64("latency_ms", latencyMs),
		slog.String("client_ip", clientIP),
	)
}

// ParseFailure logs a payload that could not be read, naming the error's
// concrete type as exceptionType. Extra key/value pairs are appended.
func (l *Logger) ParseFailure(msg string, err error, args ...any) {
	attrs := append([]any{
		slog.String("exceptionType", ErrorType(err)),
		slog.String("exceptionMessage", err.Error()),
	}, args...)
	l.Error(msg, attrs...)
}

// CacheError logs a failed cache operation.
func (l *Logger) CacheError(operation, key string, err error) {
	l.Error("cache_error",
		slog.String("operation", operation),
		slog.String("key", key),
		slog.String("error", err.Error()),
	)
}

// RateLimitExceeded logs a rejected request.
func (l *Logger) RateLimitExceeded(clientIP, path string) {
	l.Warn("rate_limit_exceeded",
		slog.String("client_ip", clientIP),
		slog.String("path", path),
	)
}

// ErrorType names the concrete type of err, looking through fmt.Errorf wrapping.
func ErrorType(err error) string {
	for err != nil {
		name := fmt.Sprintf("%T", err)
		if name != "*fmt.wrapError" && name != "*fmt.wrapErrors" {
			return name
		}
		err = errors.Unwrap(err)
	}
	return "<nil>"
}
