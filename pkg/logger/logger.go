package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

type contextKey string

const (
	// DefaultTraceIDKey is the context key the TraceID middleware stores request ids under
	DefaultTraceIDKey contextKey = "traceID"
)

// Format represents the logging output format
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// Config holds logger configuration options
type Config struct {
	// Name is the logger identifier (package or service name)
	Name string

	Format Format
	Level  slog.Level

	// Writer defaults to os.Stderr when nil
	Writer io.Writer

	AddSource bool
}

// Logger is the structured logger used across the service. Error helpers log
// and hand back an error so call sites can `return log.Err(...)`.
type Logger interface {
	Errorf(msg string, errMessage string) error
	Error(msg string, args ...any) error
	ErrorWithType(errType error, msg string, args ...any) error
	Err(msg string, err error, args ...any) error
	ErrMsg(msg string) error
	Er(msg string, err error, args ...any)
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
	Info(msg string, args ...any)
	With(args ...any) Logger
	File(name string) Logger
	Function(name string) Logger
	Timer(msg string) func()

	WithTraceID(traceID string) Logger
	TraceFromContext(ctx context.Context) Logger
}

// SlogLogger implements Logger on top of log/slog
type SlogLogger struct {
	logger *slog.Logger
}

// New creates a logger configured from LOG_FORMAT and LOG_LEVEL
func New(name string) Logger {
	var handler slog.Handler

	if isTestMode() {
		handler = slog.NewTextHandler(io.Discard, nil)
	} else {
		opts := &slog.HandlerOptions{Level: levelFromEnv()}
		if os.Getenv("LOG_FORMAT") == "text" {
			handler = slog.NewTextHandler(os.Stderr, opts)
		} else {
			handler = slog.NewJSONHandler(os.Stderr, opts)
		}
	}

	return &SlogLogger{
		logger: slog.New(handler).With("package", name),
	}
}

// NewWithContext creates a named logger carrying the trace id found in ctx
func NewWithContext(ctx context.Context, name string) Logger {
	return New(name).TraceFromContext(ctx)
}

// NewWithConfig creates a logger from an explicit configuration
func NewWithConfig(config Config) Logger {
	writer := config.Writer
	if writer == nil {
		writer = os.Stderr
	}

	handlerOpts := &slog.HandlerOptions{
		Level:     config.Level,
		AddSource: config.AddSource,
	}

	var handler slog.Handler
	switch config.Format {
	case FormatText:
		handler = slog.NewTextHandler(writer, handlerOpts)
	default:
		handler = slog.NewJSONHandler(writer, handlerOpts)
	}

	return &SlogLogger{
		logger: slog.New(handler).With("package", config.Name),
	}
}

func levelFromEnv() slog.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func isTestMode() bool {
	for _, arg := range os.Args {
		if strings.HasPrefix(arg, "-test.") {
			return true
		}
	}
	return false
}

// ContextWithTraceID adds a trace ID to the context
func ContextWithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, DefaultTraceIDKey, traceID)
}

// TraceIDFromContext extracts the trace ID from context
func TraceIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if traceID, ok := ctx.Value(DefaultTraceIDKey).(string); ok {
		return traceID
	}
	return ""
}

func (l *SlogLogger) With(args ...any) Logger {
	return &SlogLogger{
		logger: l.logger.With(args...),
	}
}

func (l *SlogLogger) Error(msg string, args ...any) error {
	l.logger.Error(msg, args...)
	return fmt.Errorf("%s", msg)
}

func (l *SlogLogger) ErrorWithType(errType error, msg string, args ...any) error {
	l.logger.Error(msg, args...)
	return fmt.Errorf("%w: %s", errType, msg)
}

func (l *SlogLogger) File(name string) Logger {
	return l.With("file", name)
}

func (l *SlogLogger) Function(name string) Logger {
	return l.With("function", name)
}

func (l *SlogLogger) Timer(msg string) func() {
	start := time.Now()
	l.logger.Debug("Starting", "operation", msg)

	return func() {
		duration := time.Since(start)
		l.logger.Info("Timer Completed",
			"operation", msg,
			"duration_ms", duration.Milliseconds(),
			"duration", duration.String(),
		)
	}
}

func (l *SlogLogger) Errorf(msg string, errMessage string) error {
	err := fmt.Errorf("error: %s", errMessage)
	l.logger.Error(msg, "error", err)
	return err
}

func (l *SlogLogger) Er(msg string, err error, args ...any) {
	logArgs := append([]any{"error", err}, args...)
	l.logger.Error(msg, logArgs...)
}

func (l *SlogLogger) Err(msg string, err error, args ...any) error {
	logArgs := append([]any{"error", err}, args...)
	l.logger.Error(msg, logArgs...)
	if err == nil {
		return fmt.Errorf("%s", msg)
	}
	return err
}

func (l *SlogLogger) ErrMsg(msg string) error {
	l.logger.Error(msg)
	return fmt.Errorf("%s", msg)
}

func (l *SlogLogger) Debug(msg string, args ...any) {
	l.logger.Debug(msg, args...)
}

func (l *SlogLogger) Warn(msg string, args ...any) {
	l.logger.Warn(msg, args...)
}

func (l *SlogLogger) Info(msg string, args ...any) {
	l.logger.Info(msg, args...)
}

func (l *SlogLogger) WithTraceID(traceID string) Logger {
	return l.With("traceID", traceID)
}

// TraceFromContext attaches the request trace id, if any, to the logger
func (l *SlogLogger) TraceFromContext(ctx context.Context) Logger {
	traceID := TraceIDFromContext(ctx)
	if traceID == "" {
		return l
	}
	return l.WithTraceID(traceID)
}
