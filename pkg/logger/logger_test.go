package logger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

var errTest = errors.New("sentinel")

func TestNew_Success(t *testing.T) {
	logger := New("test-package")

	assert.NotNil(t, logger)
	assert.IsType(t, &SlogLogger{}, logger)
}

func TestNewWithConfig_Formats(t *testing.T) {
	for _, format := range []Format{FormatJSON, FormatText, ""} {
		t.Run(string(format), func(t *testing.T) {
			logger := NewWithConfig(Config{Name: "svc", Format: format, Level: slog.LevelDebug})
			assert.IsType(t, &SlogLogger{}, logger)
		})
	}
}

func TestNewWithContext_NoTraceID(t *testing.T) {
	logger := NewWithContext(context.Background(), "test-service")

	assert.NotNil(t, logger)
}

func TestTraceFromContext_AddsTraceID(t *testing.T) {
	var captured []string
	logger := &SlogLogger{logger: slog.New(&testHandler{logs: &captured})}

	ctx := ContextWithTraceID(context.Background(), "trace-123")
	logger.TraceFromContext(ctx).Function("Submit").Info("rating stored", "raceID", 42)

	assert.Len(t, captured, 1)
	assert.Contains(t, captured[0], "rating stored")
	assert.Contains(t, captured[0], "traceID=trace-123")
	assert.Contains(t, captured[0], "function=Submit")
	assert.Contains(t, captured[0], "raceID=42")
}

func TestTraceFromContext_NoTraceID(t *testing.T) {
	var captured []string
	logger := &SlogLogger{logger: slog.New(&testHandler{logs: &captured})}

	logger.TraceFromContext(context.Background()).Info("plain")

	assert.Len(t, captured, 1)
	assert.NotContains(t, captured[0], "traceID")
}

func TestTraceIDFromContext(t *testing.T) {
	assert.Equal(t, "", TraceIDFromContext(context.Background()))
	assert.Equal(t, "abc", TraceIDFromContext(ContextWithTraceID(context.Background(), "abc")))
}

func TestErrorHelpers(t *testing.T) {
	logger := New("test")

	tests := []struct {
		name     string
		call     func() error
		expected string
		is       error
	}{
		{
			name:     "Error builds error from message",
			call:     func() error { return logger.Error("something failed", "k", "v") },
			expected: "something failed",
		},
		{
			name:     "Err returns wrapped error untouched",
			call:     func() error { return logger.Err("context", errTest) },
			expected: "sentinel",
			is:       errTest,
		},
		{
			name:     "Err with nil error falls back to message",
			call:     func() error { return logger.Err("nothing to wrap", nil) },
			expected: "nothing to wrap",
		},
		{
			name:     "ErrMsg",
			call:     func() error { return logger.ErrMsg("bare") },
			expected: "bare",
		},
		{
			name:     "Errorf",
			call:     func() error { return logger.Errorf("msg", "detail") },
			expected: "error: detail",
		},
		{
			name:     "ErrorWithType wraps the type",
			call:     func() error { return logger.ErrorWithType(errTest, "rating out of range") },
			expected: "sentinel: rating out of range",
			is:       errTest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			assert.Error(t, err)
			assert.Equal(t, tt.expected, err.Error())
			if tt.is != nil {
				assert.True(t, errors.Is(err, tt.is))
			}
		})
	}
}

func TestLevelMethods(t *testing.T) {
	var captured []string
	logger := &SlogLogger{logger: slog.New(&testHandler{logs: &captured})}

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Er("er message", errTest)

	assert.Len(t, captured, 4)
	assert.Contains(t, captured[3], "error=sentinel")
}

func TestTimer(t *testing.T) {
	var captured []string
	logger := &SlogLogger{logger: slog.New(&testHandler{logs: &captured})}

	done := logger.Timer("feed build")
	done()

	assert.Len(t, captured, 2)
	assert.Contains(t, captured[1], "operation=feed build")
}

// testHandler captures formatted records, keeping attributes added through With
type testHandler struct {
	logs  *[]string
	attrs []slog.Attr
}

func (h *testHandler) Enabled(_ context.Context, _ slog.Level) bool {
	return true
}

func (h *testHandler) Handle(_ context.Context, record slog.Record) error {
	parts := []string{record.Message}
	for _, attr := range h.attrs {
		parts = append(parts, fmt.Sprintf("%s=%v", attr.Key, attr.Value))
	}
	record.Attrs(func(attr slog.Attr) bool {
		parts = append(parts, fmt.Sprintf("%s=%v", attr.Key, attr.Value))
		return true
	})

	*h.logs = append(*h.logs, strings.Join(parts, " "))
	return nil
}

func (h *testHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &testHandler{logs: h.logs, attrs: merged}
}

func (h *testHandler) WithGroup(_ string) slog.Handler {
	return h
}
