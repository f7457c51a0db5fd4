package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestSetup_JSONAddsServiceAndVersion(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("taskboard", "1.2.3", "json", &buf)

	logger.Info("hello", "key", "value")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "taskboard", entry["service"])
	assert.Equal(t, "1.2.3", entry["version"])
	assert.Equal(t, "value", entry["key"])
	assert.NotContains(t, entry, "trace_id")
}

func TestSetup_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("taskboard", "dev", "text", &buf)

	logger.Info("hello")

	assert.Contains(t, buf.String(), "msg=hello")
	assert.Contains(t, buf.String(), "service=taskboard")
}

func TestSetup_AddsTraceContext(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("taskboard", "dev", "json", &buf)

	traceID := trace.TraceID{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f, 0x10}
	spanID := trace.SpanID{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}
	spanCtx := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID})
	ctx := trace.ContextWithSpanContext(context.Background(), spanCtx)

	logger.InfoContext(ctx, "traced")

	entry := decodeLine(t, &buf)
	assert.Equal(t, traceID.String(), entry["trace_id"])
	assert.Equal(t, spanID.String(), entry["span_id"])
}

func TestSetup_WithAttrsKeepsMetadata(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("taskboard", "dev", "json", &buf).With("component", "auth").WithGroup("req")

	logger.Info("grouped", "id", 7)

	assert.Contains(t, buf.String(), `"service":"taskboard"`)
	assert.Contains(t, buf.String(), `"component":"auth"`)
}

func TestLogError_OopsError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	err := oops.Code("TASK_NOT_FOUND").With("task_id", "abc").Errorf("task missing")
	LogError(context.Background(), logger, "request failed", err)

	entry := decodeLine(t, &buf)
	assert.Equal(t, "request failed", entry["msg"])
	assert.Equal(t, "TASK_NOT_FOUND", entry["code"])
	assert.Contains(t, buf.String(), "task_id")
}

func TestLogError_PlainError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	LogError(context.Background(), logger, "request failed", errors.New("boom"))

	entry := decodeLine(t, &buf)
	assert.Equal(t, "boom", entry["error"])
	assert.NotContains(t, entry, "code")
}
