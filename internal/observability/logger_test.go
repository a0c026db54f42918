package observability_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/flowdeck/internal/observability"
)

func TestTracingHandler_InjectsTraceContext(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	inner := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := slog.New(observability.NewTracingHandler(inner, "flowdeck", "dev", observability.ModeServe))

	traceID, err := trace.TraceIDFromHex("0102030405060708090a0b0c0d0e0f10")
	require.NoError(t, err)

	spanID, err := trace.SpanIDFromHex("0102030405060708")
	require.NoError(t, err)

	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	logger.WithGroup("cfd").With("step", "1m").InfoContext(ctx, "aggregated", "buckets", 61)

	var record map[string]any

	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))

	assert.Equal(t, "0102030405060708090a0b0c0d0e0f10", record["trace_id"])
	assert.Equal(t, "0102030405060708", record["span_id"])
	assert.Equal(t, map[string]any{"step": "1m", "buckets": float64(61)}, record["cfd"])
	assert.Equal(t, "flowdeck", record["service"])
	assert.Equal(t, "dev", record["env"])
	assert.Equal(t, "serve", record["mode"])
}

func TestTracingHandler_UngroupedRecord(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	inner := slog.NewJSONHandler(&buf, nil)
	logger := slog.New(observability.NewTracingHandler(inner, "flowdeck", "", observability.ModeCLI)).With("slides", 10)

	logger.Info("deck rendered")

	var record map[string]any

	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))

	assert.Equal(t, float64(10), record["slides"])
	assert.Equal(t, "cli", record["mode"])
	assert.NotContains(t, record, "trace_id")
	assert.NotContains(t, record, "env")
}

func TestNewLogger_TextToWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	cfg := observability.DefaultConfig()

	logger, closer := observability.NewLogger(cfg, &buf)
	logger.Debug("hidden")
	logger.Info("deck rendered", "slides", 10)

	require.NoError(t, closer.Close())
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=\"deck rendered\"")
	assert.Contains(t, buf.String(), "mode=cli")
}

func TestNewLogger_RotatedFile(t *testing.T) {
	t.Parallel()

	cfg := observability.DefaultConfig()
	cfg.LogJSON = true
	cfg.LogFile = filepath.Join(t.TempDir(), "flowdeck.log")

	var buf bytes.Buffer

	logger, closer := observability.NewLogger(cfg, &buf)
	logger.Warn("skipped timestamp", "raw", "nope")
	require.NoError(t, closer.Close())

	assert.Empty(t, buf.String())

	data, err := os.ReadFile(cfg.LogFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"skipped timestamp"`)
}
