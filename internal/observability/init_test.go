package observability_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/flowdeck/internal/observability"
)

func TestInit_NoopWhenNoEndpoint(t *testing.T) {
	t.Parallel()

	cfg := observability.DefaultConfig()
	cfg.ServiceVersion = "1.0.0"
	cfg.Environment = "test"
	cfg.Mode = observability.ModeMCP

	providers, err := observability.Init(cfg)
	require.NoError(t, err)

	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.Meter)
	assert.NotNil(t, providers.Logger)
	require.NotNil(t, providers.Aggregations)

	_, span := providers.Tracer.Start(context.Background(), "flowdeck.test")
	span.End()

	providers.Aggregations.RecordAggregation(context.Background(), observability.AggregationStats{Orders: 1, Duration: time.Millisecond})

	require.NoError(t, providers.Shutdown(context.Background()))
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := observability.DefaultConfig()

	assert.Equal(t, "flowdeck", cfg.ServiceName)
	assert.Equal(t, observability.ModeCLI, cfg.Mode)
	assert.Empty(t, cfg.OTLPEndpoint)
	assert.Positive(t, cfg.ShutdownTimeoutSec)
	assert.Positive(t, cfg.LogMaxSizeMB)
}

func TestParseOTLPHeaders(t *testing.T) {
	t.Parallel()

	assert.Nil(t, observability.ParseOTLPHeaders(""))
	assert.Nil(t, observability.ParseOTLPHeaders("garbage"))
	assert.Equal(t,
		map[string]string{"authorization": "Bearer x", "tenant": "pizzeria"},
		observability.ParseOTLPHeaders(" authorization = Bearer x ,tenant=pizzeria"),
	)
}
