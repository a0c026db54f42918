package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func TestConfiguredSampler(t *testing.T) {
	t.Parallel()

	assert.Nil(t, configuredSampler(Config{}), "unset config defers to OTEL_TRACES_SAMPLER")

	debug := configuredSampler(Config{DebugTrace: true, SampleRatio: 0.25})
	require.NotNil(t, debug)
	assert.Equal(t, "AlwaysOnSampler", debug.Description())

	ratio := configuredSampler(Config{SampleRatio: 0.25})
	require.NotNil(t, ratio)
	assert.Contains(t, ratio.Description(), "TraceIDRatioBased{0.25}")
}

func TestDeckResource(t *testing.T) {
	t.Parallel()

	res := deckResource(Config{ServiceName: "flowdeck", Mode: ModeServe})

	mode, ok := res.Set().Value(attribute.Key("app.mode"))
	require.True(t, ok)
	assert.Equal(t, "serve", mode.AsString())

	name, ok := res.Set().Value(attribute.Key("service.name"))
	require.True(t, ok)
	assert.Equal(t, "flowdeck", name.AsString())

	_, ok = res.Set().Value(attribute.Key("deployment.environment"))
	assert.False(t, ok)
}
