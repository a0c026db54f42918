package observability

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	noopmetric "go.opentelemetry.io/otel/metric/noop"
)

var (
	errCounter = errors.New("counter rejected")
	errGauge   = errors.New("gauge rejected")
)

func TestInstruments_Create(t *testing.T) {
	t.Parallel()

	in := &instruments{meter: noopmetric.NewMeterProvider().Meter("test")}

	assert.NotNil(t, in.counter("test.counter", "counter", "{order}"))
	assert.NotNil(t, in.seconds("test.duration", "duration"))
	assert.NotNil(t, in.inflight("test.inflight", "inflight", "{request}"))
	assert.NotNil(t, in.gauge("test.gauge", "gauge", "{bucket}"))
	require.NoError(t, in.err())
}

func TestInstruments_JoinsEveryError(t *testing.T) {
	t.Parallel()

	in := &instruments{meter: noopmetric.NewMeterProvider().Meter("test")}

	in.track("ok", nil)
	in.track("flowdeck.cfd.orders.total", errCounter)
	in.track("flowdeck.cfd.buckets", errGauge)

	err := in.err()
	require.ErrorIs(t, err, errCounter)
	require.ErrorIs(t, err, errGauge)
	assert.Contains(t, err.Error(), "create flowdeck.cfd.buckets")
}
