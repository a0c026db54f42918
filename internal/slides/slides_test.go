package slides_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/Sumatoshi-tech/flowdeck/internal/deck"
	"github.com/Sumatoshi-tech/flowdeck/internal/observability"
	"github.com/Sumatoshi-tech/flowdeck/internal/slides"
	"github.com/Sumatoshi-tech/flowdeck/pkg/cfd"
	"github.com/Sumatoshi-tech/flowdeck/pkg/chart"
)

var now = time.Date(2025, 5, 16, 23, 30, 0, 0, time.UTC)

func inputs() slides.Inputs {
	return slides.Inputs{
		Title:    "Pizzeria flow",
		Subtitle: "Agile metrics",
		Theme:    chart.ThemeLight,
		Seed:     42,
		Now:      now,
	}
}

func slideIDs(d *deck.Deck) []string {
	ids := make([]string, len(d.Slides))
	for i, s := range d.Slides {
		ids[i] = s.ID
	}

	return ids
}

func TestBuild_SlideOrder(t *testing.T) {
	t.Parallel()

	d, err := slides.Build(context.Background(), inputs())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"title", "leadtime", "leadtime-breakdown", "stores", "cycletimes",
		"preparation-share", "throughput", "throughput-crust", "weekly-flow", "cfd",
	}, slideIDs(d))
	assert.Equal(t, "Synthetic evening", d.Slides[len(d.Slides)-1].Subtitle)

	var buf bytes.Buffer

	require.NoError(t, d.Render(&buf))
	assert.Contains(t, buf.String(), "Pizzeria flow")
	assert.Contains(t, buf.String(), "A week of flow")
}

func TestBuild_SameSeedSameDeck(t *testing.T) {
	t.Parallel()

	render := func() string {
		d, err := slides.Build(context.Background(), inputs())
		require.NoError(t, err)

		var buf bytes.Buffer

		require.NoError(t, d.Render(&buf))

		return buf.String()
	}

	first, second := render(), render()

	assert.Equal(t, len(first), len(second))
}

func TestBuild_DatasetWithRejectedTimestamps(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	metrics, err := observability.NewAggregationMetrics(mp.Meter("test"))
	require.NoError(t, err)

	in := inputs()
	in.Metrics = metrics
	in.Orders = []cfd.Order{
		{"2025-05-16T19:00:00Z", "2025-05-16T19:05:00Z", "2025-05-16T19:20:00Z", "2025-05-16T19:25:00Z", "2025-05-16T19:30:00Z", "2025-05-16T19:50:00Z"},
		{"2025-05-16T19:10:00Z", "not a time", "2025-05-16T19:40:00Z", "2025-05-16T19:45:00Z", "2025-05-16T19:50:00Z", "2025-05-16T20:10:00Z"},
	}

	d, err := slides.Build(context.Background(), in)
	require.NoError(t, err)

	last := d.Slides[len(d.Slides)-1]
	assert.Equal(t, "Recorded orders", last.Subtitle)

	var buf bytes.Buffer

	require.NoError(t, last.Body.Render(&buf))
	assert.Contains(t, buf.String(), "Skipped timestamps")
	assert.Contains(t, buf.String(), "alert-warning")

	var rm metricdata.ResourceMetrics

	require.NoError(t, reader.Collect(context.Background(), &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	var found bool

	for _, m := range rm.ScopeMetrics[0].Metrics {
		if m.Name != "flowdeck.cfd.rejected.timestamps.total" {
			continue
		}

		sum, ok := m.Data.(metricdata.Sum[int64])
		require.True(t, ok)
		require.Len(t, sum.DataPoints, 1)
		assert.Equal(t, int64(1), sum.DataPoints[0].Value)

		found = true
	}

	assert.True(t, found)
}

func TestBuild_UnreadableDataset(t *testing.T) {
	t.Parallel()

	in := inputs()
	in.Orders = []cfd.Order{{"a", "b", "c", "d", "e", "f"}}

	_, err := slides.Build(context.Background(), in)
	require.ErrorIs(t, err, slides.ErrNoOrders)
}

func TestBuild_InvalidAxis(t *testing.T) {
	t.Parallel()

	in := inputs()
	in.Axis = cfd.AxisConfig{Start: now, End: now.Add(-time.Hour), Step: time.Minute}

	_, err := slides.Build(context.Background(), in)
	require.ErrorIs(t, err, cfd.ErrMalformedAxisConfig)
}

func TestBuild_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := slides.Build(ctx, inputs())
	require.ErrorIs(t, err, context.Canceled)
}
