package cfd_test

import (
	"bytes"
	"log/slog"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/flowdeck/pkg/cfd"
)

var baseTime = time.Date(2025, 5, 16, 19, 0, 0, 0, time.UTC)

func minutes(n int) time.Duration {
	return time.Duration(n) * time.Minute
}

func orderAt(t0 time.Time, offsets ...int) cfd.Order {
	var o cfd.Order

	for i, off := range offsets {
		o[i] = t0.Add(minutes(off)).Format(time.RFC3339)
	}

	return o
}

// randomOrders builds well-formed orders with non-decreasing phase timestamps.
func randomOrders(seed uint64, n int) []cfd.Order {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	orders := make([]cfd.Order, n)

	for i := range orders {
		start := rng.IntN(240)
		offsets := make([]int, cfd.NumPhases)
		cur := start

		for p := range offsets {
			cur += rng.IntN(20)
			offsets[p] = cur
		}

		orders[i] = orderAt(baseTime, offsets...)
	}

	return orders
}

func TestAggregate_SingleOrder(t *testing.T) {
	t.Parallel()

	orders := []cfd.Order{orderAt(baseTime, 0, 5, 8, 11, 26, 41)}
	cfg := cfd.AxisConfig{Start: baseTime.Add(-time.Minute), End: baseTime.Add(minutes(45))}

	series, err := cfd.Aggregate(orders, cfg)
	require.NoError(t, err)
	require.Len(t, series.Points, 47)

	assert.Equal(t, cfd.Counts{}, series.Points[0].Counts)
	assert.Equal(t, cfd.Counts{0, 0, 0, 0, 0, 1}, series.Points[1].Counts)
	assert.Equal(t, cfd.Counts{0, 0, 0, 0, 0, 1}, series.Points[5].Counts)
	assert.Equal(t, cfd.Counts{0, 0, 0, 0, 1, 1}, series.Points[6].Counts)
	assert.Equal(t, cfd.Counts{0, 0, 0, 1, 1, 1}, series.Points[9].Counts)
	assert.Equal(t, cfd.Counts{0, 0, 1, 1, 1, 1}, series.Points[12].Counts)
	assert.Equal(t, cfd.Counts{0, 1, 1, 1, 1, 1}, series.Points[27].Counts)
	assert.Equal(t, cfd.Counts{0, 1, 1, 1, 1, 1}, series.Points[41].Counts)

	for i := 42; i < len(series.Points); i++ {
		assert.Equal(t, cfd.Counts{1, 1, 1, 1, 1, 1}, series.Points[i].Counts, "bucket %d", i)
	}

	assert.Equal(t, 1, series.Last().Count(cfd.Delivered))
	assert.Empty(t, series.Rejected)
	assert.Equal(t, 1, series.Orders)
}

func TestAggregate_EmptyDataset(t *testing.T) {
	t.Parallel()

	cfg := cfd.AxisConfig{Start: baseTime, End: baseTime.Add(minutes(59))}

	series, err := cfd.Aggregate(nil, cfg)
	require.NoError(t, err)
	require.Len(t, series.Points, 60)
	assert.True(t, series.Empty())

	for _, pt := range series.Points {
		assert.Equal(t, cfd.Counts{}, pt.Counts)
	}
}

func TestAggregate_MalformedAxis(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  cfd.AxisConfig
	}{
		{name: "start_after_end", cfg: cfd.AxisConfig{Start: baseTime.Add(time.Hour), End: baseTime}},
		{name: "negative_step", cfg: cfd.AxisConfig{Start: baseTime, End: baseTime.Add(time.Hour), Step: -time.Minute}},
		{name: "missing_end", cfg: cfd.AxisConfig{Start: baseTime}},
		{name: "too_many_buckets", cfg: cfd.AxisConfig{Start: baseTime, End: baseTime.Add(24 * time.Hour), Step: time.Millisecond}},
		{name: "centuries_apart", cfg: cfd.AxisConfig{Start: baseTime, End: baseTime.AddDate(500, 0, 0), Step: time.Nanosecond}},
		{name: "empty_skip", cfg: cfd.AxisConfig{
			Start: baseTime, End: baseTime.Add(time.Hour),
			Skip: &cfd.Window{Start: baseTime.Add(minutes(10)), End: baseTime.Add(minutes(10))},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			series, err := cfd.Aggregate(randomOrders(1, 3), tt.cfg)
			require.ErrorIs(t, err, cfd.ErrMalformedAxisConfig)
			assert.Nil(t, series)
		})
	}
}

func TestAggregate_InvalidTimestampSkipsEntry(t *testing.T) {
	t.Parallel()

	good := orderAt(baseTime, 0, 5, 8, 11, 26, 41)
	bad := orderAt(baseTime, 0, 5, 8, 11, 26, 41)
	bad[cfd.InPackaging] = "not a time"
	bad[cfd.Delivered] = ""

	var logs bytes.Buffer

	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	series, err := cfd.Aggregate([]cfd.Order{good, bad},
		cfd.AxisConfig{Start: baseTime, End: baseTime.Add(minutes(60))},
		cfd.WithLogger(logger),
	)
	require.NoError(t, err)
	require.Len(t, series.Rejected, 2)

	assert.Equal(t, 1, series.Rejected[0].Order)
	assert.Equal(t, cfd.InPackaging, series.Rejected[0].Phase)
	require.ErrorIs(t, series.Rejected[0].Err, cfd.ErrInvalidTimestamp)
	assert.Equal(t, cfd.Delivered, series.Rejected[1].Phase)

	last := series.Last()
	assert.Equal(t, 2, last.Count(cfd.AwaitingPreparation))
	assert.Equal(t, 2, last.Count(cfd.AwaitingPackaging))
	assert.Equal(t, 1, last.Count(cfd.InPackaging))
	assert.Equal(t, 2, last.Count(cfd.AwaitingDelivery))
	assert.Equal(t, 1, last.Count(cfd.Delivered))

	assert.Contains(t, logs.String(), "skipping order phase")
	assert.Contains(t, logs.String(), "in_packaging")
}

func TestAggregate_Monotonic(t *testing.T) {
	t.Parallel()

	series, err := cfd.Aggregate(randomOrders(42, 200),
		cfd.AxisConfig{Start: baseTime.Add(-time.Hour), End: baseTime.Add(6 * time.Hour)})
	require.NoError(t, err)

	for _, phase := range cfd.Phases() {
		counts := series.Phase(phase)

		for i := 1; i < len(counts); i++ {
			require.GreaterOrEqual(t, counts[i], counts[i-1], "phase %s bucket %d", phase.Key(), i)
		}
	}

	assert.Equal(t, 200, series.Last().Count(cfd.Delivered))
}

func TestAggregate_PhaseOrdering(t *testing.T) {
	t.Parallel()

	series, err := cfd.Aggregate(randomOrders(7, 150),
		cfd.AxisConfig{Start: baseTime, End: baseTime.Add(6 * time.Hour), Step: 5 * time.Minute})
	require.NoError(t, err)

	for _, pt := range series.Points {
		for i := 1; i < cfd.NumPhases; i++ {
			require.LessOrEqual(t, pt.Counts[i-1], pt.Counts[i], "at %s", pt.Time)
		}
	}
}

func TestAggregate_MatchesDirectCount(t *testing.T) {
	t.Parallel()

	orders := randomOrders(99, 50)
	cfg := cfd.AxisConfig{Start: baseTime, End: baseTime.Add(5 * time.Hour), Step: 7 * time.Minute}

	series, err := cfd.Aggregate(orders, cfg)
	require.NoError(t, err)

	norm := cfd.NewNormalizer(nil)

	for _, pt := range series.Points {
		for _, phase := range cfd.Phases() {
			want := 0

			for _, o := range orders {
				ts, normErr := norm.Normalize(o[phase])
				require.NoError(t, normErr)

				if !ts.After(pt.Time) {
					want++
				}
			}

			require.Equal(t, want, pt.Count(phase), "phase %s at %s", phase.Key(), pt.Time)
		}
	}
}

func TestAggregate_ToleratesOutOfOrderPhases(t *testing.T) {
	t.Parallel()

	reversed := orderAt(baseTime, 41, 26, 11, 8, 5, 0)

	series, err := cfd.Aggregate([]cfd.Order{reversed},
		cfd.AxisConfig{Start: baseTime, End: baseTime.Add(minutes(45))})
	require.NoError(t, err)

	assert.Equal(t, cfd.Counts{1, 0, 0, 0, 0, 0}, series.Points[0].Counts)
	assert.Equal(t, cfd.Counts{1, 1, 1, 1, 1, 1}, series.Last().Counts)
}

func TestAggregate_Deterministic(t *testing.T) {
	t.Parallel()

	orders := randomOrders(3, 80)
	cfg := cfd.AxisConfig{Start: baseTime, End: baseTime.Add(4 * time.Hour)}

	first, err := cfd.Aggregate(orders, cfg)
	require.NoError(t, err)

	second, err := cfd.Aggregate(orders, cfg)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestAggregate_SkipWindowCarriesHiddenEvents(t *testing.T) {
	t.Parallel()

	// Every phase completes inside the skipped window.
	orders := []cfd.Order{orderAt(baseTime, 70, 71, 72, 73, 74, 75)}
	cfg := cfd.AxisConfig{
		Start: baseTime,
		End:   baseTime.Add(3 * time.Hour),
		Skip:  &cfd.Window{Start: baseTime.Add(time.Hour), End: baseTime.Add(2 * time.Hour)},
	}

	series, err := cfd.Aggregate(orders, cfg)
	require.NoError(t, err)

	at := cfd.At(series.Points, baseTime.Add(2*time.Hour))
	assert.Equal(t, cfd.Counts{1, 1, 1, 1, 1, 1}, at)

	before := cfd.At(series.Points, baseTime.Add(59*time.Minute))
	assert.Equal(t, cfd.Counts{}, before)
}
