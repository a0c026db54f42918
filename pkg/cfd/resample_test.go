package cfd_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/flowdeck/pkg/cfd"
)

func TestResample_ForwardFill(t *testing.T) {
	t.Parallel()

	observations := []cfd.Point{
		{Time: baseTime.Add(2 * time.Minute), Counts: cfd.Counts{0, 0, 0, 0, 0, 1}},
		{Time: baseTime.Add(5 * time.Minute), Counts: cfd.Counts{0, 0, 0, 0, 2, 3}},
	}

	axis, err := cfd.NewAxis(cfd.AxisConfig{Start: baseTime, End: baseTime.Add(7 * time.Minute)})
	require.NoError(t, err)

	points := cfd.Resample(observations, axis)
	require.Len(t, points, 8)

	want := []cfd.Counts{
		{}, {},
		{0, 0, 0, 0, 0, 1}, {0, 0, 0, 0, 0, 1}, {0, 0, 0, 0, 0, 1},
		{0, 0, 0, 0, 2, 3}, {0, 0, 0, 0, 2, 3}, {0, 0, 0, 0, 2, 3},
	}

	for i, pt := range points {
		assert.Equal(t, baseTime.Add(time.Duration(i)*time.Minute), pt.Time)
		assert.Equal(t, want[i], pt.Counts, "bucket %d", i)
	}
}

func TestResample_Idempotent(t *testing.T) {
	t.Parallel()

	axis, err := cfd.NewAxis(cfd.AxisConfig{
		Start: baseTime,
		End:   baseTime.Add(4 * time.Hour),
		Step:  3 * time.Minute,
		Skip:  &cfd.Window{Start: baseTime.Add(time.Hour), End: baseTime.Add(90 * time.Minute)},
	})
	require.NoError(t, err)

	series, err := cfd.Aggregate(randomOrders(11, 60), cfd.AxisConfig{
		Start: baseTime,
		End:   baseTime.Add(4 * time.Hour),
		Step:  3 * time.Minute,
		Skip:  &cfd.Window{Start: baseTime.Add(time.Hour), End: baseTime.Add(90 * time.Minute)},
	})
	require.NoError(t, err)

	again := cfd.Resample(series.Points, axis)
	assert.Equal(t, series.Points, again)
}

func TestResample_NoObservations(t *testing.T) {
	t.Parallel()

	axis, err := cfd.NewAxis(cfd.AxisConfig{Start: baseTime, End: baseTime.Add(time.Hour), Step: 30 * time.Minute})
	require.NoError(t, err)

	points := cfd.Resample(nil, axis)
	require.Len(t, points, 3)

	for _, pt := range points {
		assert.Equal(t, cfd.Counts{}, pt.Counts)
	}
}

func TestAt(t *testing.T) {
	t.Parallel()

	points := []cfd.Point{
		{Time: baseTime, Counts: cfd.Counts{0, 0, 0, 0, 0, 1}},
		{Time: baseTime.Add(time.Minute), Counts: cfd.Counts{0, 0, 0, 0, 1, 1}},
	}

	assert.Equal(t, cfd.Counts{}, cfd.At(points, baseTime.Add(-time.Second)))
	assert.Equal(t, cfd.Counts{0, 0, 0, 0, 0, 1}, cfd.At(points, baseTime.Add(30*time.Second)))
	assert.Equal(t, cfd.Counts{0, 0, 0, 0, 1, 1}, cfd.At(points, baseTime.Add(time.Hour)))
}
