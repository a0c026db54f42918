package cfd_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/flowdeck/pkg/cfd"
)

func TestAxis_InclusiveEnd(t *testing.T) {
	t.Parallel()

	axis, err := cfd.NewAxis(cfd.AxisConfig{Start: baseTime, End: baseTime.Add(10 * time.Minute)})
	require.NoError(t, err)

	times := axis.Times()
	require.Len(t, times, 11)
	assert.Equal(t, baseTime, times[0])
	assert.Equal(t, baseTime.Add(10*time.Minute), times[10])
	assert.Equal(t, cfd.DefaultStep, axis.Step())
}

func TestAxis_StepStopsAtLastValueNotAfterEnd(t *testing.T) {
	t.Parallel()

	axis, err := cfd.NewAxis(cfd.AxisConfig{
		Start: baseTime,
		End:   baseTime.Add(25 * time.Minute),
		Step:  10 * time.Minute,
	})
	require.NoError(t, err)

	assert.Equal(t, []time.Time{
		baseTime,
		baseTime.Add(10 * time.Minute),
		baseTime.Add(20 * time.Minute),
	}, axis.Times())
}

func TestAxis_SingleBucket(t *testing.T) {
	t.Parallel()

	axis, err := cfd.NewAxis(cfd.AxisConfig{Start: baseTime, End: baseTime})
	require.NoError(t, err)
	assert.Equal(t, 1, axis.Len())
}

func TestAxis_ExcludedRange(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 5, 16, 19, 0, 0, 0, time.UTC)
	end := time.Date(2025, 5, 17, 23, 59, 0, 0, time.UTC)
	skip := cfd.Window{
		Start: time.Date(2025, 5, 17, 1, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 5, 17, 18, 0, 0, 0, time.UTC),
	}

	axis, err := cfd.NewAxis(cfd.AxisConfig{Start: start, End: end, Skip: &skip})
	require.NoError(t, err)

	before, err := cfd.NewAxis(cfd.AxisConfig{Start: start, End: skip.Start.Add(-time.Minute)})
	require.NoError(t, err)

	after, err := cfd.NewAxis(cfd.AxisConfig{Start: skip.End, End: end})
	require.NoError(t, err)

	assert.Equal(t, 360, before.Len())
	assert.Equal(t, 360, after.Len())
	assert.Equal(t, before.Len()+after.Len(), axis.Len())

	for bucket := range axis.Buckets() {
		require.False(t, skip.Contains(bucket), "bucket %s inside skip window", bucket)
	}

	times := axis.Times()
	assert.Equal(t, skip.Start.Add(-time.Minute), times[359])
	assert.Equal(t, skip.End, times[360])
}

func TestAxis_Restartable(t *testing.T) {
	t.Parallel()

	axis, err := cfd.NewAxis(cfd.AxisConfig{Start: baseTime, End: baseTime.Add(time.Hour), Step: 15 * time.Minute})
	require.NoError(t, err)

	assert.Equal(t, axis.Times(), axis.Times())

	// Early termination does not affect later iterations.
	for range axis.Buckets() {
		break
	}

	assert.Equal(t, 5, axis.Len())
}

func TestWindow_HalfOpen(t *testing.T) {
	t.Parallel()

	w := cfd.Window{Start: baseTime, End: baseTime.Add(time.Hour)}

	assert.True(t, w.Contains(baseTime))
	assert.True(t, w.Contains(baseTime.Add(59*time.Minute)))
	assert.False(t, w.Contains(baseTime.Add(time.Hour)))
	assert.False(t, w.Contains(baseTime.Add(-time.Minute)))
}

func TestAxis_BucketLimit(t *testing.T) {
	t.Parallel()

	atLimit := cfd.AxisConfig{Start: baseTime, End: baseTime.Add((cfd.MaxBuckets - 1) * time.Minute)}

	axis, err := cfd.NewAxis(atLimit)
	require.NoError(t, err)
	assert.Equal(t, cfd.MaxBuckets, axis.Len())

	overLimit := atLimit
	overLimit.End = overLimit.End.Add(time.Minute)

	_, err = cfd.NewAxis(overLimit)
	require.ErrorIs(t, err, cfd.ErrMalformedAxisConfig)
}

func TestAxisConfig_Coarsened(t *testing.T) {
	t.Parallel()

	fits := cfd.AxisConfig{Start: baseTime, End: baseTime.Add(24 * time.Hour)}
	assert.Equal(t, fits, fits.Coarsened())

	long := cfd.AxisConfig{Start: baseTime, End: baseTime.AddDate(0, 0, 200)}
	require.ErrorIs(t, long.Validate(), cfd.ErrMalformedAxisConfig)

	coarse := long.Coarsened()
	assert.Equal(t, 3*time.Minute, coarse.Step)

	axis, err := cfd.NewAxis(coarse)
	require.NoError(t, err)
	assert.LessOrEqual(t, axis.Len(), cfd.MaxBuckets)

	ancient := cfd.AxisConfig{Start: baseTime, End: baseTime.AddDate(400, 0, 0), Step: 48 * time.Hour}
	require.ErrorIs(t, ancient.Validate(), cfd.ErrMalformedAxisConfig, "ranges past the Duration limit are rejected")
	assert.Equal(t, ancient, ancient.Coarsened())
}
