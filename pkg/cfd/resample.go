package cfd

import "time"

// Resample produces one point per axis bucket. Each bucket carries the most
// recent observation at or before it; buckets before the first observation
// are all zero. Observations must be sorted by time.
func Resample(observations []Point, axis Axis) []Point {
	out := make([]Point, 0, axis.Len())

	next := 0

	var last Counts

	for bucket := range axis.Buckets() {
		for next < len(observations) && !observations[next].Time.After(bucket) {
			last = observations[next].Counts
			next++
		}

		out = append(out, Point{Time: bucket, Counts: last})
	}

	return out
}

// At returns the counts in effect at t, looked up in a resampled or observed series.
func At(points []Point, t time.Time) Counts {
	var counts Counts

	for _, pt := range points {
		if pt.Time.After(t) {
			break
		}

		counts = pt.Counts
	}

	return counts
}
