// Package flowmetrics derives agile flow metrics (lead time, phase time,
// throughput, work in progress) from order records.
// Standard deviations are population stddev (÷n, not ÷(n−1)).
package flowmetrics

import (
	"math"
	"slices"
)

// Percentile thresholds reported by Summarize.
const (
	PercentileMedian = 0.5
	PercentileP85    = 0.85
	PercentileP95    = 0.95
)

// Summary describes a sample of durations, in minutes.
type Summary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
	Median float64 `json:"median"`
	P85    float64 `json:"p85"`
	P95    float64 `json:"p95"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Summarize computes the summary of values. An empty sample yields a zero Summary.
func Summarize(values []float64) Summary {
	if len(values) == 0 {
		return Summary{}
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	mean, stddev := meanStdDev(sorted)

	return Summary{
		Count:  len(sorted),
		Mean:   mean,
		StdDev: stddev,
		Median: percentileSorted(sorted, PercentileMedian),
		P85:    percentileSorted(sorted, PercentileP85),
		P95:    percentileSorted(sorted, PercentileP95),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
	}
}

// Percentile returns the p-th percentile (p in [0, 1]) of values using linear
// interpolation between closest ranks. values is not modified.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	return percentileSorted(sorted, p)
}

func percentileSorted(sorted []float64, p float64) float64 {
	p = max(0, min(p, 1))

	idx := p * float64(len(sorted)-1)
	lower := int(math.Floor(idx))
	upper := int(math.Ceil(idx))

	if lower == upper {
		return sorted[lower]
	}

	frac := idx - float64(lower)

	return sorted[lower]*(1-frac) + sorted[upper]*frac
}

func meanStdDev(values []float64) (mean, stddev float64) {
	var sum float64

	for _, v := range values {
		sum += v
	}

	mean = sum / float64(len(values))

	var sumSq float64

	for _, v := range values {
		diff := v - mean
		sumSq += diff * diff
	}

	return mean, math.Sqrt(sumSq / float64(len(values)))
}
