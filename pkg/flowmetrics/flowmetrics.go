package flowmetrics

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/Sumatoshi-tech/flowdeck/pkg/cfd"
)

// LeadTime is the time from an order entering the queue to its delivery.
func LeadTime(order cfd.Order, norm cfd.Normalizer) (time.Duration, error) {
	first, err := norm.Normalize(order[cfd.AwaitingPreparation])
	if err != nil {
		return 0, fmt.Errorf("%s: %w", cfd.AwaitingPreparation.Key(), err)
	}

	last, err := norm.Normalize(order[cfd.Delivered])
	if err != nil {
		return 0, fmt.Errorf("%s: %w", cfd.Delivered.Key(), err)
	}

	return last.Sub(first), nil
}

// PhaseDurations returns the time each phase took, indexed by phase.
// A phase lasts from the previous phase's completion to its own; the first
// phase has no recorded start and is always zero.
func PhaseDurations(order cfd.Order, norm cfd.Normalizer) ([cfd.NumPhases]time.Duration, error) {
	var (
		out   [cfd.NumPhases]time.Duration
		times [cfd.NumPhases]time.Time
	)

	for _, p := range cfd.Phases() {
		ts, err := norm.Normalize(order[p])
		if err != nil {
			return out, fmt.Errorf("%s: %w", p.Key(), err)
		}

		times[p] = ts

		if p > cfd.AwaitingPreparation {
			out[p] = ts.Sub(times[p-1])
		}
	}

	return out, nil
}

// LeadTimes returns the lead time in minutes of every order whose endpoints
// parse, and the number of orders skipped.
func LeadTimes(orders []cfd.Order, norm cfd.Normalizer) (minutes []float64, skipped int) {
	minutes = make([]float64, 0, len(orders))

	for _, o := range orders {
		lt, err := LeadTime(o, norm)
		if err != nil {
			skipped++

			continue
		}

		minutes = append(minutes, lt.Minutes())
	}

	return minutes, skipped
}

// PhaseSummaries summarizes the time spent in each phase over all fully parseable orders.
func PhaseSummaries(orders []cfd.Order, norm cfd.Normalizer) [cfd.NumPhases]Summary {
	var samples [cfd.NumPhases][]float64

	for _, o := range orders {
		durations, err := PhaseDurations(o, norm)
		if err != nil {
			continue
		}

		for p, d := range durations {
			samples[p] = append(samples[p], d.Minutes())
		}
	}

	var out [cfd.NumPhases]Summary

	for p := range out {
		out[p] = Summarize(samples[p])
	}

	return out
}

// DayCount is the number of orders delivered on one civil day.
type DayCount struct {
	Date  time.Time `json:"date"`
	Count int       `json:"count"`
}

// MaxFilledDays bounds the span Throughput fills with zero days.
const MaxFilledDays = 3660

// Throughput counts delivered orders per civil day in the normalizer's zone.
// Days between the first and last delivery with no deliveries are reported as
// zero while the span is at most MaxFilledDays; longer spans list only the
// days with deliveries, so the result never outgrows the orders.
func Throughput(orders []cfd.Order, norm cfd.Normalizer) []DayCount {
	loc := norm.Location()
	counts := make(map[time.Time]int)

	var first, last time.Time

	for _, o := range orders {
		ts, err := norm.Normalize(o[cfd.Delivered])
		if err != nil {
			continue
		}

		day := time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, loc)
		counts[day]++

		if first.IsZero() || day.Before(first) {
			first = day
		}

		if last.IsZero() || day.After(last) {
			last = day
		}
	}

	if len(counts) == 0 {
		return nil
	}

	// Sub saturates, so spans past the Duration limit still read as too long.
	if last.Sub(first)/(24*time.Hour) >= MaxFilledDays {
		out := make([]DayCount, 0, len(counts))

		for _, day := range slices.SortedFunc(maps.Keys(counts), time.Time.Compare) {
			out = append(out, DayCount{Date: day, Count: counts[day]})
		}

		return out
	}

	var out []DayCount

	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		out = append(out, DayCount{Date: day, Count: counts[day]})
	}

	return out
}

// WorkInProgress returns, for each point of the series, the orders that have
// entered the queue but are not yet delivered.
func WorkInProgress(series *cfd.Series) []int {
	if series == nil {
		return nil
	}

	out := make([]int, len(series.Points))

	for i, pt := range series.Points {
		out[i] = pt.Count(cfd.AwaitingPreparation) - pt.Count(cfd.Delivered)
	}

	return out
}
