package cfd

import (
	"context"
	"log/slog"
	"slices"
	"sort"
	"time"
)

// Order is a raw record of six phase completion timestamps, indexed by Phase.
type Order [NumPhases]string

type options struct {
	loc    *time.Location
	logger *slog.Logger
}

// Option configures Aggregate.
type Option func(*options)

// WithLocation sets the reference zone used for minute truncation. Defaults to UTC.
func WithLocation(loc *time.Location) Option {
	return func(o *options) {
		o.loc = loc
	}
}

// WithLogger sets a logger for rejected entries.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// Aggregate converts orders into a cumulative flow series over the axis
// described by cfg. Unparsable entries are skipped and reported in
// Series.Rejected; a malformed cfg fails before any work is done.
func Aggregate(orders []Order, cfg AxisConfig, opts ...Option) (*Series, error) {
	axis, err := NewAxis(cfg)
	if err != nil {
		return nil, err
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	norm := NewNormalizer(o.loc)

	completions, rejected := collectCompletions(orders, norm)

	if o.logger != nil {
		for _, r := range rejected {
			o.logger.LogAttrs(context.Background(), slog.LevelDebug, "skipping order phase",
				slog.Int("order", r.Order),
				slog.String("phase", r.Phase.Key()),
				slog.String("raw", r.Raw),
			)
		}
	}

	observations := observe(completions)

	return &Series{
		Points:   Resample(observations, axis),
		Rejected: rejected,
		Orders:   len(orders),
	}, nil
}

// collectCompletions normalizes every entry and returns, per phase, the sorted
// completion times.
func collectCompletions(orders []Order, norm Normalizer) ([NumPhases][]time.Time, []RejectedEntry) {
	var (
		completions [NumPhases][]time.Time
		rejected    []RejectedEntry
	)

	for i, order := range orders {
		for _, phase := range Phases() {
			raw := order[phase]

			t, err := norm.Normalize(raw)
			if err != nil {
				rejected = append(rejected, RejectedEntry{Order: i, Phase: phase, Raw: raw, Err: err})

				continue
			}

			completions[phase] = append(completions[phase], t)
		}
	}

	for _, times := range completions {
		slices.SortFunc(times, func(a, b time.Time) int { return a.Compare(b) })
	}

	return completions, rejected
}

// observe evaluates the cumulative counts at every distinct completion time.
func observe(completions [NumPhases][]time.Time) []Point {
	var instants []time.Time

	for _, times := range completions {
		instants = append(instants, times...)
	}

	slices.SortFunc(instants, func(a, b time.Time) int { return a.Compare(b) })
	instants = slices.CompactFunc(instants, time.Time.Equal)

	points := make([]Point, len(instants))

	for i, t := range instants {
		points[i].Time = t

		// Later phases first; each count is independent of the others.
		for _, phase := range StackOrder() {
			points[i].Counts[phase.stackIndex()] = countAtOrBefore(completions[phase], t)
		}
	}

	return points
}

// countAtOrBefore returns how many sorted times are not after t.
func countAtOrBefore(sorted []time.Time, t time.Time) int {
	return sort.Search(len(sorted), func(i int) bool {
		return sorted[i].After(t)
	})
}
