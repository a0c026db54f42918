package cfd

import (
	"fmt"
	"iter"
	"math"
	"time"
)

// DefaultStep is the bucket width used when AxisConfig.Step is zero.
const DefaultStep = time.Minute

// MaxBuckets caps the number of buckets one axis may span.
const MaxBuckets = 100_000

// Window is a half-open time interval [Start, End).
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// AxisConfig describes a uniform bucket axis.
// A zero Step is the unset value and means DefaultStep; a negative Step is malformed.
type AxisConfig struct {
	Start time.Time     `json:"start"`
	End   time.Time     `json:"end"`
	Step  time.Duration `json:"step"`
	// Skip, when set, removes the buckets it contains from the axis.
	Skip *Window `json:"skip,omitempty"`
}

// Validate checks the config without generating any bucket.
func (c AxisConfig) Validate() error {
	if c.Start.IsZero() || c.End.IsZero() {
		return fmt.Errorf("%w: start and end are required", ErrMalformedAxisConfig)
	}

	if c.Start.After(c.End) {
		return fmt.Errorf("%w: start %s is after end %s",
			ErrMalformedAxisConfig, c.Start.Format(time.RFC3339), c.End.Format(time.RFC3339))
	}

	if c.Step < 0 {
		return fmt.Errorf("%w: step must be positive, got %s", ErrMalformedAxisConfig, c.Step)
	}

	if c.intervals() >= MaxBuckets {
		return fmt.Errorf("%w: more than %d buckets between %s and %s",
			ErrMalformedAxisConfig, MaxBuckets, c.Start.Format(time.RFC3339), c.End.Format(time.RFC3339))
	}

	if c.Skip != nil && !c.Skip.Start.Before(c.Skip.End) {
		return fmt.Errorf("%w: skip window [%s, %s) is empty",
			ErrMalformedAxisConfig, c.Skip.Start.Format(time.RFC3339), c.Skip.End.Format(time.RFC3339))
	}

	return nil
}

// intervals returns the number of whole steps between start and end, which
// is one less than the bucket count before the skip window is applied.
// Ranges too long for a Duration count as unbounded.
func (c AxisConfig) intervals() int64 {
	span := c.End.Sub(c.Start)
	if span == math.MaxInt64 {
		return math.MaxInt64
	}

	return int64(span / c.step())
}

func (c AxisConfig) step() time.Duration {
	if c.Step == 0 {
		return DefaultStep
	}

	return c.Step
}

// Coarsened returns c with its step widened to the smallest whole number of
// minutes that keeps the axis within MaxBuckets. Axes that already fit, and
// ranges too long for a Duration, are returned unchanged.
func (c AxisConfig) Coarsened() AxisConfig {
	n := c.intervals()
	if n < MaxBuckets || n == math.MaxInt64 {
		return c
	}

	c.Step = (c.End.Sub(c.Start)/(MaxBuckets-1)).Truncate(time.Minute) + time.Minute

	return c
}

// Axis is a validated, restartable bucket sequence.
type Axis struct {
	start time.Time
	end   time.Time
	step  time.Duration
	skip  *Window
}

// NewAxis validates cfg and returns the axis it describes.
func NewAxis(cfg AxisConfig) (Axis, error) {
	err := cfg.Validate()
	if err != nil {
		return Axis{}, err
	}

	axis := Axis{start: cfg.Start, end: cfg.End, step: cfg.step()}

	if cfg.Skip != nil {
		skip := *cfg.Skip
		axis.skip = &skip
	}

	return axis, nil
}

// Step returns the bucket width.
func (a Axis) Step() time.Duration {
	return a.step
}

// Buckets yields start, start+step, ... up to the last value not after end,
// leaving out buckets inside the skip window. Each call restarts from start.
func (a Axis) Buckets() iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		if a.step <= 0 {
			return
		}

		for t := a.start; !t.After(a.end); t = t.Add(a.step) {
			if a.skip != nil && a.skip.Contains(t) {
				continue
			}

			if !yield(t) {
				return
			}
		}
	}
}

// Len returns the number of buckets.
func (a Axis) Len() int {
	n := 0

	for range a.Buckets() {
		n++
	}

	return n
}

// Times materializes the bucket sequence.
func (a Axis) Times() []time.Time {
	times := make([]time.Time, 0, a.Len())

	for t := range a.Buckets() {
		times = append(times, t)
	}

	return times
}
