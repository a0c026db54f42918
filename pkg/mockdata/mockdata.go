// Package mockdata fabricates plausible pizzeria datasets for the demo charts.
// Every generator draws from a seeded source, so a fixed seed always yields
// the same data.
package mockdata

import (
	"math"
	"math/rand/v2"
	"time"
)

// seedMix decorrelates the two PCG state words derived from one seed.
const seedMix = 0x9e3779b97f4a7c15

// Generator produces mock data from a deterministic pseudo-random source.
// It is not safe for concurrent use.
type Generator struct {
	rng *rand.Rand
	loc *time.Location
}

// New returns a generator seeded with seed. Timestamps are produced in UTC.
func New(seed uint64) *Generator {
	return NewInLocation(seed, time.UTC)
}

// NewInLocation returns a generator whose wall-clock rules (opening hours,
// peak hour, weekdays) are evaluated in loc.
func NewInLocation(seed uint64, loc *time.Location) *Generator {
	if loc == nil {
		loc = time.UTC
	}

	return &Generator{
		rng: rand.New(rand.NewPCG(seed, seed^seedMix)),
		loc: loc,
	}
}

// uniform returns a float in [lo, hi).
func (g *Generator) uniform(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}

// jitter scales v by a random factor in [1-frac, 1+frac).
func (g *Generator) jitter(v, frac float64) float64 {
	return v * g.uniform(1-frac, 1+frac)
}

// roundInt rounds half away from zero.
func roundInt(v float64) int {
	return int(math.Round(v))
}
