package mockdata

import (
	"time"

	"github.com/google/uuid"

	"github.com/Sumatoshi-tech/flowdeck/pkg/cfd"
)

// Order synthesis parameters.
const (
	openingHour     = 19
	lastStartSpread = 3.5 // Hours after opening during which orders start.
	peakHour        = 20
	peakPhase       = cfd.AwaitingPackaging
	peakFactor      = 3
	intervalJitter  = 0.1
	secondsPerMin   = 60
)

// baseIntervals are the nominal minutes each phase takes, in phase order.
var baseIntervals = [cfd.NumPhases]float64{5, 15, 3, 3, 8, 15}

// SyntheticOrder is a generated order with its identifier and placement time.
type SyntheticOrder struct {
	ID     string    `json:"id"     yaml:"id"`
	Placed time.Time `json:"placed" yaml:"placed"`
	Phases cfd.Order `json:"phases" yaml:"phases"`
}

// Orders synthesizes n orders placed on day between 19:00 and 22:30.
// Phase durations vary by ±10%; during the 20h peak the packaging queue
// takes three times longer.
func (g *Generator) Orders(day time.Time, n int) []SyntheticOrder {
	day = day.In(g.loc)
	midnight := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, g.loc)

	orders := make([]SyntheticOrder, 0, n)

	for range n {
		offset := g.uniform(openingHour, openingHour+lastStartSpread)
		placed := midnight.Add(time.Duration(offset * float64(time.Hour))).Truncate(time.Minute)
		peak := placed.Hour() == peakHour

		var phases cfd.Order

		current := placed

		for _, phase := range cfd.Phases() {
			interval := g.jitter(baseIntervals[phase], intervalJitter)
			if peak && phase == peakPhase {
				interval *= peakFactor
			}

			current = current.Add(time.Duration(interval * secondsPerMin * float64(time.Second)))
			phases[phase] = current.Format(time.RFC3339)
		}

		orders = append(orders, SyntheticOrder{
			ID:     g.newID(),
			Placed: placed,
			Phases: phases,
		})
	}

	return orders
}

// Records strips synthetic orders down to their phase tuples.
func Records(orders []SyntheticOrder) []cfd.Order {
	out := make([]cfd.Order, len(orders))

	for i, o := range orders {
		out[i] = o.Phases
	}

	return out
}

// newID returns a UUID drawn from the generator's source.
func (g *Generator) newID() string {
	id, err := uuid.NewRandomFromReader(rngReader{g})
	if err != nil {
		return uuid.Nil.String()
	}

	return id.String()
}

// rngReader adapts the generator to io.Reader for uuid generation.
type rngReader struct {
	g *Generator
}

func (r rngReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = byte(r.g.rng.Uint32())
	}

	return len(p), nil
}
