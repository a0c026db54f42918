package mockdata

import "github.com/Sumatoshi-tech/flowdeck/pkg/cfd"

// leadTimeSample is the recorded lead time, in minutes, of fifteen orders
// across three stores.
var leadTimeSample = []float64{
	74, 60, 67,
	57, 69, 63,
	73, 58, 66,
	61, 71, 62,
	68, 59, 65,
}

// LeadTimes returns the fixed lead-time sample used on the leadtime slide.
func LeadTimes() []float64 {
	out := make([]float64, len(leadTimeSample))
	copy(out, leadTimeSample)

	return out
}

// PhaseProfile is the mean number of minutes a store's orders spend in each phase.
type PhaseProfile struct {
	Name         string                 `json:"name"          yaml:"name"`
	Minutes      [cfd.NumPhases]float64 `json:"minutes"       yaml:"minutes"`
	AverageTotal float64                `json:"average_total" yaml:"average_total"`
}

// phaseSpread is the maximum random minutes added to each phase mean.
var phaseSpread = [cfd.NumPhases]float64{4, 3, 2, 2, 3, 4}

// DefaultProfile is the chain-wide phase profile.
func DefaultProfile() PhaseProfile {
	return PhaseProfile{Name: "All stores", Minutes: [cfd.NumPhases]float64{20, 15, 5, 2, 4, 11}, AverageTotal: 65}
}

// StoreProfiles returns the per-store profiles compared on the breakdown slides.
func StoreProfiles() []PhaseProfile {
	return []PhaseProfile{
		{Name: "Store 1", Minutes: [cfd.NumPhases]float64{25, 15, 2, 2, 2, 11}, AverageTotal: 65},
		{Name: "Store 2", Minutes: [cfd.NumPhases]float64{5, 15, 3, 2, 3, 27}, AverageTotal: 63},
		{Name: "Store 3", Minutes: [cfd.NumPhases]float64{8, 18, 12, 5, 2, 12}, AverageTotal: 66},
	}
}

// PhaseBreakdown draws n orders' per-phase minutes around the profile means.
func (g *Generator) PhaseBreakdown(profile PhaseProfile, n int) [][cfd.NumPhases]float64 {
	out := make([][cfd.NumPhases]float64, n)

	for i := range out {
		for p := range cfd.NumPhases {
			out[i][p] = profile.Minutes[p] + g.rng.Float64()*phaseSpread[p]
		}
	}

	return out
}

// CycleTime is an order's time split into the two consolidated phase groups.
type CycleTime struct {
	Preparation float64 `json:"preparation"`
	Delivery    float64 `json:"delivery"`
}

// Consolidated cycle-time ranges in minutes.
const (
	preparationBase   = 28
	preparationSpread = 8
	deliveryBase      = 10
	deliverySpread    = 7
)

// Cycletimes draws n orders' preparation (including packaging) and delivery times.
func (g *Generator) Cycletimes(n int) []CycleTime {
	out := make([]CycleTime, n)

	for i := range out {
		out[i] = CycleTime{
			Preparation: preparationBase + g.rng.Float64()*preparationSpread,
			Delivery:    deliveryBase + g.rng.Float64()*deliverySpread,
		}
	}

	return out
}

// Share is the split of lead time between preparation and delivery.
type Share struct {
	Preparation    int `json:"preparation"`
	Delivery       int `json:"delivery"`
	AverageMinutes int `json:"average_minutes"`
}

// Share defaults and the average band shown in the pie center.
const (
	defaultPreparationShare = 45
	defaultDeliveryShare    = 20
	averageLow              = 63
	averageBand             = 5
)

// PreparationShare returns the preparation/delivery split with a sampled average lead time.
func (g *Generator) PreparationShare() Share {
	return Share{
		Preparation:    defaultPreparationShare,
		Delivery:       defaultDeliveryShare,
		AverageMinutes: averageLow + g.rng.IntN(averageBand),
	}
}
