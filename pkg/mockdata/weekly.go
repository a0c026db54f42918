package mockdata

import (
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/Sumatoshi-tech/flowdeck/pkg/cfd"
)

// Weekly flow parameters. Times are in minutes unless noted.
const (
	flowOpenHour      = 19
	flowCloseHour     = 23
	flowSample        = 10
	flowMeanLeadTime  = 40
	flowLeadVariance  = 8
	flowMeanOrders    = 60
	flowOrderJitter   = 0.1
	flowSlotsPerHour  = 60 / flowSample
	minutesPerHour    = 60
	midnightSlotLabel = "00:00"
)

// dailyDemand scales the order volume by weekday, indexed by time.Weekday.
var dailyDemand = [7]float64{0.5, 0.7, 1.0, 1.3, 1.7, 2.0, 2.2}

// hourlyDemand is the share of a day's orders placed in each hour after opening.
var hourlyDemand = []float64{0.08, 0.15, 0.22, 0.18, 0.10}

// flowWeek is the business week shown on the weekly chart, Wednesday to Monday.
var flowWeek = []time.Weekday{
	time.Wednesday, time.Thursday, time.Friday, time.Saturday, time.Sunday, time.Monday,
}

// FlowSlot is one sample of the weekly cumulative flow.
type FlowSlot struct {
	Label  string     `json:"label"`
	Counts cfd.Counts `json:"counts"`
}

type flowOrder struct {
	entry    int
	leadTime int
}

// WeeklyFlow simulates a Wednesday-to-Monday week of evenings sampled every
// ten minutes. At midnight every phase catches up with the busiest one and the
// totals carry into the next day.
func (g *Generator) WeeklyFlow() []FlowSlot {
	slots := flowSlots()
	out := make([]FlowSlot, 0, len(slots)*len(flowWeek))

	var cumulative cfd.Counts

	waitingIdx := cfd.NumPhases - 1

	for _, day := range flowWeek {
		orders := g.flowOrders(day)

		for slotIdx, slot := range slots {
			var entries cfd.Counts

			for _, o := range orders {
				start := o.entry
				end := o.entry + int(math.Ceil(float64(o.leadTime)/flowSample))

				if slot.hour < flowCloseHour && slotIdx == start {
					entries[waitingIdx]++
				}

				for p := waitingIdx - 1; p >= 0; p-- {
					phaseStart := start + ((waitingIdx-p)*(end-start))/cfd.NumPhases
					if slotIdx == phaseStart && slotIdx > start && slotIdx <= end {
						entries[p]++
					}
				}
			}

			for p := range cumulative {
				cumulative[p] += entries[p]
			}

			if slot.label == midnightSlotLabel {
				peak := slices.Max(cumulative[:])
				for p := range cumulative {
					cumulative[p] = peak
				}
			}

			out = append(out, FlowSlot{
				Label:  day.String()[:3] + " " + slot.label,
				Counts: cumulative,
			})
		}
	}

	return out
}

type flowSlot struct {
	label string
	hour  int
}

// flowSlots lists 19:00 through 22:50 plus a closing midnight sample.
func flowSlots() []flowSlot {
	slots := make([]flowSlot, 0, (flowCloseHour-flowOpenHour)*flowSlotsPerHour+1)

	for h := flowOpenHour; h < flowCloseHour; h++ {
		for m := 0; m < minutesPerHour; m += flowSample {
			slots = append(slots, flowSlot{label: fmt.Sprintf("%02d:%02d", h, m), hour: h})
		}
	}

	return append(slots, flowSlot{label: midnightSlotLabel})
}

// flowOrders draws a day's orders as (entry slot, lead time) pairs sorted by entry.
func (g *Generator) flowOrders(day time.Weekday) []flowOrder {
	total := roundInt(flowMeanOrders * dailyDemand[day] * g.uniform(1-flowOrderJitter, 1+flowOrderJitter))

	var orders []flowOrder

	for h, share := range hourlyDemand {
		for range roundInt(float64(total) * share) {
			minute := g.rng.IntN(minutesPerHour)
			lead := flowMeanLeadTime + roundInt((g.rng.Float64()-0.5)*2*flowLeadVariance)

			orders = append(orders, flowOrder{
				entry:    h*flowSlotsPerHour + minute/flowSample,
				leadTime: lead,
			})
		}
	}

	slices.SortStableFunc(orders, func(a, b flowOrder) int { return a.entry - b.entry })

	return orders
}
