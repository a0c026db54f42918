package dataset

import (
	"time"

	"github.com/Sumatoshi-tech/flowdeck/pkg/cfd"
)

// Closing-time limits applied by Repair, as civil time of the timestamp's own day.
const (
	lastIntakeHour      = 23
	lastIntakeMinute    = 0
	lastDeliveryHour    = 23
	lastDeliveryMinute  = 55
	minimumPhaseSpacing = time.Minute
)

// Correction describes one timestamp rewritten by Repair.
type Correction struct {
	Order int       `json:"order"`
	Phase cfd.Phase `json:"phase"`
	From  string    `json:"from"`
	To    string    `json:"to"`
}

// Repair returns a copy of orders with closing-time limits and phase order enforced.
//
// An order may not enter the queue after 23:00 nor be delivered after 23:55.
// Ordering is then enforced from Delivered backwards: a phase that completes
// after its successor is pulled back to one minute before it, so the clamped
// delivery time never moves. Timestamps that cannot be parsed are left
// untouched and do not take part in ordering. Rewritten timestamps are
// formatted as RFC 3339 in loc.
func Repair(orders []cfd.Order, loc *time.Location) ([]cfd.Order, []Correction) {
	norm := cfd.NewNormalizer(loc)
	out := make([]cfd.Order, len(orders))

	var corrections []Correction

	for i, order := range orders {
		out[i] = order

		var (
			times [cfd.NumPhases]time.Time
			valid [cfd.NumPhases]bool
		)

		for _, p := range cfd.Phases() {
			ts, err := norm.Normalize(order[p])
			if err == nil {
				times[p], valid[p] = ts, true
			}
		}

		set := func(p cfd.Phase, ts time.Time) {
			times[p] = ts

			formatted := ts.In(norm.Location()).Format(time.RFC3339)
			corrections = append(corrections, Correction{Order: i, Phase: p, From: out[i][p], To: formatted})
			out[i][p] = formatted
		}

		if valid[cfd.AwaitingPreparation] {
			if limit := clampAt(times[cfd.AwaitingPreparation], lastIntakeHour, lastIntakeMinute); times[cfd.AwaitingPreparation].After(limit) {
				set(cfd.AwaitingPreparation, limit)
			}
		}

		if valid[cfd.Delivered] {
			if limit := clampAt(times[cfd.Delivered], lastDeliveryHour, lastDeliveryMinute); times[cfd.Delivered].After(limit) {
				set(cfd.Delivered, limit)
			}
		}

		next := -1

		for p := cfd.Delivered; p >= cfd.AwaitingPreparation; p-- {
			if !valid[p] {
				continue
			}

			if next >= 0 && times[p].After(times[next]) {
				set(p, times[next].Add(-minimumPhaseSpacing))
			}

			next = int(p)
		}
	}

	return out, corrections
}

// clampAt returns hour:minute on ts's own civil day.
func clampAt(ts time.Time, hour, minute int) time.Time {
	return time.Date(ts.Year(), ts.Month(), ts.Day(), hour, minute, 0, 0, ts.Location())
}
