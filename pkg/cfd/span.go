package cfd

import "time"

// DataSpan returns an axis config covering every parseable timestamp in
// orders, starting on the hour of the earliest one and ending on the latest.
// It reports false when no timestamp parses.
func DataSpan(orders []Order, loc *time.Location) (AxisConfig, bool) {
	norm := NewNormalizer(loc)

	var first, last time.Time

	for _, o := range orders {
		for _, raw := range o {
			t, err := norm.Normalize(raw)
			if err != nil {
				continue
			}

			if first.IsZero() || t.Before(first) {
				first = t
			}

			if last.IsZero() || t.After(last) {
				last = t
			}
		}
	}

	if first.IsZero() {
		return AxisConfig{}, false
	}

	start := time.Date(first.Year(), first.Month(), first.Day(), first.Hour(), 0, 0, 0, first.Location())

	return AxisConfig{Start: start, End: last}, true
}
