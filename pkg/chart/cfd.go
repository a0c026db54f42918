package chart

import (
	"time"

	"github.com/Sumatoshi-tech/flowdeck/pkg/cfd"
)

// Bucket label layouts.
const (
	clockLayout    = "15:04"
	weekdayLayout  = "Mon 15:04"
	multiDaySpread = 24 * time.Hour
)

// CFDOptions lays a cumulative flow series out as a stacked area chart with
// delivered at the bottom and awaiting preparation on top.
func CFDOptions(series *cfd.Series, theme Theme) Options {
	var points []cfd.Point
	if series != nil {
		points = series.Points
	}

	labels := make([]string, len(points))
	layout := clockLayout

	if len(points) > 1 && points[len(points)-1].Time.Sub(points[0].Time) >= multiDaySpread {
		layout = weekdayLayout
	}

	for i, pt := range points {
		labels[i] = pt.Time.Format(layout)
	}

	return Options{
		Kind:      KindArea,
		Title:     "Cumulative flow",
		Labels:    labels,
		Series:    CountSeries(points, func(pt cfd.Point) cfd.Counts { return pt.Counts }),
		YAxisName: "Orders",
		Theme:     theme,
		Zoom:      true,
	}
}

// CountSeries builds one area series per phase, in stack order, from any
// sequence of per-phase counts.
func CountSeries[T any](rows []T, counts func(T) cfd.Counts) []Series {
	out := make([]Series, 0, cfd.NumPhases)

	for idx, phase := range cfd.StackOrder() {
		data := make([]float64, len(rows))
		for i, row := range rows {
			data[i] = float64(counts(row)[idx])
		}

		out = append(out, Series{Name: phase.String(), Data: data, Color: phase.Color()})
	}

	return out
}
