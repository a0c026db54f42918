// Package chart turns typed chart options into themed go-echarts charts.
package chart

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// Kind selects the chart family.
type Kind string

// Supported chart kinds.
const (
	KindBar        Kind = "bar"
	KindStackedBar Kind = "stacked_bar"
	KindLine       Kind = "line"
	KindArea       Kind = "area"
	KindPie        Kind = "pie"
)

// Sentinel errors for invalid options.
var (
	ErrUnknownKind    = errors.New("unknown chart kind")
	ErrNoSeries       = errors.New("chart has no series")
	ErrLengthMismatch = errors.New("series length does not match labels")
)

// Defaults.
const (
	defaultWidth   = "100%"
	defaultHeight  = "480px"
	stackName      = "total"
	areaOpacity    = 0.9
	overlayWidth   = 2
	pieInnerRadius = "45%"
	pieOuterRadius = "70%"
	triggerAxis    = "axis"
	triggerItem    = "item"
	pieLabelFormat = "{b}: {d}%"
)

// Chart is anything that renders itself as an HTML document.
type Chart interface {
	Render(w io.Writer) error
}

// Series is one named sequence of values aligned with Options.Labels.
type Series struct {
	Name  string
	Data  []float64
	Color string // Optional, uses the theme palette if empty.
	// Dashed draws an overlay as a dashed reference line.
	Dashed bool
	// PointColors colors individual pie slices.
	PointColors []string
}

// Options fully describe a chart. The zero value of every optional field
// picks a sensible default.
type Options struct {
	Kind      Kind
	Title     string
	Subtitle  string
	Labels    []string
	Series    []Series
	Overlays  []Series // Lines drawn on top of bar charts or added to line charts.
	XAxisName string
	YAxisName string
	Theme     Theme
	Width     string
	Height    string
	Zoom      bool
	// Horizontal swaps the axes of bar charts.
	Horizontal bool
	Smooth     bool
	// Headline is a headline figure appended to a pie chart subtitle.
	Headline string
}

// Build validates o and constructs the chart it describes.
func Build(o Options) (Chart, error) {
	err := o.validate()
	if err != nil {
		return nil, err
	}

	co := NewChartOpts(o.Theme)

	switch o.Kind {
	case KindBar, KindStackedBar:
		return buildBar(co, o), nil
	case KindLine, KindArea:
		return buildLine(co, o), nil
	case KindPie:
		return buildPie(co, o), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, o.Kind)
	}
}

func (o Options) validate() error {
	if len(o.Series) == 0 {
		return ErrNoSeries
	}

	for _, s := range append(append([]Series(nil), o.Series...), o.Overlays...) {
		if len(s.Data) != len(o.Labels) {
			return fmt.Errorf("%w: %q has %d values for %d labels", ErrLengthMismatch, s.Name, len(s.Data), len(o.Labels))
		}
	}

	return nil
}

func (o Options) size() (width, height string) {
	width, height = o.Width, o.Height
	if width == "" {
		width = defaultWidth
	}

	if height == "" {
		height = defaultHeight
	}

	return width, height
}

func (o Options) rectGlobals(co *ChartOpts) []charts.GlobalOpts {
	width, height := o.size()

	xAxis, yAxis := co.XAxis(o.XAxisName), co.YAxis(o.YAxisName)
	if o.Horizontal {
		xAxis.Name, yAxis.Name = o.YAxisName, o.XAxisName
	}

	globals := []charts.GlobalOpts{
		charts.WithInitializationOpts(co.Init(width, height)),
		charts.WithTitleOpts(co.Title(o.Title, o.Subtitle)),
		charts.WithTooltipOpts(co.Tooltip(triggerAxis)),
		charts.WithLegendOpts(co.Legend()),
		charts.WithGridOpts(co.Grid()),
		charts.WithXAxisOpts(xAxis),
		charts.WithYAxisOpts(yAxis),
	}

	if o.Zoom {
		globals = append(globals, charts.WithDataZoomOpts(co.DataZoom()...))
	}

	return globals
}

func seriesColor(s Series, palette Palette, i int) string {
	if s.Color != "" {
		return s.Color
	}

	return palette.SeriesColor(i)
}

func buildBar(co *ChartOpts, o Options) *charts.Bar {
	palette := o.Theme.Palette()

	bar := charts.NewBar()
	bar.SetGlobalOptions(o.rectGlobals(co)...)
	bar.SetXAxis(o.Labels)

	for i, s := range o.Series {
		data := make([]opts.BarData, len(s.Data))
		for j, v := range s.Data {
			data[j] = opts.BarData{Value: v}
		}

		seriesOpts := []charts.SeriesOpts{
			charts.WithItemStyleOpts(opts.ItemStyle{Color: seriesColor(s, palette, i)}),
		}

		if o.Kind == KindStackedBar {
			seriesOpts = append(seriesOpts, charts.WithBarChartOpts(opts.BarChart{Stack: stackName}))
		}

		bar.AddSeries(s.Name, data, seriesOpts...)
	}

	if len(o.Overlays) > 0 {
		overlay := charts.NewLine()
		overlay.SetXAxis(o.Labels)
		addOverlays(overlay, o.Overlays, palette, len(o.Series))
		bar.Overlap(overlay)
	}

	if o.Horizontal {
		bar.XYReversal()
	}

	return bar
}

func buildLine(co *ChartOpts, o Options) *charts.Line {
	palette := o.Theme.Palette()

	line := charts.NewLine()
	line.SetGlobalOptions(o.rectGlobals(co)...)
	line.SetXAxis(o.Labels)

	for i, s := range o.Series {
		color := seriesColor(s, palette, i)
		chartOpts := opts.LineChart{Smooth: opts.Bool(o.Smooth)}

		seriesOpts := []charts.SeriesOpts{
			charts.WithItemStyleOpts(opts.ItemStyle{Color: color}),
			charts.WithLineStyleOpts(opts.LineStyle{Color: color}),
		}

		if o.Kind == KindArea {
			chartOpts.Stack = stackName
			chartOpts.ShowSymbol = opts.Bool(false)
			seriesOpts = append(seriesOpts,
				charts.WithAreaStyleOpts(opts.AreaStyle{Color: color, Opacity: opts.Float(areaOpacity)}))
		}

		seriesOpts = append(seriesOpts, charts.WithLineChartOpts(chartOpts))

		line.AddSeries(s.Name, lineData(s.Data), seriesOpts...)
	}

	addOverlays(line, o.Overlays, palette, len(o.Series))

	return line
}

func addOverlays(line *charts.Line, overlays []Series, palette Palette, offset int) {
	for i, s := range overlays {
		color := seriesColor(s, palette, offset+i)
		style := opts.LineStyle{Color: color, Width: overlayWidth}

		if s.Dashed {
			style.Type = "dashed"
		}

		line.AddSeries(s.Name, lineData(s.Data),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: color}),
			charts.WithLineStyleOpts(style),
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(!s.Dashed)}),
		)
	}
}

func lineData(values []float64) []opts.LineData {
	data := make([]opts.LineData, len(values))
	for i, v := range values {
		data[i] = opts.LineData{Value: v}
	}

	return data
}

func buildPie(co *ChartOpts, o Options) *charts.Pie {
	palette := o.Theme.Palette()
	width, height := o.size()

	subtitle := o.Subtitle
	if o.Headline != "" {
		subtitle = strings.TrimSpace(subtitle + " " + o.Headline)
	}

	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithInitializationOpts(co.Init(width, height)),
		charts.WithTitleOpts(co.Title(o.Title, subtitle)),
		charts.WithTooltipOpts(co.Tooltip(triggerItem)),
		charts.WithLegendOpts(opts.Legend{
			Show:      opts.Bool(true),
			Top:       "bottom",
			TextStyle: &opts.TextStyle{Color: co.TextMutedColor()},
		}),
	)

	s := o.Series[0]
	data := make([]opts.PieData, len(s.Data))

	for i, v := range s.Data {
		color := palette.SeriesColor(i)
		if i < len(s.PointColors) && s.PointColors[i] != "" {
			color = s.PointColors[i]
		}

		data[i] = opts.PieData{Name: o.Labels[i], Value: v, ItemStyle: &opts.ItemStyle{Color: color}}
	}

	pie.AddSeries(s.Name, data).
		SetSeriesOptions(
			charts.WithLabelOpts(opts.Label{
				Show:      opts.Bool(true),
				Formatter: pieLabelFormat,
				Color:     co.TextMutedColor(),
			}),
			charts.WithPieChartOpts(opts.PieChart{
				Radius: []string{pieInnerRadius, pieOuterRadius},
			}),
		)

	return pie
}
