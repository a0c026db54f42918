// Package slides assembles the pizzeria agile-metrics deck.
package slides

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/flowdeck/internal/deck"
	"github.com/Sumatoshi-tech/flowdeck/internal/observability"
	"github.com/Sumatoshi-tech/flowdeck/pkg/cfd"
	"github.com/Sumatoshi-tech/flowdeck/pkg/chart"
	"github.com/Sumatoshi-tech/flowdeck/pkg/flowmetrics"
	"github.com/Sumatoshi-tech/flowdeck/pkg/mockdata"
	"github.com/Sumatoshi-tech/flowdeck/pkg/safeconv"
)

const tracerName = "flowdeck/slides"

// Deck sizes.
const (
	breakdownOrders  = 25
	cycletimeOrders  = 15
	throughputDays   = 30
	syntheticOrders  = 60
	leadTimeTarget   = 65
	averageLineLabel = "Average"
)

// ErrNoOrders is returned when no timestamp of the dataset can be read.
var ErrNoOrders = errors.New("no orders to chart")

// Inputs configure a deck build.
type Inputs struct {
	Title    string
	Subtitle string
	Theme    chart.Theme
	// Seed drives every generated chart.
	Seed uint64
	// Orders is the dataset charted on the CFD slide. When empty, a
	// synthetic evening is generated from Seed.
	Orders []cfd.Order
	// Axis bounds the dataset CFD. A zero Start/End spans the dataset's own evening.
	Axis     cfd.AxisConfig
	Location *time.Location
	// Now anchors the throughput history.
	Now     time.Time
	Logger  *slog.Logger
	Metrics *observability.AggregationMetrics
}

// Build renders every slide of the deck.
func Build(ctx context.Context, in Inputs) (*deck.Deck, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "flowdeck.slides.build",
		trace.WithAttributes(
			attribute.Int("slides.orders", len(in.Orders)),
			attribute.Int64("slides.seed", safeconv.ClampUint64ToInt64(in.Seed)),
		))
	defer span.End()

	if in.Location == nil {
		in.Location = time.UTC
	}

	if in.Now.IsZero() {
		in.Now = time.Now()
	}

	if in.Logger == nil {
		in.Logger = slog.Default()
	}

	gen := mockdata.NewInLocation(in.Seed, in.Location)

	d := deck.New(in.Title, in.Subtitle).WithTheme(in.Theme)

	builders := []func(context.Context, *mockdata.Generator, Inputs) (deck.Slide, error){
		titleSlide,
		leadTimeSlide,
		breakdownSlide,
		storesSlide,
		cycletimeSlide,
		shareSlide,
		throughputSlide,
		crustSlide,
		weeklyFlowSlide,
		datasetFlowSlide,
	}

	for _, build := range builders {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("build deck: %w", err)
		}

		slideCtx, slideSpan := otel.Tracer(tracerName).Start(ctx, observability.SpanSlide)

		slide, err := build(slideCtx, gen, in)
		if err != nil {
			slideSpan.RecordError(err)
			slideSpan.End()
			span.RecordError(err)

			return nil, fmt.Errorf("build slide: %w", err)
		}

		slideSpan.SetAttributes(attribute.String("slides.id", slide.ID))
		slideSpan.End()

		d.Add(slide)
	}

	span.SetAttributes(attribute.Int("slides.count", len(d.Slides)))
	in.Logger.DebugContext(ctx, "deck built", "slides", len(d.Slides), "seed", in.Seed)

	return d, nil
}

func chartSlide(id, title, subtitle string, o chart.Options, notes ...string) (deck.Slide, error) {
	c, err := chart.Build(o)
	if err != nil {
		return deck.Slide{}, fmt.Errorf("%s: %w", id, err)
	}

	return deck.Slide{ID: id, Title: title, Subtitle: subtitle, Notes: notes, Body: deck.WrapChart(c)}, nil
}

func constant(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}

	return out
}

func titleSlide(_ context.Context, _ *mockdata.Generator, in Inputs) (deck.Slide, error) {
	sample := flowmetrics.Summarize(mockdata.LeadTimes())

	return deck.Slide{
		ID:       "title",
		Title:    in.Title,
		Subtitle: in.Subtitle,
		Notes:    []string{"Every chart that follows measures the same orders from a different angle."},
		Body: deck.NewGrid(3,
			deck.NewStat("Lead time target", fmt.Sprintf("%d min", leadTimeTarget)),
			deck.NewStat("Average lead time", fmt.Sprintf("%.0f min", sample.Mean)).
				WithHint(fmt.Sprintf("%d orders sampled", sample.Count)),
			deck.NewStat("85th percentile", fmt.Sprintf("%.0f min", sample.P85)),
		),
	}, nil
}

func leadTimeSlide(_ context.Context, _ *mockdata.Generator, in Inputs) (deck.Slide, error) {
	values := mockdata.LeadTimes()
	labels := make([]string, len(values))

	for i := range values {
		labels[i] = fmt.Sprintf("#%d", i+1)
	}

	return chartSlide("leadtime", "Lead time", "From order placed to pizza delivered",
		chart.Options{
			Kind:      chart.KindBar,
			Labels:    labels,
			Series:    []chart.Series{{Name: "Lead time", Data: values}},
			Overlays:  []chart.Series{{Name: averageLineLabel, Data: constant(leadTimeTarget, len(values)), Dashed: true}},
			XAxisName: "Order",
			YAxisName: "Minutes",
			Theme:     in.Theme,
		},
		"Lead time is what the customer feels.",
		"Orders cluster around the 65 minute average.",
	)
}

// phaseMinutesSeries builds one stacked series per phase in process order.
func phaseMinutesSeries(rows [][cfd.NumPhases]float64) []chart.Series {
	out := make([]chart.Series, 0, cfd.NumPhases)

	for _, p := range cfd.Phases() {
		data := make([]float64, len(rows))
		for i, row := range rows {
			data[i] = roundTenth(row[p])
		}

		out = append(out, chart.Series{Name: p.String(), Data: data, Color: p.Color()})
	}

	return out
}

func roundTenth(v float64) float64 {
	const scale = 10

	return math.Round(v*scale) / scale
}

func breakdownSlide(_ context.Context, gen *mockdata.Generator, in Inputs) (deck.Slide, error) {
	profile := mockdata.DefaultProfile()
	rows := gen.PhaseBreakdown(profile, breakdownOrders)
	labels := make([]string, len(rows))

	for i := range rows {
		labels[i] = fmt.Sprintf("#%d", i+1)
	}

	return chartSlide("leadtime-breakdown", "Where lead time goes", profile.Name,
		chart.Options{
			Kind:       chart.KindStackedBar,
			Labels:     labels,
			Series:     phaseMinutesSeries(rows),
			YAxisName:  "Minutes",
			Theme:      in.Theme,
			Horizontal: true,
			Height:     "600px",
		},
		"Waiting for preparation is the largest slice.",
	)
}

func storesSlide(_ context.Context, _ *mockdata.Generator, in Inputs) (deck.Slide, error) {
	profiles := mockdata.StoreProfiles()
	labels := make([]string, len(profiles))
	rows := make([][cfd.NumPhases]float64, len(profiles))
	averages := make([]float64, len(profiles))

	for i, p := range profiles {
		labels[i] = p.Name
		rows[i] = p.Minutes
		averages[i] = p.AverageTotal
	}

	return chartSlide("stores", "Stores compared", "Mean minutes per phase",
		chart.Options{
			Kind:      chart.KindStackedBar,
			Labels:    labels,
			Series:    phaseMinutesSeries(rows),
			Overlays:  []chart.Series{{Name: "Average lead time", Data: averages, Dashed: true}},
			YAxisName: "Minutes",
			Theme:     in.Theme,
		},
		"Similar totals hide very different bottlenecks.",
		"Store 2 loses its time on the road; store 3 in the packaging queue.",
	)
}

func cycletimeSlide(_ context.Context, gen *mockdata.Generator, in Inputs) (deck.Slide, error) {
	cycles := gen.Cycletimes(cycletimeOrders)
	labels := make([]string, len(cycles))
	prep := make([]float64, len(cycles))
	delivery := make([]float64, len(cycles))

	for i, c := range cycles {
		labels[i] = fmt.Sprintf("#%d", i+1)
		prep[i] = roundTenth(c.Preparation)
		delivery[i] = roundTenth(c.Delivery)
	}

	return chartSlide("cycletimes", "Cycle times", "Preparation (with packaging) and delivery",
		chart.Options{
			Kind:   chart.KindStackedBar,
			Labels: labels,
			Series: []chart.Series{
				{Name: "Preparation", Data: prep, Color: cfd.InPreparation.Color()},
				{Name: "Delivery", Data: delivery, Color: cfd.Delivered.Color()},
			},
			YAxisName: "Minutes",
			Theme:     in.Theme,
		},
	)
}

func shareSlide(_ context.Context, gen *mockdata.Generator, in Inputs) (deck.Slide, error) {
	share := gen.PreparationShare()

	return chartSlide("preparation-share", "Preparation vs delivery", "Share of the average lead time",
		chart.Options{
			Kind:   chart.KindPie,
			Labels: []string{"Preparation", "Delivery"},
			Series: []chart.Series{{
				Name:        "Share",
				Data:        []float64{float64(share.Preparation), float64(share.Delivery)},
				PointColors: []string{cfd.InPreparation.Color(), cfd.Delivered.Color()},
			}},
			Headline: fmt.Sprintf("Average %d min", share.AverageMinutes),
			Theme:    in.Theme,
		},
	)
}

func throughputSlide(_ context.Context, gen *mockdata.Generator, in Inputs) (deck.Slide, error) {
	days := gen.DailyThroughput(in.Now, throughputDays)
	labels := make([]string, len(days))
	counts := make([]float64, len(days))

	var total float64

	for i, d := range days {
		labels[i] = d.Date.Format("Mon 02")
		counts[i] = float64(d.Count)
		total += counts[i]
	}

	return chartSlide("throughput", "Throughput", "Pizzas delivered per day",
		chart.Options{
			Kind:      chart.KindBar,
			Labels:    labels,
			Series:    []chart.Series{{Name: "Pizzas", Data: counts}},
			Overlays:  []chart.Series{{Name: averageLineLabel, Data: constant(roundTenth(total/float64(len(days))), len(days)), Dashed: true}},
			YAxisName: "Pizzas",
			Theme:     in.Theme,
			Zoom:      true,
		},
		"Closed on Tuesdays; weekends carry the week.",
	)
}

func crustSlide(_ context.Context, gen *mockdata.Generator, in Inputs) (deck.Slide, error) {
	split := mockdata.CrustSplit(gen.DailyThroughput(in.Now, throughputDays))
	labels := make([]string, len(split))
	stuffed := make([]float64, len(split))
	normal := make([]float64, len(split))

	for i, d := range split {
		labels[i] = d.Date.Format("Mon 02")
		stuffed[i] = float64(d.Stuffed)
		normal[i] = float64(d.Normal)
	}

	return chartSlide("throughput-crust", "Throughput by crust", "Stuffed crust Mondays",
		chart.Options{
			Kind:   chart.KindStackedBar,
			Labels: labels,
			Series: []chart.Series{
				{Name: "Stuffed crust", Data: stuffed},
				{Name: "Normal crust", Data: normal},
			},
			YAxisName: "Pizzas",
			Theme:     in.Theme,
			Zoom:      true,
		},
		"The Monday promotion flips the mix.",
	)
}

func weeklyFlowSlide(_ context.Context, gen *mockdata.Generator, in Inputs) (deck.Slide, error) {
	slots := gen.WeeklyFlow()
	labels := make([]string, len(slots))

	for i, s := range slots {
		labels[i] = s.Label
	}

	return chartSlide("weekly-flow", "A week of flow", "Wednesday to Monday, 19h to midnight",
		chart.Options{
			Kind:      chart.KindArea,
			Labels:    labels,
			Series:    chart.CountSeries(slots, func(s mockdata.FlowSlot) cfd.Counts { return s.Counts }),
			YAxisName: "Orders",
			Theme:     in.Theme,
			Zoom:      true,
		},
		"Band width is work in progress; band slope is throughput.",
		"At midnight every band meets: the kitchen is empty.",
	)
}

func datasetFlowSlide(ctx context.Context, gen *mockdata.Generator, in Inputs) (deck.Slide, error) {
	orders := in.Orders
	axis := in.Axis
	subtitle := "Recorded orders"

	if len(orders) == 0 {
		evening := in.Now.In(in.Location)
		orders = mockdata.Records(gen.Orders(evening, syntheticOrders))
		subtitle = "Synthetic evening"
	}

	if axis.Start.IsZero() || axis.End.IsZero() {
		span, ok := cfd.DataSpan(orders, in.Location)
		if !ok {
			return deck.Slide{}, fmt.Errorf("dataset flow: %w", ErrNoOrders)
		}

		span.Step, span.Skip = axis.Step, axis.Skip
		axis = span.Coarsened()
	}

	started := time.Now()

	series, err := cfd.Aggregate(orders, axis, cfd.WithLocation(in.Location), cfd.WithLogger(in.Logger))
	if err != nil {
		return deck.Slide{}, fmt.Errorf("dataset flow: %w", err)
	}

	in.Metrics.RecordAggregation(ctx, observability.AggregationStats{
		Orders:   series.Orders,
		Buckets:  len(series.Points),
		Rejected: len(series.Rejected),
		Duration: time.Since(started),
	})

	c, err := chart.Build(chart.CFDOptions(series, in.Theme))
	if err != nil {
		return deck.Slide{}, fmt.Errorf("dataset flow: %w", err)
	}

	minutes, _ := flowmetrics.LeadTimes(orders, cfd.NewNormalizer(in.Location))
	summary := flowmetrics.Summarize(minutes)

	items := []deck.Renderable{
		deck.WrapChart(c),
		deck.NewGrid(3,
			deck.NewStat("Orders", fmt.Sprintf("%d", series.Orders)),
			deck.NewStat("Median lead time", fmt.Sprintf("%.0f min", summary.Median)),
			deck.NewStat("85th percentile", fmt.Sprintf("%.0f min", summary.P85)),
		),
	}

	if len(series.Rejected) > 0 {
		items = append(items, deck.NewAlert("Skipped timestamps",
			fmt.Sprintf("%d phase timestamps could not be read and were left out.", len(series.Rejected)),
			deck.ToneWarning))
	}

	return deck.Slide{
		ID:       "cfd",
		Title:    "Cumulative flow",
		Subtitle: subtitle,
		Notes:    []string{"Vertical distance between bands is work in progress; horizontal distance is time in phase."},
		Body:     deck.NewGrid(1, items...),
	}, nil
}
