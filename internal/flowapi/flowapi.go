// Package flowapi is the request/response layer shared by the HTTP server
// and the MCP tools. It turns loosely typed requests into CFD aggregations
// and lead-time summaries.
package flowapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/flowdeck/internal/observability"
	"github.com/Sumatoshi-tech/flowdeck/pkg/cfd"
	"github.com/Sumatoshi-tech/flowdeck/pkg/config"
	"github.com/Sumatoshi-tech/flowdeck/pkg/dataset"
	"github.com/Sumatoshi-tech/flowdeck/pkg/flowmetrics"
)

const tracerName = "flowdeck/flowapi"

// minStep matches the minute precision timestamps are truncated to.
const minStep = time.Minute

// Sentinel errors for request validation. Callers map them to client errors.
var (
	ErrNoOrders    = errors.New("no orders supplied")
	ErrInvalidStep = errors.New("invalid step")
	ErrEmptySpan   = errors.New("no readable timestamp to derive the axis from")
)

// AggregateRequest asks for a CFD. Empty Orders fall back to the service
// dataset. Empty Start and End span the orders themselves.
type AggregateRequest struct {
	Orders    [][]string `json:"orders,omitempty"`
	Start     string     `json:"start,omitempty"`
	End       string     `json:"end,omitempty"`
	Step      string     `json:"step,omitempty"`
	SkipStart string     `json:"skip_start,omitempty"`
	SkipEnd   string     `json:"skip_end,omitempty"`
}

// Bucket is one CFD point keyed by phase.
type Bucket struct {
	Time   time.Time      `json:"time"`
	Counts map[string]int `json:"counts"`
	WIP    int            `json:"wip"`
}

// Rejected describes a timestamp left out of the aggregation.
type Rejected struct {
	Order int    `json:"order"`
	Phase string `json:"phase"`
	Raw   string `json:"raw"`
	Error string `json:"error"`
}

// AggregateResponse is a CFD in wire form.
type AggregateResponse struct {
	// Phases lists the phase keys bottom band first.
	Phases   []string   `json:"phases"`
	Buckets  []Bucket   `json:"buckets"`
	Rejected []Rejected `json:"rejected,omitempty"`
	Orders   int        `json:"orders"`
}

// PhaseStats summarizes the minutes spent in one phase.
type PhaseStats struct {
	Phase   string              `json:"phase"`
	Summary flowmetrics.Summary `json:"summary"`
}

// StatsResponse summarizes lead time, phase times and daily throughput.
type StatsResponse struct {
	LeadTime   flowmetrics.Summary    `json:"lead_time"`
	Skipped    int                    `json:"skipped"`
	Phases     []PhaseStats           `json:"phases"`
	Throughput []flowmetrics.DayCount `json:"throughput"`
}

// Service answers flow requests over an optional default dataset.
type Service struct {
	// Orders is used when a request carries none.
	Orders   []cfd.Order
	Location *time.Location
	Logger   *slog.Logger
	Metrics  *observability.AggregationMetrics
}

// Aggregate resolves the request into an axis and aggregates the orders.
func (s *Service) Aggregate(ctx context.Context, req AggregateRequest) (*AggregateResponse, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "flowdeck.flowapi.aggregate")
	defer span.End()

	orders, err := s.orders(req.Orders)
	if err != nil {
		return nil, fail(span, err)
	}

	axis, err := s.axis(req, orders)
	if err != nil {
		return nil, fail(span, err)
	}

	started := time.Now()

	series, err := cfd.Aggregate(orders, axis, cfd.WithLocation(s.location()), cfd.WithLogger(s.logger()))
	if err != nil {
		return nil, fail(span, fmt.Errorf("aggregate: %w", err))
	}

	s.Metrics.RecordAggregation(ctx, observability.AggregationStats{
		Orders:   series.Orders,
		Buckets:  len(series.Points),
		Rejected: len(series.Rejected),
		Duration: time.Since(started),
	})

	span.SetAttributes(
		attribute.Int("cfd.orders", series.Orders),
		attribute.Int("cfd.buckets", len(series.Points)),
		attribute.Int("cfd.rejected", len(series.Rejected)),
	)

	return toResponse(series), nil
}

// Stats summarizes the given orders, or the service dataset when none are given.
func (s *Service) Stats(ctx context.Context, rows [][]string) (*StatsResponse, error) {
	_, span := otel.Tracer(tracerName).Start(ctx, "flowdeck.flowapi.stats")
	defer span.End()

	orders, err := s.orders(rows)
	if err != nil {
		return nil, fail(span, err)
	}

	norm := cfd.NewNormalizer(s.location())
	minutes, skipped := flowmetrics.LeadTimes(orders, norm)
	summaries := flowmetrics.PhaseSummaries(orders, norm)

	out := &StatsResponse{
		LeadTime:   flowmetrics.Summarize(minutes),
		Skipped:    skipped,
		Phases:     make([]PhaseStats, 0, cfd.NumPhases),
		Throughput: flowmetrics.Throughput(orders, norm),
	}

	// The first phase is the entry point and has no duration of its own.
	for _, p := range cfd.Phases()[1:] {
		out.Phases = append(out.Phases, PhaseStats{Phase: p.Key(), Summary: summaries[p]})
	}

	span.SetAttributes(attribute.Int("cfd.orders", len(orders)))

	return out, nil
}

func (s *Service) orders(rows [][]string) ([]cfd.Order, error) {
	if len(rows) == 0 {
		if len(s.Orders) == 0 {
			return nil, ErrNoOrders
		}

		return s.Orders, nil
	}

	orders, err := dataset.FromRows(rows)
	if err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}

	return orders, nil
}

func (s *Service) axis(req AggregateRequest, orders []cfd.Order) (cfd.AxisConfig, error) {
	var step time.Duration

	if req.Step != "" {
		parsed, err := time.ParseDuration(req.Step)
		if err != nil || parsed <= 0 {
			return cfd.AxisConfig{}, fmt.Errorf("%w: %q", ErrInvalidStep, req.Step)
		}

		if parsed < minStep {
			return cfd.AxisConfig{}, fmt.Errorf("%w: %q is below %s", ErrInvalidStep, req.Step, minStep)
		}

		step = parsed
	}

	axis, err := config.AxisConfig{
		Start:     req.Start,
		End:       req.End,
		SkipStart: req.SkipStart,
		SkipEnd:   req.SkipEnd,
		Step:      step,
	}.Resolve(s.location())
	if err != nil {
		return cfd.AxisConfig{}, err
	}

	if axis.Start.IsZero() || axis.End.IsZero() {
		span, ok := cfd.DataSpan(orders, s.location())
		if !ok {
			return cfd.AxisConfig{}, ErrEmptySpan
		}

		if axis.Start.IsZero() {
			axis.Start = span.Start
		}

		if axis.End.IsZero() {
			axis.End = span.End
		}
	}

	return axis, nil
}

func (s *Service) location() *time.Location {
	if s.Location == nil {
		return time.UTC
	}

	return s.Location
}

func (s *Service) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}

	return s.Logger
}

func toResponse(series *cfd.Series) *AggregateResponse {
	stack := cfd.StackOrder()
	out := &AggregateResponse{
		Phases:  make([]string, len(stack)),
		Buckets: make([]Bucket, len(series.Points)),
		Orders:  series.Orders,
	}

	for i, p := range stack {
		out.Phases[i] = p.Key()
	}

	wip := flowmetrics.WorkInProgress(series)

	for i, pt := range series.Points {
		counts := make(map[string]int, len(stack))
		for _, p := range stack {
			counts[p.Key()] = pt.Count(p)
		}

		out.Buckets[i] = Bucket{Time: pt.Time, Counts: counts, WIP: wip[i]}
	}

	for _, r := range series.Rejected {
		rejected := Rejected{Order: r.Order, Phase: r.Phase.Key(), Raw: r.Raw}
		if r.Err != nil {
			rejected.Error = r.Err.Error()
		}

		out.Rejected = append(out.Rejected, rejected)
	}

	return out
}

// IsClientError reports whether err stems from a bad request rather than a failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrNoOrders) ||
		errors.Is(err, ErrInvalidStep) ||
		errors.Is(err, ErrEmptySpan) ||
		errors.Is(err, config.ErrInvalidAxis) ||
		errors.Is(err, cfd.ErrMalformedAxisConfig) ||
		errors.Is(err, dataset.ErrMalformedRecord)
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	return err
}
