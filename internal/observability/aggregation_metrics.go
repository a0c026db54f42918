package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/metric"
)

const (
	metricAggregationsTotal   = "flowdeck.cfd.aggregations.total"
	metricAggregationDuration = "flowdeck.cfd.aggregation.duration.seconds"
	metricOrdersTotal         = "flowdeck.cfd.orders.total"
	metricRejectedTotal       = "flowdeck.cfd.rejected.timestamps.total"
	metricBuckets             = "flowdeck.cfd.buckets"
)

// AggregationStats describes one finished CFD aggregation.
type AggregationStats struct {
	Orders   int
	Buckets  int
	Rejected int
	Duration time.Duration
}

// AggregationMetrics records CFD aggregation outcomes.
type AggregationMetrics struct {
	aggregations metric.Int64Counter
	duration     metric.Float64Histogram
	orders       metric.Int64Counter
	rejected     metric.Int64Counter
	buckets      metric.Int64Gauge
}

// NewAggregationMetrics creates aggregation instruments from the given meter.
func NewAggregationMetrics(mt metric.Meter) (*AggregationMetrics, error) {
	in := &instruments{meter: mt}

	am := &AggregationMetrics{
		aggregations: in.counter(metricAggregationsTotal, "Total number of CFD aggregations", "{aggregation}"),
		duration:     in.seconds(metricAggregationDuration, "CFD aggregation duration in seconds"),
		orders:       in.counter(metricOrdersTotal, "Orders fed into CFD aggregations", "{order}"),
		rejected:     in.counter(metricRejectedTotal, "Timestamps rejected during normalization", "{timestamp}"),
		buckets:      in.gauge(metricBuckets, "Buckets produced by the latest aggregation", "{bucket}"),
	}

	if err := in.err(); err != nil {
		return nil, err
	}

	return am, nil
}

// RecordAggregation records one aggregation.
// Safe to call on a nil receiver (no-op).
func (am *AggregationMetrics) RecordAggregation(ctx context.Context, stats AggregationStats) {
	if am == nil {
		return
	}

	am.aggregations.Add(ctx, 1)
	am.duration.Record(ctx, stats.Duration.Seconds())
	am.orders.Add(ctx, int64(stats.Orders))
	am.rejected.Add(ctx, int64(stats.Rejected))
	am.buckets.Record(ctx, int64(stats.Buckets))
}
