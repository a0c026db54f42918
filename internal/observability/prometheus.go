package observability

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Prometheus pairs a /metrics scrape handler with the meter that feeds it.
type Prometheus struct {
	// Handler serves the Prometheus exposition format.
	Handler http.Handler

	// Meter creates instruments collected by Handler.
	Meter metric.Meter

	provider *sdkmetric.MeterProvider
}

// NewPrometheus creates a Prometheus exporter backed by an OTel MeterProvider.
// Each call creates an independent registry so several servers can coexist.
func NewPrometheus() (*Prometheus, error) {
	registry := prometheus.NewRegistry()

	exporter, err := promexporter.New(
		promexporter.WithRegisterer(registry),
	)
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))

	return &Prometheus{
		Handler:  promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		Meter:    mp.Meter(meterName),
		provider: mp,
	}, nil
}

// MeterProvider returns the provider behind Meter.
func (p *Prometheus) MeterProvider() metric.MeterProvider {
	return p.provider
}
