package observability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	noopmetric "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"
)

const (
	tracerName = "flowdeck"
	meterName  = "flowdeck"
)

// Providers holds the initialized observability providers.
type Providers struct {
	// Tracer is the named tracer for creating spans.
	Tracer trace.Tracer

	// Meter is the named meter for creating instruments.
	Meter metric.Meter

	// Logger is the context-aware structured logger.
	Logger *slog.Logger

	// Aggregations records CFD aggregation outcomes on Meter.
	Aggregations *AggregationMetrics

	// Shutdown flushes pending telemetry and closes the log file.
	// Must be called before process exit.
	Shutdown func(ctx context.Context) error
}

type shutdownFunc func(ctx context.Context) error

// Init sets up logging and the global tracer and meter providers.
//
// Without an OTLP endpoint both providers are no-ops and only the logger does
// any work. With one, spans and metrics go to the collector over gRPC: span
// attributes are limited to flowdeck namespaces and per-slide spans are
// dropped unless cfg.TraceVerbose is set. Sampling follows cfg.DebugTrace,
// then cfg.SampleRatio, then the standard OTEL_TRACES_SAMPLER variables.
func Init(cfg Config) (Providers, error) {
	ctx := context.Background()

	logger, logCloser := NewLogger(cfg, os.Stderr)
	closers := []shutdownFunc{func(context.Context) error { return logCloser.Close() }}

	var (
		tp trace.TracerProvider = nooptrace.NewTracerProvider()
		mp metric.MeterProvider = noopmetric.NewMeterProvider()
	)

	if cfg.OTLPEndpoint != "" {
		sdkTP, sdkMP, err := exportingProviders(ctx, cfg)
		if err != nil {
			return Providers{}, errors.Join(err, logCloser.Close())
		}

		closers = append(closers, sdkMP.Shutdown, sdkTP.Shutdown)
		tp, mp = sdkTP, sdkMP

		if !cfg.TraceVerbose {
			tp = NewSpanFilter(tp, SpanSlide)
		}
	}

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	shutdown := func(shutdownCtx context.Context) error {
		timeout := time.Duration(cfg.ShutdownTimeoutSec) * time.Second
		if timeout <= 0 {
			timeout = defaultShutdownTimeoutSec * time.Second
		}

		deadlineCtx, cancel := context.WithTimeout(shutdownCtx, timeout)
		defer cancel()

		// Flush exporters before the log file goes away.
		errs := make([]error, 0, len(closers))
		for _, closeFn := range slices.Backward(closers) {
			errs = append(errs, closeFn(deadlineCtx))
		}

		return errors.Join(errs...)
	}

	meter := mp.Meter(meterName)

	aggregations, err := NewAggregationMetrics(meter)
	if err != nil {
		return Providers{}, errors.Join(err, shutdown(ctx))
	}

	return Providers{
		Tracer:       tp.Tracer(tracerName),
		Meter:        meter,
		Logger:       logger,
		Aggregations: aggregations,
		Shutdown:     shutdown,
	}, nil
}

// exportingProviders builds the OTLP gRPC backed tracer and meter providers.
func exportingProviders(ctx context.Context, cfg Config) (*sdktrace.TracerProvider, *sdkmetric.MeterProvider, error) {
	traceOpts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint)}
	metricOpts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.OTLPEndpoint)}

	if cfg.OTLPInsecure {
		traceOpts = append(traceOpts, otlptracegrpc.WithInsecure())
		metricOpts = append(metricOpts, otlpmetricgrpc.WithInsecure())
	}

	if len(cfg.OTLPHeaders) > 0 {
		traceOpts = append(traceOpts, otlptracegrpc.WithHeaders(cfg.OTLPHeaders))
		metricOpts = append(metricOpts, otlpmetricgrpc.WithHeaders(cfg.OTLPHeaders))
	}

	spanExporter, err := otlptracegrpc.New(ctx, traceOpts...)
	if err != nil {
		return nil, nil, fmt.Errorf("create trace exporter: %w", err)
	}

	metricExporter, err := otlpmetricgrpc.New(ctx, metricOpts...)
	if err != nil {
		return nil, nil, errors.Join(fmt.Errorf("create metric exporter: %w", err), spanExporter.Shutdown(ctx))
	}

	res := deckResource(cfg)

	var filterLogger *slog.Logger
	if cfg.DebugTrace {
		filterLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	providerOpts := []sdktrace.TracerProviderOption{
		sdktrace.WithSpanProcessor(NewAttributeFilter(sdktrace.NewBatchSpanProcessor(spanExporter), filterLogger)),
		sdktrace.WithResource(res),
	}

	if sampler := configuredSampler(cfg); sampler != nil {
		providerOpts = append(providerOpts, sdktrace.WithSampler(sampler))
	}

	tp := sdktrace.NewTracerProvider(providerOpts...)
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter)),
		sdkmetric.WithResource(res),
	)

	return tp, mp, nil
}

// configuredSampler returns nil when the config leaves sampling to the SDK,
// which then reads OTEL_TRACES_SAMPLER and OTEL_TRACES_SAMPLER_ARG.
func configuredSampler(cfg Config) sdktrace.Sampler {
	switch {
	case cfg.DebugTrace:
		return sdktrace.AlwaysSample()
	case cfg.SampleRatio > 0:
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))
	default:
		return nil
	}
}

func deckResource(cfg Config) *resource.Resource {
	attrs := []attribute.KeyValue{semconv.ServiceName(cfg.ServiceName)}

	if cfg.ServiceVersion != "" {
		attrs = append(attrs, semconv.ServiceVersion(cfg.ServiceVersion))
	}

	if cfg.Environment != "" {
		attrs = append(attrs, semconv.DeploymentEnvironment(cfg.Environment))
	}

	if cfg.Mode != "" {
		attrs = append(attrs, attribute.String("app.mode", string(cfg.Mode)))
	}

	return resource.NewSchemaless(attrs...)
}

// ParseOTLPHeaders parses an OTLP headers string in "key=value,key=value"
// format. Returns nil for empty or invalid input.
func ParseOTLPHeaders(raw string) map[string]string {
	headers := make(map[string]string)

	for pair := range strings.SplitSeq(raw, ",") {
		k, v, ok := strings.Cut(pair, "=")
		if k = strings.TrimSpace(k); ok && k != "" {
			headers[k] = strings.TrimSpace(v)
		}
	}

	if len(headers) == 0 {
		return nil
	}

	return headers
}
