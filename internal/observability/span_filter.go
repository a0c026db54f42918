package observability

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/embedded"
	nooptrace "go.opentelemetry.io/otel/trace/noop"
)

// SpanSlide is the span opened around each slide builder. A deck opens ten
// of them per render, so exporting setups drop it unless verbose tracing is on.
const SpanSlide = "flowdeck.slides.slide"

// spanFilter is a TracerProvider whose tracers hand out no-op spans for the
// dropped span names and delegate everything else.
type spanFilter struct {
	embedded.TracerProvider

	delegate trace.TracerProvider
	drop     map[string]bool
}

// NewSpanFilter wraps delegate so that spans named in drop are never recorded.
// A dropped span still carries its parent's span context, so children and
// log records stay attached to the enclosing deck or request span.
func NewSpanFilter(delegate trace.TracerProvider, drop ...string) trace.TracerProvider {
	names := make(map[string]bool, len(drop))
	for _, name := range drop {
		names[name] = true
	}

	return &spanFilter{delegate: delegate, drop: names}
}

func (f *spanFilter) Tracer(name string, opts ...trace.TracerOption) trace.Tracer {
	return &filteredTracer{
		delegate: f.delegate.Tracer(name, opts...),
		noop:     nooptrace.NewTracerProvider().Tracer(name),
		drop:     f.drop,
	}
}

type filteredTracer struct {
	embedded.Tracer

	delegate trace.Tracer
	noop     trace.Tracer
	drop     map[string]bool
}

func (t *filteredTracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	if t.drop[name] {
		return t.noop.Start(ctx, name, opts...)
	}

	return t.delegate.Start(ctx, name, opts...)
}
