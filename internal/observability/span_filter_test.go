package observability_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/Sumatoshi-tech/flowdeck/internal/observability"
)

func newTestProvider() (*tracetest.InMemoryExporter, *sdktrace.TracerProvider) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	return exporter, tp
}

func TestSpanFilter_DropsSlideSpans(t *testing.T) {
	t.Parallel()

	exporter, base := newTestProvider()
	tracer := observability.NewSpanFilter(base, observability.SpanSlide).Tracer("flowdeck/slides")

	deckCtx, deckSpan := tracer.Start(context.Background(), "flowdeck.slides.build")

	slideCtx, slideSpan := tracer.Start(deckCtx, observability.SpanSlide)
	assert.Equal(t, deckSpan.SpanContext().SpanID(), slideSpan.SpanContext().SpanID(),
		"a dropped span keeps its parent's context")

	_, chartSpan := tracer.Start(slideCtx, "flowdeck.slides.dataset")
	chartSpan.End()
	slideSpan.End()
	deckSpan.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, "flowdeck.slides.dataset", spans[0].Name)
	assert.Equal(t, deckSpan.SpanContext().SpanID(), spans[0].Parent.SpanID())
	assert.Equal(t, "flowdeck.slides.build", spans[1].Name)
}
