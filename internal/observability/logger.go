package observability

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel/trace"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	attrTraceID = "trace_id"
	attrSpanID  = "span_id"
	attrService = "service"
	attrEnv     = "env"
	attrMode    = "mode"
)

// TracingHandler is an [slog.Handler] that injects OpenTelemetry trace context
// (trace_id, span_id) and service metadata into every log record. Both stay
// at the top level regardless of later WithGroup calls.
type TracingHandler struct {
	// base holds every attribute added before the first group.
	base slog.Handler
	// chain holds the groups and grouped attributes, in call order.
	chain []handlerStep
	// inner is base with chain applied.
	inner slog.Handler
}

type handlerStep struct {
	group string
	attrs []slog.Attr
}

// NewTracingHandler wraps an [slog.Handler], injecting trace context and service metadata.
func NewTracingHandler(inner slog.Handler, service, env string, appMode AppMode) *TracingHandler {
	attrs := []slog.Attr{
		slog.String(attrService, service),
		slog.String(attrMode, string(appMode)),
	}

	if env != "" {
		attrs = append(attrs, slog.String(attrEnv, env))
	}

	base := inner.WithAttrs(attrs)

	return &TracingHandler{base: base, inner: base}
}

// Enabled delegates to the inner handler.
func (th *TracingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return th.inner.Enabled(ctx, level)
}

// Handle adds trace context attributes from the span context, then delegates.
func (th *TracingHandler) Handle(ctx context.Context, record slog.Record) error {
	target := th.inner

	sc := trace.SpanContextFromContext(ctx)
	if sc.IsValid() {
		traceAttrs := []slog.Attr{
			slog.String(attrTraceID, sc.TraceID().String()),
			slog.String(attrSpanID, sc.SpanID().String()),
		}

		if len(th.chain) == 0 {
			record.AddAttrs(traceAttrs...)
		} else {
			target = replay(th.base.WithAttrs(traceAttrs), th.chain)
		}
	}

	err := target.Handle(ctx, record)
	if err != nil {
		return fmt.Errorf("tracing handler: %w", err)
	}

	return nil
}

// WithAttrs returns a new TracingHandler with additional attributes.
func (th *TracingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return th
	}

	if len(th.chain) == 0 {
		base := th.base.WithAttrs(attrs)

		return &TracingHandler{base: base, inner: base}
	}

	return th.extend(handlerStep{attrs: attrs})
}

// WithGroup returns a new TracingHandler that nests later attributes under name.
func (th *TracingHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return th
	}

	return th.extend(handlerStep{group: name})
}

func (th *TracingHandler) extend(step handlerStep) *TracingHandler {
	chain := make([]handlerStep, len(th.chain), len(th.chain)+1)
	copy(chain, th.chain)
	chain = append(chain, step)

	return &TracingHandler{
		base:  th.base,
		chain: chain,
		inner: replay(th.inner, chain[len(chain)-1:]),
	}
}

func replay(h slog.Handler, chain []handlerStep) slog.Handler {
	for _, step := range chain {
		if step.group != "" {
			h = h.WithGroup(step.group)
		} else {
			h = h.WithAttrs(step.attrs)
		}
	}

	return h
}

// NewLogger builds the process logger described by cfg. Output goes to w,
// or to a size-rotated file when cfg.LogFile is set. The returned closer
// releases the file and is a no-op otherwise.
func NewLogger(cfg Config, w io.Writer) (*slog.Logger, io.Closer) {
	var closer io.Closer = nopCloser{}

	if cfg.LogFile != "" {
		rotated := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    cfg.LogMaxSizeMB,
			MaxBackups: cfg.LogMaxBackups,
			MaxAge:     cfg.LogMaxAgeDays,
			Compress:   true,
		}

		w, closer = rotated, rotated
	}

	if w == nil {
		w = os.Stderr
	}

	handlerOpts := &slog.HandlerOptions{Level: cfg.LogLevel}

	var inner slog.Handler
	if cfg.LogJSON {
		inner = slog.NewJSONHandler(w, handlerOpts)
	} else {
		inner = slog.NewTextHandler(w, handlerOpts)
	}

	return slog.New(NewTracingHandler(inner, cfg.ServiceName, cfg.Environment, cfg.Mode)), closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
