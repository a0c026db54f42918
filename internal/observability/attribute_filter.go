package observability

import (
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// exportedNamespaces are the attribute namespaces flowdeck spans carry:
// aggregation figures, deck builds, MCP tool calls and HTTP requests.
// Anything else, raw order rows included, never leaves the process.
var exportedNamespaces = map[string]bool{
	"cfd":    true,
	"slides": true,
	"mcp":    true,
	"http":   true,
}

// attributeFilter is a SpanProcessor that hands its delegate spans stripped
// down to the exported namespaces plus the bare "error" flag.
type attributeFilter struct {
	sdktrace.SpanProcessor

	logger *slog.Logger
}

// NewAttributeFilter returns a SpanProcessor that filters span attributes
// before delegate sees them. Dropped keys are logged at debug level when
// logger is non-nil.
func NewAttributeFilter(delegate sdktrace.SpanProcessor, logger *slog.Logger) sdktrace.SpanProcessor {
	return &attributeFilter{SpanProcessor: delegate, logger: logger}
}

// OnEnd forwards the span with its attributes filtered.
func (f *attributeFilter) OnEnd(s sdktrace.ReadOnlySpan) {
	f.SpanProcessor.OnEnd(&filteredSpan{ReadOnlySpan: s, filter: f})
}

func (f *attributeFilter) exported(key attribute.Key) bool {
	namespace, _, nested := strings.Cut(string(key), ".")
	if key == "error" || (nested && exportedNamespaces[namespace]) {
		return true
	}

	if f.logger != nil {
		f.logger.Debug("span attribute dropped", "key", string(key))
	}

	return false
}

type filteredSpan struct {
	sdktrace.ReadOnlySpan

	filter *attributeFilter
}

// Attributes returns only the exported attributes.
func (s *filteredSpan) Attributes() []attribute.KeyValue {
	all := s.ReadOnlySpan.Attributes()
	kept := make([]attribute.KeyValue, 0, len(all))

	for _, kv := range all {
		if s.filter.exported(kv.Key) {
			kept = append(kept, kv)
		}
	}

	return kept
}
