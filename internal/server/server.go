// Package server serves the deck and the CFD API over HTTP.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Sumatoshi-tech/flowdeck/internal/deck"
	"github.com/Sumatoshi-tech/flowdeck/internal/flowapi"
	"github.com/Sumatoshi-tech/flowdeck/internal/observability"
	"github.com/Sumatoshi-tech/flowdeck/internal/slides"
	"github.com/Sumatoshi-tech/flowdeck/pkg/cache"
	"github.com/Sumatoshi-tech/flowdeck/pkg/chart"
	"github.com/Sumatoshi-tech/flowdeck/pkg/config"
)

// maxRequestBytes bounds POST /api/cfd bodies.
const maxRequestBytes = 4 << 20

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 10 * time.Second

// cacheHeader reports whether GET / was served from the page cache.
const cacheHeader = "X-Flowdeck-Cache"

const (
	cacheHit  = "hit"
	cacheMiss = "miss"
)

var (
	// ErrTemplatesNotReady is reported by /readyz until the deck templates parse.
	ErrTemplatesNotReady = errors.New("deck templates not ready")

	// ErrInvalidSeed is returned for a seed query parameter that is not an unsigned integer.
	ErrInvalidSeed = errors.New("invalid seed")
)

// Deps holds the collaborators of the HTTP handler. Zero-value fields use
// no-op defaults.
type Deps struct {
	// Deck is the template for GET /. Orders and Metrics are filled from Service.
	Deck    slides.Inputs
	Service *flowapi.Service
	// Pages caches rendered decks by theme and seed.
	Pages   *cache.LRU[string]
	Tracer  trace.Tracer
	RED     *observability.REDMetrics
	// Metrics serves /metrics when set.
	Metrics http.Handler
	Logger  *slog.Logger
}

type handler struct {
	deps Deps
}

// NewHandler builds the routed, traced handler.
func NewHandler(deps Deps) http.Handler {
	if deps.Service == nil {
		deps.Service = &flowapi.Service{}
	}

	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	if deps.Pages == nil {
		deps.Pages = cache.NewLRU[string](0)
	}

	if deps.Tracer == nil {
		deps.Tracer = nooptrace.NewTracerProvider().Tracer("flowdeck")
	}

	h := &handler{deps: deps}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.handleDeck)
	mux.HandleFunc("GET /api/cfd", h.handleCFD)
	mux.HandleFunc("POST /api/cfd", h.handleCFD)
	mux.HandleFunc("GET /api/stats", h.handleStats)
	mux.Handle("GET /healthz", observability.HealthHandler())
	mux.Handle("GET /readyz", observability.ReadyHandler(templatesReady))

	if deps.Metrics != nil {
		mux.Handle("GET /metrics", deps.Metrics)
	}

	return observability.HTTPMiddleware(deps.Tracer, deps.RED, mux)
}

func templatesReady(context.Context) error {
	if !deck.Ready() {
		return ErrTemplatesNotReady
	}

	return nil
}

func (h *handler) handleDeck(rw http.ResponseWriter, hr *http.Request) {
	in := h.deps.Deck
	in.Orders = h.deps.Service.Orders
	in.Location = h.deps.Service.Location
	in.Metrics = h.deps.Service.Metrics
	in.Logger = h.deps.Logger

	query := hr.URL.Query()
	if theme := query.Get("theme"); theme != "" {
		in.Theme = chart.ParseTheme(theme)
	}

	if raw := query.Get("seed"); raw != "" {
		seed, parseErr := strconv.ParseUint(raw, 10, 64)
		if parseErr != nil {
			h.writeError(hr.Context(), rw, http.StatusBadRequest, fmt.Errorf("%w: %q", ErrInvalidSeed, raw))

			return
		}

		in.Seed = seed
	}

	key := fmt.Sprintf("%s/%d", in.Theme, in.Seed)

	page, ok := h.deps.Pages.Get(key)
	if ok {
		h.writePage(hr.Context(), rw, page, cacheHit)

		return
	}

	d, err := slides.Build(hr.Context(), in)
	if err != nil {
		h.writeError(hr.Context(), rw, http.StatusInternalServerError, err)

		return
	}

	var buf bytes.Buffer

	renderErr := d.Render(&buf)
	if renderErr != nil {
		h.writeError(hr.Context(), rw, http.StatusInternalServerError, fmt.Errorf("render deck: %w", renderErr))

		return
	}

	h.deps.Pages.Put(key, buf.Bytes())
	h.writePage(hr.Context(), rw, buf.Bytes(), cacheMiss)
}

func (h *handler) writePage(ctx context.Context, rw http.ResponseWriter, page []byte, cacheStatus string) {
	rw.Header().Set("Content-Type", "text/html; charset=utf-8")
	rw.Header().Set(cacheHeader, cacheStatus)

	_, writeErr := rw.Write(page)
	if writeErr != nil {
		h.deps.Logger.ErrorContext(ctx, "deck write failed", "error", writeErr)
	}
}

func (h *handler) handleCFD(rw http.ResponseWriter, hr *http.Request) {
	var req flowapi.AggregateRequest

	if hr.Method == http.MethodPost {
		decodeErr := json.NewDecoder(io.LimitReader(hr.Body, maxRequestBytes)).Decode(&req)
		if decodeErr != nil {
			h.writeError(hr.Context(), rw, http.StatusBadRequest, fmt.Errorf("decode request: %w", decodeErr))

			return
		}
	}

	query := hr.URL.Query()
	override(&req.Start, query.Get("start"))
	override(&req.End, query.Get("end"))
	override(&req.Step, query.Get("step"))
	override(&req.SkipStart, query.Get("skip_start"))
	override(&req.SkipEnd, query.Get("skip_end"))

	resp, err := h.deps.Service.Aggregate(hr.Context(), req)
	if err != nil {
		h.writeError(hr.Context(), rw, statusFor(err), err)

		return
	}

	h.writeJSON(hr.Context(), rw, http.StatusOK, resp)
}

func (h *handler) handleStats(rw http.ResponseWriter, hr *http.Request) {
	resp, err := h.deps.Service.Stats(hr.Context(), nil)
	if err != nil {
		h.writeError(hr.Context(), rw, statusFor(err), err)

		return
	}

	h.writeJSON(hr.Context(), rw, http.StatusOK, resp)
}

func override(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, flowapi.ErrNoOrders):
		return http.StatusNotFound
	case flowapi.IsClientError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

type errorBody struct {
	Error string `json:"error"`
}

func (h *handler) writeError(ctx context.Context, rw http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		h.deps.Logger.ErrorContext(ctx, "request failed", "error", err)
	}

	h.writeJSON(ctx, rw, status, errorBody{Error: err.Error()})
}

// writeJSON encodes value as the JSON response body.
func (h *handler) writeJSON(ctx context.Context, rw http.ResponseWriter, status int, value any) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)

	encodeErr := json.NewEncoder(rw).Encode(value)
	if encodeErr != nil {
		h.deps.Logger.ErrorContext(ctx, "failed to encode JSON response", "error", encodeErr)
	}
}

// Server runs the handler until its context ends.
type Server struct {
	http   *http.Server
	logger *slog.Logger
}

// New wraps handler in an [http.Server] configured from cfg.
func New(cfg config.ServerConfig, handler http.Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		http: &http.Server{
			Addr:         cfg.Addr(),
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		logger: logger,
	}
}

// Run listens until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.InfoContext(ctx, "flowdeck server starting", "addr", "http://"+s.http.Addr)

		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	shutdownErr := s.http.Shutdown(shutdownCtx)
	if shutdownErr != nil {
		return fmt.Errorf("shutdown: %w", shutdownErr)
	}

	s.logger.InfoContext(ctx, "flowdeck server stopped")

	return nil
}
