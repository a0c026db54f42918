package server_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/flowdeck/internal/deck"
	"github.com/Sumatoshi-tech/flowdeck/internal/flowapi"
	"github.com/Sumatoshi-tech/flowdeck/internal/observability"
	"github.com/Sumatoshi-tech/flowdeck/internal/server"
	"github.com/Sumatoshi-tech/flowdeck/internal/slides"
	"github.com/Sumatoshi-tech/flowdeck/pkg/cfd"
	"github.com/Sumatoshi-tech/flowdeck/pkg/chart"
	"github.com/Sumatoshi-tech/flowdeck/pkg/config"
)

var orders = []cfd.Order{
	{"2025-05-16T19:00:00Z", "2025-05-16T19:05:00Z", "2025-05-16T19:20:00Z", "2025-05-16T19:25:00Z", "2025-05-16T19:30:00Z", "2025-05-16T19:45:00Z"},
	{"2025-05-16T19:10:00Z", "2025-05-16T19:15:00Z", "2025-05-16T19:30:00Z", "2025-05-16T19:35:00Z", "2025-05-16T19:40:00Z", "2025-05-16T20:05:00Z"},
}

func newTestServer(t *testing.T, data []cfd.Order) *httptest.Server {
	t.Helper()

	prom, err := observability.NewPrometheus()
	require.NoError(t, err)

	red, err := observability.NewREDMetrics(prom.Meter)
	require.NoError(t, err)

	aggregations, err := observability.NewAggregationMetrics(prom.Meter)
	require.NoError(t, err)

	srv := httptest.NewServer(server.NewHandler(server.Deps{
		Deck: slides.Inputs{
			Title: "Pizzeria flow",
			Theme: chart.ThemeDark,
			Seed:  1,
			Now:   time.Date(2025, 5, 16, 23, 0, 0, 0, time.UTC),
		},
		Service: &flowapi.Service{Orders: data, Location: time.UTC, Metrics: aggregations},
		RED:     red,
		Metrics: prom.Handler,
	}))
	t.Cleanup(srv.Close)

	return srv
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, http.NoBody)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)

	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp, string(body)
}

func TestServer_Deck(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, orders)

	resp, body := get(t, srv.URL+"/")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, body, "Pizzeria flow")
	assert.Contains(t, body, "Recorded orders")

	resp, _ = get(t, srv.URL+"/missing")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_DeckIsCachedPerThemeAndSeed(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, orders)

	resp, first := get(t, srv.URL+"/?seed=3")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "miss", resp.Header.Get("X-Flowdeck-Cache"))

	resp, second := get(t, srv.URL+"/?seed=3")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "hit", resp.Header.Get("X-Flowdeck-Cache"))
	assert.Equal(t, first, second)

	assert.Contains(t, first, `class="dark"`)

	resp, light := get(t, srv.URL+"/?seed=3&theme=light")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "miss", resp.Header.Get("X-Flowdeck-Cache"))
	assert.NotContains(t, light, `class="dark"`)

	resp, body := get(t, srv.URL+"/?seed=many")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "invalid seed")
}

func TestServer_CFD(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, orders)

	resp, body := get(t, srv.URL+"/api/cfd?step=15m&start=2025-05-16T19:00&end=2025-05-16T20:00")
	require.Equal(t, http.StatusOK, resp.StatusCode, body)

	var cfdResp flowapi.AggregateResponse

	require.NoError(t, json.Unmarshal([]byte(body), &cfdResp))
	require.Len(t, cfdResp.Buckets, 5)
	assert.Equal(t, 2, cfdResp.Orders)
	assert.Equal(t, 1, cfdResp.Buckets[4].Counts["delivered"])
	assert.Empty(t, cfdResp.Rejected)

	_, metrics := get(t, srv.URL+"/metrics")
	assert.Contains(t, metrics, "flowdeck_cfd_aggregations")
	assert.Contains(t, metrics, "flowdeck_requests")
}

func TestServer_CFDPost(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, nil)

	body := `{"orders":[["2025-05-16T19:00:00Z","2025-05-16T19:05:00Z","2025-05-16T19:20:00Z","2025-05-16T19:25:00Z","2025-05-16T19:30:00Z","2025-05-16T19:45:00Z"]],"step":"5m"}`

	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, srv.URL+"/api/cfd", strings.NewReader(body))
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)

	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var cfdResp flowapi.AggregateResponse

	require.NoError(t, json.NewDecoder(resp.Body).Decode(&cfdResp))
	assert.Len(t, cfdResp.Buckets, 10)
}

func TestServer_Errors(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, orders)
	empty := newTestServer(t, nil)

	tests := []struct {
		name string
		url  string
		code int
	}{
		{name: "bad step", url: srv.URL + "/api/cfd?step=often", code: http.StatusBadRequest},
		{name: "sub-minute step", url: srv.URL + "/api/cfd?step=1ms", code: http.StatusBadRequest},
		{name: "too many buckets", url: srv.URL + "/api/cfd?start=2025-05-16T00:00&end=2300-01-01T00:00", code: http.StatusBadRequest},
		{name: "half skip", url: srv.URL + "/api/cfd?skip_start=2025-05-16T19:10", code: http.StatusBadRequest},
		{name: "no dataset", url: empty.URL + "/api/cfd", code: http.StatusNotFound},
		{name: "no dataset stats", url: empty.URL + "/api/stats", code: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			resp, body := get(t, tt.url)

			assert.Equal(t, tt.code, resp.StatusCode)
			assert.Contains(t, body, `"error"`)
		})
	}
}

func TestServer_Stats(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, orders)

	resp, body := get(t, srv.URL+"/api/stats")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stats flowapi.StatsResponse

	require.NoError(t, json.Unmarshal([]byte(body), &stats))
	assert.Equal(t, 2, stats.LeadTime.Count)
	assert.InDelta(t, 50, stats.LeadTime.Mean, 1e-9)
}

func TestServer_Probes(t *testing.T) {
	t.Parallel()

	require.NoError(t, deck.Initialize())

	srv := newTestServer(t, orders)

	resp, _ := get(t, srv.URL+"/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := get(t, srv.URL+"/readyz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"ok"`)
}

func TestServer_RunStopsOnCancel(t *testing.T) {
	t.Parallel()

	s := server.New(config.ServerConfig{Host: "127.0.0.1", Port: 0}, http.NotFoundHandler(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() { done <- s.Run(ctx) }()

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
