package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/tipster-edge/internal/config"
	"github.com/yourusername/tipster-edge/internal/edge"
)

func fastConfig() HTTPConfig {
	return HTTPConfig{
		Timeout:           2 * time.Second,
		MaxRetries:        2,
		RetryWaitMin:      time.Millisecond,
		RetryWaitMax:      5 * time.Millisecond,
		CircuitBreakerMax: 3,
	}
}

func newTestClient(t *testing.T, h http.HandlerFunc, cfg HTTPConfig) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := New(srv.URL, cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestNewRejectsBadBaseURL(t *testing.T) {
	_, err := New("ftp://example.com", fastConfig(), nil)
	assert.Error(t, err)

	_, err = New("://nope", fastConfig(), nil)
	assert.Error(t, err)
}

func TestHTTPConfigFrom(t *testing.T) {
	cfg := HTTPConfigFrom(config.ClientConfig{TimeoutSeconds: 7, MaxRetries: 1, RateLimit: 2})
	assert.Equal(t, 7*time.Second, cfg.Timeout)
	assert.Equal(t, 1, cfg.MaxRetries)
	assert.Equal(t, 2.0, cfg.RateLimit)
	assert.Equal(t, DefaultHTTPConfig().CircuitBreakerMax, cfg.CircuitBreakerMax)

	cfg = HTTPConfigFrom(config.ClientConfig{})
	assert.Equal(t, DefaultHTTPConfig().Timeout, cfg.Timeout)
}

func TestCalculateCLV(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/clv", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, 2.2, body["entryOdds"])
		assert.Equal(t, 0.02, body["maxStakeFraction"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"evPercent":10,"confidence":100,"kellyFraction":null,"recommendedStake":0.02,"tier":"elite","formatted":{"ev":"+10.00%"}}`))
	}, fastConfig())

	res, err := c.CalculateCLV(context.Background(), 2.2, 2.0, 0.02)
	require.NoError(t, err)
	assert.Equal(t, edge.TierElite, res.Tier)
	assert.InDelta(t, 10.0, float64(res.EVPercent), 1e-12)
	assert.Zero(t, float64(res.KellyFraction))
	assert.Equal(t, "+10.00%", res.Formatted.EV)
}

func TestCalculateCLVOmitsUnsetStake(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, present := body["maxStakeFraction"]
		assert.False(t, present)
		_, _ = w.Write([]byte(`{}`))
	}, fastConfig())

	_, err := c.CalculateCLV(context.Background(), 2.2, 2.0, 0)
	require.NoError(t, err)
}

func TestAPIErrorDecoded(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"validation failed","details":["CLVRequest.EntryOdds failed gt"]}`))
	}, fastConfig())

	_, err := c.CalculateCLV(context.Background(), -1, 2, 0)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "validation failed", apiErr.Message)
	assert.Len(t, apiErr.Details, 1)
	assert.Contains(t, apiErr.Error(), "failed gt")
}

func TestRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"totalPredictions":5,"positiveClv":3,"tierBreakdown":{"elite":3,"poor":2}}`))
	}, fastConfig())

	stats, err := c.DashboardStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, 5, stats.TotalPredictions)
	assert.Equal(t, 3, stats.TierBreakdown[edge.TierElite])
}

func TestDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}, fastConfig())

	_, err := c.SuggestedParlays(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "Not Found", apiErr.Message)
	assert.Equal(t, int32(1), calls.Load())
}

func TestCircuitBreakerOpens(t *testing.T) {
	var calls atomic.Int32
	cfg := fastConfig()
	cfg.MaxRetries = 0
	cfg.CircuitBreakerMax = 2
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}, cfg)

	for i := 0; i < 2; i++ {
		_, err := c.DashboardStats(context.Background())
		require.Error(t, err)
	}

	_, err := c.DashboardStats(context.Background())
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, int32(2), calls.Load())
}

func TestSuggestedParlays(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/parlays/suggested", r.URL.Path)
		_, _ = w.Write([]byte(`{"conservative":{"id":"c1","legCount":2,"edgePct":"0.15","adjustedProb":0.4,"impliedOdds":2.9,"edge":15,"formatted":"+15.00%"},"aggressive":null,"poolSize":4,"cached":true}`))
	}, fastConfig())

	res, err := c.SuggestedParlays(context.Background())
	require.NoError(t, err)
	require.NotNil(t, res.Conservative)
	assert.Nil(t, res.Aggressive)
	assert.Equal(t, "c1", res.Conservative.ID)
	assert.InDelta(t, 15.0, res.Conservative.ParlayCandidate.Edge(), 1e-9)
	assert.True(t, res.Cached)
	assert.Equal(t, 4, res.PoolSize)
}

func TestBestEdgesSendsLimit(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`{"edges":[{"id":"p1","label":"Lakers vs Celtics","modelEdge":"+21.00%"}],"count":1}`))
	}, fastConfig())

	edges, err := c.BestEdges(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, "Lakers vs Celtics", edges[0].Label)
}

func TestNormalizeEdgeAndBatch(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/edge/normalize":
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, 0.0833, body["edge"])
			_, _ = w.Write([]byte(`{"raw":"0.0833","edge":8.33,"formatted":"+8.33%","suspicious":false}`))
		case "/api/v1/clv/batch":
			_, _ = w.Write([]byte(`{"results":[{"entryOdds":2.2,"tier":"elite"},{"entryOdds":2,"tier":"poor"}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}, fastConfig())

	norm, err := c.NormalizeEdge(context.Background(), edge.NewEdgeValue(0.0833))
	require.NoError(t, err)
	assert.Equal(t, "+8.33%", norm.Formatted)

	results, err := c.CalculateCLVBatch(context.Background(), []edge.OddsPair{{EntryOdds: 2.2, CloseOdds: 2}, {EntryOdds: 2, CloseOdds: 2}})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, edge.TierPoor, results[1].Tier)
}

func TestContextCancelled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}, fastConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.DashboardStats(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
