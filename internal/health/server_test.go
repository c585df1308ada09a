package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(ctx context.Context) error {
	return p.err
}

func newRouter(s *Server) http.Handler {
	r := chi.NewRouter()
	s.Mount(r)
	return r
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthAndLive(t *testing.T) {
	s := NewServer(Config{ServiceName: "edge-api", Version: "1.2.0"})
	h := newRouter(s)

	rec := get(t, h, "/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var body HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "edge-api", body.Service)
	assert.Equal(t, "1.2.0", body.Version)
	assert.NotEmpty(t, body.Timestamp)

	rec = get(t, h, "/live")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyRequiresFlag(t *testing.T) {
	s := NewServer(Config{ServiceName: "edge-api"})
	h := newRouter(s)

	rec := get(t, h, "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	s.SetReady(true)
	assert.True(t, s.IsReady())
	rec = get(t, h, "/ready")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyChecksDatabase(t *testing.T) {
	s := NewServer(Config{ServiceName: "edge-api", DB: stubPinger{err: errors.New("connection refused")}})
	s.SetReady(true)

	rec := get(t, newRouter(s), "/ready")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body ReadyResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "not_ready", body.Status)
	assert.Equal(t, "ok", body.Checks["service"])
	assert.Contains(t, body.Checks["database"], "connection refused")

	healthy := NewServer(Config{ServiceName: "edge-api", DB: stubPinger{}})
	healthy.SetReady(true)
	rec = get(t, newRouter(healthy), "/ready")
	assert.Equal(t, http.StatusOK, rec.Code)
}
