package http_test

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	httpadapter "github.com/couchcryptid/soacha-risk-dashboard/internal/adapter/http"
	"github.com/couchcryptid/soacha-risk-dashboard/internal/observability"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

type pingRoutes struct{}

func (pingRoutes) RegisterRoutes(r chi.Router) {
	r.Get("/api/ping/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
}

func newTestServer(readyErr error) (*httpadapter.Server, *observability.Metrics) {
	metrics := observability.NewMetricsForTesting()
	srv := httpadapter.NewServer(httpadapter.Options{
		Addr:           ":0",
		AllowedOrigins: []string{"https://soacha.example"},
		Ready:          &mockReadiness{err: readyErr},
		Routes:         pingRoutes{},
		Metrics:        metrics,
		Logger:         slog.Default(),
	})
	return srv, metrics
}

func serve(srv http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestHealthzReturns200(t *testing.T) {
	srv, _ := newTestServer(nil)
	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	srv, _ := newTestServer(nil)
	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	srv, _ := newTestServer(fmt.Errorf("store unreachable"))
	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(nil)
	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestRegisteredRoutesAreMounted(t *testing.T) {
	srv, metrics := newTestServer(nil)

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/api/ping/7", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, 1, testutil.CollectAndCount(metrics.HTTPRequestDuration))

	rec = serve(srv, httptest.NewRequest(http.MethodGet, "/api/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	srv, _ := newTestServer(nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/ping/7", nil)
	req.Header.Set("Origin", "https://soacha.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	rec := serve(srv, req)

	assert.Equal(t, "https://soacha.example", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/ping/7", nil)
	req.Header.Set("Origin", "https://elsewhere.example")
	rec = serve(srv, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
