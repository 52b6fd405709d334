package openweather

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/couchcryptid/soacha-risk-dashboard/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAPIKey        = "test-key"
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"
)

func testMetrics() *observability.Metrics {
	return observability.NewMetricsForTesting()
}

func testClient(baseURL string, timeout time.Duration) *Client {
	return NewClient(baseURL, testAPIKey, 4.5828, -74.2120, timeout, testMetrics(),
		slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestClient_CurrentWeather_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/weather", r.URL.Path)
		assert.Equal(t, "4.5828", r.URL.Query().Get("lat"))
		assert.Equal(t, "-74.212", r.URL.Query().Get("lon"))
		assert.Equal(t, testAPIKey, r.URL.Query().Get("appid"))
		assert.Equal(t, "metric", r.URL.Query().Get("units"))

		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(`{
			"weather":[{"main":"Rain","description":"moderate rain"}],
			"main":{"temp":17.3,"humidity":88},
			"rain":{"1h":6.4},
			"dt":1714557600
		}`))
	}))
	defer srv.Close()

	snap, err := testClient(srv.URL, 2*time.Second).CurrentWeather(context.Background())
	require.NoError(t, err)

	assert.InDelta(t, 17.3, snap.Temperature, 1e-9)
	assert.Equal(t, 88, snap.Humidity)
	assert.InDelta(t, 6.4, snap.Precipitation, 1e-9)
	assert.Equal(t, "Rain", snap.Condition)
	assert.True(t, snap.ObservedAt.Equal(time.Unix(1714557600, 0)))
}

func TestClient_CurrentWeather_NoRain(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(`{"weather":[{"main":"Clear"}],"main":{"temp":21,"humidity":55}}`))
	}))
	defer srv.Close()

	snap, err := testClient(srv.URL, 2*time.Second).CurrentWeather(context.Background())
	require.NoError(t, err)
	assert.Zero(t, snap.Precipitation)
	assert.True(t, snap.ObservedAt.IsZero())
}

func TestClient_CurrentWeather_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"cod":401,"message":"Invalid API key"}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL, 2*time.Second).CurrentWeather(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestClient_CurrentWeather_Malformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(`{"main":{"temp":21,"humidity":55}}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL, 2*time.Second).CurrentWeather(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed")
}

func TestClient_CurrentWeather_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL, 50*time.Millisecond).CurrentWeather(context.Background())
	require.Error(t, err)
}

func TestClient_BreakerOpensAfterRepeatedFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := testClient(srv.URL, 2*time.Second)
	for range 10 {
		_, err := c.CurrentWeather(context.Background())
		require.Error(t, err)
	}

	assert.Equal(t, int32(6), calls.Load(), "breaker should stop calling upstream after six consecutive failures")
}

func TestClient_Key(t *testing.T) {
	c := testClient("http://unused", time.Second)
	assert.Equal(t, "4.5828,-74.2120", c.Key())
}
