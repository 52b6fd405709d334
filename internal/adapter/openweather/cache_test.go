package openweather

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/couchcryptid/soacha-risk-dashboard/internal/domain"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mock for cache tests ---

type countingProvider struct {
	calls    int
	key      string
	snapshot domain.WeatherSnapshot
	err      error
}

func (m *countingProvider) CurrentWeather(_ context.Context) (domain.WeatherSnapshot, error) {
	m.calls++
	return m.snapshot, m.err
}

func (m *countingProvider) Key() string { return m.key }

var cacheEpoch = time.Date(2024, time.May, 10, 8, 0, 0, 0, time.UTC)

// --- CachedProvider tests ---

func TestCachedProvider_HitWithinTTL(t *testing.T) {
	clock := clockwork.NewFakeClockAt(cacheEpoch)
	inner := &countingProvider{key: "soacha", snapshot: domain.WeatherSnapshot{Temperature: 19}}
	cached := NewCachedProvider(inner, NewCache(10*time.Minute, clock), testMetrics())

	s1, err := cached.CurrentWeather(context.Background())
	require.NoError(t, err)
	clock.Advance(9 * time.Minute)
	s2, err := cached.CurrentWeather(context.Background())
	require.NoError(t, err)

	assert.Equal(t, s1, s2)
	assert.Equal(t, 1, inner.calls, "should only call inner once")
}

func TestCachedProvider_ExpiresAfterTTL(t *testing.T) {
	clock := clockwork.NewFakeClockAt(cacheEpoch)
	inner := &countingProvider{key: "soacha", snapshot: domain.WeatherSnapshot{Temperature: 19}}
	cached := NewCachedProvider(inner, NewCache(10*time.Minute, clock), testMetrics())

	_, _ = cached.CurrentWeather(context.Background())
	clock.Advance(10 * time.Minute)
	_, _ = cached.CurrentWeather(context.Background())

	assert.Equal(t, 2, inner.calls)
}

func TestCachedProvider_ErrorsAreNotCached(t *testing.T) {
	clock := clockwork.NewFakeClockAt(cacheEpoch)
	inner := &countingProvider{key: "soacha", err: errors.New("timeout")}
	cached := NewCachedProvider(inner, NewCache(10*time.Minute, clock), testMetrics())

	_, err := cached.CurrentWeather(context.Background())
	require.Error(t, err)

	inner.err = nil
	inner.snapshot = domain.WeatherSnapshot{Temperature: 22}
	snap, err := cached.CurrentWeather(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 22.0, snap.Temperature, 1e-9)
	assert.Equal(t, 2, inner.calls)
}

func TestCachedProvider_SharedCacheSeparatesLocations(t *testing.T) {
	clock := clockwork.NewFakeClockAt(cacheEpoch)
	cache := NewCache(time.Minute, clock)
	a := &countingProvider{key: "a", snapshot: domain.WeatherSnapshot{Temperature: 10}}
	b := &countingProvider{key: "b", snapshot: domain.WeatherSnapshot{Temperature: 30}}

	sa, _ := NewCachedProvider(a, cache, testMetrics()).CurrentWeather(context.Background())
	sb, _ := NewCachedProvider(b, cache, testMetrics()).CurrentWeather(context.Background())

	assert.InDelta(t, 10.0, sa.Temperature, 1e-9)
	assert.InDelta(t, 30.0, sb.Temperature, 1e-9)
}

// --- Cache unit tests ---

func TestCache_GetPut(t *testing.T) {
	c := NewCache(time.Minute, clockwork.NewFakeClockAt(cacheEpoch))

	c.put("x", domain.WeatherSnapshot{Humidity: 70})
	got, ok := c.get("x")
	assert.True(t, ok)
	assert.Equal(t, 70, got.Humidity)

	_, ok = c.get("missing")
	assert.False(t, ok)
}

func TestCache_PutEvictsExpired(t *testing.T) {
	clock := clockwork.NewFakeClockAt(cacheEpoch)
	c := NewCache(time.Minute, clock)

	c.put("old", domain.WeatherSnapshot{})
	clock.Advance(2 * time.Minute)
	c.put("new", domain.WeatherSnapshot{})

	assert.Len(t, c.entries, 1)
}

func TestCache_Clear(t *testing.T) {
	c := NewCache(time.Minute, clockwork.NewFakeClockAt(cacheEpoch))
	c.put("x", domain.WeatherSnapshot{})
	c.Clear()

	_, ok := c.get("x")
	assert.False(t, ok)
}
