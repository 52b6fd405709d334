package openweather

import (
	"context"
	"sync"
	"time"

	"github.com/couchcryptid/soacha-risk-dashboard/internal/domain"
	"github.com/couchcryptid/soacha-risk-dashboard/internal/observability"
	"github.com/jonboulle/clockwork"
)

// Cache holds weather snapshots for a fixed time-to-live. It is created by
// the caller and shared by reference, so tests and operators control its
// lifetime and can clear it.
type Cache struct {
	ttl     time.Duration
	clock   clockwork.Clock
	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	value   domain.WeatherSnapshot
	expires time.Time
}

// NewCache returns an empty cache whose entries expire ttl after insertion.
func NewCache(ttl time.Duration, clock clockwork.Clock) *Cache {
	return &Cache{
		ttl:     ttl,
		clock:   domain.ClockOrReal(clock),
		entries: make(map[string]cacheEntry),
	}
}

func (c *Cache) get(key string) (domain.WeatherSnapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return domain.WeatherSnapshot{}, false
	}
	if !c.clock.Now().Before(e.expires) {
		delete(c.entries, key)
		return domain.WeatherSnapshot{}, false
	}
	return e.value, true
}

func (c *Cache) put(key string, value domain.WeatherSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	for k, e := range c.entries {
		if !now.Before(e.expires) {
			delete(c.entries, k)
		}
	}
	c.entries[key] = cacheEntry{value: value, expires: now.Add(c.ttl)}
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
}

// KeyedProvider is a WeatherProvider for one location.
type KeyedProvider interface {
	domain.WeatherProvider
	Key() string
}

// CachedProvider wraps a provider with a TTL cache.
type CachedProvider struct {
	inner   KeyedProvider
	cache   *Cache
	metrics *observability.Metrics
}

// NewCachedProvider creates a cache decorator around a provider.
func NewCachedProvider(inner KeyedProvider, cache *Cache, metrics *observability.Metrics) *CachedProvider {
	return &CachedProvider{inner: inner, cache: cache, metrics: metrics}
}

func (p *CachedProvider) CurrentWeather(ctx context.Context) (domain.WeatherSnapshot, error) {
	key := p.inner.Key()
	if snapshot, ok := p.cache.get(key); ok {
		p.metrics.WeatherCache.WithLabelValues("hit").Inc()
		return snapshot, nil
	}
	p.metrics.WeatherCache.WithLabelValues("miss").Inc()

	snapshot, err := p.inner.CurrentWeather(ctx)
	if err != nil {
		// Failures are not cached so the next request retries upstream.
		return snapshot, err
	}
	p.cache.put(key, snapshot)
	return snapshot, nil
}
