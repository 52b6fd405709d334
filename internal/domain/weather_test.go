package domain

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	snapshot WeatherSnapshot
	err      error
	calls    int
}

func (s *stubProvider) CurrentWeather(_ context.Context) (WeatherSnapshot, error) {
	s.calls++
	return s.snapshot, s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var weatherNow = time.Date(2024, time.May, 10, 9, 0, 0, 0, time.UTC)

func TestResolveWeather_NilProvider(t *testing.T) {
	snap, source := ResolveWeather(context.Background(), nil, weatherNow, discardLogger())

	assert.Equal(t, WeatherSourceFallback, source)
	assert.Equal(t, FallbackWeather(weatherNow), snap)
}

func TestResolveWeather_ProviderError(t *testing.T) {
	p := &stubProvider{err: context.DeadlineExceeded}
	snap, source := ResolveWeather(context.Background(), p, weatherNow, discardLogger())

	assert.Equal(t, WeatherSourceFallback, source)
	assert.InDelta(t, 24.0, snap.Temperature, 1e-9)
	assert.Equal(t, 68, snap.Humidity)
	assert.Zero(t, snap.Precipitation)
	assert.Equal(t, "Partly Cloudy", snap.Condition)
	assert.Equal(t, 1, p.calls)
}

func TestResolveWeather_Live(t *testing.T) {
	p := &stubProvider{snapshot: WeatherSnapshot{Temperature: 19.5, Humidity: 77, Precipitation: 1.2, Condition: "Rain"}}
	snap, source := ResolveWeather(context.Background(), p, weatherNow, discardLogger())

	assert.Equal(t, WeatherSourceLive, source)
	assert.InDelta(t, 19.5, snap.Temperature, 1e-9)
	assert.True(t, snap.ObservedAt.Equal(weatherNow), "missing observation time is stamped")
}

func TestFallbackWeather_RaisesNoAlerts(t *testing.T) {
	snap, _ := ResolveWeather(context.Background(), &stubProvider{err: errors.New("timeout")}, weatherNow, discardLogger())
	assert.Empty(t, GenerateAlerts(&snap, SoachaZones))
	assert.Empty(t, DetectPatterns(nil, &snap, weatherNow))
}

func TestParseTimestamp(t *testing.T) {
	for _, s := range []string{"2024-05-01T10:30:00Z", "2024-05-01T05:30:00-05:00", "2024-05-01T05:30:00", "2024-05-01 05:30:00"} {
		ts, err := ParseTimestamp(s)
		if assert.NoError(t, err, s) {
			assert.True(t, ts.Equal(time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)), s)
		}
	}
	_, err := ParseTimestamp("01/05/2024")
	assert.Error(t, err)
}

func TestParseTimestamp_NaiveUsesSiteLocation(t *testing.T) {
	t.Cleanup(func() { SetSiteLocation(nil) })

	ts, err := ParseTimestamp("2024-05-01")
	require.NoError(t, err)
	assert.True(t, ts.Equal(time.Date(2024, 5, 1, 5, 0, 0, 0, time.UTC)), "default is UTC-5")

	SetSiteLocation(time.UTC)
	ts, err = ParseTimestamp("2024-05-01T10:30:00")
	require.NoError(t, err)
	assert.True(t, ts.Equal(time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)))

	ts, err = ParseTimestamp("2024-05-01T10:30:00+02:00")
	require.NoError(t, err)
	assert.True(t, ts.Equal(time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC)), "explicit offsets win")
}
