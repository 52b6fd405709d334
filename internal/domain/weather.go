package domain

import (
	"context"
	"log/slog"
	"time"
)

// WeatherSnapshot is one observation of current conditions over Soacha.
type WeatherSnapshot struct {
	Temperature   float64   `json:"temperature"`   // °C
	Humidity      int       `json:"humidity"`      // %
	Precipitation float64   `json:"precipitation"` // mm in the last hour
	Condition     string    `json:"weather"`
	ObservedAt    Timestamp `json:"timestamp"`
}

// WeatherProvider fetches current conditions from an upstream source.
type WeatherProvider interface {
	CurrentWeather(ctx context.Context) (WeatherSnapshot, error)
}

// Fallback conditions substituted when no reading can be obtained. None of
// them crosses an alert threshold.
const (
	FallbackTemperature   = 24.0
	FallbackHumidity      = 68
	FallbackPrecipitation = 0.0
	FallbackCondition     = "Partly Cloudy"
)

// FallbackWeather returns the fixed fallback snapshot observed at now.
func FallbackWeather(now time.Time) WeatherSnapshot {
	return WeatherSnapshot{
		Temperature:   FallbackTemperature,
		Humidity:      FallbackHumidity,
		Precipitation: FallbackPrecipitation,
		Condition:     FallbackCondition,
		ObservedAt:    NewTimestamp(now),
	}
}

// Weather sources reported alongside a resolved snapshot.
const (
	WeatherSourceLive     = "live"
	WeatherSourceFallback = "fallback"
)

// ResolveWeather asks the provider for current conditions. If provider is nil
// or the request fails, the fallback snapshot is returned instead (graceful
// degradation); the failure is logged and never surfaces to the caller.
func ResolveWeather(ctx context.Context, provider WeatherProvider, now time.Time, logger *slog.Logger) (WeatherSnapshot, string) {
	if provider == nil {
		return FallbackWeather(now), WeatherSourceFallback
	}

	snapshot, err := provider.CurrentWeather(ctx)
	if err != nil {
		logger.Warn("weather fetch failed, using fallback conditions", "error", err)
		return FallbackWeather(now), WeatherSourceFallback
	}
	if snapshot.ObservedAt.IsZero() {
		snapshot.ObservedAt = NewTimestamp(now)
	}
	return snapshot, WeatherSourceLive
}
