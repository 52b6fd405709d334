package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var patternNow = time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)

func reportsOf(eventTypes []string, age time.Duration) []Report {
	out := make([]Report, len(eventTypes))
	for i, et := range eventTypes {
		out[i] = Report{ID: i + 1, EventType: et, Timestamp: NewTimestamp(patternNow.Add(-age))}
	}
	return out
}

func TestDetectPatterns_FloodCluster(t *testing.T) {
	tests := []struct {
		name   string
		events []string
		want   bool
	}{
		{"four floods", []string{"inundación", "Inundación", "flood", "INUNDACION"}, true},
		{"four floods among others", []string{"inundación", "flooding", "incendio", "inundación", "flash flood"}, true},
		{"three floods", []string{"inundación", "inundación", "inundación"}, false},
		{"three floods with others", []string{"inundación", "inundación", "inundación", "deslizamiento"}, false},
		{"no reports", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alerts := DetectPatterns(reportsOf(tt.events, 24*time.Hour), nil, patternNow)
			if !tt.want {
				assert.Empty(t, alerts)
				return
			}
			require.Len(t, alerts, 1)
			assert.Equal(t, AlertPatternDetected, alerts[0].Type)
			assert.Equal(t, SeverityHigh, alerts[0].Severity)
			require.NotNil(t, alerts[0].Confidence)
			assert.InDelta(t, 0.85, *alerts[0].Confidence, 1e-9)
		})
	}
}

func TestDetectPatterns_IgnoresOldReports(t *testing.T) {
	old := reportsOf([]string{"inundación", "inundación", "inundación", "inundación"}, 30*24*time.Hour)
	assert.Empty(t, DetectPatterns(old, nil, patternNow))

	recent := reportsOf([]string{"inundación", "inundación", "inundación", "inundación"}, 30*24*time.Hour-time.Minute)
	assert.Len(t, DetectPatterns(recent, nil, patternNow), 1)
}

func TestDetectPatterns_MissingTimestampCountsAsNow(t *testing.T) {
	reports := []Report{
		{EventType: "inundación"}, {EventType: "inundación"},
		{EventType: "inundación"}, {EventType: "inundación"},
	}
	assert.Len(t, DetectPatterns(reports, nil, patternNow), 1)
}

func TestDetectPatterns_ShortTermForecast(t *testing.T) {
	snap := &WeatherSnapshot{Temperature: 18, Humidity: 80, Precipitation: 3.5, Condition: "Rain"}

	alerts := DetectPatterns(nil, snap, patternNow)
	require.Len(t, alerts, 1)
	a := alerts[0]
	assert.Equal(t, AlertShortTermForecast, a.Type)
	assert.Equal(t, SeverityMedium, a.Severity)
	require.NotNil(t, a.Confidence)
	assert.InDelta(t, 0.70, *a.Confidence, 1e-9)
	require.NotNil(t, a.Conditions)
	assert.Equal(t, *snap, *a.Conditions)

	snap.Precipitation = 3.0
	assert.Empty(t, DetectPatterns(nil, snap, patternNow))
}

func TestDetectPatterns_Both(t *testing.T) {
	reports := reportsOf([]string{"inundación", "inundación", "inundación", "inundación"}, time.Hour)
	alerts := DetectPatterns(reports, &WeatherSnapshot{Precipitation: 12}, patternNow)
	assert.Equal(t, []AlertType{AlertPatternDetected, AlertShortTermForecast}, alertTypes(alerts))
}
