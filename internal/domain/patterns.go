package domain

import (
	"strings"
	"time"
)

// Predictive pattern parameters.
const (
	PatternWindow                  = 30 * 24 * time.Hour
	PatternMinFloodReports         = 3 // strictly more than this many
	PatternConfidence              = 0.85
	ForecastPrecipitationThreshold = 3.0
	ForecastConfidence             = 0.70
)

// FloodTerms are the event-type fragments that mark a flood report.
var FloodTerms = []string{"inundación", "inundacion", "flood"}

// IsFloodEvent reports whether an event type names a flood.
func IsFloodEvent(eventType string) bool {
	lower := strings.ToLower(eventType)
	for _, term := range FloodTerms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

// DetectPatterns derives predictive advisories from recent reports and the
// current snapshot. Reports without a timestamp count as filed at now.
func DetectPatterns(reports []Report, snapshot *WeatherSnapshot, now time.Time) []Alert {
	var alerts []Alert

	recent, floods := 0, 0
	for _, r := range reports {
		ts := r.Timestamp.Time
		if r.Timestamp.IsZero() {
			ts = now
		}
		if now.Sub(ts) >= PatternWindow {
			continue
		}
		recent++
		if IsFloodEvent(r.EventType) {
			floods++
		}
	}

	if recent > PatternMinFloodReports && floods > PatternMinFloodReports {
		alerts = append(alerts, Alert{
			Type:       AlertPatternDetected,
			Severity:   SeverityHigh,
			Message:    "Patrón detectado: Múltiples inundaciones en 30 días. Aumentar vigilancia preventiva.",
			Timestamp:  NewTimestamp(now),
			Confidence: confidence(PatternConfidence),
		})
	}

	if snapshot != nil && snapshot.Precipitation > ForecastPrecipitationThreshold {
		conditions := *snapshot
		alerts = append(alerts, Alert{
			Type:       AlertShortTermForecast,
			Severity:   SeverityMedium,
			Message:    "Precipitación detectada. Riesgo moderado de inundación en próximas horas.",
			Timestamp:  NewTimestamp(now),
			Confidence: confidence(ForecastConfidence),
			Conditions: &conditions,
		})
	}

	return alerts
}
