package domain

import (
	"encoding/json"
	"fmt"
)

// AlertType identifies the rule that produced an alert.
type AlertType string

const (
	AlertHeatwave          AlertType = "heatwave"
	AlertFloodRisk         AlertType = "flood_risk"
	AlertFloodWarning      AlertType = "flood_warning"
	AlertHumidityHigh      AlertType = "humidity_high"
	AlertPatternDetected   AlertType = "pattern_detected"
	AlertShortTermForecast AlertType = "short_term_forecast"
)

// Severity of an alert.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Alert is a notice shown on the dashboard. Rule-generated alerts get their
// ID and Timestamp when they are persisted; predictive advisories carry a
// Confidence and are never persisted.
type Alert struct {
	ID            int              `json:"id,omitempty"`
	Type          AlertType        `json:"type"`
	Severity      Severity         `json:"severity" validate:"omitempty,oneof=low medium high"`
	Message       string           `json:"message"`
	AffectedZones []string         `json:"affected_zones,omitempty"`
	Timestamp     Timestamp        `json:"timestamp"`
	Confidence    *float64         `json:"confidence,omitempty" validate:"omitempty,gte=0,lte=1"`
	Conditions    *WeatherSnapshot `json:"conditions,omitempty"`

	// Extra holds fields posted by clients that the dashboard does not model.
	Extra map[string]json.RawMessage `json:"-"`
}

var alertKeys = []string{"id", "type", "severity", "message", "affected_zones", "timestamp", "confidence", "conditions"}

type alertJSON Alert

func (a Alert) MarshalJSON() ([]byte, error) {
	return withExtra(alertJSON(a), a.Extra)
}

func (a *Alert) UnmarshalJSON(data []byte) error {
	var fields jsonFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("alert must be a JSON object: %w", err)
	}
	typed := make(jsonFields, len(fields))
	for k, raw := range fields {
		if k != "timestamp" {
			typed[k] = raw
		}
	}
	body, err := json.Marshal(typed)
	if err != nil {
		return fmt.Errorf("decode alert: %w", err)
	}
	var decoded alertJSON
	if err := json.Unmarshal(body, &decoded); err != nil {
		return fmt.Errorf("decode alert: %w", err)
	}
	*a = Alert(decoded)
	a.Timestamp, a.Extra = parseLenientTimestamp(fields, extraFields(fields, alertKeys))
	return nil
}

func confidence(v float64) *float64 { return &v }
