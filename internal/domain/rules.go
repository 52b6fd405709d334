package domain

import "fmt"

// Alert thresholds. Every comparison is strict.
const (
	HeatwaveTemperature       = 33.0
	FloodRiskPrecipitation    = 15.0
	FloodWarningPrecipitation = 5.0
	HighHumidity              = 85
)

// GenerateAlerts evaluates the alert rules against one snapshot. The result
// holds at most one alert per category and no ids or timestamps; those are
// assigned when the alerts are persisted. A nil snapshot yields no alerts.
func GenerateAlerts(snapshot *WeatherSnapshot, zones ZoneRegistry) []Alert {
	if snapshot == nil {
		return nil
	}

	var alerts []Alert

	if snapshot.Temperature > HeatwaveTemperature {
		alerts = append(alerts, Alert{
			Type:     AlertHeatwave,
			Severity: SeverityHigh,
			Message: fmt.Sprintf("Alerta: Ola de calor detectada (%s°C). Mantener vulnerable población hidratada.",
				formatMeasurement(snapshot.Temperature)),
			AffectedZones: zones.IDs(),
		})
	}

	switch {
	case snapshot.Precipitation > FloodRiskPrecipitation:
		alerts = append(alerts, Alert{
			Type:     AlertFloodRisk,
			Severity: SeverityHigh,
			Message: fmt.Sprintf("Alerta: Riesgo de inundación - Precipitación: %smm. Comunidades en El Danubio y La María en riesgo.",
				formatMeasurement(snapshot.Precipitation)),
			AffectedZones: zones.FloodProneIDs(),
		})
	case snapshot.Precipitation > FloodWarningPrecipitation:
		alerts = append(alerts, Alert{
			Type:     AlertFloodWarning,
			Severity: SeverityMedium,
			Message: fmt.Sprintf("Precaución: Lluvia moderada detectada (%smm). Monitorear niveles de agua.",
				formatMeasurement(snapshot.Precipitation)),
			AffectedZones: zones.IDs(),
		})
	}

	if snapshot.Humidity > HighHumidity {
		alerts = append(alerts, Alert{
			Type:          AlertHumidityHigh,
			Severity:      SeverityLow,
			Message:       fmt.Sprintf("Humedad relativa elevada (%d%%). Riesgo de enfermedades respiratorias.", snapshot.Humidity),
			AffectedZones: zones.IDs(),
		})
	}

	return alerts
}
