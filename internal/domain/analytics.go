package domain

import "time"

// Summary is the headline view of the dashboard.
type Summary struct {
	TotalReports            int              `json:"total_reports"`
	TotalAlerts             int              `json:"total_alerts"`
	TotalAffectedPopulation int              `json:"total_affected_population"`
	AtRiskPopulation        int              `json:"at_risk_population"`
	EventDistribution       map[string]int   `json:"event_distribution"`
	CurrentWeather          *WeatherSnapshot `json:"current_weather,omitempty"`
	ActiveZones             int              `json:"active_zones"`
	HighRiskZones           int              `json:"high_risk_zones"`
	Timestamp               Timestamp        `json:"timestamp"`
}

// Summarize aggregates report and alert counts. Zones count as active when
// at least one report was filed against them.
func Summarize(doc Document, zones ZoneRegistry, now time.Time) Summary {
	s := Summary{
		TotalReports:      len(doc.Reports),
		TotalAlerts:       len(doc.Alerts),
		AtRiskPopulation:  zones.TotalPopulation(),
		EventDistribution: make(map[string]int),
		HighRiskZones:     zones.CountByRisk(RiskHigh),
		Timestamp:         NewTimestamp(now),
	}
	for _, r := range doc.Reports {
		s.EventDistribution[r.EventTypeOrUnknown()]++
		s.TotalAffectedPopulation += r.AffectedPopulation
	}
	for _, z := range zones {
		for _, r := range doc.Reports {
			if r.InZone(z.ID) {
				s.ActiveZones++
				break
			}
		}
	}
	return s
}

// Intervention coverage percentages reported by the municipal programmes.
var (
	ZoneInterventions = map[string]int{
		"social_cohesion":    45,
		"disaster_risk_mgmt": 60,
		"climate_change":     35,
	}
	InterventionCoverage = map[string]int{
		"social_cohesion":           45,
		"disaster_risk_management":  60,
		"climate_change_adaptation": 35,
	}
)

// ZoneVulnerability is the risk profile of one zone.
type ZoneVulnerability struct {
	ZoneName         string         `json:"zone_name"`
	RiskLevel        RiskLevel      `json:"risk_level"`
	RiskScore        int            `json:"risk_score"`
	PopulationAtRisk int            `json:"population_at_risk"`
	Coordinates      [2]float64     `json:"coordinates"` // lat, lng
	Interventions    map[string]int `json:"interventions"`
}

// AnalyzeVulnerability returns the risk profile of every zone keyed by id.
func AnalyzeVulnerability(zones ZoneRegistry) map[string]ZoneVulnerability {
	out := make(map[string]ZoneVulnerability, len(zones))
	for _, z := range zones {
		out[z.ID] = ZoneVulnerability{
			ZoneName:         z.ID,
			RiskLevel:        z.RiskLevel,
			RiskScore:        z.RiskLevel.Score(),
			PopulationAtRisk: z.Population,
			Coordinates:      [2]float64{z.Latitude, z.Longitude},
			Interventions:    ZoneInterventions,
		}
	}
	return out
}

// ZoneImpact counts the reports filed against a zone.
type ZoneImpact struct {
	Population     int `json:"population"`
	AffectedEvents int `json:"affected_events"`
	AffectedPeople int `json:"affected_people"`
}

// EventImpact counts the reports of one event type.
type EventImpact struct {
	Count    int `json:"count"`
	Affected int `json:"affected"`
}

// PopulationStats breaks affected population down by zone and event type.
type PopulationStats struct {
	TotalPopulationAtRisk int                    `json:"total_population_at_risk"`
	ByZone                map[string]ZoneImpact  `json:"by_zone"`
	ByEventType           map[string]EventImpact `json:"by_event_type"`
	InterventionCoverage  map[string]int         `json:"intervention_coverage"`
}

// ComputePopulationStats aggregates reports per zone and per event type.
func ComputePopulationStats(reports []Report, zones ZoneRegistry) PopulationStats {
	stats := PopulationStats{
		TotalPopulationAtRisk: zones.TotalPopulation(),
		ByZone:                make(map[string]ZoneImpact, len(zones)),
		ByEventType:           make(map[string]EventImpact),
		InterventionCoverage:  InterventionCoverage,
	}

	for _, z := range zones {
		impact := ZoneImpact{Population: z.Population}
		for _, r := range reports {
			if r.InZone(z.ID) {
				impact.AffectedEvents++
				impact.AffectedPeople += r.AffectedPopulation
			}
		}
		stats.ByZone[z.ID] = impact
	}

	for _, r := range reports {
		key := r.EventTypeOrUnknown()
		impact := stats.ByEventType[key]
		impact.Count++
		impact.Affected += r.AffectedPopulation
		stats.ByEventType[key] = impact
	}

	return stats
}
