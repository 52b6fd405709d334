package domain

// RiskLevel grades the social vulnerability of a zone.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Score maps the level to the 0-100 risk score shown on the dashboard.
func (r RiskLevel) Score() int {
	switch r {
	case RiskHigh:
		return 85
	case RiskMedium:
		return 60
	case RiskLow:
		return 30
	default:
		return 50
	}
}

// Zone is a named neighbourhood with a known population and risk level.
type Zone struct {
	ID         string    `json:"id"`
	Latitude   float64   `json:"lat"`
	Longitude  float64   `json:"lng"`
	RiskLevel  RiskLevel `json:"risk_level"`
	Population int       `json:"population"`
	FloodProne bool      `json:"flood_prone"`
}

// ZoneRegistry is an ordered set of zones.
type ZoneRegistry []Zone

// SoachaZones is the static registry the alert rules evaluate against.
var SoachaZones = ZoneRegistry{
	{ID: "zona_1", Latitude: 4.58, Longitude: -74.21, RiskLevel: RiskHigh, Population: 2500},
	{ID: "zona_2", Latitude: 4.59, Longitude: -74.20, RiskLevel: RiskMedium, Population: 1800},
	{ID: "danubio", Latitude: 4.57, Longitude: -74.22, RiskLevel: RiskHigh, Population: 3200, FloodProne: true},
	{ID: "maria", Latitude: 4.60, Longitude: -74.19, RiskLevel: RiskMedium, Population: 2100, FloodProne: true},
}

// SoachaCenter is the reference point used for weather lookups.
var SoachaCenter = struct{ Latitude, Longitude float64 }{4.5828, -74.2120}

// IDs returns every zone id in registry order.
func (r ZoneRegistry) IDs() []string {
	ids := make([]string, len(r))
	for i, z := range r {
		ids[i] = z.ID
	}
	return ids
}

// FloodProneIDs returns the ids of flood-prone zones in registry order.
func (r ZoneRegistry) FloodProneIDs() []string {
	var ids []string
	for _, z := range r {
		if z.FloodProne {
			ids = append(ids, z.ID)
		}
	}
	return ids
}

// TotalPopulation sums the population of every zone.
func (r ZoneRegistry) TotalPopulation() int {
	total := 0
	for _, z := range r {
		total += z.Population
	}
	return total
}

// CountByRisk returns how many zones carry the given level.
func (r ZoneRegistry) CountByRisk(level RiskLevel) int {
	n := 0
	for _, z := range r {
		if z.RiskLevel == level {
			n++
		}
	}
	return n
}
