package geolayers

import (
	"time"

	"github.com/couchcryptid/soacha-risk-dashboard/internal/domain"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// VulnerabilityZones renders every zone as a Point feature.
func VulnerabilityZones(zones domain.ZoneRegistry) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, z := range zones {
		f := geojson.NewFeature(orb.Point{z.Longitude, z.Latitude})
		f.Properties = geojson.Properties{
			"name":       z.ID,
			"risk_level": z.RiskLevel,
			"population": z.Population,
		}
		fc.Append(f)
	}
	return fc
}

// Reports renders the reports that carry coordinates as Point features.
func Reports(reports []domain.Report, now time.Time) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, r := range reports {
		if !r.HasLocation() {
			continue
		}
		f := geojson.NewFeature(orb.Point{*r.Longitude, *r.Latitude})
		f.ID = r.ID
		f.Properties = geojson.Properties{
			"id":                  r.ID,
			"event_type":          r.EventTypeOrUnknown(),
			"affected_population": r.AffectedPopulation,
			"description":         r.Description,
			"date":                r.Date,
			"zone":                r.Zone,
			"timestamp":           r.Timestamp,
		}
		fc.Append(f)
	}
	fc.ExtraMembers = geojson.Properties{
		"metadata": map[string]any{
			"total":        len(fc.Features),
			"generated_at": domain.NewTimestamp(now),
		},
	}
	return fc
}
