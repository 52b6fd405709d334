package photos

import (
	"time"

	"github.com/couchcryptid/soacha-risk-dashboard/internal/domain"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// GeoJSON exports the georeferenced photos matching f as Point features.
func (l *Library) GeoJSON(f Filter) (*geojson.FeatureCollection, error) {
	meta, err := l.load()
	if err != nil {
		return nil, err
	}
	return buildCollection(meta.Photos, f, l.clock.Now()), nil
}

func buildCollection(photos []Photo, f Filter, now time.Time) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, p := range photos {
		if !p.Georeferenced() || !f.Match(p) {
			continue
		}
		feature := geojson.NewFeature(orb.Point{*p.Longitude, *p.Latitude})
		feature.Properties = geojson.Properties{
			"id":            p.ID,
			"description":   p.Description,
			"event_type":    p.EventType,
			"location_name": p.LocationName,
			"upload_date":   p.UploadDate,
			"thumbnail":     p.Thumbnail,
			"image_url":     p.ImageURL(),
			"tags":          p.Tags,
			"uploaded_by":   p.UploadedBy,
		}
		fc.Append(feature)
	}
	fc.ExtraMembers = geojson.Properties{
		"metadata": map[string]any{
			"total":        len(fc.Features),
			"generated_at": domain.NewTimestamp(now),
		},
	}
	return fc
}
