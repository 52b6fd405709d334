package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Report is a citizen-submitted event report. Numeric fields are parsed
// leniently: a missing or malformed affected_population counts as zero and
// coordinates that are not numbers are dropped. A timestamp that does not
// parse is left zero and its raw value kept in Extra.
type Report struct {
	ID                 int       `json:"id"`
	EventType          string    `json:"event_type"`
	AffectedPopulation int       `json:"affected_population" validate:"gte=0"`
	Latitude           *float64  `json:"latitude,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Longitude          *float64  `json:"longitude,omitempty" validate:"omitempty,gte=-180,lte=180"`
	Description        string    `json:"description,omitempty"`
	Date               string    `json:"date,omitempty"`
	Zone               string    `json:"zone,omitempty"`
	Timestamp          Timestamp `json:"timestamp"`

	Extra map[string]json.RawMessage `json:"-"`
}

var reportKeys = []string{
	"id", "event_type", "affected_population", "latitude", "longitude",
	"description", "date", "zone", "timestamp",
}

type reportJSON Report

func (r Report) MarshalJSON() ([]byte, error) {
	return withExtra(reportJSON(r), r.Extra)
}

func (r *Report) UnmarshalJSON(data []byte) error {
	var fields jsonFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("report must be a JSON object: %w", err)
	}

	var out Report
	if id, ok := parseLenientInt(fields["id"]); ok {
		out.ID = id
	}
	out.EventType = parseString(fields["event_type"])
	out.Description = parseString(fields["description"])
	out.Date = parseString(fields["date"])
	out.Zone = parseString(fields["zone"])
	if n, ok := parseLenientInt(fields["affected_population"]); ok {
		out.AffectedPopulation = n
	}
	if lat, ok := parseLenientFloat(fields["latitude"]); ok {
		out.Latitude = &lat
	}
	if lon, ok := parseLenientFloat(fields["longitude"]); ok {
		out.Longitude = &lon
	}
	out.Timestamp, out.Extra = parseLenientTimestamp(fields, extraFields(fields, reportKeys))

	*r = out
	return nil
}

// HasLocation reports whether both coordinates are present.
func (r Report) HasLocation() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// EventTypeOrUnknown returns the event type, or "unknown" when it is blank.
func (r Report) EventTypeOrUnknown() string {
	if r.EventType == "" {
		return "unknown"
	}
	return r.EventType
}

// InZone reports whether the report was filed against the zone, either
// explicitly or by naming it in the description.
func (r Report) InZone(zoneID string) bool {
	return r.Zone == zoneID || strings.Contains(strings.ToLower(r.Description), zoneID)
}

// Merge applies a partial update to the report. Fields present in patch
// replace the stored ones; the id never changes.
func (r Report) Merge(patch map[string]json.RawMessage) (Report, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return Report{}, fmt.Errorf("encode report: %w", err)
	}
	var fields jsonFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return Report{}, fmt.Errorf("decode report: %w", err)
	}
	for k, raw := range patch {
		if k == "id" {
			continue
		}
		fields[k] = raw
	}
	merged, err := json.Marshal(fields)
	if err != nil {
		return Report{}, fmt.Errorf("encode merged report: %w", err)
	}
	var out Report
	if err := json.Unmarshal(merged, &out); err != nil {
		return Report{}, err
	}
	out.ID = r.ID
	return out, nil
}
