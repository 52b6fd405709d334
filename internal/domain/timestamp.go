package domain

import (
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"
)

// Timestamp is a point in time that serializes as RFC 3339 and also accepts
// the naive ISO-8601 strings written by older dashboard data files.
type Timestamp struct {
	time.Time
}

// NewTimestamp wraps t.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// DefaultSiteLocation is Soacha local time. Colombia has not observed
// daylight saving since 1993.
var DefaultSiteLocation = time.FixedZone("America/Bogota", -5*60*60)

var siteLocation atomic.Pointer[time.Location]

// SetSiteLocation sets the zone naive timestamps are read in. A nil loc
// restores DefaultSiteLocation.
func SetSiteLocation(loc *time.Location) {
	siteLocation.Store(loc)
}

// SiteLocation returns the zone naive timestamps are read in.
func SiteLocation() *time.Location {
	if loc := siteLocation.Load(); loc != nil {
		return loc
	}
	return DefaultSiteLocation
}

// ParseTimestamp parses s with each supported layout in turn. Strings
// without a zone offset are site local time, which is how the dashboard
// wrote them before it stored RFC 3339.
func ParseTimestamp(s string) (Timestamp, error) {
	loc := SiteLocation()
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return Timestamp{Time: t}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("unrecognized timestamp %q", s)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = Timestamp{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	if s == "" {
		*t = Timestamp{}
		return nil
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
