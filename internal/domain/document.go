package domain

import "encoding/json"

// Document is the whole persisted dashboard state. It is always loaded and
// saved as one unit.
type Document struct {
	Reports         []Report        `json:"community_reports"`
	Alerts          []Alert         `json:"alerts"`
	DashboardLayout json.RawMessage `json:"dashboard_layout"`
	PopulationStats json.RawMessage `json:"population_stats"`
	GeoLayers       json.RawMessage `json:"geolayers"`
}

var emptyObject = json.RawMessage(`{}`)

// NewDocument returns an empty document.
func NewDocument() Document {
	var d Document
	d.Normalize()
	return d
}

// Normalize replaces missing sections with empty ones.
func (d *Document) Normalize() {
	if d.Reports == nil {
		d.Reports = []Report{}
	}
	if d.Alerts == nil {
		d.Alerts = []Alert{}
	}
	if len(d.DashboardLayout) == 0 || string(d.DashboardLayout) == "null" {
		d.DashboardLayout = emptyObject
	}
	if len(d.PopulationStats) == 0 || string(d.PopulationStats) == "null" {
		d.PopulationStats = emptyObject
	}
	if len(d.GeoLayers) == 0 || string(d.GeoLayers) == "null" {
		d.GeoLayers = emptyObject
	}
}

// Clone returns a copy whose slices can be modified without touching d.
func (d Document) Clone() Document {
	out := d
	out.Reports = append([]Report(nil), d.Reports...)
	out.Alerts = append([]Alert(nil), d.Alerts...)
	out.Normalize()
	return out
}

// NextReportID returns one more than the highest report id in use.
func (d Document) NextReportID() int {
	highest := 0
	for _, r := range d.Reports {
		if r.ID > highest {
			highest = r.ID
		}
	}
	return highest + 1
}

// NextAlertID returns one more than the highest alert id in use.
func (d Document) NextAlertID() int {
	return nextAlertID(d.Alerts)
}

func nextAlertID(alerts []Alert) int {
	highest := 0
	for _, a := range alerts {
		if a.ID > highest {
			highest = a.ID
		}
	}
	return highest + 1
}

// ReportIndex returns the slice index of the report with the given id, or -1.
func (d Document) ReportIndex(id int) int {
	for i, r := range d.Reports {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// RecentAlerts returns up to n alerts from the end of the log, oldest first.
func (d Document) RecentAlerts(n int) []Alert {
	if n <= 0 {
		return []Alert{}
	}
	if len(d.Alerts) <= n {
		return append([]Alert{}, d.Alerts...)
	}
	return append([]Alert{}, d.Alerts[len(d.Alerts)-n:]...)
}
