// Package domain models the Soacha community risk dashboard: weather
// snapshots, vulnerability zones, citizen reports, and the alerts derived
// from them.
//
// # Vulnerability Zones
//
// The zone registry is static. Zones are evaluated in registry order, so
// the affected_zones list of every generated alert is stable:
//
//	zona_1   4.58, -74.21  high    2500
//	zona_2   4.59, -74.20  medium  1800
//	danubio  4.57, -74.22  high    3200  flood-prone
//	maria    4.60, -74.19  medium  2100  flood-prone
//
// # Alert Rules
//
// [GenerateAlerts] maps one weather snapshot to candidate alerts. All
// comparisons are strict:
//
//	Temperature:   > 33 °C         heatwave       high    all zones
//	Precipitation: > 15 mm/h       flood_risk     high    flood-prone zones
//	               > 5 mm/h        flood_warning  medium  all zones
//	Humidity:      > 85 %          humidity_high  low     all zones
//
// The precipitation branch emits at most one alert. The categories are
// otherwise independent, so one snapshot yields zero to three candidates.
//
// # Deduplication
//
// A [Deduplicator] merges candidates into the persisted alert log. A
// candidate is discarded when the log already holds an alert with the same
// key whose timestamp lies less than the window (one hour by default) before
// the insertion time. The default key is the message text; because messages
// interpolate the measured value, a changed reading produces a new alert.
//
// # Predictive Patterns
//
// [DetectPatterns] looks at reports from the last 30 days. More than three
// flood reports yield a pattern_detected advisory; precipitation above 3 mm/h
// yields a short_term_forecast advisory carrying the snapshot it was derived
// from. Advisories are computed on demand and never persisted.
package domain
