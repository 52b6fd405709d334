package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// jsonFields is the generic object form used to carry fields a typed struct
// does not model, so documents survive a load/save cycle unchanged.
type jsonFields map[string]json.RawMessage

// withExtra marshals v and adds every extra field v did not already emit or
// emitted as null.
func withExtra(v any, extra map[string]json.RawMessage) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil || len(extra) == 0 {
		return data, err
	}
	var fields jsonFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	for k, raw := range extra {
		if cur, ok := fields[k]; !ok || string(cur) == "null" {
			fields[k] = raw
		}
	}
	return json.Marshal(fields)
}

// extraFields returns the members of fields whose keys are not in known.
func extraFields(fields jsonFields, known []string) map[string]json.RawMessage {
	extra := make(map[string]json.RawMessage)
	for k, raw := range fields {
		extra[k] = raw
	}
	for _, k := range known {
		delete(extra, k)
	}
	if len(extra) == 0 {
		return nil
	}
	return extra
}

// parseLenientFloat accepts a JSON number or a string holding one, which is
// what the dashboard form posts for coordinates.
func parseLenientFloat(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, !math.IsNaN(n) && !math.IsInf(n, 0)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// parseLenientInt is parseLenientFloat rounded half away from zero. Values
// outside the int range are rejected.
func parseLenientInt(raw json.RawMessage) (int, bool) {
	n, ok := parseLenientFloat(raw)
	if !ok {
		return 0, false
	}
	n = math.Round(n)
	if n < math.MinInt64 || n >= math.MaxInt64 {
		return 0, false
	}
	return int(n), true
}

// parseLenientTimestamp decodes the timestamp member of fields. A value that
// does not parse leaves the zero Timestamp and moves the raw value into extra
// so it is written back unchanged.
func parseLenientTimestamp(fields jsonFields, extra map[string]json.RawMessage) (Timestamp, map[string]json.RawMessage) {
	raw, ok := fields["timestamp"]
	if !ok {
		return Timestamp{}, extra
	}
	var ts Timestamp
	if err := ts.UnmarshalJSON(raw); err != nil {
		if extra == nil {
			extra = make(map[string]json.RawMessage, 1)
		}
		extra["timestamp"] = raw
		return Timestamp{}, extra
	}
	return ts, extra
}

func parseString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return ""
}

// formatMeasurement renders a reading for alert messages. Whole numbers keep
// one decimal ("34.0") so the text does not change shape across readings.
func formatMeasurement(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
