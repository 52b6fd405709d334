package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReport_UnmarshalLenient(t *testing.T) {
	t.Run("string coordinates from the form", func(t *testing.T) {
		var r Report
		require.NoError(t, json.Unmarshal([]byte(`{"id":3,"event_type":"inundación","latitude":"4.58","longitude":" -74.21 "}`), &r))
		require.True(t, r.HasLocation())
		assert.InDelta(t, 4.58, *r.Latitude, 1e-9)
		assert.InDelta(t, -74.21, *r.Longitude, 1e-9)
		assert.Equal(t, 3, r.ID)
	})

	t.Run("non-numeric coordinates are dropped", func(t *testing.T) {
		var r Report
		require.NoError(t, json.Unmarshal([]byte(`{"latitude":"north","longitude":-74.2}`), &r))
		assert.Nil(t, r.Latitude)
		assert.False(t, r.HasLocation())
	})

	t.Run("missing affected population is zero", func(t *testing.T) {
		var r Report
		require.NoError(t, json.Unmarshal([]byte(`{"event_type":"incendio"}`), &r))
		assert.Zero(t, r.AffectedPopulation)
	})

	t.Run("affected population as string", func(t *testing.T) {
		var r Report
		require.NoError(t, json.Unmarshal([]byte(`{"affected_population":"120"}`), &r))
		assert.Equal(t, 120, r.AffectedPopulation)
	})

	t.Run("fractional affected population is rounded", func(t *testing.T) {
		var r Report
		require.NoError(t, json.Unmarshal([]byte(`{"affected_population":2.5}`), &r))
		assert.Equal(t, 3, r.AffectedPopulation)
		require.NoError(t, json.Unmarshal([]byte(`{"affected_population":"7.4"}`), &r))
		assert.Equal(t, 7, r.AffectedPopulation)
	})

	t.Run("out of range affected population is dropped", func(t *testing.T) {
		for _, v := range []string{`1e20`, `-1e20`, `"9.3e18"`} {
			var r Report
			require.NoError(t, json.Unmarshal([]byte(`{"id":1e19,"affected_population":`+v+`}`), &r), v)
			assert.Zero(t, r.AffectedPopulation, v)
			assert.Zero(t, r.ID, v)
		}
	})

	t.Run("naive iso timestamp is site local time", func(t *testing.T) {
		var r Report
		require.NoError(t, json.Unmarshal([]byte(`{"timestamp":"2024-05-01T10:30:00.123456"}`), &r))
		assert.True(t, r.Timestamp.Equal(time.Date(2024, 5, 1, 15, 30, 0, 123456000, time.UTC)))
	})

	t.Run("unparseable timestamp is kept raw", func(t *testing.T) {
		for _, raw := range []string{`"ayer"`, `1714557600`, `{"dia":1}`} {
			in := `{"id":2,"event_type":"inundación","affected_population":5,"timestamp":` + raw + `}`
			var r Report
			require.NoError(t, json.Unmarshal([]byte(in), &r), raw)
			assert.True(t, r.Timestamp.IsZero(), raw)
			assert.JSONEq(t, raw, string(r.Extra["timestamp"]), raw)

			out, err := json.Marshal(r)
			require.NoError(t, err)
			assert.JSONEq(t, in, string(out), raw)
		}
	})

	t.Run("not an object", func(t *testing.T) {
		var r Report
		assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &r))
	})
}

func TestReport_RoundTripKeepsUnknownFields(t *testing.T) {
	in := `{"id":1,"event_type":"inundación","affected_population":40,"latitude":4.57,"longitude":-74.22,` +
		`"description":"Desborde en danubio","timestamp":"2024-05-01T10:30:00Z","eventType":"flood","reporter":{"name":"Ana"}}`

	var r Report
	require.NoError(t, json.Unmarshal([]byte(in), &r))
	assert.Contains(t, r.Extra, "eventType")
	assert.Contains(t, r.Extra, "reporter")

	out, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, in, string(out))
}

func TestReport_Merge(t *testing.T) {
	lat := 4.6
	r := Report{ID: 5, EventType: "incendio", AffectedPopulation: 10, Latitude: &lat, Description: "humo"}

	patch := map[string]json.RawMessage{
		"id":                  json.RawMessage(`99`),
		"affected_population": json.RawMessage(`25`),
		"status":              json.RawMessage(`"verificado"`),
	}
	merged, err := r.Merge(patch)
	require.NoError(t, err)

	assert.Equal(t, 5, merged.ID)
	assert.Equal(t, 25, merged.AffectedPopulation)
	assert.Equal(t, "incendio", merged.EventType)
	assert.Equal(t, "humo", merged.Description)
	assert.JSONEq(t, `"verificado"`, string(merged.Extra["status"]))
}

func TestReport_MergeReplacesUnparseableTimestamp(t *testing.T) {
	var r Report
	require.NoError(t, json.Unmarshal([]byte(`{"id":3,"event_type":"incendio","timestamp":"ayer"}`), &r))

	kept, err := r.Merge(map[string]json.RawMessage{"description": json.RawMessage(`"humo"`)})
	require.NoError(t, err)
	assert.JSONEq(t, `"ayer"`, string(kept.Extra["timestamp"]))

	fixed, err := r.Merge(map[string]json.RawMessage{"timestamp": json.RawMessage(`"2024-05-01T10:30:00Z"`)})
	require.NoError(t, err)
	assert.True(t, fixed.Timestamp.Equal(time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)))
	assert.NotContains(t, fixed.Extra, "timestamp")
}

func TestReport_InZone(t *testing.T) {
	assert.True(t, Report{Zone: "danubio"}.InZone("danubio"))
	assert.True(t, Report{Description: "Calles inundadas en MARIA"}.InZone("maria"))
	assert.False(t, Report{Description: "Soacha centro"}.InZone("maria"))
}

func TestAlert_RoundTripKeepsUnknownFields(t *testing.T) {
	in := `{"id":4,"type":"manual","severity":"medium","message":"Corte de vía","timestamp":"2024-05-01T10:30:00Z","source":"defensa civil"}`

	var a Alert
	require.NoError(t, json.Unmarshal([]byte(in), &a))
	assert.Equal(t, 4, a.ID)
	assert.Equal(t, AlertType("manual"), a.Type)

	out, err := json.Marshal(a)
	require.NoError(t, err)
	assert.JSONEq(t, in, string(out))
}

func TestAlert_UnparseableTimestampIsKeptRaw(t *testing.T) {
	in := `{"id":6,"type":"manual","severity":"low","message":"m","timestamp":"lunes"}`

	var a Alert
	require.NoError(t, json.Unmarshal([]byte(in), &a))
	assert.Equal(t, 6, a.ID)
	assert.True(t, a.Timestamp.IsZero())

	out, err := json.Marshal(a)
	require.NoError(t, err)
	assert.JSONEq(t, in, string(out))
}

func TestDocument_LoadsReportWithUnparseableTimestamp(t *testing.T) {
	in := `{"community_reports":[{"id":1,"event_type":"inundación","timestamp":"ayer"},` +
		`{"id":2,"event_type":"incendio","timestamp":"2024-05-01T10:00:00Z"}],"alerts":[]}`

	var doc Document
	require.NoError(t, json.Unmarshal([]byte(in), &doc))
	require.Len(t, doc.Reports, 2)
	assert.Equal(t, 1, doc.Reports[0].ID)
	assert.True(t, doc.Reports[0].Timestamp.IsZero())
	assert.False(t, doc.Reports[1].Timestamp.IsZero())
}

func TestDocument_RoundTrip(t *testing.T) {
	in := `{
		"community_reports":[{"id":1,"event_type":"inundación","affected_population":12,"timestamp":"2024-05-01T10:00:00Z","photo":"a.jpg"}],
		"alerts":[{"id":1,"type":"heatwave","severity":"high","message":"m","affected_zones":["zona_1"],"timestamp":"2024-05-01T11:00:00Z"}],
		"dashboard_layout":{"widgets":["map","alerts"]},
		"population_stats":{},
		"geolayers":{"custom":true}
	}`

	var doc Document
	require.NoError(t, json.Unmarshal([]byte(in), &doc))
	doc.Normalize()

	out, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, in, string(out))
}

func TestDocument_NormalizeFillsSections(t *testing.T) {
	var doc Document
	require.NoError(t, json.Unmarshal([]byte(`{"alerts":null}`), &doc))
	doc.Normalize()

	out, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"community_reports":[],"alerts":[],"dashboard_layout":{},"population_stats":{},"geolayers":{}}`, string(out))
}

func TestDocument_IDsAndRecent(t *testing.T) {
	doc := NewDocument()
	assert.Equal(t, 1, doc.NextReportID())
	assert.Equal(t, 1, doc.NextAlertID())

	doc.Reports = []Report{{ID: 1}, {ID: 4}}
	doc.Alerts = []Alert{{ID: 2}, {ID: 3}, {ID: 9}}
	assert.Equal(t, 5, doc.NextReportID())
	assert.Equal(t, 10, doc.NextAlertID())
	assert.Equal(t, 1, doc.ReportIndex(4))
	assert.Equal(t, -1, doc.ReportIndex(2))

	recent := doc.RecentAlerts(2)
	require.Len(t, recent, 2)
	assert.Equal(t, 3, recent[0].ID)
	assert.Equal(t, 9, recent[1].ID)
	assert.Len(t, doc.RecentAlerts(5), 3)
}

func TestDocument_CloneIsIndependent(t *testing.T) {
	doc := NewDocument()
	doc.Alerts = append(make([]Alert, 0, 8), Alert{ID: 1})

	clone := doc.Clone()
	clone.Alerts = append(clone.Alerts, Alert{ID: 2})
	clone.Reports = append(clone.Reports, Report{ID: 1})

	assert.Len(t, doc.Alerts, 1)
	assert.Equal(t, Alert{}, doc.Alerts[:2][1])
	assert.Empty(t, doc.Reports)
}
