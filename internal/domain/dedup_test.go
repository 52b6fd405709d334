package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var dedupBase = time.Date(2024, time.May, 10, 14, 0, 0, 0, time.UTC)

func heatwaveAt(id int, ts time.Time) Alert {
	return Alert{
		ID:            id,
		Type:          AlertHeatwave,
		Severity:      SeverityHigh,
		Message:       "Alerta: Ola de calor detectada (34.0°C). Mantener vulnerable población hidratada.",
		AffectedZones: SoachaZones.IDs(),
		Timestamp:     NewTimestamp(ts),
	}
}

func TestDeduplicator_Window(t *testing.T) {
	d := NewDeduplicator(0, nil)
	existing := []Alert{heatwaveAt(1, dedupBase)}
	candidate := heatwaveAt(0, time.Time{})

	t.Run("inside window is discarded", func(t *testing.T) {
		merged, added := d.Reconcile(existing, []Alert{candidate}, dedupBase.Add(3599*time.Second))
		assert.Len(t, merged, 1)
		assert.Empty(t, added)
	})

	t.Run("exactly at window is appended", func(t *testing.T) {
		merged, added := d.Reconcile(existing, []Alert{candidate}, dedupBase.Add(time.Hour))
		assert.Len(t, merged, 2)
		assert.Len(t, added, 1)
	})

	t.Run("after window is appended", func(t *testing.T) {
		now := dedupBase.Add(3601 * time.Second)
		merged, added := d.Reconcile(existing, []Alert{candidate}, now)
		require.Len(t, merged, 2)
		require.Len(t, added, 1)
		assert.Equal(t, 2, added[0].ID)
		assert.True(t, added[0].Timestamp.Equal(now))
	})
}

func TestDeduplicator_DifferentReadingIsNotDuplicate(t *testing.T) {
	d := NewDeduplicator(time.Hour, MessageKey)
	existing := []Alert{heatwaveAt(1, dedupBase)}
	candidates := GenerateAlerts(&WeatherSnapshot{Temperature: 35}, SoachaZones)

	merged, added := d.Reconcile(existing, candidates, dedupBase.Add(time.Minute))
	assert.Len(t, merged, 2)
	assert.Len(t, added, 1)
}

func TestDeduplicator_SemanticKeyIgnoresReading(t *testing.T) {
	d := NewDeduplicator(time.Hour, SemanticKey)
	existing := []Alert{heatwaveAt(1, dedupBase)}
	candidates := GenerateAlerts(&WeatherSnapshot{Temperature: 35}, SoachaZones)

	merged, added := d.Reconcile(existing, candidates, dedupBase.Add(time.Minute))
	assert.Len(t, merged, 1)
	assert.Empty(t, added)
}

func TestDeduplicator_SuppressesWithinBatch(t *testing.T) {
	d := NewDeduplicator(time.Hour, MessageKey)
	c := heatwaveAt(0, time.Time{})

	merged, added := d.Reconcile(nil, []Alert{c, c}, dedupBase)
	assert.Len(t, merged, 1)
	require.Len(t, added, 1)
	assert.Equal(t, 1, added[0].ID)
}

func TestDeduplicator_AssignsMonotonicIDs(t *testing.T) {
	d := NewDeduplicator(time.Hour, MessageKey)
	existing := []Alert{heatwaveAt(7, dedupBase.Add(-48*time.Hour))}
	candidates := GenerateAlerts(&WeatherSnapshot{Temperature: 34, Precipitation: 20, Humidity: 90}, SoachaZones)

	merged, added := d.Reconcile(existing, candidates, dedupBase)
	require.Len(t, added, 3)
	assert.Equal(t, 8, added[0].ID)
	assert.Equal(t, 9, added[1].ID)
	assert.Equal(t, 10, added[2].ID)
	assert.Len(t, merged, 4)
}

func TestDeduplicator_DoesNotModifyExisting(t *testing.T) {
	d := NewDeduplicator(time.Hour, MessageKey)
	existing := make([]Alert, 1, 4)
	existing[0] = heatwaveAt(1, dedupBase.Add(-2*time.Hour))

	_, _ = d.Reconcile(existing, []Alert{heatwaveAt(0, time.Time{})}, dedupBase)
	assert.Len(t, existing, 1)
	assert.Equal(t, Alert{}, existing[:2][1], "backing array must not be written")
}

func TestDedupKeyByName(t *testing.T) {
	k, err := DedupKeyByName("")
	require.NoError(t, err)
	assert.Equal(t, "m", k(Alert{Message: "m"}))

	k, err = DedupKeyByName(DedupBySemantic)
	require.NoError(t, err)
	assert.Equal(t, "flood_risk|high|danubio,maria",
		k(Alert{Type: AlertFloodRisk, Severity: SeverityHigh, AffectedZones: []string{"maria", "danubio"}}))

	_, err = DedupKeyByName("bogus")
	assert.Error(t, err)
}
