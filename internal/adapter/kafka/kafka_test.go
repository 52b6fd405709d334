package kafka

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/soacha-risk-dashboard/internal/config"
	"github.com/couchcryptid/soacha-risk-dashboard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2024, 4, 26, 15, 10, 0, 0, time.UTC)
	alert := domain.Alert{
		ID:            12,
		Type:          domain.AlertFloodRisk,
		Severity:      domain.SeverityHigh,
		Message:       "Alerta: Riesgo de inundación - Precipitación: 18.0mm. Comunidades en El Danubio y La María en riesgo.",
		AffectedZones: []string{"danubio", "maria"},
		Timestamp:     domain.NewTimestamp(now),
	}

	msg, err := serializeToMessage(alert)
	require.NoError(t, err)

	assert.Equal(t, []byte("12"), msg.Key)
	require.Len(t, msg.Headers, 3)
	assert.Equal(t, "alert_type", msg.Headers[0].Key)
	assert.Equal(t, []byte("flood_risk"), msg.Headers[0].Value)
	assert.Equal(t, "severity", msg.Headers[1].Key)
	assert.Equal(t, []byte("high"), msg.Headers[1].Value)
	assert.Equal(t, "issued_at", msg.Headers[2].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[2].Value)

	var decoded domain.Alert
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, alert.Message, decoded.Message)
	assert.Equal(t, alert.AffectedZones, decoded.AffectedZones)
}

func TestPublishAlerts_EmptyIsNoop(t *testing.T) {
	cfg := &config.Config{KafkaBrokers: []string{"localhost:1"}, KafkaAlertTopic: "alerts"}
	w := NewAlertWriter(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer w.Close()

	assert.NoError(t, w.PublishAlerts(context.Background(), nil))
}
