package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/soacha-risk-dashboard/internal/config"
	"github.com/couchcryptid/soacha-risk-dashboard/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// AlertWriter publishes persisted alerts to a Kafka topic so downstream
// notifiers (SMS, radio bulletins) can fan them out.
// It implements alerting.AlertPublisher.
type AlertWriter struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewAlertWriter creates a Kafka producer for the configured alert topic.
func NewAlertWriter(cfg *config.Config, logger *slog.Logger) *AlertWriter {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaAlertTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &AlertWriter{writer: w, logger: logger}
}

// PublishAlerts serializes and publishes alerts in a single WriteMessages call.
func (w *AlertWriter) PublishAlerts(ctx context.Context, alerts []domain.Alert) error {
	if len(alerts) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(alerts))
	for i := range alerts {
		msg, err := serializeToMessage(alerts[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write alerts: %w", err)
	}
	w.logger.Debug("alerts published", "count", len(alerts), "topic", w.writer.Topic)
	return nil
}

func (w *AlertWriter) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals an Alert into a Kafka message keyed by alert id.
func serializeToMessage(alert domain.Alert) (kafkago.Message, error) {
	data, err := json.Marshal(alert)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize alert: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(strconv.Itoa(alert.ID)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "alert_type", Value: []byte(alert.Type)},
			{Key: "severity", Value: []byte(alert.Severity)},
			{Key: "issued_at", Value: []byte(alert.Timestamp.UTC().Format(time.RFC3339))},
		},
	}, nil
}
