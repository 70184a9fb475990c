// Package kafka publishes newly merged incidents to a Kafka topic so
// downstream consumers (alerting, dashboards) see dataset growth without
// polling the store file. Publishing is feature-flagged; the ingestion
// pipeline works identically with a nil publisher.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/saferoute/route-risk/internal/config"
	"github.com/saferoute/route-risk/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Publisher produces incident messages to the configured topic.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the incident-updates topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, logger: logger}
}

// PublishBatch serializes and publishes incidents in a single
// WriteMessages call.
func (p *Publisher) PublishBatch(ctx context.Context, incidents []domain.Incident) error {
	if len(incidents) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(incidents))
	for i := range incidents {
		msg, err := serializeToMessage(incidents[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return err
	}
	p.logger.Debug("published incidents", "count", len(msgs), "topic", p.writer.Topic)
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals an incident into a Kafka message keyed by
// location so per-place consumers read in order.
func serializeToMessage(incident domain.Incident) (kafkago.Message, error) {
	data, err := json.Marshal(incident)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize incident: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(incident.Location),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "kind", Value: []byte(incident.Kind)},
			{Key: "occurred_at", Value: []byte(incident.Time.Format(time.RFC3339))},
		},
	}, nil
}
