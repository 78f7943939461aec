// Package kafka publishes audit events to a Kafka topic. The broker is the
// durable source of truth for the audit trail; the portal only produces.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"

	"offsite/internal/audit"
	"offsite/internal/platform/config"
)

// Publisher is a fire-and-forget Kafka producer for audit events.
type Publisher struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// New connects a producer to the configured brokers.
func New(cfg config.KafkaConfig, logger *slog.Logger) (*Publisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.DefaultProduceTopic(cfg.Topic),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &Publisher{client: client, topic: cfg.Topic, logger: logger}, nil
}

// Publish produces one event keyed by session id so a session's trail stays
// ordered within a partition. Delivery errors are logged, not returned: audit
// publishing must never fail the user action that produced the event.
func (p *Publisher) Publish(ctx context.Context, event audit.Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode audit event: %w", err)
	}
	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(event.SessionID),
		Value: value,
	}
	p.client.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil {
			p.logger.Error("audit event delivery failed",
				"event_id", event.ID,
				"type", string(event.Type),
				"error", err.Error(),
			)
		}
	})
	return nil
}

// Close flushes pending records and releases the client.
func (p *Publisher) Close() {
	p.client.Close()
}
