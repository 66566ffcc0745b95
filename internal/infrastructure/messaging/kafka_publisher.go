package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/bibbank/scoring-service/pkg/events"
	"github.com/bibbank/scoring-service/pkg/kafka"
)

// KafkaPublisher implements port.EventPublisher using Kafka.
type KafkaPublisher struct {
	producer kafka.Publisher
	topic    string
	logger   *slog.Logger
}

// NewKafkaPublisher creates a new Kafka event publisher.
func NewKafkaPublisher(producer kafka.Publisher, topic string, logger *slog.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		producer: producer,
		topic:    topic,
		logger:   logger,
	}
}

// Publish sends domain events to Kafka in one batch, keyed by aggregate ID.
func (p *KafkaPublisher) Publish(ctx context.Context, evts ...events.DomainEvent) error {
	if len(evts) == 0 {
		return nil
	}

	messages := make([]kafka.Message, 0, len(evts))
	for _, evt := range evts {
		envelope, err := events.Seal(evt)
		if err != nil {
			return err
		}
		payload, err := json.Marshal(envelope)
		if err != nil {
			return fmt.Errorf("failed to marshal event %s: %w", envelope.EventType, err)
		}

		p.logger.Info("publishing event",
			slog.String("event_type", envelope.EventType),
			slog.String("aggregate_id", envelope.AggregateID.String()),
			slog.String("topic", p.topic),
			slog.Int("payload_size", len(payload)),
		)

		messages = append(messages, kafka.Message{
			Key:     []byte(envelope.AggregateID.String()),
			Value:   payload,
			Headers: envelope.Headers(),
		})
	}

	if err := p.producer.Publish(ctx, p.topic, messages...); err != nil {
		return fmt.Errorf("failed to publish %d events to %s: %w", len(messages), p.topic, err)
	}
	return nil
}
