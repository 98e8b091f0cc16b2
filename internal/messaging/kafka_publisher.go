package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/cypherlabdev/sharp-lines-service/internal/metrics"
	"github.com/cypherlabdev/sharp-lines-service/internal/models"
)

//go:generate mockgen -destination=../mocks/mock_writer.go -package=mocks github.com/cypherlabdev/sharp-lines-service/internal/messaging Writer

// Writer is the subset of kafka.Writer used by the publisher
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaAlertPublisher publishes sharp alerts detected during ingestion
type KafkaAlertPublisher struct {
	writer Writer
	topic  string
	logger zerolog.Logger
}

// KafkaPublisherConfig holds Kafka publisher configuration
type KafkaPublisherConfig struct {
	Brokers      []string      // e.g., ["localhost:9092"]
	Topic        string        // e.g., "sharp_alerts"
	WriteTimeout time.Duration // e.g., 10 * time.Second
}

// NewKafkaAlertPublisher creates a new Kafka alert publisher
func NewKafkaAlertPublisher(config KafkaPublisherConfig, logger zerolog.Logger) *KafkaAlertPublisher {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(config.Brokers...),
		Topic:                  config.Topic,
		Balancer:               &kafka.Hash{}, // same category, same partition
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           50 * time.Millisecond,
		WriteTimeout:           config.WriteTimeout,
		AllowAutoTopicCreation: true,
	}

	return NewKafkaAlertPublisherWithWriter(writer, config.Topic, logger)
}

// NewKafkaAlertPublisherWithWriter creates a publisher on an existing writer
func NewKafkaAlertPublisherWithWriter(writer Writer, topic string, logger zerolog.Logger) *KafkaAlertPublisher {
	return &KafkaAlertPublisher{
		writer: writer,
		topic:  topic,
		logger: logger.With().Str("component", "kafka_publisher").Logger(),
	}
}

// PublishAlerts writes one message holding every alert of a category's run.
// Messages are keyed by category.
func (p *KafkaAlertPublisher) PublishAlerts(ctx context.Context, batch *models.AlertBatchMessage) error {
	if batch == nil || len(batch.Alerts) == 0 {
		return nil
	}

	data, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("failed to marshal alerts: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(batch.Category),
		Value: data,
		Headers: []kafka.Header{
			{Key: "message_id", Value: []byte(batch.MessageID.String())},
			{Key: "run_id", Value: []byte(batch.RunID.String())},
			{Key: "label", Value: []byte(batch.Label)},
		},
		Time: batch.Timestamp,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write alerts to Kafka: %w", err)
	}
	metrics.AlertsPublished.WithLabelValues(batch.Category).Add(float64(len(batch.Alerts)))

	p.logger.Info().
		Str("topic", p.topic).
		Str("category", batch.Category).
		Str("label", batch.Label).
		Str("message_id", batch.MessageID.String()).
		Int("count", len(batch.Alerts)).
		Msg("published sharp alerts")

	return nil
}

// Close flushes and closes the Kafka writer
func (p *KafkaAlertPublisher) Close() error {
	return p.writer.Close()
}
