package messaging

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaConfig configures the Kafka-backed Messaging implementation.
type KafkaConfig struct {
	// Brokers is the list of bootstrap broker addresses.
	Brokers []string
	// BatchTimeout bounds how long the writer buffers before flushing.
	BatchTimeout time.Duration
	// RequiredAcks controls write durability (-1 all, 1 leader, 0 none).
	RequiredAcks int
	// AllowAutoTopicCreation lets the broker create missing topics.
	AllowAutoTopicCreation bool
}

// Kafka implements Messaging on top of segmentio/kafka-go.
type Kafka struct {
	writer *kafka.Writer
}

// NewKafka creates a Kafka publisher from the given config.
func NewKafka(cfg KafkaConfig) (*Kafka, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("messaging: kafka requires at least one broker")
	}

	batchTimeout := cfg.BatchTimeout
	if batchTimeout <= 0 {
		batchTimeout = 100 * time.Millisecond
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{},
		BatchTimeout:           batchTimeout,
		RequiredAcks:           kafka.RequiredAcks(cfg.RequiredAcks),
		AllowAutoTopicCreation: cfg.AllowAutoTopicCreation,
	}

	return &Kafka{writer: writer}, nil
}

// Publish writes one message to the topic.
func (k *Kafka) Publish(ctx context.Context, destination string, msg OutgoingMessage) error {
	if strings.TrimSpace(destination) == "" {
		return errors.New("messaging: destination is required")
	}

	headers := make([]kafka.Header, 0, len(msg.Headers))
	for _, h := range msg.Headers {
		headers = append(headers, kafka.Header{Key: h.Key, Value: h.Value})
	}

	return k.writer.WriteMessages(ctx, kafka.Message{
		Topic:   destination,
		Key:     msg.Key,
		Value:   msg.Body,
		Headers: headers,
	})
}

// Close flushes and closes the underlying writer.
func (k *Kafka) Close() error {
	return k.writer.Close()
}
