package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

const writeTimeout = 10 * time.Second

// messageWriter is the subset of *kafka.Writer the producer uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// keyer is implemented by events that want a partition key.
type keyer interface {
	EventKey() string
}

// Producer publishes events to Kafka, one topic per subject.
type Producer struct {
	writer messageWriter
	logger *slog.Logger
}

// NewProducer creates a producer for brokers. Topics are taken from the
// subject passed to Publish.
func NewProducer(brokers []string, logger *slog.Logger) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Balancer:               &kafka.LeastBytes{},
			AllowAutoTopicCreation: true,
		},
		logger: logger,
	}
}

// Publish sends data as JSON to the topic named subject.
func (p *Producer) Publish(subject string, data any) error {
	value, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	msg := kafka.Message{Topic: subject, Value: value}
	if k, ok := data.(keyer); ok {
		msg.Key = []byte(k.EventKey())
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write to %s: %w", subject, err)
	}

	p.logger.Debug("sent event to kafka", "topic", subject, "key", string(msg.Key))
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
