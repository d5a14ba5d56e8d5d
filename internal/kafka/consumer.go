package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// messageReader is the subset of *kafka.Reader the consumer uses.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer feeds messages from one topic to a handler with the same shape
// as a NATS subscription callback.
type Consumer struct {
	reader messageReader
	topic  string
	logger *slog.Logger
}

// NewConsumer joins a consumer group private to this instance, named
// groupPrefix plus a random suffix. Sessions live in one instance's memory,
// so every instance has to see every message; a shared group would hand each
// partition to a single member.
func NewConsumer(brokers []string, groupPrefix, topic string, logger *slog.Logger) *Consumer {
	cfg := readerConfig(brokers, instanceGroupID(groupPrefix), topic)
	logger.Info("kafka consumer group", "group_id", cfg.GroupID, "topic", topic)
	return &Consumer{
		reader: kafka.NewReader(cfg),
		topic:  topic,
		logger: logger,
	}
}

func instanceGroupID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

// readerConfig starts new groups at the newest offset: a fresh instance has
// no sessions that older transcripts could belong to.
func readerConfig(brokers []string, groupID, topic string) kafka.ReaderConfig {
	return kafka.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		Topic:       topic,
		StartOffset: kafka.LastOffset,
		MinBytes:    1,
		MaxBytes:    10e6,
	}
}

// Run delivers messages until ctx is cancelled. Each message is committed
// after the handler returns.
func (c *Consumer) Run(ctx context.Context, handler func(subject string, data []byte)) error {
	c.logger.Info("kafka consumer started", "topic", c.topic)
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return fmt.Errorf("fetch from %s: %w", c.topic, err)
		}

		handler(msg.Topic, msg.Value)

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Warn("kafka commit failed", "topic", c.topic, "offset", msg.Offset, "error", err)
		}
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
