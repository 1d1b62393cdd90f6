// Package kafka carries analytics events between the summarizer and the
// analytics service over segmentio/kafka-go, JSON-encoded in both directions.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/kauebrandao/textsummarizer/pkg/config"
	"github.com/segmentio/kafka-go"
)

// ErrSkip marks a message that can never be processed, such as a payload
// that does not decode. The consumer commits it and moves on instead of
// leaving it for redelivery.
var ErrSkip = errors.New("skip message")

type MessageHandler func(ctx context.Context, key []byte, value []byte) error

// JSONHandler decodes each message value into T before calling fn.
// Undecodable values are reported as ErrSkip.
func JSONHandler[T any](fn func(ctx context.Context, key string, v T) error) MessageHandler {
	return func(ctx context.Context, key []byte, value []byte) error {
		v, err := DecodeJSON[T](value)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrSkip, err)
		}
		return fn(ctx, string(key), v)
	}
}

func DecodeJSON[T any](value []byte) (T, error) {
	var result T
	if err := json.Unmarshal(value, &result); err != nil {
		return result, fmt.Errorf("decoding kafka message: %w", err)
	}
	return result, nil
}

// ConsumerStats counts messages by outcome since the consumer started.
type ConsumerStats struct {
	Processed int64 `json:"processed"`
	Skipped   int64 `json:"skipped"`
	Failed    int64 `json:"failed"`
	Lag       int64 `json:"lag"`
}

type Consumer struct {
	reader  *kafka.Reader
	brokers []string
	handler MessageHandler
	logger  *slog.Logger

	processed atomic.Int64
	skipped   atomic.Int64
	failed    atomic.Int64
}

// NewConsumer joins cfg.ConsumerGroup on topic, starting from the newest
// offset when the group has none committed.
func NewConsumer(cfg config.KafkaConfig, topic string, handler MessageHandler) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:     cfg.Brokers,
			Topic:       topic,
			GroupID:     cfg.ConsumerGroup,
			MinBytes:    1,
			MaxBytes:    1 << 20,
			StartOffset: kafka.LastOffset,
		}),
		brokers: cfg.Brokers,
		handler: handler,
		logger:  slog.Default().With("component", "kafka-consumer", "topic", topic),
	}
}

// Start consumes until ctx is cancelled. Messages are committed after the
// handler succeeds or returns ErrSkip; other handler errors leave the
// message uncommitted.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("consumer started")
	defer c.reader.Close()

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("consumer stopping", "reason", ctx.Err())
				return nil
			}
			c.logger.Error("failed to fetch message", "error", err)
			continue
		}

		log := c.logger.With("partition", msg.Partition, "offset", msg.Offset)
		err = c.handler(ctx, msg.Key, msg.Value)
		switch {
		case err == nil:
			c.processed.Add(1)
		case errors.Is(err, ErrSkip):
			c.skipped.Add(1)
			log.Warn("skipping message", "error", err, "value_size", len(msg.Value))
		default:
			c.failed.Add(1)
			log.Error("failed to process message", "error", err)
			continue
		}
		if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			log.Error("failed to commit message", "error", err)
		}
	}
}

func (c *Consumer) Stats() ConsumerStats {
	return ConsumerStats{
		Processed: c.processed.Load(),
		Skipped:   c.skipped.Load(),
		Failed:    c.failed.Load(),
		Lag:       c.reader.Stats().Lag,
	}
}

// Ping dials a broker to verify connectivity.
func (c *Consumer) Ping(ctx context.Context) error {
	return dialAny(ctx, c.brokers)
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
