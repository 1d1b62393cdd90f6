package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/kauebrandao/textsummarizer/pkg/config"
	"github.com/segmentio/kafka-go"
)

// Event is one JSON message. Key picks the partition (the request ID for
// summarize events); Type, when set, travels as the "event-type" header so
// consumers can route without decoding the value.
type Event struct {
	Key   string
	Type  string
	Value any
}

func (e Event) message() (kafka.Message, error) {
	value, err := json.Marshal(e.Value)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshaling event %q: %w", e.Key, err)
	}
	msg := kafka.Message{Key: []byte(e.Key), Value: value}
	if e.Type != "" {
		msg.Headers = []kafka.Header{{Key: "event-type", Value: []byte(e.Type)}}
	}
	return msg, nil
}

type Producer struct {
	writer  *kafka.Writer
	brokers []string
	logger  *slog.Logger
}

// NewProducer writes synchronously with leader acknowledgement, hashing keys
// so one request's events keep their order.
func NewProducer(cfg config.KafkaConfig, topic string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(cfg.Brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			BatchSize:              100,
			BatchTimeout:           10 * time.Millisecond,
			MaxAttempts:            3,
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
		},
		brokers: cfg.Brokers,
		logger:  slog.Default().With("component", "kafka-producer", "topic", topic),
	}
}

func (p *Producer) Publish(ctx context.Context, event Event) error {
	return p.PublishBatch(ctx, []Event{event})
}

// PublishBatch writes all events in one call. Nothing is written when any
// event fails to encode.
func (p *Producer) PublishBatch(ctx context.Context, events []Event) error {
	if len(events) == 0 {
		return nil
	}
	msgs := make([]kafka.Message, len(events))
	for i, e := range events {
		m, err := e.message()
		if err != nil {
			return err
		}
		msgs[i] = m
	}

	start := time.Now()
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		p.logger.Error("failed to publish events", "count", len(msgs), "error", err)
		return fmt.Errorf("publishing %d events to kafka: %w", len(msgs), err)
	}
	p.logger.Debug("events published", "count", len(msgs), "latency_ms", time.Since(start).Milliseconds())
	return nil
}

// Ping dials the first reachable broker.
func (p *Producer) Ping(ctx context.Context) error {
	return dialAny(ctx, p.brokers)
}

func dialAny(ctx context.Context, brokers []string) error {
	if len(brokers) == 0 {
		return fmt.Errorf("dialing kafka: no brokers configured")
	}
	var lastErr error
	for _, b := range brokers {
		conn, err := kafka.DialContext(ctx, "tcp", b)
		if err == nil {
			return conn.Close()
		}
		lastErr = err
	}
	return fmt.Errorf("dialing kafka: %w", lastErr)
}

// Close flushes pending writes.
func (p *Producer) Close() error {
	return p.writer.Close()
}
