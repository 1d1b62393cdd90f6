// Package collector batches summarize events before they reach Kafka. It is
// the high-throughput alternative to analytics.Collector, which publishes
// one message per event.
package collector

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/kauebrandao/textsummarizer/internal/analytics"
	"github.com/kauebrandao/textsummarizer/pkg/kafka"
)

// BatchPublisher writes several events in one call. *kafka.Producer
// implements it.
type BatchPublisher interface {
	PublishBatch(ctx context.Context, events []kafka.Event) error
}

// BatchCollector queues events on a channel drained by a single loop. The
// loop publishes when batchSize events are pending, on every flushInterval
// tick and on shutdown. After a failed publish it waits for the next tick
// instead of retrying per event, and keeps at most three batches pending,
// dropping the oldest.
type BatchCollector struct {
	publisher     BatchPublisher
	batchSize     int
	maxPending    int
	flushInterval time.Duration

	events   chan analytics.SummarizeEvent
	flushReq chan chan error
	done     chan struct{}
	started  atomic.Bool

	// pending and failing belong to the loop goroutine.
	pending  []kafka.Event
	failing  bool
	nPending atomic.Int64

	onDrop func(n int)
	logger *slog.Logger
}

func NewBatchCollector(publisher BatchPublisher, batchSize int, flushInterval time.Duration) *BatchCollector {
	if batchSize <= 0 {
		batchSize = 100
	}
	if flushInterval <= 0 {
		flushInterval = 5 * time.Second
	}
	return &BatchCollector{
		publisher:     publisher,
		batchSize:     batchSize,
		maxPending:    batchSize * 3,
		flushInterval: flushInterval,
		events:        make(chan analytics.SummarizeEvent, batchSize*4),
		flushReq:      make(chan chan error),
		done:          make(chan struct{}),
		logger:        slog.Default().With("component", "batch-collector"),
	}
}

// OnDrop registers a callback receiving the number of dropped events. It
// must be safe for concurrent use.
func (bc *BatchCollector) OnDrop(fn func(n int)) { bc.onDrop = fn }

// Start runs the loop until ctx is cancelled, then publishes what is left.
func (bc *BatchCollector) Start(ctx context.Context) {
	bc.started.Store(true)
	go bc.run(ctx)
	bc.logger.Info("batch collector started",
		"batch_size", bc.batchSize,
		"flush_interval", bc.flushInterval,
	)
}

// Track queues an event without blocking. Events arriving while the queue
// is full are dropped.
func (bc *BatchCollector) Track(event analytics.SummarizeEvent) {
	select {
	case bc.events <- event:
	default:
		bc.drop(1)
	}
}

// Flush asks the loop to publish everything queued so far and returns the
// publish error, if any.
func (bc *BatchCollector) Flush(ctx context.Context) error {
	ack := make(chan error, 1)
	select {
	case bc.flushReq <- ack:
	case <-bc.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-ack:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close waits for the loop's final publish.
func (bc *BatchCollector) Close() {
	if bc.started.Load() {
		<-bc.done
	}
}

// BufferLen returns the number of queued and pending events.
func (bc *BatchCollector) BufferLen() int {
	return len(bc.events) + int(bc.nPending.Load())
}

func (bc *BatchCollector) run(ctx context.Context) {
	defer close(bc.done)
	ticker := time.NewTicker(bc.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case ev := <-bc.events:
			bc.add(ev)
			if !bc.failing && len(bc.pending) >= bc.batchSize {
				bc.publish(ctx)
			}
		case ack := <-bc.flushReq:
			bc.drain()
			ack <- bc.publish(ctx)
		case <-ticker.C:
			bc.publish(ctx)
		case <-ctx.Done():
			bc.drain()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			bc.publish(shutdownCtx)
			cancel()
			return
		}
	}
}

func (bc *BatchCollector) add(ev analytics.SummarizeEvent) {
	bc.pending = append(bc.pending, kafka.Event{Key: ev.RequestID, Type: string(ev.Type), Value: ev})
	if over := len(bc.pending) - bc.maxPending; over > 0 {
		bc.pending = append([]kafka.Event(nil), bc.pending[over:]...)
		bc.logger.Warn("pending events over limit, oldest dropped", "dropped", over)
		bc.drop(over)
	}
	bc.nPending.Store(int64(len(bc.pending)))
}

func (bc *BatchCollector) drain() {
	for {
		select {
		case ev := <-bc.events:
			bc.add(ev)
		default:
			return
		}
	}
}

func (bc *BatchCollector) publish(ctx context.Context) error {
	if len(bc.pending) == 0 {
		bc.failing = false
		return nil
	}
	batch := bc.pending
	if err := bc.publisher.PublishBatch(ctx, batch); err != nil {
		bc.failing = true
		bc.logger.Error("batch publish failed", "events", len(batch), "error", err)
		return err
	}
	bc.pending = make([]kafka.Event, 0, bc.batchSize)
	bc.nPending.Store(0)
	bc.failing = false
	bc.logger.Debug("batch published", "events", len(batch))
	return nil
}

func (bc *BatchCollector) drop(n int) {
	if bc.onDrop != nil {
		bc.onDrop(n)
	}
}
