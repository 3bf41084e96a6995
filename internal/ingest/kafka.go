package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/bizlink/digest-engine/internal/domain"
	"github.com/bizlink/digest-engine/internal/repository"
)

// Config holds the Kafka reader settings. Zero values fall back to the
// defaults noted per field.
type Config struct {
	Brokers        []string
	Topic          string
	GroupID        string
	MinBytes       int           // default 1KB
	MaxBytes       int           // default 10MB
	CommitInterval time.Duration // default 1s
	MaxWait        time.Duration // default 50ms
}

// Consumer reads producer events from a Kafka topic and appends them to
// the event queue store. It is the streaming counterpart of the HTTP
// ingestion endpoint and applies the same validation.
type Consumer struct {
	reader   *kafka.Reader
	events   repository.EventRepository
	onIngest func()
	logger   *zap.Logger
}

// NewConsumer constructs the consumer. onIngest is an optional metrics
// callback fired per accepted event (nil = no-op).
func NewConsumer(cfg Config, events repository.EventRepository, onIngest func(), logger *zap.Logger) *Consumer {
	min := cfg.MinBytes
	if min <= 0 {
		min = 1 << 10
	}
	max := cfg.MaxBytes
	if max <= 0 {
		max = 10 << 20
	}
	ci := cfg.CommitInterval
	if ci <= 0 {
		ci = time.Second
	}
	mw := cfg.MaxWait
	if mw <= 0 {
		mw = 50 * time.Millisecond
	}
	if onIngest == nil {
		onIngest = func() {}
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		GroupID:        cfg.GroupID,
		Topic:          cfg.Topic,
		MinBytes:       min,
		MaxBytes:       max,
		CommitInterval: ci,
		MaxWait:        mw,
	})

	return &Consumer{reader: reader, events: events, onIngest: onIngest, logger: logger}
}

// Run consumes until ctx is cancelled.
//
// Malformed or unknown-kind messages are committed and dropped with a log
// line: they would fail identically forever, so leaving them uncommitted
// would wedge the partition. Store write errors are not committed; the
// message is redelivered once the store recovers.
func (c *Consumer) Run(ctx context.Context) {
	c.logger.Info("kafka ingestor started", zap.String("topic", c.reader.Config().Topic))
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				c.logger.Info("kafka ingestor stopping")
				return
			}
			c.logger.Error("kafka fetch failed", zap.Error(err))
			continue
		}

		if ok := c.ingest(ctx, msg.Value); !ok {
			continue // not committed, will be redelivered
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.logger.Error("kafka commit failed", zap.Error(err))
		}
	}
}

// ingest validates and stores one message. Returns false only for
// transient store failures that should block the commit.
func (c *Consumer) ingest(ctx context.Context, value []byte) bool {
	var req domain.IngestRequest
	if err := json.Unmarshal(value, &req); err != nil {
		c.logger.Warn("dropping malformed kafka message", zap.Error(err))
		return true
	}
	if err := req.Validate(); err != nil {
		c.logger.Warn("dropping invalid kafka event",
			zap.String("kind", string(req.Kind)),
			zap.Error(err),
		)
		return true
	}

	e := &domain.QueuedEvent{
		ID:        uuid.New().String(),
		Kind:      req.Kind,
		BatchKey:  req.BatchKey,
		Payload:   req.Payload,
		CreatedAt: time.Now().UTC(),
	}
	if err := c.events.Insert(ctx, e); err != nil {
		c.logger.Error("kafka event insert failed", zap.Error(err))
		return false
	}

	c.onIngest()
	return true
}

func (c *Consumer) Close() error { return c.reader.Close() }
