package outbox

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/md-rashed-zaman/staybook/libs/kafkax"
	otelx "github.com/md-rashed-zaman/staybook/libs/otel"
	"github.com/md-rashed-zaman/staybook/services/hotel-service/internal/metrics"
	"github.com/segmentio/kafka-go"
)

// MessageWriter is the part of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// TxRunner runs fn in a database transaction.
type TxRunner interface {
	InTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

type Publisher struct {
	db        TxRunner
	repo      *Repository
	logger    *slog.Logger
	brokers   []string
	pollEvery time.Duration
	batchSize int
	newWriter func([]string) MessageWriter
}

type PublisherConfig struct {
	Brokers   string
	PollEvery time.Duration
	BatchSize int
}

func NewPublisher(db TxRunner, repo *Repository, logger *slog.Logger, cfg PublisherConfig) *Publisher {
	if cfg.PollEvery <= 0 {
		cfg.PollEvery = 2 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	return &Publisher{
		db:        db,
		repo:      repo,
		logger:    logger,
		brokers:   kafkax.SplitBrokers(cfg.Brokers),
		pollEvery: cfg.PollEvery,
		batchSize: cfg.BatchSize,
		newWriter: func(brokers []string) MessageWriter { return kafkax.NewWriter(brokers) },
	}
}

// Run drains the outbox until ctx is cancelled.
func (p *Publisher) Run(ctx context.Context) {
	if len(p.brokers) == 0 {
		p.logger.Warn("outbox publisher disabled (no kafka brokers configured)")
		return
	}

	writer := p.newWriter(p.brokers)
	defer writer.Close()

	ticker := time.NewTicker(p.pollEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := p.publishBatch(ctx, writer)
			if err != nil {
				metrics.OutboxPublishFailures.Inc()
				p.logger.Error("outbox publish failed", "err", err)
				continue
			}
			if n > 0 {
				metrics.OutboxPublished.Add(float64(n))
				p.logger.Debug("outbox batch published", "count", n)
			}
		}
	}
}

func (p *Publisher) publishBatch(ctx context.Context, writer MessageWriter) (int, error) {
	var published int
	err := p.db.InTx(ctx, func(tx pgx.Tx) error {
		records, err := p.repo.FetchUnpublished(ctx, tx, p.batchSize)
		if err != nil || len(records) == 0 {
			return err
		}

		msgs := make([]kafka.Message, 0, len(records))
		ids := make([]int64, 0, len(records))
		for _, r := range records {
			msgs = append(msgs, toMessage(ctx, r))
			ids = append(ids, r.ID)
		}
		if err := writer.WriteMessages(ctx, msgs...); err != nil {
			return err
		}
		if err := p.repo.MarkPublished(ctx, tx, ids); err != nil {
			return err
		}
		published = len(records)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return published, nil
}

func toMessage(ctx context.Context, r Record) kafka.Message {
	msgCtx := otelx.StoredTrace{Traceparent: r.Traceparent, Tracestate: r.Tracestate}.Resume(ctx)
	meta := kafkax.EventMeta{EventID: r.EventID, EventType: r.EventType, AggregateID: r.AggregateID}
	return kafka.Message{
		Topic:   r.EventType,
		Key:     []byte(r.AggregateID),
		Value:   r.Payload,
		Headers: kafkax.InjectTraceHeaders(msgCtx, meta.Headers()),
	}
}
