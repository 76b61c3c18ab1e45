// Package outbox relays persisted audit events from the PostgreSQL outbox
// table to Kafka.
package outbox

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"opsdesk/pkg/platform/circuit"
)

// Entry is one pending outbox row.
type Entry struct {
	ID        uuid.UUID
	Key       string
	EventType string
	Payload   []byte
	CreatedAt time.Time
}

// Source yields pending entries and records successful publishes. WithinTx
// must run fn in a transaction so fetched rows stay locked until marked.
type Source interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
	FetchUnpublished(ctx context.Context, limit int) ([]Entry, error)
	MarkPublished(ctx context.Context, ids []uuid.UUID) error
}

// Producer is the subset of *kgo.Client the relay needs.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// Relay polls the outbox and publishes batches to a topic.
type Relay struct {
	source    Source
	producer  Producer
	topic     string
	breaker   *circuit.Breaker
	metrics   *Metrics
	logger    *slog.Logger
	interval  time.Duration
	batchSize int
}

type Option func(*Relay)

func WithInterval(d time.Duration) Option {
	return func(r *Relay) {
		if d > 0 {
			r.interval = d
		}
	}
}

func WithBatchSize(n int) Option {
	return func(r *Relay) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(r *Relay) { r.metrics = m }
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(r *Relay) {
		if b != nil {
			r.breaker = b
		}
	}
}

func NewRelay(source Source, producer Producer, topic string, logger *slog.Logger, opts ...Option) *Relay {
	r := &Relay{
		source:   source,
		producer: producer,
		topic:    topic,
		logger:   logger,
		breaker: circuit.New("audit-kafka",
			circuit.WithFailureThreshold(3),
			circuit.WithSuccessThreshold(1),
			circuit.WithCooldown(10*time.Second),
		),
		interval:  2 * time.Second,
		batchSize: 100,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run polls until ctx is cancelled. While the breaker is open polls are skipped
// until its cooldown allows a probe; rows stay in the outbox and are retried.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := r.RelayOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
				r.logger.WarnContext(ctx, "outbox relay failed",
					"error", err,
					"breaker", r.breaker.State().String(),
				)
			}
		}
	}
}

// RelayOnce publishes one batch and returns how many entries were published.
func (r *Relay) RelayOnce(ctx context.Context) (int, error) {
	if !r.breaker.Allow() {
		return 0, nil
	}
	published := 0
	err := r.source.WithinTx(ctx, func(ctx context.Context) error {
		entries, err := r.source.FetchUnpublished(ctx, r.batchSize)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}

		records := make([]*kgo.Record, len(entries))
		for i, e := range entries {
			records[i] = &kgo.Record{
				Topic: r.topic,
				Key:   []byte(e.Key),
				Value: e.Payload,
				Headers: []kgo.RecordHeader{
					{Key: "event_type", Value: []byte(e.EventType)},
				},
			}
		}

		if err := r.producer.ProduceSync(ctx, records...).FirstErr(); err != nil {
			if r.breaker.RecordFailure().Opened {
				r.logger.ErrorContext(ctx, "audit relay circuit opened", "topic", r.topic)
			}
			r.metrics.IncFailures()
			r.metrics.SetBreakerState(r.breaker.IsOpen())
			return fmt.Errorf("produce audit batch: %w", err)
		}
		if r.breaker.RecordSuccess().Closed {
			r.logger.InfoContext(ctx, "audit relay circuit closed", "topic", r.topic)
		}
		r.metrics.SetBreakerState(r.breaker.IsOpen())

		ids := make([]uuid.UUID, len(entries))
		for i, e := range entries {
			ids[i] = e.ID
		}
		if err := r.source.MarkPublished(ctx, ids); err != nil {
			return err
		}
		published = len(entries)
		r.metrics.AddPublished(published)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return published, nil
}

// TopicCreator is the subset of *kadm.Client used for bootstrap.
type TopicCreator interface {
	CreateTopics(ctx context.Context, partitions int32, replicationFactor int16, configs map[string]*string, topics ...string) (kadm.CreateTopicResponses, error)
}

// EnsureTopic creates the audit topic if it does not exist yet.
func EnsureTopic(ctx context.Context, admin TopicCreator, topic string, partitions int32, replication int16) error {
	resp, err := admin.CreateTopics(ctx, partitions, replication, nil, topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", topic, err)
	}
	for _, r := range resp {
		if r.Err != nil && !errors.Is(r.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", r.Topic, r.Err)
		}
	}
	return nil
}
