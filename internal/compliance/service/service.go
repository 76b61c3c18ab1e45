// Package service runs compliance checks for the HTTP layer: ad-hoc, batched and
// against stored shipments. Every check is counted, traced and audited; a check
// whose audit event cannot be recorded is reported as failed.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"opsdesk/internal/compliance"
	"opsdesk/internal/compliance/metrics"
	"opsdesk/internal/records"
	"opsdesk/pkg/domain"
	dErrors "opsdesk/pkg/domain-errors"
	"opsdesk/pkg/platform/audit"
	"opsdesk/pkg/requestcontext"
)

const (
	// DefaultBatchConcurrency bounds the goroutines used by CheckBatch.
	DefaultBatchConcurrency = 8
	// MaxBatchSize is the largest batch accepted in one call.
	MaxBatchSize = 500

	adHocSubject = "shipment:adhoc"
)

// ShipmentGetter loads stored shipments for CheckStored.
type ShipmentGetter interface {
	GetShipment(ctx context.Context, id domain.ShipmentID) (*records.Shipment, error)
}

type Service struct {
	engine      atomic.Pointer[compliance.Engine]
	now         func() time.Time
	shipments   ShipmentGetter
	auditor     audit.Emitter
	metrics     *metrics.Metrics
	logger      *slog.Logger
	tracer      trace.Tracer
	concurrency int
}

type Option func(*Service)

func WithShipments(g ShipmentGetter) Option {
	return func(s *Service) {
		s.shipments = g
	}
}

func WithAuditEmitter(e audit.Emitter) Option {
	return func(s *Service) {
		s.auditor = e
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithBatchConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// New builds a service over an engine with the given watchlists.
func New(watchlists compliance.Watchlists, opts ...Option) *Service {
	s := &Service{
		now:         time.Now,
		logger:      slog.Default(),
		tracer:      otel.Tracer("opsdesk/compliance"),
		concurrency: DefaultBatchConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.SetWatchlists(watchlists)
	return s
}

// SetWatchlists swaps the engine. Checks already running finish on the old one.
func (s *Service) SetWatchlists(w compliance.Watchlists) {
	s.engine.Store(compliance.NewEngine(
		compliance.WithWatchlists(w),
		compliance.WithClock(s.now),
	))
}

// Engine returns the engine currently in force. Read models use it to
// evaluate shipments without emitting audit events.
func (s *Service) Engine() *compliance.Engine {
	return s.engine.Load()
}

// Watchlists returns the reference data currently in force.
func (s *Service) Watchlists() compliance.Watchlists {
	return s.engine.Load().Watchlists()
}

// Check evaluates an ad-hoc shipment.
func (s *Service) Check(ctx context.Context, shipment compliance.Shipment) (compliance.Result, error) {
	return s.run(ctx, adHocSubject, shipment)
}

// CheckBatch evaluates shipments concurrently. Results keep input order.
func (s *Service) CheckBatch(ctx context.Context, shipments []compliance.Shipment) ([]compliance.Result, error) {
	if len(shipments) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "shipments must not be empty")
	}
	if len(shipments) > MaxBatchSize {
		return nil, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("batch exceeds %d shipments", MaxBatchSize))
	}
	s.metrics.ObserveBatchSize(len(shipments))

	ctx, span := s.tracer.Start(ctx, "compliance.CheckBatch",
		trace.WithAttributes(attribute.Int("batch.size", len(shipments))))
	defer span.End()

	results := make([]compliance.Result, len(shipments))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, sh := range shipments {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := s.run(gctx, adHocSubject, sh)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "batch failed")
		if _, ok := dErrors.As(err); ok {
			return nil, err
		}
		return nil, dErrors.Wrap(err, dErrors.CodeTimeout, "batch check cancelled")
	}
	return results, nil
}

// CheckStored evaluates a persisted shipment.
func (s *Service) CheckStored(ctx context.Context, id domain.ShipmentID) (compliance.Result, error) {
	if s.shipments == nil {
		return compliance.Result{}, dErrors.New(dErrors.CodeUnavailable, "shipment store not configured")
	}
	sh, err := s.shipments.GetShipment(ctx, id)
	if err != nil {
		return compliance.Result{}, err
	}
	shipment, err := compliance.ToShipment(sh)
	if err != nil {
		return compliance.Result{}, err
	}
	return s.run(ctx, sh.Subject(), shipment)
}

func (s *Service) run(ctx context.Context, subject string, shipment compliance.Shipment) (compliance.Result, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "compliance.Check",
		trace.WithAttributes(attribute.String("compliance.subject", subject)))
	defer span.End()

	at := s.now()
	if pinned, ok := requestcontext.PinnedTime(ctx); ok {
		at = pinned
	}
	result := s.engine.Load().CheckAt(shipment, at)
	rules := ruleNames(result)
	span.SetAttributes(
		attribute.String("compliance.status", string(result.Status)),
		attribute.StringSlice("compliance.rules", rules),
	)

	if err := s.audit(ctx, subject, result, rules); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "audit failed")
		s.logger.ErrorContext(ctx, "compliance audit failed",
			"request_id", requestcontext.RequestID(ctx),
			"subject", subject,
			"error", err,
		)
		return compliance.Result{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record compliance check")
	}

	s.metrics.ObserveCheck(string(result.Status), rules, time.Since(start))
	s.logger.DebugContext(ctx, "compliance checked",
		"request_id", requestcontext.RequestID(ctx),
		"subject", subject,
		"status", result.Status,
		"rules", rules,
	)
	return result, nil
}

func (s *Service) audit(ctx context.Context, subject string, result compliance.Result, rules []string) error {
	if s.auditor == nil {
		return nil
	}
	actor := requestcontext.Operator(ctx)
	if actor == "" {
		actor = audit.ActorSystem
	}
	return s.auditor.Emit(ctx, audit.Event{
		Category:  audit.CategoryCompliance,
		Timestamp: result.CheckedAt,
		Subject:   subject,
		Action:    string(audit.EventComplianceChecked),
		Decision:  string(result.Status),
		Reason:    strings.Join(rules, ","),
		RequestID: requestcontext.RequestID(ctx),
		ActorID:   actor,
	})
}

func ruleNames(r compliance.Result) []string {
	ids := r.RuleIDs()
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}
