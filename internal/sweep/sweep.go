// Package sweep periodically re-evaluates every record so notification gauges
// stay current and each pass leaves an audit trail.
package sweep

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	dashsvc "opsdesk/internal/dashboard/service"
	"opsdesk/internal/heuristics"
	"opsdesk/pkg/platform/audit"
	"opsdesk/pkg/requestcontext"
)

// DefaultSchedule runs the sweep every fifteen minutes.
const DefaultSchedule = "*/15 * * * *"

const sweepSubject = "sweep:sla"

// Evaluator derives notifications and refreshes the active gauges.
type Evaluator interface {
	Evaluate(ctx context.Context) (dashsvc.Evaluation, error)
	RecordActive(ctx context.Context, ev dashsvc.Evaluation) (map[string]int, error)
}

// Report summarises one sweep.
type Report struct {
	At            time.Time
	Notifications int
	// Unacknowledged notifications by severity
	Active   map[string]int
	Duration time.Duration
}

type Sweeper struct {
	evaluator Evaluator
	schedule  string
	auditor   audit.Emitter
	metrics   *Metrics
	logger    *slog.Logger
	now       func() time.Time

	mu   sync.Mutex
	last Report
}

type Option func(*Sweeper)

func WithSchedule(expr string) Option {
	return func(s *Sweeper) {
		if expr != "" {
			s.schedule = expr
		}
	}
}

func WithAuditEmitter(e audit.Emitter) Option {
	return func(s *Sweeper) {
		s.auditor = e
	}
}

func WithMetrics(m *Metrics) Option {
	return func(s *Sweeper) {
		s.metrics = m
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Sweeper) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Sweeper) {
		if now != nil {
			s.now = now
		}
	}
}

func New(evaluator Evaluator, opts ...Option) *Sweeper {
	s := &Sweeper{
		evaluator: evaluator,
		schedule:  DefaultSchedule,
		logger:    slog.Default().With("component", "sla.sweep"),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run schedules sweeps and blocks until ctx is cancelled. A sweep in flight
// is allowed to finish before Run returns.
func (s *Sweeper) Run(ctx context.Context) error {
	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", s.schedule, err)
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(s.schedule, func() {
		if _, err := s.RunOnce(ctx); err != nil {
			s.logger.ErrorContext(ctx, "sla sweep failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule sweep: %w", err)
	}

	c.Start()
	s.logger.InfoContext(ctx, "sla sweep scheduled", "schedule", s.schedule)

	<-ctx.Done()
	<-c.Stop().Done()
	s.logger.Info("sla sweep stopped")
	return nil
}

// RunOnce evaluates every record at a single instant.
func (s *Sweeper) RunOnce(ctx context.Context) (Report, error) {
	start := s.now()
	ctx = requestcontext.WithTime(ctx, start)

	report, err := s.sweep(ctx, start)
	report.Duration = s.now().Sub(start)
	s.metrics.observe(start, report.Duration, err)
	if err != nil {
		return report, err
	}

	s.mu.Lock()
	s.last = report
	s.mu.Unlock()

	s.emit(ctx, report)
	s.logger.InfoContext(ctx, "sla sweep completed",
		"notifications", report.Notifications,
		"critical", report.Active[string(heuristics.SeverityCritical)],
		"duration_ms", report.Duration.Milliseconds(),
	)
	return report, nil
}

// Last returns the most recent successful report.
func (s *Sweeper) Last() Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

func (s *Sweeper) sweep(ctx context.Context, at time.Time) (Report, error) {
	ev, err := s.evaluator.Evaluate(ctx)
	if err != nil {
		return Report{At: at}, fmt.Errorf("evaluate records: %w", err)
	}
	active, err := s.evaluator.RecordActive(ctx, ev)
	if err != nil {
		return Report{At: at}, fmt.Errorf("record active notifications: %w", err)
	}
	return Report{
		At:            at,
		Notifications: len(ev.Notifications),
		Active:        active,
	}, nil
}

func (s *Sweeper) emit(ctx context.Context, r Report) {
	if s.auditor == nil {
		return
	}
	err := s.auditor.Emit(ctx, audit.Event{
		Category:  audit.EventSLASweepCompleted.Category(),
		Timestamp: r.At,
		Subject:   sweepSubject,
		Action:    string(audit.EventSLASweepCompleted),
		Decision:  fmt.Sprintf("%d notification(s)", r.Notifications),
		Reason: fmt.Sprintf("critical=%d warning=%d info=%d",
			r.Active[string(heuristics.SeverityCritical)],
			r.Active[string(heuristics.SeverityWarning)],
			r.Active[string(heuristics.SeverityInfo)]),
		ActorID: audit.ActorSystem,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", audit.EventSLASweepCompleted,
			"error", err,
		)
	}
}
