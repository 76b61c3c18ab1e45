// Package service builds the dashboard read models: scores, notifications with
// their acknowledgement state, and briefs. Compliance is evaluated here without
// audit events; audited checks go through the compliance service.
package service

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"opsdesk/internal/briefs"
	"opsdesk/internal/compliance"
	"opsdesk/internal/dashboard/metrics"
	"opsdesk/internal/dashboard/store"
	"opsdesk/internal/heuristics"
	"opsdesk/internal/records"
	"opsdesk/pkg/domain"
	dErrors "opsdesk/pkg/domain-errors"
	"opsdesk/pkg/platform/audit"
	"opsdesk/pkg/requestcontext"
)

var severities = []string{
	string(heuristics.SeverityCritical),
	string(heuristics.SeverityWarning),
	string(heuristics.SeverityInfo),
}

// Records is the subset of the records service the dashboard reads.
type Records interface {
	GetShipment(ctx context.Context, id domain.ShipmentID) (*records.Shipment, error)
	GetDeal(ctx context.Context, id domain.DealID) (*records.Deal, error)
	ListCommunications(ctx context.Context, filter records.CommunicationFilter) ([]*records.Communication, error)
	Snapshot(ctx context.Context) (records.Snapshot, error)
}

// Compliance exposes the engine currently in force.
type Compliance interface {
	Engine() *compliance.Engine
	Watchlists() compliance.Watchlists
}

// SettingsSource supplies the current heuristics settings.
type SettingsSource interface {
	Current() heuristics.Settings
}

// Evaluation is every derived fact about a snapshot at one instant.
type Evaluation struct {
	At            time.Time
	Snapshot      records.Snapshot
	Results       map[domain.ShipmentID]compliance.Result
	Notifications []heuristics.Notification
	engine        *heuristics.Engine
}

// Findings returns the compliance findings per shipment.
func (e Evaluation) Findings() map[domain.ShipmentID][]compliance.Finding {
	out := make(map[domain.ShipmentID][]compliance.Finding, len(e.Results))
	for id, r := range e.Results {
		out[id] = r.Findings
	}
	return out
}

type Service struct {
	records    Records
	compliance Compliance
	settings   SettingsSource
	acks       store.AckStore
	auditor    audit.Emitter
	metrics    *metrics.Metrics
	logger     *slog.Logger
	tracer     trace.Tracer
}

type Option func(*Service)

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

func New(rec Records, comp Compliance, settings SettingsSource, acks store.AckStore, opts ...Option) *Service {
	s := &Service{
		records:    rec,
		compliance: comp,
		settings:   settings,
		acks:       acks,
		logger:     slog.Default(),
		tracer:     otel.Tracer("opsdesk/dashboard"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ShipmentRisk scores a stored shipment.
func (s *Service) ShipmentRisk(ctx context.Context, id domain.ShipmentID) (heuristics.RiskScore, error) {
	sh, comms, err := s.loadShipment(ctx, id)
	if err != nil {
		return heuristics.RiskScore{}, err
	}
	now := requestcontext.Now(ctx)
	result := s.compliance.Engine().CheckAt(sh.Shipment, now)
	return s.engine().CXRisk(*sh, result.Findings, comms, now), nil
}

// DealScore computes the win likelihood of a stored deal.
func (s *Service) DealScore(ctx context.Context, id domain.DealID) (heuristics.WinScore, error) {
	d, err := s.records.GetDeal(ctx, id)
	if err != nil {
		return heuristics.WinScore{}, err
	}
	return s.engine().WinLikelihood(*d, requestcontext.Now(ctx)), nil
}

// Evaluate derives compliance results and notifications for every record.
func (s *Service) Evaluate(ctx context.Context) (Evaluation, error) {
	ctx, span := s.tracer.Start(ctx, "dashboard.Evaluate")
	defer span.End()

	snap, err := s.records.Snapshot(ctx)
	if err != nil {
		return Evaluation{}, err
	}
	now := requestcontext.Now(ctx)
	checker := s.compliance.Engine()
	ev := Evaluation{
		At:       now,
		Snapshot: snap,
		Results:  make(map[domain.ShipmentID]compliance.Result, len(snap.Shipments)),
		engine:   s.engine(),
	}
	for _, sh := range snap.Shipments {
		ev.Results[sh.ID] = checker.CheckAt(sh.Shipment, now)
	}
	ev.Notifications = ev.engine.Notifications(snap, ev.Findings(), now)

	span.SetAttributes(
		attribute.Int("shipments", len(snap.Shipments)),
		attribute.Int("notifications", len(ev.Notifications)),
	)
	return ev, nil
}

// Notifications lists active notifications, critical first. Acknowledged ones
// are included only on request.
func (s *Service) Notifications(ctx context.Context, includeAcknowledged bool) ([]heuristics.Notification, error) {
	ev, err := s.Evaluate(ctx)
	if err != nil {
		return nil, err
	}
	list, err := s.withAcks(ctx, ev.Notifications)
	if err != nil {
		return nil, err
	}
	s.recordActive(list)

	out := make([]heuristics.Notification, 0, len(list))
	for _, n := range list {
		if n.Acknowledged && !includeAcknowledged {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

// Acknowledge marks an active notification as seen. The acknowledgement lasts
// while the condition persists, up to the store's retention.
func (s *Service) Acknowledge(ctx context.Context, id domain.NotificationID) (heuristics.Notification, error) {
	ev, err := s.Evaluate(ctx)
	if err != nil {
		return heuristics.Notification{}, err
	}
	var found *heuristics.Notification
	for i := range ev.Notifications {
		if ev.Notifications[i].ID == id {
			found = &ev.Notifications[i]
			break
		}
	}
	if found == nil {
		return heuristics.Notification{}, dErrors.New(dErrors.CodeNotFound, "notification not found")
	}

	actor := actorFrom(ctx)
	if err := s.acks.Ack(ctx, id, store.Ack{By: actor, At: requestcontext.Now(ctx).UTC()}); err != nil {
		return heuristics.Notification{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to acknowledge notification")
	}
	s.metrics.IncAcknowledged()
	s.emit(ctx, audit.EventNotificationAcked, "notification:"+id.String(), string(found.Kind))

	n := *found
	n.Acknowledged = true
	return n, nil
}

// ShipmentBrief renders the brief for one stored shipment.
func (s *Service) ShipmentBrief(ctx context.Context, id domain.ShipmentID) (briefs.Brief, error) {
	sh, comms, err := s.loadShipment(ctx, id)
	if err != nil {
		return briefs.Brief{}, err
	}
	now := requestcontext.Now(ctx)
	result := s.compliance.Engine().CheckAt(sh.Shipment, now)
	b, err := briefs.Shipment(briefs.ShipmentInput{
		Shipment:       *sh,
		Compliance:     result,
		Risk:           s.engine().CXRisk(*sh, result.Findings, comms, now),
		Communications: comms,
	}, now)
	if err != nil {
		return briefs.Brief{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to render brief")
	}
	s.metrics.IncBrief("shipment")
	return b, nil
}

// DailyBrief renders the desk-wide brief. Acknowledged notifications are left out.
func (s *Service) DailyBrief(ctx context.Context) (briefs.Brief, error) {
	ev, err := s.Evaluate(ctx)
	if err != nil {
		return briefs.Brief{}, err
	}

	var (
		open      []heuristics.Notification
		shipments []briefs.ShipmentLine
		deals     []briefs.DealLine
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		list, err := s.withAcks(gctx, ev.Notifications)
		if err != nil {
			return err
		}
		for _, n := range list {
			if !n.Acknowledged {
				open = append(open, n)
			}
		}
		return nil
	})
	g.Go(func() error {
		shipments = ev.shipmentLines()
		return nil
	})
	g.Go(func() error {
		deals = ev.dealLines()
		return nil
	})
	if err := g.Wait(); err != nil {
		return briefs.Brief{}, err
	}

	b, err := briefs.Daily(briefs.DailyInput{
		Shipments:     shipments,
		Deals:         deals,
		Notifications: open,
	}, ev.At)
	if err != nil {
		return briefs.Brief{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to render brief")
	}
	s.metrics.IncBrief("daily")
	s.emit(ctx, audit.EventDailyBriefGenerated, "brief:daily", b.GeneratedAt.Format(time.DateOnly))
	return b, nil
}

// Settings returns the heuristics settings with the watchlists in force.
func (s *Service) Settings() heuristics.Settings {
	settings := s.settings.Current()
	settings.Compliance = s.compliance.Watchlists()
	return settings
}

// RecordActive refreshes the active-notification gauges from an evaluation.
func (s *Service) RecordActive(ctx context.Context, ev Evaluation) (map[string]int, error) {
	list, err := s.withAcks(ctx, ev.Notifications)
	if err != nil {
		return nil, err
	}
	return s.recordActive(list), nil
}

func (s *Service) recordActive(list []heuristics.Notification) map[string]int {
	counts := make(map[string]int, len(severities))
	for _, n := range list {
		if !n.Acknowledged {
			counts[string(n.Severity)]++
		}
	}
	s.metrics.SetActive(counts, severities)
	return counts
}

func (s *Service) withAcks(ctx context.Context, list []heuristics.Notification) ([]heuristics.Notification, error) {
	ids := make([]domain.NotificationID, len(list))
	for i, n := range list {
		ids[i] = n.ID
	}
	acked, err := s.acks.Acked(ctx, ids)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load acknowledgements")
	}
	out := make([]heuristics.Notification, len(list))
	for i, n := range list {
		_, n.Acknowledged = acked[n.ID]
		out[i] = n
	}
	return out, nil
}

func (s *Service) loadShipment(ctx context.Context, id domain.ShipmentID) (*records.Shipment, []*records.Communication, error) {
	sh, err := s.records.GetShipment(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	comms, err := s.records.ListCommunications(ctx, records.CommunicationFilter{ShipmentID: &id})
	if err != nil {
		return nil, nil, err
	}
	return sh, comms, nil
}

func (s *Service) engine() *heuristics.Engine {
	return heuristics.NewEngine(s.settings.Current())
}

func (ev Evaluation) shipmentLines() []briefs.ShipmentLine {
	out := make([]briefs.ShipmentLine, 0, len(ev.Snapshot.Shipments))
	for _, sh := range ev.Snapshot.Shipments {
		result := ev.Results[sh.ID]
		out = append(out, briefs.ShipmentLine{
			Label:    sh.Label(),
			Flagged:  result.Flagged(),
			Findings: len(result.Findings),
			Risk:     ev.engine.CXRisk(*sh, result.Findings, ev.Snapshot.CommunicationsFor(sh.ID), ev.At),
		})
	}
	return out
}

func (ev Evaluation) dealLines() []briefs.DealLine {
	out := make([]briefs.DealLine, 0, len(ev.Snapshot.Deals))
	for _, d := range ev.Snapshot.Deals {
		out = append(out, briefs.DealLine{
			ID:       d.ID,
			Name:     d.Name,
			Stage:    d.Stage,
			Value:    d.Value,
			Currency: d.Currency,
			Score:    ev.engine.WinLikelihood(*d, ev.At).Score,
		})
	}
	return out
}

func actorFrom(ctx context.Context) string {
	if actor := requestcontext.Operator(ctx); actor != "" {
		return actor
	}
	return audit.ActorSystem
}

// emit records an operations event; failures are logged and dropped.
func (s *Service) emit(ctx context.Context, action audit.AuditEvent, subject, decision string) {
	if s.auditor == nil {
		return
	}
	err := s.auditor.Emit(ctx, audit.Event{
		Category:  action.Category(),
		Subject:   subject,
		Action:    string(action),
		Decision:  decision,
		RequestID: requestcontext.RequestID(ctx),
		ActorID:   actorFrom(ctx),
	})
	if err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", action,
			"subject", subject,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
}
