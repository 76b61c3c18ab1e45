// Package service implements record ingestion: validation, identity and
// timestamps, persistence through a Store, and operations audit events.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"opsdesk/internal/records"
	"opsdesk/pkg/domain"
	dErrors "opsdesk/pkg/domain-errors"
	"opsdesk/pkg/platform/audit"
	"opsdesk/pkg/platform/sentinel"
	"opsdesk/pkg/requestcontext"
)

// Store is the persistence port. Both store.InMemoryStore and
// store.PostgresStore satisfy it.
type Store interface {
	CreateShipment(ctx context.Context, s *records.Shipment) error
	GetShipment(ctx context.Context, id domain.ShipmentID) (*records.Shipment, error)
	ListShipments(ctx context.Context) ([]*records.Shipment, error)

	CreateDeal(ctx context.Context, d *records.Deal) error
	GetDeal(ctx context.Context, id domain.DealID) (*records.Deal, error)
	ListDeals(ctx context.Context) ([]*records.Deal, error)

	CreateCommunication(ctx context.Context, c *records.Communication) error
	ListCommunications(ctx context.Context, filter records.CommunicationFilter) ([]*records.Communication, error)
}

type Service struct {
	store   Store
	logger  *slog.Logger
	auditor audit.Emitter
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditEmitter(e audit.Emitter) Option {
	return func(s *Service) {
		s.auditor = e
	}
}

func New(store Store, opts ...Option) *Service {
	s := &Service{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) CreateShipment(ctx context.Context, sh *records.Shipment) (*records.Shipment, error) {
	if sh == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "shipment is required")
	}
	if sh.ID.IsNil() {
		sh.ID = domain.NewShipmentID()
	}
	now := requestcontext.Now(ctx)
	sh.CreatedAt = now
	sh.UpdatedAt = now

	if err := s.store.CreateShipment(ctx, sh); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "shipment already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create shipment")
	}
	s.emit(ctx, audit.EventShipmentCreated, sh.Subject(), "")
	return sh, nil
}

func (s *Service) GetShipment(ctx context.Context, id domain.ShipmentID) (*records.Shipment, error) {
	sh, err := s.store.GetShipment(ctx, id)
	if err != nil {
		return nil, translate(err, "shipment")
	}
	return sh, nil
}

func (s *Service) ListShipments(ctx context.Context) ([]*records.Shipment, error) {
	list, err := s.store.ListShipments(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list shipments")
	}
	return list, nil
}

func (s *Service) CreateDeal(ctx context.Context, d *records.Deal) (*records.Deal, error) {
	if d == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "deal is required")
	}
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "deal name is required")
	}
	if d.Stage == "" {
		d.Stage = domain.DealStageProspect
	}
	if !d.Stage.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "invalid deal stage")
	}
	if d.CompetitorCount < 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "competitor count cannot be negative")
	}
	if d.ID.IsNil() {
		d.ID = domain.NewDealID()
	}
	d.CreatedAt = requestcontext.Now(ctx)

	if err := s.store.CreateDeal(ctx, d); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "deal already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create deal")
	}
	s.emit(ctx, audit.EventDealCreated, d.Subject(), string(d.Stage))
	return d, nil
}

func (s *Service) GetDeal(ctx context.Context, id domain.DealID) (*records.Deal, error) {
	d, err := s.store.GetDeal(ctx, id)
	if err != nil {
		return nil, translate(err, "deal")
	}
	return d, nil
}

func (s *Service) ListDeals(ctx context.Context) ([]*records.Deal, error) {
	list, err := s.store.ListDeals(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list deals")
	}
	return list, nil
}

// CreateCommunication logs a message. Linked shipments and deals must exist.
func (s *Service) CreateCommunication(ctx context.Context, c *records.Communication) (*records.Communication, error) {
	if c == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "communication is required")
	}
	if !c.Direction.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "direction must be inbound or outbound")
	}
	if !c.Channel.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "channel must be email, phone or chat")
	}
	if c.ShipmentID != nil {
		if _, err := s.store.GetShipment(ctx, *c.ShipmentID); err != nil {
			return nil, translate(err, "shipment")
		}
	}
	if c.DealID != nil {
		if _, err := s.store.GetDeal(ctx, *c.DealID); err != nil {
			return nil, translate(err, "deal")
		}
	}
	if c.ID.IsNil() {
		c.ID = domain.NewCommunicationID()
	}
	if c.SentAt.IsZero() {
		c.SentAt = requestcontext.Now(ctx)
	}

	if err := s.store.CreateCommunication(ctx, c); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "communication already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to log communication")
	}
	s.emit(ctx, audit.EventCommunicationLogged, c.AuditSubject(), string(c.Direction))
	return c, nil
}

func (s *Service) ListCommunications(ctx context.Context, filter records.CommunicationFilter) ([]*records.Communication, error) {
	list, err := s.store.ListCommunications(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list communications")
	}
	return list, nil
}

// Snapshot loads every record. The three lists are read concurrently.
func (s *Service) Snapshot(ctx context.Context) (records.Snapshot, error) {
	var snap records.Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		list, err := s.store.ListShipments(gctx)
		snap.Shipments = list
		return err
	})
	g.Go(func() error {
		list, err := s.store.ListDeals(gctx)
		snap.Deals = list
		return err
	})
	g.Go(func() error {
		list, err := s.store.ListCommunications(gctx, records.CommunicationFilter{})
		snap.Communications = list
		return err
	})
	if err := g.Wait(); err != nil {
		return records.Snapshot{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load records")
	}
	return snap, nil
}

func translate(err error, kind string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, kind+" not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load "+kind)
}

// emit records an operations event. Failures are logged, never returned:
// the record is already stored.
func (s *Service) emit(ctx context.Context, action audit.AuditEvent, subject, decision string) {
	if s.auditor == nil {
		return
	}
	actor := requestcontext.Operator(ctx)
	if actor == "" {
		actor = audit.ActorSystem
	}
	err := s.auditor.Emit(ctx, audit.Event{
		Category:  action.Category(),
		Subject:   subject,
		Action:    string(action),
		Decision:  decision,
		RequestID: requestcontext.RequestID(ctx),
		ActorID:   actor,
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
