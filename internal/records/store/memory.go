package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"opsdesk/internal/records"
	"opsdesk/pkg/domain"
	"opsdesk/pkg/platform/sentinel"
)

// InMemoryStore keeps records in maps guarded by a RWMutex. Lists are
// returned oldest first, matching the PostgreSQL store.
type InMemoryStore struct {
	mu             sync.RWMutex
	shipments      map[domain.ShipmentID]*records.Shipment
	deals          map[domain.DealID]*records.Deal
	communications []*records.Communication
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		shipments: make(map[domain.ShipmentID]*records.Shipment),
		deals:     make(map[domain.DealID]*records.Deal),
	}
}

func (s *InMemoryStore) CreateShipment(_ context.Context, sh *records.Shipment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.shipments[sh.ID]; ok {
		return sentinel.ErrConflict
	}
	cp := cloneShipment(sh)
	s.shipments[sh.ID] = cp
	return nil
}

func (s *InMemoryStore) GetShipment(_ context.Context, id domain.ShipmentID) (*records.Shipment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sh, ok := s.shipments[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneShipment(sh), nil
}

func (s *InMemoryStore) ListShipments(_ context.Context) ([]*records.Shipment, error) {
	s.mu.RLock()
	out := make([]*records.Shipment, 0, len(s.shipments))
	for _, sh := range s.shipments {
		out = append(out, cloneShipment(sh))
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b *records.Shipment) int {
		return compareCreated(a.CreatedAt, b.CreatedAt, a.ID.String(), b.ID.String())
	})
	return out, nil
}

func (s *InMemoryStore) CreateDeal(_ context.Context, d *records.Deal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.deals[d.ID]; ok {
		return sentinel.ErrConflict
	}
	cp := *d
	s.deals[d.ID] = &cp
	return nil
}

func (s *InMemoryStore) GetDeal(_ context.Context, id domain.DealID) (*records.Deal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.deals[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (s *InMemoryStore) ListDeals(_ context.Context) ([]*records.Deal, error) {
	s.mu.RLock()
	out := make([]*records.Deal, 0, len(s.deals))
	for _, d := range s.deals {
		cp := *d
		out = append(out, &cp)
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b *records.Deal) int {
		return compareCreated(a.CreatedAt, b.CreatedAt, a.ID.String(), b.ID.String())
	})
	return out, nil
}

func (s *InMemoryStore) CreateCommunication(_ context.Context, c *records.Communication) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.communications {
		if existing.ID == c.ID {
			return sentinel.ErrConflict
		}
	}
	cp := *c
	s.communications = append(s.communications, &cp)
	return nil
}

func (s *InMemoryStore) ListCommunications(_ context.Context, filter records.CommunicationFilter) ([]*records.Communication, error) {
	s.mu.RLock()
	var out []*records.Communication
	for _, c := range s.communications {
		if filter.Matches(c) {
			cp := *c
			out = append(out, &cp)
		}
	}
	s.mu.RUnlock()

	slices.SortStableFunc(out, func(a, b *records.Communication) int {
		return a.SentAt.Compare(b.SentAt)
	})
	return out, nil
}

func cloneShipment(sh *records.Shipment) *records.Shipment {
	cp := *sh
	if sh.Docs != nil {
		cp.Docs = slices.Clone(sh.Docs)
	}
	if sh.Documents != nil {
		cp.Documents = slices.Clone(sh.Documents)
	}
	return &cp
}

func compareCreated(a, b time.Time, aID, bID string) int {
	if c := a.Compare(b); c != 0 {
		return c
	}
	switch {
	case aID < bID:
		return -1
	case aID > bID:
		return 1
	}
	return 0
}
