package store

import (
	"context"
	"sync"
	"time"

	"opsdesk/pkg/domain"
)

type entry struct {
	ack       Ack
	expiresAt time.Time
}

// InMemoryAckStore holds acknowledgements for a single process.
type InMemoryAckStore struct {
	mu   sync.RWMutex
	acks map[domain.NotificationID]entry
	ttl  time.Duration
	now  func() time.Time
}

type MemoryOption func(*InMemoryAckStore)

func WithClock(now func() time.Time) MemoryOption {
	return func(s *InMemoryAckStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewInMemory keeps each acknowledgement for ttl; zero means forever.
func NewInMemory(ttl time.Duration, opts ...MemoryOption) *InMemoryAckStore {
	s := &InMemoryAckStore{
		acks: make(map[domain.NotificationID]entry),
		ttl:  ttl,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *InMemoryAckStore) Ack(_ context.Context, id domain.NotificationID, ack Ack) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := entry{ack: ack}
	if s.ttl > 0 {
		e.expiresAt = s.now().Add(s.ttl)
	}
	s.acks[id] = e
	return nil
}

func (s *InMemoryAckStore) Acked(_ context.Context, ids []domain.NotificationID) (map[domain.NotificationID]Ack, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	now := s.now()
	out := make(map[domain.NotificationID]Ack, len(ids))
	for _, id := range ids {
		e, ok := s.acks[id]
		if !ok {
			continue
		}
		if !e.expiresAt.IsZero() && !now.Before(e.expiresAt) {
			continue
		}
		out[id] = e.ack
	}
	return out, nil
}
