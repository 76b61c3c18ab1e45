// Package store keeps operator acknowledgements of notifications, in memory or
// in Redis. Acknowledgements expire so a condition that clears and later
// recurs is raised again.
package store

import (
	"context"
	"time"

	"opsdesk/pkg/domain"
)

// Ack records who acknowledged a notification and when.
type Ack struct {
	By string    `json:"by"`
	At time.Time `json:"at"`
}

// AckStore is the persistence port for acknowledgements.
type AckStore interface {
	Ack(ctx context.Context, id domain.NotificationID, ack Ack) error
	Acked(ctx context.Context, ids []domain.NotificationID) (map[domain.NotificationID]Ack, error)
}

var (
	_ AckStore = (*InMemoryAckStore)(nil)
	_ AckStore = (*RedisAckStore)(nil)
)
