// Package store persists records in memory or in PostgreSQL. Both
// implementations return sentinel errors for missing and duplicate records.
package store

import (
	"context"

	"opsdesk/internal/records"
	"opsdesk/pkg/domain"
)

// Store is the persistence port of the records module.
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

var (
	_ Store = (*InMemoryStore)(nil)
	_ Store = (*PostgresStore)(nil)
)
