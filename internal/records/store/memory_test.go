package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opsdesk/internal/compliance"
	"opsdesk/internal/records"
	"opsdesk/pkg/domain"
	"opsdesk/pkg/platform/sentinel"
)

var base = time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

func TestInMemoryStore_Shipments(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()

	first := &records.Shipment{ID: domain.NewShipmentID(), Reference: "A", CreatedAt: base.Add(time.Hour)}
	second := &records.Shipment{
		ID:        domain.NewShipmentID(),
		Reference: "B",
		Shipment:  compliance.Shipment{Docs: compliance.DocList{"Bill of Lading"}},
		CreatedAt: base,
	}
	require.NoError(t, s.CreateShipment(ctx, first))
	require.NoError(t, s.CreateShipment(ctx, second))

	err := s.CreateShipment(ctx, first)
	assert.True(t, errors.Is(err, sentinel.ErrConflict))

	got, err := s.GetShipment(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, "B", got.Reference)

	// returned copies are detached
	got.Docs[0] = "mutated"
	again, err := s.GetShipment(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, compliance.DocList{"Bill of Lading"}, again.Docs)

	list, err := s.ListShipments(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "B", list[0].Reference)

	_, err = s.GetShipment(ctx, domain.NewShipmentID())
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestInMemoryStore_Deals(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	d := &records.Deal{ID: domain.NewDealID(), Name: "Acme lanes", Stage: domain.DealStageProposal, CreatedAt: base}
	require.NoError(t, s.CreateDeal(ctx, d))
	assert.ErrorIs(t, s.CreateDeal(ctx, d), sentinel.ErrConflict)

	got, err := s.GetDeal(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, d, got)

	_, err = s.GetDeal(ctx, domain.NewDealID())
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	list, err := s.ListDeals(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestInMemoryStore_Communications(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	sid := domain.NewShipmentID()

	late := &records.Communication{ID: domain.NewCommunicationID(), ShipmentID: &sid, Direction: records.DirectionInbound, Channel: records.ChannelEmail, SentAt: base.Add(2 * time.Hour)}
	early := &records.Communication{ID: domain.NewCommunicationID(), ShipmentID: &sid, Direction: records.DirectionOutbound, Channel: records.ChannelPhone, SentAt: base}
	other := &records.Communication{ID: domain.NewCommunicationID(), Direction: records.DirectionInbound, Channel: records.ChannelChat, SentAt: base.Add(time.Hour)}
	for _, c := range []*records.Communication{late, early, other} {
		require.NoError(t, s.CreateCommunication(ctx, c))
	}
	assert.ErrorIs(t, s.CreateCommunication(ctx, late), sentinel.ErrConflict)

	all, err := s.ListCommunications(ctx, records.CommunicationFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, early.ID, all[0].ID)

	linked, err := s.ListCommunications(ctx, records.CommunicationFilter{ShipmentID: &sid})
	require.NoError(t, err)
	assert.Len(t, linked, 2)
}

func TestInMemoryStore_ConcurrentWrites(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.CreateShipment(ctx, &records.Shipment{ID: domain.NewShipmentID(), CreatedAt: base.Add(time.Duration(i) * time.Second)})
		}()
	}
	wg.Wait()

	list, err := s.ListShipments(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 50)
}
