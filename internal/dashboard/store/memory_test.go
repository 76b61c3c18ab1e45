package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opsdesk/pkg/domain"
)

func TestInMemoryAckStore(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	s := NewInMemory(time.Hour, WithClock(clock))
	ctx := context.Background()

	a := domain.NotificationIDFor("sla_delay", "shipment:1")
	b := domain.NotificationIDFor("sla_delay", "shipment:2")
	require.NoError(t, s.Ack(ctx, a, Ack{By: "ops", At: now}))

	got, err := s.Acked(ctx, []domain.NotificationID{a, b})
	require.NoError(t, err)
	assert.Equal(t, map[domain.NotificationID]Ack{a: {By: "ops", At: now}}, got)

	now = now.Add(time.Hour)
	got, err = s.Acked(ctx, []domain.NotificationID{a})
	require.NoError(t, err)
	assert.Empty(t, got, "acks expire after the TTL")
}

func TestInMemoryAckStoreWithoutTTL(t *testing.T) {
	s := NewInMemory(0)
	ctx := context.Background()
	id := domain.NotificationIDFor("stale_deal", "deal:1")
	require.NoError(t, s.Ack(ctx, id, Ack{By: "ops"}))

	got, err := s.Acked(ctx, []domain.NotificationID{id})
	require.NoError(t, err)
	assert.Contains(t, got, id)
}
