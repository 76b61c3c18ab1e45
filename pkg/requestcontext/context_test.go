package requestcontext

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNow(t *testing.T) {
	t.Run("returns injected time", func(t *testing.T) {
		fixed := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
		ctx := WithTime(context.Background(), fixed)
		assert.Equal(t, fixed, Now(ctx))
	})

	t.Run("falls back to wall clock", func(t *testing.T) {
		before := time.Now()
		got := Now(context.Background())
		assert.False(t, got.Before(before))
	})
}

func TestOperatorAndRequestID(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, Operator(ctx))
	assert.Empty(t, RequestID(ctx))

	ctx = WithOperator(ctx, "dispatch-lead")
	ctx = WithRole(ctx, "viewer")
	ctx = WithRequestID(ctx, "req-123")
	assert.Equal(t, "dispatch-lead", Operator(ctx))
	assert.Equal(t, "viewer", Role(ctx))
	assert.Equal(t, "req-123", RequestID(ctx))
}

func TestPinnedTime(t *testing.T) {
	_, ok := PinnedTime(context.Background())
	assert.False(t, ok)

	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	got, ok := PinnedTime(WithTime(context.Background(), fixed))
	assert.True(t, ok)
	assert.Equal(t, fixed, got)
}
