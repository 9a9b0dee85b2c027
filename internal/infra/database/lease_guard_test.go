package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeaseGuard_ExclusiveUntilReleased(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	first := NewLeaseGuard(db, "reschedule", time.Minute)
	second := NewLeaseGuard(db, "reschedule", time.Minute)

	ok, err := first.TryAcquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = second.TryAcquire(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	// Releasing someone else's lease is a no-op.
	require.NoError(t, second.Release(ctx))
	ok, err = second.TryAcquire(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, first.Release(ctx))
	ok, err = second.TryAcquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLeaseGuard_ExpiredLeaseIsTakenOver(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	start := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)

	crashed := NewLeaseGuard(db, "reschedule", 10*time.Minute)
	crashed.now = func() time.Time { return start }
	ok, err := crashed.TryAcquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	next := NewLeaseGuard(db, "reschedule", 10*time.Minute)
	next.now = func() time.Time { return start.Add(5 * time.Minute) }
	ok, err = next.TryAcquire(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	next.now = func() time.Time { return start.Add(11 * time.Minute) }
	ok, err = next.TryAcquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}
