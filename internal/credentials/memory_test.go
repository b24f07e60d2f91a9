package credentials

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func TestMemoryStore_SetAndGet(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	store := NewMemoryStore(clock.Now)
	ctx := context.Background()

	_, err := store.SessionToken(ctx)
	assert.ErrorIs(t, err, ErrNoSession)

	require.NoError(t, store.SetSession(ctx, "tok-1", time.Hour))
	token, err := store.SessionToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)

	// Overwrites any existing session
	require.NoError(t, store.SetSession(ctx, "tok-2", time.Hour))
	token, err = store.SessionToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-2", token)
}

func TestMemoryStore_Expiry(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	store := NewMemoryStore(clock.Now)
	ctx := context.Background()

	require.NoError(t, store.SetSession(ctx, "tok", 7*24*time.Hour))

	clock.Advance(7*24*time.Hour - time.Second)
	_, err := store.SessionToken(ctx)
	require.NoError(t, err)

	clock.Advance(time.Second)
	_, err = store.SessionToken(ctx)
	assert.ErrorIs(t, err, ErrNoSession, "token must be gone at its absolute expiry")
}

func TestMemoryStore_ClearIsIdempotent(t *testing.T) {
	store := NewMemoryStore(nil)
	ctx := context.Background()

	require.NoError(t, store.SetSession(ctx, "tok", time.Hour))
	require.NoError(t, store.ClearSession(ctx))
	require.NoError(t, store.ClearSession(ctx))

	_, err := store.SessionToken(ctx)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestMemoryStore_RejectsBadInput(t *testing.T) {
	store := NewMemoryStore(nil)
	ctx := context.Background()

	assert.ErrorIs(t, store.SetSession(ctx, "", time.Hour), ErrEmptyToken)
	assert.ErrorIs(t, store.SetSession(ctx, "tok", 0), ErrInvalidTTL)

	_, err := store.SessionToken(ctx)
	assert.ErrorIs(t, err, ErrNoSession)
}
