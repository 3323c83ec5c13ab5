package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_GetSet(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.Get(ctx, "k")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, "k", []byte("v"), 0))

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)
}

func TestMemoryStore_Delete(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, s.Set(ctx, "b", []byte("2"), 0))

	require.NoError(t, s.Delete(ctx, "a", "b", "missing"))

	_, err := s.Get(ctx, "a")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = s.Get(ctx, "b")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_TakeIsSingleRead(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", []byte("v"), 0))

	got, err := s.Take(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	_, err = s.Take(ctx, "k")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = s.Get(ctx, "k")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_TTL(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	now := time.Now()
	s.now = func() time.Time { return now }

	require.NoError(t, s.Set(ctx, "k", []byte("v"), time.Minute))

	now = now.Add(30 * time.Second)
	_, err := s.Get(ctx, "k")
	require.NoError(t, err)

	now = now.Add(31 * time.Second)
	_, err = s.Get(ctx, "k")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_ExpiredTake(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	now := time.Now()
	s.now = func() time.Time { return now }

	require.NoError(t, s.Set(ctx, "k", []byte("v"), time.Minute))
	now = now.Add(2 * time.Minute)

	_, err := s.Take(ctx, "k")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_Evict(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	now := time.Now()
	s.now = func() time.Time { return now }

	require.NoError(t, s.Set(ctx, "stale", []byte("1"), time.Minute))
	require.NoError(t, s.Set(ctx, "fresh", []byte("2"), time.Hour))

	s.evict(now.Add(2 * time.Minute))

	assert.Len(t, s.entries, 1)
	_, err := s.Get(ctx, "fresh")
	require.NoError(t, err)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "sess:abc:cart", CartKey("abc"))
	assert.Equal(t, "sess:abc:pending_order", PendingOrderKey("abc"))
	assert.Equal(t, "sess:abc:admin", AdminKey("abc"))
}
