package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*DedupStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewDedupStore(client), mr
}

func TestDedupStore_MarkThenDuplicate(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	dup, err := store.IsDuplicate(ctx, "RTN-0001", "picked_up")
	require.NoError(t, err)
	assert.False(t, dup, "unseen transition must not be a duplicate")

	require.NoError(t, store.Mark(ctx, "RTN-0001", "picked_up"))

	dup, err = store.IsDuplicate(ctx, "RTN-0001", "picked_up")
	require.NoError(t, err)
	assert.True(t, dup, "marked transition must read back as duplicate")
}

func TestDedupStore_KeysAreScoped(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Mark(ctx, "RTN-0001", "picked_up"))

	dup, err := store.IsDuplicate(ctx, "RTN-0001", "dropped")
	require.NoError(t, err)
	assert.False(t, dup, "different status must not collide")

	dup, err = store.IsDuplicate(ctx, "RTN-0002", "picked_up")
	require.NoError(t, err)
	assert.False(t, dup, "different pickup must not collide")
}

func TestDedupStore_TTLExpiry(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Mark(ctx, "RTN-0001", "dropped"))
	mr.FastForward(dedupTTL + time.Minute)

	dup, err := store.IsDuplicate(ctx, "RTN-0001", "dropped")
	require.NoError(t, err)
	assert.False(t, dup, "mark must expire after the TTL")
}
