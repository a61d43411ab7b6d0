package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisFixture(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedis(client, nil), mr
}

func TestRedisGetSet(t *testing.T) {
	ctx := context.Background()
	store, _ := newRedisFixture(t)

	_, ok := store.Get(ctx, NamespaceCompany, "k")
	assert.False(t, ok)

	store.Set(ctx, NamespaceCompany, "k", []byte("answer"), time.Minute)
	got, ok := store.Get(ctx, NamespaceCompany, "k")
	require.True(t, ok)
	assert.Equal(t, []byte("answer"), got)
}

func TestRedisExpiry(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisFixture(t)

	store.Set(ctx, NamespaceProperty, "k", []byte("listing"), 5*time.Minute)
	mr.FastForward(6 * time.Minute)

	_, ok := store.Get(ctx, NamespaceProperty, "k")
	assert.False(t, ok)
}

func TestRedisNamespaceIsolation(t *testing.T) {
	ctx := context.Background()
	store, _ := newRedisFixture(t)

	store.Set(ctx, NamespaceIntent, "k", []byte("PROPERTY"), time.Minute)

	_, ok := store.Get(ctx, NamespaceCompany, "k")
	assert.False(t, ok)
}

func TestRedisBackendErrorIsMiss(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisFixture(t)

	store.Set(ctx, NamespaceIntent, "k", []byte("PROPERTY"), time.Minute)
	mr.Close()

	_, ok := store.Get(ctx, NamespaceIntent, "k")
	assert.False(t, ok)
}
