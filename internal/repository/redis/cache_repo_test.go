package redis

import (
	"context"
	"testing"
	"time"

	"github.com/DRSN-tech/catalog-api/internal/cfg"
	"github.com/DRSN-tech/catalog-api/pkg/e"
	"github.com/DRSN-tech/catalog-api/pkg/logger"
	"github.com/alicebob/miniredis/v2"
	r "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, ttl time.Duration) (*CategoryCache, *miniredis.Miniredis) {
	t.Helper()

	srv := miniredis.RunT(t)
	client := r.NewClient(&r.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewCategoryCache(client, &cfg.RedisCfg{CategoryTTL: ttl}, logger.NewNop()), srv
}

func TestCategoryCache_Miss(t *testing.T) {
	cache, _ := newTestCache(t, time.Minute)

	_, err := cache.Get(context.Background(), "Fruits")
	assert.ErrorIs(t, err, e.ErrCacheMiss)
}

func TestCategoryCache_SetGet(t *testing.T) {
	cache, srv := newTestCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "Fruits", 42))

	id, err := cache.Get(ctx, "Fruits")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, time.Minute, srv.TTL("category:Fruits"))

	_, err = cache.Get(ctx, "fruits")
	assert.ErrorIs(t, err, e.ErrCacheMiss)
}

func TestCategoryCache_Expired(t *testing.T) {
	cache, srv := newTestCache(t, time.Second)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "Fruits", 1))
	srv.FastForward(2 * time.Second)

	_, err := cache.Get(ctx, "Fruits")
	assert.ErrorIs(t, err, e.ErrCacheMiss)
}

func TestCategoryCache_CorruptedEntryDropped(t *testing.T) {
	cache, srv := newTestCache(t, 0)
	ctx := context.Background()

	require.NoError(t, srv.Set("category:Fruits", "not-json"))

	_, err := cache.Get(ctx, "Fruits")
	assert.ErrorIs(t, err, e.ErrCacheMiss)
	assert.False(t, srv.Exists("category:Fruits"))
}

func TestCategoryCache_MismatchedEntryDropped(t *testing.T) {
	cache, srv := newTestCache(t, 0)
	ctx := context.Background()

	require.NoError(t, srv.Set("category:Fruits", `{"id":7,"name":"Vegetables"}`))

	_, err := cache.Get(ctx, "Fruits")
	assert.ErrorIs(t, err, e.ErrCacheMiss)
	assert.False(t, srv.Exists("category:Fruits"))
}

func TestCategoryCache_ServerDown(t *testing.T) {
	client := r.NewClient(&r.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	cache := NewCategoryCache(client, &cfg.RedisCfg{}, logger.NewNop())

	_, err := cache.Get(context.Background(), "Fruits")
	require.Error(t, err)
	assert.NotErrorIs(t, err, e.ErrCacheMiss)

	assert.Error(t, cache.Set(context.Background(), "Fruits", 1))
}
