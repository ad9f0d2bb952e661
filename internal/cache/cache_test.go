package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/drapcode/exchange-engine/internal/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCache(t *testing.T) {
	t.Run("memory backend", func(t *testing.T) {
		config := cache.DefaultCacheConfig()
		c, err := cache.NewCache(config)
		require.NoError(t, err)
		defer c.Close()

		ctx := context.Background()
		require.NoError(t, c.Set(ctx, "test", []byte("value"), time.Minute))

		value, err := c.Get(ctx, "test")
		require.NoError(t, err)
		assert.Equal(t, []byte("value"), value)

		require.NoError(t, c.Delete(ctx, "test"))
		_, err = c.Get(ctx, "test")
		assert.ErrorIs(t, err, cache.ErrKeyNotFound)
	})

	t.Run("invalid backend", func(t *testing.T) {
		config := cache.DefaultCacheConfig()
		config.Backend = cache.CacheType("invalid")

		_, err := cache.NewCache(config)
		assert.ErrorIs(t, err, cache.ErrInvalidCacheType)
	})

	t.Run("disabled", func(t *testing.T) {
		config := cache.DefaultCacheConfig()
		config.Enabled = false

		_, err := cache.NewCache(config)
		assert.ErrorIs(t, err, cache.ErrCacheDisabled)
	})

	t.Run("redis backend", func(t *testing.T) {
		config := cache.DefaultCacheConfig()
		config.Backend = cache.CacheTypeRedis

		c, err := cache.NewCache(config)
		if err != nil {
			t.Skipf("Skipping test: Redis not available: %v", err)
		}
		defer c.Close()

		ctx := context.Background()
		require.NoError(t, c.Set(ctx, "exchange-test:a", []byte("1"), time.Minute))
		value, err := c.Get(ctx, "exchange-test:a")
		require.NoError(t, err)
		assert.Equal(t, []byte("1"), value)
		require.NoError(t, c.Delete(ctx, "exchange-test:a"))
		_, err = c.Get(ctx, "exchange-test:a")
		assert.ErrorIs(t, err, cache.ErrKeyNotFound)
	})
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemoryCache(nil)
	defer c.Close()

	t.Run("expired entries are misses", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "short", []byte("x"), time.Millisecond))
		time.Sleep(5 * time.Millisecond)
		_, err := c.Get(ctx, "short")
		assert.ErrorIs(t, err, cache.ErrKeyNotFound)
	})

	t.Run("delete removes only its key", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "collection:p1:users", []byte("1"), time.Minute))
		require.NoError(t, c.Set(ctx, "collection:p2:users", []byte("1"), time.Minute))

		require.NoError(t, c.Delete(ctx, "collection:p1:users"))

		_, err := c.Get(ctx, "collection:p1:users")
		assert.ErrorIs(t, err, cache.ErrKeyNotFound)
		_, err = c.Get(ctx, "collection:p2:users")
		assert.NoError(t, err)
	})

	t.Run("close is idempotent", func(t *testing.T) {
		other := cache.NewMemoryCache(nil)
		assert.NoError(t, other.Close())
		assert.NoError(t, other.Close())
	})
}

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestGenericCacheService(t *testing.T) {
	ctx := context.Background()
	config := cache.DefaultCacheConfig()
	svc := cache.NewGenericCacheService(cache.NewMemoryCache(config), config)
	defer svc.Close()

	require.NoError(t, svc.CacheData(ctx, "k1", payload{Name: "a", Count: 2}))

	var got payload
	require.NoError(t, svc.GetCached(ctx, "k1", &got))
	assert.Equal(t, payload{Name: "a", Count: 2}, got)

	err := svc.GetCached(ctx, "missing", &got)
	assert.ErrorIs(t, err, cache.ErrKeyNotFound)

	require.NoError(t, svc.Invalidate(ctx, "k1"))
	err = svc.GetCached(ctx, "k1", &got)
	assert.ErrorIs(t, err, cache.ErrKeyNotFound)

	assert.ErrorIs(t, svc.CacheData(ctx, " ", got), cache.ErrInvalidKey)

	stats := svc.GetStats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(2), stats.Misses)

	disabled := cache.NewGenericCacheService(nil, config)
	assert.ErrorIs(t, disabled.GetCached(ctx, "k1", &got), cache.ErrCacheDisabled)
}
