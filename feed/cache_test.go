package feed

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisCache(t *testing.T, ttl time.Duration) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCache(client, ttl), mr
}

// exerciseCache checks the contract every Cache implementation must honour.
func exerciseCache(t *testing.T, c Cache) {
	ctx := context.Background()
	const key = "cache:test"

	entry, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, entry.Hit)

	stored, err := c.Set(ctx, key, entry.Generation, []byte("v1"))
	require.NoError(t, err)
	assert.True(t, stored)

	hit, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, hit.Hit)
	assert.Equal(t, []byte("v1"), hit.Value)
	assert.Equal(t, entry.Generation, hit.Generation)

	require.NoError(t, c.Invalidate(ctx, key))

	after, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, after.Hit)
	assert.Greater(t, after.Generation, entry.Generation)

	// A reader that looked up before the invalidation must not repopulate the slot.
	stored, err = c.Set(ctx, key, entry.Generation, []byte("stale"))
	require.NoError(t, err)
	assert.False(t, stored)
	stale, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, stale.Hit)

	stored, err = c.Set(ctx, key, after.Generation, []byte("v2"))
	require.NoError(t, err)
	assert.True(t, stored)
	fresh, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), fresh.Value)
}

func TestMemoryCache_Contract(t *testing.T) {
	exerciseCache(t, NewMemoryCache(time.Minute))
}

func TestRedisCache_Contract(t *testing.T) {
	c, _ := newRedisCache(t, time.Minute)
	exerciseCache(t, c)
}

func TestRedisCache_Expires(t *testing.T) {
	c, mr := newRedisCache(t, 20*time.Second)
	ctx := context.Background()

	stored, err := c.Set(ctx, IndexCacheKey, 0, []byte("page"))
	require.NoError(t, err)
	require.True(t, stored)

	mr.FastForward(21 * time.Second)

	entry, err := c.Get(ctx, IndexCacheKey)
	require.NoError(t, err)
	assert.False(t, entry.Hit)
}

func TestRedisCache_ServerDown(t *testing.T) {
	c, mr := newRedisCache(t, time.Minute)
	mr.Close()

	_, err := c.Get(context.Background(), IndexCacheKey)
	assert.Error(t, err)
	assert.Error(t, c.Invalidate(context.Background(), IndexCacheKey))
}

func TestMemoryCache_Expires(t *testing.T) {
	c := NewMemoryCache(30 * time.Millisecond)
	ctx := context.Background()

	stored, err := c.Set(ctx, IndexCacheKey, 0, []byte("page"))
	require.NoError(t, err)
	require.True(t, stored)

	require.Eventually(t, func() bool {
		entry, err := c.Get(ctx, IndexCacheKey)
		return err == nil && !entry.Hit
	}, time.Second, 10*time.Millisecond)
}

func TestNopCache(t *testing.T) {
	ctx := context.Background()
	var c NopCache
	stored, err := c.Set(ctx, IndexCacheKey, 0, []byte("x"))
	require.NoError(t, err)
	assert.False(t, stored)
	entry, err := c.Get(ctx, IndexCacheKey)
	require.NoError(t, err)
	assert.False(t, entry.Hit)
	assert.NoError(t, c.Invalidate(ctx, IndexCacheKey))
}
