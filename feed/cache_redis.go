package feed

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// setIfGenerationScript stores ARGV[2] under KEYS[1] for ARGV[3] ms, but only
// while the generation counter in KEYS[2] still reads ARGV[1].
// Returns 1 if stored, 0 if the generation moved on.
var setIfGenerationScript = redis.NewScript(`
local gen = redis.call("GET", KEYS[2]) or "0"
if gen ~= ARGV[1] then
  return 0
end
redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
return 1
`)

// RedisCache is a Cache shared by every instance behind the same Redis.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache creates a RedisCache whose entries expire after ttl.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func generationKey(key string) string {
	return key + ":gen"
}

func (c *RedisCache) Get(ctx context.Context, key string) (Entry, error) {
	vals, err := c.client.MGet(ctx, key, generationKey(key)).Result()
	if err != nil {
		return Entry{}, fmt.Errorf("redis mget %s: %w", key, err)
	}

	var entry Entry
	if raw, ok := vals[1].(string); ok {
		gen, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return Entry{}, fmt.Errorf("parse generation of %s: %w", key, err)
		}
		entry.Generation = gen
	}
	if raw, ok := vals[0].(string); ok {
		entry.Value = []byte(raw)
		entry.Hit = true
	}
	return entry, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, generation uint64, value []byte) (bool, error) {
	stored, err := setIfGenerationScript.Run(ctx, c.client,
		[]string{key, generationKey(key)},
		strconv.FormatUint(generation, 10), value, c.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("redis set %s: %w", key, err)
	}
	return stored == 1, nil
}

func (c *RedisCache) Invalidate(ctx context.Context, key string) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationKey(key))
		pipe.Del(ctx, key)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis invalidate %s: %w", key, err)
	}
	return nil
}
