package feed

import (
	"context"
	"errors"
)

// IndexCacheKey is the single slot holding the global feed's first page.
const IndexCacheKey = "cache:feed:index"

// ErrCacheInvalidation marks a write that persisted but could not evict the cached feed.
var ErrCacheInvalidation = errors.New("feed cache invalidation failed")

// Entry is the result of a cache lookup. Generation must be handed back to
// Set so that a value computed before an invalidation is never stored after it.
type Entry struct {
	Value      []byte
	Generation uint64
	Hit        bool
}

// Cache is a generation-guarded key/value store with per-entry TTL.
type Cache interface {
	Get(ctx context.Context, key string) (Entry, error)
	// Set stores value only if key's generation still equals generation.
	// It reports whether the value was stored.
	Set(ctx context.Context, key string, generation uint64, value []byte) (bool, error)
	// Invalidate evicts key and advances its generation atomically.
	Invalidate(ctx context.Context, key string) error
}

// NopCache never stores anything. It is used when caching is disabled.
type NopCache struct{}

func (NopCache) Get(context.Context, string) (Entry, error) { return Entry{}, nil }

func (NopCache) Set(context.Context, string, uint64, []byte) (bool, error) { return false, nil }

func (NopCache) Invalidate(context.Context, string) error { return nil }
