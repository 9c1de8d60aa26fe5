package feed

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const memoryCacheSize = 128

type memoryEntry struct {
	value      []byte
	generation uint64
}

// MemoryCache is an in-process Cache for single-instance deployments.
type MemoryCache struct {
	mu          sync.Mutex
	generations map[string]uint64
	entries     *expirable.LRU[string, memoryEntry]
}

// NewMemoryCache creates a MemoryCache whose entries expire after ttl.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		generations: make(map[string]uint64),
		entries:     expirable.NewLRU[string, memoryEntry](memoryCacheSize, nil, ttl),
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) (Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	gen := c.generations[key]
	e, ok := c.entries.Get(key)
	if !ok || e.generation != gen {
		return Entry{Generation: gen}, nil
	}
	return Entry{Value: e.value, Generation: gen, Hit: true}, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, generation uint64, value []byte) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generations[key] != generation {
		return false, nil
	}
	c.entries.Add(key, memoryEntry{value: value, generation: generation})
	return true, nil
}

func (c *MemoryCache) Invalidate(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generations[key]++
	c.entries.Remove(key)
	return nil
}
