package cachemanager

import (
	"context"

	gocache "github.com/patrickmn/go-cache"

	"github.com/hyomoto/vsgen/internal/log"
)

// NewInMemory initializes an in-memory cache. Entries never expire; the
// cache lives for one generator run and is flushed between runs.
func NewInMemory[V any](useCase string) *InMemory[V] {
	return &InMemory[V]{
		useCase: useCase,
		cache:   gocache.New(gocache.NoExpiration, 0),
	}
}

// InMemory is the concrete implementation of the Cache interface.
type InMemory[V any] struct {
	useCase string
	cache   *gocache.Cache
}

// Get retrieves an item from the cache by its key.
func (c *InMemory[V]) Get(ctx context.Context, key string) (V, bool) {
	var zeroValue V

	value, found := c.cache.Get(key)
	if !found {
		return zeroValue, false
	}

	// Type assertion check to ensure the type is correct
	v, ok := value.(V)
	if !ok {
		log.Error(log.CatCache, "wrong type assertion when getting value", "use_case", c.useCase, "key", key)

		return zeroValue, false
	}

	log.Debug(log.CatCache, "cache hit", "use_case", c.useCase, "key", key)

	return v, true
}

// Set stores a value in the cache under key.
func (c *InMemory[V]) Set(ctx context.Context, key string, value V) {
	c.cache.Set(key, value, gocache.NoExpiration)
}

// Flush drops every cached entry.
func (c *InMemory[V]) Flush(ctx context.Context) {
	c.cache.Flush()
}
