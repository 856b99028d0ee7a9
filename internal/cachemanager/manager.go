// Package cachemanager provides a typed in-memory cache used to memoize
// resolved templates for the duration of a run.
package cachemanager

import "context"

// Cache is a typed key/value cache.
type Cache[V any] interface {
	Get(ctx context.Context, key string) (V, bool)
	Set(ctx context.Context, key string, value V)
	Flush(ctx context.Context)
}
