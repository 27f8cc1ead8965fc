// Package cache stores rendered tree artifacts so repeated renders of an
// unchanged tree skip Graphviz.
//
// Two implementations of [Cache] are provided: [FileCache] for the CLI and
// [NullCache] when caching is disabled. Keys come from a [Keyer] and are
// derived from the document content, so an edited tree never hits a stale
// entry.
package cache

import (
	"context"
	"time"

	"github.com/matzehuels/bteditor/pkg/observability"
)

// Cache is a byte store with optional expiry.
type Cache interface {
	// Get returns the cached value and whether it was found. An expired
	// entry is a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	Close() error
}

// Fetch returns the value cached under key, or calls fill and caches its
// result for ttl. Cache read and write failures fall through to fill and
// are not reported; fill errors are returned and nothing is cached.
// keyType labels the cache hooks, e.g. "svg".
func Fetch(ctx context.Context, c Cache, keyType, key string, ttl time.Duration, fill func() ([]byte, error)) ([]byte, error) {
	hooks := observability.Cache()
	if data, ok, err := c.Get(ctx, key); err == nil && ok {
		hooks.OnCacheHit(ctx, keyType)
		return data, nil
	}
	hooks.OnCacheMiss(ctx, keyType)

	data, err := fill()
	if err != nil {
		return nil, err
	}
	if err := c.Set(ctx, key, data, ttl); err == nil {
		hooks.OnCacheSet(ctx, keyType, len(data))
	}
	return data, nil
}
