package cache

import (
	"context"
	"time"
)

// Cache is the read-cache abstraction used for the item list. The memory
// implementation serves single-instance deployments; swapping in something
// shared requires no change to the services.
type Cache interface {
	// Get retrieves a value by key. Returns ErrCacheMiss if not found.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value by key.
	Delete(ctx context.Context, key string) error

	// Clear removes all entries.
	Clear(ctx context.Context) error

	// Close releases background resources.
	Close() error
}

// CacheError is a sentinel error type for cache operations.
type CacheError string

func (e CacheError) Error() string { return string(e) }

// ErrCacheMiss indicates the key was not found in cache.
const ErrCacheMiss CacheError = "cache miss"
