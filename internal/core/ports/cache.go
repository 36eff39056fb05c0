// internal/core/ports/cache.go
package ports

import (
	"context"
	"time"
)

// CacheRepository defines caching operations used by the services. Values
// are JSON-serialized by the implementation.
type CacheRepository interface {
	// Set stores a value with the default TTL
	Set(ctx context.Context, key string, value interface{}) error

	// SetWithTTL stores a value with a custom TTL
	SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Get retrieves a value into dest, returning ErrCacheMiss when absent
	Get(ctx context.Context, key string, dest interface{}) error

	// Delete removes one or more keys
	Delete(ctx context.Context, keys ...string) error

	// DeletePattern removes all keys matching a glob pattern
	DeletePattern(ctx context.Context, pattern string) error

	// GetOrSet retrieves a value, computing and storing it on a miss
	GetOrSet(ctx context.Context, key string, dest interface{}, fn func() (interface{}, error), ttl time.Duration) error

	// Ping checks the cache connection
	Ping(ctx context.Context) error
}
