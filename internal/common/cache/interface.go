package cache

import (
	"context"
	"time"
)

// Cache defines the interface for cache operations used by the judge.
// This abstraction allows switching between implementations (Redis, local
// memory) without changing business logic, and keeps tests free of a live
// Redis dependency.
type Cache interface {
	// Get retrieves the value for the given key. A missing key returns
	// ("", nil), not an error.
	Get(ctx context.Context, key string) (string, error)

	// Set stores a key-value pair with optional TTL.
	// If ttl is 0, the key will not expire.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// SetNX sets the value only if the key does not exist (atomic operation).
	// Returns true if the key was set, false if it already existed.
	SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error)

	// Del deletes one or more keys
	Del(ctx context.Context, keys ...string) error

	// Exists checks if one or more keys exist.
	// Returns the number of keys that exist.
	Exists(ctx context.Context, keys ...string) (int64, error)

	// Expire sets a timeout on a key
	Expire(ctx context.Context, key string, ttl time.Duration) error

	// TTL returns the remaining time to live of a key.
	// Returns -1 if the key exists but has no expiration.
	// Returns -2 if the key does not exist.
	TTL(ctx context.Context, key string) (time.Duration, error)

	// Ping verifies the cache connection is alive
	Ping(ctx context.Context) error

	// Close closes the cache connection
	Close() error
}
