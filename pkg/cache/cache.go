// Package cache provides the key/value stores snapshots travel through.
//
// The capture job that inspects the database fleet writes the replication
// graph into a cache as two JSON documents, one holding the nodes and one
// holding the edges (see [Keys]). The render command also keeps finished
// diagrams in a local cache. Both go through the [Cache] interface, which
// has three implementations:
//
//   - [RedisCache]: the shared store used in deployments
//   - [FileCache]: a directory on disk, for local use and tests
//   - [NullCache]: never stores anything
//
// Every implementation treats a missing key as a miss, not an error.
// Transient failures are wrapped with [Retryable] so callers can use
// [Backoff.Retry].
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the value for key. The second result is false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}
