// Package cache provides the byte cache behind costgraph's API client and
// HTTP server.
//
// # Backends
//
//   - [FileCache]: entries as JSON files under the user cache directory (CLI default)
//   - [RedisCache]: a shared Redis instance (server deployments)
//   - [NullCache]: never stores anything (--no-cache, tests)
//
// # Keys
//
// A [Keyer] builds every key so all backends agree on the layout:
//
//	k := cache.NewDefaultKeyer()
//	key := k.HTTPKey("pipelines:", "graph/Smart City Operations Platform/AWS")
//
// [NewNamespace] prefixes every key so deployments can share a backend.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values under string keys.
type Cache interface {
	// Get returns the value for key. ok is false on a miss or expired entry.
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)

	// Set stores data under key. A ttl of 0 means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// NullCache is the no-op backend: Set discards and Get always misses.
type NullCache struct{}

// NewNullCache returns a [NullCache].
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error { return nil }
func (NullCache) Close() error { return nil }
