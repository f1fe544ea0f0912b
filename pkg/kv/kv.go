// Package kv caches list queries against a Tripal site. Callers depend on
// Store; Valkey (or Redis) backs long-lived caches, MemoryStore backs tests
// and single-process use.
package kv

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get for missing or expired keys.
var ErrNotFound = errors.New("kv: no such key")

// Store is a byte-valued cache keyed by string.
type Store interface {
	// Set stores value under key. A ttl of 0 keeps the entry until deleted.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Get returns the value under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete drops key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	Close() error
}
