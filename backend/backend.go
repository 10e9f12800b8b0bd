// Package backend defines the persistence abstraction used by encstore.
//
// A Backend is a string-keyed, string-valued store. Implementations MUST be
// transparent: Get must return exactly the string previously passed to Set
// for a key (no prepended metadata, no re-encoding). encstore owns the value
// format; backends only move strings around.
//
// Keys handed to a backend are physical keys: when the facade is configured
// with a prefix they look like "<prefix>:<logical key>". Backends must accept
// any UTF-8 key; adapters whose medium restricts the key alphabet (NATS KV)
// escape keys internally and unescape them in Keys.
package backend

import (
	"context"
	"errors"
	"time"
)

// ErrRejected is returned by Set when the store refused the write under
// pressure (admission policy, full buffers).
var ErrRejected = errors.New("backend: write rejected")

// SetOptions are backend-specific write options passed through unchanged by
// the facade. Adapters ignore fields they do not support.
type SetOptions struct {
	// TTL bounds the lifetime of the entry; <= 0 means no expiry.
	TTL time.Duration
	// Cost is the admission cost for cost-based caches; 0 means 1.
	Cost int64
}

// Backend is a minimal string store.
// Must be safe for concurrent use.
type Backend interface {
	// Get returns (value, true, nil) on hit; ("", false, nil) on miss.
	// If an IO/remote error happens, return ("", false, err).
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string, opts SetOptions) error

	// Remove deletes a key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error

	// Clear removes every key held by the store.
	Clear(ctx context.Context) error

	// Len returns the number of keys currently held.
	Len(ctx context.Context) (int, error)

	// Close releases resources.
	Close(ctx context.Context) error
}

// Lister is implemented by backends that can enumerate their keys.
type Lister interface {
	Keys(ctx context.Context) ([]string, error)
}

// Indexer is implemented by backends with a positional key primitive,
// in the manner of the Web Storage key(index) call.
type Indexer interface {
	// Key returns the key at index, or ("", false, nil) when out of range.
	Key(ctx context.Context, index int) (string, bool, error)
}

// Keys enumerates the keys of b. It prefers Lister, falls back to walking
// Indexer over Len, and returns nil when b supports neither.
func Keys(ctx context.Context, b Backend) ([]string, error) {
	if l, ok := b.(Lister); ok {
		return l.Keys(ctx)
	}
	ix, ok := b.(Indexer)
	if !ok {
		return nil, nil
	}
	n, err := b.Len(ctx)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, n)
	for i := 0; i < n; i++ {
		k, ok, err := ix.Key(ctx, i)
		if err != nil {
			return nil, err
		}
		if ok {
			keys = append(keys, k)
		}
	}
	return keys, nil
}
