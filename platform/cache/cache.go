// Package cache provides the distributed key/value cache used to keep
// upstream data between requests. Entries carry a sliding expiration:
// every successful read restarts the entry's window.
// This is part of the platform layer and contains no business logic.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// EntryOptions controls how long an entry lives.
type EntryOptions struct {
	// SlidingExpiration is the idle window after which the entry is evicted.
	// Zero means the entry does not expire.
	SlidingExpiration time.Duration
}

// Store is a byte-oriented cache with per-entry sliding expiration.
type Store interface {
	// Get returns the stored bytes and true, or nil and false when the key is absent.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value under key, replacing any previous entry.
	Set(ctx context.Context, key string, value []byte, opts EntryOptions) error
	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error
}

// GetValue reads key and decodes its JSON payload into T.
// A missing key yields the zero value of T and no error.
func GetValue[T any](ctx context.Context, store Store, key string) (T, error) {
	var value T

	data, ok, err := store.Get(ctx, key)
	if err != nil {
		return value, err
	}
	if !ok {
		return value, nil
	}

	if err := json.Unmarshal(data, &value); err != nil {
		return value, fmt.Errorf("decode cache entry %q: %w", key, err)
	}
	return value, nil
}

// SetValue encodes value as JSON and stores it under key.
func SetValue[T any](ctx context.Context, store Store, key string, value T, opts EntryOptions) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cache entry %q: %w", key, err)
	}
	return store.Set(ctx, key, data, opts)
}
