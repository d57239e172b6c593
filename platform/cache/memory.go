package cache

import (
	"context"

	"github.com/jellydator/ttlcache/v3"
)

// MemoryStore is an in-process Store for local development and tests.
// Reads touch the entry, which gives the same sliding behaviour as RedisStore.
type MemoryStore struct {
	items *ttlcache.Cache[string, []byte]
}

// NewMemoryStore creates a MemoryStore and starts its expiry loop.
// Call Close to stop the loop.
func NewMemoryStore() *MemoryStore {
	items := ttlcache.New[string, []byte]()
	go items.Start()
	return &MemoryStore{items: items}
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	item := s.items.Get(key)
	if item == nil {
		return nil, false, nil
	}
	value := item.Value()
	out := make([]byte, len(value))
	copy(out, value)
	return out, true, nil
}

// Set implements Store.
func (s *MemoryStore) Set(_ context.Context, key string, value []byte, opts EntryOptions) error {
	ttl := ttlcache.NoTTL
	if opts.SlidingExpiration > 0 {
		ttl = opts.SlidingExpiration
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	s.items.Set(key, stored, ttl)
	return nil
}

// Ping implements Store.
func (s *MemoryStore) Ping(context.Context) error {
	return nil
}

// Close stops the expiry loop.
func (s *MemoryStore) Close() {
	s.items.Stop()
}

var _ Store = (*MemoryStore)(nil)
