package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const memoryCleanupInterval = 5 * time.Minute

// MemoryStore keeps values in process. Used when Redis is disabled, so
// progress is only visible to the API that runs the workers.
type MemoryStore struct {
	items *gocache.Cache
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates a store whose expired keys are swept periodically
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: gocache.New(gocache.NoExpiration, memoryCleanupInterval)}
}

// Set stores value under key. A non-positive expiration keeps it until deleted.
func (ms *MemoryStore) Set(_ context.Context, key string, value string, expiration time.Duration) error {
	if expiration <= 0 {
		expiration = gocache.NoExpiration
	}
	ms.items.Set(key, value, expiration)
	return nil
}

// Get retrieves a value by key; missing and expired keys report false
func (ms *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := ms.items.Get(key)
	if !ok {
		return "", false, nil
	}
	s, ok := v.(string)
	return s, ok, nil
}

// Delete removes a key
func (ms *MemoryStore) Delete(_ context.Context, key string) error {
	ms.items.Delete(key)
	return nil
}

// Close drops every item
func (ms *MemoryStore) Close() {
	ms.items.Flush()
}
