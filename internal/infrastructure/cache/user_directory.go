package cache

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/johnquangdev/meeting-whisperer/internal/domain/entities"
)

const activeUsersKey = "users:active"

// UserLister loads the active user directory
type UserLister interface {
	ListActive(ctx context.Context) ([]*entities.User, error)
}

// UserDirectory caches the active user list used for assignee resolution
type UserDirectory struct {
	source UserLister
	cache  *gocache.Cache
	mu     sync.Mutex
}

// NewUserDirectory creates a directory whose snapshot expires after ttl
func NewUserDirectory(source UserLister, ttl time.Duration) *UserDirectory {
	return &UserDirectory{
		source: source,
		cache:  gocache.New(ttl, 2*ttl),
	}
}

// ListActive returns the cached snapshot, loading it from the source when stale
func (d *UserDirectory) ListActive(ctx context.Context) ([]*entities.User, error) {
	if cached, ok := d.cache.Get(activeUsersKey); ok {
		return cached.([]*entities.User), nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	// Another caller may have filled the cache while we waited
	if cached, ok := d.cache.Get(activeUsersKey); ok {
		return cached.([]*entities.User), nil
	}

	users, err := d.source.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	d.cache.Set(activeUsersKey, users, gocache.DefaultExpiration)
	return users, nil
}

// Invalidate drops the cached snapshot
func (d *UserDirectory) Invalidate() {
	d.cache.Delete(activeUsersKey)
}
