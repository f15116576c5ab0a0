package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/johnquangdev/meeting-whisperer/internal/domain/entities"
)

func TestMemoryStore_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	defer store.Close()

	if err := store.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	v, ok, err := store.Get(ctx, "k")
	if err != nil || !ok || v != "v" {
		t.Fatalf("unexpected get result %q %v %v", v, ok, err)
	}
	_ = store.Delete(ctx, "k")
	if _, ok, _ := store.Get(ctx, "k"); ok {
		t.Fatal("deleted key should be missing")
	}
}

func TestMemoryStore_Expiration(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	defer store.Close()

	_ = store.Set(ctx, "k", "v", 10*time.Millisecond)
	_ = store.Set(ctx, "keep", "v", 0)
	time.Sleep(30 * time.Millisecond)

	if _, ok, _ := store.Get(ctx, "k"); ok {
		t.Fatal("expired key should be missing")
	}
	if _, ok, _ := store.Get(ctx, "keep"); !ok {
		t.Fatal("key without expiration should be kept")
	}
}

type countingLister struct {
	calls int
	users []*entities.User
	err   error
}

func (l *countingLister) ListActive(context.Context) ([]*entities.User, error) {
	l.calls++
	return l.users, l.err
}

func TestUserDirectory_CachesSnapshot(t *testing.T) {
	lister := &countingLister{users: []*entities.User{{ID: uuid.New(), Email: "a@x.test"}}}
	dir := NewUserDirectory(lister, time.Minute)

	for i := 0; i < 3; i++ {
		users, err := dir.ListActive(context.Background())
		if err != nil || len(users) != 1 {
			t.Fatalf("unexpected result %v %v", users, err)
		}
	}
	if lister.calls != 1 {
		t.Fatalf("expected 1 source call, got %d", lister.calls)
	}

	dir.Invalidate()
	_, _ = dir.ListActive(context.Background())
	if lister.calls != 2 {
		t.Fatalf("expected reload after invalidate, got %d calls", lister.calls)
	}
}

func TestUserDirectory_DoesNotCacheErrors(t *testing.T) {
	lister := &countingLister{err: errors.New("db down")}
	dir := NewUserDirectory(lister, time.Minute)

	if _, err := dir.ListActive(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	lister.err = nil
	if _, err := dir.ListActive(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lister.calls != 2 {
		t.Fatalf("expected 2 calls, got %d", lister.calls)
	}
}
