package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"

	"github.com/talentloop/portal/internal/core/domain"
)

func newTestStore(t *testing.T) (*KVStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client, err := Connect(context.Background(), Config{Addr: mr.Addr()})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	return NewKVStore(client, time.Hour), mr
}

func TestKVStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t)

	if _, err := store.Get(ctx, "v1:auth_token"); !errors.Is(err, domain.ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}

	if err := store.Set(ctx, "v1:auth_token", "tok"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := store.Get(ctx, "v1:auth_token")
	if err != nil || got != "tok" {
		t.Fatalf("Get: %q %v", got, err)
	}
	if !mr.Exists("portal:v1:auth_token") {
		t.Fatalf("expected prefixed key in redis")
	}
	if ttl := mr.TTL("portal:v1:auth_token"); ttl != time.Hour {
		t.Fatalf("expected retention ttl, got %v", ttl)
	}

	_ = store.Set(ctx, "v1:session_expires_at", "1")
	if err := store.Delete(ctx, "v1:auth_token", "v1:session_expires_at", "v1:current_user"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if mr.Exists("portal:v1:auth_token") || mr.Exists("portal:v1:session_expires_at") {
		t.Fatalf("expected keys removed")
	}
}

func TestKVStore_RetentionDropsKeys(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t)

	_ = store.Set(ctx, "k", "v")
	mr.FastForward(2 * time.Hour)

	if _, err := store.Get(ctx, "k"); !errors.Is(err, domain.ErrKeyNotFound) {
		t.Fatalf("expected key dropped after retention, got %v", err)
	}
}

func TestKVStore_Ping(t *testing.T) {
	store, mr := newTestStore(t)
	if err := store.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	mr.Close()
	if err := store.Ping(context.Background()); err == nil {
		t.Fatalf("expected ping failure after close")
	}
}
