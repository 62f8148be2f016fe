package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/talentloop/portal/internal/core/domain"
)

func TestFileKV_PersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "session.yaml")

	first := NewFileKV(path)
	if _, err := first.Get(ctx, "k"); !errors.Is(err, domain.ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound on missing file, got %v", err)
	}
	if err := first.Set(ctx, "k", "v"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	second := NewFileKV(path)
	got, err := second.Get(ctx, "k")
	if err != nil || got != "v" {
		t.Fatalf("Get: %q %v", got, err)
	}

	if err := second.Delete(ctx, "k", "absent"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := first.Get(ctx, "k"); !errors.Is(err, domain.ErrKeyNotFound) {
		t.Fatalf("expected key deleted, got %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected 0600 permissions, got %v", info.Mode().Perm())
	}
}

func TestFileKV_BacksSessionStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.yaml")
	clock := &fakeClock{now: time.UnixMilli(1_700_000_000_000)}

	_ = NewStore(NewFileKV(path), Options{Clock: clock.Now}).Persist(ctx, "tok")

	reopened := NewStore(NewFileKV(path), Options{Clock: clock.Now})
	if !reopened.IsActive(ctx) {
		t.Fatalf("expected session to survive reopening the file")
	}
}

func TestFileKV_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yaml")
	if err := os.WriteFile(path, []byte("- not\n- a map\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := NewFileKV(path).Get(context.Background(), "k"); err == nil || errors.Is(err, domain.ErrKeyNotFound) {
		t.Fatalf("expected decode error, got %v", err)
	}
}
