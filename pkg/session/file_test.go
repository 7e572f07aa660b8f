package session

import (
	"context"
	"os"
	"testing"
	"time"
)

func TestFileStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error: %v", err)
	}

	sess, err := New(testIdentity, DefaultTTL)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if err := store.Set(ctx, sess); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	got, err := store.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got == nil || got.Identity.Email != "a@example.com" {
		t.Errorf("Get() = %+v, want stored session", got)
	}

	if err := store.Delete(ctx, sess.ID); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if got, _ := store.Get(ctx, sess.ID); got != nil {
		t.Errorf("Get() after delete = %+v, want nil", got)
	}
	// Deleting a missing session is not an error.
	if err := store.Delete(ctx, sess.ID); err != nil {
		t.Errorf("second Delete() = %v, want nil", err)
	}
}

func TestFileStore_FilePermissions(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error: %v", err)
	}
	sess, _ := New(testIdentity, DefaultTTL)
	if err := store.Set(ctx, sess); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	info, err := os.Stat(store.sessionPath(sess.ID))
	if err != nil {
		t.Fatalf("stat session file: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("session file mode = %o, want 0600", perm)
	}
}

func TestFileStore_ExpiredSessionRemovedOnGet(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error: %v", err)
	}
	sess, _ := New(testIdentity, -time.Minute)
	if err := store.Set(ctx, sess); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	got, err := store.Get(ctx, sess.ID)
	if err != nil || got != nil {
		t.Errorf("Get() expired = %v, %v, want nil, nil", got, err)
	}
	if _, err := os.Stat(store.sessionPath(sess.ID)); !os.IsNotExist(err) {
		t.Error("expired session file not removed")
	}
}

func TestFileStore_Cleanup(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error: %v", err)
	}
	alive, _ := New(testIdentity, DefaultTTL)
	dead, _ := New(testIdentity, -time.Minute)
	store.Set(ctx, alive)
	store.Set(ctx, dead)

	if err := store.Cleanup(ctx); err != nil {
		t.Fatalf("Cleanup() error: %v", err)
	}
	if _, err := os.Stat(store.sessionPath(dead.ID)); !os.IsNotExist(err) {
		t.Error("expired session survived cleanup")
	}
	if got, _ := store.Get(ctx, alive.ID); got == nil {
		t.Error("Cleanup() removed a live session")
	}
}
