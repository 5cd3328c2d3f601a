package kvstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

// Helper to create a fresh SQLite store per test.
func createTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "kvstore_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := NewSQLiteStore(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	// Missing key is not an error.
	_, found, err := store.Get(ctx, "memory:ws1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if found {
		t.Error("expected missing key to report found=false")
	}

	if err := store.Put(ctx, "memory:ws1", []byte(`{"version":1}`)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	value, found, err := store.Get(ctx, "memory:ws1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !found {
		t.Fatal("expected key to exist after Put")
	}
	if string(value) != `{"version":1}` {
		t.Errorf("expected stored value, got %q", value)
	}
}

func TestSQLiteStoreOverwrite(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, "k", []byte("first")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := store.Put(ctx, "k", []byte("second")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	value, _, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(value) != "second" {
		t.Errorf("expected last write to win, got %q", value)
	}
}

func TestSQLiteStoreDelete(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := store.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	_, found, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if found {
		t.Error("expected key to be gone after Delete")
	}

	// Deleting a missing key is a no-op.
	if err := store.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete of missing key should not error: %v", err)
	}
}
