package cache

import (
	"context"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func TestStoreGetMissingReturnsNil(t *testing.T) {
	store := newTestStore(t)

	entry, err := store.Get(context.Background(), "the pitt")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if entry != nil {
		t.Fatalf("expected nil entry for missing key, got %+v", entry)
	}
}

func TestStorePutGetRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	fetched := time.Date(2026, 8, 1, 12, 30, 0, 0, time.UTC)
	put := Entry{Key: "severance", Status: "current", ProviderID: "371980", FetchedAt: fetched}
	if err := store.Put(ctx, put); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}

	got, err := store.Get(ctx, "severance")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got == nil {
		t.Fatal("expected entry, got nil")
	}
	if got.Status != "current" || got.ProviderID != "371980" {
		t.Fatalf("unexpected entry: %+v", got)
	}
	if !got.FetchedAt.Equal(fetched) {
		t.Fatalf("fetched_at round trip mismatch: got %v want %v", got.FetchedAt, fetched)
	}
}

func TestStorePutUpsertsLastWriteWins(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := Entry{Key: "mash", Status: "current", FetchedAt: time.Now().Add(-time.Hour)}
	second := Entry{Key: "mash", Status: "concluded", ProviderID: "77634", FetchedAt: time.Now()}
	if err := store.Put(ctx, first); err != nil {
		t.Fatalf("first Put returned error: %v", err)
	}
	if err := store.Put(ctx, second); err != nil {
		t.Fatalf("second Put returned error: %v", err)
	}

	got, err := store.Get(ctx, "mash")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got.Status != "concluded" {
		t.Fatalf("expected upserted status %q, got %q", "concluded", got.Status)
	}
	if got.ProviderID != "77634" {
		t.Fatalf("expected provider id to be replaced, got %q", got.ProviderID)
	}
}

func TestStoreGetReturnsStaleEntries(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	stale := Entry{Key: "breaking bad", Status: "concluded", FetchedAt: time.Now().Add(-30 * 24 * time.Hour)}
	if err := store.Put(ctx, stale); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}

	got, err := store.Get(ctx, "breaking bad")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got == nil {
		t.Fatal("stale entries must still be returned, got nil")
	}
	if age := got.Age(time.Now()); age < 29*24*time.Hour {
		t.Fatalf("expected stale age, got %v", age)
	}
}

func TestStoreClear(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, key := range []string{"a", "b", "c"} {
		if err := store.Put(ctx, Entry{Key: key, Status: "current"}); err != nil {
			t.Fatalf("Put(%q) returned error: %v", key, err)
		}
	}

	removed, err := store.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear returned error: %v", err)
	}
	if removed != 3 {
		t.Fatalf("expected 3 removed, got %d", removed)
	}

	entry, err := store.Get(ctx, "a")
	if err != nil {
		t.Fatalf("Get after Clear returned error: %v", err)
	}
	if entry != nil {
		t.Fatalf("expected cache empty after Clear, got %+v", entry)
	}
}

func TestStoreReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := Open(dir)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if err := store.Put(ctx, Entry{Key: "andor", Status: "current"}); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	reopened, err := Open(dir)
	if err != nil {
		t.Fatalf("reopen returned error: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Get(ctx, "andor")
	if err != nil {
		t.Fatalf("Get after reopen returned error: %v", err)
	}
	if got == nil || got.Status != "current" {
		t.Fatalf("expected persisted entry, got %+v", got)
	}
}
