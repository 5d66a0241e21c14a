package runlock

import (
	"errors"
	"path/filepath"
	"testing"

	"mediasort/internal/services"
)

func TestAcquireAndRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "locks", "mediasort.lock")

	lock, err := Acquire(path)
	if err != nil {
		t.Fatalf("Acquire returned error: %v", err)
	}
	if lock.Path() != path {
		t.Fatalf("unexpected lock path %q", lock.Path())
	}
	if err := lock.Release(); err != nil {
		t.Fatalf("Release returned error: %v", err)
	}
}

func TestAcquireHeldLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mediasort.lock")

	first, err := Acquire(path)
	if err != nil {
		t.Fatalf("first Acquire returned error: %v", err)
	}
	defer first.Release()

	_, err = Acquire(path)
	if err == nil {
		t.Fatal("expected second Acquire to fail")
	}
	if !errors.Is(err, services.ErrLockHeld) {
		t.Fatalf("expected lock-held marker, got %v", err)
	}
}

func TestReacquireAfterRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mediasort.lock")

	first, err := Acquire(path)
	if err != nil {
		t.Fatalf("Acquire returned error: %v", err)
	}
	if err := first.Release(); err != nil {
		t.Fatalf("Release returned error: %v", err)
	}

	second, err := Acquire(path)
	if err != nil {
		t.Fatalf("reacquire returned error: %v", err)
	}
	defer second.Release()
}

func TestReleaseNil(t *testing.T) {
	var lock *Lock
	if err := lock.Release(); err != nil {
		t.Fatalf("nil Release must be a no-op, got %v", err)
	}
}
