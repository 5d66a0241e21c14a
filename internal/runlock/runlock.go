// Package runlock serializes runs with a filesystem lock so two
// invocations never move the same items.
package runlock

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"mediasort/internal/services"
)

// Lock guards a single organizing run.
type Lock struct {
	lock *flock.Flock
	path string
}

// Acquire takes the lock at path without blocking. A held lock returns
// services.ErrLockHeld; the caller exits instead of waiting behind an
// unknown amount of other work.
func Acquire(path string) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure lock directory: %w", err)
	}
	fileLock := flock.New(path)
	ok, err := fileLock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", path, err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrLockHeld, "runlock", "acquire", path, nil)
	}
	return &Lock{lock: fileLock, path: path}, nil
}

// Release drops the lock.
func (l *Lock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	return l.lock.Unlock()
}

// Path returns the lock file location.
func (l *Lock) Path() string {
	return l.path
}
