package stability

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"mediasort/internal/logging"
)

// Outcome is the detector's verdict for an item.
type Outcome string

const (
	// OutcomeStable means the item is safe to move.
	OutcomeStable Outcome = "stable"
	// OutcomeDeferred means the item should be retried on a later run.
	OutcomeDeferred Outcome = "deferred"
)

// SyncChecker reports whether a path is still being transferred by a
// sync service. ok is false when the service could not answer, in which
// case the detector falls back to local evidence.
type SyncChecker interface {
	ItemSyncing(ctx context.Context, path string) (syncing bool, ok bool)
}

// Detector decides whether an item has finished transferring. Evidence
// is consulted cheapest-first: the sync service, then transfer marker
// files, then repeated size observations.
type Detector struct {
	checker    SyncChecker
	markers    []string
	interval   time.Duration
	required   int
	maxRetries int
	logger     *slog.Logger
	sleep      func(ctx context.Context, d time.Duration) error
}

// Option configures a Detector.
type Option func(*Detector)

// WithSleep overrides the inter-poll wait, for tests.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(d *Detector) {
		if sleep != nil {
			d.sleep = sleep
		}
	}
}

// New creates a Detector. checker may be nil when no sync service is
// configured.
func New(checker SyncChecker, markerPatterns []string, interval time.Duration, required, maxRetries int, logger *slog.Logger, opts ...Option) *Detector {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	detector := &Detector{
		checker:    checker,
		markers:    markerPatterns,
		interval:   interval,
		required:   required,
		maxRetries: maxRetries,
		logger:     logger,
		sleep:      sleepContext,
	}
	for _, opt := range opts {
		opt(detector)
	}
	return detector
}

// Wait blocks until path is judged stable or the retry budget runs out.
func (d *Detector) Wait(ctx context.Context, path string) (Outcome, error) {
	if d.checker != nil {
		if syncing, ok := d.checker.ItemSyncing(ctx, path); ok {
			if syncing {
				d.logger.Info("sync service reports transfer in progress",
					logging.String("path", path))
				return OutcomeDeferred, nil
			}
			// Service says complete; markers can still lag behind.
		}
	}

	found, err := d.scanMarkers(path)
	if err != nil {
		return OutcomeDeferred, err
	}
	if found != "" {
		d.logger.Info("transfer marker present",
			logging.String("path", path),
			logging.String("marker", found))
		return OutcomeDeferred, nil
	}

	return d.pollSize(ctx, path)
}

// QuickCheck is the cheap pre-move recheck: sync service if available,
// otherwise a single marker scan. It never polls.
func (d *Detector) QuickCheck(ctx context.Context, path string) (stable bool, err error) {
	if d.checker != nil {
		if syncing, ok := d.checker.ItemSyncing(ctx, path); ok {
			return !syncing, nil
		}
	}
	found, err := d.scanMarkers(path)
	if err != nil {
		return false, err
	}
	return found == "", nil
}

func (d *Detector) pollSize(ctx context.Context, path string) (Outcome, error) {
	tracker := NewTracker(d.required, d.maxRetries)
	for {
		snapshot, err := measure(path)
		if err != nil {
			return OutcomeDeferred, fmt.Errorf("measure %s: %w", path, err)
		}
		switch tracker.Observe(snapshot) {
		case StateStable:
			return OutcomeStable, nil
		case StateUnstable:
			d.logger.Info("sizes still changing, deferring",
				logging.String("path", path),
				logging.Int("files", len(snapshot)),
				logging.Int64("total_bytes", snapshot.Total()))
			return OutcomeDeferred, nil
		}
		if err := d.sleep(ctx, d.interval); err != nil {
			return OutcomeDeferred, err
		}
	}
}

// scanMarkers walks path looking for any entry whose base name matches
// one of the configured marker patterns. Returns the first match.
func (d *Detector) scanMarkers(path string) (string, error) {
	if len(d.markers) == 0 {
		return "", nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.IsDir() {
		if pattern := d.matchMarker(filepath.Base(path)); pattern != "" {
			return path, nil
		}
		return "", nil
	}

	var found string
	err = filepath.WalkDir(path, func(entryPath string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if pattern := d.matchMarker(entry.Name()); pattern != "" {
			found = entryPath
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("scan markers in %s: %w", path, err)
	}
	return found, nil
}

func (d *Detector) matchMarker(name string) string {
	for _, pattern := range d.markers {
		if ok, err := filepath.Match(pattern, name); err == nil && ok {
			return pattern
		}
	}
	return ""
}

// measure returns a per-file size snapshot: one entry for a standalone
// file, one entry per regular file under a directory.
func measure(path string) (Snapshot, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return Snapshot{path: info.Size()}, nil
	}
	snapshot := Snapshot{}
	err = filepath.WalkDir(path, func(entryPath string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			// Entries can vanish mid-transfer; record what remains.
			if os.IsNotExist(walkErr) {
				return nil
			}
			return walkErr
		}
		if entry.Type().IsRegular() {
			entryInfo, infoErr := entry.Info()
			if infoErr != nil {
				if os.IsNotExist(infoErr) {
					return nil
				}
				return infoErr
			}
			snapshot[entryPath] = entryInfo.Size()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
