package stability

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

type stubChecker struct {
	syncing bool
	ok      bool
	calls   int
}

func (s *stubChecker) ItemSyncing(ctx context.Context, path string) (bool, bool) {
	s.calls++
	return s.syncing, s.ok
}

func noSleep(ctx context.Context, d time.Duration) error { return nil }

var testMarkers = []string{".syncthing.*.tmp", "*.part", ".stfolder"}

func writeTestFile(t *testing.T, path string, size int) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, make([]byte, size), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestWaitStableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "movie.mkv")
	writeTestFile(t, path, 4096)

	detector := New(nil, testMarkers, time.Second, 2, 3, nil, WithSleep(noSleep))
	outcome, err := detector.Wait(context.Background(), path)
	if err != nil {
		t.Fatalf("Wait returned error: %v", err)
	}
	if outcome != OutcomeStable {
		t.Fatalf("expected stable, got %q", outcome)
	}
}

func TestWaitSyncServiceSaysTransferring(t *testing.T) {
	path := filepath.Join(t.TempDir(), "show.mkv")
	writeTestFile(t, path, 1024)

	checker := &stubChecker{syncing: true, ok: true}
	detector := New(checker, testMarkers, time.Second, 2, 3, nil, WithSleep(noSleep))
	outcome, err := detector.Wait(context.Background(), path)
	if err != nil {
		t.Fatalf("Wait returned error: %v", err)
	}
	if outcome != OutcomeDeferred {
		t.Fatalf("expected deferred while syncing, got %q", outcome)
	}
	if checker.calls != 1 {
		t.Fatalf("expected one service query, got %d", checker.calls)
	}
}

func TestWaitMarkerInNestedDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "Show.S01")
	writeTestFile(t, filepath.Join(dir, "e01.mkv"), 512)
	writeTestFile(t, filepath.Join(dir, "Sample", ".syncthing.e02.mkv.tmp"), 16)

	detector := New(nil, testMarkers, time.Second, 2, 3, nil, WithSleep(noSleep))
	outcome, err := detector.Wait(context.Background(), dir)
	if err != nil {
		t.Fatalf("Wait returned error: %v", err)
	}
	if outcome != OutcomeDeferred {
		t.Fatalf("expected deferred with nested marker, got %q", outcome)
	}
}

func TestWaitDefersWhenSizeKeepsGrowing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "growing.mkv")
	writeTestFile(t, path, 100)

	size := 100
	grow := func(ctx context.Context, d time.Duration) error {
		size += 100
		writeTestFile(t, path, size)
		return nil
	}

	detector := New(nil, nil, time.Second, 2, 3, nil, WithSleep(grow))
	outcome, err := detector.Wait(context.Background(), path)
	if err != nil {
		t.Fatalf("Wait returned error: %v", err)
	}
	if outcome != OutcomeDeferred {
		t.Fatalf("expected deferred for growing file, got %q", outcome)
	}
}

func TestWaitStabilizesAfterGrowthStops(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settling.mkv")
	writeTestFile(t, path, 100)

	polls := 0
	settle := func(ctx context.Context, d time.Duration) error {
		polls++
		if polls == 1 {
			writeTestFile(t, path, 200)
		}
		return nil
	}

	detector := New(nil, nil, time.Second, 2, 5, nil, WithSleep(settle))
	outcome, err := detector.Wait(context.Background(), path)
	if err != nil {
		t.Fatalf("Wait returned error: %v", err)
	}
	if outcome != OutcomeStable {
		t.Fatalf("expected stable once growth stops, got %q", outcome)
	}
}

func TestWaitDefersWhenFilesChurnAtConstantTotal(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "Season.Pack")
	writeTestFile(t, filepath.Join(dir, "e01.mkv"), 100)
	writeTestFile(t, filepath.Join(dir, "e02.mkv"), 300)

	// Shift bytes between the two files on every poll; the directory
	// total stays at 400 throughout.
	shift := 0
	churn := func(ctx context.Context, d time.Duration) error {
		shift += 100
		writeTestFile(t, filepath.Join(dir, "e01.mkv"), 100+shift)
		writeTestFile(t, filepath.Join(dir, "e02.mkv"), 300-shift)
		return nil
	}

	detector := New(nil, nil, time.Second, 2, 3, nil, WithSleep(churn))
	outcome, err := detector.Wait(context.Background(), dir)
	if err != nil {
		t.Fatalf("Wait returned error: %v", err)
	}
	if outcome != OutcomeDeferred {
		t.Fatalf("expected deferred while files keep changing, got %q", outcome)
	}
}

func TestWaitMeasuresDirectoryRecursively(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "Season.Pack")
	writeTestFile(t, filepath.Join(dir, "e01.mkv"), 1000)
	writeTestFile(t, filepath.Join(dir, "sub", "e02.mkv"), 2000)

	detector := New(nil, nil, time.Second, 2, 3, nil, WithSleep(noSleep))
	outcome, err := detector.Wait(context.Background(), dir)
	if err != nil {
		t.Fatalf("Wait returned error: %v", err)
	}
	if outcome != OutcomeStable {
		t.Fatalf("expected stable directory, got %q", outcome)
	}
}

func TestWaitContextCancelled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slow.mkv")
	writeTestFile(t, path, 100)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Real sleep honors cancellation immediately.
	detector := New(nil, nil, time.Hour, 5, 10, nil)
	outcome, err := detector.Wait(ctx, path)
	if err == nil {
		t.Fatal("expected context error")
	}
	if outcome != OutcomeDeferred {
		t.Fatalf("expected deferred on cancellation, got %q", outcome)
	}
}

func TestQuickCheck(t *testing.T) {
	t.Run("service answer wins", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "a.mkv")
		writeTestFile(t, path, 10)

		checker := &stubChecker{syncing: true, ok: true}
		detector := New(checker, testMarkers, time.Second, 2, 3, nil)
		stable, err := detector.QuickCheck(context.Background(), path)
		if err != nil {
			t.Fatalf("QuickCheck returned error: %v", err)
		}
		if stable {
			t.Fatal("expected unstable while service reports syncing")
		}
	})

	t.Run("falls back to markers when service unavailable", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "item")
		writeTestFile(t, filepath.Join(dir, "e01.mkv"), 10)
		writeTestFile(t, filepath.Join(dir, "e02.mkv.part"), 10)

		checker := &stubChecker{ok: false}
		detector := New(checker, testMarkers, time.Second, 2, 3, nil)
		stable, err := detector.QuickCheck(context.Background(), dir)
		if err != nil {
			t.Fatalf("QuickCheck returned error: %v", err)
		}
		if stable {
			t.Fatal("expected unstable with marker present")
		}
	})

	t.Run("clean item is stable", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "b.mkv")
		writeTestFile(t, path, 10)

		detector := New(nil, testMarkers, time.Second, 2, 3, nil)
		stable, err := detector.QuickCheck(context.Background(), path)
		if err != nil {
			t.Fatalf("QuickCheck returned error: %v", err)
		}
		if !stable {
			t.Fatal("expected stable for clean file")
		}
	})
}
