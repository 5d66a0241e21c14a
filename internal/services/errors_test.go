package services_test

import (
	"errors"
	"strings"
	"testing"

	"mediasort/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrFilesystem, "organizer", "move", "rename failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrFilesystem) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"organizer", "move", "rename failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapNilMarkerDefaults(t *testing.T) {
	err := services.Wrap(nil, "organizer", "move", "", errors.New("io"))
	if !errors.Is(err, services.ErrFilesystem) {
		t.Fatalf("expected filesystem marker default, got %v", err)
	}
}

func TestClassify(t *testing.T) {
	unstable := services.Wrap(services.ErrUnstable, "stability", "wait", "still transferring", nil)
	if got := services.Classify(unstable); got != services.DispositionSkipped {
		t.Fatalf("expected skipped for unstable, got %s", got)
	}

	race := services.Wrap(services.ErrRaceDetected, "organizer", "precheck", "sync resumed", nil)
	if got := services.Classify(race); got != services.DispositionSkipped {
		t.Fatalf("expected skipped for race, got %s", got)
	}

	placed := services.Wrap(services.ErrAlreadyPlaced, "organizer", "move", "already in place", nil)
	if got := services.Classify(placed); got != services.DispositionSkipped {
		t.Fatalf("expected skipped for already placed, got %s", got)
	}

	parse := services.Wrap(services.ErrParse, "parse", "name", "no structure", nil)
	if got := services.Classify(parse); got != services.DispositionSkipped {
		t.Fatalf("expected skipped for parse error, got %s", got)
	}

	fsfault := services.Wrap(services.ErrFilesystem, "organizer", "move", "permission denied", nil)
	if got := services.Classify(fsfault); got != services.DispositionFailed {
		t.Fatalf("expected failed for filesystem error, got %s", got)
	}
}
