package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrParse         = errors.New("parse error")
	ErrConfiguration = errors.New("configuration error")
	ErrUnstable      = errors.New("transfer not stable")
	ErrRaceDetected  = errors.New("transfer resumed")
	ErrAlreadyPlaced = errors.New("already at destination")
	ErrFilesystem    = errors.New("filesystem error")
	ErrLockHeld      = errors.New("another run is active")
)

// Disposition is what happens to an item after its error is classified.
type Disposition string

const (
	// DispositionSkipped covers items that were left in place on purpose
	// and will be picked up by a later run.
	DispositionSkipped Disposition = "skipped"
	// DispositionFailed covers items that hit a real fault.
	DispositionFailed Disposition = "failed"
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrFilesystem
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Classify maps an item error to the disposition a run report should record.
// Unparseable names, deferred transfers, and detected races are expected
// outcomes that a later run or an operator rename resolves; only filesystem
// and configuration faults count as failures.
func Classify(err error) Disposition {
	switch {
	case errors.Is(err, ErrParse), errors.Is(err, ErrUnstable):
		return DispositionSkipped
	case errors.Is(err, ErrRaceDetected), errors.Is(err, ErrAlreadyPlaced):
		return DispositionSkipped
	default:
		return DispositionFailed
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
