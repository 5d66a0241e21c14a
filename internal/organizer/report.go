package organizer

import (
	"mediasort/internal/classify"
	"mediasort/internal/services"
)

// Outcome is what happened to one item during a run.
type Outcome string

const (
	// OutcomeMoved means the item now lives in the library.
	OutcomeMoved Outcome = "moved"
	// OutcomePlanned means a dry run would have moved the item.
	OutcomePlanned Outcome = "planned"
	// OutcomeSkipped means the item stays in the source for a later run.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeFailed means the item hit an unrecoverable problem.
	OutcomeFailed Outcome = "failed"
)

// Record captures the result for a single item.
type Record struct {
	Source      string
	Name        string
	Title       string
	Category    classify.Category
	Destination string
	Outcome     Outcome
	Err         error
}

// withError stores err on the record and derives the outcome from its
// disposition, so deferred items count as skipped rather than failed.
func (r Record) withError(err error) Record {
	r.Err = err
	if services.Classify(err) == services.DispositionSkipped {
		r.Outcome = OutcomeSkipped
	} else {
		r.Outcome = OutcomeFailed
	}
	return r
}

// Report aggregates the records of one run.
type Report struct {
	DryRun  bool
	Records []Record

	Moved   int
	Planned int
	Skipped int
	Failed  int
}

// Add appends a record and updates the tallies.
func (r *Report) Add(record Record) {
	r.Records = append(r.Records, record)
	switch record.Outcome {
	case OutcomeMoved:
		r.Moved++
	case OutcomePlanned:
		r.Planned++
	case OutcomeSkipped:
		r.Skipped++
	case OutcomeFailed:
		r.Failed++
	}
}

// HasFailures reports whether any item failed outright.
func (r *Report) HasFailures() bool {
	return r.Failed > 0
}
