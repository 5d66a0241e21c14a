package stability

import "maps"

// State describes where an item sits in the stability check.
type State string

const (
	// StateUnknown means no observation has been made yet.
	StateUnknown State = "unknown"
	// StateChecking means observations are in progress.
	StateChecking State = "checking"
	// StateStable means the required consecutive unchanged reads were seen.
	StateStable State = "stable"
	// StateUnstable means the sizes kept changing past the retry budget.
	StateUnstable State = "unstable"
)

// Snapshot records the size of every file under an item at one instant,
// keyed by path. A standalone file is a one-entry snapshot. Two
// snapshots are equal only when the same files exist with the same
// sizes, so one file growing while another shrinks still reads as a
// change even though the total is constant.
type Snapshot map[string]int64

// Total returns the combined size of all files in the snapshot.
func (s Snapshot) Total() int64 {
	var total int64
	for _, size := range s {
		total += size
	}
	return total
}

// Tracker runs the size-observation state machine for one item. The
// transition rules are pure: state depends only on the sequence of
// observed snapshots, never on wall-clock time.
type Tracker struct {
	state      State
	required   int
	maxRetries int

	last    Snapshot
	hasLast bool
	streak  int
	changes int
}

// NewTracker creates a tracker needing required consecutive unchanged
// reads, giving up after maxRetries snapshot changes.
func NewTracker(required, maxRetries int) *Tracker {
	if required < 1 {
		required = 1
	}
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &Tracker{
		state:      StateUnknown,
		required:   required,
		maxRetries: maxRetries,
	}
}

// State returns the current state.
func (t *Tracker) State() State {
	return t.state
}

// Observe records one snapshot and returns the resulting state. Any
// per-file difference resets the stable streak; terminal states are
// sticky.
func (t *Tracker) Observe(snapshot Snapshot) State {
	if t.state == StateStable || t.state == StateUnstable {
		return t.state
	}
	if !t.hasLast {
		t.hasLast = true
		t.last = snapshot
		t.state = StateChecking
		return t.state
	}

	if maps.Equal(snapshot, t.last) {
		t.streak++
		if t.streak >= t.required {
			t.state = StateStable
		}
		return t.state
	}

	t.last = snapshot
	t.streak = 0
	t.changes++
	if t.changes >= t.maxRetries {
		t.state = StateUnstable
	}
	return t.state
}
