// Package cache persists show-status lookups between runs in a small SQLite
// database. Entries are written on every successful provider call and are
// never evicted: stale rows stay readable so the classifier can fall back to
// them when the provider is unreachable. Writes are last-write-wins; the
// process-wide run lock means no cross-process coordination is needed.
package cache
