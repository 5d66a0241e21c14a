// Package classify decides which library an item belongs to by
// combining parse results with cached show-status lookups.
package classify
