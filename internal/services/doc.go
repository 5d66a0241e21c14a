// Package services defines the sentinel error markers and wrapping
// helper shared across the organizing pipeline, so failures classify
// consistently into skipped versus failed outcomes.
package services
