// Package logging wraps log/slog construction and provides attribute helpers
// so the rest of the codebase never imports slog directly for field building.
//
// Output formats: "console" (text), "json", or "auto" which selects console
// when stdout is a terminal and json otherwise. When a log directory is
// configured, records are mirrored to mediasort.log inside it.
package logging
