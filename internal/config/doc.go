// Package config loads, defaults, and validates the mediasort TOML
// configuration. Path fields are tilde-expanded and made absolute during
// load; callers can rely on them being usable directly.
package config
