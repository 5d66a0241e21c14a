package testsupport

import (
	"path/filepath"
	"testing"

	"mediasort/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.SourceDir = filepath.Join(base, "downloads")
	cfgVal.Paths.MoviesDir = filepath.Join(base, "movies")
	cfgVal.Paths.TVCurrentDir = filepath.Join(base, "tv")
	cfgVal.Paths.TVConcludedDir = filepath.Join(base, "tv-done")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.CacheDir = filepath.Join(base, "cache")
	cfgVal.Paths.LockFile = filepath.Join(base, "mediasort.lock")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithProviderKey sets the status provider API key on the test config.
func WithProviderKey(key string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Provider.APIKey = key
	}
}

// WithThreshold overrides the folder match threshold on the test config.
func WithThreshold(threshold int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Matcher.Threshold = threshold
	}
}
