package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration for a run.
type Paths struct {
	SourceDir      string `toml:"source_dir"`
	MoviesDir      string `toml:"movies_dir"`
	TVCurrentDir   string `toml:"tv_current_dir"`
	TVConcludedDir string `toml:"tv_concluded_dir"`
	LogDir         string `toml:"log_dir"`
	CacheDir       string `toml:"cache_dir"`
	LockFile       string `toml:"lock_file"`
}

// Provider contains configuration for the show-status metadata provider.
type Provider struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Language       string `toml:"language"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	CacheTTLHours  int    `toml:"cache_ttl_hours"`
}

// Matcher contains fuzzy folder matching configuration.
type Matcher struct {
	Threshold int `toml:"threshold"`
}

// Stability contains transfer-completion detection configuration.
type Stability struct {
	CheckIntervalSeconds int      `toml:"check_interval_seconds"`
	RequiredStableReads  int      `toml:"required_stable_reads"`
	MaxRetries           int      `toml:"max_retries"`
	MarkerPatterns       []string `toml:"marker_patterns"`
}

// Sync contains optional Syncthing REST integration settings.
type Sync struct {
	URL            string   `toml:"url"`
	APIKey         string   `toml:"api_key"`
	TimeoutSeconds int      `toml:"timeout_seconds"`
	PathMapping    []string `toml:"path_mapping"`
}

// Parser contains filename parsing configuration.
type Parser struct {
	Decorations     []string `toml:"decorations"`
	VideoExtensions []string `toml:"video_extensions"`
}

// Scan contains source directory discovery configuration.
type Scan struct {
	SkipDirs    []string `toml:"skip_dirs"`
	FlattenDirs []string `toml:"flatten_dirs"`
}

// Logging contains log output configuration.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for mediasort.
type Config struct {
	Paths     Paths     `toml:"paths"`
	Provider  Provider  `toml:"provider"`
	Matcher   Matcher   `toml:"matcher"`
	Stability Stability `toml:"stability"`
	Sync      Sync      `toml:"sync"`
	Parser    Parser    `toml:"parser"`
	Scan      Scan      `toml:"scan"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/mediasort/config.toml")
}

// SampleConfig returns the embedded sample configuration file contents.
func SampleConfig() string {
	return sampleConfig
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The second return is
// the resolved path, the third whether a file existed there.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("mediasort.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// EnsureDirectories creates the directories a run needs to exist. Destination
// roots are created best-effort so a temporarily offline mount does not block
// config load; the organizer reports per-item errors instead.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.LogDir, c.Paths.CacheDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	for _, dir := range []string{c.Paths.MoviesDir, c.Paths.TVCurrentDir, c.Paths.TVConcludedDir} {
		if strings.TrimSpace(dir) != "" {
			_ = os.MkdirAll(dir, 0o755)
		}
	}
	return nil
}

// ProviderTimeout returns the bounded per-call provider timeout.
func (c *Config) ProviderTimeout() time.Duration {
	return time.Duration(c.Provider.TimeoutSeconds) * time.Second
}

// CacheTTL returns the show-status cache time-to-live.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Provider.CacheTTLHours) * time.Hour
}

// CheckInterval returns the delay between stability size samples.
func (c *Config) CheckInterval() time.Duration {
	return time.Duration(c.Stability.CheckIntervalSeconds) * time.Second
}

// SyncTimeout returns the per-call timeout for the sync service.
func (c *Config) SyncTimeout() time.Duration {
	return time.Duration(c.Sync.TimeoutSeconds) * time.Second
}

// SyncEnabled reports whether the Syncthing integration is configured.
func (c *Config) SyncEnabled() bool {
	return strings.TrimSpace(c.Sync.URL) != "" && strings.TrimSpace(c.Sync.APIKey) != ""
}

func (c *Config) normalize() error {
	var err error
	paths := []struct {
		name  string
		value *string
	}{
		{"paths.source_dir", &c.Paths.SourceDir},
		{"paths.movies_dir", &c.Paths.MoviesDir},
		{"paths.tv_current_dir", &c.Paths.TVCurrentDir},
		{"paths.tv_concluded_dir", &c.Paths.TVConcludedDir},
		{"paths.log_dir", &c.Paths.LogDir},
		{"paths.cache_dir", &c.Paths.CacheDir},
		{"paths.lock_file", &c.Paths.LockFile},
	}
	for _, p := range paths {
		if *p.value, err = expandPath(*p.value); err != nil {
			return fmt.Errorf("%s: %w", p.name, err)
		}
	}
	c.Provider.BaseURL = strings.TrimRight(strings.TrimSpace(c.Provider.BaseURL), "/")
	c.Sync.URL = strings.TrimRight(strings.TrimSpace(c.Sync.URL), "/")
	for i, ext := range c.Parser.VideoExtensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		c.Parser.VideoExtensions[i] = ext
	}
	return nil
}

// ExpandPath resolves ~ and relative segments into an absolute path.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}
