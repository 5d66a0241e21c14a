package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateMatcher(); err != nil {
		return err
	}
	if err := c.validateStability(); err != nil {
		return err
	}
	if err := c.validateParser(); err != nil {
		return err
	}
	if err := c.validateSync(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	required := []struct {
		name  string
		value string
	}{
		{"paths.source_dir", c.Paths.SourceDir},
		{"paths.movies_dir", c.Paths.MoviesDir},
		{"paths.tv_current_dir", c.Paths.TVCurrentDir},
		{"paths.tv_concluded_dir", c.Paths.TVConcludedDir},
		{"paths.lock_file", c.Paths.LockFile},
	}
	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			return fmt.Errorf("%s must be set", field.name)
		}
	}
	return nil
}

func (c *Config) validateMatcher() error {
	if c.Matcher.Threshold < 0 || c.Matcher.Threshold > 100 {
		return errors.New("matcher.threshold must be between 0 and 100")
	}
	return nil
}

func (c *Config) validateStability() error {
	if c.Stability.CheckIntervalSeconds < 1 {
		return errors.New("stability.check_interval_seconds must be at least 1")
	}
	if c.Stability.RequiredStableReads < 1 {
		return errors.New("stability.required_stable_reads must be at least 1")
	}
	if c.Stability.MaxRetries < 0 {
		return errors.New("stability.max_retries must not be negative")
	}
	return nil
}

func (c *Config) validateParser() error {
	for _, pattern := range c.Parser.Decorations {
		if _, err := regexp.Compile(pattern); err != nil {
			return fmt.Errorf("parser.decorations entry %q: %w", pattern, err)
		}
	}
	if len(c.Parser.VideoExtensions) == 0 {
		return errors.New("parser.video_extensions must not be empty")
	}
	return nil
}

func (c *Config) validateSync() error {
	url := strings.TrimSpace(c.Sync.URL)
	key := strings.TrimSpace(c.Sync.APIKey)
	if (url == "") != (key == "") {
		return errors.New("sync.url and sync.api_key must be set together")
	}
	for _, mapping := range c.Sync.PathMapping {
		if !strings.Contains(mapping, ":") {
			return fmt.Errorf("sync.path_mapping entry %q must use remote:local form", mapping)
		}
	}
	return nil
}
