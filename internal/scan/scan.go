package scan

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"mediasort/internal/logging"
)

// Item is one candidate for organizing: a video file or a directory
// that contains at least one video file.
type Item struct {
	Path  string
	Name  string
	IsDir bool
}

// Scanner discovers organizable items in a source directory.
type Scanner struct {
	videoExts   map[string]struct{}
	skipDirs    map[string]struct{}
	flattenDirs map[string]struct{}
	logger      *slog.Logger
}

// New creates a Scanner. videoExtensions are dot-prefixed and matched
// case-insensitively. flattenDirs names directories whose children are
// treated as top-level items instead of one big item.
func New(videoExtensions, skipDirs, flattenDirs []string, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Scanner{
		videoExts:   lowerSet(videoExtensions),
		skipDirs:    lowerSet(skipDirs),
		flattenDirs: lowerSet(flattenDirs),
		logger:      logger,
	}
}

func lowerSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, value := range values {
		set[strings.ToLower(value)] = struct{}{}
	}
	return set
}

// Discover lists items under root in lexical path order so repeated
// runs process the same backlog in the same order.
func (s *Scanner) Discover(root string) ([]Item, error) {
	items, err := s.collect(root, true)
	if err != nil {
		return nil, err
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].Path < items[j].Path
	})
	return items, nil
}

// collect walks one directory level. flatten directories recurse a
// single level so their children become items themselves.
func (s *Scanner) collect(dir string, allowFlatten bool) ([]Item, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read source directory %s: %w", dir, err)
	}

	var items []Item
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if _, skip := s.skipDirs[strings.ToLower(name)]; skip {
			s.logger.Debug("skipping directory", logging.String("name", name))
			continue
		}
		path := filepath.Join(dir, name)

		if entry.IsDir() {
			if _, flatten := s.flattenDirs[strings.ToLower(name)]; flatten && allowFlatten {
				nested, err := s.collect(path, false)
				if err != nil {
					return nil, err
				}
				items = append(items, nested...)
				continue
			}
			hasVideo, err := s.containsVideo(path)
			if err != nil {
				return nil, err
			}
			if hasVideo {
				items = append(items, Item{Path: path, Name: name, IsDir: true})
			} else {
				s.logger.Debug("no video content, skipping",
					logging.String("path", path))
			}
			continue
		}

		if s.isVideo(name) {
			items = append(items, Item{Path: path, Name: name})
		}
	}
	return items, nil
}

func (s *Scanner) isVideo(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	_, ok := s.videoExts[ext]
	return ok
}

// containsVideo reports whether any file under dir has a video
// extension, skipping hidden entries and skip directories.
func (s *Scanner) containsVideo(dir string) (bool, error) {
	found := false
	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if os.IsNotExist(walkErr) {
				return nil
			}
			return walkErr
		}
		name := entry.Name()
		if entry.IsDir() {
			if path == dir {
				return nil
			}
			if strings.HasPrefix(name, ".") {
				return fs.SkipDir
			}
			if _, skip := s.skipDirs[strings.ToLower(name)]; skip {
				return fs.SkipDir
			}
			return nil
		}
		if !strings.HasPrefix(name, ".") && s.isVideo(name) {
			found = true
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("inspect %s: %w", dir, err)
	}
	return found, nil
}
