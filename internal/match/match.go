package match

import (
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"sort"
	"strings"

	"mediasort/internal/logging"
	"mediasort/internal/textutil"
)

// Match is the outcome of scoring a title against existing folders.
type Match struct {
	Folder string
	Score  int
}

// Lister enumerates candidate folder names under a destination root.
// The default implementation reads the directory; tests substitute a
// fixed list.
type Lister interface {
	ListFolders(root string) ([]string, error)
}

// DirLister lists immediate subdirectories of root.
type DirLister struct{}

// ListFolders returns the names of directories directly under root. A
// missing root is an empty library, not an error.
func (DirLister) ListFolders(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list folders in %s: %w", root, err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() && !strings.HasPrefix(entry.Name(), ".") {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

// trailingYearRe matches a trailing parenthesized year, e.g. "(2019)".
var trailingYearRe = regexp.MustCompile(`\s*\((19|20)\d{2}\)\s*$`)

// Matcher scores a parsed title against the folders already present in
// a library root.
type Matcher struct {
	lister    Lister
	threshold int
	logger    *slog.Logger
}

// New creates a Matcher. A nil lister defaults to reading directories.
func New(lister Lister, threshold int, logger *slog.Logger) *Matcher {
	if lister == nil {
		lister = DirLister{}
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Matcher{lister: lister, threshold: threshold, logger: logger}
}

// FindFolder returns the best existing folder for title under root, or
// ok=false when nothing scores at or above the threshold. Candidates
// are scored with and without a trailing "(year)" suffix so "Dune
// (2021)" still matches "Dune".
func (m *Matcher) FindFolder(root, title string) (Match, bool, error) {
	candidates, err := m.lister.ListFolders(root)
	if err != nil {
		return Match{}, false, err
	}
	if len(candidates) == 0 {
		return Match{}, false, nil
	}

	normTitle := textutil.NormalizeTitle(title)
	best := make([]Match, 0, 1)
	bestScore := 0
	for _, candidate := range candidates {
		score := scoreCandidate(normTitle, candidate)
		if score > bestScore {
			bestScore = score
			best = best[:0]
		}
		if score == bestScore && score > 0 {
			best = append(best, Match{Folder: candidate, Score: score})
		}
	}
	if bestScore < m.threshold || len(best) == 0 {
		return Match{}, false, nil
	}

	winner := pickWinner(best, normTitle)
	m.logger.Debug("matched existing folder",
		logging.String("title", title),
		logging.String("folder", winner.Folder),
		logging.Int("score", winner.Score))
	return winner, true, nil
}

// scoreCandidate takes the better of the full candidate name and the
// name with any trailing year removed.
func scoreCandidate(normTitle, candidate string) int {
	score := textutil.Ratio(normTitle, textutil.NormalizeTitle(candidate))
	stripped := trailingYearRe.ReplaceAllString(candidate, "")
	if stripped != candidate {
		if s := textutil.Ratio(normTitle, textutil.NormalizeTitle(stripped)); s > score {
			score = s
		}
	}
	return score
}

// pickWinner breaks score ties: an exact normalized match wins, then
// the shortest name, then lexical order so repeated runs are stable.
func pickWinner(matches []Match, normTitle string) Match {
	for _, candidate := range matches {
		if textutil.NormalizeTitle(candidate.Folder) == normTitle {
			return candidate
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if len(matches[i].Folder) != len(matches[j].Folder) {
			return len(matches[i].Folder) < len(matches[j].Folder)
		}
		return matches[i].Folder < matches[j].Folder
	})
	return matches[0]
}

// NewFolderName builds the folder name for a title that matched nothing.
func NewFolderName(title string) string {
	return textutil.SanitizeFileName(title)
}
