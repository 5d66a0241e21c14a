package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"mediasort/internal/textutil"
)

// ParsedName is the structured form of a release file or folder name. It is
// created once per item and never mutated afterwards.
type ParsedName struct {
	Title           string
	NormalizedTitle string
	Year            int
	Season          int
	Episode         int
	EpisodeTitle    string
	QualityTags     []string
	ReleaseGroup    string
	TV              bool
}

// String renders a short description for logs.
func (p ParsedName) String() string {
	if p.TV {
		switch {
		case p.Episode > 0:
			return fmt.Sprintf("TV %q S%02dE%02d", p.Title, p.Season, p.Episode)
		case p.Season > 0:
			return fmt.Sprintf("TV %q S%02d (season pack)", p.Title, p.Season)
		default:
			return fmt.Sprintf("TV %q", p.Title)
		}
	}
	if p.Year > 0 {
		return fmt.Sprintf("Movie %q (%d)", p.Title, p.Year)
	}
	return fmt.Sprintf("Movie %q", p.Title)
}

// ParseError reports a name from which no title could be extracted.
type ParseError struct {
	Name string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %q: no extractable title", e.Name)
}

// Parser turns raw names into ParsedName values. Decoration patterns and the
// video extension list come from configuration so per-deployment tuning never
// touches this package.
type Parser struct {
	decorations []*regexp.Regexp
	videoExts   map[string]struct{}
	yearCeiling int
	caser       cases.Caser
}

// New compiles the supplied decoration patterns and builds a parser. The
// year ceiling is the current year plus one, so next year's releases parse.
func New(decorations, videoExtensions []string) (*Parser, error) {
	compiled := make([]*regexp.Regexp, 0, len(decorations))
	for _, pattern := range decorations {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("decoration pattern %q: %w", pattern, err)
		}
		compiled = append(compiled, re)
	}
	exts := make(map[string]struct{}, len(videoExtensions))
	for _, ext := range videoExtensions {
		exts[strings.ToLower(ext)] = struct{}{}
	}
	return &Parser{
		decorations: compiled,
		videoExts:   exts,
		yearCeiling: time.Now().Year() + 1,
		caser:       cases.Title(language.Und),
	}, nil
}

// Parse extracts metadata from a single file or folder name. The name must
// not contain path separators.
func (p *Parser) Parse(name string) (ParsedName, error) {
	working := p.stripExtension(strings.TrimSpace(name))
	working = p.stripDecorations(working)

	episode := findEpisodeMarker(working)
	pack := markerSpan{start: -1}
	if episode.start < 0 {
		pack = findSeasonPack(working)
	}

	tokens := tokenize(working)
	qualityIdx := qualityTokenIndexes(tokens)
	year, yearCut := p.resolveYear(tokens, qualityIdx)

	qualityTags, firstQuality := extractQuality(working)
	groupStart, releaseGroup := extractReleaseGroup(working, episode.start >= 0 || pack.start >= 0 || yearCut >= 0 || firstQuality >= 0)

	cut := len(working)
	for _, marker := range []int{episode.start, pack.start, yearCut, firstQuality, groupStart} {
		if marker >= 0 && marker < cut {
			cut = marker
		}
	}

	title := cleanSeparators(working[:cut])
	if title == "" && yearCut >= 0 {
		// The whole leading text was a year token: the name is a movie whose
		// title literally is a year, like "1917". Reclaim it.
		reclaimed, remaining := reclaimYearTitle(tokens, year)
		title = reclaimed
		year = remaining
	}
	if title == "" {
		return ParsedName{}, &ParseError{Name: name}
	}
	title = p.displayCase(title)

	parsed := ParsedName{
		Title:           title,
		NormalizedTitle: textutil.NormalizeTitle(title),
		Year:            year,
		QualityTags:     qualityTags,
		ReleaseGroup:    releaseGroup,
	}

	switch {
	case episode.start >= 0:
		parsed.TV = true
		parsed.Season = episode.season
		parsed.Episode = episode.episode
		parsed.EpisodeTitle = episodeTitle(working, episode.end, yearCut, firstQuality, groupStart)
	case pack.start >= 0:
		parsed.TV = true
		parsed.Season = pack.season
	}
	return parsed, nil
}

// markerSpan records where a structural marker matched and what it captured.
type markerSpan struct {
	start   int
	end     int
	season  int
	episode int
}

// findEpisodeMarker evaluates the ordered episode cascade. The match at the
// earliest position wins; pattern order breaks position ties.
func findEpisodeMarker(name string) markerSpan {
	best := markerSpan{start: -1}
	for _, pattern := range episodePatterns {
		loc := pattern.re.FindStringSubmatchIndex(name)
		if loc == nil {
			continue
		}
		if best.start >= 0 && loc[0] >= best.start {
			continue
		}
		season, _ := strconv.Atoi(name[loc[2]:loc[3]])
		episode, _ := strconv.Atoi(name[loc[4]:loc[5]])
		if season < 1 || episode < 1 {
			continue
		}
		best = markerSpan{start: loc[0], end: loc[1], season: season, episode: episode}
	}
	return best
}

// findSeasonPack looks for season-only markers. Only meaningful when no
// episode marker matched.
func findSeasonPack(name string) markerSpan {
	best := markerSpan{start: -1}
	for _, re := range seasonPackPatterns {
		loc := re.FindStringSubmatchIndex(name)
		if loc == nil {
			continue
		}
		if best.start >= 0 && loc[0] >= best.start {
			continue
		}
		span := markerSpan{start: loc[0], end: loc[1]}
		if len(loc) > 3 && loc[2] >= 0 {
			span.season, _ = strconv.Atoi(name[loc[2]:loc[3]])
		}
		best = span
	}
	return best
}

func qualityTokenIndexes(tokens []token) []int {
	var idx []int
	for i, tok := range tokens {
		if isQualityToken(tok.text) {
			idx = append(idx, i)
		}
	}
	return idx
}

// resolveYear applies the multi-year disambiguation rule: with several
// candidates, a token counts as the release year only when it sits next to
// the quality/source token cluster; the rest belong to the title. Without
// any quality-adjacent candidate the later token wins.
//
// Returns the resolved year (0 if none) and the byte offset where the title
// should be cut (-1 if no year marker).
func (p *Parser) resolveYear(tokens []token, qualityIdx []int) (int, int) {
	type yearToken struct {
		index int
		value int
	}
	var years []yearToken
	for i, tok := range tokens {
		value, err := strconv.Atoi(tok.text)
		if err != nil || len(tok.text) != 4 {
			continue
		}
		if value < 1900 || value > p.yearCeiling {
			continue
		}
		years = append(years, yearToken{index: i, value: value})
	}
	if len(years) == 0 {
		return 0, -1
	}
	if len(years) == 1 {
		return years[0].value, tokens[years[0].index].start
	}

	distance := func(i int) int {
		best := -1
		for _, q := range qualityIdx {
			d := q - i
			if d < 0 {
				d = -d
			}
			if best < 0 || d < best {
				best = d
			}
		}
		return best
	}

	chosen := -1
	chosenDist := -1
	for _, y := range years {
		d := distance(y.index)
		if d != 1 {
			continue
		}
		if chosen < 0 || d < chosenDist || (d == chosenDist && y.index > years[chosen].index) {
			for i := range years {
				if years[i].index == y.index {
					chosen = i
				}
			}
			chosenDist = d
		}
	}
	if chosen >= 0 {
		// Non-adjacent years stay in the title; cut at the chosen one.
		return years[chosen].value, tokens[years[chosen].index].start
	}

	// No quality adjacency anywhere: the later token is the release year and
	// the title is cut at the first, matching how scene names order them.
	last := years[len(years)-1]
	return last.value, tokens[years[0].index].start
}

// reclaimYearTitle handles names whose title is itself a year. The earliest
// year token becomes the title; if it was also the resolved release year
// there is no year left to report.
func reclaimYearTitle(tokens []token, resolved int) (string, int) {
	for _, tok := range tokens {
		if len(tok.text) == 4 {
			if value, err := strconv.Atoi(tok.text); err == nil {
				if value == resolved {
					return tok.text, 0
				}
				return tok.text, resolved
			}
		}
	}
	return "", resolved
}

// extractQuality collects quality vocabulary matches in order of appearance,
// deduplicated case-insensitively, plus the position of the first match.
func extractQuality(name string) ([]string, int) {
	locs := qualityRe.FindAllStringIndex(name, -1)
	if len(locs) == 0 {
		return nil, -1
	}
	seen := make(map[string]struct{}, len(locs))
	tags := make([]string, 0, len(locs))
	for _, loc := range locs {
		tag := name[loc[0]:loc[1]]
		key := strings.ToLower(tag)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		tags = append(tags, tag)
	}
	return tags, locs[0][0]
}

// extractReleaseGroup pulls the trailing dash or bracket delimited group.
// Quality tags and bare numbers are never groups, and without any other
// structural marker in the name a trailing hyphenated word is treated as
// part of the title (protects names like "Spider-Man").
func extractReleaseGroup(name string, hasOtherMarker bool) (int, string) {
	if !hasOtherMarker {
		return -1, ""
	}
	loc := releaseGroupRe.FindStringSubmatchIndex(name)
	if loc == nil {
		return -1, ""
	}
	candidate := name[loc[2]:loc[3]]
	if isQualityToken(candidate) || isAllDigits(candidate) {
		return -1, ""
	}
	return loc[0], candidate
}

// episodeTitle captures the text between the episode marker and the next
// structural marker, e.g. "Felina" in "Breaking.Bad.S05E16.Felina.1080p".
func episodeTitle(name string, episodeEnd int, markers ...int) string {
	next := len(name)
	for _, m := range markers {
		if m > episodeEnd && m < next {
			next = m
		}
	}
	return cleanSeparators(name[episodeEnd:next])
}

func (p *Parser) stripExtension(name string) string {
	if dot := strings.LastIndex(name, "."); dot > 0 {
		if _, ok := p.videoExts[strings.ToLower(name[dot:])]; ok {
			return name[:dot]
		}
	}
	return extensionRe.ReplaceAllString(name, "")
}

func (p *Parser) stripDecorations(name string) string {
	for range p.decorations {
		before := name
		for _, re := range p.decorations {
			name = strings.TrimSpace(re.ReplaceAllString(name, ""))
		}
		if name == before {
			break
		}
	}
	return name
}

// displayCase title-cases names that arrive fully lowercased; names that
// already carry casing are preserved exactly.
func (p *Parser) displayCase(title string) string {
	if title != strings.ToLower(title) {
		return title
	}
	return p.caser.String(title)
}

func cleanSeparators(s string) string {
	s = separatorRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
