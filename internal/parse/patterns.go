package parse

import (
	"regexp"
	"strings"
)

// episodePattern is one tagged entry in the ordered episode cascade. Earlier
// entries win position ties.
type episodePattern struct {
	form string
	re   *regexp.Regexp
}

var episodePatterns = []episodePattern{
	{form: "sxxeyy", re: regexp.MustCompile(`(?i)\bS(\d{1,2})[\s._-]?E(\d{1,3})\b`)},
	{form: "nxmm", re: regexp.MustCompile(`\b(\d{1,2})[xX](\d{1,3})\b`)},
	{form: "verbose", re: regexp.MustCompile(`(?i)\bSeason[\s._-]?(\d{1,2})[\s._-]?Episode[\s._-]?(\d{1,3})\b`)},
}

// seasonPackPatterns mark TV content that ships without episode numbers.
// Only consulted when no episode form matched; entries with a capture group
// yield the season number.
var seasonPackPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bS(\d{1,2})[\s._-]*-[\s._-]*S?\d{1,2}\b`),
	regexp.MustCompile(`(?i)\bSeason[\s._-]?(\d{1,2})[\s._-]*-[\s._-]*\d{1,2}\b`),
	regexp.MustCompile(`(?i)\bSeason[\s._-]?(\d{1,2})\b`),
	regexp.MustCompile(`(?i)\bS(\d{1,2})\b`),
	regexp.MustCompile(`(?i)\b(?:Complete|Full|Entire)[\s._-]+(?:Series|Seasons?)\b`),
}

// qualityRe matches the resolution/source vocabulary anywhere in a name.
var qualityRe = regexp.MustCompile(`(?i)\b(2160p|1080p|720p|480p|4K|UHD|HDR10|HDR|WEB[-._ ]?DL|WEBRip|WEB|BluRay|BRRip|BDRip|DVDRip|HDTV)\b`)

// qualityTokenRe classifies a single separator-delimited token as quality,
// source, codec, or audio vocabulary for year-adjacency decisions.
var qualityTokenRe = regexp.MustCompile(`(?i)^(\d{3,4}p|4K|UHD|HDR10|HDR|WEB|WEB-?DL|DL|WEBRip|BluRay|BRRip|BDRip|DVDRip|HDTV|HEVC|x26[45]|h\.?26[45]|26[45]|10bit|8bit|DDP?\d(\.\d)?|E?AC3|AAC|Atmos|TrueHD|DTS(-HD)?|AMZN|NF|DSNP|HMAX|ATVP)$`)

var (
	extensionRe    = regexp.MustCompile(`\.[a-zA-Z]{2,4}$`)
	releaseGroupRe = regexp.MustCompile(`[-\[]([A-Za-z0-9]+)\]?$`)
	tokenSplitRe   = regexp.MustCompile(`[\s._]+`)
	separatorRe    = regexp.MustCompile(`[\s._-]+`)
)

// isQualityToken reports whether a token belongs to the quality vocabulary.
// Hyphenated tokens count if any segment matches, so "WEB-DL" and the tail
// of "h264-GROUP" both register as quality-bearing.
func isQualityToken(token string) bool {
	if qualityTokenRe.MatchString(token) {
		return true
	}
	if strings.Contains(token, "-") {
		for _, segment := range strings.Split(token, "-") {
			if segment != "" && qualityTokenRe.MatchString(segment) {
				return true
			}
		}
	}
	return false
}

// token is a separator-delimited word with its byte offset in the name.
type token struct {
	text  string
	start int
}

// tokenize splits on dots, underscores, and whitespace while keeping
// hyphenated compounds like "WEB-DL" intact.
func tokenize(name string) []token {
	var tokens []token
	pos := 0
	for _, part := range tokenSplitRe.Split(name, -1) {
		if part == "" {
			continue
		}
		idx := strings.Index(name[pos:], part)
		if idx < 0 {
			continue
		}
		start := pos + idx
		tokens = append(tokens, token{text: part, start: start})
		pos = start + len(part)
	}
	return tokens
}
