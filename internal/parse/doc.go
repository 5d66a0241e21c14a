// Package parse extracts structured metadata from release file and folder
// names. It is a pure function of the name: no filesystem or network access.
//
// Detection runs as an ordered cascade of tagged pattern matchers (episode
// forms first, then season packs, years, quality vocabulary, release group).
// Among matching forms the earliest position in the string wins, so a title
// containing something episode-shaped late in the name never hides a real
// marker earlier on.
package parse
