// Package textutil provides the shared text primitives the pipeline agrees on:
// title normalization, fuzzy similarity scoring, and filename sanitization.
//
// NormalizeTitle is the single normalization function used both for cache
// keys and for folder-candidate comparison. The parser and the matcher must
// never normalize independently; a divergence would break cache hits and
// match scoring at the same time.
package textutil
