// Package tvdb implements a minimal TheTVDB v4 API client used to
// resolve whether a series is still airing or has concluded.
package tvdb
