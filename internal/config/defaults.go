package config

const (
	defaultSourceDir      = "~/downloads/media"
	defaultMoviesDir      = "~/library/movies"
	defaultTVCurrentDir   = "~/library/tv/current"
	defaultTVConcludedDir = "~/library/tv/concluded"
	defaultLogDir         = "~/.local/share/mediasort/logs"
	defaultCacheDir       = "~/.local/share/mediasort/cache"
	defaultLockFile       = "~/.local/share/mediasort/mediasort.lock"

	defaultProviderBaseURL = "https://api4.thetvdb.com/v4"
	defaultProviderLang    = "eng"
	defaultProviderTimeout = 10
	defaultCacheTTLHours   = 7 * 24

	defaultMatchThreshold = 80

	defaultCheckIntervalSeconds = 5
	defaultRequiredStableReads  = 2
	defaultMaxRetries           = 3

	defaultSyncTimeoutSeconds = 5

	defaultLogFormat = "auto"
	defaultLogLevel  = "info"
)

// defaultMarkerPatterns are filename globs that indicate a synchronization
// process still owns the file or its directory.
func defaultMarkerPatterns() []string {
	return []string{
		".syncthing.*.tmp",
		"*.tmp",
		"*.part",
		"*.!sync",
		".stfolder",
		".stversions",
	}
}

// defaultDecorations are site prefix/suffix patterns stripped during parsing.
// They are configuration, not parser internals, so deployments can extend
// them without a rebuild.
func defaultDecorations() []string {
	return []string{
		`^www\.[a-zA-Z0-9-]+\.(?:org|com|net)[\s._-]+`,
		`^\[[a-zA-Z0-9 ._-]+\][\s._-]*`,
		`[\s._-]+\[?[a-zA-Z0-9]*\.to\]?$`,
		`[\s._-]*\[[a-zA-Z0-9 ._-]+\]$`,
	}
}

func defaultVideoExtensions() []string {
	return []string{
		".mkv", ".mp4", ".avi", ".mov", ".wmv", ".flv",
		".webm", ".m4v", ".mpg", ".mpeg", ".m2ts",
	}
}

func defaultSkipDirs() []string {
	return []string{"@eaDir"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			SourceDir:      defaultSourceDir,
			MoviesDir:      defaultMoviesDir,
			TVCurrentDir:   defaultTVCurrentDir,
			TVConcludedDir: defaultTVConcludedDir,
			LogDir:         defaultLogDir,
			CacheDir:       defaultCacheDir,
			LockFile:       defaultLockFile,
		},
		Provider: Provider{
			BaseURL:        defaultProviderBaseURL,
			Language:       defaultProviderLang,
			TimeoutSeconds: defaultProviderTimeout,
			CacheTTLHours:  defaultCacheTTLHours,
		},
		Matcher: Matcher{
			Threshold: defaultMatchThreshold,
		},
		Stability: Stability{
			CheckIntervalSeconds: defaultCheckIntervalSeconds,
			RequiredStableReads:  defaultRequiredStableReads,
			MaxRetries:           defaultMaxRetries,
			MarkerPatterns:       defaultMarkerPatterns(),
		},
		Sync: Sync{
			TimeoutSeconds: defaultSyncTimeoutSeconds,
		},
		Parser: Parser{
			Decorations:     defaultDecorations(),
			VideoExtensions: defaultVideoExtensions(),
		},
		Scan: Scan{
			SkipDirs: defaultSkipDirs(),
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
