package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"mediasort/internal/cache"
	"mediasort/internal/classify"
	"mediasort/internal/config"
	"mediasort/internal/logging"
	"mediasort/internal/match"
	"mediasort/internal/organizer"
	"mediasort/internal/parse"
	"mediasort/internal/provider/tvdb"
	"mediasort/internal/runlock"
	"mediasort/internal/scan"
	"mediasort/internal/stability"
	"mediasort/internal/syncprovider/syncthing"
)

// errRunFailures signals a completed run in which at least one item
// failed. The summary table already told the user; main only sets the
// exit code.
var errRunFailures = errors.New("run completed with failures")

func newRunCommand(configFlag *string) *cobra.Command {
	var dryRun bool
	var sourceDir string
	var quiet bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Organize everything waiting in the source directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, _, err := config.Load(*configFlag)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("configure logging: %w", err)
			}
			runID := uuid.NewString()
			logger = logger.With(logging.String("run_id", runID))

			lock, err := runlock.Acquire(cfg.Paths.LockFile)
			if err != nil {
				return err
			}
			defer func() {
				if releaseErr := lock.Release(); releaseErr != nil {
					logger.Warn("lock release failed", logging.Error(releaseErr))
				}
			}()

			org, store, err := buildOrganizer(cfg, logger, dryRun)
			if err != nil {
				return err
			}
			if store != nil {
				defer store.Close()
			}

			report, err := org.Run(cmd.Context(), strings.TrimSpace(sourceDir))
			if err != nil {
				return err
			}

			if !quiet {
				out := cmd.OutOrStdout()
				printReport(out, report)
			}
			if report.HasFailures() {
				return errRunFailures
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Report planned moves without changing anything")
	cmd.Flags().StringVar(&sourceDir, "source", "", "Override the configured source directory")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Suppress the summary table")
	return cmd
}

// buildOrganizer wires the pipeline from configuration. The returned
// store is non-nil when a status cache was opened and must be closed by
// the caller.
func buildOrganizer(cfg *config.Config, logger *slog.Logger, dryRun bool) (*organizer.Organizer, *cache.Store, error) {
	parser, err := parse.New(cfg.Parser.Decorations, cfg.Parser.VideoExtensions)
	if err != nil {
		return nil, nil, fmt.Errorf("build parser: %w", err)
	}

	var store *cache.Store
	var statusCache classify.StatusCache
	if cfg.Paths.CacheDir != "" {
		store, err = cache.Open(cfg.Paths.CacheDir)
		if err != nil {
			return nil, nil, fmt.Errorf("open status cache: %w", err)
		}
		statusCache = store
	}

	var provider classify.StatusProvider
	if strings.TrimSpace(cfg.Provider.APIKey) != "" {
		client, err := tvdb.New(cfg.Provider.APIKey, cfg.Provider.BaseURL, cfg.Provider.Language)
		if err != nil {
			if store != nil {
				_ = store.Close()
			}
			return nil, nil, fmt.Errorf("build status provider: %w", err)
		}
		provider = client
	} else {
		logger.Warn("no provider api key configured, uncached shows default to current")
	}
	classifier := classify.New(provider, statusCache, cfg.CacheTTL(), cfg.ProviderTimeout(),
		logging.NewComponentLogger(logger, "classifier"))

	var checker stability.SyncChecker
	if cfg.SyncEnabled() {
		client, err := syncthing.New(cfg.Sync.URL, cfg.Sync.APIKey, cfg.Sync.PathMapping, cfg.SyncTimeout(),
			logging.NewComponentLogger(logger, "syncthing"))
		if err != nil {
			if store != nil {
				_ = store.Close()
			}
			return nil, nil, fmt.Errorf("build sync client: %w", err)
		}
		checker = client
	}
	detector := stability.New(checker, cfg.Stability.MarkerPatterns, cfg.CheckInterval(),
		cfg.Stability.RequiredStableReads, cfg.Stability.MaxRetries,
		logging.NewComponentLogger(logger, "stability"))

	matcher := match.New(nil, cfg.Matcher.Threshold, logging.NewComponentLogger(logger, "matcher"))
	scanner := scan.New(cfg.Parser.VideoExtensions, cfg.Scan.SkipDirs, cfg.Scan.FlattenDirs,
		logging.NewComponentLogger(logger, "scan"))

	org := organizer.New(cfg, parser, classifier, matcher, detector, scanner,
		logging.NewComponentLogger(logger, "organizer"),
		organizer.WithDryRun(dryRun))
	return org, store, nil
}

func printReport(out io.Writer, report *organizer.Report) {
	if len(report.Records) == 0 {
		fmt.Fprintln(out, "Nothing to organize.")
		return
	}

	rows := make([][]string, 0, len(report.Records))
	for _, record := range report.Records {
		detail := record.Destination
		if record.Err != nil {
			detail = record.Err.Error()
		}
		rows = append(rows, []string{
			record.Name,
			string(record.Category),
			string(record.Outcome),
			detail,
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Item", "Category", "Outcome", "Detail"},
		rows,
	))

	verb := "moved"
	if report.DryRun {
		verb = "planned"
	}
	fmt.Fprintf(out, "%d %s, %d skipped, %d failed\n",
		report.Moved+report.Planned, verb, report.Skipped, report.Failed)
}
