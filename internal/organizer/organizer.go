package organizer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"mediasort/internal/classify"
	"mediasort/internal/config"
	"mediasort/internal/fileutil"
	"mediasort/internal/logging"
	"mediasort/internal/match"
	"mediasort/internal/parse"
	"mediasort/internal/scan"
	"mediasort/internal/services"
	"mediasort/internal/stability"
)

// Classifier decides the library category for a parsed item.
type Classifier interface {
	Classify(ctx context.Context, parsed *parse.ParsedName) classify.Result
}

// StabilityChecker gates moves on transfer completion.
type StabilityChecker interface {
	Wait(ctx context.Context, path string) (stability.Outcome, error)
	QuickCheck(ctx context.Context, path string) (bool, error)
}

// FolderFinder locates an existing library folder for a title.
type FolderFinder interface {
	FindFolder(root, title string) (match.Match, bool, error)
}

// Scanner lists the items waiting in the source directory.
type Scanner interface {
	Discover(root string) ([]scan.Item, error)
}

// Organizer runs the full pipeline: discover, parse, classify, wait for
// transfer stability, match a destination folder, and move.
type Organizer struct {
	cfg        *config.Config
	parser     *parse.Parser
	classifier Classifier
	matcher    FolderFinder
	checker    StabilityChecker
	scanner    Scanner
	logger     *slog.Logger
	dryRun     bool
}

// Option configures an Organizer.
type Option func(*Organizer)

// WithDryRun makes Run report planned moves without touching the filesystem.
func WithDryRun(dryRun bool) Option {
	return func(o *Organizer) {
		o.dryRun = dryRun
	}
}

// New constructs an Organizer from its collaborators.
func New(cfg *config.Config, parser *parse.Parser, classifier Classifier, matcher FolderFinder, checker StabilityChecker, scanner Scanner, logger *slog.Logger, opts ...Option) *Organizer {
	if logger == nil {
		logger = logging.NewNop()
	}
	organizer := &Organizer{
		cfg:        cfg,
		parser:     parser,
		classifier: classifier,
		matcher:    matcher,
		checker:    checker,
		scanner:    scanner,
		logger:     logger.With(logging.String("component", "organizer")),
	}
	for _, opt := range opts {
		opt(organizer)
	}
	return organizer
}

// Run processes every item in the source directory. Item failures are
// recorded and never abort the run; the returned error covers only
// scan-level problems.
func (o *Organizer) Run(ctx context.Context, sourceDir string) (*Report, error) {
	if sourceDir == "" {
		sourceDir = o.cfg.Paths.SourceDir
	}
	items, err := o.scanner.Discover(sourceDir)
	if err != nil {
		return nil, services.Wrap(services.ErrFilesystem, "organizer", "scan", "source directory unreadable", err)
	}
	o.logger.Info("scan complete",
		logging.String("source", sourceDir),
		logging.Int("items", len(items)))

	report := &Report{DryRun: o.dryRun}
	for _, item := range items {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		record := o.processItem(ctx, item)
		report.Add(record)
		o.logRecord(record)
	}
	return report, nil
}

func (o *Organizer) processItem(ctx context.Context, item scan.Item) Record {
	record := Record{Source: item.Path, Name: item.Name}

	parsed, err := o.parser.Parse(item.Name)
	if err != nil {
		return record.withError(services.Wrap(services.ErrParse, "organizer", "parse", item.Name, err))
	}
	record.Title = parsed.Title

	result := o.classifier.Classify(ctx, &parsed)
	record.Category = result.Category

	outcome, err := o.checker.Wait(ctx, item.Path)
	if err != nil {
		return record.withError(services.Wrap(services.ErrUnstable, "organizer", "stability", "check failed", err))
	}
	if outcome != stability.OutcomeStable {
		return record.withError(services.Wrap(services.ErrUnstable, "organizer", "stability", "transfer still in progress", nil))
	}

	destDir, err := o.resolveDestination(&parsed, result.Category)
	if err != nil {
		return record.withError(err)
	}
	destination := filepath.Join(destDir, item.Name)
	record.Destination = destination

	if fileutil.SameFile(item.Path, destination) {
		return record.withError(services.Wrap(services.ErrAlreadyPlaced, "organizer", "move", "already in place", nil))
	}

	if o.dryRun {
		record.Outcome = OutcomePlanned
		return record
	}

	// Last look before committing: a transfer can resume between the
	// stability verdict and the move.
	stable, err := o.checker.QuickCheck(ctx, item.Path)
	if err != nil {
		return record.withError(services.Wrap(services.ErrUnstable, "organizer", "precheck", "recheck failed", err))
	}
	if !stable {
		return record.withError(services.Wrap(services.ErrRaceDetected, "organizer", "precheck", "transfer resumed before move", nil))
	}

	final, err := o.move(item.Path, destDir, item.Name)
	if err != nil {
		return record.withError(err)
	}
	record.Destination = final
	record.Outcome = OutcomeMoved
	return record
}

// resolveDestination builds the directory an item should land in.
func (o *Organizer) resolveDestination(parsed *parse.ParsedName, category classify.Category) (string, error) {
	root := o.rootFor(category)
	if root == "" {
		return "", services.Wrap(services.ErrConfiguration, "organizer", "destination",
			fmt.Sprintf("no destination configured for %s", category), nil)
	}

	folder := ""
	if matched, ok, err := o.matcher.FindFolder(root, parsed.Title); err != nil {
		return "", services.Wrap(services.ErrFilesystem, "organizer", "match", "listing library folders", err)
	} else if ok {
		folder = matched.Folder
	} else {
		folder = match.NewFolderName(parsed.Title)
	}

	dest := filepath.Join(root, folder)
	if parsed.TV && parsed.Season > 0 {
		dest = filepath.Join(dest, fmt.Sprintf("Season %02d", parsed.Season))
	}
	return dest, nil
}

func (o *Organizer) rootFor(category classify.Category) string {
	switch category {
	case classify.CategoryMovie:
		return o.cfg.Paths.MoviesDir
	case classify.CategoryTVCurrent:
		return o.cfg.Paths.TVCurrentDir
	case classify.CategoryTVConcluded:
		return o.cfg.Paths.TVConcludedDir
	default:
		return ""
	}
}

// move relocates src into destDir under name, resolving collisions with
// a numbered suffix. The move is retried once; transient NFS and mount
// hiccups usually clear by the second attempt.
func (o *Organizer) move(src, destDir, name string) (string, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", services.Wrap(services.ErrFilesystem, "organizer", "move", "creating destination directory", err)
	}
	target, err := fileutil.UniquePath(filepath.Join(destDir, name))
	if err != nil {
		return "", services.Wrap(services.ErrFilesystem, "organizer", "move", "allocating destination name", err)
	}

	if err := fileutil.Move(src, target); err != nil {
		o.logger.Warn("move failed, retrying",
			logging.String("source", src),
			logging.String("target", target),
			logging.Error(err))
		if retryErr := fileutil.Move(src, target); retryErr != nil {
			return "", services.Wrap(services.ErrFilesystem, "organizer", "move", "relocating item", retryErr)
		}
	}
	return target, nil
}

func (o *Organizer) logRecord(record Record) {
	attrs := []logging.Attr{
		logging.String("item", record.Name),
		logging.String("outcome", string(record.Outcome)),
	}
	if record.Category != "" {
		attrs = append(attrs, logging.String("category", string(record.Category)))
	}
	if record.Destination != "" {
		attrs = append(attrs, logging.String("destination", record.Destination))
	}
	if record.Err != nil {
		attrs = append(attrs, logging.Error(record.Err))
		if record.Outcome == OutcomeFailed {
			o.logger.Error("item failed", logging.Args(attrs...)...)
		} else {
			o.logger.Info("item skipped", logging.Args(attrs...)...)
		}
		return
	}
	o.logger.Info("item processed", logging.Args(attrs...)...)
}
