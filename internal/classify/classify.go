package classify

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"mediasort/internal/cache"
	"mediasort/internal/logging"
	"mediasort/internal/parse"
	"mediasort/internal/provider/tvdb"
)

// Category is where an item belongs in the library.
type Category string

const (
	// CategoryMovie routes to the movie library.
	CategoryMovie Category = "movie"
	// CategoryTVCurrent routes to the library for shows still airing.
	CategoryTVCurrent Category = "tv-current"
	// CategoryTVConcluded routes to the library for finished shows.
	CategoryTVConcluded Category = "tv-concluded"
)

// Result carries the category plus the provider identity when one was
// resolved, for logging and reporting.
type Result struct {
	Category   Category
	ProviderID string
	FromCache  bool
}

// StatusProvider resolves a show's airing status from an external API.
type StatusProvider interface {
	LookupSeries(ctx context.Context, name string) (*tvdb.SeriesInfo, error)
}

// StatusCache persists provider lookups across runs.
type StatusCache interface {
	Get(ctx context.Context, key string) (*cache.Entry, error)
	Put(ctx context.Context, entry cache.Entry) error
}

// Classifier decides the library category for a parsed item. Provider
// failures never surface as errors; the classifier degrades through
// stale cache entries down to a current-show default so a single API
// outage cannot stall a run.
type Classifier struct {
	provider StatusProvider
	cache    StatusCache
	ttl      time.Duration
	timeout  time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Classifier) {
		if now != nil {
			c.now = now
		}
	}
}

// New creates a Classifier. Both provider and statusCache may be nil;
// a nil provider means every uncached show defaults to current.
func New(provider StatusProvider, statusCache StatusCache, ttl, timeout time.Duration, logger *slog.Logger, opts ...Option) *Classifier {
	if logger == nil {
		logger = logging.NewNop()
	}
	if ttl <= 0 {
		ttl = 168 * time.Hour
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	classifier := &Classifier{
		provider: provider,
		cache:    statusCache,
		ttl:      ttl,
		timeout:  timeout,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(classifier)
	}
	return classifier
}

// CacheKey builds the cache key for a parsed name: the normalized title,
// with the year appended when one was parsed so remakes stay distinct.
func CacheKey(parsed *parse.ParsedName) string {
	if parsed.Year > 0 {
		return parsed.NormalizedTitle + " " + strconv.Itoa(parsed.Year)
	}
	return parsed.NormalizedTitle
}

// Classify determines the category for parsed. Movies never touch the
// cache or the provider.
func (c *Classifier) Classify(ctx context.Context, parsed *parse.ParsedName) Result {
	if !parsed.TV {
		return Result{Category: CategoryMovie}
	}

	key := CacheKey(parsed)
	fresh, stale := c.lookupCache(ctx, key)
	if fresh != nil {
		return Result{Category: categoryFor(fresh.Status), ProviderID: fresh.ProviderID, FromCache: true}
	}

	if c.provider != nil {
		result, ok := c.queryProvider(ctx, key, parsed.Title)
		if ok {
			return result
		}
	}

	if stale != nil {
		c.logger.Warn("using stale show status",
			logging.String("title", parsed.Title),
			logging.Duration("age", stale.Age(c.now())),
			logging.String("status", stale.Status))
		return Result{Category: categoryFor(stale.Status), ProviderID: stale.ProviderID, FromCache: true}
	}

	c.logger.Warn("show status unavailable, defaulting to current",
		logging.String("title", parsed.Title))
	return Result{Category: CategoryTVCurrent}
}

// lookupCache returns the cached entry as fresh or stale depending on
// the TTL. Cache errors are logged and treated as a miss.
func (c *Classifier) lookupCache(ctx context.Context, key string) (fresh, stale *cache.Entry) {
	if c.cache == nil {
		return nil, nil
	}
	entry, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.Warn("status cache read failed", logging.Error(err))
		return nil, nil
	}
	if entry == nil {
		return nil, nil
	}
	if entry.Age(c.now()) <= c.ttl {
		return entry, nil
	}
	return nil, entry
}

func (c *Classifier) queryProvider(ctx context.Context, key, title string) (Result, bool) {
	queryCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	info, err := c.provider.LookupSeries(queryCtx, title)
	if err != nil {
		c.logger.Warn("show status lookup failed",
			logging.String("title", title),
			logging.Error(err))
		return Result{}, false
	}

	providerID := strconv.FormatInt(info.ID, 10)
	if c.cache != nil {
		entry := cache.Entry{
			Key:        key,
			Status:     string(info.Status),
			ProviderID: providerID,
			FetchedAt:  c.now().UTC(),
		}
		if err := c.cache.Put(ctx, entry); err != nil {
			c.logger.Warn("status cache write failed", logging.Error(err))
		}
	}
	return Result{Category: categoryFor(string(info.Status)), ProviderID: providerID}, true
}

// categoryFor maps a stored status string to a TV category. Anything
// unrecognized lands in current, the safe side for a show whose status
// may still change.
func categoryFor(status string) Category {
	if status == string(tvdb.StatusConcluded) {
		return CategoryTVConcluded
	}
	return CategoryTVCurrent
}

// String implements fmt.Stringer for logging.
func (r Result) String() string {
	if r.ProviderID == "" {
		return string(r.Category)
	}
	return fmt.Sprintf("%s (id=%s)", r.Category, r.ProviderID)
}
