package breedbase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/LavishGent/breedbase/internal/cache"
	"github.com/LavishGent/breedbase/internal/catalog"
	"github.com/LavishGent/breedbase/internal/config"
	"github.com/LavishGent/breedbase/internal/lookup"
	"github.com/LavishGent/breedbase/internal/metrics"
	"github.com/LavishGent/breedbase/internal/metrics/datadog"
	"github.com/LavishGent/breedbase/internal/narrative"
	"github.com/LavishGent/breedbase/internal/types"
	"github.com/LavishGent/breedbase/internal/upstream"
)

// Client owns the catalog cache and the three upstream APIs. It is safe for
// concurrent use.
type Client struct {
	cfg    *config.Config
	logger *slog.Logger
	now    func() time.Time

	backend    types.Backend
	tracker    *metrics.Tracker
	publisher  types.Publisher
	background *metrics.BackgroundPublisher

	catalog   *catalog.Service
	lookup    *lookup.Service
	narrative *narrative.Service
	wiki      *upstream.Wiki

	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

func newClient(ctx context.Context, cfg *config.Config, opts *ClientOptions) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := newSlogLogger(opts.Logger).With("component", "breedbase")

	c := &Client{
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
	if opts.Clock != nil {
		c.now = opts.Clock
	}

	recorder := opts.Metrics
	if recorder == nil {
		publisher, err := newPublisher(cfg, logger)
		if err != nil {
			return nil, err
		}
		c.publisher = publisher
		c.tracker = metrics.NewTracker(metrics.WithPublisher(publisher))
		recorder = c.tracker
		if cfg.Metrics.Enabled && cfg.Metrics.PublishInterval > 0 {
			c.background = metrics.NewBackgroundPublisher(publisher, cfg.Metrics.PublishInterval, c.tracker.Snapshot, logger)
			c.background.Start(context.Background())
		}
	} else {
		c.publisher = metrics.NewNoOpPublisher()
	}

	backend := opts.Backend
	if backend == nil {
		backendCfg := cfg
		if opts.DisableResilience {
			cp := *cfg
			cp.CircuitBreaker.Enabled = false
			cp.Bulkhead.Enabled = false
			backendCfg = &cp
		}
		var err error
		backend, err = cache.NewBackend(ctx, backendCfg, logger, recorder)
		if err != nil {
			c.stopMetrics()
			return nil, fmt.Errorf("failed to create cache backend: %w", err)
		}
	}
	c.backend = backend

	serializer := opts.Serializer
	if serializer == nil {
		serializer = cache.NewJSONSerializer(cfg.Cache.Indent)
	}
	store := cache.NewStore[types.CacheRecord](backend, cfg.Cache.Key,
		cache.WithSerializer(serializer),
		cache.WithMetrics(recorder),
		cache.WithLogger(logger),
		cache.WithRecordTTL(cfg.Cache.RecordTTL),
	)

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Upstream.HTTPTimeout}
	}
	uc := upstream.NewClient(hc, cfg.Upstream.UserAgent, recorder, logger)
	dogAPI := upstream.NewDogAPI(uc, cfg.Upstream.DogAPIBaseURL, cfg.Upstream.DogAPIKey)
	c.wiki = upstream.NewWiki(uc, cfg.Upstream.WikiSummaryURL, cfg.Upstream.WikiAPIURL)
	// The narrative timeout bounds the generative call, not the shared client timeout.
	chat := upstream.NewChat(uc.WithHTTPClient(&http.Client{Transport: hc.Transport}),
		cfg.Upstream.OpenAIBaseURL, cfg.Upstream.OpenAIKey, cfg.Narrative.Model, cfg.Narrative.Temperature)

	catalogOpts := []catalog.Option{
		catalog.WithLogger(logger),
		catalog.WithMetrics(recorder),
		catalog.WithClock(c.now),
		catalog.WithImageCDN(cfg.Upstream.ImageCDN),
	}
	if cfg.Catalog.ResolveMissingImages {
		catalogOpts = append(catalogOpts, catalog.WithImageSource(dogAPI))
	}
	c.catalog = catalog.NewService(store, dogAPI, cfg.Catalog, catalogOpts...)
	c.lookup = lookup.NewService(c.catalog, c.wiki, cfg.Lookup, recorder, logger)
	c.narrative = narrative.NewService(chat, c.wiki, cfg.Narrative, recorder, logger)

	logger.Info("Client initialized",
		"backend", backend.Name(),
		"catalogTTL", cfg.Catalog.TTL,
		"narrativeMode", cfg.Narrative.Mode,
	)
	return c, nil
}

func newPublisher(cfg *config.Config, logger *slog.Logger) (types.Publisher, error) {
	switch {
	case !cfg.Metrics.Enabled:
		return metrics.NewNoOpPublisher(), nil
	case cfg.Metrics.DataDog.Enabled:
		return datadog.NewPublisher(&cfg.Metrics.DataDog, logger)
	case cfg.Metrics.LogEvents:
		return metrics.NewLoggingPublisher(logger), nil
	default:
		return metrics.NewNoOpPublisher(), nil
	}
}

// GetCatalog returns the breed catalog, refreshing it from the breed-data API
// when the cached record is older than the catalog TTL. When the refresh fails
// the cached record is served; with nothing cached the error wraps ErrNoCatalog.
func (c *Client) GetCatalog(ctx context.Context) ([]Breed, error) {
	if c.closed.Load() {
		return nil, ErrClosed
	}
	return c.catalog.GetCatalog(ctx)
}

// Refresh fetches the breed list regardless of the record's age and persists it
// when its digest changed.
func (c *Client) Refresh(ctx context.Context) ([]Breed, error) {
	if c.closed.Load() {
		return nil, ErrClosed
	}
	return c.catalog.Refresh(ctx)
}

// CatalogState reports the freshness of the cached record without fetching.
func (c *Client) CatalogState(ctx context.Context) CatalogState {
	return c.catalog.State(ctx)
}

// Lookup answers a free-text breed query from the cached catalog or the encyclopedia.
func (c *Client) Lookup(ctx context.Context, query string) (LookupResult, error) {
	if c.closed.Load() {
		return LookupResult{}, ErrClosed
	}
	return c.lookup.Lookup(ctx, query)
}

// Narrate asks the generative text API for a Markdown description of breed.
func (c *Client) Narrate(ctx context.Context, breed string) (NarrativeResult, error) {
	if c.closed.Load() {
		return NarrativeResult{}, ErrClosed
	}
	return c.narrative.Narrate(ctx, breed)
}

// ImageInfo resolves an encyclopedia file name to its image URL.
func (c *Client) ImageInfo(ctx context.Context, fileName string) (string, error) {
	if c.closed.Load() {
		return "", ErrClosed
	}
	return c.wiki.ImageInfo(ctx, fileName)
}

// Health reports the cache backend and the cached catalog without calling upstream.
func (c *Client) Health(ctx context.Context) *HealthReport {
	now := c.now()
	report := &HealthReport{
		Timestamp: now,
		Cache: CacheHealth{
			Backend:   c.backend.Name(),
			Available: c.backend.IsAvailable() && !c.closed.Load(),
		},
	}
	if cs, ok := c.backend.(interface{ CircuitState() string }); ok {
		report.Cache.CircuitBreakerState = cs.CircuitState()
	}
	if sp, ok := c.backend.(types.StatsProvider); ok {
		stats := sp.Stats()
		report.Cache.Hits = stats.Hits
		report.Cache.Misses = stats.Misses
	}

	info := c.catalog.Inspect(ctx)
	report.Catalog = CatalogHealth{
		State:     info.State.String(),
		Entries:   info.Entries,
		Age:       info.Age,
		DataHash:  info.DataHash,
		CheckedAt: now,
	}
	report.Derive()
	return report
}

// Metrics returns the built-in tracker's counters. It is empty when WithMetrics
// replaced the tracker.
func (c *Client) Metrics() MetricsSnapshot {
	if c.tracker == nil {
		return MetricsSnapshot{Timestamp: c.now()}
	}
	return c.tracker.Snapshot()
}

// Publisher returns the metrics sink, for callers such as the HTTP surface
// that record their own timings.
func (c *Client) Publisher() types.Publisher {
	return c.publisher
}

// Config returns the configuration the client was built with.
func (c *Client) Config() *Config {
	return c.cfg
}

// Close stops background publishing and closes the cache backend. It is safe
// to call more than once.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		var errs []error
		if err := c.backend.Close(); err != nil {
			errs = append(errs, fmt.Errorf("cache backend: %w", err))
		}
		if err := c.stopMetrics(); err != nil {
			errs = append(errs, fmt.Errorf("metrics publisher: %w", err))
		}
		c.closeErr = errors.Join(errs...)
		c.logger.Info("Client closed")
	})
	return c.closeErr
}

func (c *Client) stopMetrics() error {
	if c.background != nil {
		c.background.Stop()
	}
	if c.publisher != nil {
		return c.publisher.Close()
	}
	return nil
}
