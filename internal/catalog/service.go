// Package catalog serves the normalized breed catalog from a TTL-gated cache
// record and refreshes it from the breed-data API when the record is stale.
//
// A read classifies the record as fresh, stale-check or empty. Fresh records are
// returned without network I/O. Otherwise the raw list is fetched and hashed; an
// unchanged digest keeps the cached breeds, a new digest normalizes and persists
// a new record. When the fetch fails, any cached record is served stale.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/LavishGent/breedbase/internal/config"
	"github.com/LavishGent/breedbase/internal/metrics"
	"github.com/LavishGent/breedbase/internal/types"
)

const (
	refreshKey = "catalog"

	// refreshTimeout bounds a shared refresh, which runs detached from the
	// callers waiting on it. Each upstream request is bounded separately.
	refreshTimeout = time.Minute
)

// RecordStore holds the single catalog record. cache.Store[types.CacheRecord]
// satisfies it.
type RecordStore interface {
	Get(ctx context.Context) (types.CacheRecord, bool)
	Set(ctx context.Context, rec types.CacheRecord) error
}

// BreedSource returns the raw breed list.
type BreedSource interface {
	Breeds(ctx context.Context) ([]types.BreedRaw, error)
}

// ImageSource finds an image for a breed that has no reference image.
type ImageSource interface {
	ImageForBreed(ctx context.Context, breedID int) (string, error)
}

// Service owns the catalog record. It is safe for concurrent use; concurrent
// refreshes within one process share a single upstream fetch.
type Service struct {
	store   RecordStore
	source  BreedSource
	images  ImageSource
	cfg     config.CatalogConfig
	cdn     string
	metrics types.MetricsRecorder
	logger  *slog.Logger
	now     func() time.Time

	group singleflight.Group
}

// Option configures a Service.
type Option func(*Service)

// WithImageSource enables per-breed image lookup for breeds without a reference
// image when cfg.ResolveMissingImages is set.
func WithImageSource(images ImageSource) Option {
	return func(s *Service) { s.images = images }
}

// WithClock replaces time.Now for record ages and timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithMetrics sets the recorder for catalog outcomes.
func WithMetrics(m types.MetricsRecorder) Option {
	return func(s *Service) { s.metrics = m }
}

// WithImageCDN overrides the format string used to build image URLs.
func WithImageCDN(cdn string) Option {
	return func(s *Service) { s.cdn = cdn }
}

// NewService creates a catalog service over store, refreshed from source.
func NewService(store RecordStore, source BreedSource, cfg config.CatalogConfig, opts ...Option) *Service {
	s := &Service{
		store:   store,
		source:  source,
		cfg:     cfg,
		cdn:     DefaultImageCDN,
		metrics: metrics.NewNoOpTracker(),
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cfg.TTL <= 0 {
		s.cfg.TTL = 24 * time.Hour
	}
	if s.cfg.NormalizeWorkers <= 0 {
		s.cfg.NormalizeWorkers = 8
	}
	s.logger = s.logger.With("component", "catalog")
	return s
}

// GetCatalog returns the catalog, refreshing it when the record is stale or
// missing. It fails with ErrNoCatalog only when nothing can be served.
func (s *Service) GetCatalog(ctx context.Context) ([]types.EnrichedBreed, error) {
	rec, ok := s.store.Get(ctx)
	if ok && rec.IsFresh(s.now(), s.cfg.TTL) {
		s.metrics.RecordCatalog(types.CatalogFresh, metrics.CatalogOutcomeFresh)
		return rec.Breeds, nil
	}
	return s.refresh(ctx, false)
}

// Refresh checks upstream regardless of the record's age.
func (s *Service) Refresh(ctx context.Context) ([]types.EnrichedBreed, error) {
	return s.refresh(ctx, true)
}

// Snapshot returns the cached breeds without any network call.
func (s *Service) Snapshot(ctx context.Context) ([]types.EnrichedBreed, bool) {
	rec, ok := s.store.Get(ctx)
	if !ok {
		return nil, false
	}
	return rec.Breeds, true
}

// State classifies the current record.
func (s *Service) State(ctx context.Context) types.CatalogState {
	state, _ := s.inspect(ctx)
	return state
}

// Info describes the current record for health reporting.
type Info struct {
	State    types.CatalogState
	Entries  int
	Age      time.Duration
	DataHash string
}

// Inspect returns the state and summary of the current record.
func (s *Service) Inspect(ctx context.Context) Info {
	state, rec := s.inspect(ctx)
	info := Info{State: state}
	if rec != nil {
		info.Entries = len(rec.Breeds)
		info.Age = rec.Age(s.now())
		info.DataHash = rec.DataHash
	}
	return info
}

func (s *Service) inspect(ctx context.Context) (types.CatalogState, *types.CacheRecord) {
	rec, ok := s.store.Get(ctx)
	switch {
	case !ok:
		return types.CatalogEmpty, nil
	case rec.IsFresh(s.now(), s.cfg.TTL):
		return types.CatalogFresh, &rec
	default:
		return types.CatalogStaleCheck, &rec
	}
}

// FindByName returns the cached breed whose name equals name, ignoring case.
func (s *Service) FindByName(ctx context.Context, name string) (types.EnrichedBreed, bool) {
	breeds, ok := s.Snapshot(ctx)
	if !ok {
		return types.EnrichedBreed{}, false
	}
	name = strings.TrimSpace(name)
	for _, b := range breeds {
		if strings.EqualFold(b.Name, name) {
			return b, true
		}
	}
	return types.EnrichedBreed{}, false
}

// refresh runs one shared refresh per process. The shared work is detached from
// the caller that started it, so one caller giving up does not fail the others;
// each caller stops waiting when its own ctx is done.
func (s *Service) refresh(ctx context.Context, force bool) ([]types.EnrichedBreed, error) {
	ch := s.group.DoChan(refreshKey, func() (any, error) {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refreshTimeout)
		defer cancel()
		return s.refreshOnce(rctx, force)
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if res.Shared {
		s.logger.Debug("Joined in-flight catalog refresh")
	}
	if res.Err != nil {
		return nil, res.Err
	}
	breeds, ok := res.Val.([]types.EnrichedBreed)
	if !ok {
		return nil, fmt.Errorf("unexpected refresh result type: %T", res.Val)
	}
	return breeds, nil
}

func (s *Service) refreshOnce(ctx context.Context, force bool) ([]types.EnrichedBreed, error) {
	cached, hasCached := s.store.Get(ctx)
	if !force && hasCached && cached.IsFresh(s.now(), s.cfg.TTL) {
		s.metrics.RecordCatalog(types.CatalogFresh, metrics.CatalogOutcomeFresh)
		return cached.Breeds, nil
	}

	state := types.CatalogEmpty
	if hasCached {
		state = types.CatalogStaleCheck
	}

	breeds, outcome, err := s.fetchAndPersist(ctx, cached, hasCached)
	if err != nil {
		return s.serveStale(ctx, state, err)
	}
	s.metrics.RecordCatalog(state, outcome)
	return breeds, nil
}

func (s *Service) fetchAndPersist(ctx context.Context, cached types.CacheRecord, hasCached bool) ([]types.EnrichedBreed, string, error) {
	raw, err := s.source.Breeds(ctx)
	if err != nil {
		return nil, "", err
	}

	digest, err := Hash(raw)
	if err != nil {
		return nil, "", err
	}

	if hasCached && cached.DataHash == digest {
		if s.cfg.TouchOnUnchanged {
			if err := s.store.Set(ctx, types.NewCacheRecord(s.now(), digest, cached.Breeds)); err != nil {
				s.logger.Warn("Failed to refresh catalog timestamp", "error", err)
			}
		}
		s.logger.Info("Catalog unchanged upstream", "breeds", len(cached.Breeds), "hash", digest)
		return cached.Breeds, metrics.CatalogOutcomeUnchanged, nil
	}

	normalized, err := s.normalizeAll(ctx, raw)
	if err != nil {
		return nil, "", err
	}
	filtered := Filter(normalized)

	if err := s.store.Set(ctx, types.NewCacheRecord(s.now(), digest, filtered)); err != nil {
		s.logger.Warn("Failed to persist catalog, serving fresh data uncached", "error", err)
	}

	s.logger.Info("Catalog refreshed", "breeds", len(filtered), "dropped", len(raw)-len(filtered), "hash", digest)
	return filtered, metrics.CatalogOutcomeRefreshed, nil
}

// normalizeAll maps raw into a pre-sized slice so the output keeps input order.
func (s *Service) normalizeAll(ctx context.Context, raw []types.BreedRaw) ([]types.EnrichedBreed, error) {
	out := make([]types.EnrichedBreed, len(raw))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.NormalizeWorkers)

	for i := range raw {
		g.Go(func() error {
			out[i] = s.normalizeOne(gctx, raw[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) normalizeOne(ctx context.Context, raw types.BreedRaw) types.EnrichedBreed {
	b := NormalizeWithCDN(raw, s.cdn)
	if b.ImageURL != PlaceholderImage || !s.cfg.ResolveMissingImages || s.images == nil {
		return b
	}

	url, err := s.images.ImageForBreed(ctx, raw.ID)
	if err != nil {
		s.logger.Debug("No image for breed", "id", raw.ID, "name", raw.Name, "error", err)
		return b
	}
	b.ImageURL = url
	return b
}

func (s *Service) serveStale(ctx context.Context, state types.CatalogState, cause error) ([]types.EnrichedBreed, error) {
	if rec, ok := s.store.Get(ctx); ok {
		s.logger.Warn("Catalog refresh failed, serving stale data",
			"error", cause,
			"breeds", len(rec.Breeds),
			"age", rec.Age(s.now()).Round(time.Second),
		)
		s.metrics.RecordCatalog(state, metrics.CatalogOutcomeStale)
		return rec.Breeds, nil
	}

	s.logger.Error("Catalog refresh failed with no cached data", "error", cause)
	s.metrics.RecordCatalog(state, metrics.CatalogOutcomeFailed)
	return nil, fmt.Errorf("%w: %w", types.ErrNoCatalog, cause)
}
