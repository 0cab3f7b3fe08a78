// Package cache persists the catalog record over a swappable backend.
//
// Backends deal in bytes; Store[T] binds one key and a serializer to a backend
// and turns every read failure into a miss. A missing key, a corrupt payload and
// an unreachable server all look the same to the caller, which then refetches.
package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/LavishGent/breedbase/internal/metrics"
	"github.com/LavishGent/breedbase/internal/types"
)

// Store reads and writes a single value of type T under a fixed key.
type Store[T any] struct {
	backend    types.Backend
	serializer types.Serializer
	metrics    types.MetricsRecorder
	logger     *slog.Logger
	key        string
	ttl        time.Duration
}

// StoreOption configures a Store.
type StoreOption func(*storeOptions)

type storeOptions struct {
	serializer types.Serializer
	metrics    types.MetricsRecorder
	logger     *slog.Logger
	ttl        time.Duration
}

// WithSerializer replaces the default compact JSON serializer.
func WithSerializer(s types.Serializer) StoreOption {
	return func(o *storeOptions) { o.serializer = s }
}

// WithMetrics records hits, misses, writes and errors.
func WithMetrics(m types.MetricsRecorder) StoreOption {
	return func(o *storeOptions) { o.metrics = m }
}

// WithLogger sets the store logger.
func WithLogger(l *slog.Logger) StoreOption {
	return func(o *storeOptions) { o.logger = l }
}

// WithRecordTTL passes ttl to the backend on every write. Zero keeps records forever.
func WithRecordTTL(ttl time.Duration) StoreOption {
	return func(o *storeOptions) { o.ttl = ttl }
}

// NewStore binds key on backend.
func NewStore[T any](backend types.Backend, key string, opts ...StoreOption) *Store[T] {
	o := storeOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.serializer == nil {
		o.serializer = NewJSONSerializer(false)
	}
	if o.metrics == nil {
		o.metrics = metrics.NewNoOpTracker()
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	return &Store[T]{
		backend:    backend,
		serializer: o.serializer,
		metrics:    o.metrics,
		logger:     o.logger.With("component", "cache-store", "backend", backend.Name()),
		key:        key,
		ttl:        o.ttl,
	}
}

// Key returns the bound key.
func (s *Store[T]) Key() string {
	return s.key
}

// Backend returns the underlying backend.
func (s *Store[T]) Backend() types.Backend {
	return s.backend
}

// Get returns the stored value. Any failure is reported as a miss.
func (s *Store[T]) Get(ctx context.Context) (T, bool) {
	var zero T
	start := time.Now()

	data, err := s.backend.Get(ctx, s.key)
	if err != nil {
		if types.IsCacheMiss(err) {
			s.logger.Debug("Cache miss", "key", s.key)
		} else {
			s.logger.Warn("Cache read failed, treating as miss", "key", s.key, "error", err)
			s.metrics.RecordError(s.backend.Name(), "get", err)
		}
		s.metrics.RecordMiss(s.backend.Name(), s.key, time.Since(start))
		return zero, false
	}

	var value T
	if err := s.serializer.Unmarshal(data, &value); err != nil {
		s.logger.Warn("Cached record is corrupt, treating as miss", "key", s.key, "error", err)
		s.metrics.RecordError(s.backend.Name(), "decode", err)
		s.metrics.RecordMiss(s.backend.Name(), s.key, time.Since(start))
		return zero, false
	}

	s.metrics.RecordHit(s.backend.Name(), s.key, time.Since(start))
	return value, true
}

// Set replaces the stored value.
func (s *Store[T]) Set(ctx context.Context, value T) error {
	start := time.Now()

	data, err := s.serializer.Marshal(value)
	if err != nil {
		s.metrics.RecordError(s.backend.Name(), "encode", err)
		return types.NewCacheError("Set", s.key, s.backend.Name(), err)
	}

	if err := s.backend.Set(ctx, s.key, data, s.ttl); err != nil {
		s.metrics.RecordError(s.backend.Name(), "set", err)
		return err
	}

	s.metrics.RecordSet(s.backend.Name(), s.key, len(data), time.Since(start))
	return nil
}
