package cache

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/allegro/bigcache/v3"

	"github.com/LavishGent/breedbase/internal/config"
	"github.com/LavishGent/breedbase/internal/types"
)

// MemoryBackend keeps records in an in-process bigcache. Records do not survive
// a restart; it is the default backend for tests and the first tier of the
// tiered backend.
type MemoryBackend struct {
	cache  *bigcache.BigCache
	config config.MemoryConfig
	logger *slog.Logger

	hits      atomic.Int64
	misses    atomic.Int64
	sets      atomic.Int64
	evictions atomic.Int64

	closed atomic.Bool
}

// NewMemoryBackend creates a bigcache-backed store. The ttl passed to Set is
// ignored: bigcache applies one LifeWindow to every entry and only evicts when
// CleanupInterval is positive.
func NewMemoryBackend(cfg config.MemoryConfig, logger *slog.Logger) (*MemoryBackend, error) {
	if logger == nil {
		logger = slog.Default()
	}

	mb := &MemoryBackend{
		config: cfg,
		logger: logger.With("component", "memory-backend"),
	}

	shards := cfg.Shards
	if shards <= 0 {
		shards = 16
	}
	lifeWindow := cfg.LifeWindow
	if lifeWindow <= 0 {
		lifeWindow = 7 * 24 * time.Hour
	}
	hardMax := 0
	if cfg.HardMaxCacheSize {
		hardMax = cfg.MaxSizeMB
	}

	bcConfig := bigcache.Config{
		Shards:             shards,
		LifeWindow:         lifeWindow,
		CleanWindow:        cfg.CleanupInterval,
		MaxEntriesInWindow: 64,
		MaxEntrySize:       cfg.MaxEntrySize,
		HardMaxCacheSize:   hardMax,
		Verbose:            false,
		Logger:             &bigcacheLogger{logger: mb.logger},
		OnRemoveWithReason: func(key string, entry []byte, reason bigcache.RemoveReason) {
			if reason == bigcache.NoSpace || reason == bigcache.Expired {
				mb.evictions.Add(1)
			}
		},
	}

	bc, err := bigcache.New(context.Background(), bcConfig)
	if err != nil {
		return nil, types.NewCacheError("New", "", "memory", err)
	}

	mb.cache = bc
	return mb, nil
}

// Name returns the backend name.
func (m *MemoryBackend) Name() string {
	return config.BackendMemory
}

// IsAvailable returns true until the backend is closed.
func (m *MemoryBackend) IsAvailable() bool {
	return !m.closed.Load()
}

// Get returns the stored bytes or ErrCacheMiss.
func (m *MemoryBackend) Get(ctx context.Context, key string) ([]byte, error) {
	if m.closed.Load() {
		return nil, types.ErrClosed
	}

	data, err := m.cache.Get(key)
	if err != nil {
		if errors.Is(err, bigcache.ErrEntryNotFound) {
			m.misses.Add(1)
			return nil, types.ErrCacheMiss
		}
		return nil, types.NewCacheError("Get", key, "memory", err)
	}

	m.hits.Add(1)
	return data, nil
}

// Set stores value under key, replacing any previous entry.
func (m *MemoryBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.closed.Load() {
		return types.ErrClosed
	}

	if err := m.cache.Set(key, value); err != nil {
		return types.NewCacheError("Set", key, "memory", err)
	}

	m.sets.Add(1)
	return nil
}

// Close releases the bigcache shards. Closing twice is a no-op.
func (m *MemoryBackend) Close() error {
	if m.closed.Swap(true) {
		return nil
	}
	return m.cache.Close()
}

// Stats returns hit/miss counters and the current footprint.
func (m *MemoryBackend) Stats() types.BackendStats {
	return types.BackendStats{
		Hits:      m.hits.Load(),
		Misses:    m.misses.Load(),
		Entries:   m.cache.Len(),
		SizeBytes: int64(m.cache.Capacity()),
	}
}

// Evictions returns how many entries bigcache dropped for space or age.
func (m *MemoryBackend) Evictions() int64 {
	return m.evictions.Load()
}

type bigcacheLogger struct {
	logger *slog.Logger
}

func (l *bigcacheLogger) Printf(format string, args ...any) {
	l.logger.Debug("bigcache: "+format, args...)
}

var (
	_ types.Backend       = (*MemoryBackend)(nil)
	_ types.StatsProvider = (*MemoryBackend)(nil)
)
