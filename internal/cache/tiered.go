package cache

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/LavishGent/breedbase/internal/config"
	"github.com/LavishGent/breedbase/internal/types"
)

const (
	// DefaultShutdownTimeout bounds how long Close waits for back-fills.
	DefaultShutdownTimeout = 30 * time.Second
	// DefaultBackgroundOpTimeout bounds a single back-fill write.
	DefaultBackgroundOpTimeout = 5 * time.Second
)

// TieredBackend reads memory first and falls through to a durable backend.
// Durable hits are copied into memory in the background.
type TieredBackend struct {
	memory  types.Backend
	durable types.Backend
	logger  *slog.Logger

	shutdownCtx    context.Context
	shutdownCancel context.CancelFunc
	bgWg           sync.WaitGroup
	bgMu           sync.Mutex
	closed         atomic.Bool
}

// NewTieredBackend combines memory and durable. durable is normally a GuardedBackend.
func NewTieredBackend(memory, durable types.Backend, logger *slog.Logger) *TieredBackend {
	if logger == nil {
		logger = slog.Default()
	}
	shutdownCtx, shutdownCancel := context.WithCancel(context.Background())
	return &TieredBackend{
		memory:         memory,
		durable:        durable,
		logger:         logger.With("component", "tiered-backend", "durable", durable.Name()),
		shutdownCtx:    shutdownCtx,
		shutdownCancel: shutdownCancel,
	}
}

// Name returns "tiered".
func (t *TieredBackend) Name() string {
	return config.BackendTiered
}

// IsAvailable reports whether either tier can serve reads until Close.
func (t *TieredBackend) IsAvailable() bool {
	return !t.closed.Load() && (t.memory.IsAvailable() || t.durable.IsAvailable())
}

// Get tries memory, then the durable tier.
func (t *TieredBackend) Get(ctx context.Context, key string) ([]byte, error) {
	if t.closed.Load() {
		return nil, types.ErrClosed
	}

	data, err := t.memory.Get(ctx, key)
	if err == nil {
		return data, nil
	}
	if !types.IsCacheMiss(err) {
		t.logger.Debug("Memory tier error", "key", key, "error", err)
	}

	data, err = t.durable.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	t.runBackground(func(ctx context.Context) {
		if setErr := t.memory.Set(ctx, key, data, 0); setErr != nil {
			t.logger.Debug("Failed to populate memory from durable tier", "key", key, "error", setErr)
		}
	})

	return data, nil
}

// Set writes both tiers. A memory failure is logged; a durable failure is returned.
func (t *TieredBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if t.closed.Load() {
		return types.ErrClosed
	}

	if err := t.memory.Set(ctx, key, value, ttl); err != nil {
		t.logger.Debug("Memory tier write failed", "key", key, "error", err)
	}
	return t.durable.Set(ctx, key, value, ttl)
}

// CircuitState reports the durable tier's breaker, or "closed" when it has none.
func (t *TieredBackend) CircuitState() string {
	if cs, ok := t.durable.(interface{ CircuitState() string }); ok {
		return cs.CircuitState()
	}
	return "closed"
}

// Stats adds up the counters of both tiers.
func (t *TieredBackend) Stats() types.BackendStats {
	var out types.BackendStats
	for _, b := range []types.Backend{t.memory, t.durable} {
		if sp, ok := b.(types.StatsProvider); ok {
			s := sp.Stats()
			out.Hits += s.Hits
			out.Misses += s.Misses
			out.Entries += s.Entries
			out.SizeBytes += s.SizeBytes
		}
	}
	return out
}

// Close releases both tiers using the default shutdown timeout.
func (t *TieredBackend) Close() error {
	return t.CloseWithTimeout(DefaultShutdownTimeout)
}

// CloseWithTimeout waits up to timeout for back-fills, then closes both tiers.
// On timeout it returns ErrShutdownTimeout joined with any close errors.
func (t *TieredBackend) CloseWithTimeout(timeout time.Duration) error {
	t.bgMu.Lock()
	if t.closed.Swap(true) {
		t.bgMu.Unlock()
		return nil
	}
	t.shutdownCancel()
	t.bgMu.Unlock()

	done := make(chan struct{})
	go func() {
		t.bgWg.Wait()
		close(done)
	}()

	var errs []error
	select {
	case <-done:
	case <-time.After(timeout):
		t.logger.Warn("Shutdown timeout exceeded, proceeding with close", "timeout", timeout)
		errs = append(errs, types.ErrShutdownTimeout)
	}

	if err := t.memory.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := t.durable.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// runBackground starts fn unless the backend is closing. bgMu orders Add against
// the Wait in CloseWithTimeout.
func (t *TieredBackend) runBackground(fn func(ctx context.Context)) {
	t.bgMu.Lock()
	if t.closed.Load() {
		t.bgMu.Unlock()
		return
	}
	t.bgWg.Add(1)
	t.bgMu.Unlock()

	go func() {
		defer t.bgWg.Done()
		ctx, cancel := context.WithTimeout(t.shutdownCtx, DefaultBackgroundOpTimeout)
		defer cancel()
		fn(ctx)
	}()
}

var (
	_ types.Backend       = (*TieredBackend)(nil)
	_ types.StatsProvider = (*TieredBackend)(nil)
)
