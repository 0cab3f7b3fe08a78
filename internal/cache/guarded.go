package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/LavishGent/breedbase/internal/resilience"
	"github.com/LavishGent/breedbase/internal/types"
)

// GuardedBackend runs every call to a remote backend through a resilience policy,
// so an unreachable server is skipped quickly once its breaker opens.
type GuardedBackend struct {
	backend types.Backend
	policy  resilience.Executor
	logger  *slog.Logger
}

// NewGuardedBackend wraps backend with policy. Circuit transitions are logged and,
// when metrics is non-nil, recorded.
func NewGuardedBackend(backend types.Backend, policy resilience.Executor, logger *slog.Logger, metrics types.MetricsRecorder) *GuardedBackend {
	if logger == nil {
		logger = slog.Default()
	}
	g := &GuardedBackend{
		backend: backend,
		policy:  policy,
		logger:  logger.With("component", "guarded-backend", "backend", backend.Name()),
	}

	policy.SetOnCircuitStateChange(func(from, to resilience.State) {
		switch to {
		case resilience.StateOpen:
			g.logger.Warn("Circuit breaker opened", "from", from.String())
		case resilience.StateClosed:
			g.logger.Info("Circuit breaker closed", "from", from.String())
		default:
			g.logger.Info("Circuit breaker state changed", "from", from.String(), "to", to.String())
		}
		if metrics != nil {
			metrics.RecordCircuitBreakerStateChange(from.String(), to.String())
		}
	})

	return g
}

// Name returns the wrapped backend's name.
func (g *GuardedBackend) Name() string {
	return g.backend.Name()
}

// IsAvailable is false while the wrapped backend is down or the breaker is open.
func (g *GuardedBackend) IsAvailable() bool {
	return g.backend.IsAvailable() && g.policy.CircuitState() != resilience.StateOpen
}

// Get reads through the policy. An unavailable backend fails fast with ErrBackendUnavailable.
func (g *GuardedBackend) Get(ctx context.Context, key string) ([]byte, error) {
	if !g.backend.IsAvailable() {
		return nil, types.ErrBackendUnavailable
	}

	var data []byte
	err := g.policy.Execute(ctx, func(ctx context.Context) error {
		var getErr error
		data, getErr = g.backend.Get(ctx, key)
		return getErr
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Set writes through the policy.
func (g *GuardedBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if !g.backend.IsAvailable() {
		return types.ErrBackendUnavailable
	}
	return g.policy.Execute(ctx, func(ctx context.Context) error {
		return g.backend.Set(ctx, key, value, ttl)
	})
}

// Close closes the wrapped backend.
func (g *GuardedBackend) Close() error {
	return g.backend.Close()
}

// CircuitState reports the breaker state of the wrapped backend.
func (g *GuardedBackend) CircuitState() string {
	return g.policy.CircuitState().String()
}

// Stats forwards the wrapped backend's counters when it keeps them.
func (g *GuardedBackend) Stats() types.BackendStats {
	if sp, ok := g.backend.(types.StatsProvider); ok {
		return sp.Stats()
	}
	return types.BackendStats{}
}

// Unwrap returns the guarded backend.
func (g *GuardedBackend) Unwrap() types.Backend {
	return g.backend
}

var (
	_ types.Backend       = (*GuardedBackend)(nil)
	_ types.StatsProvider = (*GuardedBackend)(nil)
)
