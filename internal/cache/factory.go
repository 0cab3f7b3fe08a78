package cache

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/LavishGent/breedbase/internal/config"
	"github.com/LavishGent/breedbase/internal/resilience"
	"github.com/LavishGent/breedbase/internal/types"
)

// NewBackend builds the backend selected by cfg.Cache.Backend. Remote backends
// are wrapped in a resilience policy; tiered puts memory in front of
// cfg.Cache.Durable.
func NewBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger, metrics types.MetricsRecorder) (types.Backend, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Cache.Backend {
	case config.BackendTiered:
		memory, err := NewMemoryBackend(cfg.Memory, logger)
		if err != nil {
			return nil, err
		}
		durable, err := newSingleBackend(ctx, cfg.Cache.Durable, cfg, logger, metrics)
		if err != nil {
			_ = memory.Close()
			return nil, err
		}
		return NewTieredBackend(memory, durable, logger), nil
	default:
		return newSingleBackend(ctx, cfg.Cache.Backend, cfg, logger, metrics)
	}
}

func newSingleBackend(ctx context.Context, name string, cfg *config.Config, logger *slog.Logger, metrics types.MetricsRecorder) (types.Backend, error) {
	switch name {
	case config.BackendMemory:
		mb, err := NewMemoryBackend(cfg.Memory, logger)
		if err != nil {
			return nil, err
		}
		return mb, nil
	case config.BackendFile:
		return NewFileBackend(cfg.File, logger), nil
	case config.BackendDisabled:
		return NewDisabledBackend(), nil
	case config.BackendRedis:
		rb, err := NewRedisBackend(cfg.Redis, logger)
		if err != nil {
			return nil, err
		}
		return NewGuardedBackend(rb, resilience.NewPolicy(name, cfg), logger, metrics), nil
	case config.BackendDynamoDB:
		db, err := NewDynamoBackend(ctx, cfg.DynamoDB, logger)
		if err != nil {
			return nil, err
		}
		return NewGuardedBackend(db, resilience.NewPolicy(name, cfg), logger, metrics), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", name)
	}
}
