package cache

import (
	"context"
	"time"

	"github.com/LavishGent/breedbase/internal/config"
	"github.com/LavishGent/breedbase/internal/types"
)

// DisabledBackend always misses and discards writes.
type DisabledBackend struct{}

// NewDisabledBackend creates a disabled backend.
func NewDisabledBackend() *DisabledBackend {
	return &DisabledBackend{}
}

// Name returns "disabled".
func (DisabledBackend) Name() string { return config.BackendDisabled }

// IsAvailable returns false as this backend is disabled.
func (DisabledBackend) IsAvailable() bool { return false }

// Get returns ErrCacheMiss as this backend is disabled.
func (DisabledBackend) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, types.ErrCacheMiss
}

// Set does nothing as this backend is disabled.
func (DisabledBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return nil
}

// Close is a no-op.
func (DisabledBackend) Close() error { return nil }

var _ types.Backend = DisabledBackend{}
