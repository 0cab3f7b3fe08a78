package resilience

import (
	"context"
	"errors"

	"github.com/LavishGent/breedbase/internal/types"
)

// Local names for the sentinels this package returns. They are the same values
// as in types, so errors.Is works against either.
var (
	ErrCircuitOpen     = types.ErrCircuitOpen
	ErrBulkheadFull    = types.ErrBulkheadFull
	ErrBulkheadTimeout = types.ErrBulkheadTimeout
	ErrTimeout         = types.ErrTimeout
)

// IsCircuitOpen reports a rejection by an open breaker.
func IsCircuitOpen(err error) bool {
	return errors.Is(err, ErrCircuitOpen)
}

// IsBulkheadError reports a rejection by the bulkhead, whether it was full or
// the wait for a slot ran out.
func IsBulkheadError(err error) bool {
	return errors.Is(err, ErrBulkheadFull) || errors.Is(err, ErrBulkheadTimeout)
}

// IsFailure reports whether err counts against the backend's health. Misses and
// caller cancellation do not.
func IsFailure(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, types.ErrCacheMiss), errors.Is(err, context.Canceled):
		return false
	default:
		return true
	}
}
