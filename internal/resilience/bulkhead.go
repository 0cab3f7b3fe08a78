package resilience

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/LavishGent/breedbase/internal/config"
)

const (
	defaultMaxConcurrent  = 32
	defaultAcquireTimeout = 100 * time.Millisecond
)

// Bulkhead caps the number of concurrent calls into a backend. A caller that
// cannot get a slot within the acquire timeout is rejected with ErrBulkheadTimeout.
type Bulkhead struct {
	maxConcurrent  int
	acquireTimeout time.Duration
	slots          *semaphore.Weighted

	inFlight      atomic.Int32
	rejectedCount atomic.Int64
	totalExecuted atomic.Int64
}

// NewBulkhead creates a bulkhead. Non-positive settings fall back to 32 slots and 100ms.
func NewBulkhead(cfg config.BulkheadConfig) *Bulkhead {
	b := &Bulkhead{
		maxConcurrent:  cfg.MaxConcurrent,
		acquireTimeout: cfg.AcquireTimeout,
	}
	if b.maxConcurrent <= 0 {
		b.maxConcurrent = defaultMaxConcurrent
	}
	if b.acquireTimeout <= 0 {
		b.acquireTimeout = defaultAcquireTimeout
	}
	b.slots = semaphore.NewWeighted(int64(b.maxConcurrent))
	return b
}

// Execute runs fn once a slot is free. The slot is held for the duration of fn.
func (b *Bulkhead) Execute(ctx context.Context, fn func(context.Context) error) error {
	if err := b.acquire(ctx); err != nil {
		b.rejectedCount.Add(1)
		return err
	}
	b.inFlight.Add(1)
	defer func() {
		b.inFlight.Add(-1)
		b.slots.Release(1)
	}()

	err := fn(ctx)
	b.totalExecuted.Add(1)
	return err
}

func (b *Bulkhead) acquire(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if b.slots.TryAcquire(1) {
		return nil
	}

	waitCtx, cancel := context.WithTimeout(ctx, b.acquireTimeout)
	defer cancel()
	if err := b.slots.Acquire(waitCtx, 1); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrBulkheadTimeout
		}
		return err
	}
	return nil
}

// ActiveCount returns the number of calls currently holding a slot.
func (b *Bulkhead) ActiveCount() int {
	return int(b.inFlight.Load())
}

// RejectedCount returns the number of calls turned away.
func (b *Bulkhead) RejectedCount() int64 {
	return b.rejectedCount.Load()
}

// Stats returns a point-in-time view of the bulkhead.
func (b *Bulkhead) Stats() BulkheadStats {
	active := int(b.inFlight.Load())
	return BulkheadStats{
		MaxConcurrent: b.maxConcurrent,
		Active:        active,
		Available:     b.maxConcurrent - active,
		TotalExecuted: b.totalExecuted.Load(),
		TotalRejected: b.rejectedCount.Load(),
	}
}

// BulkheadStats is a point-in-time view of a Bulkhead.
type BulkheadStats struct {
	MaxConcurrent int
	Active        int
	Available     int
	TotalExecuted int64
	TotalRejected int64
}
