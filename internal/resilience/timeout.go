package resilience

import (
	"context"
	"errors"
	"time"
)

// Timeout bounds an operation. The operation's context is cancelled when the
// bound expires, so an in-flight HTTP request is aborted rather than abandoned.
type Timeout struct {
	timeout time.Duration
}

// NewTimeout creates a timeout wrapper. Non-positive durations default to 15 seconds.
func NewTimeout(timeout time.Duration) *Timeout {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Timeout{timeout: timeout}
}

// Execute runs op with the bound applied. It returns ErrTimeout when the bound
// expires first and the parent context's error when the caller gives up.
func (t *Timeout) Execute(ctx context.Context, op func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- op(ctx)
	}()

	select {
	case err := <-done:
		if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) && errors.Is(err, context.DeadlineExceeded) {
			return ErrTimeout
		}
		return err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return ErrTimeout
		}
		return ctx.Err()
	}
}

// Duration returns the configured bound.
func (t *Timeout) Duration() time.Duration {
	return t.timeout
}
