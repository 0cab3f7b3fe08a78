package resilience

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/LavishGent/breedbase/internal/config"
)

func TestNewBulkhead(t *testing.T) {
	t.Run("creates with config values", func(t *testing.T) {
		b := NewBulkhead(config.BulkheadConfig{MaxConcurrent: 20, AcquireTimeout: 500 * time.Millisecond})

		if b.maxConcurrent != 20 {
			t.Errorf("maxConcurrent = %v, want 20", b.maxConcurrent)
		}
		if b.acquireTimeout != 500*time.Millisecond {
			t.Errorf("acquireTimeout = %v, want 500ms", b.acquireTimeout)
		}
	})

	t.Run("applies defaults", func(t *testing.T) {
		b := NewBulkhead(config.BulkheadConfig{})

		if b.maxConcurrent != 32 {
			t.Errorf("maxConcurrent = %v, want 32", b.maxConcurrent)
		}
		if b.acquireTimeout != 100*time.Millisecond {
			t.Errorf("acquireTimeout = %v, want 100ms", b.acquireTimeout)
		}
	})
}

func TestBulkheadExecute(t *testing.T) {
	b := NewBulkhead(config.BulkheadConfig{MaxConcurrent: 2, AcquireTimeout: 20 * time.Millisecond})

	want := errors.New("boom")
	if err := b.Execute(context.Background(), func(context.Context) error { return want }); !errors.Is(err, want) {
		t.Errorf("Execute() error = %v, want %v", err, want)
	}
	if got := b.Stats().TotalExecuted; got != 1 {
		t.Errorf("TotalExecuted = %d, want 1", got)
	}
	if got := b.Stats().Available; got != 2 {
		t.Errorf("Available = %d, want 2 after release", got)
	}
}

func TestBulkheadRejectsWhenSaturated(t *testing.T) {
	b := NewBulkhead(config.BulkheadConfig{MaxConcurrent: 1, AcquireTimeout: 20 * time.Millisecond})

	release := make(chan struct{})
	started := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = b.Execute(context.Background(), func(context.Context) error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	err := b.Execute(context.Background(), func(context.Context) error { return nil })
	if !errors.Is(err, ErrBulkheadTimeout) {
		t.Errorf("Execute() error = %v, want ErrBulkheadTimeout", err)
	}
	if !IsBulkheadError(err) {
		t.Error("IsBulkheadError() = false")
	}
	if b.RejectedCount() != 1 {
		t.Errorf("RejectedCount() = %d, want 1", b.RejectedCount())
	}
	if b.ActiveCount() != 1 {
		t.Errorf("ActiveCount() = %d, want 1", b.ActiveCount())
	}

	close(release)
	wg.Wait()
}

func TestBulkheadHonoursCallerContext(t *testing.T) {
	b := NewBulkhead(config.BulkheadConfig{MaxConcurrent: 1, AcquireTimeout: time.Second})

	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_ = b.Execute(context.Background(), func(context.Context) error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := b.Execute(ctx, func(context.Context) error { return nil })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Execute() error = %v, want context.Canceled", err)
	}
}
