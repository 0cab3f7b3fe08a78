package metrics

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/LavishGent/breedbase/internal/types"
)

// BackgroundPublisher pushes a snapshot to a publisher on a fixed interval, and
// once more on shutdown so the last partial interval is not lost.
type BackgroundPublisher struct {
	publisher types.Publisher
	snapshot  func() types.MetricsSnapshot
	interval  time.Duration
	logger    *slog.Logger

	stop     context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once
}

// NewBackgroundPublisher creates a publisher that sends snapshotFn() every interval.
func NewBackgroundPublisher(
	publisher types.Publisher,
	interval time.Duration,
	snapshotFn func() types.MetricsSnapshot,
	logger *slog.Logger,
) *BackgroundPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &BackgroundPublisher{
		publisher: publisher,
		snapshot:  snapshotFn,
		interval:  interval,
		logger:    logger.With("component", "metrics-background"),
	}
}

// Start launches the loop. It ends when ctx is cancelled or Stop is called.
func (b *BackgroundPublisher) Start(ctx context.Context) {
	ctx, b.stop = context.WithCancel(ctx)
	b.done = make(chan struct{})

	go func() {
		defer close(b.done)
		tick := time.NewTicker(b.interval)
		defer tick.Stop()
		for {
			select {
			case <-tick.C:
				b.PublishNow()
			case <-ctx.Done():
				b.PublishNow()
				return
			}
		}
	}()
	b.logger.Info("Background metrics publisher started", "interval", b.interval)
}

// Stop ends the loop and waits for the final publish. It is safe to call more
// than once and before Start.
func (b *BackgroundPublisher) Stop() {
	b.stopOnce.Do(func() {
		if b.stop == nil {
			return
		}
		b.stop()
		<-b.done
		b.logger.Info("Background metrics publisher stopped")
	})
}

// PublishNow publishes one snapshot immediately. A panicking snapshot function
// is logged and swallowed.
func (b *BackgroundPublisher) PublishNow() {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Recovered from panic in metrics publisher", "panic", r)
		}
	}()
	if b.snapshot == nil {
		return
	}
	s := b.snapshot()
	b.publisher.PublishSnapshot(&s)
}
