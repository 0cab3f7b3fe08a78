package metrics

import (
	"time"

	"github.com/LavishGent/breedbase/internal/types"
)

// NoOpTracker discards every event.
type NoOpTracker struct{}

// NewNoOpTracker returns a recorder that discards everything.
func NewNoOpTracker() *NoOpTracker {
	return &NoOpTracker{}
}

func (t *NoOpTracker) RecordHit(backend string, key string, latency time.Duration)  {}
func (t *NoOpTracker) RecordMiss(backend string, key string, latency time.Duration) {}
func (t *NoOpTracker) RecordSet(backend string, key string, size int, latency time.Duration) {
}
func (t *NoOpTracker) RecordError(backend string, operation string, err error) {}
func (t *NoOpTracker) RecordCircuitBreakerStateChange(from, to string)     {}
func (t *NoOpTracker) RecordUpstream(source string, status int, latency time.Duration, err error) {
}
func (t *NoOpTracker) RecordCatalog(state types.CatalogState, outcome string)       {}
func (t *NoOpTracker) RecordLookup(locale, source string, err error)                {}
func (t *NoOpTracker) RecordNarrative(mode string, latency time.Duration, err error) {}

// NoOpPublisher is used when no metrics sink is configured.
type NoOpPublisher struct{}

// NewNoOpPublisher returns a publisher that discards everything.
func NewNoOpPublisher() *NoOpPublisher {
	return &NoOpPublisher{}
}

func (p *NoOpPublisher) Gauge(name string, value float64, tags ...string)           {}
func (p *NoOpPublisher) Incr(name string, tags ...string)                           {}
func (p *NoOpPublisher) Count(name string, value int64, tags ...string)             {}
func (p *NoOpPublisher) Histogram(name string, value float64, tags ...string)       {}
func (p *NoOpPublisher) Timing(name string, duration time.Duration, tags ...string) {}
func (p *NoOpPublisher) Event(title, text, alertType string, tags ...string)        {}
func (p *NoOpPublisher) PublishSnapshot(snapshot *types.MetricsSnapshot)            {}
func (p *NoOpPublisher) Close() error                                               { return nil }

var (
	_ types.MetricsRecorder = (*NoOpTracker)(nil)
	_ types.Publisher       = (*NoOpPublisher)(nil)
)
