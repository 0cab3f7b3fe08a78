// Package metrics collects catalog, lookup, narrative, upstream and cache metrics
// and forwards them to a publisher.
package metrics

import (
	"errors"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/LavishGent/breedbase/internal/types"
)

const (
	defaultLatencyBufferSize = 2048
)

// Catalog outcomes passed to RecordCatalog.
const (
	CatalogOutcomeFresh     = "fresh"
	CatalogOutcomeRefreshed = "refreshed"
	CatalogOutcomeUnchanged = "unchanged"
	CatalogOutcomeStale     = "stale"
	CatalogOutcomeFailed    = "failed"
)

// Tracker keeps in-process counters and an upstream latency ring buffer. When a
// publisher is attached, every recorded event is also forwarded to it.
type Tracker struct {
	publisher types.Publisher

	cacheHits   atomic.Int64
	cacheMisses atomic.Int64
	cacheSets   atomic.Int64
	cacheErrors atomic.Int64

	catalogFresh     atomic.Int64
	catalogRefreshed atomic.Int64
	catalogUnchanged atomic.Int64
	catalogStale     atomic.Int64
	catalogFailed    atomic.Int64

	lookupCache     atomic.Int64
	lookupWikipedia atomic.Int64
	lookupFailed    atomic.Int64
	narratives      atomic.Int64
	narrativeFailed atomic.Int64

	upstreamRequests atomic.Int64
	upstreamErrors   atomic.Int64

	latencyMu     sync.RWMutex
	latencyBuffer []time.Duration
	latencyIndex  int
	latencyCount  int

	circuitState atomic.Value
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithPublisher forwards recorded events to p.
func WithPublisher(p types.Publisher) TrackerOption {
	return func(t *Tracker) {
		t.publisher = p
	}
}

// NewTracker creates a tracker. Without WithPublisher events are only counted.
func NewTracker(opts ...TrackerOption) *Tracker {
	t := &Tracker{
		latencyBuffer: make([]time.Duration, defaultLatencyBufferSize),
		publisher:     NewNoOpPublisher(),
	}
	t.circuitState.Store("closed")
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// RecordHit records a cache hit.
func (t *Tracker) RecordHit(backend string, key string, latency time.Duration) {
	t.cacheHits.Add(1)
	t.publisher.Timing("cache.get", latency, BackendTag(backend), StatusTag("hit"))
}

// RecordMiss records a cache miss.
func (t *Tracker) RecordMiss(backend string, key string, latency time.Duration) {
	t.cacheMisses.Add(1)
	t.publisher.Timing("cache.get", latency, BackendTag(backend), StatusTag("miss"))
}

// RecordSet records a cache write and the record size.
func (t *Tracker) RecordSet(backend string, key string, size int, latency time.Duration) {
	t.cacheSets.Add(1)
	t.publisher.Timing("cache.set", latency, BackendTag(backend))
	t.publisher.Histogram("cache.record_bytes", float64(size), BackendTag(backend))
}

// RecordError records a cache backend error.
func (t *Tracker) RecordError(backend string, operation string, err error) {
	t.cacheErrors.Add(1)
	t.publisher.Incr("cache.error", BackendTag(backend), OperationTag(operation))
}

// RecordCircuitBreakerStateChange records circuit breaker state transitions.
func (t *Tracker) RecordCircuitBreakerStateChange(from, to string) {
	t.circuitState.Store(to)
	t.publisher.Event("Circuit breaker "+to, "Circuit breaker moved from "+from+" to "+to, alertTypeFor(to), CircuitStateTag(to))
}

// RecordUpstream records one upstream HTTP exchange. Status is zero for transport failures.
func (t *Tracker) RecordUpstream(source string, status int, latency time.Duration, err error) {
	t.upstreamRequests.Add(1)
	outcome := "ok"
	if err != nil {
		t.upstreamErrors.Add(1)
		outcome = "error"
	}
	t.recordLatency(latency)
	t.publisher.Timing("upstream.request", latency, SourceTag(source), StatusTag(outcome), Tag("http_status", strconv.Itoa(status)))
}

// RecordCatalog records how a catalog read was served.
func (t *Tracker) RecordCatalog(state types.CatalogState, outcome string) {
	switch outcome {
	case CatalogOutcomeFresh:
		t.catalogFresh.Add(1)
	case CatalogOutcomeRefreshed:
		t.catalogRefreshed.Add(1)
	case CatalogOutcomeUnchanged:
		t.catalogUnchanged.Add(1)
	case CatalogOutcomeStale:
		t.catalogStale.Add(1)
	case CatalogOutcomeFailed:
		t.catalogFailed.Add(1)
	}
	t.publisher.Incr("catalog.read", StateTag(state.String()), Tag("outcome", outcome))
}

// RecordLookup records a finished lookup.
func (t *Tracker) RecordLookup(locale, source string, err error) {
	switch {
	case err != nil:
		t.lookupFailed.Add(1)
		t.publisher.Incr("lookup.failed", LocaleTag(locale), Tag("kind", errorKind(err)))
		return
	case source == types.SourceCache:
		t.lookupCache.Add(1)
	default:
		t.lookupWikipedia.Add(1)
	}
	t.publisher.Incr("lookup.served", LocaleTag(locale), SourceTag(source))
}

// RecordNarrative records a finished narrative generation.
func (t *Tracker) RecordNarrative(mode string, latency time.Duration, err error) {
	t.narratives.Add(1)
	status := "ok"
	if err != nil {
		t.narrativeFailed.Add(1)
		status = errorKind(err)
	}
	t.publisher.Timing("narrative.generate", latency, Tag("mode", mode), StatusTag(status))
}

func (t *Tracker) recordLatency(latency time.Duration) {
	t.latencyMu.Lock()
	t.latencyBuffer[t.latencyIndex] = latency
	t.latencyIndex = (t.latencyIndex + 1) % len(t.latencyBuffer)
	if t.latencyCount < len(t.latencyBuffer) {
		t.latencyCount++
	}
	t.latencyMu.Unlock()
}

// Snapshot returns current metrics snapshot.
func (t *Tracker) Snapshot() types.MetricsSnapshot {
	t.latencyMu.RLock()
	latencies := make([]time.Duration, t.latencyCount)
	copy(latencies, t.latencyBuffer[:t.latencyCount])
	t.latencyMu.RUnlock()

	state, _ := t.circuitState.Load().(string)
	snapshot := types.MetricsSnapshot{
		Timestamp:           time.Now(),
		CacheHits:           t.cacheHits.Load(),
		CacheMisses:         t.cacheMisses.Load(),
		CacheSets:           t.cacheSets.Load(),
		CacheErrors:         t.cacheErrors.Load(),
		CatalogFresh:        t.catalogFresh.Load(),
		CatalogRefreshed:    t.catalogRefreshed.Load(),
		CatalogUnchanged:    t.catalogUnchanged.Load(),
		CatalogStale:        t.catalogStale.Load(),
		CatalogFailed:       t.catalogFailed.Load(),
		LookupCache:         t.lookupCache.Load(),
		LookupWikipedia:     t.lookupWikipedia.Load(),
		LookupFailed:        t.lookupFailed.Load(),
		Narratives:          t.narratives.Load(),
		NarrativeFailed:     t.narrativeFailed.Load(),
		UpstreamRequests:    t.upstreamRequests.Load(),
		UpstreamErrors:      t.upstreamErrors.Load(),
		CircuitBreakerState: state,
	}

	if len(latencies) > 0 {
		slices.Sort(latencies)
		snapshot.AvgLatencyMs = float64(avgDuration(latencies).Milliseconds())
		snapshot.P50LatencyMs = float64(percentile(latencies, 50).Milliseconds())
		snapshot.P95LatencyMs = float64(percentile(latencies, 95).Milliseconds())
		snapshot.P99LatencyMs = float64(percentile(latencies, 99).Milliseconds())
	}

	return snapshot
}

// Reset clears all metrics.
func (t *Tracker) Reset() {
	for _, c := range []*atomic.Int64{
		&t.cacheHits, &t.cacheMisses, &t.cacheSets, &t.cacheErrors,
		&t.catalogFresh, &t.catalogRefreshed, &t.catalogUnchanged, &t.catalogStale, &t.catalogFailed,
		&t.lookupCache, &t.lookupWikipedia, &t.lookupFailed, &t.narratives, &t.narrativeFailed,
		&t.upstreamRequests, &t.upstreamErrors,
	} {
		c.Store(0)
	}
	t.circuitState.Store("closed")

	t.latencyMu.Lock()
	t.latencyIndex = 0
	t.latencyCount = 0
	t.latencyMu.Unlock()
}

func avgDuration(durations []time.Duration) time.Duration {
	if len(durations) == 0 {
		return 0
	}
	var total time.Duration
	for _, d := range durations {
		total += d
	}
	return total / time.Duration(len(durations))
}

// percentile expects sorted input.
func percentile(sorted []time.Duration, p int) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := (len(sorted) - 1) * p / 100
	return sorted[idx]
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, types.ErrValidation):
		return "validation"
	case errors.Is(err, types.ErrNotFound):
		return "not_found"
	case errors.Is(err, types.ErrTimeout):
		return "timeout"
	case errors.Is(err, types.ErrParse):
		return "parse"
	case errors.Is(err, types.ErrUpstream):
		return "upstream"
	default:
		return "internal"
	}
}

func alertTypeFor(state string) string {
	if state == "open" {
		return "error"
	}
	return "info"
}

var _ types.MetricsRecorder = (*Tracker)(nil)
