package types

import (
	"context"
	"time"
)

// Backend is a byte-oriented key/value store holding the catalog record.
// Implementations never delete keys; a missing key is reported as ErrCacheMiss.
type Backend interface {
	Name() string
	IsAvailable() bool
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value under key. A zero ttl means no backend-side expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}

// StatsProvider is implemented by backends that keep hit/miss counters.
type StatsProvider interface {
	Stats() BackendStats
}

// BackendStats is a point-in-time view of a backend's counters.
type BackendStats struct {
	Hits      int64
	Misses    int64
	Entries   int
	SizeBytes int64
}

// Serializer encodes the cache record for a backend.
type Serializer interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, dest any) error
}

// MetricsRecorder receives cache, catalog, lookup, narrative and upstream events.
type MetricsRecorder interface {
	RecordHit(backend string, key string, latency time.Duration)
	RecordMiss(backend string, key string, latency time.Duration)
	RecordSet(backend string, key string, size int, latency time.Duration)
	RecordError(backend string, operation string, err error)
	RecordCircuitBreakerStateChange(from, to string)
	RecordUpstream(source string, status int, latency time.Duration, err error)
	RecordCatalog(state CatalogState, outcome string)
	RecordLookup(locale, source string, err error)
	RecordNarrative(mode string, latency time.Duration, err error)
}

// Logger is the minimal logging interface callers may inject.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Publisher sends metrics to an external sink such as a StatsD agent.
type Publisher interface {
	Gauge(name string, value float64, tags ...string)
	Incr(name string, tags ...string)
	Count(name string, value int64, tags ...string)
	Histogram(name string, value float64, tags ...string)
	Timing(name string, duration time.Duration, tags ...string)
	Event(title, text, alertType string, tags ...string)
	PublishSnapshot(snapshot *MetricsSnapshot)
	Close() error
}
