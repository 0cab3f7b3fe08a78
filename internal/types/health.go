package types

import "time"

// HealthStatus represents the overall health state.
type HealthStatus int

const (
	// HealthStatusHealthy indicates all systems operating normally.
	HealthStatusHealthy HealthStatus = iota + 1
	// HealthStatusDegraded indicates partial functionality (e.g., durable backend down, catalog stale).
	HealthStatusDegraded
	// HealthStatusUnhealthy indicates no catalog can be served.
	HealthStatusUnhealthy
)

// String returns the string representation of health status.
func (s HealthStatus) String() string {
	switch s {
	case HealthStatusHealthy:
		return "healthy"
	case HealthStatusDegraded:
		return "degraded"
	case HealthStatusUnhealthy:
		return "unhealthy"
	default:
		return "unknown"
	}
}

func (s HealthStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// HealthReport is returned by the health endpoint.
type HealthReport struct {
	Timestamp time.Time     `json:"timestamp"`
	Status    HealthStatus  `json:"status"`
	Cache     CacheHealth   `json:"cache"`
	Catalog   CatalogHealth `json:"catalog"`
}

// CacheHealth describes the configured cache backend.
type CacheHealth struct {
	Backend             string `json:"backend"`
	Available           bool   `json:"available"`
	CircuitBreakerState string `json:"circuitBreakerState,omitempty"`
	Hits                int64  `json:"hits"`
	Misses              int64  `json:"misses"`
}

// CatalogHealth describes the cached catalog record.
type CatalogHealth struct {
	State     string        `json:"state"`
	Entries   int           `json:"entries"`
	Age       time.Duration `json:"age"`
	DataHash  string        `json:"dataHash,omitempty"`
	CheckedAt time.Time     `json:"checkedAt"`
}

// Derive computes the overall status from the cache and catalog sections.
func (r *HealthReport) Derive() {
	switch {
	case r.Catalog.State == CatalogEmpty.String():
		r.Status = HealthStatusUnhealthy
	case !r.Cache.Available || r.Catalog.State == CatalogStaleCheck.String():
		r.Status = HealthStatusDegraded
	default:
		r.Status = HealthStatusHealthy
	}
}

// MetricsSnapshot contains a point-in-time view of service metrics.
//
//nolint:govet // Metrics struct with many counters - grouping by category improves readability
type MetricsSnapshot struct {
	Timestamp time.Time
	// Cache counters
	CacheHits   int64
	CacheMisses int64
	CacheSets   int64
	CacheErrors int64

	// Catalog counters
	CatalogFresh     int64
	CatalogRefreshed int64
	CatalogUnchanged int64
	CatalogStale     int64
	CatalogFailed    int64

	// Lookup and narrative counters
	LookupCache     int64
	LookupWikipedia int64
	LookupFailed    int64
	Narratives      int64
	NarrativeFailed int64

	// Upstream counters
	UpstreamRequests int64
	UpstreamErrors   int64

	// Upstream latency (milliseconds)
	AvgLatencyMs float64
	P50LatencyMs float64
	P95LatencyMs float64
	P99LatencyMs float64

	CircuitBreakerState string
}

// CacheHitRatio calculates the cache hit ratio.
func (s *MetricsSnapshot) CacheHitRatio() float64 {
	total := s.CacheHits + s.CacheMisses
	if total == 0 {
		return 0
	}
	return float64(s.CacheHits) / float64(total)
}

// UpstreamErrorRatio calculates the share of upstream requests that failed.
func (s *MetricsSnapshot) UpstreamErrorRatio() float64 {
	if s.UpstreamRequests == 0 {
		return 0
	}
	return float64(s.UpstreamErrors) / float64(s.UpstreamRequests)
}
