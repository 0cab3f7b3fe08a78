package metrics

import "github.com/LavishGent/breedbase/internal/types"

// Gauge is one periodic value derived from a snapshot.
type Gauge struct {
	Name  string
	Value float64
}

// SnapshotGauges flattens a snapshot into the gauges publishers emit on every
// tick. Ratios are clamped to [0, 1] and latencies to non-negative values.
func SnapshotGauges(s *types.MetricsSnapshot) []Gauge {
	if s == nil {
		return nil
	}
	circuitOpen := 0.0
	if s.CircuitBreakerState == "open" {
		circuitOpen = 1
	}
	return []Gauge{
		{"cache.hit_ratio", min(max(s.CacheHitRatio(), 0), 1)},
		{"cache.errors", float64(s.CacheErrors)},
		{"cache.circuit_open", circuitOpen},
		{"catalog.refreshed", float64(s.CatalogRefreshed)},
		{"catalog.stale_served", float64(s.CatalogStale)},
		{"catalog.failed", float64(s.CatalogFailed)},
		{"lookup.cache", float64(s.LookupCache)},
		{"lookup.wikipedia", float64(s.LookupWikipedia)},
		{"narrative.total", float64(s.Narratives)},
		{"upstream.error_ratio", min(max(s.UpstreamErrorRatio(), 0), 1)},
		{"upstream.p95_latency_ms", max(s.P95LatencyMs, 0)},
	}
}
