package breedbase

import (
	"github.com/LavishGent/breedbase/internal/types"
)

// Re-export health types from internal/types.
type (
	// HealthStatus represents the overall health state.
	HealthStatus = types.HealthStatus

	// HealthReport describes the cache backend and the cached catalog.
	HealthReport = types.HealthReport

	CacheHealth   = types.CacheHealth
	CatalogHealth = types.CatalogHealth

	// MetricsSnapshot contains a point-in-time view of client metrics.
	MetricsSnapshot = types.MetricsSnapshot
)

// Re-export health status constants.
const (
	HealthStatusHealthy   = types.HealthStatusHealthy
	HealthStatusDegraded  = types.HealthStatusDegraded
	HealthStatusUnhealthy = types.HealthStatusUnhealthy
)
