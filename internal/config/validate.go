package config

import (
	"errors"
	"fmt"
)

// Validate reports every problem in the config at once, joined into one error.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(isBackend(c.Cache.Backend), "cache.backend %q is not one of memory, file, redis, dynamodb, tiered, disabled", c.Cache.Backend)
	check(c.Cache.Key != "", "cache.key is required")
	if c.Cache.Backend == BackendTiered {
		d := c.Cache.Durable
		check(d == BackendRedis || d == BackendDynamoDB || d == BackendFile, "cache.durable %q must be redis, dynamodb or file", d)
	}

	if c.uses(BackendMemory) {
		check(c.Memory.MaxSizeMB > 0, "memory.maxSizeMB must be positive")
		check(c.Memory.Shards > 0 && c.Memory.Shards&(c.Memory.Shards-1) == 0, "memory.shards must be a positive power of 2")
	}
	if c.uses(BackendFile) {
		check(c.File.Dir != "", "file.dir is required for the file backend")
	}
	if c.uses(BackendRedis) {
		check(c.Redis.Address != "" || !c.Redis.URL.IsEmpty(), "redis.address or redis.url is required for the redis backend")
		check(c.Redis.PoolSize > 0, "redis.poolSize must be positive")
	}
	if c.uses(BackendDynamoDB) {
		check(c.DynamoDB.Table != "", "dynamodb.table is required for the dynamodb backend")
	}

	if c.CircuitBreaker.Enabled {
		check(c.CircuitBreaker.FailureThreshold > 0, "circuitBreaker.failureThreshold must be positive")
		check(c.CircuitBreaker.OpenDuration > 0, "circuitBreaker.openDuration must be positive")
	}
	if c.Bulkhead.Enabled {
		check(c.Bulkhead.MaxConcurrent > 0, "bulkhead.maxConcurrent must be positive")
	}

	check(c.Catalog.TTL > 0, "catalog.ttl must be positive")
	check(c.Catalog.NormalizeWorkers > 0, "catalog.normalizeWorkers must be positive")
	check(c.Lookup.MaxQueryLength > 0, "lookup.maxQueryLength must be positive")

	check(c.Narrative.Mode == NarrativeModeFreeText || c.Narrative.Mode == NarrativeModeStructured,
		"narrative.mode %q must be freetext or structured", c.Narrative.Mode)
	check(c.Narrative.Timeout >= MinNarrativeTimeout && c.Narrative.Timeout <= MaxNarrativeTimeout,
		"narrative.timeout must be between %v and %v", MinNarrativeTimeout, MaxNarrativeTimeout)
	check(c.Upstream.HTTPTimeout > 0, "upstream.httpTimeout must be positive")

	return errors.Join(errs...)
}

// uses reports whether backend is active either directly or as a tier.
func (c *Config) uses(backend string) bool {
	switch c.Cache.Backend {
	case backend:
		return true
	case BackendTiered:
		return backend == BackendMemory || backend == c.Cache.Durable
	}
	return false
}

func isBackend(name string) bool {
	switch name {
	case BackendMemory, BackendFile, BackendRedis, BackendDynamoDB, BackendTiered, BackendDisabled:
		return true
	}
	return false
}
