package metrics

// Tag formats a StatsD tag as key:value.
func Tag(key, value string) string {
	return key + ":" + value
}

// BackendTag names the cache backend (memory, file, redis, dynamodb, tiered).
func BackendTag(backend string) string { return Tag("backend", backend) }

// OperationTag names a cache operation.
func OperationTag(op string) string { return Tag("operation", op) }

// StatusTag carries hit/miss, ok, an error kind, or an HTTP status code.
func StatusTag(status string) string { return Tag("status", status) }

// SourceTag names an upstream or lookup source.
func SourceTag(source string) string { return Tag("source", source) }

// LocaleTag names an encyclopedia locale.
func LocaleTag(locale string) string { return Tag("locale", locale) }

// StateTag names a catalog state.
func StateTag(state string) string { return Tag("catalog_state", state) }

// RouteTag names an HTTP route pattern.
func RouteTag(route string) string { return Tag("route", route) }

// CircuitStateTag names a circuit breaker state.
func CircuitStateTag(state string) string { return Tag("circuit_state", state) }

// MergeTags returns base followed by extra. Either slice is returned unchanged
// when the other is empty.
func MergeTags(base, extra []string) []string {
	switch {
	case len(extra) == 0:
		return base
	case len(base) == 0:
		return extra
	}
	out := make([]string, 0, len(base)+len(extra))
	out = append(out, base...)
	return append(out, extra...)
}
