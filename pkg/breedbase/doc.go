// Package breedbase aggregates dog-breed information from a breed-data API, an
// online encyclopedia and a generative text API, and caches the breed catalog.
//
// # Quick Start
//
//	client, err := breedbase.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	breeds, err := client.GetCatalog(ctx)
//
// # Catalog
//
// The catalog is one record stored under a single cache key. GetCatalog serves it
// while it is younger than the configured TTL. Once stale, the breed list is fetched
// again and its SHA-256 digest compared with the stored one: an unchanged list only
// refreshes the timestamp, a changed list is normalized and replaces the record. If
// the fetch fails, the stale record is served; with nothing cached the error wraps
// ErrNoCatalog.
//
// The record can live in memory (bigcache), a JSON file, Redis, DynamoDB, or a
// memory tier in front of one of the durable backends:
//
//	cfg := breedbase.DefaultConfig()
//	cfg.Cache.Backend = "tiered"
//	cfg.Cache.Durable = "redis"
//	cfg.Redis.Address = "localhost:6379"
//	client, err := breedbase.NewFromConfig(cfg)
//
// Durable backends run behind a circuit breaker and a bulkhead, so an unreachable
// store degrades to a cache miss instead of slowing every request.
//
// # Lookup
//
// Lookup picks encyclopedia locales from the script of the query. Latin queries try
// the cached catalog first, then the English encyclopedia. Cyrillic queries with
// Ukrainian-only letters go to Ukrainian; other Cyrillic queries try Russian and
// then Ukrainian.
//
//	res, err := client.Lookup(ctx, "Лабрадор")
//
// # Narratives
//
// Narrate asks the generative API for a Markdown description. The call is bounded
// to between 10 and 15 seconds and returns a Timeout error past that.
//
//	n, err := client.Narrate(ctx, "Akita")
//	if breedbase.IsTimeout(err) {
//	    // 504 over HTTP
//	}
//
// # Errors
//
// Every service error is an *Error whose Kind is one of ErrValidation, ErrUpstream,
// ErrTimeout, ErrNotFound or ErrParse. Use errors.Is or the Is helpers, and
// HTTPStatus for the matching status code.
//
// # Configuration
//
//	client, err := breedbase.NewFromFile("breedbase.json")
//
// Environment variables prefixed BREEDBASE_ override the file, and DOG_API_KEY,
// OPENAI_API_KEY and KV_URL are honored. For tests use TestConfig.
package breedbase
