package config

import "time"

// Narrative timeout bounds.
const (
	MinNarrativeTimeout = 10 * time.Second
	MaxNarrativeTimeout = 15 * time.Second
)

// DefaultCacheKey is the key of the single catalog record.
const DefaultCacheKey = "dog_breeds_cache"

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Cache: CacheConfig{
			Backend:   BackendFile,
			Durable:   BackendRedis,
			Key:       DefaultCacheKey,
			RecordTTL: 0,
			Indent:    true,
		},
		Memory: MemoryConfig{
			MaxSizeMB:        64,
			LifeWindow:       7 * 24 * time.Hour,
			CleanupInterval:  0,
			Shards:           16,
			MaxEntrySize:     1024 * 1024, // 1MB
			HardMaxCacheSize: false,
		},
		File: FileConfig{
			Dir: "data",
		},
		Redis: RedisConfig{
			Address:             "localhost:6379",
			Password:            SecretString{},
			DB:                  0,
			KeyPrefix:           "breedbase:",
			PoolSize:            10,
			MinIdleConns:        1,
			DialTimeout:         5 * time.Second,
			ReadTimeout:         3 * time.Second,
			WriteTimeout:        3 * time.Second,
			PoolTimeout:         4 * time.Second,
			EnableTLS:           false,
			TLSSkipVerify:       false,
			HealthCheckInterval: 30 * time.Second,
		},
		DynamoDB: DynamoDBConfig{
			Table:  "breedbase-cache",
			Region: "us-east-1",
		},
		CircuitBreaker: CircuitBreakerConfig{
			Enabled:             true,
			FailureThreshold:    5,
			SuccessThreshold:    2,
			OpenDuration:        30 * time.Second,
			HalfOpenMaxRequests: 1,
		},
		Bulkhead: BulkheadConfig{
			Enabled:        true,
			MaxConcurrent:  32,
			AcquireTimeout: 100 * time.Millisecond,
		},
		Catalog: CatalogConfig{
			TTL:                  24 * time.Hour,
			TouchOnUnchanged:     true,
			NormalizeWorkers:     8,
			ResolveMissingImages: false,
		},
		Lookup: LookupConfig{
			MaxQueryLength: 100,
			LocalFirst:     true,
		},
		Narrative: NarrativeConfig{
			Model:       "gpt-4.1",
			Mode:        NarrativeModeFreeText,
			Timeout:     MaxNarrativeTimeout,
			Temperature: 0.2,
		},
		Upstream: UpstreamConfig{
			DogAPIBaseURL:  "https://api.thedogapi.com/v1",
			ImageCDN:       "https://cdn2.thedogapi.com/images/%s.jpg",
			WikiSummaryURL: "https://{lang}.wikipedia.org/api/rest_v1",
			WikiAPIURL:     "https://en.wikipedia.org/w/api.php",
			OpenAIBaseURL:  "https://api.openai.com/v1",
			HTTPTimeout:    10 * time.Second,
			UserAgent:      "breedbase/1.0 (https://github.com/LavishGent/breedbase)",
		},
		Metrics: MetricsConfig{
			Enabled:         true,
			PublishInterval: 30 * time.Second,
			DataDog: DataDogConfig{
				Enabled:   false,
				AgentHost: "127.0.0.1",
				Port:      8125,
				Prefix:    "breedbase",
				Tags:      []string{},
			},
		},
		Server: ServerConfig{
			Address:         ":8080",
			ShutdownTimeout: 10 * time.Second,
			Mode:            "release",
		},
	}
}

// ForTesting returns a minimal configuration suitable for unit tests.
func ForTesting() *Config {
	cfg := DefaultConfig()
	cfg.Cache.Backend = BackendMemory
	cfg.Cache.Indent = false
	cfg.Memory.MaxSizeMB = 8
	cfg.Memory.Shards = 4
	cfg.Redis.KeyPrefix = "test:"
	cfg.Redis.PoolSize = 2
	cfg.Redis.DialTimeout = time.Second
	cfg.Redis.ReadTimeout = time.Second
	cfg.Redis.WriteTimeout = time.Second
	cfg.Redis.PoolTimeout = time.Second
	cfg.Redis.HealthCheckInterval = 0
	cfg.CircuitBreaker.Enabled = false
	cfg.CircuitBreaker.FailureThreshold = 3
	cfg.CircuitBreaker.SuccessThreshold = 1
	cfg.CircuitBreaker.OpenDuration = time.Second
	cfg.Bulkhead.Enabled = false
	cfg.Bulkhead.MaxConcurrent = 4
	cfg.Bulkhead.AcquireTimeout = 50 * time.Millisecond
	cfg.Catalog.NormalizeWorkers = 2
	cfg.Narrative.Timeout = MinNarrativeTimeout
	cfg.Upstream.HTTPTimeout = 2 * time.Second
	cfg.Metrics.Enabled = false
	cfg.Metrics.PublishInterval = time.Second
	cfg.Server.Mode = "test"
	return cfg
}

// ForTestingWithRedis returns a test config with the tiered memory+redis backend.
func ForTestingWithRedis(addr string) *Config {
	cfg := ForTesting()
	cfg.Cache.Backend = BackendTiered
	cfg.Cache.Durable = BackendRedis
	cfg.Redis.Address = addr
	return cfg
}
