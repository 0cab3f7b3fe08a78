// Package config provides configuration management for breedbase.
package config

import (
	"time"

	"github.com/LavishGent/breedbase/internal/types"
)

// SecretString is a string type that redacts its value when marshaled to JSON.
type SecretString = types.SecretString

// NewSecretString creates a new SecretString with the provided value.
func NewSecretString(value string) SecretString {
	return types.NewSecretString(value)
}

// Cache backend names accepted by CacheConfig.Backend and CacheConfig.Durable.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendDynamoDB = "dynamodb"
	BackendTiered   = "tiered"
	BackendDisabled = "disabled"
)

// Narrative response modes.
const (
	NarrativeModeFreeText   = "freetext"
	NarrativeModeStructured = "structured"
)

// Config contains all configuration for a breedbase client.
//
//nolint:govet // Configuration struct - logical grouping prioritized over alignment
type Config struct {
	Cache          CacheConfig          `json:"cache"`
	Memory         MemoryConfig         `json:"memory"`
	File           FileConfig           `json:"file"`
	Redis          RedisConfig          `json:"redis"`
	DynamoDB       DynamoDBConfig       `json:"dynamodb"`
	CircuitBreaker CircuitBreakerConfig `json:"circuitBreaker"`
	Bulkhead       BulkheadConfig       `json:"bulkhead"`
	Catalog        CatalogConfig        `json:"catalog"`
	Lookup         LookupConfig         `json:"lookup"`
	Narrative      NarrativeConfig      `json:"narrative"`
	Upstream       UpstreamConfig       `json:"upstream"`
	Metrics        MetricsConfig        `json:"metrics"`
	Server         ServerConfig         `json:"server"`
}

// CacheConfig selects the backend that holds the catalog record.
type CacheConfig struct {
	// Backend is one of memory, file, redis, dynamodb, tiered, disabled.
	Backend string `json:"backend"`
	// Durable is the second tier behind memory when Backend is tiered.
	Durable string `json:"durable"`
	Key     string `json:"key"`
	// RecordTTL is a backend-side expiry hint. Zero keeps the record forever.
	RecordTTL time.Duration `json:"recordTTL"`
	// Indent pretty-prints the stored JSON, matching the hand-editable cache file.
	Indent bool `json:"indent"`
}

// MemoryConfig contains configuration for the in-process bigcache backend.
type MemoryConfig struct {
	// LifeWindow is how long bigcache keeps an entry. Eviction only runs when CleanupInterval > 0.
	LifeWindow       time.Duration `json:"lifeWindow"`
	CleanupInterval  time.Duration `json:"cleanupInterval"`
	MaxSizeMB        int           `json:"maxSizeMB"`
	Shards           int           `json:"shards"`
	MaxEntrySize     int           `json:"maxEntrySize"`
	HardMaxCacheSize bool          `json:"hardMaxCacheSize"`
}

// FileConfig contains configuration for the local JSON file backend.
type FileConfig struct {
	// Dir holds one <key>.json file per key.
	Dir string `json:"dir"`
}

// RedisConfig contains configuration for the Redis backend.
//
//nolint:govet // Configuration struct - logical grouping prioritized over alignment
type RedisConfig struct {
	DialTimeout         time.Duration `json:"dialTimeout"`
	ReadTimeout         time.Duration `json:"readTimeout"`
	WriteTimeout        time.Duration `json:"writeTimeout"`
	PoolTimeout         time.Duration `json:"poolTimeout"`
	HealthCheckInterval time.Duration `json:"healthCheckInterval"`
	// URL is a redis:// or rediss:// connection string. It takes precedence over Address.
	URL           SecretString `json:"url"`
	Password      SecretString `json:"password"`
	Address       string       `json:"address"`
	KeyPrefix     string       `json:"keyPrefix"`
	DB            int          `json:"db"`
	PoolSize      int          `json:"poolSize"`
	MinIdleConns  int          `json:"minIdleConns"`
	EnableTLS     bool         `json:"enableTLS"`
	TLSSkipVerify bool         `json:"tlsSkipVerify"`
}

// DynamoDBConfig contains configuration for the DynamoDB backend.
type DynamoDBConfig struct {
	Table  string `json:"table"`
	Region string `json:"region"`
	// Endpoint overrides the service endpoint, e.g. a local DynamoDB.
	Endpoint string `json:"endpoint"`
}

// CircuitBreakerConfig contains configuration for the circuit breaker pattern.
type CircuitBreakerConfig struct {
	Enabled             bool          `json:"enabled"`
	FailureThreshold    int           `json:"failureThreshold"`
	SuccessThreshold    int           `json:"successThreshold"`
	OpenDuration        time.Duration `json:"openDuration"`
	HalfOpenMaxRequests int           `json:"halfOpenMaxRequests"`
}

// BulkheadConfig contains configuration for the bulkhead pattern.
type BulkheadConfig struct {
	Enabled        bool          `json:"enabled"`
	MaxConcurrent  int           `json:"maxConcurrent"`
	AcquireTimeout time.Duration `json:"acquireTimeout"`
}

// CatalogConfig contains configuration for the catalog service.
type CatalogConfig struct {
	TTL time.Duration `json:"ttl"`
	// TouchOnUnchanged rewrites the record with a fresh timestamp when the upstream digest is unchanged.
	TouchOnUnchanged bool `json:"touchOnUnchanged"`
	NormalizeWorkers int  `json:"normalizeWorkers"`
	// ResolveMissingImages asks the breed API for an image when a breed has no reference image.
	ResolveMissingImages bool `json:"resolveMissingImages"`
}

// LookupConfig contains configuration for the lookup service.
type LookupConfig struct {
	MaxQueryLength int `json:"maxQueryLength"`
	// LocalFirst enables the catalog fast path for Latin queries.
	LocalFirst bool `json:"localFirst"`
}

// NarrativeConfig contains configuration for the narrative service.
type NarrativeConfig struct {
	Model   string        `json:"model"`
	Mode    string        `json:"mode"`
	Timeout time.Duration `json:"timeout"`
	// Temperature is passed through to the generative API.
	Temperature float64 `json:"temperature"`
}

// UpstreamConfig contains the base URLs and credentials of the external APIs.
//
//nolint:govet // Configuration struct - logical grouping prioritized over alignment
type UpstreamConfig struct {
	DogAPIBaseURL string       `json:"dogApiBaseURL"`
	DogAPIKey     SecretString `json:"dogApiKey"`
	// ImageCDN is a format string taking the reference image id.
	ImageCDN string `json:"imageCDN"`
	// WikiSummaryURL is the REST base; {lang} is replaced by the locale.
	WikiSummaryURL string        `json:"wikiSummaryURL"`
	WikiAPIURL     string        `json:"wikiAPIURL"`
	OpenAIBaseURL  string        `json:"openaiBaseURL"`
	OpenAIKey      SecretString  `json:"openaiKey"`
	HTTPTimeout    time.Duration `json:"httpTimeout"`
	UserAgent      string        `json:"userAgent"`
}

// MetricsConfig contains configuration for metrics publishing.
//
//nolint:govet // Small config struct - minimal alignment benefit
type MetricsConfig struct {
	PublishInterval time.Duration `json:"publishInterval"`
	DataDog         DataDogConfig `json:"datadog"`
	Enabled         bool          `json:"enabled"`
	// LogEvents routes every recorded event to the logger at debug level.
	LogEvents bool `json:"logEvents"`
}

// DataDogConfig contains configuration for DataDog metrics publishing.
//
//nolint:govet // Small config struct - minimal alignment benefit
type DataDogConfig struct {
	Tags      []string `json:"tags"`
	AgentHost string   `json:"agentHost"`
	Prefix    string   `json:"prefix"`
	Port      int      `json:"port"`
	Enabled   bool     `json:"enabled"`
}

// ServerConfig contains configuration for the HTTP surface.
type ServerConfig struct {
	Address         string        `json:"address"`
	ShutdownTimeout time.Duration `json:"shutdownTimeout"`
	// Mode is the gin mode: debug, release or test.
	Mode string `json:"mode"`
}
