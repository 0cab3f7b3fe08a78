package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"
)

// Load reads a JSON config file over the defaults and validates it. An empty
// path or a missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg, err := readFile(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadWithEnv reads the file, applies the environment overrides in envBindings,
// and validates the result. A file that is incomplete on its own, such as a
// redis backend whose address comes from KV_URL, is accepted.
func LoadWithEnv(path string) (*Config, error) {
	cfg, err := readFile(path)
	if err != nil {
		return nil, err
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readFile(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return cfg, nil
	case err != nil:
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// envBinding applies one non-empty environment variable to the config.
type envBinding struct {
	name  string
	apply func(cfg *Config, v string)
}

func envString(get func(*Config) *string) func(*Config, string) {
	return func(c *Config, v string) { *get(c) = v }
}

func envLower(get func(*Config) *string) func(*Config, string) {
	return func(c *Config, v string) { *get(c) = strings.ToLower(strings.TrimSpace(v)) }
}

func envSecret(get func(*Config) *SecretString) func(*Config, string) {
	return func(c *Config, v string) { *get(c) = NewSecretString(v) }
}

func envBool(get func(*Config) *bool) func(*Config, string) {
	return func(c *Config, v string) { *get(c) = parseBool(v) }
}

func envInt(get func(*Config) *int) func(*Config, string) {
	return func(c *Config, v string) { p := get(c); *p = parseInt(v, *p) }
}

func envDuration(get func(*Config) *time.Duration) func(*Config, string) {
	return func(c *Config, v string) { p := get(c); *p = parseDuration(v, *p) }
}

func envTag(prefix string) func(*Config, string) {
	return func(c *Config, v string) { c.Metrics.DataDog.Tags = append(c.Metrics.DataDog.Tags, prefix+v) }
}

// envBindings run in order, so a later variable wins over an earlier one that
// sets the same field.
var envBindings = []envBinding{
	{"BREEDBASE_CACHE_BACKEND", envLower(func(c *Config) *string { return &c.Cache.Backend })},
	{"BREEDBASE_CACHE_DURABLE", envLower(func(c *Config) *string { return &c.Cache.Durable })},
	{"BREEDBASE_CACHE_KEY", envString(func(c *Config) *string { return &c.Cache.Key })},
	{"BREEDBASE_CACHE_RECORD_TTL", envDuration(func(c *Config) *time.Duration { return &c.Cache.RecordTTL })},
	{"BREEDBASE_FILE_DIR", envString(func(c *Config) *string { return &c.File.Dir })},
	{"BREEDBASE_MEMORY_MAX_SIZE_MB", envInt(func(c *Config) *int { return &c.Memory.MaxSizeMB })},

	// KV_URL is set by hosted key/value deployments. Without an explicit
	// backend it moves the default file backend to redis.
	{"KV_URL", func(c *Config, v string) {
		c.Redis.URL = NewSecretString(v)
		if os.Getenv("BREEDBASE_CACHE_BACKEND") == "" && c.Cache.Backend == BackendFile {
			c.Cache.Backend = BackendRedis
		}
	}},
	{"BREEDBASE_REDIS_URL", envSecret(func(c *Config) *SecretString { return &c.Redis.URL })},
	{"BREEDBASE_REDIS_ADDRESS", envString(func(c *Config) *string { return &c.Redis.Address })},
	{"BREEDBASE_REDIS_PASSWORD", envSecret(func(c *Config) *SecretString { return &c.Redis.Password })},
	{"BREEDBASE_REDIS_DB", envInt(func(c *Config) *int { return &c.Redis.DB })},
	{"BREEDBASE_REDIS_KEY_PREFIX", envString(func(c *Config) *string { return &c.Redis.KeyPrefix })},
	{"BREEDBASE_REDIS_ENABLE_TLS", envBool(func(c *Config) *bool { return &c.Redis.EnableTLS })},
	{"BREEDBASE_REDIS_TLS_SKIP_VERIFY", envBool(func(c *Config) *bool { return &c.Redis.TLSSkipVerify })},

	{"AWS_REGION", envString(func(c *Config) *string { return &c.DynamoDB.Region })},
	{"BREEDBASE_DYNAMODB_REGION", envString(func(c *Config) *string { return &c.DynamoDB.Region })},
	{"BREEDBASE_DYNAMODB_TABLE", envString(func(c *Config) *string { return &c.DynamoDB.Table })},
	{"BREEDBASE_DYNAMODB_ENDPOINT", envString(func(c *Config) *string { return &c.DynamoDB.Endpoint })},

	{"BREEDBASE_CIRCUIT_BREAKER_ENABLED", envBool(func(c *Config) *bool { return &c.CircuitBreaker.Enabled })},
	{"BREEDBASE_CIRCUIT_BREAKER_FAILURE_THRESHOLD", envInt(func(c *Config) *int { return &c.CircuitBreaker.FailureThreshold })},
	{"BREEDBASE_CIRCUIT_BREAKER_OPEN_DURATION", envDuration(func(c *Config) *time.Duration { return &c.CircuitBreaker.OpenDuration })},
	{"BREEDBASE_BULKHEAD_ENABLED", envBool(func(c *Config) *bool { return &c.Bulkhead.Enabled })},
	{"BREEDBASE_BULKHEAD_MAX_CONCURRENT", envInt(func(c *Config) *int { return &c.Bulkhead.MaxConcurrent })},

	{"BREEDBASE_CATALOG_TTL", envDuration(func(c *Config) *time.Duration { return &c.Catalog.TTL })},
	{"BREEDBASE_CATALOG_TOUCH_ON_UNCHANGED", envBool(func(c *Config) *bool { return &c.Catalog.TouchOnUnchanged })},
	{"BREEDBASE_CATALOG_RESOLVE_MISSING_IMAGES", envBool(func(c *Config) *bool { return &c.Catalog.ResolveMissingImages })},

	{"BREEDBASE_NARRATIVE_MODEL", envString(func(c *Config) *string { return &c.Narrative.Model })},
	{"BREEDBASE_NARRATIVE_MODE", envLower(func(c *Config) *string { return &c.Narrative.Mode })},
	{"BREEDBASE_NARRATIVE_TIMEOUT", envDuration(func(c *Config) *time.Duration { return &c.Narrative.Timeout })},

	{"DOG_API_KEY", envSecret(func(c *Config) *SecretString { return &c.Upstream.DogAPIKey })},
	{"OPENAI_API_KEY", envSecret(func(c *Config) *SecretString { return &c.Upstream.OpenAIKey })},
	{"BREEDBASE_DOG_API_URL", envString(func(c *Config) *string { return &c.Upstream.DogAPIBaseURL })},
	{"BREEDBASE_WIKI_SUMMARY_URL", envString(func(c *Config) *string { return &c.Upstream.WikiSummaryURL })},
	{"BREEDBASE_WIKI_API_URL", envString(func(c *Config) *string { return &c.Upstream.WikiAPIURL })},
	{"BREEDBASE_OPENAI_BASE_URL", envString(func(c *Config) *string { return &c.Upstream.OpenAIBaseURL })},
	{"BREEDBASE_HTTP_TIMEOUT", envDuration(func(c *Config) *time.Duration { return &c.Upstream.HTTPTimeout })},

	{"BREEDBASE_SERVER_ADDRESS", envString(func(c *Config) *string { return &c.Server.Address })},
	{"BREEDBASE_METRICS_ENABLED", envBool(func(c *Config) *bool { return &c.Metrics.Enabled })},

	{"DD_AGENT_HOST", func(c *Config, v string) {
		c.Metrics.DataDog.AgentHost = v
		c.Metrics.DataDog.Enabled = true
	}},
	{"DD_DOGSTATSD_PORT", envInt(func(c *Config) *int { return &c.Metrics.DataDog.Port })},
	{"DD_SERVICE", envString(func(c *Config) *string { return &c.Metrics.DataDog.Prefix })},
	{"DD_ENV", envTag("env:")},
	{"DD_VERSION", envTag("version:")},
}

func applyEnvOverrides(cfg *Config) {
	for _, b := range envBindings {
		if v := os.Getenv(b.name); v != "" {
			b.apply(cfg, v)
		}
	}
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "on":
		return true
	}
	return false
}

func parseInt(s string, fallback int) int {
	if v, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
		return v
	}
	return fallback
}

// parseDuration accepts Go durations ("90s", "1m30s") and bare seconds ("90").
func parseDuration(s string, fallback time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
