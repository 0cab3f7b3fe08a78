package cache

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/LavishGent/breedbase/internal/config"
	"github.com/LavishGent/breedbase/internal/types"
)

const (
	disconnectErrorThreshold = 5
)

// RedisBackend stores records in Redis under a key prefix. Connectivity is tracked
// locally so an unreachable server fails fast with ErrBackendUnavailable.
type RedisBackend struct {
	client *redis.Client
	config config.RedisConfig
	logger *slog.Logger

	mu            sync.RWMutex
	connected     atomic.Bool
	lastError     error
	lastErrorTime time.Time
	errorCount    atomic.Int64

	healthCheckStopCh chan struct{}
	healthCheckWg     sync.WaitGroup

	hits   atomic.Int64
	misses atomic.Int64
	sets   atomic.Int64
}

// redisOptions builds client options from a URL when one is configured, otherwise
// from the discrete address fields.
func redisOptions(cfg config.RedisConfig, logger *slog.Logger) (*redis.Options, error) {
	var opts *redis.Options
	if !cfg.URL.IsEmpty() {
		parsed, err := redis.ParseURL(cfg.URL.Value())
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{
			Addr:     cfg.Address,
			Password: cfg.Password.Value(),
			DB:       cfg.DB,
		}
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout
	opts.PoolTimeout = cfg.PoolTimeout

	if cfg.EnableTLS && opts.TLSConfig == nil {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	if opts.TLSConfig != nil && cfg.TLSSkipVerify {
		opts.TLSConfig.InsecureSkipVerify = true
		logger.Warn("TLS certificate verification is disabled - this is insecure for production use")
	}
	return opts, nil
}

// NewRedisBackend connects to Redis. A failed initial ping is logged and the
// backend starts disconnected; the health check reconnects it later.
func NewRedisBackend(cfg config.RedisConfig, logger *slog.Logger) (*RedisBackend, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "redis-backend")

	opts, err := redisOptions(cfg, logger)
	if err != nil {
		return nil, err
	}
	return newRedisBackend(redis.NewClient(opts), cfg, logger), nil
}

func newRedisBackend(client *redis.Client, cfg config.RedisConfig, logger *slog.Logger) *RedisBackend {
	rb := &RedisBackend{
		client:            client,
		config:            cfg,
		logger:            logger,
		healthCheckStopCh: make(chan struct{}),
	}

	ctx, cancel := context.WithTimeout(context.Background(), rb.pingTimeout())
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		rb.logger.Warn("Redis initial connection failed", "error", err)
		rb.setError(err)
	} else {
		rb.connected.Store(true)
		rb.logger.Info("Redis connected", "address", client.Options().Addr)
	}

	if cfg.HealthCheckInterval > 0 {
		rb.healthCheckWg.Add(1)
		go rb.healthCheckWorker()
	}

	return rb
}

// Name returns "redis".
func (r *RedisBackend) Name() string {
	return config.BackendRedis
}

// IsAvailable reports whether the client is currently connected.
func (r *RedisBackend) IsAvailable() bool {
	return r.connected.Load()
}

func (r *RedisBackend) prefixKey(key string) string {
	return r.config.KeyPrefix + key
}

func (r *RedisBackend) pingTimeout() time.Duration {
	if r.config.DialTimeout > 0 {
		return r.config.DialTimeout
	}
	return 5 * time.Second
}

// Get reads key under the configured prefix. A missing key is ErrCacheMiss.
func (r *RedisBackend) Get(ctx context.Context, key string) ([]byte, error) {
	if !r.connected.Load() {
		return nil, types.ErrBackendUnavailable
	}

	data, err := r.client.Get(ctx, r.prefixKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			r.misses.Add(1)
			r.clearError()
			return nil, types.ErrCacheMiss
		}
		r.handleError(err)
		return nil, types.NewCacheError("Get", key, "redis", err)
	}

	r.hits.Add(1)
	r.clearError()
	return data, nil
}

// Set writes value with ttl as the Redis expiry. A zero ttl keeps the key forever.
func (r *RedisBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if !r.connected.Load() {
		return types.ErrBackendUnavailable
	}

	if err := r.client.Set(ctx, r.prefixKey(key), value, ttl).Err(); err != nil {
		r.handleError(err)
		return types.NewCacheError("Set", key, "redis", err)
	}

	r.sets.Add(1)
	r.clearError()
	return nil
}

// Stats returns hit/miss counters. Entries and size are not tracked for Redis.
func (r *RedisBackend) Stats() types.BackendStats {
	return types.BackendStats{
		Hits:   r.hits.Load(),
		Misses: r.misses.Load(),
	}
}

func (r *RedisBackend) healthCheckWorker() {
	defer r.healthCheckWg.Done()

	ticker := time.NewTicker(r.config.HealthCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.healthCheckStopCh:
			return
		case <-ticker.C:
			r.performHealthCheck()
		}
	}
}

func (r *RedisBackend) performHealthCheck() {
	wasConnected := r.connected.Load()

	ctx, cancel := context.WithTimeout(context.Background(), r.pingTimeout())
	defer cancel()

	if err := r.client.Ping(ctx).Err(); err != nil {
		if wasConnected {
			r.logger.Warn("Redis health check failed", "error", err)
			r.setError(err)
		}
		return
	}

	if !wasConnected {
		r.connected.Store(true)
		r.errorCount.Store(0)
		r.logger.Info("Redis connection restored via health check")
	}
}

// Close stops the health check and closes the client.
func (r *RedisBackend) Close() error {
	r.connected.Store(false)

	close(r.healthCheckStopCh)
	r.healthCheckWg.Wait()

	return r.client.Close()
}

func (r *RedisBackend) handleError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastError = err
	r.lastErrorTime = time.Now()
	count := r.errorCount.Add(1)

	if count >= disconnectErrorThreshold {
		if r.connected.CompareAndSwap(true, false) {
			r.logger.Warn("Redis marked as disconnected after errors",
				"error_count", count,
				"last_error", err,
			)
		}
	}
}

func (r *RedisBackend) clearError() {
	if r.errorCount.Swap(0) > 0 {
		if r.connected.CompareAndSwap(false, true) {
			r.logger.Info("Redis connection restored")
		}
	}
}

func (r *RedisBackend) setError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastError = err
	r.lastErrorTime = time.Now()
	r.connected.Store(false)
}

// LastError returns the most recent Redis error and when it happened.
func (r *RedisBackend) LastError() (error, time.Time) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastError, r.lastErrorTime
}

var (
	_ types.Backend       = (*RedisBackend)(nil)
	_ types.StatsProvider = (*RedisBackend)(nil)
)
