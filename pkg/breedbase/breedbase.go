package breedbase

import (
	"context"

	"github.com/LavishGent/breedbase/internal/config"
)

// New creates a client with the default configuration.
func New(opts ...Option) (*Client, error) {
	return NewFromConfig(config.DefaultConfig(), opts...)
}

// NewFromConfig creates a client from cfg.
func NewFromConfig(cfg *Config, opts ...Option) (*Client, error) {
	return NewFromConfigContext(context.Background(), cfg, opts...)
}

// NewFromConfigContext is NewFromConfig with a context bounding backend setup
// (the initial Redis ping, AWS credential loading).
func NewFromConfigContext(ctx context.Context, cfg *Config, opts ...Option) (*Client, error) {
	clientOpts := &ClientOptions{}
	for _, opt := range opts {
		opt(clientOpts)
	}
	return newClient(ctx, cfg, clientOpts)
}

// NewFromFile creates a client from a JSON config file with environment overrides.
func NewFromFile(path string, opts ...Option) (*Client, error) {
	cfg, err := config.LoadWithEnv(path)
	if err != nil {
		return nil, err
	}
	return NewFromConfig(cfg, opts...)
}

// DefaultConfig returns a configuration that can be modified before creating a client.
func DefaultConfig() *Config {
	return config.DefaultConfig()
}

// TestConfig returns a configuration suitable for unit tests: memory backend,
// no metrics publishing, no resilience wrappers.
func TestConfig() *Config {
	return config.ForTesting()
}
