package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LavishGent/breedbase/internal/config"
)

func TestNewBackend(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		backend string
		want    string
	}{
		{config.BackendMemory, "memory"},
		{config.BackendFile, "file"},
		{config.BackendDisabled, "disabled"},
	}

	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			cfg := config.ForTesting()
			cfg.Cache.Backend = tt.backend
			cfg.File.Dir = t.TempDir()

			b, err := NewBackend(ctx, cfg, nil, nil)
			require.NoError(t, err)
			defer b.Close()
			assert.Equal(t, tt.want, b.Name())
		})
	}

	t.Run("unknown", func(t *testing.T) {
		cfg := config.ForTesting()
		cfg.Cache.Backend = "etcd"
		_, err := NewBackend(ctx, cfg, nil, nil)
		assert.ErrorContains(t, err, "etcd")
	})

	t.Run("tiered with unknown durable", func(t *testing.T) {
		cfg := config.ForTesting()
		cfg.Cache.Backend = config.BackendTiered
		cfg.Cache.Durable = "nope"
		_, err := NewBackend(ctx, cfg, nil, nil)
		assert.Error(t, err)
	})
}
