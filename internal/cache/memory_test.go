package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LavishGent/breedbase/internal/config"
	"github.com/LavishGent/breedbase/internal/types"
)

func testMemoryConfig() config.MemoryConfig {
	return config.MemoryConfig{
		MaxSizeMB:  8,
		LifeWindow: time.Hour,
		Shards:     4,
	}
}

func TestMemoryBackend(t *testing.T) {
	ctx := context.Background()

	t.Run("miss on empty", func(t *testing.T) {
		mb, err := NewMemoryBackend(testMemoryConfig(), nil)
		require.NoError(t, err)
		defer mb.Close()

		_, err = mb.Get(ctx, "absent")
		assert.ErrorIs(t, err, types.ErrCacheMiss)
		assert.Equal(t, int64(1), mb.Stats().Misses)
	})

	t.Run("set then get", func(t *testing.T) {
		mb, err := NewMemoryBackend(testMemoryConfig(), nil)
		require.NoError(t, err)
		defer mb.Close()

		require.NoError(t, mb.Set(ctx, "k", []byte("v1"), 0))
		require.NoError(t, mb.Set(ctx, "k", []byte("v2"), time.Minute))

		got, err := mb.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("v2"), got)

		stats := mb.Stats()
		assert.Equal(t, int64(1), stats.Hits)
		assert.Equal(t, 1, stats.Entries)
	})

	t.Run("defaults zero shards and life window", func(t *testing.T) {
		mb, err := NewMemoryBackend(config.MemoryConfig{}, nil)
		require.NoError(t, err)
		defer mb.Close()
		assert.Equal(t, config.BackendMemory, mb.Name())
	})

	t.Run("closed", func(t *testing.T) {
		mb, err := NewMemoryBackend(testMemoryConfig(), nil)
		require.NoError(t, err)

		assert.True(t, mb.IsAvailable())
		require.NoError(t, mb.Close())
		require.NoError(t, mb.Close())
		assert.False(t, mb.IsAvailable())

		_, err = mb.Get(ctx, "k")
		assert.ErrorIs(t, err, types.ErrClosed)
		assert.ErrorIs(t, mb.Set(ctx, "k", []byte("v"), 0), types.ErrClosed)
	})
}

func TestDisabledBackend(t *testing.T) {
	ctx := context.Background()
	d := NewDisabledBackend()

	assert.False(t, d.IsAvailable())
	require.NoError(t, d.Set(ctx, "k", []byte("v"), 0))
	_, err := d.Get(ctx, "k")
	assert.ErrorIs(t, err, types.ErrCacheMiss)
	assert.NoError(t, d.Close())
}
