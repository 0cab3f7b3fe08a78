package cache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/LavishGent/breedbase/internal/config"
	"github.com/LavishGent/breedbase/internal/types"
)

// FileBackend keeps each key in <dir>/<key>.json. Writes go to a temp file in the
// same directory and are renamed into place so readers never see a partial file.
type FileBackend struct {
	dir    string
	logger *slog.Logger

	hits   atomic.Int64
	misses atomic.Int64
	closed atomic.Bool
}

// NewFileBackend stores each key as a JSON file under cfg.Dir.
func NewFileBackend(cfg config.FileConfig, logger *slog.Logger) *FileBackend {
	if logger == nil {
		logger = slog.Default()
	}
	dir := cfg.Dir
	if dir == "" {
		dir = "data"
	}
	return &FileBackend{
		dir:    dir,
		logger: logger.With("component", "file-backend", "dir", dir),
	}
}

// Name returns "file".
func (f *FileBackend) Name() string {
	return config.BackendFile
}

// IsAvailable reports false once the backend is closed.
func (f *FileBackend) IsAvailable() bool {
	return !f.closed.Load()
}

// Path returns the file that holds key.
func (f *FileBackend) Path(key string) string {
	return filepath.Join(f.dir, sanitizeFileKey(key)+".json")
}

// Get reads the file for key. A missing file is ErrCacheMiss.
func (f *FileBackend) Get(ctx context.Context, key string) ([]byte, error) {
	if f.closed.Load() {
		return nil, types.ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(f.Path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			f.misses.Add(1)
			return nil, types.ErrCacheMiss
		}
		return nil, types.NewCacheError("Get", key, "file", err)
	}

	f.hits.Add(1)
	return data, nil
}

// Set writes value atomically. ttl is ignored; the file is kept until overwritten.
func (f *FileBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if f.closed.Load() {
		return types.ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return types.NewCacheError("Set", key, "file", fmt.Errorf("create cache dir: %w", err))
	}

	tmp, err := os.CreateTemp(f.dir, "."+sanitizeFileKey(key)+"-*.tmp")
	if err != nil {
		return types.NewCacheError("Set", key, "file", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return types.NewCacheError("Set", key, "file", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return types.NewCacheError("Set", key, "file", err)
	}
	if err := os.Rename(tmpName, f.Path(key)); err != nil {
		_ = os.Remove(tmpName)
		return types.NewCacheError("Set", key, "file", err)
	}

	f.logger.Debug("Record written", "key", key, "bytes", len(value))
	return nil
}

// Stats returns hit and miss counters.
func (f *FileBackend) Stats() types.BackendStats {
	return types.BackendStats{
		Hits:   f.hits.Load(),
		Misses: f.misses.Load(),
	}
}

// Close is a no-op.
func (f *FileBackend) Close() error {
	f.closed.Store(true)
	return nil
}

// sanitizeFileKey keeps keys from escaping the cache directory.
func sanitizeFileKey(key string) string {
	return strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(key)
}

var (
	_ types.Backend       = (*FileBackend)(nil)
	_ types.StatsProvider = (*FileBackend)(nil)
)
