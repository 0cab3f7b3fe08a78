package cache

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/LavishGent/breedbase/internal/types"
)

// fakeBackend is an in-memory Backend whose failures can be switched on.
type fakeBackend struct {
	name string

	mu   sync.Mutex
	data map[string][]byte
	ttls map[string]time.Duration

	getErr    error
	setErr    error
	available atomic.Bool
	gets      atomic.Int64
	sets      atomic.Int64
	closed    atomic.Bool
}

func newFakeBackend(name string) *fakeBackend {
	f := &fakeBackend{
		name: name,
		data: make(map[string][]byte),
		ttls: make(map[string]time.Duration),
	}
	f.available.Store(true)
	return f
}

func (f *fakeBackend) Name() string      { return f.name }
func (f *fakeBackend) IsAvailable() bool { return f.available.Load() }

func (f *fakeBackend) Get(ctx context.Context, key string) ([]byte, error) {
	f.gets.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	v, ok := f.data[key]
	if !ok {
		return nil, types.ErrCacheMiss
	}
	return v, nil
}

func (f *fakeBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	f.sets.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.data[key] = value
	f.ttls[key] = ttl
	return nil
}

func (f *fakeBackend) Close() error {
	f.closed.Store(true)
	return nil
}

func (f *fakeBackend) setFailures(getErr, setErr error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getErr = getErr
	f.setErr = setErr
}

func (f *fakeBackend) value(key string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	return v, ok
}

func slogDiscard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
