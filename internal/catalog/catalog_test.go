package catalog

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LavishGent/breedbase/internal/cache"
	"github.com/LavishGent/breedbase/internal/config"
	"github.com/LavishGent/breedbase/internal/metrics"
	"github.com/LavishGent/breedbase/internal/types"
)

type fakeSource struct {
	mu     sync.Mutex
	breeds []types.BreedRaw
	err    error
	delay  time.Duration
	calls  atomic.Int64
}

func (f *fakeSource) Breeds(ctx context.Context) ([]types.BreedRaw, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return append([]types.BreedRaw(nil), f.breeds...), nil
}

func (f *fakeSource) set(breeds []types.BreedRaw, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.breeds = breeds
	f.err = err
}

type fakeStore struct {
	mu     sync.Mutex
	rec    *types.CacheRecord
	writes int
	setErr error
}

func (f *fakeStore) Get(ctx context.Context) (types.CacheRecord, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rec == nil {
		return types.CacheRecord{}, false
	}
	return *f.rec, true
}

func (f *fakeStore) Set(ctx context.Context, rec types.CacheRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.writes++
	f.rec = &rec
	return nil
}

func (f *fakeStore) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock { return &clock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)} }

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func rawBreeds() []types.BreedRaw {
	return []types.BreedRaw{
		{ID: 1, Name: "Akita", ReferenceImageID: "abc", Temperament: "Docile, Alert"},
		{ID: 2, Name: "Basenji", ReferenceImageID: "H1dGlxqNQ", Description: "Barkless."},
	}
}

func testCatalogConfig() config.CatalogConfig {
	return config.CatalogConfig{TTL: 24 * time.Hour, TouchOnUnchanged: true, NormalizeWorkers: 2}
}

func newTestService(store RecordStore, src BreedSource, clk *clock, opts ...Option) (*Service, *metrics.Tracker) {
	tracker := metrics.NewTracker()
	opts = append([]Option{WithClock(clk.Now), WithMetrics(tracker)}, opts...)
	return NewService(store, src, testCatalogConfig(), opts...), tracker
}

func TestNormalize(t *testing.T) {
	t.Run("akita", func(t *testing.T) {
		got := Normalize(types.BreedRaw{ID: 1, Name: "Akita", ReferenceImageID: "abc"})
		assert.Equal(t, types.EnrichedBreed{
			ID:           1,
			Name:         "Akita",
			Description:  NoDescription,
			Temperament:  NotSpecified,
			LifeSpan:     NotSpecified,
			Origin:       NotSpecified,
			Weight:       NotSpecified,
			Height:       NotSpecified,
			BredFor:      NotSpecified,
			BreedGroup:   NotSpecified,
			ImageURL:     "https://cdn2.thedogapi.com/images/abc.jpg",
			WikipediaURL: "",
		}, got)
	})

	t.Run("description falls back to temperament", func(t *testing.T) {
		got := Normalize(types.BreedRaw{Name: "Akita", Temperament: "Docile"})
		assert.Equal(t, "Docile", got.Description)
		assert.Equal(t, PlaceholderImage, got.ImageURL)
	})

	t.Run("metric measures", func(t *testing.T) {
		got := Normalize(types.BreedRaw{
			Name:   "Beagle",
			Weight: &types.Measure{Imperial: "20 - 30", Metric: "9 - 14"},
			Height: &types.Measure{Imperial: "13 - 15"},
		})
		assert.Equal(t, "9 - 14", got.Weight)
		assert.Equal(t, NotSpecified, got.Height)
	})

	t.Run("custom cdn", func(t *testing.T) {
		got := NormalizeWithCDN(types.BreedRaw{Name: "Pug", ReferenceImageID: "x"}, "https://img.example/%s.png")
		assert.Equal(t, "https://img.example/x.png", got.ImageURL)
	})
}

func TestFilter(t *testing.T) {
	in := []types.EnrichedBreed{
		{Name: "Akita", ImageURL: "a"},
		{Name: "", ImageURL: "b"},
		{Name: "Pug", ImageURL: ""},
		{Name: "Basenji", ImageURL: "c"},
	}
	got := Filter(in)
	require.Len(t, got, 2)
	assert.Equal(t, "Akita", got[0].Name)
	assert.Equal(t, "Basenji", got[1].Name)
}

func TestHash(t *testing.T) {
	a, err := Hash(rawBreeds())
	require.NoError(t, err)
	b, err := Hash(rawBreeds())
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)

	reordered := rawBreeds()
	reordered[0], reordered[1] = reordered[1], reordered[0]
	c, err := Hash(reordered)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)

	changed := rawBreeds()
	changed[0].Temperament = "Bold"
	d, err := Hash(changed)
	require.NoError(t, err)
	assert.NotEqual(t, a, d)
}

func TestGetCatalog(t *testing.T) {
	ctx := context.Background()

	t.Run("empty fetches and persists once", func(t *testing.T) {
		store := &fakeStore{}
		src := &fakeSource{breeds: rawBreeds()}
		clk := newClock()
		svc, tracker := newTestService(store, src, clk)

		breeds, err := svc.GetCatalog(ctx)
		require.NoError(t, err)
		require.Len(t, breeds, 2)
		assert.Equal(t, "Docile, Alert", breeds[0].Description)
		assert.Equal(t, 1, store.writeCount())

		rec, _ := store.Get(ctx)
		wantHash, _ := Hash(rawBreeds())
		assert.Equal(t, wantHash, rec.DataHash)
		assert.Equal(t, clk.Now().UnixMilli(), rec.Timestamp)
		assert.Equal(t, int64(1), tracker.Snapshot().CatalogRefreshed)
	})

	t.Run("second call one second later does not refetch", func(t *testing.T) {
		store := &fakeStore{}
		src := &fakeSource{breeds: rawBreeds()}
		clk := newClock()
		svc, tracker := newTestService(store, src, clk)

		_, err := svc.GetCatalog(ctx)
		require.NoError(t, err)
		clk.Advance(time.Second)
		_, err = svc.GetCatalog(ctx)
		require.NoError(t, err)

		assert.Equal(t, int64(1), src.calls.Load())
		assert.Equal(t, 1, store.writeCount())
		assert.Equal(t, int64(1), tracker.Snapshot().CatalogFresh)
		assert.Equal(t, types.CatalogFresh, svc.State(ctx))
	})

	t.Run("stale and unchanged touches timestamp", func(t *testing.T) {
		store := &fakeStore{}
		src := &fakeSource{breeds: rawBreeds()}
		clk := newClock()
		svc, tracker := newTestService(store, src, clk)

		first, err := svc.GetCatalog(ctx)
		require.NoError(t, err)

		clk.Advance(25 * time.Hour)
		assert.Equal(t, types.CatalogStaleCheck, svc.State(ctx))

		second, err := svc.GetCatalog(ctx)
		require.NoError(t, err)
		assert.Equal(t, first, second)
		assert.Equal(t, int64(2), src.calls.Load())
		assert.Equal(t, 2, store.writeCount())

		rec, _ := store.Get(ctx)
		assert.Equal(t, clk.Now().UnixMilli(), rec.Timestamp)
		assert.Equal(t, int64(1), tracker.Snapshot().CatalogUnchanged)
	})

	t.Run("stale and unchanged without touch writes nothing", func(t *testing.T) {
		store := &fakeStore{}
		src := &fakeSource{breeds: rawBreeds()}
		clk := newClock()
		cfg := testCatalogConfig()
		cfg.TouchOnUnchanged = false
		svc := NewService(store, src, cfg, WithClock(clk.Now))

		_, err := svc.GetCatalog(ctx)
		require.NoError(t, err)
		clk.Advance(25 * time.Hour)
		_, err = svc.GetCatalog(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, store.writeCount())
	})

	t.Run("stale and changed replaces record", func(t *testing.T) {
		store := &fakeStore{}
		src := &fakeSource{breeds: rawBreeds()}
		clk := newClock()
		svc, _ := newTestService(store, src, clk)

		_, err := svc.GetCatalog(ctx)
		require.NoError(t, err)

		clk.Advance(25 * time.Hour)
		src.set(append(rawBreeds(), types.BreedRaw{ID: 3, Name: "Pug", ReferenceImageID: "p"}), nil)

		breeds, err := svc.GetCatalog(ctx)
		require.NoError(t, err)
		assert.Len(t, breeds, 3)
		assert.Equal(t, 2, store.writeCount())
	})

	t.Run("failure with cache serves stale", func(t *testing.T) {
		store := &fakeStore{}
		src := &fakeSource{breeds: rawBreeds()}
		clk := newClock()
		svc, tracker := newTestService(store, src, clk)

		cached, err := svc.GetCatalog(ctx)
		require.NoError(t, err)

		clk.Advance(48 * time.Hour)
		src.set(nil, types.NewUpstreamError("dogapi.breeds", 503, errors.New("unavailable")))

		breeds, err := svc.GetCatalog(ctx)
		require.NoError(t, err)
		assert.Equal(t, cached, breeds)
		assert.Equal(t, 1, store.writeCount())
		assert.Equal(t, int64(1), tracker.Snapshot().CatalogStale)
	})

	t.Run("failure without cache is no catalog", func(t *testing.T) {
		store := &fakeStore{}
		src := &fakeSource{err: types.NewUpstreamError("dogapi.breeds", 500, errors.New("boom"))}
		svc, tracker := newTestService(store, src, newClock())

		_, err := svc.GetCatalog(ctx)
		require.ErrorIs(t, err, types.ErrNoCatalog)
		assert.True(t, types.IsUpstream(err))
		assert.Equal(t, 0, store.writeCount())
		assert.Equal(t, int64(1), tracker.Snapshot().CatalogFailed)
	})

	t.Run("persist failure still returns fresh breeds", func(t *testing.T) {
		store := &fakeStore{setErr: errors.New("disk full")}
		src := &fakeSource{breeds: rawBreeds()}
		svc, _ := newTestService(store, src, newClock())

		breeds, err := svc.GetCatalog(ctx)
		require.NoError(t, err)
		assert.Len(t, breeds, 2)
	})

	t.Run("entries without a name are dropped", func(t *testing.T) {
		store := &fakeStore{}
		src := &fakeSource{breeds: append(rawBreeds(), types.BreedRaw{ID: 9, Name: "  "})}
		svc, _ := newTestService(store, src, newClock())

		breeds, err := svc.GetCatalog(ctx)
		require.NoError(t, err)
		require.Len(t, breeds, 2)
		for _, b := range breeds {
			assert.NotEmpty(t, b.Name)
			assert.NotEmpty(t, b.ImageURL)
		}
	})

	t.Run("concurrent callers share one fetch", func(t *testing.T) {
		store := &fakeStore{}
		src := &fakeSource{breeds: rawBreeds(), delay: 50 * time.Millisecond}
		svc, _ := newTestService(store, src, newClock())

		var wg sync.WaitGroup
		for range 10 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				breeds, err := svc.GetCatalog(ctx)
				assert.NoError(t, err)
				assert.Len(t, breeds, 2)
			}()
		}
		wg.Wait()

		assert.Equal(t, int64(1), src.calls.Load())
		assert.Equal(t, 1, store.writeCount())
	})

	t.Run("cancelled caller does not fail joined callers", func(t *testing.T) {
		clk := newClock()
		old := types.NewCacheRecord(clk.Now().Add(-48*time.Hour), "stale-hash", []types.EnrichedBreed{{Name: "Akita", ImageURL: "x"}})
		store := &fakeStore{rec: &old}
		src := &fakeSource{breeds: rawBreeds(), delay: 100 * time.Millisecond}
		svc, _ := newTestService(store, src, clk)

		firstCtx, cancel := context.WithCancel(ctx)
		firstErr := make(chan error, 1)
		go func() {
			_, err := svc.GetCatalog(firstCtx)
			firstErr <- err
		}()
		require.Eventually(t, func() bool { return src.calls.Load() == 1 }, time.Second, time.Millisecond)

		type result struct {
			breeds []types.EnrichedBreed
			err    error
		}
		second := make(chan result, 1)
		go func() {
			breeds, err := svc.GetCatalog(ctx)
			second <- result{breeds, err}
		}()
		time.Sleep(10 * time.Millisecond)
		cancel()

		assert.ErrorIs(t, <-firstErr, context.Canceled)
		got := <-second
		require.NoError(t, got.err)
		assert.Len(t, got.breeds, 2)
		assert.Equal(t, int64(1), src.calls.Load())
		assert.Equal(t, 1, store.writeCount())
	})

	t.Run("cancelled caller leaves stale record servable", func(t *testing.T) {
		clk := newClock()
		old := types.NewCacheRecord(clk.Now().Add(-48*time.Hour), "stale-hash", []types.EnrichedBreed{{Name: "Akita", ImageURL: "x"}})
		store := &fakeStore{rec: &old}
		src := &fakeSource{err: types.NewUpstreamError("dogapi.breeds", 502, errors.New("bad gateway")), delay: 50 * time.Millisecond}
		svc, _ := newTestService(store, src, clk)

		firstCtx, cancel := context.WithCancel(ctx)
		go func() {
			_, _ = svc.GetCatalog(firstCtx)
		}()
		require.Eventually(t, func() bool { return src.calls.Load() == 1 }, time.Second, time.Millisecond)

		done := make(chan []types.EnrichedBreed, 1)
		go func() {
			breeds, err := svc.GetCatalog(ctx)
			assert.NoError(t, err)
			done <- breeds
		}()
		time.Sleep(10 * time.Millisecond)
		cancel()

		breeds := <-done
		require.Len(t, breeds, 1)
		assert.Equal(t, "Akita", breeds[0].Name)
	})
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()
	store := &fakeStore{}
	src := &fakeSource{breeds: rawBreeds()}
	svc, _ := newTestService(store, src, newClock())

	_, err := svc.GetCatalog(ctx)
	require.NoError(t, err)

	_, err = svc.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), src.calls.Load())

	info := svc.Inspect(ctx)
	assert.Equal(t, types.CatalogFresh, info.State)
	assert.Equal(t, 2, info.Entries)
	assert.NotEmpty(t, info.DataHash)
}

type fakeImages struct {
	calls atomic.Int64
}

func (f *fakeImages) ImageForBreed(ctx context.Context, id int) (string, error) {
	f.calls.Add(1)
	if id == 5 {
		return "https://cdn2.thedogapi.com/images/resolved.jpg", nil
	}
	return "", types.NewNotFoundError("dogapi.images", "none")
}

func TestResolveMissingImages(t *testing.T) {
	ctx := context.Background()
	store := &fakeStore{}
	src := &fakeSource{breeds: []types.BreedRaw{
		{ID: 1, Name: "Akita", ReferenceImageID: "abc"},
		{ID: 5, Name: "Lost"},
		{ID: 6, Name: "Unknown"},
	}}
	images := &fakeImages{}

	cfg := testCatalogConfig()
	cfg.ResolveMissingImages = true
	svc := NewService(store, src, cfg, WithClock(newClock().Now), WithImageSource(images))

	breeds, err := svc.GetCatalog(ctx)
	require.NoError(t, err)
	require.Len(t, breeds, 3)
	assert.Equal(t, "https://cdn2.thedogapi.com/images/abc.jpg", breeds[0].ImageURL)
	assert.Equal(t, "https://cdn2.thedogapi.com/images/resolved.jpg", breeds[1].ImageURL)
	assert.Equal(t, PlaceholderImage, breeds[2].ImageURL)
	assert.Equal(t, int64(2), images.calls.Load())
}

func TestSnapshotAndFindByName(t *testing.T) {
	ctx := context.Background()
	store := &fakeStore{}
	svc, _ := newTestService(store, &fakeSource{breeds: rawBreeds()}, newClock())

	_, ok := svc.Snapshot(ctx)
	assert.False(t, ok)
	assert.Equal(t, types.CatalogEmpty, svc.State(ctx))

	_, err := svc.GetCatalog(ctx)
	require.NoError(t, err)

	b, ok := svc.FindByName(ctx, "  akita ")
	require.True(t, ok)
	assert.Equal(t, 1, b.ID)

	_, ok = svc.FindByName(ctx, "Akit")
	assert.False(t, ok)
}

func TestServiceWithFileStore(t *testing.T) {
	ctx := context.Background()
	backend := cache.NewFileBackend(config.FileConfig{Dir: t.TempDir()}, nil)
	store := cache.NewStore[types.CacheRecord](backend, config.DefaultCacheKey, cache.WithSerializer(cache.NewJSONSerializer(true)))
	src := &fakeSource{breeds: rawBreeds()}
	clk := newClock()

	svc := NewService(store, src, testCatalogConfig(), WithClock(clk.Now))
	_, err := svc.GetCatalog(ctx)
	require.NoError(t, err)

	// A new service over the same directory reads the persisted record.
	other := NewService(store, src, testCatalogConfig(), WithClock(clk.Now))
	breeds, err := other.GetCatalog(ctx)
	require.NoError(t, err)
	assert.Len(t, breeds, 2)
	assert.Equal(t, int64(1), src.calls.Load())
}
