package collection_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"doza.gg/showcase/cache"
	"doza.gg/showcase/collection"
	"doza.gg/showcase/fetcher"
	"doza.gg/showcase/model"
	"doza.gg/showcase/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ttl = 10 * time.Minute

type testEnv struct {
	svc   *collection.Service
	fetch *fakeFetcher
	now   time.Time
	mu    sync.Mutex
}

func (e *testEnv) clock() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.now
}

func (e *testEnv) advance(d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.now = e.now.Add(d)
}

func newTestEnv(t *testing.T, fetch *fakeFetcher, seeds ...model.VideoID) *testEnv {
	t.Helper()

	db, err := storage.NewSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	env := &testEnv{
		fetch: fetch,
		now:   time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	logger := testLogger()
	videos := storage.NewSQLVideoRepository(db)
	c := cache.New(storage.NewSQLCacheRepository(db), ttl, logger, cache.WithClock(env.clock))
	builder := collection.NewBuilder(staticSeeds(seeds), videos, fetch, logger)
	env.svc = collection.NewService(builder, videos, fetch, fetch, c, time.Second, logger)

	return env
}

func ids(videos []model.Video) []model.VideoID {
	res := []model.VideoID{}
	for _, v := range videos {
		res = append(res, v.ID)
	}
	return res
}

func TestCollectionCache(t *testing.T) {
	ctx := context.Background()
	a := ytVideo("dQw4w9WgXcQ", "franzj", 100)
	env := newTestEnv(t, newFakeFetcher(a), a.ID)

	res, err := env.svc.Collection(ctx)
	require.NoError(t, err)
	assert.Equal(t, collection.StatusMiss, res.Status)
	assert.Equal(t, []model.VideoID{a.ID}, ids(res.Collection.Videos))
	assert.Equal(t, []model.ChannelSummary{{Name: "franzj", ChannelID: "UCfranzj", Count: 1}}, res.Collection.Channels)
	assert.Equal(t, 1, env.fetch.calls())

	res, err = env.svc.Collection(ctx)
	require.NoError(t, err)
	assert.Equal(t, collection.StatusFresh, res.Status)
	assert.Equal(t, []model.VideoID{a.ID}, ids(res.Collection.Videos))
	assert.Equal(t, 1, env.fetch.calls())

	t.Run("expired entry is rebuilt", func(t *testing.T) {
		env.advance(ttl + time.Second)
		res, err := env.svc.Collection(ctx)
		require.NoError(t, err)
		assert.Equal(t, collection.StatusMiss, res.Status)
		assert.Equal(t, 2, env.fetch.calls())
	})
}

func TestCollectionStaleFallback(t *testing.T) {
	ctx := context.Background()
	a := ytVideo("dQw4w9WgXcQ", "franzj", 100)
	env := newTestEnv(t, newFakeFetcher(a), a.ID)

	_, err := env.svc.Collection(ctx)
	require.NoError(t, err)

	env.advance(ttl + time.Minute)
	env.fetch.setErr(&fetcher.UpstreamError{Call: "videos.list", Status: 429, RateLimited: true, Err: fmt.Errorf("quota")})

	res, err := env.svc.Collection(ctx)
	require.NoError(t, err)
	assert.Equal(t, collection.StatusStale, res.Status)
	assert.Equal(t, []model.VideoID{a.ID}, ids(res.Collection.Videos))
	assert.Equal(t, 2, env.fetch.calls())
}

func TestCollectionErrorWithoutEntry(t *testing.T) {
	env := newTestEnv(t, newFakeFetcher(), "dQw4w9WgXcQ")
	env.fetch.setErr(&fetcher.UpstreamError{Call: "videos.list", Status: 429, RateLimited: true, Err: fmt.Errorf("quota")})

	_, err := env.svc.Collection(context.Background())
	assert.ErrorIs(t, err, fetcher.ErrRateLimited)
}

func TestCollectionIgnoresCallerCancellation(t *testing.T) {
	a := ytVideo("dQw4w9WgXcQ", "franzj", 100)
	env := newTestEnv(t, newFakeFetcher(a), a.ID)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := env.svc.Collection(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.VideoID{a.ID}, ids(res.Collection.Videos))
}

func TestCollectionSingleRebuild(t *testing.T) {
	a := ytVideo("dQw4w9WgXcQ", "franzj", 100)
	fetch := newFakeFetcher(a)
	fetch.started = make(chan struct{})
	fetch.block = make(chan struct{})
	env := newTestEnv(t, fetch, a.ID)

	var wg sync.WaitGroup
	results := make([]collection.Result, 5)
	errs := make([]error, 5)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = env.svc.Collection(context.Background())
		}()
	}

	<-fetch.started
	time.Sleep(50 * time.Millisecond)
	close(fetch.block)
	wg.Wait()

	assert.Equal(t, 1, fetch.calls())
	for i := range results {
		require.NoError(t, errs[i])
		assert.Equal(t, []model.VideoID{a.ID}, ids(results[i].Collection.Videos))
	}
}

func TestMutationDuringRebuild(t *testing.T) {
	ctx := context.Background()
	a := ytVideo("dQw4w9WgXcQ", "franzj", 100)
	b := ytVideo("9bZkp7q19f0", "renyan", 100)
	fetch := newFakeFetcher(a, b)
	fetch.started = make(chan struct{})
	fetch.block = make(chan struct{})
	env := newTestEnv(t, fetch, a.ID)

	done := make(chan error, 1)
	go func() {
		res, err := env.svc.Collection(ctx)
		if err == nil && len(res.Collection.Videos) != 1 {
			err = fmt.Errorf("rebuild started before the add returned %d videos", len(res.Collection.Videos))
		}
		done <- err
	}()

	<-fetch.started
	n, err := env.svc.AddExternal(ctx, []model.VideoID{b.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	close(fetch.block)
	require.NoError(t, <-done)

	res, err := env.svc.Collection(ctx)
	require.NoError(t, err)
	assert.Equal(t, collection.StatusMiss, res.Status)
	assert.Equal(t, []model.VideoID{a.ID, b.ID}, ids(res.Collection.Videos))
}

func TestMutationsInvalidate(t *testing.T) {
	ctx := context.Background()
	a := ytVideo("dQw4w9WgXcQ", "franzj", 100)
	b := ytVideo("9bZkp7q19f0", "renyan", 100)
	env := newTestEnv(t, newFakeFetcher(a, b), a.ID)

	_, err := env.svc.Collection(ctx)
	require.NoError(t, err)

	n, err := env.svc.AddExternal(ctx, []model.VideoID{b.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	res, err := env.svc.Collection(ctx)
	require.NoError(t, err)
	assert.Equal(t, collection.StatusMiss, res.Status)
	assert.Equal(t, []model.VideoID{a.ID, b.ID}, ids(res.Collection.Videos))

	t.Run("duplicate add keeps cache", func(t *testing.T) {
		n, err := env.svc.AddExternal(ctx, []model.VideoID{b.ID})
		require.NoError(t, err)
		assert.Equal(t, 0, n)

		res, err := env.svc.Collection(ctx)
		require.NoError(t, err)
		assert.Equal(t, collection.StatusFresh, res.Status)
	})

	t.Run("remove", func(t *testing.T) {
		removed, err := env.svc.Remove(ctx, b.ID)
		require.NoError(t, err)
		assert.True(t, removed)

		removed, err = env.svc.Remove(ctx, b.ID)
		require.NoError(t, err)
		assert.False(t, removed)

		res, err := env.svc.Collection(ctx)
		require.NoError(t, err)
		assert.Equal(t, collection.StatusMiss, res.Status)
		assert.Equal(t, []model.VideoID{a.ID}, ids(res.Collection.Videos))
	})

	t.Run("upload and clear", func(t *testing.T) {
		row := model.PersistedRow{ID: model.UploadID("clip"), Title: "Clip", FileURL: "https://cdn.example.com/clip.mp4"}
		require.NoError(t, env.svc.AddUploaded(ctx, row))

		res, err := env.svc.Collection(ctx)
		require.NoError(t, err)
		assert.Equal(t, []model.VideoID{row.ID, a.ID}, ids(res.Collection.Videos))

		require.NoError(t, env.svc.Clear(ctx))
		res, err = env.svc.Collection(ctx)
		require.NoError(t, err)
		assert.Equal(t, collection.StatusMiss, res.Status)
		assert.Equal(t, []model.VideoID{a.ID}, ids(res.Collection.Videos))
	})
}

func TestChannelFeed(t *testing.T) {
	ctx := context.Background()
	short := ytVideo("dQw4w9WgXcQ", "zuhn", 120)
	long := ytVideo("9bZkp7q19f0", "zuhn", 900)
	fetch := newFakeFetcher(short, long)
	fetch.uploads["UCzuhn"] = []model.VideoID{short.ID, long.ID}
	env := newTestEnv(t, fetch)

	res, err := env.svc.ChannelFeed(ctx, "UCzuhn", 10, false)
	require.NoError(t, err)
	assert.Equal(t, collection.StatusMiss, res.Status)
	assert.Equal(t, []model.VideoID{short.ID, long.ID}, ids(res.Feed.Videos))
	assert.Equal(t, "Channel UCzuhn", res.Feed.Title)
	assert.Equal(t, "About UCzuhn", res.Feed.Description)
	require.NotNil(t, res.Featured)
	assert.Equal(t, long.ID, res.Featured.ID)

	res, err = env.svc.ChannelFeed(ctx, "UCzuhn", 10, true)
	require.NoError(t, err)
	assert.Equal(t, collection.StatusFresh, res.Status)
	assert.Equal(t, []model.VideoID{long.ID}, ids(res.Feed.Videos))
	assert.Equal(t, "Channel UCzuhn", res.Feed.Title)
	require.NotNil(t, res.Featured)
	assert.Equal(t, long.ID, res.Featured.ID)
	assert.Equal(t, 1, fetch.calls())

	t.Run("other limit has its own entry", func(t *testing.T) {
		res, err := env.svc.ChannelFeed(ctx, "UCzuhn", 1, false)
		require.NoError(t, err)
		assert.Equal(t, collection.StatusMiss, res.Status)
		assert.Equal(t, []model.VideoID{short.ID}, ids(res.Feed.Videos))
		require.NotNil(t, res.Featured)
		assert.Equal(t, short.ID, res.Featured.ID)
	})

	t.Run("stale feed keeps channel details", func(t *testing.T) {
		env.advance(ttl + time.Minute)
		fetch.setErr(&fetcher.UpstreamError{Call: "channels.list", Status: 500, Err: fmt.Errorf("backend")})
		t.Cleanup(func() { fetch.setErr(nil) })

		res, err := env.svc.ChannelFeed(ctx, "UCzuhn", 10, false)
		require.NoError(t, err)
		assert.Equal(t, collection.StatusStale, res.Status)
		assert.Equal(t, "Channel UCzuhn", res.Feed.Title)
		assert.Equal(t, []model.VideoID{short.ID, long.ID}, ids(res.Feed.Videos))
	})
}

func TestFeatured(t *testing.T) {
	short := ytVideo("dQw4w9WgXcQ", "zuhn", 120)
	edge := ytVideo("kJQP7kiw5Fk", "zuhn", collection.LongVideoSeconds)
	long := ytVideo("9bZkp7q19f0", "zuhn", 900)

	for _, tc := range []struct {
		name   string
		videos []model.Video
		exp    model.VideoID
	}{
		{name: "first long", videos: []model.Video{short, edge, long}, exp: long.ID},
		{name: "no long falls back to first", videos: []model.Video{edge, short}, exp: edge.ID},
		{name: "empty"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got := collection.Featured(tc.videos)
			if tc.exp == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tc.exp, got.ID)
		})
	}
}

func TestLookup(t *testing.T) {
	a := ytVideo("dQw4w9WgXcQ", "franzj", 100)
	env := newTestEnv(t, newFakeFetcher(a))

	videos, err := env.svc.Lookup(context.Background(), []model.VideoID{a.ID, "9bZkp7q19f0"})
	require.NoError(t, err)
	assert.Equal(t, []model.VideoID{a.ID}, ids(videos))

	videos, err = env.svc.Lookup(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, videos)
}
