package collection

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"doza.gg/showcase/cache"
	"doza.gg/showcase/fetcher"
	"doza.gg/showcase/metrics"
	"doza.gg/showcase/model"
	"doza.gg/showcase/storage"
	"golang.org/x/exp/slog"
	"golang.org/x/sync/singleflight"
)

const (
	CollectionKey = "collection"

	// LongVideoSeconds is the duration above which a channel video counts as
	// long form.
	LongVideoSeconds = 300

	DefaultRefreshTimeout = 30 * time.Second
)

type Status string

const (
	StatusFresh Status = "fresh"
	StatusStale Status = "stale"
	StatusMiss  Status = "miss"
)

type Result struct {
	Collection model.Collection
	Status     Status
}

type FeedResult struct {
	Feed model.ChannelFeed
	// Featured is the first long upload of the whole feed, or its first
	// upload when none is long. It is nil for an empty feed.
	Featured *model.Video
	Status   Status
}

type Service struct {
	builder        *Builder
	videos         storage.VideoRelRepository
	metadata       fetcher.MetadataFetcher
	channels       fetcher.ChannelReader
	cache          *cache.Cache
	group          singleflight.Group
	refreshTimeout time.Duration
	logger         *slog.Logger

	// mu guards generations and orders cache writes of a rebuild against
	// invalidations of the same key.
	mu          sync.Mutex
	generations map[string]uint64
}

func NewService(builder *Builder, videos storage.VideoRelRepository, metadata fetcher.MetadataFetcher, channels fetcher.ChannelReader, c *cache.Cache, refreshTimeout time.Duration, logger *slog.Logger) *Service {
	if refreshTimeout <= 0 {
		refreshTimeout = DefaultRefreshTimeout
	}
	return &Service{
		builder:        builder,
		videos:         videos,
		metadata:       metadata,
		channels:       channels,
		cache:          c,
		refreshTimeout: refreshTimeout,
		logger:         logger,
		generations:    map[string]uint64{},
	}
}

// Collection returns the aggregated collection, rebuilding it when the cached
// copy is missing or expired.
func (s *Service) Collection(ctx context.Context) (Result, error) {
	videos, status, err := cached(ctx, s, CollectionKey, func(ctx context.Context) ([]model.Video, error) {
		col, err := s.builder.Build(ctx)
		if err != nil {
			return nil, err
		}
		if col.Videos == nil {
			return []model.Video{}, nil
		}
		return col.Videos, nil
	})
	if err != nil {
		return Result{}, err
	}

	return Result{
		Collection: model.Collection{
			Videos:   videos,
			Channels: Summarize(videos),
		},
		Status: status,
	}, nil
}

func ChannelKey(channelID model.ChannelID, limit int) string {
	return fmt.Sprintf("channel:%s:%d", channelID, limit)
}

// ChannelFeed returns the latest uploads of a channel. The long-only filter
// runs on the cached feed so both variants share one entry.
func (s *Service) ChannelFeed(ctx context.Context, channelID model.ChannelID, limit int, longOnly bool) (FeedResult, error) {
	limit = min(max(limit, 1), fetcher.MaxBatchSize)
	feed, status, err := cached(ctx, s, ChannelKey(channelID, limit), func(ctx context.Context) (model.ChannelFeed, error) {
		feed, err := s.channels.ChannelFeed(ctx, channelID, limit)
		if err != nil {
			return model.ChannelFeed{}, err
		}
		if feed.Videos == nil {
			feed.Videos = []model.Video{}
		}
		return feed, nil
	})
	if err != nil {
		return FeedResult{}, err
	}

	res := FeedResult{
		Featured: Featured(feed.Videos),
		Status:   status,
	}
	if longOnly {
		long := make([]model.Video, 0, len(feed.Videos))
		for _, v := range feed.Videos {
			if v.DurationSeconds > LongVideoSeconds {
				long = append(long, v)
			}
		}
		feed.Videos = long
	}
	res.Feed = feed

	return res, nil
}

// Featured picks the video to headline a feed with.
func Featured(videos []model.Video) *model.Video {
	for i := range videos {
		if videos[i].DurationSeconds > LongVideoSeconds {
			v := videos[i]
			return &v
		}
	}
	if len(videos) == 0 {
		return nil
	}
	v := videos[0]
	return &v
}

// Lookup passes ids straight to YouTube, bypassing the cache.
func (s *Service) Lookup(ctx context.Context, ids []model.VideoID) ([]model.Video, error) {
	if len(ids) == 0 {
		return []model.Video{}, nil
	}
	return s.metadata.FetchMetadata(ctx, ids)
}

func (s *Service) AddExternal(ctx context.Context, ids []model.VideoID) (int, error) {
	n, err := s.videos.AddExternalIDs(ctx, ids)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.invalidate(ctx)
	}

	return n, nil
}

func (s *Service) AddUploaded(ctx context.Context, row model.PersistedRow) error {
	if err := s.videos.AddUploaded(ctx, row); err != nil {
		return err
	}
	s.invalidate(ctx)

	return nil
}

func (s *Service) Remove(ctx context.Context, id model.VideoID) (bool, error) {
	removed, err := s.videos.Remove(ctx, id)
	if err != nil {
		return false, err
	}
	if removed {
		s.invalidate(ctx)
	}

	return removed, nil
}

func (s *Service) Clear(ctx context.Context) error {
	if err := s.videos.Clear(ctx); err != nil {
		return err
	}
	s.invalidate(ctx)

	return nil
}

// invalidate drops the collection entry. A rebuild that is still running sees
// the new generation and does not store its result, and later callers start
// a new rebuild instead of joining it.
func (s *Service) invalidate(ctx context.Context) {
	s.mu.Lock()
	s.generations[CollectionKey]++
	s.mu.Unlock()
	s.group.Forget(CollectionKey)

	if err := s.cache.Invalidate(ctx, CollectionKey); err != nil {
		s.logger.Error("could not invalidate cache", slog.String("key", CollectionKey), slog.Any("err", err))
	}
}

// store writes value under key unless key was invalidated after gen was read.
func (s *Service) store(ctx context.Context, key string, gen uint64, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generations[key] != gen {
		s.logger.Debug("discarding rebuild of invalidated entry", slog.String("key", key))
		return
	}
	if err := s.cache.Set(ctx, key, value); err != nil {
		s.logger.Error("could not store cache entry", slog.String("key", key), slog.Any("err", err))
	}
}

// cached serves key from the cache while it is fresh. Otherwise one caller
// rebuilds it, and concurrent callers for the same key share that result.
// When the rebuild fails a stale entry is served instead of the error.
func cached[T any](ctx context.Context, s *Service, key string, build func(context.Context) (T, error)) (T, Status, error) {
	var stored T
	entry, err := s.cache.Get(ctx, key, &stored)
	if err != nil {
		s.logger.Warn("could not read cache", slog.String("key", key), slog.Any("err", err))
		entry = nil
	}
	if entry != nil && entry.Fresh {
		metrics.RecordCacheLookup(string(StatusFresh))
		return stored, StatusFresh, nil
	}

	res, err, _ := s.group.Do(key, func() (any, error) {
		buildCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.refreshTimeout)
		defer cancel()

		s.mu.Lock()
		gen := s.generations[key]
		s.mu.Unlock()

		value, err := build(buildCtx)
		if err != nil {
			return nil, err
		}
		s.store(buildCtx, key, gen, value)
		return value, nil
	})
	if err == nil {
		metrics.RecordCacheLookup(string(StatusMiss))
		return res.(T), StatusMiss, nil
	}

	if entry != nil {
		metrics.RecordCacheLookup(string(StatusStale))
		metrics.RecordStaleFallback()
		s.logger.Warn("serving stale cache entry",
			slog.String("key", key),
			slog.Time("updated", entry.UpdatedAt),
			slog.Bool("rateLimited", errors.Is(err, fetcher.ErrRateLimited)),
			slog.Any("err", err),
		)
		return stored, StatusStale, nil
	}

	var zero T
	return zero, StatusMiss, err
}
