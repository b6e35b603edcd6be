package fetcher

import (
	"context"
	"errors"
	"strings"
	"time"

	"doza.gg/showcase/metrics"
	"doza.gg/showcase/model"
	"golang.org/x/exp/slog"
	"golang.org/x/time/rate"
	"google.golang.org/api/youtube/v3"
)

const (
	MaxBatchSize = 50

	callVideos        = "videos.list"
	callChannels      = "channels.list"
	callPlaylistItems = "playlistItems.list"
)

type Youtube struct {
	Client  *youtube.Service
	limiter *rate.Limiter
	logger  *slog.Logger
}

func NewYoutube(client *youtube.Service, limiter *rate.Limiter, logger *slog.Logger) *Youtube {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	return &Youtube{
		Client:  client,
		limiter: limiter,
		logger:  logger,
	}
}

// FetchMetadata looks up ids in batches of MaxBatchSize. Ids unknown to
// YouTube are left out of the result.
func (y *Youtube) FetchMetadata(ctx context.Context, ids []model.VideoID) ([]model.Video, error) {
	seen := make(map[model.VideoID]bool, len(ids))
	strIDs := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		strIDs = append(strIDs, string(id))
	}

	videos := make([]model.Video, 0, len(strIDs))
	for start := 0; start < len(strIDs); start += MaxBatchSize {
		end := min(start+MaxBatchSize, len(strIDs))
		batch, err := y.fetchBatch(ctx, strIDs[start:end])
		if err != nil {
			return nil, err
		}
		videos = append(videos, batch...)
	}

	return videos, nil
}

func (y *Youtube) fetchBatch(ctx context.Context, ids []string) ([]model.Video, error) {
	if err := y.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	response, err := y.Client.Videos.
		List([]string{"snippet", "contentDetails", "statistics"}).
		Id(strings.Join(ids, ",")).
		Context(ctx).
		Do()
	if err != nil {
		return nil, y.fail(callVideos, err)
	}
	metrics.RecordUpstream(callVideos, metrics.OutcomeOK)

	videos := make([]model.Video, 0, len(response.Items))
	for _, item := range response.Items {
		if item.Snippet == nil {
			continue
		}
		videos = append(videos, toVideo(item))
	}
	if len(videos) < len(ids) {
		y.logger.Debug("videos missing from metadata response", slog.Int("requested", len(ids)), slog.Int("found", len(videos)))
	}

	return videos, nil
}

// ChannelFeed returns the channel snippet and its most recent uploads, newest
// first.
func (y *Youtube) ChannelFeed(ctx context.Context, channelID model.ChannelID, limit int) (model.ChannelFeed, error) {
	limit = min(max(limit, 1), MaxBatchSize)

	if err := y.limiter.Wait(ctx); err != nil {
		return model.ChannelFeed{}, err
	}
	channels, err := y.Client.Channels.
		List([]string{"snippet", "contentDetails"}).
		Id(string(channelID)).
		Context(ctx).
		Do()
	if err != nil {
		return model.ChannelFeed{}, y.fail(callChannels, err)
	}
	metrics.RecordUpstream(callChannels, metrics.OutcomeOK)

	if len(channels.Items) == 0 {
		return model.ChannelFeed{}, ErrChannelNotFound
	}
	channel := channels.Items[0]
	details := channel.ContentDetails
	if details == nil || details.RelatedPlaylists == nil || details.RelatedPlaylists.Uploads == "" {
		return model.ChannelFeed{}, ErrChannelNotFound
	}
	feed := model.ChannelFeed{
		ChannelID: channelID,
		Videos:    []model.Video{},
	}
	if channel.Snippet != nil {
		feed.Title = channel.Snippet.Title
		feed.Description = channel.Snippet.Description
	}

	if err := y.limiter.Wait(ctx); err != nil {
		return model.ChannelFeed{}, err
	}
	items, err := y.Client.PlaylistItems.
		List([]string{"contentDetails"}).
		PlaylistId(details.RelatedPlaylists.Uploads).
		MaxResults(int64(limit)).
		Context(ctx).
		Do()
	if err != nil {
		return model.ChannelFeed{}, y.fail(callPlaylistItems, err)
	}
	metrics.RecordUpstream(callPlaylistItems, metrics.OutcomeOK)

	ids := make([]model.VideoID, 0, len(items.Items))
	for _, item := range items.Items {
		if item.ContentDetails == nil || item.ContentDetails.VideoId == "" {
			continue
		}
		ids = append(ids, model.VideoID(item.ContentDetails.VideoId))
	}
	if len(ids) == 0 {
		return feed, nil
	}

	if feed.Videos, err = y.FetchMetadata(ctx, ids); err != nil {
		return model.ChannelFeed{}, err
	}

	return feed, nil
}

func (y *Youtube) fail(call string, err error) error {
	ue := upstreamError(call, err)

	outcome := metrics.OutcomeError
	if errors.Is(ue, ErrRateLimited) {
		outcome = metrics.OutcomeRateLimited
	}
	metrics.RecordUpstream(call, outcome)
	y.logger.Warn("youtube request failed", slog.String("call", call), slog.Int("status", ue.Status), slog.Any("err", err))

	return ue
}

func toVideo(item *youtube.Video) model.Video {
	v := model.Video{
		ID:           model.VideoID(item.Id),
		Title:        item.Snippet.Title,
		Description:  item.Snippet.Description,
		ChannelName:  item.Snippet.ChannelTitle,
		ChannelID:    model.ChannelID(item.Snippet.ChannelId),
		ThumbnailURL: thumbnail(item.Snippet.Thumbnails),
		ViewCount:    "0",
		Duration:     model.FormatDuration(0),
		Source:       model.SourceExternal,
	}
	if published, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt); err == nil {
		v.PublishedAt = published
	}
	if item.ContentDetails != nil {
		v.DurationSeconds = model.ParseISODuration(item.ContentDetails.Duration)
		v.Duration = model.FormatDuration(v.DurationSeconds)
	}
	if stats := item.Statistics; stats != nil {
		v.ViewCount = model.HumanizeCount(stats.ViewCount)
		v.LikeCount = int64(stats.LikeCount)
		v.CommentCount = int64(stats.CommentCount)
		v.StarRating = model.StarRating(stats.LikeCount, stats.ViewCount)
	}

	return v
}

func thumbnail(td *youtube.ThumbnailDetails) string {
	if td == nil {
		return ""
	}
	for _, t := range []*youtube.Thumbnail{td.Maxres, td.High, td.Medium, td.Default} {
		if t != nil && t.Url != "" {
			return t.Url
		}
	}

	return ""
}
