package fetcher

import (
	"context"

	"doza.gg/showcase/model"
)

type MetadataFetcher interface {
	FetchMetadata(ctx context.Context, ids []model.VideoID) ([]model.Video, error)
}

type ChannelReader interface {
	ChannelFeed(ctx context.Context, channelID model.ChannelID, limit int) (model.ChannelFeed, error)
}
