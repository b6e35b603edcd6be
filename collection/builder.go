// Package collection merges the seed list, the persisted additions and
// YouTube metadata into the showcase video collection.
package collection

import (
	"context"
	"fmt"

	"doza.gg/showcase/fetcher"
	"doza.gg/showcase/model"
	"golang.org/x/exp/slog"
)

type SeedSource interface {
	IDs() []model.VideoID
}

type RowSource interface {
	ListRows(ctx context.Context) ([]model.PersistedRow, error)
}

type Builder struct {
	seeds    SeedSource
	rows     RowSource
	metadata fetcher.MetadataFetcher
	logger   *slog.Logger
}

func NewBuilder(seeds SeedSource, rows RowSource, metadata fetcher.MetadataFetcher, logger *slog.Logger) *Builder {
	return &Builder{
		seeds:    seeds,
		rows:     rows,
		metadata: metadata,
		logger:   logger,
	}
}

// Build returns uploaded videos first, then every external video YouTube
// knows about, in seed order followed by persisted order.
func (b *Builder) Build(ctx context.Context) (model.Collection, error) {
	rows, err := b.rows.ListRows(ctx)
	if err != nil {
		return model.Collection{}, fmt.Errorf("could not read persisted videos: %w", err)
	}

	seen := map[model.VideoID]bool{}
	external := []model.VideoID{}
	for _, id := range b.seeds.IDs() {
		if !seen[id] {
			seen[id] = true
			external = append(external, id)
		}
	}
	uploaded := []model.Video{}
	for _, row := range rows {
		if row.Source == model.SourceUploaded {
			uploaded = append(uploaded, row.Video())
			continue
		}
		if !seen[row.ID] {
			seen[row.ID] = true
			external = append(external, row.ID)
		}
	}

	fetched := []model.Video{}
	if len(external) > 0 {
		fetched, err = b.metadata.FetchMetadata(ctx, external)
		if err != nil {
			return model.Collection{}, fmt.Errorf("could not fetch metadata: %w", err)
		}
	}
	b.logger.Debug("collection built",
		slog.Int("uploaded", len(uploaded)),
		slog.Int("requested", len(external)),
		slog.Int("fetched", len(fetched)),
	)

	videos := make([]model.Video, 0, len(uploaded)+len(fetched))
	videos = append(videos, uploaded...)
	videos = append(videos, fetched...)

	return model.Collection{
		Videos:   videos,
		Channels: Summarize(videos),
	}, nil
}
