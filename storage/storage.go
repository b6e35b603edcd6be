package storage

import (
	"context"
	"time"

	"doza.gg/showcase/model"
)

type VideoRelRepository interface {
	ListRows(ctx context.Context) ([]model.PersistedRow, error)
	AddExternalIDs(ctx context.Context, ids []model.VideoID) (int, error)
	AddUploaded(ctx context.Context, row model.PersistedRow) error
	Remove(ctx context.Context, id model.VideoID) (bool, error)
	Clear(ctx context.Context) error
}

type CacheRecord struct {
	Key       string
	Payload   []byte
	UpdatedAt time.Time
}

type CacheRelRepository interface {
	Get(ctx context.Context, key string) (*CacheRecord, error)
	Put(ctx context.Context, rec CacheRecord) error
	Delete(ctx context.Context, key string) error
}

type FeaturedRelRepository interface {
	Get(ctx context.Context) (*model.FeaturedThumbnail, error)
	Set(ctx context.Context, ft model.FeaturedThumbnail) error
	Clear(ctx context.Context) (bool, error)
}
