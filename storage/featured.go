package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"doza.gg/showcase/model"
)

const featuredRowID = "featured"

type SQLFeaturedRepository struct {
	db  *DB
	now func() time.Time
}

func NewSQLFeaturedRepository(db *DB) *SQLFeaturedRepository {
	return &SQLFeaturedRepository{
		db:  db,
		now: time.Now,
	}
}

func (r *SQLFeaturedRepository) Get(ctx context.Context) (*model.FeaturedThumbnail, error) {
	var (
		ft      model.FeaturedThumbnail
		videoID string
	)
	err := r.db.queryRow(ctx, `SELECT video_id, thumbnail_url, updated_at
FROM featured_thumbnail WHERE id = ?`, featuredRowID).
		Scan(&videoID, &ft.ThumbnailURL, &ft.UpdatedAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("could not read featured thumbnail: %w", err)
	}
	ft.VideoID = model.VideoID(videoID)

	return &ft, nil
}

func (r *SQLFeaturedRepository) Set(ctx context.Context, ft model.FeaturedThumbnail) error {
	updatedAt := ft.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = r.now()
	}

	query := `INSERT INTO featured_thumbnail (id, video_id, thumbnail_url, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
video_id = EXCLUDED.video_id,
thumbnail_url = EXCLUDED.thumbnail_url,
updated_at = EXCLUDED.updated_at`
	if _, err := r.db.exec(ctx, query, featuredRowID, string(ft.VideoID), ft.ThumbnailURL, updatedAt.UTC()); err != nil {
		return fmt.Errorf("could not store featured thumbnail: %w", err)
	}

	return nil
}

func (r *SQLFeaturedRepository) Clear(ctx context.Context) (bool, error) {
	res, err := r.db.exec(ctx, `DELETE FROM featured_thumbnail WHERE id = ?`, featuredRowID)
	if err != nil {
		return false, fmt.Errorf("could not clear featured thumbnail: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("could not count cleared thumbnails: %w", err)
	}

	return n > 0, nil
}
