package storage

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"
	"time"

	"doza.gg/showcase/model"
)

type SQLVideoRepository struct {
	db  *DB
	now func() time.Time
}

func NewSQLVideoRepository(db *DB) *SQLVideoRepository {
	return &SQLVideoRepository{
		db:  db,
		now: time.Now,
	}
}

func (r *SQLVideoRepository) ListRows(ctx context.Context) ([]model.PersistedRow, error) {
	query := `SELECT video_id, source, added_at, file_url, title, channel_name,
thumbnail_url, description, published_at, view_count, comment_count, duration_seconds
FROM more_videos
ORDER BY added_at DESC, video_id`
	rows, err := r.db.query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("could not list videos: %w", err)
	}
	defer rows.Close()

	res := []model.PersistedRow{}
	for rows.Next() {
		var (
			row         model.PersistedRow
			id, source  string
			publishedAt sql.NullTime
		)
		if err := rows.Scan(&id, &source, &row.AddedAt, &row.FileURL, &row.Title,
			&row.ChannelName, &row.ThumbnailURL, &row.Description, &publishedAt,
			&row.ViewCount, &row.CommentCount, &row.DurationSeconds); err != nil {
			return nil, fmt.Errorf("could not scan video row: %w", err)
		}
		row.ID = model.VideoID(id)
		row.Source = model.Source(source)
		if publishedAt.Valid {
			row.PublishedAt = publishedAt.Time
		}
		res = append(res, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("could not list videos: %w", err)
	}

	return res, nil
}

// insertChunkSize bounds the ids per INSERT so a statement stays well below
// the bind parameter limits of sqlite and postgres.
const insertChunkSize = 500

// AddExternalIDs inserts ids in one transaction, at most insertChunkSize per
// statement. Ids already present are skipped, the returned count only
// includes new rows.
func (r *SQLVideoRepository) AddExternalIDs(ctx context.Context, ids []model.VideoID) (int, error) {
	seen := make(map[model.VideoID]bool, len(ids))
	unique := make([]model.VideoID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}
	if len(unique) == 0 {
		return 0, nil
	}

	tx, err := r.db.begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("could not add videos: %w", err)
	}
	defer tx.Rollback()

	addedAt := r.now().UTC()
	inserted := 0
	for chunk := range slices.Chunk(unique, insertChunkSize) {
		values := make([]string, 0, len(chunk))
		args := make([]any, 0, len(chunk)*3)
		for _, id := range chunk {
			values = append(values, "(?, ?, ?)")
			args = append(args, string(id), string(model.SourceExternal), addedAt)
		}
		query := `INSERT INTO more_videos (video_id, source, added_at)
VALUES ` + strings.Join(values, ", ") + `
ON CONFLICT (video_id) DO NOTHING`
		res, err := tx.ExecContext(ctx, r.db.rebind(query), args...)
		if err != nil {
			return 0, fmt.Errorf("could not add videos: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("could not count added videos: %w", err)
		}
		inserted += int(n)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("could not add videos: %w", err)
	}

	return inserted, nil
}

// AddUploaded stores an uploaded video, overwriting every field when the id
// already exists. added_at keeps the value of the first insert.
func (r *SQLVideoRepository) AddUploaded(ctx context.Context, row model.PersistedRow) error {
	addedAt := row.AddedAt
	if addedAt.IsZero() {
		addedAt = r.now()
	}
	var publishedAt sql.NullTime
	if !row.PublishedAt.IsZero() {
		publishedAt = sql.NullTime{Time: row.PublishedAt.UTC(), Valid: true}
	}

	query := `INSERT INTO more_videos
(video_id, source, added_at, file_url, title, channel_name, thumbnail_url,
description, published_at, view_count, comment_count, duration_seconds)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (video_id) DO UPDATE SET
source = EXCLUDED.source,
file_url = EXCLUDED.file_url,
title = EXCLUDED.title,
channel_name = EXCLUDED.channel_name,
thumbnail_url = EXCLUDED.thumbnail_url,
description = EXCLUDED.description,
published_at = EXCLUDED.published_at,
view_count = EXCLUDED.view_count,
comment_count = EXCLUDED.comment_count,
duration_seconds = EXCLUDED.duration_seconds`
	if _, err := r.db.exec(ctx, query,
		string(row.ID), string(model.SourceUploaded), addedAt.UTC(), row.FileURL,
		row.Title, row.ChannelName, row.ThumbnailURL, row.Description, publishedAt,
		row.ViewCount, row.CommentCount, row.DurationSeconds,
	); err != nil {
		return fmt.Errorf("could not store uploaded video: %w", err)
	}

	return nil
}

func (r *SQLVideoRepository) Remove(ctx context.Context, id model.VideoID) (bool, error) {
	res, err := r.db.exec(ctx, `DELETE FROM more_videos WHERE video_id = ?`, string(id))
	if err != nil {
		return false, fmt.Errorf("could not remove video: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("could not count removed videos: %w", err)
	}

	return n > 0, nil
}

func (r *SQLVideoRepository) Clear(ctx context.Context) error {
	if _, err := r.db.exec(ctx, `DELETE FROM more_videos`); err != nil {
		return fmt.Errorf("could not clear videos: %w", err)
	}

	return nil
}
