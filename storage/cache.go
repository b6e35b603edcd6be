package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type SQLCacheRepository struct {
	db *DB
}

func NewSQLCacheRepository(db *DB) *SQLCacheRepository {
	return &SQLCacheRepository{db: db}
}

// Get returns nil without error when the key is not stored.
func (r *SQLCacheRepository) Get(ctx context.Context, key string) (*CacheRecord, error) {
	var (
		payload   string
		updatedAt time.Time
	)
	err := r.db.queryRow(ctx, `SELECT payload, updated_at FROM video_cache WHERE cache_key = ?`, key).
		Scan(&payload, &updatedAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("could not read cache entry %s: %w", key, err)
	}

	return &CacheRecord{
		Key:       key,
		Payload:   []byte(payload),
		UpdatedAt: updatedAt,
	}, nil
}

func (r *SQLCacheRepository) Put(ctx context.Context, rec CacheRecord) error {
	query := `INSERT INTO video_cache (cache_key, payload, updated_at)
VALUES (?, ?, ?)
ON CONFLICT (cache_key) DO UPDATE SET
payload = EXCLUDED.payload,
updated_at = EXCLUDED.updated_at`
	if _, err := r.db.exec(ctx, query, rec.Key, string(rec.Payload), rec.UpdatedAt.UTC()); err != nil {
		return fmt.Errorf("could not write cache entry %s: %w", rec.Key, err)
	}

	return nil
}

func (r *SQLCacheRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.exec(ctx, `DELETE FROM video_cache WHERE cache_key = ?`, key); err != nil {
		return fmt.Errorf("could not delete cache entry %s: %w", key, err)
	}

	return nil
}
