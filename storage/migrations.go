package storage

var pgMigration = []string{
	`CREATE TABLE more_videos (
video_id TEXT PRIMARY KEY,
source TEXT NOT NULL DEFAULT 'external',
added_at TIMESTAMPTZ NOT NULL,
file_url TEXT NOT NULL DEFAULT '',
title TEXT NOT NULL DEFAULT '',
channel_name TEXT NOT NULL DEFAULT '',
thumbnail_url TEXT NOT NULL DEFAULT '',
description TEXT NOT NULL DEFAULT '',
published_at TIMESTAMPTZ,
view_count TEXT NOT NULL DEFAULT '',
comment_count BIGINT NOT NULL DEFAULT 0,
duration_seconds BIGINT NOT NULL DEFAULT 0
)`,
	`CREATE TABLE video_cache (
cache_key TEXT PRIMARY KEY,
payload JSONB NOT NULL,
updated_at TIMESTAMPTZ NOT NULL
)`,
	`CREATE TABLE featured_thumbnail (
id TEXT PRIMARY KEY,
video_id TEXT NOT NULL DEFAULT '',
thumbnail_url TEXT NOT NULL,
updated_at TIMESTAMPTZ NOT NULL
)`,
}

var sqliteMigration = []string{
	`CREATE TABLE more_videos (
video_id TEXT PRIMARY KEY,
source TEXT NOT NULL DEFAULT 'external',
added_at TIMESTAMP NOT NULL,
file_url TEXT NOT NULL DEFAULT '',
title TEXT NOT NULL DEFAULT '',
channel_name TEXT NOT NULL DEFAULT '',
thumbnail_url TEXT NOT NULL DEFAULT '',
description TEXT NOT NULL DEFAULT '',
published_at TIMESTAMP,
view_count TEXT NOT NULL DEFAULT '',
comment_count INTEGER NOT NULL DEFAULT 0,
duration_seconds INTEGER NOT NULL DEFAULT 0
)`,
	`CREATE TABLE video_cache (
cache_key TEXT PRIMARY KEY,
payload TEXT NOT NULL,
updated_at TIMESTAMP NOT NULL
)`,
	`CREATE TABLE featured_thumbnail (
id TEXT PRIMARY KEY,
video_id TEXT NOT NULL DEFAULT '',
thumbnail_url TEXT NOT NULL,
updated_at TIMESTAMP NOT NULL
)`,
}
