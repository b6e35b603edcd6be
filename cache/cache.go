// Package cache stores built video lists and channel feeds as JSON in the
// relational cache table and decides whether a stored entry is still fresh.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"doza.gg/showcase/storage"
	"golang.org/x/exp/slog"
)

type Entry struct {
	UpdatedAt time.Time
	Fresh     bool
}

type Cache struct {
	store  storage.CacheRelRepository
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger
}

type Option func(*Cache)

func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

func New(store storage.CacheRelRepository, ttl time.Duration, logger *slog.Logger, opts ...Option) *Cache {
	c := &Cache{
		store:  store,
		ttl:    ttl,
		now:    time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Get decodes the payload stored under key into dst. It returns nil without
// error when nothing is stored, and treats an entry that cannot be decoded
// the same way.
func (c *Cache) Get(ctx context.Context, key string, dst any) (*Entry, error) {
	rec, err := c.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, nil
	}

	if err := json.Unmarshal(rec.Payload, dst); err != nil {
		c.logger.Warn("dropping undecodable cache entry", slog.String("key", key), slog.Any("err", err))
		return nil, nil
	}

	return &Entry{
		UpdatedAt: rec.UpdatedAt,
		Fresh:     c.now().Sub(rec.UpdatedAt) <= c.ttl,
	}, nil
}

func (c *Cache) Set(ctx context.Context, key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("could not encode cache entry %s: %w", key, err)
	}

	return c.store.Put(ctx, storage.CacheRecord{
		Key:       key,
		Payload:   payload,
		UpdatedAt: c.now(),
	})
}

func (c *Cache) Invalidate(ctx context.Context, key string) error {
	return c.store.Delete(ctx, key)
}
