package collection

import (
	"context"
	"time"

	"golang.org/x/exp/slog"
)

type Refresher interface {
	Collection(ctx context.Context) (Result, error)
}

// Warmer periodically requests the collection so an expired cache entry is
// rebuilt in the background instead of on a visitor's request.
type Warmer struct {
	svc      Refresher
	interval time.Duration
	logger   *slog.Logger
}

func NewWarmer(svc Refresher, interval time.Duration, logger *slog.Logger) *Warmer {
	return &Warmer{
		svc:      svc,
		interval: interval,
		logger:   logger,
	}
}

// Run warms once immediately and then on every tick until ctx is done.
func (w *Warmer) Run(ctx context.Context) {
	w.logger.Info("started cache warmer", slog.Duration("interval", w.interval))
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		w.warm(ctx)
		select {
		case <-ctx.Done():
			w.logger.Info("stopped cache warmer")
			return
		case <-ticker.C:
		}
	}
}

func (w *Warmer) warm(ctx context.Context) {
	res, err := w.svc.Collection(ctx)
	if err != nil {
		w.logger.Error("failed to warm collection", slog.Any("err", err))
		return
	}
	w.logger.Debug("warmed collection", slog.String("cache", string(res.Status)), slog.Int("count", len(res.Collection.Videos)))
}
