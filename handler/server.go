package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"doza.gg/showcase/collection"
	"doza.gg/showcase/model"
	"doza.gg/showcase/seed"
	"doza.gg/showcase/storage"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/exp/slog"
)

type VideoService interface {
	Collection(ctx context.Context) (collection.Result, error)
	ChannelFeed(ctx context.Context, channelID model.ChannelID, limit int, longOnly bool) (collection.FeedResult, error)
	Lookup(ctx context.Context, ids []model.VideoID) ([]model.Video, error)
	AddExternal(ctx context.Context, ids []model.VideoID) (int, error)
	AddUploaded(ctx context.Context, row model.PersistedRow) error
	Remove(ctx context.Context, id model.VideoID) (bool, error)
	Clear(ctx context.Context) error
}

type SeedExporter interface {
	Export(now time.Time) seed.Export
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type Config struct {
	AdminToken string
	// RateLimit is the number of requests per minute allowed per client IP.
	// Zero disables the limit.
	RateLimit int
}

type Server struct {
	router chi.Router
	db     Pinger
	logger *slog.Logger
}

func NewServer(svc VideoService, seeds SeedExporter, featured storage.FeaturedRelRepository, db Pinger, cfg Config, logger *slog.Logger) *Server {
	s := &Server{
		router: chi.NewRouter(),
		db:     db,
		logger: logger,
	}
	videos := NewVideoAPI(svc, seeds, logger)
	channels := NewChannelAPI(svc, logger)
	thumbs := NewFeaturedAPI(featured, logger)
	admin := requireAdmin(cfg.AdminToken)

	r := s.router
	r.Use(requestID)
	r.Use(logRequests(logger))
	r.Use(middleware.Recoverer)
	r.Use(jsonContent)
	if cfg.RateLimit > 0 {
		r.Use(httprate.Limit(cfg.RateLimit, time.Minute,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
				Error(w, http.StatusTooManyRequests, "too many requests", errors.New("api rate limit exceeded"))
			}),
		))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		Error(w, http.StatusNotFound, "Not found", fmt.Errorf("%s is not a valid path", r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		Error(w, http.StatusMethodNotAllowed, "method not allowed", fmt.Errorf("method %s is not registered for %s", r.Method, r.URL.Path))
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) { Index(w) })
	r.Get("/healthz", s.health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/videos", func(r chi.Router) {
		r.Get("/", videos.List)
		r.Get("/export", videos.Export)
		r.Group(func(r chi.Router) {
			r.Use(admin)
			r.Post("/", videos.Add)
			r.Delete("/", videos.Remove)
			r.Patch("/", videos.Clear)
		})
	})
	r.Get("/channels/{channelID}/videos", channels.Feed)
	r.Route("/featured-thumbnail", func(r chi.Router) {
		r.Get("/", thumbs.Get)
		r.Group(func(r chi.Router) {
			r.Use(admin)
			r.Post("/", thumbs.Set)
			r.Delete("/", thumbs.Clear)
		})
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(r.Context()); err != nil {
		s.logger.Error("health check failed", slog.Any("err", err))
		Error(w, http.StatusServiceUnavailable, "database unavailable", err)
		return
	}
	Message(w, http.StatusOK, "ok")
}
