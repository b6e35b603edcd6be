package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"doza.gg/showcase/cache"
	"doza.gg/showcase/collection"
	"doza.gg/showcase/fetcher"
	"doza.gg/showcase/handler"
	"doza.gg/showcase/seed"
	"doza.gg/showcase/storage"
	"github.com/google/renameio/v2"
	"github.com/spf13/cobra"
	"golang.org/x/exp/slog"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

func main() {
	if err := rootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "showcase",
		Short:         "DOZA video showcase service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), serve)
		},
	}

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), serve)
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), migrate)
		},
	})

	var out string
	export := &cobra.Command{
		Use:   "export-seeds",
		Short: "Write the seed list export as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), func(_ context.Context, cfg Config, logger *slog.Logger) error {
				return exportSeeds(cfg, out, logger)
			})
		},
	}
	export.Flags().StringVar(&out, "out", "seeds-export.json", "file to write the export to")
	root.AddCommand(export)

	return root
}

func run(ctx context.Context, fn func(context.Context, Config, *slog.Logger) error) error {
	cfg, err := loadConfig()
	if err != nil {
		slog.New(slog.NewTextHandler(os.Stderr, nil)).Error("invalid configuration", slog.Any("err", err))
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))

	if err := fn(ctx, cfg, logger); err != nil {
		logger.Error("command failed", slog.Any("err", err))
		return err
	}

	return nil
}

func openDB(cfg Config) (*storage.DB, error) {
	if cfg.Driver == storage.DialectSQLite {
		return storage.NewSQLite(cfg.SQLitePath)
	}
	return storage.NewPostgres(cfg.Postgres)
}

func migrate(_ context.Context, cfg Config, logger *slog.Logger) error {
	db, err := openDB(cfg)
	if err != nil {
		return fmt.Errorf("unable to open database: %w", err)
	}
	defer db.Close()
	logger.Info("database migrated", slog.String("driver", string(cfg.Driver)))

	return nil
}

func exportSeeds(cfg Config, out string, logger *slog.Logger) error {
	list, err := seed.Load(cfg.SeedFile, cfg.SeedGroups)
	if err != nil {
		return err
	}
	body, err := json.MarshalIndent(list.Export(time.Now().UTC()), "", "  ")
	if err != nil {
		return err
	}
	if err := renameio.WriteFile(out, append(body, '\n'), 0o644); err != nil {
		return fmt.Errorf("unable to write %s: %w", out, err)
	}
	logger.Info("seed export written", slog.String("file", out), slog.Int("videos", len(list.IDs())))

	return nil
}

func serve(ctx context.Context, cfg Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	list, err := seed.Load(cfg.SeedFile, cfg.SeedGroups)
	if err != nil {
		return err
	}
	logger.Info("seed list loaded", slog.String("file", cfg.SeedFile), slog.Int("videos", len(list.IDs())))

	db, err := openDB(cfg)
	if err != nil {
		return fmt.Errorf("unable to open database: %w", err)
	}
	defer db.Close()

	ytClient, err := youtube.NewService(ctx, option.WithAPIKey(cfg.YoutubeAPIKey))
	if err != nil {
		return fmt.Errorf("unable to create youtube service: %w", err)
	}
	if cfg.YoutubeAPIKey == "" {
		logger.Warn("YOUTUBE_API_KEY is not set, metadata lookups will fail")
	}
	limiter := rate.NewLimiter(rate.Limit(cfg.YoutubeRPS), 1)
	yt := fetcher.NewYoutube(ytClient, limiter, logger)

	videoRepo := storage.NewSQLVideoRepository(db)
	videoCache := cache.New(storage.NewSQLCacheRepository(db), cfg.CacheTTL, logger)
	builder := collection.NewBuilder(list, videoRepo, yt, logger)
	svc := collection.NewService(builder, videoRepo, yt, yt, videoCache, cfg.RefreshTimeout, logger)
	if cfg.WarmInterval > 0 {
		go collection.NewWarmer(svc, cfg.WarmInterval, logger).Run(ctx)
	}

	srv := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.Port),
		Handler: handler.NewServer(svc, list, storage.NewSQLFeaturedRepository(db), db, handler.Config{
			AdminToken: cfg.AdminToken,
			RateLimit:  cfg.APIRateLimit,
		}, logger),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.RefreshTimeout + 15*time.Second,
		IdleTimeout:       time.Minute,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()
	logger.Info("http server started", slog.Int("port", cfg.Port))

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("unable to shut down http server: %w", err)
	}
	logger.Info("service stopped")

	return nil
}
