package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"doza.gg/showcase/storage"
	"golang.org/x/exp/slog"
)

type Config struct {
	Port           int
	Driver         storage.Dialect
	Postgres       storage.PostgresInfo
	SQLitePath     string
	YoutubeAPIKey  string
	YoutubeRPS     float64
	SeedFile       string
	SeedGroups     []string
	CacheTTL       time.Duration
	RefreshTimeout time.Duration
	WarmInterval   time.Duration
	AdminToken     string
	APIRateLimit   int
	LogLevel       slog.Level
}

func loadConfig() (Config, error) {
	cfg := Config{
		Driver: storage.Dialect(getParam("DATABASE_DRIVER", string(storage.DialectPostgres))),
		Postgres: storage.PostgresInfo{
			Host:     getParam("POSTGRES_HOST", "localhost"),
			Port:     getParam("POSTGRES_PORT", "5432"),
			User:     getParam("POSTGRES_USER", "showcase"),
			Password: getParam("POSTGRES_PASSWORD", "showcase"),
			Database: getParam("POSTGRES_DB", "showcase"),
			SSLMode:  getParam("POSTGRES_SSLMODE", "disable"),
		},
		SQLitePath:    getParam("SQLITE_PATH", "showcase.db"),
		YoutubeAPIKey: getParam("YOUTUBE_API_KEY", ""),
		SeedFile:      getParam("SEED_FILE", "data/seeds.yaml"),
		AdminToken:    getParam("ADMIN_TOKEN", ""),
	}

	var err error
	if cfg.Port, err = strconv.Atoi(getParam("API_PORT", "8080")); err != nil {
		return Config{}, fmt.Errorf("invalid API_PORT: %w", err)
	}
	if cfg.YoutubeRPS, err = strconv.ParseFloat(getParam("YOUTUBE_RPS", "5"), 64); err != nil {
		return Config{}, fmt.Errorf("invalid YOUTUBE_RPS: %w", err)
	}
	if cfg.CacheTTL, err = time.ParseDuration(getParam("CACHE_TTL", "10m")); err != nil {
		return Config{}, fmt.Errorf("invalid CACHE_TTL: %w", err)
	}
	if cfg.RefreshTimeout, err = time.ParseDuration(getParam("REFRESH_TIMEOUT", "30s")); err != nil {
		return Config{}, fmt.Errorf("invalid REFRESH_TIMEOUT: %w", err)
	}
	if cfg.WarmInterval, err = time.ParseDuration(getParam("WARM_INTERVAL", "0s")); err != nil {
		return Config{}, fmt.Errorf("invalid WARM_INTERVAL: %w", err)
	}
	if cfg.APIRateLimit, err = strconv.Atoi(getParam("API_RATE_LIMIT", "600")); err != nil {
		return Config{}, fmt.Errorf("invalid API_RATE_LIMIT: %w", err)
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(getParam("LOG_LEVEL", "info"))); err != nil {
		return Config{}, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	for _, g := range strings.Split(getParam("SEED_GROUPS", ""), ",") {
		if g = strings.TrimSpace(g); g != "" {
			cfg.SeedGroups = append(cfg.SeedGroups, g)
		}
	}

	switch cfg.Driver {
	case storage.DialectPostgres, storage.DialectSQLite:
	default:
		return Config{}, fmt.Errorf("invalid DATABASE_DRIVER %q", cfg.Driver)
	}

	return cfg, nil
}

func getParam(param, def string) string {
	if val, ok := os.LookupEnv(param); ok {
		return val
	}
	return def
}
