package main

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

func TestExportSeeds(t *testing.T) {
	dir := t.TempDir()
	seedFile := filepath.Join(dir, "seeds.yaml")
	require.NoError(t, os.WriteFile(seedFile, []byte(`
franzj:
  - https://youtu.be/dQw4w9WgXcQ
zuhn:
  - https://www.youtube.com/shorts/kJQP7kiw5Fk
  - nothing here
`), 0o644))
	out := filepath.Join(dir, "export.json")

	cfg := Config{SeedFile: seedFile, SeedGroups: []string{"zuhn"}}
	require.NoError(t, exportSeeds(cfg, out, slog.New(slog.NewTextHandler(io.Discard, nil))))

	body, err := os.ReadFile(out)
	require.NoError(t, err)
	var export struct {
		VideosByChannel map[string][]struct {
			ID  string `json:"id"`
			URL string `json:"url"`
		} `json:"videosByChannel"`
		TotalVideos int      `json:"totalVideos"`
		Skipped     []string `json:"skipped"`
	}
	require.NoError(t, json.Unmarshal(body, &export))
	assert.Equal(t, 1, export.TotalVideos)
	assert.Equal(t, []string{"nothing here"}, export.Skipped)
	require.Len(t, export.VideosByChannel["zuhn"], 1)
	assert.Equal(t, "kJQP7kiw5Fk", export.VideosByChannel["zuhn"][0].ID)
	assert.NotContains(t, export.VideosByChannel, "franzj")
}

func TestMigrateSQLite(t *testing.T) {
	cfg := Config{Driver: "sqlite", SQLitePath: filepath.Join(t.TempDir(), "showcase.db")}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	require.NoError(t, migrate(t.Context(), cfg, logger))
	require.NoError(t, migrate(t.Context(), cfg, logger))
}
