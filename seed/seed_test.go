package seed_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"doza.gg/showcase/model"
	"doza.gg/showcase/seed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlSeeds = `
franzj:
  - https://www.youtube.com/watch?v=dQw4w9WgXcQ
  - https://youtu.be/9bZkp7q19f0
zuhn:
  - https://www.youtube.com/shorts/kJQP7kiw5Fk
  - https://youtu.be/dQw4w9WgXcQ
other:
  - not a video
`

func TestParse(t *testing.T) {
	t.Run("yaml in document order", func(t *testing.T) {
		l, err := seed.Parse([]byte(yamlSeeds), nil)
		require.NoError(t, err)
		assert.Equal(t, []model.VideoID{"dQw4w9WgXcQ", "9bZkp7q19f0", "kJQP7kiw5Fk"}, l.IDs())
		require.Len(t, l.Groups(), 3)
		assert.Equal(t, "franzj", l.Groups()[0].Name)
	})

	t.Run("json", func(t *testing.T) {
		l, err := seed.Parse([]byte(`{"renyan": ["https://youtu.be/kJQP7kiw5Fk"], "Grim": ["dQw4w9WgXcQ"]}`), nil)
		require.NoError(t, err)
		assert.Equal(t, []model.VideoID{"kJQP7kiw5Fk", "dQw4w9WgXcQ"}, l.IDs())
	})

	t.Run("selected groups", func(t *testing.T) {
		l, err := seed.Parse([]byte(yamlSeeds), []string{"zuhn", "missing"})
		require.NoError(t, err)
		assert.Equal(t, []model.VideoID{"kJQP7kiw5Fk", "dQw4w9WgXcQ"}, l.IDs())
		assert.Len(t, l.Groups(), 1)
	})

	t.Run("repeated selected group", func(t *testing.T) {
		l, err := seed.Parse([]byte(yamlSeeds), []string{"zuhn", "franzj", "zuhn"})
		require.NoError(t, err)
		require.Len(t, l.Groups(), 2)
		assert.Equal(t, "zuhn", l.Groups()[0].Name)
		assert.Equal(t, "franzj", l.Groups()[1].Name)
		assert.Equal(t, 4, l.Export(time.Now()).TotalVideos)
	})

	t.Run("empty document", func(t *testing.T) {
		l, err := seed.Parse([]byte(""), nil)
		require.NoError(t, err)
		assert.Empty(t, l.IDs())
	})

	t.Run("not a mapping", func(t *testing.T) {
		_, err := seed.Parse([]byte("- a\n- b\n"), nil)
		assert.Error(t, err)
	})

	t.Run("group is not a list", func(t *testing.T) {
		_, err := seed.Parse([]byte("franzj:\n  nested: true\n"), nil)
		assert.Error(t, err)
	})
}

func TestIDsIsACopy(t *testing.T) {
	l, err := seed.Parse([]byte(yamlSeeds), nil)
	require.NoError(t, err)

	ids := l.IDs()
	ids[0] = "changed"
	assert.Equal(t, model.VideoID("dQw4w9WgXcQ"), l.IDs()[0])
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seeds.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yamlSeeds), 0o644))

	l, err := seed.Load(path, nil)
	require.NoError(t, err)
	assert.Len(t, l.IDs(), 3)

	_, err = seed.Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.Error(t, err)
}

func TestExport(t *testing.T) {
	l, err := seed.Parse([]byte(yamlSeeds), nil)
	require.NoError(t, err)

	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	exp := l.Export(now)
	assert.Equal(t, 4, exp.TotalVideos)
	assert.Equal(t, []string{"not a video"}, exp.Skipped)
	assert.Equal(t, now, exp.LastUpdated)
	assert.Equal(t, []seed.ExportEntry{
		{ID: "kJQP7kiw5Fk", URL: "https://www.youtube.com/shorts/kJQP7kiw5Fk"},
		{ID: "dQw4w9WgXcQ", URL: "https://youtu.be/dQw4w9WgXcQ"},
	}, exp.VideosByChannel["zuhn"])
	assert.Empty(t, exp.VideosByChannel["other"])
}
