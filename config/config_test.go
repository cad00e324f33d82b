package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, []string{"zhwiki", "zhwiktionary"}, cfg.Source.Categories)
	assert.Equal(t, 30*time.Second, cfg.Source.IndexTimeout)
	assert.Equal(t, time.Duration(0), cfg.Source.DownloadTimeout)
	assert.Equal(t, 100000, cfg.Pipeline.LinesPerFile)
	assert.Equal(t, 2, cfg.Pipeline.MinWordLength)
	assert.Equal(t, []string{"main", "more"}, cfg.Pipeline.Buckets)
	assert.Equal(t, []string{"列表", "对照表"}, cfg.Pipeline.Denylist)
	assert.Equal(t, "zhwiki", cfg.Dict.MainName)
	assert.Equal(t, "zhwiki-ext", cfg.Dict.ExtName)
	assert.Equal(t, "local", cfg.Storage.Type)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.Mode)
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	content := `
pipeline:
  lines_per_file: 500
  denylist: ["列表"]
storage:
  type: minio
  secret_key: ${RIME_TEST_SECRET}
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	t.Setenv("RIME_TEST_SECRET", "s3cr3t")
	t.Setenv("RIME_PIPELINE_MIN_WORD_LENGTH", "3")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 500, cfg.Pipeline.LinesPerFile)
	assert.Equal(t, 3, cfg.Pipeline.MinWordLength)
	assert.Equal(t, []string{"列表"}, cfg.Pipeline.Denylist)
	assert.Equal(t, "minio", cfg.Storage.Type)
	assert.Equal(t, "s3cr3t", cfg.Storage.SecretKey)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_InvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pipeline:\n  lines_per_file: 0\n"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "main", cfg.Pipeline.MergeBucket)
	assert.Equal(t, 4, cfg.Pipeline.MainMaxLength)
}
