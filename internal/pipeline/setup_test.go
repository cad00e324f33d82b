package pipeline

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyerfyer/rime-zhwiki/config"
	"github.com/fyerfyer/rime-zhwiki/internal/logging"
	"github.com/fyerfyer/rime-zhwiki/internal/models"
	"github.com/fyerfyer/rime-zhwiki/pkg/storage"
)

func TestParseBuckets(t *testing.T) {
	buckets, err := ParseBuckets([]string{"main", "more", "annotated"})
	require.NoError(t, err)
	assert.Equal(t, []models.Category{models.CategoryCommon, models.CategoryExtended, models.CategoryAnnotated}, buckets)

	_, err = ParseBuckets([]string{"nope"})
	assert.Error(t, err)
}

func TestSetupTracker(t *testing.T) {
	tracker, closeFn, err := SetupTracker(config.DatabaseConfig{Enable: false}, CommandSync, logging.GetLogger())
	require.NoError(t, err)
	assert.Nil(t, tracker.Start("zhwiki", models.StageSplit, ""))
	closeFn()

	dsn := filepath.Join(t.TempDir(), "db", "runs.db")
	tracker, closeFn, err = SetupTracker(config.DatabaseConfig{Enable: true, Type: "sqlite", DSN: dsn}, CommandSync, logging.GetLogger())
	require.NoError(t, err)
	defer closeFn()
	assert.NotNil(t, tracker.Start("zhwiki", models.StageSplit, ""))
	assert.FileExists(t, dsn)
}

func TestSetupPublisher(t *testing.T) {
	s, err := SetupPublisher(config.StorageConfig{Type: "local", Path: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &storage.LocalStorage{}, s)

	_, err = SetupPublisher(config.StorageConfig{Type: "ftp"})
	assert.Error(t, err)
}
