package version

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyerfyer/rime-zhwiki/internal/models"
)

var categories = []string{"zhwiki", "zhwiktionary"}

func TestLoadMissing(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "version.json"), categories)

	record, err := s.Load()
	require.NoError(t, err)
	assert.True(t, record.Update.IsZero())
	assert.Len(t, record.Sources, 2)
	assert.Equal(t, models.SourceVersion{}, record.Source("zhwiki"))
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "version.json")
	s := NewFileStore(path, categories)
	s.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }

	record := models.NewVersionRecord(categories)
	record.SetSource("zhwiki", models.SourceVersion{Version: "20240101", File: "zhwiki-20240101-all-titles-in-ns0.gz"})
	record.SetCount("zhwiki", 42)
	require.NoError(t, s.Save(record))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"update": "2024-01-02T03:04:05Z"`)
	assert.Contains(t, string(data), `"count": 42`)
	assert.Contains(t, string(data), `"count": null`)

	loaded, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, s.now(), loaded.Update)
	assert.Equal(t, "20240101", loaded.Source("zhwiki").Version)
	require.NotNil(t, loaded.Source("zhwiki").Count)
	assert.Equal(t, 42, *loaded.Source("zhwiki").Count)
	assert.Nil(t, loaded.Source("zhwiktionary").Count)
}

func TestLoadFillsCategories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "version.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"update": "", "zhwiki": {"version": "20240101", "count": null}}`), 0o644))

	record, err := NewFileStore(path, categories).Load()
	require.NoError(t, err)
	assert.Contains(t, record.Sources, "zhwiktionary")
	assert.Equal(t, "20240101", record.Source("zhwiki").Version)
}

func TestLoadInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "version.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	_, err := NewFileStore(path, categories).Load()
	assert.Error(t, err)
}

func TestChanged(t *testing.T) {
	old := models.NewVersionRecord(categories)
	old.SetSource("zhwiki", models.SourceVersion{Version: "20240101"})

	current := old.Clone()
	assert.False(t, Changed(old, current, categories))

	current.SetCount("zhwiki", 10)
	assert.False(t, Changed(old, current, categories))

	current.SetSource("zhwiktionary", models.SourceVersion{Version: "20240102"})
	assert.True(t, Changed(old, current, categories))
	assert.False(t, Changed(old, current, []string{"zhwiki"}))
}
