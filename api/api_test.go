package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/fyerfyer/rime-zhwiki/api/handler"
	"github.com/fyerfyer/rime-zhwiki/api/model"
	"github.com/fyerfyer/rime-zhwiki/internal/database"
	"github.com/fyerfyer/rime-zhwiki/internal/models"
	"github.com/fyerfyer/rime-zhwiki/internal/repository"
	"github.com/fyerfyer/rime-zhwiki/internal/version"
	"github.com/fyerfyer/rime-zhwiki/pkg/storage"
)

var categories = []string{"zhwiki", "zhwiktionary"}

// 测试环境配置
type testEnv struct {
	Router   *gin.Engine
	Runs     repository.RunRepository
	Versions *version.FileStore
	Storage  *storage.LocalStorage
}

// 创建测试环境
func setupTestEnv(t *testing.T) *testEnv {
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:apidb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { database.Close(db) })

	dir := t.TempDir()
	store, err := storage.NewLocalStorage(storage.LocalConfig{Path: filepath.Join(dir, "publish")})
	require.NoError(t, err)

	env := &testEnv{
		Runs:     repository.NewRunRepository(db),
		Versions: version.NewFileStore(filepath.Join(dir, "version.json"), categories),
		Storage:  store,
	}
	env.Router = SetupRouter(
		handler.NewRunHandler(env.Runs),
		handler.NewReleaseHandler(env.Versions, categories, env.Storage),
	)
	return env
}

func doGet(t *testing.T, router *gin.Engine, target string) (*httptest.ResponseRecorder, model.Response) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp model.Response
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

// decodeData 把响应中的data重新解析为具体类型
func decodeData(t *testing.T, resp model.Response, out interface{}) {
	t.Helper()
	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out))
}

func TestHealth(t *testing.T) {
	env := setupTestEnv(t)

	w, _ := doGet(t, env.Router, "/api/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
	assert.NotEmpty(t, w.Header().Get("X-Trace-ID"))
}

func TestTraceIDPropagated(t *testing.T) {
	env := setupTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/runs/missing", nil)
	req.Header.Set("X-Trace-ID", "trace-123")
	w := httptest.NewRecorder()
	env.Router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "trace-123", w.Header().Get("X-Trace-ID"))

	var resp model.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "trace-123", resp.TraceID)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestRuns(t *testing.T) {
	env := setupTestEnv(t)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	download := &models.PipelineRun{
		Command:   "sync",
		Category:  "zhwiki",
		Stage:     models.StageDownload,
		Status:    models.RunStatusCompleted,
		Version:   "20240101",
		StartedAt: base,
	}
	classify := &models.PipelineRun{
		Command:   "sync",
		Category:  "zhwiki",
		Stage:     models.StageClassify,
		Status:    models.RunStatusCompleted,
		Version:   "20240101",
		Lines:     42,
		Stats:     []byte(`{"in":42,"out":40}`),
		StartedAt: base.Add(time.Minute),
	}
	pack := &models.PipelineRun{
		Command:   "pack",
		Stage:     models.StageWrite,
		Status:    models.RunStatusFailed,
		Error:     "no version",
		StartedAt: base.Add(2 * time.Minute),
	}
	for _, run := range []*models.PipelineRun{download, classify, pack} {
		require.NoError(t, env.Runs.Create(run))
	}

	t.Run("list", func(t *testing.T) {
		w, resp := doGet(t, env.Router, "/api/runs?limit=2")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 0, resp.Code)

		var list model.RunListResponse
		decodeData(t, resp, &list)
		require.Equal(t, 2, list.Total)
		assert.Equal(t, pack.ID, list.Runs[0].ID)
		assert.Equal(t, "no version", list.Runs[0].Error)
		assert.Equal(t, classify.ID, list.Runs[1].ID)
	})

	t.Run("invalid limit", func(t *testing.T) {
		for _, q := range []string{"0", "-1", "abc", "501"} {
			w, resp := doGet(t, env.Router, "/api/runs?limit="+q)
			assert.Equal(t, http.StatusBadRequest, w.Code, q)
			assert.Equal(t, http.StatusBadRequest, resp.Code, q)
		}
	})

	t.Run("get", func(t *testing.T) {
		w, resp := doGet(t, env.Router, "/api/runs/"+classify.ID)
		require.Equal(t, http.StatusOK, w.Code)

		var info model.RunInfo
		decodeData(t, resp, &info)
		assert.Equal(t, "classify", info.Stage)
		assert.Equal(t, 42, info.Lines)
		assert.JSONEq(t, `{"in":42,"out":40}`, string(info.Stats))
	})

	t.Run("status", func(t *testing.T) {
		w, resp := doGet(t, env.Router, "/api/status?command=sync&category=zhwiki")
		require.Equal(t, http.StatusOK, w.Code)

		var info model.RunInfo
		decodeData(t, resp, &info)
		assert.Equal(t, classify.ID, info.ID)

		w, _ = doGet(t, env.Router, "/api/status?command=sync&category=zhwiktionary")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestRuns_Disabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store, err := storage.NewLocalStorage(storage.LocalConfig{Path: t.TempDir()})
	require.NoError(t, err)

	router := SetupRouter(
		handler.NewRunHandler(nil),
		handler.NewReleaseHandler(version.NewFileStore(filepath.Join(t.TempDir(), "v.json"), categories), categories, store),
	)

	for _, target := range []string{"/api/runs", "/api/runs/x", "/api/status"} {
		w, resp := doGet(t, router, target)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code, target)
		assert.Equal(t, "run ledger is disabled", resp.Message)
	}
}

func TestVersion(t *testing.T) {
	env := setupTestEnv(t)

	t.Run("empty record", func(t *testing.T) {
		w, resp := doGet(t, env.Router, "/api/version")
		require.Equal(t, http.StatusOK, w.Code)

		var v model.VersionResponse
		decodeData(t, resp, &v)
		assert.Empty(t, v.Update)
		require.Len(t, v.Sources, 2)
		assert.Equal(t, "zhwiki", v.Sources[0].Category)
		assert.Nil(t, v.Sources[0].Count)
	})

	t.Run("saved record", func(t *testing.T) {
		record := models.NewVersionRecord(categories)
		record.SetSource("zhwiki", models.SourceVersion{Version: "20240101", File: "zhwiki-20240101-all-titles-in-ns0.gz"})
		record.SetCount("zhwiki", 10)
		require.NoError(t, env.Versions.Save(record))

		w, resp := doGet(t, env.Router, "/api/version")
		require.Equal(t, http.StatusOK, w.Code)

		var v model.VersionResponse
		decodeData(t, resp, &v)
		assert.NotEmpty(t, v.Update)
		require.Len(t, v.Sources, 2)
		assert.Equal(t, "20240101", v.Sources[0].Version)
		require.NotNil(t, v.Sources[0].Count)
		assert.Equal(t, 10, *v.Sources[0].Count)
		assert.Equal(t, "zhwiktionary", v.Sources[1].Category)
	})
}

func TestReleases(t *testing.T) {
	env := setupTestEnv(t)

	content := "# Rime dictionary\n---\nname: zhwiki\n...\n中国\tzhong guo\n"
	for _, name := range []string{
		"20240101/zhwiki.dict.yaml",
		"20240101/zhwiki-ext.dict.yaml",
		"20240201/zhwiki.dict.yaml",
		"notes.txt",
	} {
		_, err := env.Storage.Save(strings.NewReader(content), name)
		require.NoError(t, err)
	}

	t.Run("list", func(t *testing.T) {
		w, resp := doGet(t, env.Router, "/api/releases")
		require.Equal(t, http.StatusOK, w.Code)

		var list model.ReleaseListResponse
		decodeData(t, resp, &list)
		require.Equal(t, 3, list.Total)
		assert.Equal(t, "20240201", list.Releases[0].Version)
		assert.Equal(t, "20240101/zhwiki-ext.dict.yaml", list.Releases[1].Name)
		assert.Equal(t, "20240101/zhwiki.dict.yaml", list.Releases[2].Name)
	})

	t.Run("filter by version", func(t *testing.T) {
		_, resp := doGet(t, env.Router, "/api/releases?version=20240201")

		var list model.ReleaseListResponse
		decodeData(t, resp, &list)
		require.Equal(t, 1, list.Total)
		assert.Equal(t, "20240201/zhwiki.dict.yaml", list.Releases[0].Name)
	})

	t.Run("download", func(t *testing.T) {
		w, _ := doGet(t, env.Router, "/api/download/20240101/zhwiki.dict.yaml")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, content, w.Body.String())
		assert.Contains(t, w.Header().Get("Content-Disposition"), `filename="zhwiki.dict.yaml"`)
	})

	t.Run("download missing or hidden", func(t *testing.T) {
		for _, target := range []string{
			"/api/download/20240301/zhwiki.dict.yaml",
			"/api/download/notes.txt",
		} {
			w, _ := doGet(t, env.Router, target)
			assert.Equal(t, http.StatusNotFound, w.Code, target)
		}
	})
}

func TestCors(t *testing.T) {
	env := setupTestEnv(t)

	w, _ := doGet(t, env.Router, "/api/health")
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
}
