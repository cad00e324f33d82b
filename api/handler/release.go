package handler

import (
	"errors"
	"net/http"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/fyerfyer/rime-zhwiki/api/middleware"
	"github.com/fyerfyer/rime-zhwiki/api/model"
	"github.com/fyerfyer/rime-zhwiki/internal/logging"
	"github.com/fyerfyer/rime-zhwiki/internal/models"
	"github.com/fyerfyer/rime-zhwiki/internal/rime"
	"github.com/fyerfyer/rime-zhwiki/internal/version"
	"github.com/fyerfyer/rime-zhwiki/pkg/storage"
)

// ReleaseHandler 版本记录与已发布词典查询
type ReleaseHandler struct {
	versions   version.Store
	categories []string
	storage    storage.Storage
	logger     *logrus.Logger
}

// NewReleaseHandler 创建发布处理器
func NewReleaseHandler(versions version.Store, categories []string, store storage.Storage) *ReleaseHandler {
	return &ReleaseHandler{
		versions:   versions,
		categories: categories,
		storage:    store,
		logger:     middleware.GetLogger(),
	}
}

// GetVersion 返回当前版本记录
// GET /api/version
func (h *ReleaseHandler) GetVersion(c *gin.Context) {
	record, err := h.versions.Load()
	if err != nil {
		middleware.HandleError(c, middleware.NewInternalError("failed to load version record", err.Error()))
		return
	}

	resp := model.VersionResponse{Sources: make([]model.SourceInfo, 0, len(record.Sources))}
	if !record.Update.IsZero() {
		resp.Update = record.Update.UTC().Format(time.RFC3339)
	}
	for _, cate := range orderedCategories(h.categories, record.Sources) {
		sv := record.Source(cate)
		resp.Sources = append(resp.Sources, model.SourceInfo{
			Category: cate,
			Version:  sv.Version,
			File:     sv.File,
			Count:    sv.Count,
		})
	}
	c.JSON(http.StatusOK, model.NewSuccessResponse(resp))
}

// ListReleases 列出已发布的词典文件，版本号倒序
// GET /api/releases?version=20240101
func (h *ReleaseHandler) ListReleases(c *gin.Context) {
	files, err := h.storage.List()
	if err != nil {
		middleware.HandleError(c, middleware.NewInternalError("failed to list releases", err.Error()))
		return
	}

	want := c.Query("version")
	releases := make([]model.ReleaseInfo, 0, len(files))
	for _, f := range files {
		if !isRelease(f.Name) {
			continue
		}
		v := releaseVersion(f.Name)
		if want != "" && v != want {
			continue
		}
		releases = append(releases, model.ReleaseInfo{
			Name:     f.Name,
			Version:  v,
			Size:     f.Size,
			MimeType: f.MimeType,
		})
	}
	sort.SliceStable(releases, func(i, j int) bool {
		if releases[i].Version != releases[j].Version {
			return releases[i].Version > releases[j].Version
		}
		return releases[i].Name < releases[j].Name
	})

	c.JSON(http.StatusOK, model.NewSuccessResponse(model.ReleaseListResponse{
		Total:    len(releases),
		Releases: releases,
	}))
}

// Download 下载已发布的词典文件
// GET /api/download/<version>/<name>.dict.yaml
func (h *ReleaseHandler) Download(c *gin.Context) {
	name := strings.TrimPrefix(c.Param("name"), "/")
	if !isRelease(name) {
		middleware.HandleError(c, middleware.NewNotFoundError("release not found"))
		return
	}

	rc, err := h.storage.Get(name)
	if errors.Is(err, storage.ErrNotFound) {
		middleware.HandleError(c, middleware.NewNotFoundError("release not found"))
		return
	}
	if err != nil {
		middleware.HandleError(c, middleware.NewInternalError("failed to open release", err.Error()))
		return
	}
	defer rc.Close()

	h.logger.WithField(logging.FieldFile, name).Debug("Serving release")

	c.DataFromReader(http.StatusOK, -1, "application/yaml; charset=utf-8", rc, map[string]string{
		"Content-Disposition": `attachment; filename="` + path.Base(name) + `"`,
	})
}

// isRelease 只暴露词典文件
func isRelease(name string) bool {
	return strings.HasSuffix(name, rime.FileSuffix)
}

// releaseVersion 对象名形如 <version>/<file>，顶层文件没有版本
func releaseVersion(name string) string {
	if i := strings.Index(name, "/"); i > 0 {
		return name[:i]
	}
	return ""
}

// orderedCategories 先按配置顺序，再按名称列出记录中的其他分类
func orderedCategories(configured []string, sources map[string]models.SourceVersion) []string {
	seen := make(map[string]bool, len(configured))
	out := make([]string, 0, len(sources))
	for _, c := range configured {
		seen[c] = true
		out = append(out, c)
	}

	var extra []string
	for c := range sources {
		if !seen[c] {
			extra = append(extra, c)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}
