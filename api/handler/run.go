package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/fyerfyer/rime-zhwiki/api/middleware"
	"github.com/fyerfyer/rime-zhwiki/api/model"
	"github.com/fyerfyer/rime-zhwiki/internal/models"
	"github.com/fyerfyer/rime-zhwiki/internal/repository"
)

const (
	defaultRunLimit = 20
	maxRunLimit     = 500
)

// RunHandler 运行记录查询
type RunHandler struct {
	repo   repository.RunRepository // 为nil表示未启用运行记录库
	logger *logrus.Logger
}

// NewRunHandler 创建运行记录处理器
func NewRunHandler(repo repository.RunRepository) *RunHandler {
	return &RunHandler{
		repo:   repo,
		logger: middleware.GetLogger(),
	}
}

// ListRuns 按开始时间倒序列出运行记录
// GET /api/runs?limit=20
func (h *RunHandler) ListRuns(c *gin.Context) {
	if !h.enabled(c) {
		return
	}

	limit := defaultRunLimit
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 || n > maxRunLimit {
			middleware.HandleError(c, middleware.NewValidationError("invalid limit", "must be between 1 and "+strconv.Itoa(maxRunLimit)))
			return
		}
		limit = n
	}
	h.logger.WithField("limit", limit).Debug("Listing runs")

	runs, err := h.repo.List(limit)
	if err != nil {
		middleware.HandleError(c, middleware.NewInternalError("failed to list runs", err.Error()))
		return
	}

	resp := model.RunListResponse{Total: len(runs), Runs: make([]model.RunInfo, 0, len(runs))}
	for _, run := range runs {
		resp.Runs = append(resp.Runs, model.NewRunInfo(run))
	}
	c.JSON(http.StatusOK, model.NewSuccessResponse(resp))
}

// GetRun 获取单条运行记录
// GET /api/runs/:id
func (h *RunHandler) GetRun(c *gin.Context) {
	if !h.enabled(c) {
		return
	}

	run, err := h.repo.GetByID(c.Param("id"))
	h.respond(c, run, err)
}

// LatestRun 获取命令最近一次运行，可按分类过滤
// GET /api/status?command=sync&category=zhwiki
func (h *RunHandler) LatestRun(c *gin.Context) {
	if !h.enabled(c) {
		return
	}

	command := c.DefaultQuery("command", "sync")
	run, err := h.repo.Latest(command, c.Query("category"))
	h.respond(c, run, err)
}

func (h *RunHandler) respond(c *gin.Context, run *models.PipelineRun, err error) {
	if errors.Is(err, repository.ErrRunNotFound) {
		middleware.HandleError(c, middleware.NewNotFoundError("run not found"))
		return
	}
	if err != nil {
		middleware.HandleError(c, middleware.NewInternalError("failed to query run", err.Error()))
		return
	}
	c.JSON(http.StatusOK, model.NewSuccessResponse(model.NewRunInfo(run)))
}

// enabled 运行记录库未启用时返回503
func (h *RunHandler) enabled(c *gin.Context) bool {
	if h.repo != nil {
		return true
	}
	middleware.HandleError(c, middleware.NewUnavailableError("run ledger is disabled"))
	return false
}
