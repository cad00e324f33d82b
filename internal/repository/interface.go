package repository

import "github.com/fyerfyer/rime-zhwiki/internal/models"

// RunRepository 运行记录仓储接口
type RunRepository interface {
	// Create 创建运行记录
	Create(run *models.PipelineRun) error

	// Update 更新运行记录
	Update(run *models.PipelineRun) error

	// GetByID 根据ID获取运行记录
	GetByID(id string) (*models.PipelineRun, error)

	// Latest 获取命令在某分类下最近一次运行，category为空时不限分类
	Latest(command, category string) (*models.PipelineRun, error)

	// List 按开始时间倒序列出运行记录
	List(limit int) ([]*models.PipelineRun, error)
}
