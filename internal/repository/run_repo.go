package repository

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fyerfyer/rime-zhwiki/internal/models"
)

// ErrRunNotFound 运行记录不存在
var ErrRunNotFound = errors.New("pipeline run not found")

// runRepository 运行记录仓储实现
type runRepository struct {
	db *gorm.DB
}

// NewRunRepository 创建运行记录仓储
func NewRunRepository(db *gorm.DB) RunRepository {
	return &runRepository{db: db}
}

// Create 创建运行记录，未指定ID时自动生成
func (r *runRepository) Create(run *models.PipelineRun) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	return r.db.Create(run).Error
}

// Update 更新运行记录
func (r *runRepository) Update(run *models.PipelineRun) error {
	if run.ID == "" {
		return errors.New("run ID cannot be empty")
	}
	return r.db.Save(run).Error
}

// GetByID 根据ID获取运行记录
func (r *runRepository) GetByID(id string) (*models.PipelineRun, error) {
	var run models.PipelineRun
	err := r.db.Where("id = ?", id).First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// Latest 获取最近一次运行
func (r *runRepository) Latest(command, category string) (*models.PipelineRun, error) {
	query := r.db.Where("command = ?", command)
	if category != "" {
		query = query.Where("category = ?", category)
	}

	var run models.PipelineRun
	err := query.Order("started_at DESC").First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// List 按开始时间倒序列出运行记录，limit<=0时返回全部
func (r *runRepository) List(limit int) ([]*models.PipelineRun, error) {
	query := r.db.Order("started_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var runs []*models.PipelineRun
	if err := query.Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}
