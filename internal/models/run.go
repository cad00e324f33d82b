package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RunStatus 阶段运行状态
type RunStatus string

const (
	// RunStatusRunning 运行中
	RunStatusRunning RunStatus = "running"
	// RunStatusCompleted 运行完成
	RunStatusCompleted RunStatus = "completed"
	// RunStatusFailed 运行失败
	RunStatusFailed RunStatus = "failed"
	// RunStatusSkipped 因外部错误或无更新而跳过
	RunStatusSkipped RunStatus = "skipped"
)

// Stage 流水线阶段
type Stage string

const (
	StageDownload Stage = "download"
	StageSplit    Stage = "split"
	StageClassify Stage = "classify"
	StageMerge    Stage = "merge"
	StageRomanize Stage = "romanize"
	StageWrite    Stage = "write"
	StagePublish  Stage = "publish"
)

// PipelineRun 流水线阶段运行记录
// 每个命令、分类、阶段的一次执行对应一条记录
type PipelineRun struct {
	ID         string         `gorm:"primaryKey"`     // 运行ID
	Command    string         `gorm:"not null;index"` // sync 或 pack
	Category   string         `gorm:"size:50;index"`  // 数据源分类，如 zhwiki
	Stage      Stage          `gorm:"size:20;index"`  // 阶段
	Status     RunStatus      `gorm:"not null;index"` // 状态
	Version    string         `gorm:"size:20"`        // 数据版本
	Lines      int            `gorm:"default:0"`      // 处理行数
	Error      string         `gorm:"type:text"`      // 错误信息
	StartedAt  time.Time      `gorm:"not null;index"` // 开始时间
	FinishedAt *time.Time     `gorm:""`               // 结束时间
	UpdatedAt  time.Time      `gorm:"not null"`       // 更新时间
	Stats      datatypes.JSON `gorm:"type:json"`      // 阶段统计
}

// BeforeCreate GORM的钩子函数，创建记录前自动设置时间
func (r *PipelineRun) BeforeCreate(tx *gorm.DB) (err error) {
	if r.StartedAt.IsZero() {
		r.StartedAt = time.Now()
	}
	r.UpdatedAt = time.Now()
	return nil
}

// BeforeUpdate GORM的钩子函数，更新记录前自动设置更新时间
func (r *PipelineRun) BeforeUpdate(tx *gorm.DB) (err error) {
	r.UpdatedAt = time.Now()
	return nil
}

// TableName 明确指定表名
func (PipelineRun) TableName() string {
	return "pipeline_runs"
}
