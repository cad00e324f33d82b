package repository

import (
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/fyerfyer/rime-zhwiki/internal/logging"
	"github.com/fyerfyer/rime-zhwiki/internal/models"
)

// Tracker 记录流水线各阶段的运行情况
// 运行记录只用于追溯，写入失败只记录日志
type Tracker struct {
	repo    RunRepository
	command string
	log     *logrus.Logger
}

// NewTracker 创建记录器，repo为nil时所有操作为空操作
func NewTracker(repo RunRepository, command string) *Tracker {
	return &Tracker{repo: repo, command: command, log: logging.GetLogger()}
}

// Start 记录阶段开始
func (t *Tracker) Start(category string, stage models.Stage, version string) *models.PipelineRun {
	if t == nil || t.repo == nil {
		return nil
	}

	run := &models.PipelineRun{
		Command:   t.command,
		Category:  category,
		Stage:     stage,
		Status:    models.RunStatusRunning,
		Version:   version,
		StartedAt: time.Now(),
	}
	if err := t.repo.Create(run); err != nil {
		t.log.WithError(err).WithField(logging.FieldStage, stage).Warn("Failed to record run")
		return nil
	}
	return run
}

// Finish 记录阶段结束，err非空时标记为失败
func (t *Tracker) Finish(run *models.PipelineRun, lines int, stats any, err error) {
	if t == nil || t.repo == nil || run == nil {
		return
	}

	run.Status = models.RunStatusCompleted
	if err != nil {
		run.Status = models.RunStatusFailed
		run.Error = err.Error()
	}
	t.finish(run, lines, stats)
}

// Skip 记录被跳过的阶段
func (t *Tracker) Skip(category string, stage models.Stage, version string, reason error) {
	if t == nil || t.repo == nil {
		return
	}

	run := t.Start(category, stage, version)
	if run == nil {
		return
	}
	run.Status = models.RunStatusSkipped
	if reason != nil {
		run.Error = reason.Error()
	}
	t.finish(run, 0, nil)
}

func (t *Tracker) finish(run *models.PipelineRun, lines int, stats any) {
	now := time.Now()
	run.FinishedAt = &now
	run.Lines = lines
	if stats != nil {
		if data, err := json.Marshal(stats); err == nil {
			run.Stats = datatypes.JSON(data)
		}
	}
	if err := t.repo.Update(run); err != nil {
		t.log.WithError(err).WithField(logging.FieldStage, run.Stage).Warn("Failed to update run")
	}
}
