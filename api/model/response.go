package model

import (
	"encoding/json"
	"time"

	"github.com/fyerfyer/rime-zhwiki/internal/models"
)

// Response 通用响应结构
type Response struct {
	Code    int         `json:"code"`               // 响应状态码，0表示成功
	Message string      `json:"message"`            // 响应消息
	Data    interface{} `json:"data,omitempty"`     // 响应数据，可能为空
	TraceID string      `json:"trace_id,omitempty"` // 调用链追踪ID
}

// NewSuccessResponse 创建成功响应
func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Code:    0,
		Message: "success",
		Data:    data,
	}
}

// NewErrorResponse 创建错误响应
func NewErrorResponse(code int, message string) *Response {
	return &Response{
		Code:    code,
		Message: message,
	}
}

// RunInfo 运行记录
type RunInfo struct {
	ID         string          `json:"id"`
	Command    string          `json:"command"`
	Category   string          `json:"category,omitempty"`
	Stage      string          `json:"stage"`
	Status     string          `json:"status"`
	Version    string          `json:"version,omitempty"`
	Lines      int             `json:"lines"`
	Error      string          `json:"error,omitempty"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt *time.Time      `json:"finished_at,omitempty"`
	Stats      json.RawMessage `json:"stats,omitempty"` // 阶段统计，原样输出
}

// RunListResponse 运行记录列表响应
type RunListResponse struct {
	Total int       `json:"total"`
	Runs  []RunInfo `json:"runs"`
}

// NewRunInfo 由运行记录生成响应
func NewRunInfo(run *models.PipelineRun) RunInfo {
	info := RunInfo{
		ID:         run.ID,
		Command:    run.Command,
		Category:   run.Category,
		Stage:      string(run.Stage),
		Status:     string(run.Status),
		Version:    run.Version,
		Lines:      run.Lines,
		Error:      run.Error,
		StartedAt:  run.StartedAt,
		FinishedAt: run.FinishedAt,
	}
	if len(run.Stats) > 0 {
		info.Stats = json.RawMessage(run.Stats)
	}
	return info
}

// SourceInfo 单个分类的数据版本
type SourceInfo struct {
	Category string `json:"category"`
	Version  string `json:"version,omitempty"`
	File     string `json:"file,omitempty"`
	Count    *int   `json:"count"`
}

// VersionResponse 版本记录响应
type VersionResponse struct {
	Update  string       `json:"update"`
	Sources []SourceInfo `json:"sources"`
}

// ReleaseInfo 已发布的词典文件
type ReleaseInfo struct {
	Name     string `json:"name"`
	Version  string `json:"version"`
	Size     int64  `json:"size"`
	MimeType string `json:"mime_type"`
}

// ReleaseListResponse 发布文件列表响应
type ReleaseListResponse struct {
	Total    int           `json:"total"`
	Releases []ReleaseInfo `json:"releases"`
}
