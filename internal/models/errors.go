package models

import (
	"errors"
	"fmt"
)

var (
	// ErrTooShort 词条长度低于下限
	ErrTooShort = errors.New("word too short")

	// ErrNotSimplified 转换后不是有效的简体字形
	ErrNotSimplified = errors.New("not a simplified-script word")

	// ErrDuplicate 转换后与已有词条重复
	ErrDuplicate = errors.New("duplicate word")

	// ErrReadingCount 音节数与字数不一致
	ErrReadingCount = errors.New("reading syllable count mismatch")

	// ErrReadingAlphabet 读音包含小写字母和空格以外的字符
	ErrReadingAlphabet = errors.New("reading contains invalid characters")

	// ErrNoVersion 未能获取到数据版本
	ErrNoVersion = errors.New("no dataset version found")
)

// ErrorKind 流水线错误类别
type ErrorKind int

const (
	// KindTransientExternal 网络下载等外部错误，跳过当前分类
	KindTransientExternal ErrorKind = iota + 1
	// KindValidation 单个词条校验失败，丢弃该词条
	KindValidation
	// KindResource 文件系统错误，中止当前阶段
	KindResource
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransientExternal:
		return "transient"
	case KindValidation:
		return "validation"
	case KindResource:
		return "resource"
	default:
		return "unknown"
	}
}

// PipelineError 带阶段和分类信息的流水线错误
type PipelineError struct {
	Kind     ErrorKind
	Stage    Stage
	Category string
	Err      error
}

// Error 实现error接口
func (e *PipelineError) Error() string {
	if e.Category != "" {
		return fmt.Sprintf("%s error in %s (%s): %v", e.Kind, e.Stage, e.Category, e.Err)
	}
	return fmt.Sprintf("%s error in %s: %v", e.Kind, e.Stage, e.Err)
}

// Unwrap 支持errors.Is/As
func (e *PipelineError) Unwrap() error {
	return e.Err
}

// NewTransientError 创建外部错误
func NewTransientError(stage Stage, category string, err error) error {
	return &PipelineError{Kind: KindTransientExternal, Stage: stage, Category: category, Err: err}
}

// NewResourceError 创建资源错误
func NewResourceError(stage Stage, category string, err error) error {
	return &PipelineError{Kind: KindResource, Stage: stage, Category: category, Err: err}
}

// IsKind 判断错误链中是否存在指定类别的流水线错误
func IsKind(err error, kind ErrorKind) bool {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Kind == kind
	}
	return false
}
