package storage

import (
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
)

// ErrNotFound 对象不存在
var ErrNotFound = errors.New("object not found")

// FileInfo 文件元数据结构
type FileInfo struct {
	Name     string // 对象名，以/分隔
	Size     int64  // 文件大小(字节)
	MimeType string // 文件MIME类型
	Path     string // 内部存储路径(实现相关)
}

// Storage 文件存储接口
// 对象以名称为键，同名保存会覆盖
type Storage interface {
	// Save 保存文件并返回文件信息
	Save(reader io.Reader, name string) (FileInfo, error)

	// Get 获取文件内容
	Get(name string) (io.ReadCloser, error)

	// Delete 删除文件
	Delete(name string) error

	// List 列出所有文件
	List() ([]FileInfo, error)

	// Exists 检查文件是否存在
	Exists(name string) (bool, error)
}

// Type 存储类型
type Type string

const (
	TypeLocal Type = "local"
	TypeMinio Type = "minio"
)

// Config 存储配置
type Config struct {
	Type  Type
	Local LocalConfig
	Minio MinioConfig
}

// NewStorage 根据配置创建存储实例
func NewStorage(cfg Config) (Storage, error) {
	switch cfg.Type {
	case TypeLocal, "":
		return NewLocalStorage(cfg.Local)
	case TypeMinio:
		return NewMinioStorage(cfg.Minio)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

// cleanName 规范化对象名，拒绝越出存储根目录的名称
func cleanName(name string) (string, error) {
	name = strings.TrimPrefix(path.Clean("/"+filepath.ToSlash(name)), "/")
	if name == "" || name == "." {
		return "", fmt.Errorf("invalid object name %q", name)
	}
	return name, nil
}

// getMimeType 简单根据文件扩展名判断MIME类型
func getMimeType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".gz":
		return "application/gzip"
	case ".yaml", ".yml":
		return "application/yaml"
	case ".json":
		return "application/json"
	case ".txt":
		return "text/plain; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}
