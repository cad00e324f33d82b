package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// 写入中的临时文件后缀
const partSuffix = ".part"

// LocalStorage 本地文件存储实现
type LocalStorage struct {
	basePath string // 基础存储路径
}

// LocalConfig 本地存储配置
type LocalConfig struct {
	Path string // 本地存储路径
}

// NewLocalStorage 创建本地存储实例
func NewLocalStorage(cfg LocalConfig) (*LocalStorage, error) {
	absPath, err := filepath.Abs(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	if err := os.MkdirAll(absPath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &LocalStorage{basePath: absPath}, nil
}

// Root 返回存储根目录
func (s *LocalStorage) Root() string {
	return s.basePath
}

// Path 返回对象在本地文件系统中的路径
func (s *LocalStorage) Path(name string) (string, error) {
	name, err := cleanName(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.basePath, filepath.FromSlash(name)), nil
}

// Save 保存文件到本地存储
// 先写入临时文件再重命名，中断的下载不会留下看似完整的文件
func (s *LocalStorage) Save(reader io.Reader, name string) (FileInfo, error) {
	filePath, err := s.Path(name)
	if err != nil {
		return FileInfo{}, err
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return FileInfo{}, fmt.Errorf("failed to create directory: %w", err)
	}

	tmpPath := filepath.Join(filepath.Dir(filePath), "."+uuid.NewString()+partSuffix)
	file, err := os.Create(tmpPath)
	if err != nil {
		return FileInfo{}, fmt.Errorf("failed to create file: %w", err)
	}

	size, err := io.Copy(file, reader)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmpPath)
		return FileInfo{}, fmt.Errorf("failed to write file: %w", err)
	}

	if err := os.Rename(tmpPath, filePath); err != nil {
		_ = os.Remove(tmpPath)
		return FileInfo{}, fmt.Errorf("failed to move file: %w", err)
	}

	return s.fileInfo(filePath, size)
}

// Get 获取文件内容
func (s *LocalStorage) Get(name string) (io.ReadCloser, error) {
	filePath, err := s.Path(name)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filePath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

// Delete 删除文件
func (s *LocalStorage) Delete(name string) error {
	filePath, err := s.Path(name)
	if err != nil {
		return err
	}

	err = os.Remove(filePath)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// List 列出所有文件，跳过写入中的临时文件
func (s *LocalStorage) List() ([]FileInfo, error) {
	var files []FileInfo

	err := filepath.Walk(s.basePath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || strings.HasSuffix(info.Name(), partSuffix) {
			return nil
		}

		fi, err := s.fileInfo(path, info.Size())
		if err != nil {
			return err
		}
		files = append(files, fi)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	return files, nil
}

// Exists 检查文件是否存在
func (s *LocalStorage) Exists(name string) (bool, error) {
	filePath, err := s.Path(name)
	if err != nil {
		return false, err
	}

	info, err := os.Stat(filePath)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return !info.IsDir(), nil
}

// Stat 返回已存在文件的信息
func (s *LocalStorage) Stat(name string) (FileInfo, error) {
	filePath, err := s.Path(name)
	if err != nil {
		return FileInfo{}, err
	}

	info, err := os.Stat(filePath)
	if errors.Is(err, os.ErrNotExist) {
		return FileInfo{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return FileInfo{}, err
	}
	return s.fileInfo(filePath, info.Size())
}

func (s *LocalStorage) fileInfo(filePath string, size int64) (FileInfo, error) {
	rel, err := filepath.Rel(s.basePath, filePath)
	if err != nil {
		return FileInfo{}, err
	}
	return FileInfo{
		Name:     filepath.ToSlash(rel),
		Size:     size,
		MimeType: getMimeType(filePath),
		Path:     filePath,
	}, nil
}
