package version

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fyerfyer/rime-zhwiki/internal/models"
)

// DefaultPath 默认版本记录文件
const DefaultPath = "version.json"

// Store 版本记录持久化接口
type Store interface {
	Load() (*models.VersionRecord, error)
	Save(record *models.VersionRecord) error
}

// FileStore 以JSON文件保存版本记录
type FileStore struct {
	path       string
	categories []string
	now        func() time.Time
}

// NewFileStore 创建文件存储
func NewFileStore(path string, categories []string) *FileStore {
	if path == "" {
		path = DefaultPath
	}
	return &FileStore{path: path, categories: categories, now: time.Now}
}

// Path 返回记录文件路径
func (s *FileStore) Path() string {
	return s.path
}

// Load 读取记录，文件不存在时返回各分类的空记录
func (s *FileStore) Load() (*models.VersionRecord, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return models.NewVersionRecord(s.categories), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read version record: %w", err)
	}

	var record models.VersionRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to parse version record %s: %w", s.path, err)
	}
	for _, c := range s.categories {
		if _, ok := record.Sources[c]; !ok {
			record.SetSource(c, models.SourceVersion{})
		}
	}
	return &record, nil
}

// Save 更新时间戳并写入记录
func (s *FileStore) Save(record *models.VersionRecord) error {
	record.Update = s.now()

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(record); err != nil {
		return fmt.Errorf("failed to encode version record: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create record dir: %w", err)
		}
	}
	if err := os.WriteFile(s.path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write version record: %w", err)
	}
	return nil
}

// Changed 判断任一分类的版本号是否变化
func Changed(old, current *models.VersionRecord, categories []string) bool {
	for _, c := range categories {
		if old.Source(c).Version != current.Source(c).Version {
			return true
		}
	}
	return false
}
