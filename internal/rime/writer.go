package rime

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/fyerfyer/rime-zhwiki/internal/logging"
	"github.com/fyerfyer/rime-zhwiki/internal/models"
)

// FileSuffix 词典文件后缀
const FileSuffix = ".dict.yaml"

// SortMode 词条按词典顺序排列
const SortMode = "by_weight"

// Dict 待写出的RIME词典
type Dict struct {
	Name    string
	Version string
	Entries []models.DictionaryEntry
}

// FileName 返回词典文件名
func (d Dict) FileName() string {
	return d.Name + FileSuffix
}

// Header 返回词典头部
func (d Dict) Header() string {
	return fmt.Sprintf("# Rime dictionary\n# encoding: utf-8\n#\n#\n---\nname: %s\nversion: \"%s\"\nsort: %s\n...\n",
		d.Name, d.Version, SortMode)
}

// Write 将词典写入dir，目录不存在时创建，已有同名文件会被覆盖
func Write(dir string, d Dict) (string, error) {
	if d.Name == "" {
		return "", fmt.Errorf("dictionary name is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}

	path := filepath.Join(dir, d.FileName())
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create dictionary: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if _, err := w.WriteString(d.Header()); err != nil {
		return "", fmt.Errorf("failed to write dictionary: %w", err)
	}
	for _, e := range d.Entries {
		if _, err := w.WriteString(e.String() + "\n"); err != nil {
			return "", fmt.Errorf("failed to write dictionary: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return "", fmt.Errorf("failed to write dictionary: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close dictionary: %w", err)
	}

	logging.GetLogger().WithFields(logrus.Fields{
		logging.FieldFile:    path,
		logging.FieldVersion: d.Version,
		logging.FieldCount:   len(d.Entries),
	}).Info("Dictionary written")
	return path, nil
}
