package chunk

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Files 返回目录下按文件名排序的分片文件
// 目录不存在时返回空列表
func Files(dir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.txt"))
	if err != nil {
		return nil, fmt.Errorf("failed to list shards: %w", err)
	}
	sort.Strings(files)
	return files, nil
}

// EachLine 依次读取文件中去除首尾空白后的非空行
func EachLine(path string, fn func(line string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open shard: %w", err)
	}
	defer f.Close()

	br := bufio.NewReader(f)
	next := lineReader(br)
	for {
		line, ok, err := next()
		if err != nil {
			return fmt.Errorf("failed to read shard %s: %w", path, err)
		}
		if !ok {
			return nil
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if err := fn(line); err != nil {
			return err
		}
	}
}

// ReadLines 读取目录下所有分片的非空行，保持分片顺序
func ReadLines(dir string) ([]string, error) {
	files, err := Files(dir)
	if err != nil {
		return nil, err
	}

	var lines []string
	for _, file := range files {
		err := EachLine(file, func(line string) error {
			lines = append(lines, line)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return lines, nil
}
