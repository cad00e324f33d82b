package chunk

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/sirupsen/logrus"

	"github.com/fyerfyer/rime-zhwiki/internal/logging"
)

// DefaultLinesPerFile 默认每个分片的行数
const DefaultLinesPerFile = 100000

// Writer 按行数把有序文本切分为编号分片文件
// 目标目录在每次写入前被删除并重建，不支持增量追加
type Writer struct {
	dir          string
	prefix       string
	linesPerFile int
	log          *logrus.Logger
}

// Option 分片写入器配置选项
type Option func(*Writer)

// WithPrefix 设置分片文件名前缀，生成 prefix_001.txt
func WithPrefix(prefix string) Option {
	return func(w *Writer) {
		w.prefix = strings.Trim(prefix, "_ ")
	}
}

// WithLinesPerFile 设置每个分片的最大行数
func WithLinesPerFile(n int) Option {
	return func(w *Writer) {
		w.linesPerFile = n
	}
}

// WithLogger 设置日志
func WithLogger(log *logrus.Logger) Option {
	return func(w *Writer) {
		w.log = log
	}
}

// NewWriter 创建分片写入器
func NewWriter(dir string, opts ...Option) *Writer {
	w := &Writer{
		dir:          dir,
		linesPerFile: DefaultLinesPerFile,
		log:          logging.GetLogger(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Dir 返回输出目录
func (w *Writer) Dir() string {
	return w.dir
}

// ShardName 返回第n个分片的文件名，n从1开始
func ShardName(prefix string, n int) string {
	name := fmt.Sprintf("%03d.txt", n)
	if prefix != "" {
		name = prefix + "_" + name
	}
	return name
}

// WriteLines 把内存中的行写入分片，返回写入的总行数
func (w *Writer) WriteLines(lines []string) (int, error) {
	i := 0
	return w.write(func() (string, bool, error) {
		if i >= len(lines) {
			return "", false, nil
		}
		line := lines[i]
		i++
		return line, true, nil
	})
}

// WriteFrom 从reader逐行读取并写入分片，内存占用只与单行长度有关
func (w *Writer) WriteFrom(r io.Reader) (int, error) {
	return w.write(lineReader(bufio.NewReader(r)))
}

// SplitGzip 解压gz文件并切分，首行为转储文件的表头，不写入分片
func (w *Writer) SplitGzip(path string) (int, error) {
	w.log.WithField(logging.FieldFile, path).Info("Reading gzip dump")

	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open gzip file: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return 0, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gz.Close()

	br := bufio.NewReader(gz)
	if _, err := br.ReadString('\n'); err != nil && !errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("failed to read header line: %w", err)
	}

	return w.write(lineReader(br))
}

// lineReader 把bufio.Reader包装为逐行读取函数，去掉行尾换行符
func lineReader(br *bufio.Reader) func() (string, bool, error) {
	return func() (string, bool, error) {
		line, err := br.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				if line == "" {
					return "", false, nil
				}
				return strings.TrimRight(line, "\r\n"), true, nil
			}
			return "", false, err
		}
		return strings.TrimRight(line, "\r\n"), true, nil
	}
}

// write 按行写入分片
// 计数对linesPerFile取模为0时开始新分片，同一时刻只打开一个分片文件
func (w *Writer) write(next func() (string, bool, error)) (count int, err error) {
	if w.linesPerFile <= 0 {
		return 0, fmt.Errorf("lines per file must be positive, got %d", w.linesPerFile)
	}

	if err := resetDir(w.dir, w.log); err != nil {
		return 0, err
	}

	var (
		out  *os.File
		buf  *bufio.Writer
		part = 1
	)

	closeShard := func() error {
		if out == nil {
			return nil
		}
		flushErr := buf.Flush()
		closeErr := out.Close()
		out, buf = nil, nil
		if flushErr != nil {
			return fmt.Errorf("failed to flush shard: %w", flushErr)
		}
		if closeErr != nil {
			return fmt.Errorf("failed to close shard: %w", closeErr)
		}
		return nil
	}

	// 任何退出路径都关闭当前分片，已写入的部分分片保留在磁盘上
	defer func() {
		if closeErr := closeShard(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	for {
		line, ok, readErr := next()
		if readErr != nil {
			return count, fmt.Errorf("failed to read line %d: %w", count+1, readErr)
		}
		if !ok {
			break
		}

		if count%w.linesPerFile == 0 {
			if err := closeShard(); err != nil {
				return count, err
			}

			path := filepath.Join(w.dir, ShardName(w.prefix, part))
			f, err := os.Create(path)
			if err != nil {
				return count, fmt.Errorf("failed to create shard: %w", err)
			}
			out, buf = f, bufio.NewWriter(f)
			w.log.WithFields(logrus.Fields{
				"part":            part,
				logging.FieldFile: path,
			}).Debug("Writing shard")
			part++
		}

		if _, err := buf.WriteString(line); err != nil {
			return count, fmt.Errorf("failed to write shard: %w", err)
		}
		if err := buf.WriteByte('\n'); err != nil {
			return count, fmt.Errorf("failed to write shard: %w", err)
		}
		count++
	}

	if err := closeShard(); err != nil {
		return count, err
	}

	w.log.WithFields(logrus.Fields{
		logging.FieldDir:   w.dir,
		"shards":           part - 1,
		logging.FieldCount: count,
	}).Info("Split completed")

	return count, nil
}

// resetDir 删除并重建目录
func resetDir(dir string, log *logrus.Logger) error {
	if _, err := os.Stat(dir); err == nil {
		log.WithField(logging.FieldDir, dir).Warn("Removing existing directory")
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("failed to remove directory: %w", err)
		}
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return nil
}
