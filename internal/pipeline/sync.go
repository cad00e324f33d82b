package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fyerfyer/rime-zhwiki/internal/chunk"
	"github.com/fyerfyer/rime-zhwiki/internal/classify"
	"github.com/fyerfyer/rime-zhwiki/internal/dumps"
	"github.com/fyerfyer/rime-zhwiki/internal/logging"
	"github.com/fyerfyer/rime-zhwiki/internal/models"
	"github.com/fyerfyer/rime-zhwiki/internal/repository"
	"github.com/fyerfyer/rime-zhwiki/internal/script"
	"github.com/fyerfyer/rime-zhwiki/internal/version"
)

// CommandSync 同步命令名
const CommandSync = "sync"

// SyncConfig 同步流水线的组件与目录
type SyncConfig struct {
	Categories   []string
	Buckets      []models.Category // 需要落盘的分类
	RawDir       string
	DictDir      string
	LinesPerFile int

	Source     dumps.Source
	Versions   version.Store
	Classifier *classify.Classifier
	Filter     *script.Filter
	Tracker    *repository.Tracker
}

// SyncOptions 单次运行参数
type SyncOptions struct {
	Date string // 指定版本，为空时查询最新版本
}

// CategoryResult 单个分类的处理结果
type CategoryResult struct {
	Version  string
	Lines    int
	Words    map[string]int // 各桶落盘词数
	Skipped  bool
	Err      error
	Duration time.Duration
}

// SyncResult 同步结果
type SyncResult struct {
	Updated    bool
	Record     *models.VersionRecord
	Categories map[string]*CategoryResult
}

// Sync 下载、切分、分类并落盘各数据源的标题
type Sync struct {
	cfg SyncConfig
	log *logrus.Logger
}

// NewSync 创建同步流水线
func NewSync(cfg SyncConfig) *Sync {
	if cfg.LinesPerFile == 0 {
		cfg.LinesPerFile = chunk.DefaultLinesPerFile
	}
	if len(cfg.Buckets) == 0 {
		cfg.Buckets = []models.Category{models.CategoryCommon, models.CategoryExtended}
	}
	return &Sync{cfg: cfg, log: logging.GetLogger()}
}

// Run 执行同步
// 单个分类下载失败只跳过该分类；本地读写失败中止整个流程
func (s *Sync) Run(ctx context.Context, opts SyncOptions) (*SyncResult, error) {
	old, err := s.cfg.Versions.Load()
	if err != nil {
		return nil, err
	}
	record := old.Clone()

	result := &SyncResult{Record: record, Categories: make(map[string]*CategoryResult)}
	files := make(map[string]string)

	for _, cate := range s.cfg.Categories {
		cr := &CategoryResult{}
		result.Categories[cate] = cr

		path, ver, err := s.download(ctx, cate, opts.Date)
		if err != nil {
			cr.Skipped, cr.Err = true, err
			s.log.WithError(err).WithField(logging.FieldCategory, cate).Error("Download failed, skipping category")
			s.cfg.Tracker.Skip(cate, models.StageDownload, ver, err)
			continue
		}

		cr.Version = ver
		files[cate] = path
		record.SetSource(cate, models.SourceVersion{Version: ver, File: filepath.Base(path)})
	}

	if !version.Changed(old, record, s.cfg.Categories) {
		s.log.Info("No update")
		return result, nil
	}
	result.Updated = true

	if err := s.cfg.Versions.Save(record); err != nil {
		return result, err
	}

	for _, cate := range s.cfg.Categories {
		path, ok := files[cate]
		if !ok {
			continue
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}

		run := s.cfg.Tracker.Start(cate, models.StageSplit, record.Source(cate).Version)
		count, err := chunk.NewWriter(
			filepath.Join(s.cfg.RawDir, cate),
			chunk.WithLinesPerFile(s.cfg.LinesPerFile),
		).SplitGzip(path)
		s.cfg.Tracker.Finish(run, count, nil, err)
		if err != nil {
			return result, models.NewResourceError(models.StageSplit, cate, err)
		}

		record.SetCount(cate, count)
		result.Categories[cate].Lines = count
	}

	if err := s.cfg.Versions.Save(record); err != nil {
		return result, err
	}

	for _, cate := range s.cfg.Categories {
		if _, ok := files[cate]; !ok {
			continue
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}

		start := time.Now()
		words, err := s.format(cate, record.Source(cate).Version)
		if err != nil {
			return result, err
		}
		result.Categories[cate].Words = words
		result.Categories[cate].Duration = time.Since(start)
	}

	s.summary(result)
	return result, nil
}

// download 解析版本并下载，返回本地文件路径
func (s *Sync) download(ctx context.Context, cate, date string) (string, string, error) {
	ver := date
	if ver == "" {
		v, err := s.cfg.Source.FetchVersion(ctx, cate)
		if err != nil {
			return "", "", err
		}
		ver = v
	}

	run := s.cfg.Tracker.Start(cate, models.StageDownload, ver)
	info, err := s.cfg.Source.Download(ctx, cate, ver)
	s.cfg.Tracker.Finish(run, 0, nil, err)
	if err != nil {
		return "", ver, err
	}
	return info.Path, ver, nil
}

// format 对原始分片分类、规范化后按桶写入词典目录
func (s *Sync) format(cate, ver string) (map[string]int, error) {
	rawDir := filepath.Join(s.cfg.RawDir, cate)

	run := s.cfg.Tracker.Start(cate, models.StageClassify, ver)
	buckets, err := s.cfg.Classifier.ClassifyDir(rawDir)
	if err != nil {
		s.cfg.Tracker.Finish(run, 0, nil, err)
		return nil, models.NewResourceError(models.StageClassify, cate, err)
	}
	s.cfg.Tracker.Finish(run, buckets.Total(), buckets.Counts(), nil)

	out := make(map[string]int, len(s.cfg.Buckets))
	for _, c := range s.cfg.Buckets {
		words := buckets.Words(c)
		filtered, stats := s.cfg.Filter.Apply(words)

		dir := filepath.Join(s.cfg.DictDir, cate, c.Bucket())
		run := s.cfg.Tracker.Start(cate, models.StageWrite, ver)
		_, err := chunk.NewWriter(dir, chunk.WithLinesPerFile(s.cfg.LinesPerFile)).WriteLines(filtered)
		s.cfg.Tracker.Finish(run, len(filtered), stats, err)
		if err != nil {
			return nil, models.NewResourceError(models.StageWrite, cate, err)
		}

		s.log.WithFields(logrus.Fields{
			logging.FieldCategory: cate,
			logging.FieldBucket:   c.Bucket(),
			"before":              len(words),
			"after":               len(filtered),
		}).Info("Filtered words")
		out[c.Bucket()] = len(filtered)
	}
	return out, nil
}

func (s *Sync) summary(result *SyncResult) {
	for _, cate := range s.cfg.Categories {
		cr := result.Categories[cate]
		fields := logrus.Fields{
			logging.FieldCategory: cate,
			logging.FieldVersion:  cr.Version,
			"lines":               cr.Lines,
			"duration":            cr.Duration.String(),
		}
		if cr.Skipped {
			s.log.WithFields(fields).WithError(cr.Err).Warn("Category skipped")
			continue
		}
		s.log.WithFields(fields).WithField("words", fmt.Sprint(cr.Words)).Info("Category synced")
	}
}
