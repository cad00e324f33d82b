package pipeline

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/fyerfyer/rime-zhwiki/internal/logging"
	"github.com/fyerfyer/rime-zhwiki/internal/merge"
	"github.com/fyerfyer/rime-zhwiki/internal/models"
	"github.com/fyerfyer/rime-zhwiki/internal/repository"
	"github.com/fyerfyer/rime-zhwiki/internal/rime"
	"github.com/fyerfyer/rime-zhwiki/internal/romanize"
	"github.com/fyerfyer/rime-zhwiki/internal/version"
	"github.com/fyerfyer/rime-zhwiki/pkg/storage"
)

// CommandPack 打包命令名
const CommandPack = "pack"

// PackConfig 打包流水线的组件与目录
type PackConfig struct {
	Categories []string
	DictDir    string
	OutputDir  string
	MainName   string
	ExtName    string

	Versions  version.Store
	Merger    *merge.Merger
	Romanizer *romanize.Romanizer
	Publisher storage.Storage // 为nil时不发布
	Tracker   *repository.Tracker
}

// PackResult 打包结果
type PackResult struct {
	Version   string
	Files     []string
	Published []storage.FileInfo
	Merge     *merge.Result
	Entries   map[string]int // 各词典的词条数，不含分隔空行
}

// Pack 合并词典目录并生成RIME词典
type Pack struct {
	cfg PackConfig
	log *logrus.Logger
}

// NewPack 创建打包流水线
func NewPack(cfg PackConfig) *Pack {
	if cfg.MainName == "" {
		cfg.MainName = "zhwiki"
	}
	if cfg.ExtName == "" {
		cfg.ExtName = cfg.MainName + "-ext"
	}
	return &Pack{cfg: cfg, log: logging.GetLogger()}
}

// Run 执行打包，词典版本取第一个分类的版本号
func (p *Pack) Run(ctx context.Context) (*PackResult, error) {
	if len(p.cfg.Categories) == 0 {
		return nil, fmt.Errorf("no categories configured")
	}

	record, err := p.cfg.Versions.Load()
	if err != nil {
		return nil, err
	}
	ver := record.Source(p.cfg.Categories[0]).Version
	if ver == "" {
		return nil, fmt.Errorf("%s has no synced version: %w", p.cfg.Categories[0], models.ErrNoVersion)
	}

	result := &PackResult{Version: ver, Entries: make(map[string]int)}

	run := p.cfg.Tracker.Start("", models.StageMerge, ver)
	merged, err := p.cfg.Merger.Merge(p.cfg.DictDir)
	if err != nil {
		p.cfg.Tracker.Finish(run, 0, nil, err)
		return nil, models.NewResourceError(models.StageMerge, "", err)
	}
	p.cfg.Tracker.Finish(run, merged.Total, map[string]int{
		"main":     len(merged.Main),
		"extended": len(merged.Extended),
		"rare":     len(merged.Rare),
	}, nil)
	result.Merge = merged

	// 扩展词典中常用长词与生僻词之间以空行分隔
	extWords := make([]string, 0, len(merged.Extended)+1+len(merged.Rare))
	extWords = append(extWords, merged.Extended...)
	extWords = append(extWords, "")
	extWords = append(extWords, merged.Rare...)

	dicts := []struct {
		name  string
		words []string
	}{
		{p.cfg.MainName, merged.Main},
		{p.cfg.ExtName, extWords},
	}

	for _, d := range dicts {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		run := p.cfg.Tracker.Start("", models.StageRomanize, ver)
		entries := p.cfg.Romanizer.Entries(d.words)
		p.cfg.Tracker.Finish(run, len(entries), nil, nil)

		run = p.cfg.Tracker.Start("", models.StageWrite, ver)
		file, err := rime.Write(p.cfg.OutputDir, rime.Dict{Name: d.name, Version: ver, Entries: entries})
		p.cfg.Tracker.Finish(run, len(entries), nil, err)
		if err != nil {
			return result, models.NewResourceError(models.StageWrite, "", err)
		}

		result.Files = append(result.Files, file)
		result.Entries[d.name] = countWords(entries)
	}

	if p.cfg.Publisher != nil {
		published, err := p.publish(ver, result.Files)
		if err != nil {
			return result, err
		}
		result.Published = published
	}

	p.log.WithFields(logrus.Fields{
		logging.FieldVersion: ver,
		"files":              result.Files,
		"published":          len(result.Published),
	}).Info("Pack completed")
	return result, nil
}

// publish 上传词典文件，对象名为 <version>/<file>
func (p *Pack) publish(ver string, files []string) ([]storage.FileInfo, error) {
	run := p.cfg.Tracker.Start("", models.StagePublish, ver)

	var out []storage.FileInfo
	for _, file := range files {
		info, err := p.upload(ver, file)
		if err != nil {
			p.cfg.Tracker.Finish(run, len(out), nil, err)
			return out, models.NewTransientError(models.StagePublish, "", err)
		}
		p.log.WithField(logging.FieldFile, info.Name).Info("Published dictionary")
		out = append(out, info)
	}

	p.cfg.Tracker.Finish(run, len(out), nil, nil)
	return out, nil
}

func (p *Pack) upload(ver, file string) (storage.FileInfo, error) {
	f, err := os.Open(file)
	if err != nil {
		return storage.FileInfo{}, err
	}
	defer f.Close()
	return p.cfg.Publisher.Save(f, path.Join(ver, filepath.Base(file)))
}

// countWords 统计非分隔条目的数量
func countWords(entries []models.DictionaryEntry) int {
	n := 0
	for _, e := range entries {
		if !e.IsSeparator() {
			n++
		}
	}
	return n
}
