package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/fyerfyer/rime-zhwiki/config"
	"github.com/fyerfyer/rime-zhwiki/internal/cache"
	"github.com/fyerfyer/rime-zhwiki/internal/logging"
	"github.com/fyerfyer/rime-zhwiki/internal/merge"
	"github.com/fyerfyer/rime-zhwiki/internal/pipeline"
	"github.com/fyerfyer/rime-zhwiki/internal/romanize"
	"github.com/fyerfyer/rime-zhwiki/internal/version"
	"github.com/fyerfyer/rime-zhwiki/pkg/storage"
)

// 命令行参数
type options struct {
	Config   string // 版本记录文件
	DictDir  string // 词典分片目录
	Output   string // 输出目录
	Settings string // 配置文件
	Publish  bool   // 是否发布到存储
	LogLevel string // 日志级别
}

func main() {
	opts := parseFlags()

	settings, err := config.Load(opts.Settings)
	if err != nil {
		logrus.Fatalf("Failed to load settings: %v", err)
	}
	if opts.LogLevel != "" {
		settings.Log.Level = opts.LogLevel
	}

	logger := logging.Setup(logging.Config{
		Level:      settings.Log.Level,
		Format:     settings.Log.Format,
		File:       settings.Log.File,
		MaxSize:    settings.Log.MaxSize,
		MaxBackups: settings.Log.MaxBackups,
		MaxAge:     settings.Log.MaxAge,
	})
	logger.Info("Starting pack")

	tracker, closeDB, err := pipeline.SetupTracker(settings.Database, pipeline.CommandPack, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize run ledger: %v", err)
	}
	defer closeDB()

	merger, err := setupMerger(settings.Source.Categories, settings.Pipeline)
	if err != nil {
		logger.Fatalf("Failed to initialize merger: %v", err)
	}

	romanizer := setupRomanizer(settings.Cache, logger)

	var publisher storage.Storage
	if opts.Publish {
		publisher, err = pipeline.SetupPublisher(settings.Storage)
		if err != nil {
			logger.Fatalf("Failed to initialize publisher: %v", err)
		}
	}

	pack := pipeline.NewPack(pipeline.PackConfig{
		Categories: settings.Source.Categories,
		DictDir:    opts.DictDir,
		OutputDir:  opts.Output,
		MainName:   settings.Dict.MainName,
		ExtName:    settings.Dict.ExtName,
		Versions:   version.NewFileStore(opts.Config, settings.Source.Categories),
		Merger:     merger,
		Romanizer:  romanizer,
		Publisher:  publisher,
		Tracker:    tracker,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := pack.Run(ctx)
	if err != nil {
		logger.WithError(err).Error("Pack failed")
		closeDB()
		os.Exit(1)
	}
	logger.WithField("files", result.Files).Info("Pack completed")
}

// parseFlags 解析命令行参数
func parseFlags() options {
	var opts options

	flag.StringVar(&opts.Config, "config", version.DefaultPath, "Version record file")
	flag.StringVar(&opts.DictDir, "dict", "dict", "Directory of classified word shards")
	flag.StringVar(&opts.Output, "output", "release", "Output directory for dictionaries")
	flag.StringVar(&opts.Settings, "settings", "settings.yaml", "Settings file")
	flag.BoolVar(&opts.Publish, "publish", false, "Upload dictionaries to the configured storage")
	flag.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")

	flag.Parse()
	return opts
}

// setupMerger 创建合并器，配置了补充字表文件时替换内置字表
func setupMerger(categories []string, cfg config.PipelineConfig) (*merge.Merger, error) {
	opts := []merge.Option{
		merge.WithBucket(cfg.MergeBucket),
		merge.WithDenylist(merge.Denylist(cfg.Denylist)),
		merge.WithMainMaxLength(cfg.MainMaxLength),
	}
	if cfg.SupplementalFile != "" {
		runes, err := merge.LoadSupplemental(cfg.SupplementalFile)
		if err != nil {
			return nil, err
		}
		opts = append(opts, merge.WithSupplemental(runes))
	}
	return merge.NewMerger(categories, opts...), nil
}

// setupRomanizer 创建注音器，缓存不可用时降级为不缓存
func setupRomanizer(cfg config.CacheConfig, logger *logrus.Logger) *romanize.Romanizer {
	opts := []romanize.Option{romanize.WithLogger(logger)}

	c, err := cache.Setup(cfg)
	if err != nil {
		logger.WithError(err).Warn("Reading cache unavailable, continuing without cache")
	} else if c != nil {
		opts = append(opts, romanize.WithCache(c, 0))
	}
	return romanize.NewRomanizer(romanize.NewPinyinLookup(), opts...)
}
