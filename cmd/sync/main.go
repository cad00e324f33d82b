package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/fyerfyer/rime-zhwiki/config"
	"github.com/fyerfyer/rime-zhwiki/internal/chunk"
	"github.com/fyerfyer/rime-zhwiki/internal/classify"
	"github.com/fyerfyer/rime-zhwiki/internal/dumps"
	"github.com/fyerfyer/rime-zhwiki/internal/logging"
	"github.com/fyerfyer/rime-zhwiki/internal/pipeline"
	"github.com/fyerfyer/rime-zhwiki/internal/script"
	"github.com/fyerfyer/rime-zhwiki/internal/version"
	"github.com/fyerfyer/rime-zhwiki/pkg/storage"
)

// 命令行参数
type options struct {
	Date     string // 指定数据版本
	Config   string // 版本记录文件
	GzDir    string // 下载目录
	RawDir   string // 原始分片目录
	DictDir  string // 词典分片目录
	Lines    int    // 每个分片的行数
	Settings string // 配置文件
	LogLevel string // 日志级别

	set map[string]bool // 显式指定的参数
}

func main() {
	opts := parseFlags()

	settings, err := config.Load(opts.Settings)
	if err != nil {
		logrus.Fatalf("Failed to load settings: %v", err)
	}
	applyFlags(settings, opts)
	if err := settings.Validate(); err != nil {
		logrus.Fatalf("Invalid settings: %v", err)
	}

	logger := setupLogger(settings.Log)
	logger.WithField("date", opts.Date).Info("Starting sync")

	tracker, closeDB, err := pipeline.SetupTracker(settings.Database, pipeline.CommandSync, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize run ledger: %v", err)
	}
	defer closeDB()

	gzStore, err := storage.NewLocalStorage(storage.LocalConfig{Path: opts.GzDir})
	if err != nil {
		logger.Fatalf("Failed to initialize download storage: %v", err)
	}

	converter, err := script.NewOpenCC(script.DefaultConversion)
	if err != nil {
		logger.Fatalf("Failed to initialize converter: %v", err)
	}

	buckets, err := pipeline.ParseBuckets(settings.Pipeline.Buckets)
	if err != nil {
		logger.Fatalf("Invalid buckets: %v", err)
	}

	sync := pipeline.NewSync(pipeline.SyncConfig{
		Categories:   settings.Source.Categories,
		Buckets:      buckets,
		RawDir:       opts.RawDir,
		DictDir:      opts.DictDir,
		LinesPerFile: settings.Pipeline.LinesPerFile,
		Source: dumps.NewClient(dumps.Config{
			IndexURL:        settings.Source.IndexURL,
			FileURL:         settings.Source.FileURL,
			IndexTimeout:    settings.Source.IndexTimeout,
			DownloadTimeout: settings.Source.DownloadTimeout,
			UserAgent:       settings.Source.UserAgent,
		}, gzStore),
		Versions:   version.NewFileStore(opts.Config, settings.Source.Categories),
		Classifier: classify.NewClassifier(classify.WithMinLength(settings.Pipeline.MinWordLength)),
		Filter:     script.NewFilter(converter, script.WithMinLength(settings.Pipeline.MinWordLength)),
		Tracker:    tracker,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := sync.Run(ctx, pipeline.SyncOptions{Date: opts.Date})
	if err != nil {
		logger.WithError(err).Error("Sync failed")
		closeDB()
		os.Exit(1)
	}
	if !result.Updated {
		logger.Info("Dataset is up to date")
		return
	}
	logger.Info("Sync completed")
}

// parseFlags 解析命令行参数
func parseFlags() options {
	var opts options

	flag.StringVar(&opts.Date, "date", "", "Dump version (YYYYMMDD), latest if empty")
	flag.StringVar(&opts.Config, "config", version.DefaultPath, "Version record file")
	flag.StringVar(&opts.GzDir, "gz", "temp", "Directory for downloaded dumps")
	flag.StringVar(&opts.RawDir, "raw", "raw", "Directory for raw title shards")
	flag.StringVar(&opts.DictDir, "dict", "dict", "Directory for classified word shards")
	flag.IntVar(&opts.Lines, "lines", chunk.DefaultLinesPerFile, "Lines per shard")
	flag.StringVar(&opts.Settings, "settings", "settings.yaml", "Settings file")
	flag.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")

	flag.Parse()

	opts.set = make(map[string]bool)
	flag.Visit(func(f *flag.Flag) {
		opts.set[f.Name] = true
	})
	return opts
}

// applyFlags 显式指定的命令行参数覆盖配置文件
func applyFlags(settings *config.Config, opts options) {
	if opts.set["lines"] {
		settings.Pipeline.LinesPerFile = opts.Lines
	}
	if opts.LogLevel != "" {
		settings.Log.Level = opts.LogLevel
	}
}

// setupLogger 初始化日志
func setupLogger(cfg config.LogConfig) *logrus.Logger {
	return logging.Setup(logging.Config{
		Level:      cfg.Level,
		Format:     cfg.Format,
		File:       cfg.File,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
	})
}
