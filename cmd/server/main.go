package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/fyerfyer/rime-zhwiki/api"
	"github.com/fyerfyer/rime-zhwiki/api/handler"
	"github.com/fyerfyer/rime-zhwiki/config"
	"github.com/fyerfyer/rime-zhwiki/internal/database"
	"github.com/fyerfyer/rime-zhwiki/internal/logging"
	"github.com/fyerfyer/rime-zhwiki/internal/pipeline"
	"github.com/fyerfyer/rime-zhwiki/internal/repository"
	"github.com/fyerfyer/rime-zhwiki/internal/version"
)

const shutdownTimeout = 10 * time.Second

// 命令行参数
type options struct {
	Config   string // 版本记录文件
	Settings string // 配置文件
	Port     int    // 监听端口，0表示使用配置
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
	if opts.Port > 0 {
		settings.Server.Port = opts.Port
	}

	logger := logging.Setup(logging.Config{
		Level:      settings.Log.Level,
		Format:     settings.Log.Format,
		File:       settings.Log.File,
		MaxSize:    settings.Log.MaxSize,
		MaxBackups: settings.Log.MaxBackups,
		MaxAge:     settings.Log.MaxAge,
	})

	if settings.Server.Mode != "" {
		gin.SetMode(settings.Server.Mode)
	}

	// 运行记录库可选，未启用时运行记录接口返回503
	var runs repository.RunRepository
	if settings.Database.Enable {
		db, err := database.Setup(database.FromSettings(settings.Database), logger)
		if err != nil {
			logger.Fatalf("Failed to initialize run ledger: %v", err)
		}
		defer database.Close(db)
		runs = repository.NewRunRepository(db)
	}

	publisher, err := pipeline.SetupPublisher(settings.Storage)
	if err != nil {
		logger.Fatalf("Failed to initialize storage: %v", err)
	}

	router := api.SetupRouter(
		handler.NewRunHandler(runs),
		handler.NewReleaseHandler(
			version.NewFileStore(opts.Config, settings.Source.Categories),
			settings.Source.Categories,
			publisher,
		),
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", settings.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.WithField("addr", srv.Addr).Info("Starting status server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}
	logger.Info("Server exited")
}

// parseFlags 解析命令行参数
func parseFlags() options {
	var opts options

	flag.StringVar(&opts.Config, "config", version.DefaultPath, "Version record file")
	flag.StringVar(&opts.Settings, "settings", "settings.yaml", "Settings file")
	flag.IntVar(&opts.Port, "port", 0, "Listen port, overrides server.port")
	flag.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")

	flag.Parse()
	return opts
}
