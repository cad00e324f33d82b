package pipeline

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/fyerfyer/rime-zhwiki/config"
	"github.com/fyerfyer/rime-zhwiki/internal/database"
	"github.com/fyerfyer/rime-zhwiki/internal/models"
	"github.com/fyerfyer/rime-zhwiki/internal/repository"
	"github.com/fyerfyer/rime-zhwiki/pkg/storage"
)

// SetupTracker 按配置打开运行记录库，未启用时返回空操作的记录器
func SetupTracker(cfg config.DatabaseConfig, command string, log *logrus.Logger) (*repository.Tracker, func(), error) {
	if !cfg.Enable {
		return repository.NewTracker(nil, command), func() {}, nil
	}

	db, err := database.Setup(database.FromSettings(cfg), log)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := database.Close(db); err != nil {
			log.WithError(err).Warn("Failed to close database")
		}
	}
	return repository.NewTracker(repository.NewRunRepository(db), command), closeFn, nil
}

// SetupPublisher 按配置创建发布存储
func SetupPublisher(cfg config.StorageConfig) (storage.Storage, error) {
	s, err := storage.NewStorage(storage.Config{
		Type:  storage.Type(cfg.Type),
		Local: storage.LocalConfig{Path: cfg.Path},
		Minio: storage.MinioConfig{
			Endpoint:  cfg.Endpoint,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			UseSSL:    cfg.UseSSL,
			Bucket:    cfg.Bucket,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s storage: %w", cfg.Type, err)
	}
	return s, nil
}

// ParseBuckets 解析需要落盘的桶名
func ParseBuckets(names []string) ([]models.Category, error) {
	out := make([]models.Category, 0, len(names))
	for _, name := range names {
		c, err := models.ParseCategory(name)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
