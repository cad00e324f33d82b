package logging

import (
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var log = logrus.New()

// 初始化日志配置
func init() {
	log.SetOutput(os.Stdout)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	// 根据环境变量设置日志级别
	if os.Getenv("DEBUG") == "true" {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.InfoLevel)
	}
}

// Config 日志配置
type Config struct {
	Level      string // 日志级别：debug/info/warn/error
	Format     string // 输出格式：text 或 json
	File       string // 日志文件路径，为空时只输出到标准输出
	MaxSize    int    // 单个日志文件最大尺寸（MB）
	MaxBackups int    // 保留的旧日志文件数量
	MaxAge     int    // 旧日志文件保留天数
}

// Setup 根据配置设置全局日志
func Setup(cfg Config) *logrus.Logger {
	SetLevel(cfg.Level)

	if cfg.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339,
		})
	}

	if cfg.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
		}
		log.SetOutput(io.MultiWriter(os.Stdout, rotator))
	}

	return log
}

// SetLevel 设置日志级别，无法识别时使用info
func SetLevel(level string) {
	switch level {
	case "debug":
		log.SetLevel(logrus.DebugLevel)
	case "info":
		log.SetLevel(logrus.InfoLevel)
	case "warn":
		log.SetLevel(logrus.WarnLevel)
	case "error":
		log.SetLevel(logrus.ErrorLevel)
	default:
		log.SetLevel(logrus.InfoLevel)
	}
}

// 常用日志字段
const (
	FieldCategory = "category" // 数据源分类
	FieldBucket   = "bucket"   // 词条桶
	FieldStage    = "stage"    // 流水线阶段
	FieldFile     = "file"     // 文件路径
	FieldDir      = "dir"      // 目录
	FieldVersion  = "version"  // 数据版本
	FieldCount    = "count"    // 数量
	FieldWord     = "word"     // 词条
	FieldError    = "error"    // 错误信息
)

// GetLogger 返回全局日志实例
func GetLogger() *logrus.Logger {
	return log
}
