package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 应用程序配置结构体
type Config struct {
	Source   SourceConfig   `mapstructure:"source"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Dict     DictConfig     `mapstructure:"dict"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Database DatabaseConfig `mapstructure:"database"`
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
}

// SourceConfig 数据源配置
type SourceConfig struct {
	Categories      []string      `mapstructure:"categories" validate:"required,min=1,dive,required"` // 数据源分类
	IndexURL        string        `mapstructure:"index_url" validate:"required"`                      // 版本索引页URL模板，{cate}为分类
	FileURL         string        `mapstructure:"file_url" validate:"required"`                       // 标题文件URL模板，{cate}/{date}
	IndexTimeout    time.Duration `mapstructure:"index_timeout"`                                      // 索引页请求超时
	DownloadTimeout time.Duration `mapstructure:"download_timeout"`                                   // 下载超时，0为不限制
	UserAgent       string        `mapstructure:"user_agent"`
}

// PipelineConfig 处理流水线配置
type PipelineConfig struct {
	LinesPerFile     int      `mapstructure:"lines_per_file" validate:"gt=0"`  // 每个分片文件的行数
	MinWordLength    int      `mapstructure:"min_word_length" validate:"gt=0"` // 最短词长
	Buckets          []string `mapstructure:"buckets" validate:"min=1"`        // sync阶段落盘的分类桶
	MergeBucket      string   `mapstructure:"merge_bucket" validate:"required"`
	MainMaxLength    int      `mapstructure:"main_max_length" validate:"gt=0"` // 主词典最大词长
	Denylist         []string `mapstructure:"denylist"`                        // 忽略的词尾
	SupplementalFile string   `mapstructure:"supplemental_file"`               // 补充常用字表，为空使用内置字表
}

// DictConfig 词典输出配置
type DictConfig struct {
	MainName string `mapstructure:"main_name" validate:"required"`
	ExtName  string `mapstructure:"ext_name" validate:"required"`
}

// CacheConfig 读音缓存配置
type CacheConfig struct {
	Enable   bool   `mapstructure:"enable"`                                       // 是否启用缓存
	Type     string `mapstructure:"type" validate:"omitempty,oneof=memory redis"` // 缓存类型：memory 或 redis
	Address  string `mapstructure:"address"`                                      // Redis地址
	Password string `mapstructure:"password"`                                     // Redis密码
	DB       int    `mapstructure:"db"`                                           // Redis数据库
	TTL      int    `mapstructure:"ttl"`                                          // 缓存TTL（秒）
}

// StorageConfig 发布存储配置
type StorageConfig struct {
	Type      string `mapstructure:"type" validate:"oneof=local minio"` // 存储类型：local 或 minio
	Path      string `mapstructure:"path"`                              // 本地存储路径
	Bucket    string `mapstructure:"bucket"`                            // MinIO桶名称
	Endpoint  string `mapstructure:"endpoint"`                          // MinIO端点
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"` // 是否使用SSL
}

// DatabaseConfig 运行记录数据库配置
type DatabaseConfig struct {
	Enable bool   `mapstructure:"enable"`
	Type   string `mapstructure:"type" validate:"omitempty,oneof=sqlite"` // 数据库类型
	DSN    string `mapstructure:"dsn"`                                    // 数据源名称
}

// ServerConfig 状态服务配置
type ServerConfig struct {
	Port int    `mapstructure:"port" validate:"gt=0,lte=65535"`
	Mode string `mapstructure:"mode" validate:"omitempty,oneof=debug release test"` // gin运行模式
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
	Format     string `mapstructure:"format" validate:"omitempty,oneof=text json"`
	File       string `mapstructure:"file"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
}

var validate = validator.New()

// Load 从文件和环境变量加载配置
// 配置文件不存在时使用默认值
func Load(configPath string) (*Config, error) {
	var config Config

	// .env 仅用于本地开发，不存在时忽略
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Warning: Could not load .env: %v", err)
	}

	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
				log.Printf("Warning: Config file not found at %s, using defaults", configPath)
			} else {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	// 支持环境变量覆盖，如 RIME_PIPELINE_LINES_PER_FILE
	v.SetEnvPrefix("rime")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	resConfig := processEnvironmentVariables(&config)

	if err := resConfig.Validate(); err != nil {
		return nil, err
	}

	return resConfig, nil
}

// Default 返回默认配置
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var config Config
	// 默认值总能解析
	_ = v.Unmarshal(&config)
	return &config
}

// Validate 校验配置
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// processEnvironmentVariables 处理 ${VAR} 形式的配置值
func processEnvironmentVariables(cfg *Config) *Config {
	cfg.Storage.AccessKey = expandEnv(cfg.Storage.AccessKey)
	cfg.Storage.SecretKey = expandEnv(cfg.Storage.SecretKey)
	cfg.Cache.Password = expandEnv(cfg.Cache.Password)
	return cfg
}

func expandEnv(value string) string {
	if strings.HasPrefix(value, "${") && strings.HasSuffix(value, "}") {
		envVar := value[2 : len(value)-1]
		if envVal := os.Getenv(envVar); envVal != "" {
			return envVal
		}
	}
	return value
}

// setDefaults 设置配置的默认值
func setDefaults(v *viper.Viper) {
	// 数据源默认配置
	v.SetDefault("source.categories", []string{"zhwiki", "zhwiktionary"})
	v.SetDefault("source.index_url", "https://dumps.wikimedia.org/{cate}/")
	v.SetDefault("source.file_url", "https://dumps.wikimedia.org/{cate}/{date}/{cate}-{date}-all-titles-in-ns0.gz")
	v.SetDefault("source.index_timeout", "30s")
	v.SetDefault("source.download_timeout", "0s")
	v.SetDefault("source.user_agent", "rime-zhwiki/1.0")

	// 流水线默认配置
	v.SetDefault("pipeline.lines_per_file", 100000)
	v.SetDefault("pipeline.min_word_length", 2)
	v.SetDefault("pipeline.buckets", []string{"main", "more"})
	v.SetDefault("pipeline.merge_bucket", "main")
	v.SetDefault("pipeline.main_max_length", 4)
	v.SetDefault("pipeline.denylist", []string{"列表", "对照表"})
	v.SetDefault("pipeline.supplemental_file", "")

	// 词典默认配置
	v.SetDefault("dict.main_name", "zhwiki")
	v.SetDefault("dict.ext_name", "zhwiki-ext")

	// 缓存默认配置
	v.SetDefault("cache.enable", true)
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.address", "localhost:6379")
	v.SetDefault("cache.password", "")
	v.SetDefault("cache.db", 0)
	v.SetDefault("cache.ttl", 0)

	// 存储默认配置
	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.path", "./publish")
	v.SetDefault("storage.bucket", "rime-zhwiki")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.access_key", "")
	v.SetDefault("storage.secret_key", "")
	v.SetDefault("storage.use_ssl", false)

	// 数据库默认配置
	v.SetDefault("database.enable", false)
	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.dsn", "data/runs.db")

	// 服务默认配置
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")

	// 日志默认配置
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size", 50)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age", 28)
}
