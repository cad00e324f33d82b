package cache

import (
	"fmt"
	"strings"
	"time"

	"github.com/fyerfyer/rime-zhwiki/config"
)

// Cache 读音缓存接口
type Cache interface {
	Get(key string) (value string, found bool, err error)
	Set(key string, value string, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Factory 缓存工厂函数类型
type Factory func(config Config) (Cache, error)

// 注册的缓存实现
var registry = make(map[string]Factory)

// RegisterCache 注册缓存实现
func RegisterCache(name string, factory Factory) {
	registry[name] = factory
}

// NewCache 创建缓存实例，未知类型回落到内存缓存
func NewCache(config Config) (Cache, error) {
	if factory, ok := registry[config.Type]; ok {
		return factory(config)
	}
	return NewMemoryCache(config)
}

// Config 缓存配置
type Config struct {
	// 缓存类型: "memory" 或 "redis"
	Type string
	// Redis连接地址
	RedisAddr string
	// Redis密码
	RedisPassword string
	// Redis数据库编号
	RedisDB int
	// 键前缀，Clear只清理该前缀下的键
	Namespace string
	// 默认过期时间，0为永不过期
	DefaultTTL time.Duration
	// 自动清理间隔 (仅内存缓存使用)
	CleanupInterval time.Duration
}

// DefaultNamespace 默认键前缀
const DefaultNamespace = "rime-zhwiki"

// DefaultConfig 返回默认缓存配置
func DefaultConfig() Config {
	return Config{
		Type:            "memory",
		Namespace:       DefaultNamespace,
		CleanupInterval: 10 * time.Minute,
	}
}

// FromSettings 由应用配置生成缓存配置
func FromSettings(s config.CacheConfig) Config {
	cfg := DefaultConfig()
	if s.Type != "" {
		cfg.Type = s.Type
	}
	cfg.RedisAddr = s.Address
	cfg.RedisPassword = s.Password
	cfg.RedisDB = s.DB
	cfg.DefaultTTL = time.Duration(s.TTL) * time.Second
	return cfg
}

// Setup 按应用配置创建缓存，未启用时返回nil
func Setup(s config.CacheConfig) (Cache, error) {
	if !s.Enable {
		return nil, nil
	}
	c, err := NewCache(FromSettings(s))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s cache: %w", s.Type, err)
	}
	return c, nil
}

// Key 生成缓存键，如 Key("pinyin", "中国") 得到 "pinyin:中国"
func Key(prefix string, parts ...string) string {
	if len(parts) == 0 {
		return prefix
	}
	return prefix + ":" + strings.Join(parts, ":")
}

func namespaced(namespace, key string) string {
	if namespace == "" {
		return key
	}
	return namespace + ":" + key
}
