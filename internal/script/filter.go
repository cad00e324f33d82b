package script

import (
	"errors"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/fyerfyer/rime-zhwiki/internal/logging"
	"github.com/fyerfyer/rime-zhwiki/internal/models"
)

// Stats 过滤统计
type Stats struct {
	In            int `json:"in"`
	Out           int `json:"out"`
	Failed        int `json:"failed"`
	NotSimplified int `json:"not_simplified"`
	TooShort      int `json:"too_short"`
	Duplicate     int `json:"duplicate"`
}

// Filter 字形规范化过滤器
type Filter struct {
	converter Converter
	minLength int
	log       *logrus.Logger
}

// Option 过滤器配置选项
type Option func(*Filter)

// WithMinLength 设置最短词长
func WithMinLength(n int) Option {
	return func(f *Filter) {
		f.minLength = n
	}
}

// WithLogger 设置日志
func WithLogger(log *logrus.Logger) Option {
	return func(f *Filter) {
		f.log = log
	}
}

// NewFilter 创建过滤器
func NewFilter(converter Converter, opts ...Option) *Filter {
	f := &Filter{
		converter: converter,
		minLength: 2,
		log:       logging.GetLogger(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Apply 转换并过滤词条，保持首次出现的顺序
// 单个词条失败只会被丢弃，不会中断整批处理
func (f *Filter) Apply(words []string) ([]string, Stats) {
	stats := Stats{In: len(words)}
	seen := make(map[string]struct{}, len(words))
	out := make([]string, 0, len(words))

	for _, word := range words {
		canonical, err := f.canonical(word)
		if err != nil {
			switch {
			case errors.Is(err, models.ErrNotSimplified):
				stats.NotSimplified++
			case errors.Is(err, models.ErrTooShort):
				stats.TooShort++
			default:
				stats.Failed++
			}
			f.log.WithFields(logrus.Fields{
				logging.FieldWord:  word,
				logging.FieldError: err,
			}).Debug("Dropped word")
			continue
		}

		if _, ok := seen[canonical]; ok {
			stats.Duplicate++
			f.log.WithFields(logrus.Fields{
				logging.FieldWord:  word,
				logging.FieldError: models.ErrDuplicate,
			}).Debug("Dropped word")
			continue
		}
		seen[canonical] = struct{}{}
		out = append(out, canonical)
	}

	stats.Out = len(out)
	return out, stats
}

func (f *Filter) canonical(word string) (string, error) {
	converted, err := f.converter.Convert(word)
	if err != nil {
		return "", err
	}
	if !IsSimplified(f.converter, converted) {
		return "", models.ErrNotSimplified
	}
	if utf8.RuneCountInString(converted) < f.minLength {
		return "", models.ErrTooShort
	}
	return converted, nil
}
