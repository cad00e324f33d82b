package romanize

import (
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fyerfyer/rime-zhwiki/internal/cache"
	"github.com/fyerfyer/rime-zhwiki/internal/logging"
	"github.com/fyerfyer/rime-zhwiki/internal/models"
)

const cachePrefix = "pinyin"

// Romanizer 为词条生成并校验读音
type Romanizer struct {
	lookup   Lookup
	cache    cache.Cache
	cacheTTL time.Duration
	log      *logrus.Logger
}

// Option 配置选项
type Option func(*Romanizer)

// WithCache 使用缓存保存查询结果
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(r *Romanizer) {
		r.cache = c
		r.cacheTTL = ttl
	}
}

// WithLogger 设置日志
func WithLogger(log *logrus.Logger) Option {
	return func(r *Romanizer) {
		r.log = log
	}
}

// NewRomanizer 创建注音器
func NewRomanizer(lookup Lookup, opts ...Option) *Romanizer {
	r := &Romanizer{
		lookup: lookup,
		log:    logging.GetLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Entry 为单个词生成词典条目
// 空词返回分隔条目；读音校验失败返回ErrReadingCount或ErrReadingAlphabet
func (r *Romanizer) Entry(word string) (models.DictionaryEntry, error) {
	if word == "" {
		return models.DictionaryEntry{}, nil
	}

	entry := models.DictionaryEntry{Word: word, Reading: r.reading(word)}
	if entry.Reading == "" {
		return models.DictionaryEntry{}, models.ErrReadingCount
	}
	if err := entry.Validate(); err != nil {
		return models.DictionaryEntry{}, err
	}
	return entry, nil
}

// Entries 批量生成条目，丢弃校验失败的词并保留分隔条目
func (r *Romanizer) Entries(words []string) []models.DictionaryEntry {
	out := make([]models.DictionaryEntry, 0, len(words))
	for _, w := range words {
		entry, err := r.Entry(w)
		if err != nil {
			r.log.WithFields(logrus.Fields{
				logging.FieldWord:  w,
				logging.FieldError: err,
			}).Debug("Ignored word")
			continue
		}
		out = append(out, entry)
	}

	r.log.WithFields(logrus.Fields{
		logging.FieldCount: len(out),
		"total":            len(words),
	}).Info("Romanized words")
	return out
}

// 缓存故障只记录日志，不影响注音
func (r *Romanizer) reading(word string) string {
	key := cache.Key(cachePrefix, word)
	if r.cache != nil {
		value, found, err := r.cache.Get(key)
		if err != nil {
			r.log.WithError(err).Warn("Failed to read reading cache")
		} else if found {
			return value
		}
	}

	reading := strings.Join(r.lookup.Readings(word), " ")

	if r.cache != nil {
		if err := r.cache.Set(key, reading, r.cacheTTL); err != nil {
			r.log.WithError(err).Warn("Failed to write reading cache")
		}
	}
	return reading
}
