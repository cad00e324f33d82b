package merge

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/fyerfyer/rime-zhwiki/internal/chunk"
	"github.com/fyerfyer/rime-zhwiki/internal/logging"
)

// 默认参数
const (
	DefaultBucket        = "main"
	DefaultMainMaxLength = 4
)

// DefaultDenylist 默认忽略的词尾
var DefaultDenylist = Denylist{"列表", "对照表"}

// Denylist 词尾黑名单
type Denylist []string

// Ignored 判断词条是否应被忽略
// 仅对长度大于2的词生效，避免误伤词尾本身
func (d Denylist) Ignored(word string) bool {
	if utf8.RuneCountInString(word) <= 2 {
		return false
	}
	for _, suffix := range d {
		if suffix != "" && strings.HasSuffix(word, suffix) {
			return true
		}
	}
	return false
}

// Filter 去掉黑名单词条
func (d Denylist) Filter(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if !d.Ignored(w) {
			out = append(out, w)
		}
	}
	return out
}

// Result 合并结果
type Result struct {
	Main     []string // 常用短词
	Extended []string // 常用长词
	Rare     []string // 含生僻字的词
	Total    int      // 去重后的词条总数
}

// Merger 跨分类词典合并器
type Merger struct {
	categories    []string
	bucket        string
	denylist      Denylist
	common        *unicode.RangeTable
	mainMaxLength int
	log           *logrus.Logger
}

// Option 合并器配置选项
type Option func(*Merger)

// WithBucket 设置读取的分类桶
func WithBucket(bucket string) Option {
	return func(m *Merger) {
		m.bucket = bucket
	}
}

// WithDenylist 设置词尾黑名单
func WithDenylist(d Denylist) Option {
	return func(m *Merger) {
		m.denylist = d
	}
}

// WithSupplemental 设置补充规范字
func WithSupplemental(runes []rune) Option {
	return func(m *Merger) {
		m.common = CommonTable(runes)
	}
}

// WithMainMaxLength 设置主词典最大词长
func WithMainMaxLength(n int) Option {
	return func(m *Merger) {
		m.mainMaxLength = n
	}
}

// WithLogger 设置日志
func WithLogger(log *logrus.Logger) Option {
	return func(m *Merger) {
		m.log = log
	}
}

// NewMerger 创建合并器
func NewMerger(categories []string, opts ...Option) *Merger {
	m := &Merger{
		categories:    categories,
		bucket:        DefaultBucket,
		denylist:      DefaultDenylist,
		mainMaxLength: DefaultMainMaxLength,
		log:           logging.GetLogger(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.common == nil {
		m.common = CommonTable(DefaultSupplemental())
	}
	return m
}

// Collect 读取各分类下同名桶的所有分片，去重后返回
func (m *Merger) Collect(dataDir string) ([]string, error) {
	seen := make(map[string]struct{})
	var words []string
	files := 0

	for _, cate := range m.categories {
		dir := filepath.Join(dataDir, cate, m.bucket)
		shards, err := chunk.Files(dir)
		if err != nil {
			return nil, err
		}
		files += len(shards)
		for _, shard := range shards {
			err := chunk.EachLine(shard, func(line string) error {
				if _, ok := seen[line]; !ok {
					seen[line] = struct{}{}
					words = append(words, line)
				}
				return nil
			})
			if err != nil {
				return nil, fmt.Errorf("failed to collect %s: %w", cate, err)
			}
		}
	}

	m.log.WithFields(logrus.Fields{
		logging.FieldDir:    dataDir,
		logging.FieldBucket: m.bucket,
		"files":             files,
		logging.FieldCount:  len(words),
	}).Info("Collected words")
	return words, nil
}

// IsCommon 判断词条是否只由常用字组成
func (m *Merger) IsCommon(word string) bool {
	if word == "" {
		return false
	}
	for _, r := range word {
		if !unicode.Is(m.common, r) {
			return false
		}
	}
	return true
}

// SplitCommonRare 按是否只含常用字拆分
func (m *Merger) SplitCommonRare(words []string) (common, rare []string) {
	for _, w := range words {
		if m.IsCommon(w) {
			common = append(common, w)
		} else {
			rare = append(rare, w)
		}
	}
	return common, rare
}

// Partition 按词长拆分为主词典和扩展词典
func (m *Merger) Partition(words []string) (main, extended []string) {
	for _, w := range words {
		if utf8.RuneCountInString(w) <= m.mainMaxLength {
			main = append(main, w)
		} else {
			extended = append(extended, w)
		}
	}
	return main, extended
}

// Merge 收集、过滤、拆分并排序
func (m *Merger) Merge(dataDir string) (*Result, error) {
	words, err := m.Collect(dataDir)
	if err != nil {
		return nil, err
	}

	// 词尾过滤作用于全部词条，先于常用/生僻划分
	kept := m.denylist.Filter(words)
	common, rare := m.SplitCommonRare(kept)
	main, extended := m.Partition(common)

	res := &Result{
		Main:     SortWords(main),
		Extended: SortWords(extended),
		Rare:     SortWords(rare),
		Total:    len(words),
	}

	m.log.WithFields(logrus.Fields{
		"main":     len(res.Main),
		"extended": len(res.Extended),
		"rare":     len(res.Rare),
		"ignored":  len(words) - len(kept),
	}).Info("Merged words")
	return res, nil
}

// SortWords 按字数、再按字典序排序，原地排序并返回
func SortWords(words []string) []string {
	sort.SliceStable(words, func(i, j int) bool {
		li, lj := utf8.RuneCountInString(words[i]), utf8.RuneCountInString(words[j])
		if li != lj {
			return li < lj
		}
		return words[i] < words[j]
	})
	return words
}
