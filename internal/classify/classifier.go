package classify

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/fyerfyer/rime-zhwiki/internal/chunk"
	"github.com/fyerfyer/rime-zhwiki/internal/logging"
	"github.com/fyerfyer/rime-zhwiki/internal/models"
)

// DefaultMinLength 默认最短词长
const DefaultMinLength = 2

// 标题末尾的限定词后缀，如 "猫_(动物)"
var qualifierPattern = regexp.MustCompile(`_\(([^)]+)\)$`)

// Rule 分类规则：谓词命中即归入对应分类
type Rule struct {
	Category models.Category
	Match    func(string) bool
}

// DefaultRules 按优先级排列的分类规则
// 各分类的字符集依次放宽，必须从最窄的开始判定
var DefaultRules = []Rule{
	{Category: models.CategoryLatin, Match: isLatinToken},
	{Category: models.CategoryCommon, Match: allRunes(IsHan)},
	{Category: models.CategoryExtended, Match: withHan(allRunes(isExtendedRune))},
	{Category: models.CategoryAnnotated, Match: withHan(allRunes(isAnnotatedRune))},
}

// Classifier 标题分类器
type Classifier struct {
	minLength int
	rules     []Rule
	log       *logrus.Logger
}

// Option 分类器配置选项
type Option func(*Classifier)

// WithMinLength 设置最短词长
func WithMinLength(n int) Option {
	return func(c *Classifier) {
		c.minLength = n
	}
}

// WithRules 替换分类规则
func WithRules(rules []Rule) Option {
	return func(c *Classifier) {
		c.rules = rules
	}
}

// WithLogger 设置日志
func WithLogger(log *logrus.Logger) Option {
	return func(c *Classifier) {
		c.log = log
	}
}

// NewClassifier 创建分类器
func NewClassifier(opts ...Option) *Classifier {
	c := &Classifier{
		minLength: DefaultMinLength,
		rules:     DefaultRules,
		log:       logging.GetLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Candidates 返回一行标题派生出的候选词：原标题及其每个限定词
// 连续的限定词从末尾逐个剥离，每一层都作为独立候选词，如 A_(b)_(c) 得到 A_(b)_(c)、c、b
func Candidates(line string) []string {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	out := []string{line}
	rest := line
	for {
		m := qualifierPattern.FindStringSubmatchIndex(rest)
		if m == nil {
			break
		}
		out = append(out, rest[m[2]:m[3]])
		rest = rest[:m[0]]
	}
	return out
}

// Clean 去掉限定词后缀并把下划线还原为空格
func Clean(token string) string {
	token = strings.TrimSpace(token)
	for {
		loc := qualifierPattern.FindStringIndex(token)
		if loc == nil {
			break
		}
		token = token[:loc[0]]
	}
	return strings.TrimSpace(strings.ReplaceAll(token, "_", " "))
}

// Classify 对单个候选词分类
// 清洗后长度不足时返回false
func (c *Classifier) Classify(token string) (models.ClassifiedWord, bool) {
	text := Clean(token)
	if utf8.RuneCountInString(text) < c.minLength {
		return models.ClassifiedWord{}, false
	}

	for _, r := range c.rules {
		if r.Match(text) {
			return models.ClassifiedWord{Text: text, Category: r.Category}, true
		}
	}
	return models.ClassifiedWord{Text: text, Category: models.CategoryUnclassified}, true
}

// ClassifyLine 对一行标题的所有候选词分类，各候选词独立归类
func (c *Classifier) ClassifyLine(line string) []models.ClassifiedWord {
	var out []models.ClassifiedWord
	for _, candidate := range Candidates(line) {
		if w, ok := c.Classify(candidate); ok {
			out = append(out, w)
		} else {
			c.log.WithField(logging.FieldWord, candidate).Debug("Rejected short candidate")
		}
	}
	return out
}

// ClassifyDir 逐个读取目录下的分片文件并分类
func (c *Classifier) ClassifyDir(dir string) (*Buckets, error) {
	files, err := chunk.Files(dir)
	if err != nil {
		return nil, err
	}
	c.log.WithFields(logrus.Fields{
		logging.FieldDir:   dir,
		logging.FieldCount: len(files),
	}).Info("Classifying shards")

	buckets := NewBuckets()
	for _, file := range files {
		if err := c.ClassifyFile(file, buckets); err != nil {
			return nil, err
		}
	}
	return buckets, nil
}

// ClassifyFile 对单个分片文件分类，结果追加到buckets
func (c *Classifier) ClassifyFile(path string, buckets *Buckets) error {
	c.log.WithField(logging.FieldFile, path).Debug("Reading shard")
	return chunk.EachLine(path, func(line string) error {
		for _, w := range c.ClassifyLine(line) {
			buckets.Add(w)
		}
		return nil
	})
}

func isLatinToken(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !isLatinRune(r) {
			return false
		}
	}
	return true
}

func isLatinRune(r rune) bool {
	if r < utf8.RuneSelf {
		return unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' || unicode.Is(asciiPunct, r)
	}
	return unicode.Is(unicode.Latin, r)
}

func isExtendedRune(r rune) bool {
	return IsHan(r) || unicode.Is(connectors, r)
}

func isAnnotatedRune(r rune) bool {
	return IsHan(r) ||
		r == ' ' || r == '-' ||
		unicode.Is(asciiPunct, r) ||
		unicode.Is(cjkPunct, r) ||
		unicode.Is(unicode.Latin, r) ||
		unicode.IsDigit(r)
}

func allRunes(pred func(rune) bool) func(string) bool {
	return func(s string) bool {
		if s == "" {
			return false
		}
		for _, r := range s {
			if !pred(r) {
				return false
			}
		}
		return true
	}
}

func withHan(pred func(string) bool) func(string) bool {
	return func(s string) bool {
		return strings.IndexFunc(s, IsHan) >= 0 && pred(s)
	}
}
