package models

import "fmt"

// Category 词条分类
// 分类是封闭枚举，每个候选词恰好属于其中一个
type Category int

const (
	// CategoryUnclassified 未能通过任何判定的词条
	CategoryUnclassified Category = iota
	// CategoryCommon 纯汉字词条
	CategoryCommon
	// CategoryExtended 汉字加连字符、斜杠或间隔号
	CategoryExtended
	// CategoryAnnotated 汉字混合标点与拉丁字母
	CategoryAnnotated
	// CategoryLatin 不含汉字的拉丁字母/ASCII标点词条
	CategoryLatin
)

// AllCategories 按判定优先级之外的固定顺序列出所有分类
var AllCategories = []Category{
	CategoryCommon,
	CategoryExtended,
	CategoryAnnotated,
	CategoryLatin,
	CategoryUnclassified,
}

var categoryNames = map[Category]string{
	CategoryUnclassified: "unclassified",
	CategoryCommon:       "common",
	CategoryExtended:     "extended",
	CategoryAnnotated:    "annotated",
	CategoryLatin:        "latin",
}

// 分类在磁盘上对应的桶目录名
var bucketNames = map[Category]string{
	CategoryUnclassified: "unknown",
	CategoryCommon:       "main",
	CategoryExtended:     "more",
	CategoryAnnotated:    "extra",
	CategoryLatin:        "en",
}

// String 返回分类名称
func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return fmt.Sprintf("category(%d)", int(c))
}

// Bucket 返回分类对应的桶目录名
func (c Category) Bucket() string {
	if name, ok := bucketNames[c]; ok {
		return name
	}
	return bucketNames[CategoryUnclassified]
}

// ParseCategory 根据分类名或桶名解析分类
func ParseCategory(name string) (Category, error) {
	for c, n := range categoryNames {
		if n == name {
			return c, nil
		}
	}
	for c, n := range bucketNames {
		if n == name {
			return c, nil
		}
	}
	return CategoryUnclassified, fmt.Errorf("unknown category: %s", name)
}

// ClassifiedWord 已分类的词条
type ClassifiedWord struct {
	Text     string   // 清洗后的文本
	Category Category // 所属分类
}
