package romanize

import (
	"github.com/mozillazg/go-pinyin"
)

// Lookup 读音查询，每个字返回一个音节
type Lookup interface {
	Readings(word string) []string
}

// PinyinLookup 基于go-pinyin的不带声调拼音查询
// 非汉字会被丢弃，因此音节数不足的词条会在校验时被拒绝
type PinyinLookup struct {
	args pinyin.Args
}

// NewPinyinLookup 创建拼音查询
func NewPinyinLookup() *PinyinLookup {
	args := pinyin.NewArgs()
	args.Style = pinyin.Normal
	args.Heteronym = false
	return &PinyinLookup{args: args}
}

// Readings 返回逐字读音
func (p *PinyinLookup) Readings(word string) []string {
	return pinyin.LazyPinyin(word, p.args)
}
