package merge

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/rangetable"

	"github.com/fyerfyer/rime-zhwiki/internal/classify"
)

// 《通用规范汉字表》中不在基本区的规范字，每行一个
//
//go:embed data/supplemental.txt
var supplementalData string

// DefaultSupplemental 返回内置的补充规范字
func DefaultSupplemental() []rune {
	return parseSupplemental(supplementalData)
}

// LoadSupplemental 从文件读取补充规范字
func LoadSupplemental(path string) ([]rune, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read supplemental charset: %w", err)
	}
	runes := parseSupplemental(string(data))
	if len(runes) == 0 {
		return nil, fmt.Errorf("supplemental charset %s is empty", path)
	}
	return runes, nil
}

// 每行取第一个字符，忽略空行和#注释
func parseSupplemental(data string) []rune {
	var out []rune
	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		r, _ := utf8.DecodeRuneInString(line)
		if r != utf8.RuneError {
			out = append(out, r)
		}
	}
	return out
}

// CommonTable 常用字表：〇、基本区汉字以及补充规范字
func CommonTable(supplemental []rune) *unicode.RangeTable {
	core := classify.NewTable(append(
		append([]classify.Range{}, classify.IdeographicZero...),
		classify.CJKUnified...,
	))
	if len(supplemental) == 0 {
		return core
	}
	return rangetable.Merge(core, rangetable.New(supplemental...))
}
