package models

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var readingPattern = regexp.MustCompile(`^[a-z ]+$`)

// DictionaryEntry 词典条目
// Reading 为空格分隔的拼音，每个汉字对应一个音节
type DictionaryEntry struct {
	Word    string
	Reading string
}

// IsSeparator 空条目表示分节空行
func (e DictionaryEntry) IsSeparator() bool {
	return e.Word == "" && e.Reading == ""
}

// Validate 校验音节数与字数一致且读音只含小写字母和空格
func (e DictionaryEntry) Validate() error {
	if !readingPattern.MatchString(e.Reading) {
		return ErrReadingAlphabet
	}
	if len(strings.Split(e.Reading, " ")) != utf8.RuneCountInString(e.Word) {
		return ErrReadingCount
	}
	return nil
}

// String 渲染为词典行 word\treading，分节条目渲染为空串
func (e DictionaryEntry) String() string {
	if e.IsSeparator() {
		return ""
	}
	return e.Word + "\t" + e.Reading
}
