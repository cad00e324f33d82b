package script

import (
	"fmt"

	"github.com/longbridgeapp/opencc"
)

// DefaultConversion 繁体转简体
const DefaultConversion = "t2s"

// Converter 字形转换器
type Converter interface {
	Convert(word string) (string, error)
}

// OpenCC 基于OpenCC词典的转换器
type OpenCC struct {
	cc *opencc.OpenCC
}

// NewOpenCC 创建指定转换方案的转换器，为空时使用t2s
func NewOpenCC(conversion string) (*OpenCC, error) {
	if conversion == "" {
		conversion = DefaultConversion
	}
	cc, err := opencc.New(conversion)
	if err != nil {
		return nil, fmt.Errorf("failed to load opencc %s: %w", conversion, err)
	}
	return &OpenCC{cc: cc}, nil
}

// Convert 转换为目标字形
func (o *OpenCC) Convert(word string) (string, error) {
	return o.cc.Convert(word)
}

// IsSimplified 判断词条是否已是规范简体
// 再次转换结果不变即视为简体
func IsSimplified(c Converter, word string) bool {
	out, err := c.Convert(word)
	return err == nil && out == word
}
