package script

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 测试用转换器：按映射表逐字替换
type mapConverter struct {
	table map[rune]rune
	fail  map[string]bool
}

func (m *mapConverter) Convert(word string) (string, error) {
	if m.fail[word] {
		return "", errors.New("conversion failed")
	}
	return strings.Map(func(r rune) rune {
		if to, ok := m.table[r]; ok {
			return to
		}
		return r
	}, word), nil
}

func newMapConverter() *mapConverter {
	return &mapConverter{
		table: map[rune]rune{'國': '国', '語': '语'},
		fail:  map[string]bool{},
	}
}

// 测试用转换器：结果不是不动点
type unstableConverter struct{}

func (unstableConverter) Convert(word string) (string, error) {
	return word + "x", nil
}

func TestFilterApply(t *testing.T) {
	conv := newMapConverter()
	conv.fail["壞詞"] = true

	f := NewFilter(conv)
	out, stats := f.Apply([]string{"中國", "中国", "國語", "壞詞", "猫", "动物"})

	assert.Equal(t, []string{"中国", "国语", "动物"}, out)
	assert.Equal(t, Stats{In: 6, Out: 3, Failed: 1, TooShort: 1, Duplicate: 1}, stats)
}

func TestFilterNotSimplified(t *testing.T) {
	f := NewFilter(unstableConverter{})
	out, stats := f.Apply([]string{"中国"})

	assert.Empty(t, out)
	assert.Equal(t, 1, stats.NotSimplified)
}

func TestFilterMinLength(t *testing.T) {
	f := NewFilter(newMapConverter(), WithMinLength(3))
	out, stats := f.Apply([]string{"中國", "中華民國"})

	assert.Equal(t, []string{"中華民国"}, out)
	assert.Equal(t, 1, stats.TooShort)
}

func TestIsSimplified(t *testing.T) {
	conv := newMapConverter()
	assert.True(t, IsSimplified(conv, "中国"))
	assert.False(t, IsSimplified(conv, "中國"))

	conv.fail["中国"] = true
	assert.False(t, IsSimplified(conv, "中国"))
}

func TestOpenCC(t *testing.T) {
	cc, err := NewOpenCC("")
	require.NoError(t, err)

	out, err := cc.Convert("中國")
	require.NoError(t, err)
	assert.Equal(t, "中国", out)
	assert.True(t, IsSimplified(cc, out))

	filtered, _ := NewFilter(cc).Apply([]string{"中國", "中国", "電腦"})
	assert.Equal(t, []string{"中国", "电脑"}, filtered)
}
