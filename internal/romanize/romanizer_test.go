package romanize

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyerfyer/rime-zhwiki/internal/cache"
	"github.com/fyerfyer/rime-zhwiki/internal/models"
)

// 测试用读音表，记录查询次数
type fakeLookup struct {
	table map[string][]string
	calls int
}

func (f *fakeLookup) Readings(word string) []string {
	f.calls++
	return f.table[word]
}

// 总是失败的缓存
type brokenCache struct{}

func (brokenCache) Get(string) (string, bool, error) { return "", false, errors.New("down") }
func (brokenCache) Set(string, string, time.Duration) error { return errors.New("down") }
func (brokenCache) Delete(string) error { return nil }
func (brokenCache) Clear() error { return nil }

func TestEntry(t *testing.T) {
	lookup := &fakeLookup{table: map[string][]string{
		"中国":  {"zhong", "guo"},
		"长城":  {"chang"},
		"重庆":  {"chóng", "qing"},
		"C语言": {"yu", "yan"},
	}}
	r := NewRomanizer(lookup)

	entry, err := r.Entry("中国")
	require.NoError(t, err)
	assert.Equal(t, models.DictionaryEntry{Word: "中国", Reading: "zhong guo"}, entry)

	_, err = r.Entry("长城")
	assert.ErrorIs(t, err, models.ErrReadingCount)

	_, err = r.Entry("重庆")
	assert.ErrorIs(t, err, models.ErrReadingAlphabet)

	_, err = r.Entry("C语言")
	assert.ErrorIs(t, err, models.ErrReadingCount)

	_, err = r.Entry("未知")
	assert.ErrorIs(t, err, models.ErrReadingCount)

	entry, err = r.Entry("")
	require.NoError(t, err)
	assert.True(t, entry.IsSeparator())
}

func TestEntries(t *testing.T) {
	lookup := &fakeLookup{table: map[string][]string{
		"中国": {"zhong", "guo"},
		"北京": {"bei", "jing"},
	}}
	r := NewRomanizer(lookup)

	entries := r.Entries([]string{"中国", "", "未知", "北京"})
	assert.Equal(t, []models.DictionaryEntry{
		{Word: "中国", Reading: "zhong guo"},
		{},
		{Word: "北京", Reading: "bei jing"},
	}, entries)
}

func TestEntryCache(t *testing.T) {
	lookup := &fakeLookup{table: map[string][]string{"中国": {"zhong", "guo"}}}
	c, err := cache.NewMemoryCache(cache.DefaultConfig())
	require.NoError(t, err)

	r := NewRomanizer(lookup, WithCache(c, 0))
	for i := 0; i < 3; i++ {
		entry, err := r.Entry("中国")
		require.NoError(t, err)
		assert.Equal(t, "zhong guo", entry.Reading)
	}
	assert.Equal(t, 1, lookup.calls)

	value, found, err := c.Get("pinyin:中国")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "zhong guo", value)
}

func TestEntryCacheFailure(t *testing.T) {
	lookup := &fakeLookup{table: map[string][]string{"中国": {"zhong", "guo"}}}
	r := NewRomanizer(lookup, WithCache(brokenCache{}, 0))

	entry, err := r.Entry("中国")
	require.NoError(t, err)
	assert.Equal(t, "zhong guo", entry.Reading)
}

func TestPinyinLookup(t *testing.T) {
	r := NewRomanizer(NewPinyinLookup())

	entry, err := r.Entry("中国")
	require.NoError(t, err)
	assert.Equal(t, "zhong guo", entry.Reading)
	assert.Equal(t, "中国\tzhong guo", entry.String())

	_, err = r.Entry("C语言")
	assert.ErrorIs(t, err, models.ErrReadingCount)
}
