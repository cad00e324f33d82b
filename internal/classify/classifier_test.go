package classify

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyerfyer/rime-zhwiki/internal/models"
)

func TestCandidates(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{"plain", "中国", []string{"中国"}},
		{"qualifier", "猫_(动物)", []string{"猫_(动物)", "动物"}},
		{"nested qualifiers", "水星_(行星)_(天文)", []string{"水星_(行星)_(天文)", "天文", "行星"}},
		{"qualifier not at end", "a_(b)_c", []string{"a_(b)_c"}},
		{"blank", "   ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Candidates(tt.line))
		})
	}
}

func TestClean(t *testing.T) {
	assert.Equal(t, "猫", Clean("猫_(动物)"))
	assert.Equal(t, "New York", Clean("New_York"))
	assert.Equal(t, "水星", Clean(" 水星_(行星)_(天文) "))
	assert.Equal(t, "", Clean("_(x)"))
}

func TestClassify(t *testing.T) {
	c := NewClassifier()

	tests := []struct {
		token string
		want  models.Category
	}{
		{"中国", models.CategoryCommon},
		{"〇二", models.CategoryCommon},
		{"猫科列表", models.CategoryCommon},
		{"𠀀𠀁", models.CategoryCommon},
		{"北京-上海", models.CategoryExtended},
		{"输入/输出", models.CategoryExtended},
		{"亚历山大·大仲马", models.CategoryExtended},
		{"第1集", models.CategoryAnnotated},
		{"《红楼梦》", models.CategoryAnnotated},
		{"C语言", models.CategoryAnnotated},
		{"cat", models.CategoryLatin},
		{"Café_au_lait", models.CategoryLatin},
		{"C++", models.CategoryLatin},
		{"東京タワー", models.CategoryUnclassified},
		{"hello，world", models.CategoryUnclassified},
		{"Москва", models.CategoryUnclassified},
		{"--", models.CategoryLatin},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			w, ok := c.Classify(tt.token)
			require.True(t, ok)
			assert.Equal(t, tt.want, w.Category)
		})
	}
}

func TestClassifyRejectsShort(t *testing.T) {
	c := NewClassifier()

	_, ok := c.Classify("猫")
	assert.False(t, ok)

	_, ok = c.Classify("猫_(动物)")
	assert.False(t, ok)

	_, ok = c.Classify("  ")
	assert.False(t, ok)

	c = NewClassifier(WithMinLength(1))
	w, ok := c.Classify("猫")
	require.True(t, ok)
	assert.Equal(t, models.CategoryCommon, w.Category)
}

func TestClassifyIdempotent(t *testing.T) {
	c := NewClassifier()
	for _, token := range []string{"猫_(动物)", "北京-上海", "New_York", "第1集", "東京タワー"} {
		first, ok := c.Classify(token)
		if !ok {
			continue
		}
		second, ok := c.Classify(first.Text)
		require.True(t, ok, token)
		assert.Equal(t, first, second, token)
	}
}

func TestClassifyLine(t *testing.T) {
	c := NewClassifier()

	words := c.ClassifyLine("猫_(动物)")
	assert.Equal(t, []models.ClassifiedWord{
		{Text: "动物", Category: models.CategoryCommon},
	}, words)

	words = c.ClassifyLine("Python_(编程语言)")
	assert.Equal(t, []models.ClassifiedWord{
		{Text: "Python", Category: models.CategoryLatin},
		{Text: "编程语言", Category: models.CategoryCommon},
	}, words)
}

func TestClassifyLineLogsRejectionAtDebug(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	c := NewClassifier(WithLogger(logger))

	words := c.ClassifyLine("猫_(动物)")
	require.Len(t, words, 1)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.DebugLevel, entry.Level)
	assert.Equal(t, "Rejected short candidate", entry.Message)
	assert.Equal(t, "猫_(动物)", entry.Data["word"])
}

func TestClassifyDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "000.txt"), []byte("猫_(动物)\n猫科列表\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "001.txt"), []byte("cat\n\n北京-上海\n"), 0o644))

	buckets, err := NewClassifier().ClassifyDir(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{"动物", "猫科列表"}, buckets.Words(models.CategoryCommon))
	assert.Equal(t, []string{"北京-上海"}, buckets.Words(models.CategoryExtended))
	assert.Equal(t, []string{"cat"}, buckets.Words(models.CategoryLatin))
	assert.Equal(t, 4, buckets.Total())
	assert.Equal(t, 2, buckets.Counts()["common"])
	assert.Equal(t, 0, buckets.Counts()["annotated"])
}

func TestClassifyDirMissing(t *testing.T) {
	buckets, err := NewClassifier().ClassifyDir(filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)
	assert.Zero(t, buckets.Total())
}

func TestIsHan(t *testing.T) {
	assert.True(t, IsHan('〇'))
	assert.True(t, IsHan('中'))
	assert.True(t, IsHan('㐀'))
	assert.True(t, IsHan(0x20000))
	assert.True(t, IsHan(0x2F800))
	assert.False(t, IsHan('a'))
	assert.False(t, IsHan('タ'))
	assert.False(t, IsHan('，'))
}
