package classify

import "github.com/fyerfyer/rime-zhwiki/internal/models"

// Buckets 按分类收集词条，保持加入顺序
type Buckets struct {
	words map[models.Category][]string
}

// NewBuckets 创建空的分类桶
func NewBuckets() *Buckets {
	return &Buckets{words: make(map[models.Category][]string)}
}

// Add 加入一个已分类词条
func (b *Buckets) Add(w models.ClassifiedWord) {
	b.words[w.Category] = append(b.words[w.Category], w.Text)
}

// Words 返回分类下的词条
func (b *Buckets) Words(c models.Category) []string {
	return b.words[c]
}

// Counts 返回各分类的词条数
func (b *Buckets) Counts() map[string]int {
	out := make(map[string]int, len(models.AllCategories))
	for _, c := range models.AllCategories {
		out[c.String()] = len(b.words[c])
	}
	return out
}

// Total 返回词条总数
func (b *Buckets) Total() int {
	n := 0
	for _, ws := range b.words {
		n += len(ws)
	}
	return n
}
