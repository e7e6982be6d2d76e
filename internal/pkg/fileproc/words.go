package fileproc

import (
	"strings"
	"unicode"

	"github.com/go-ego/gse"
	"github.com/rs/zerolog/log"
)

// WordCounter 统计文本词数
type WordCounter interface {
	CountWords(text string) int
}

// FieldsCounter 按空白切分计数
type FieldsCounter struct{}

// CountWords 返回空白分隔的词数
func (FieldsCounter) CountWords(text string) int {
	return len(strings.Fields(text))
}

// SegmentingCounter 含汉字的文本使用 gse 分词计数，其余按空白切分
type SegmentingCounter struct {
	segmenter *gse.Segmenter
}

// NewSegmentingCounter 创建分词计数器，词典加载失败时降级为空白切分
func NewSegmentingCounter() *SegmentingCounter {
	seg, err := gse.New()
	if err != nil {
		log.Warn().Err(err).Msg("failed to load gse dictionary, falling back to whitespace word count")
		return &SegmentingCounter{}
	}
	return &SegmentingCounter{segmenter: &seg}
}

// CountWords 统计词数，标点与空白不计入
func (c *SegmentingCounter) CountWords(text string) int {
	if c.segmenter == nil || !containsHan(text) {
		return FieldsCounter{}.CountWords(text)
	}
	count := 0
	for _, word := range c.segmenter.Cut(text, false) {
		if isWordToken(word) {
			count++
		}
	}
	return count
}

func containsHan(text string) bool {
	for _, r := range text {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}

func isWordToken(token string) bool {
	for _, r := range token {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
