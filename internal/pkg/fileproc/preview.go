package fileproc

import (
	"unicode"
)

// DefaultPreviewLength 预览的默认字符数
const DefaultPreviewLength = 500

// sentenceCutRatio 句末标点需位于窗口 70% 之后才在此截断
const sentenceCutRatio = 0.7

// buildPreview 截取约 maxRunes 个字符，优先在句末、其次在词边界处截断
func buildPreview(text string, maxRunes int) string {
	if maxRunes <= 0 {
		maxRunes = DefaultPreviewLength
	}
	runes := []rune(text)
	if len(runes) <= maxRunes {
		return text
	}
	window := runes[:maxRunes]

	lastSentence := -1
	lastSpace := -1
	for i, r := range window {
		switch {
		case r == '.' || r == '!' || r == '?':
			lastSentence = i
		case unicode.IsSpace(r):
			lastSpace = i
		}
	}

	if lastSentence >= 0 && float64(lastSentence) > float64(maxRunes)*sentenceCutRatio {
		return string(window[:lastSentence+1])
	}
	if lastSpace > 0 {
		return string(window[:lastSpace]) + "..."
	}
	return string(window) + "..."
}
