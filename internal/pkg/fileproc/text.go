package fileproc

import (
	"context"
	"slices"
	"strings"
)

var textExtensions = []string{".txt", ".md", ".json", ".log", ".py", ".js", ".html", ".css", ".xml", ".yaml", ".yml"}

var textMediaTypes = []string{"application/json", "application/javascript", "application/xml", "application/x-yaml"}

var codeExtensions = []string{".py", ".js", ".html", ".css"}

// TextHandler 纯文本及其子格式
type TextHandler struct {
	previewLength int
	words         WordCounter
}

// NewTextHandler 创建文本处理器
func NewTextHandler(previewLength int, words WordCounter) *TextHandler {
	if words == nil {
		words = FieldsCounter{}
	}
	return &TextHandler{previewLength: previewLength, words: words}
}

// Name 处理器名称
func (h *TextHandler) Name() string { return string(TypeText) }

// CanProcess 仅接受明确的文本类型，CSV 交给 CSV 处理器
func (h *TextHandler) CanProcess(mediaType, fileName string) bool {
	ext := extOf(fileName)
	if isCSV(mediaType, ext) {
		return false
	}
	if slices.Contains(textExtensions, ext) {
		return true
	}
	return strings.HasPrefix(mediaType, "text/") || slices.Contains(textMediaTypes, mediaType)
}

// Process 解码并统计文本
func (h *TextHandler) Process(ctx context.Context, data []byte, fileName, mediaType string) (*Result, error) {
	content, encodingUsed, err := decodeText(data, textEncodingOrder)
	if err != nil {
		return nil, newProcessingError(fileName, "decode", err)
	}

	res := newResult(TypeText)
	res.Format = detectTextFormat(content, extOf(fileName))
	res.Content = content
	res.Preview = buildPreview(content, h.previewLength)
	res.Metadata["encoding_used"] = encodingUsed
	res.Metadata["format"] = res.Format
	res.Statistics["line_count"] = len(strings.Split(content, "\n"))
	res.Statistics["word_count"] = h.words.CountWords(content)
	res.Statistics["character_count"] = len([]rune(content))
	return res, nil
}

// detectTextFormat 先按扩展名，再按内容特征识别子格式
func detectTextFormat(content, ext string) string {
	switch ext {
	case ".json":
		return "json"
	case ".csv":
		return "csv"
	case ".md":
		return "markdown"
	}
	if slices.Contains(codeExtensions, ext) {
		return "code"
	}

	trimmed := strings.TrimSpace(content)
	if strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}") {
		return "json"
	}

	lines := strings.Split(trimmed, "\n")
	if len(lines) > 5 {
		lines = lines[:5]
	}
	if len(lines) > 1 {
		allCommas := true
		for _, line := range lines {
			if !strings.Contains(line, ",") {
				allCommas = false
				break
			}
		}
		if allCommas {
			return "csv"
		}
	}
	return "plain_text"
}
