package fileproc

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog/log"
)

// NoExtractableTextMarker 扫描件等无文本 PDF 的内容占位
const NoExtractableTextMarker = "[PDF appears to contain mainly images or has no extractable text]"

// PDFTextExtractor 从 PDF 字节中提取文本
type PDFTextExtractor interface {
	ExtractText(data []byte) (string, error)
}

// PDFMetadataReader 读取 PDF 文档信息
type PDFMetadataReader interface {
	ReadMetadata(data []byte) (map[string]any, error)
}

// PDFHandler 先用按行布局的提取器，再回退到基础提取器
type PDFHandler struct {
	layout        PDFTextExtractor
	basic         PDFTextExtractor
	metadata      PDFMetadataReader
	previewLength int
	words         WordCounter
}

// NewPDFHandler 创建 PDF 处理器
func NewPDFHandler(previewLength int, words WordCounter) *PDFHandler {
	return NewPDFHandlerWith(LayoutExtractor{}, PlainExtractor{}, InfoReader{}, previewLength, words)
}

// NewPDFHandlerWith 使用指定提取器创建 PDF 处理器
func NewPDFHandlerWith(layout, basic PDFTextExtractor, metadata PDFMetadataReader, previewLength int, words WordCounter) *PDFHandler {
	if words == nil {
		words = FieldsCounter{}
	}
	return &PDFHandler{
		layout:        layout,
		basic:         basic,
		metadata:      metadata,
		previewLength: previewLength,
		words:         words,
	}
}

// Name 处理器名称
func (h *PDFHandler) Name() string { return string(TypePDF) }

// CanProcess 接受 application/pdf 或 .pdf
func (h *PDFHandler) CanProcess(mediaType, fileName string) bool {
	return mediaType == "application/pdf" || extOf(fileName) == ".pdf"
}

// Process 提取文本与元数据，两者互不影响
func (h *PDFHandler) Process(ctx context.Context, data []byte, fileName, mediaType string) (*Result, error) {
	logger := log.With().Str("file_name", fileName).Str("handler", h.Name()).Logger()

	text, err := safeExtract(h.layout, data)
	if err != nil {
		logger.Warn().Err(err).Msg("layout pdf extraction failed")
	}
	if strings.TrimSpace(text) == "" {
		text, err = safeExtract(h.basic, data)
		if err != nil {
			logger.Warn().Err(err).Msg("basic pdf extraction failed")
		}
	}

	extractable := strings.TrimSpace(text) != ""
	if !extractable {
		text = NoExtractableTextMarker
	}

	meta, err := safeMetadata(h.metadata, data)
	if err != nil {
		logger.Warn().Err(err).Msg("pdf metadata extraction failed")
		meta = map[string]any{"page_count": "unknown"}
	}

	res := newResult(TypePDF)
	res.Content = text
	res.Preview = buildPreview(text, h.previewLength)
	for k, v := range meta {
		res.Metadata[k] = v
	}
	res.Statistics["character_count"] = len([]rune(text))
	res.Statistics["word_count"] = 0
	if extractable {
		res.Statistics["word_count"] = h.words.CountWords(text)
	}
	res.Statistics["extractable_text"] = extractable
	return res, nil
}

// safeExtract 第三方解析器在畸形输入上可能 panic，统一转成错误
func safeExtract(ex PDFTextExtractor, data []byte) (text string, err error) {
	if ex == nil {
		return "", nil
	}
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("pdf parser panic: %v", r)
		}
	}()
	return ex.ExtractText(data)
}

func safeMetadata(mr PDFMetadataReader, data []byte) (meta map[string]any, err error) {
	if mr == nil {
		return nil, fmt.Errorf("no metadata reader")
	}
	defer func() {
		if r := recover(); r != nil {
			meta, err = nil, fmt.Errorf("pdf parser panic: %v", r)
		}
	}()
	return mr.ReadMetadata(data)
}

func openPDF(data []byte) (*pdf.Reader, error) {
	return pdf.NewReader(bytes.NewReader(data), int64(len(data)))
}

// LayoutExtractor 按页、按行（自上而下）重组文本
type LayoutExtractor struct{}

// ExtractText 逐页提取，页间以空行分隔
func (LayoutExtractor) ExtractText(data []byte) (string, error) {
	reader, err := openPDF(data)
	if err != nil {
		return "", err
	}

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		var lines []string
		for _, row := range rows {
			var sb strings.Builder
			for _, word := range row.Content {
				sb.WriteString(word.S)
			}
			if line := strings.TrimSpace(sb.String()); line != "" {
				lines = append(lines, line)
			}
		}
		if len(lines) > 0 {
			pages = append(pages, strings.Join(lines, "\n"))
		}
	}
	return strings.Join(pages, "\n\n"), nil
}

// PlainExtractor 基础提取，整份文档一次性输出纯文本
type PlainExtractor struct{}

// ExtractText 提取纯文本
func (PlainExtractor) ExtractText(data []byte) (string, error) {
	reader, err := openPDF(data)
	if err != nil {
		return "", err
	}
	r, err := reader.GetPlainText()
	if err != nil {
		return "", err
	}
	out, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// InfoReader 读取 trailer 中的 Info 字典与页数
type InfoReader struct{}

// ReadMetadata 读取文档信息
func (InfoReader) ReadMetadata(data []byte) (map[string]any, error) {
	reader, err := openPDF(data)
	if err != nil {
		return nil, err
	}

	meta := map[string]any{"page_count": reader.NumPage()}
	info := reader.Trailer().Key("Info")
	fields := map[string]string{
		"title":             "Title",
		"author":            "Author",
		"subject":           "Subject",
		"creator":           "Creator",
		"producer":          "Producer",
		"creation_date":     "CreationDate",
		"modification_date": "ModDate",
	}
	for key, pdfKey := range fields {
		meta[key] = ""
		if info.IsNull() {
			continue
		}
		if v := info.Key(pdfKey); !v.IsNull() {
			meta[key] = v.Text()
		}
	}
	return meta, nil
}
