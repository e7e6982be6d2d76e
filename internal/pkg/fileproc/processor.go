package fileproc

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog/log"
)

// DefaultMaxFileSize 上传上限默认值（100 MB）
const DefaultMaxFileSize int64 = 100 * 1024 * 1024

const octetStream = "application/octet-stream"

// Handler 单一格式的识别与提取能力
type Handler interface {
	Name() string
	CanProcess(mediaType, fileName string) bool
	Process(ctx context.Context, data []byte, fileName, mediaType string) (*Result, error)
}

// Options 处理管线配置
type Options struct {
	MaxFileSize   int64
	PreviewLength int
	Words         WordCounter
	OCR           TextRecognizer
}

// Processor 按固定优先级分派到首个接受的处理器
type Processor struct {
	handlers    []Handler
	maxFileSize int64
	ocr         bool
}

// NewProcessor 创建默认管线：text, pdf, docx, csv, image
func NewProcessor(opts Options) *Processor {
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = DefaultMaxFileSize
	}
	if opts.PreviewLength <= 0 {
		opts.PreviewLength = DefaultPreviewLength
	}
	if opts.Words == nil {
		opts.Words = FieldsCounter{}
	}

	p := NewProcessorWithHandlers(opts.MaxFileSize,
		NewTextHandler(opts.PreviewLength, opts.Words),
		NewPDFHandler(opts.PreviewLength, opts.Words),
		NewDOCXHandler(opts.PreviewLength, opts.Words),
		NewCSVHandler(),
		NewImageHandler(opts.OCR),
	)
	p.ocr = opts.OCR != nil

	log.Info().
		Int("handlers", len(p.handlers)).
		Bool("ocr_available", p.ocr).
		Int64("max_file_size", p.maxFileSize).
		Msg("file processor initialized")
	return p
}

// NewProcessorWithHandlers 使用自定义处理器列表
func NewProcessorWithHandlers(maxFileSize int64, handlers ...Handler) *Processor {
	return &Processor{handlers: handlers, maxFileSize: maxFileSize}
}

// MaxFileSize 上传上限
func (p *Processor) MaxFileSize() int64 {
	return p.maxFileSize
}

// CheckSize 在读取处理器之前校验大小
func (p *Processor) CheckSize(fileName string, size int64) error {
	if p.maxFileSize > 0 && size > p.maxFileSize {
		return newProcessingError(fileName, "validate",
			fmt.Errorf("file too large: %s exceeds the maximum of %s", HumanSize(size), HumanSize(p.maxFileSize)))
	}
	return nil
}

// Process 校验大小、解析媒体类型并分派
func (p *Processor) Process(ctx context.Context, up Upload) (res *Result, err error) {
	size := int64(len(up.Data))
	if err := p.CheckSize(up.Name, size); err != nil {
		return nil, err
	}

	mediaType := ResolveMediaType(up.Name, up.MediaType, up.Data)
	handler := p.find(mediaType, up.Name)
	if handler == nil {
		log.Warn().Str("file_name", up.Name).Str("media_type", mediaType).Msg("no handler found for file")
		return fallbackResult(up.Name, mediaType, size), nil
	}

	logger := log.With().Str("file_name", up.Name).Str("handler", handler.Name()).Logger()
	logger.Info().Str("media_type", mediaType).Msg("processing file")

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("handler panicked")
			res, err = nil, newProcessingError(up.Name, handler.Name(), fmt.Errorf("unexpected error: %v", r))
		}
	}()

	res, err = handler.Process(ctx, up.Data, up.Name, mediaType)
	if err != nil {
		logger.Error().Err(err).Msg("file processing failed")
		if errors.Is(err, ErrFileProcessing) {
			return nil, err
		}
		return nil, newProcessingError(up.Name, handler.Name(), err)
	}

	meta := baseMetadata(up.Name, size, mediaType)
	for k, v := range res.Metadata {
		meta[k] = v
	}
	res.Metadata = meta
	return res, nil
}

func (p *Processor) find(mediaType, fileName string) Handler {
	for _, h := range p.handlers {
		if h.CanProcess(mediaType, fileName) {
			return h
		}
	}
	return nil
}

// ResolveMediaType 依次使用声明类型、扩展名、内容嗅探
func ResolveMediaType(fileName, declared string, data []byte) string {
	if mt := normalizeMediaType(declared); mt != "" && mt != octetStream {
		return mt
	}
	if ext := extOf(fileName); ext != "" {
		if mt := normalizeMediaType(mime.TypeByExtension(ext)); mt != "" {
			return mt
		}
	}
	if len(data) > 0 {
		if mt := normalizeMediaType(mimetype.Detect(data).String()); mt != "" {
			return mt
		}
	}
	return octetStream
}

func normalizeMediaType(mt string) string {
	if mt == "" {
		return ""
	}
	if parsed, _, err := mime.ParseMediaType(mt); err == nil {
		return parsed
	}
	return strings.ToLower(strings.TrimSpace(mt))
}

// fallbackResult 无处理器接受时的描述性结果
func fallbackResult(fileName, mediaType string, size int64) *Result {
	res := newResult(TypeUnsupported)
	res.Content = fmt.Sprintf("File: %s\nType: %s\nSize: %.2f MB\n\n"+
		"This file type is not currently supported for content extraction, but basic information about it is available.",
		fileName, mediaType, float64(size)/(1024*1024))
	res.Preview = fmt.Sprintf("Unsupported file: %s", fileName)
	res.Metadata = baseMetadata(fileName, size, mediaType)
	return res
}

// SupportedFormats 按类别列出可处理的扩展名
func (p *Processor) SupportedFormats() map[string][]string {
	return map[string][]string{
		"Text Files": append([]string{}, textExtensions...),
		"Documents":  {".pdf", ".docx"},
		"Data Files": {".csv"},
		"Images":     append([]string{}, imageExtensions...),
	}
}

// Capabilities 描述各类文件可提取的信息
func (p *Processor) Capabilities() map[string]string {
	caps := map[string]string{
		"Text Files":     "Full text content, encoding detection, format analysis",
		"PDF Documents":  "Text extraction, metadata, page count, structure preservation",
		"Word Documents": "Text content, document structure, tables, metadata",
		"CSV Files":      "Dialect detection, statistical summary, data preview",
		"Images":         "Image metadata, dimensions, format information",
	}
	if p.ocr {
		caps["Images"] = "Image metadata, dimensions, format information, text recognition (OCR)"
	}
	return caps
}

// OCRAvailable 是否启用了 OCR
func (p *Processor) OCRAvailable() bool {
	return p.ocr
}
