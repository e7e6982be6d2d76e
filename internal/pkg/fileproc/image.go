package fileproc

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var (
	imageMediaTypes = []string{"image/jpeg", "image/png", "image/gif", "image/bmp", "image/webp", "image/tiff"}
	imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".webp", ".tif", ".tiff"}
)

// ImageHandler 图片元数据与可选 OCR
type ImageHandler struct {
	ocr TextRecognizer
}

// NewImageHandler 创建图片处理器，ocr 为 nil 表示部署中没有 OCR 能力
func NewImageHandler(ocr TextRecognizer) *ImageHandler {
	return &ImageHandler{ocr: ocr}
}

// OCRAvailable 是否具备 OCR 能力
func (h *ImageHandler) OCRAvailable() bool {
	return h.ocr != nil
}

// Name 处理器名称
func (h *ImageHandler) Name() string { return string(TypeImage) }

// CanProcess 接受常见位图格式
func (h *ImageHandler) CanProcess(mediaType, fileName string) bool {
	return slices.Contains(imageMediaTypes, mediaType) || slices.Contains(imageExtensions, extOf(fileName))
}

// Process 读取尺寸与格式，OCR 失败只记录告警
func (h *ImageHandler) Process(ctx context.Context, data []byte, fileName, mediaType string) (*Result, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, newProcessingError(fileName, "decode image", err)
	}
	format = strings.ToUpper(format)

	var extracted string
	if h.ocr != nil {
		text, err := h.ocr.Recognize(ctx, data)
		if err != nil {
			log.Warn().Err(err).Str("file_name", fileName).Msg("OCR failed")
		} else {
			extracted = strings.TrimSpace(text)
		}
	}

	lines := []string{
		fmt.Sprintf("Image file: %s", fileName),
		fmt.Sprintf("Dimensions: %dx%d pixels", cfg.Width, cfg.Height),
		fmt.Sprintf("Format: %s", format),
	}
	if extracted != "" {
		lines = append(lines, fmt.Sprintf("\nText extracted from image:\n%s", extracted))
	} else {
		lines = append(lines, "\nNo text detected in image or OCR not available.")
	}

	res := newResult(TypeImage)
	res.Content = strings.Join(lines, "\n")
	res.Preview = fmt.Sprintf("Image: %s (%dx%d)", fileName, cfg.Width, cfg.Height)
	res.Metadata["format"] = format
	res.Metadata["mode"] = colorMode(cfg.ColorModel)
	res.Metadata["size"] = []int{cfg.Width, cfg.Height}
	res.Metadata["width"] = cfg.Width
	res.Metadata["height"] = cfg.Height
	res.Metadata["extracted_text"] = extracted
	res.Statistics["has_text"] = extracted != ""
	res.Statistics["text_length"] = len([]rune(extracted))
	res.Statistics["file_size_bytes"] = len(data)
	res.Attachment = base64.StdEncoding.EncodeToString(data)
	return res, nil
}

// colorMode 颜色模型的简写名称
func colorMode(m color.Model) string {
	if _, ok := m.(color.Palette); ok {
		return "P"
	}
	switch m {
	case color.GrayModel:
		return "L"
	case color.Gray16Model:
		return "I;16"
	case color.YCbCrModel, color.NYCbCrAModel:
		return "RGB"
	case color.CMYKModel:
		return "CMYK"
	case color.RGBAModel, color.NRGBAModel, color.RGBA64Model, color.NRGBA64Model:
		return "RGBA"
	case color.AlphaModel, color.Alpha16Model:
		return "A"
	default:
		return "unknown"
	}
}
