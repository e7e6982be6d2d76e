package fileproc

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// FileType 处理结果类别
type FileType string

const (
	TypeText        FileType = "text"
	TypePDF         FileType = "pdf"
	TypeDOCX        FileType = "docx"
	TypeCSV         FileType = "csv"
	TypeImage       FileType = "image"
	TypeUnsupported FileType = "unsupported"
)

// Result 归一化后的文件处理结果
type Result struct {
	Type       FileType       `json:"type"`
	Format     string         `json:"format,omitempty"`
	Content    string         `json:"content"`
	Preview    string         `json:"preview"`
	Metadata   map[string]any `json:"metadata"`
	Statistics map[string]any `json:"statistics"`
	// Attachment 图片的 base64 原文，供多模态模型使用
	Attachment string `json:"image_base64,omitempty"`
}

// Upload 一次上传的原始输入
type Upload struct {
	Name      string
	MediaType string
	Data      []byte
}

func newResult(t FileType) *Result {
	return &Result{
		Type:       t,
		Metadata:   map[string]any{},
		Statistics: map[string]any{},
	}
}

// baseMetadata 所有文件共有的元数据
func baseMetadata(fileName string, size int64, mediaType string) map[string]any {
	return map[string]any{
		"name":         fileName,
		"size_bytes":   size,
		"size_human":   HumanSize(size),
		"extension":    strings.ToLower(filepath.Ext(fileName)),
		"media_type":   mediaType,
		"processed_at": time.Now().Format(time.RFC3339),
	}
}

// HumanSize 以 B/KB/MB/GB/TB 格式化字节数
func HumanSize(size int64) string {
	value := float64(size)
	for _, unit := range []string{"B", "KB", "MB", "GB"} {
		if value < 1024 {
			return fmt.Sprintf("%.1f %s", value, unit)
		}
		value /= 1024
	}
	return fmt.Sprintf("%.1f TB", value)
}

func extOf(fileName string) string {
	return strings.ToLower(filepath.Ext(fileName))
}
