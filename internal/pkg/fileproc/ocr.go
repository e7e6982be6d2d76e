package fileproc

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// TextRecognizer 图像文字识别能力
type TextRecognizer interface {
	Recognize(ctx context.Context, image []byte) (string, error)
}

// TesseractRecognizer 调用本机 tesseract 命令行
type TesseractRecognizer struct {
	path     string
	language string
}

// DetectTesseract 在 PATH 中查找 tesseract，找不到时返回 nil
func DetectTesseract(command, language string) *TesseractRecognizer {
	if command == "" {
		command = "tesseract"
	}
	path, err := exec.LookPath(command)
	if err != nil {
		return nil
	}
	if language == "" {
		language = "eng"
	}
	return &TesseractRecognizer{path: path, language: language}
}

// Recognize 通过 stdin/stdout 识别图片中的文字
func (t *TesseractRecognizer) Recognize(ctx context.Context, image []byte) (string, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, t.path, "stdin", "stdout", "-l", t.language)
	cmd.Stdin = bytes.NewReader(image)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(stdout.String()), nil
}
