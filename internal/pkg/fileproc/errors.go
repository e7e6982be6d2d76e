package fileproc

import (
	"errors"
	"fmt"
)

// ErrFileProcessing 不可恢复的文件处理失败（解码失败、压缩包损坏、超出大小等）
var ErrFileProcessing = errors.New("file processing failed")

// ProcessingError 带文件名与阶段信息的处理失败
type ProcessingError struct {
	FileName string
	Op       string
	Err      error
}

func (e *ProcessingError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("error processing %s: %v", e.FileName, e.Err)
	}
	return fmt.Sprintf("error processing %s (%s): %v", e.FileName, e.Op, e.Err)
}

func (e *ProcessingError) Unwrap() error {
	return e.Err
}

// Is 使 errors.Is(err, ErrFileProcessing) 对所有 ProcessingError 成立
func (e *ProcessingError) Is(target error) bool {
	return target == ErrFileProcessing
}

func newProcessingError(fileName, op string, err error) *ProcessingError {
	return &ProcessingError{FileName: fileName, Op: op, Err: err}
}
