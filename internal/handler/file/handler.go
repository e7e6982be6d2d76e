package file

import (
	"cogniverse/internal/handler/common"
	"cogniverse/internal/service"
)

// ErrorResponse 错误响应类型别名
type ErrorResponse = common.ErrorResponse

// Handler 文件上传处理器
type Handler struct {
	sessions *service.SessionService
	files    *service.FileService
}

// NewHandler 创建文件上传处理器
func NewHandler(sessions *service.SessionService, files *service.FileService) *Handler {
	return &Handler{sessions: sessions, files: files}
}
