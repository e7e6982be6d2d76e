package conversation

import (
	"cogniverse/internal/handler/common"
	"cogniverse/internal/service"
)

// ErrorResponse 错误响应类型别名
type ErrorResponse = common.ErrorResponse

// Handler 对话管理处理器
type Handler struct {
	sessions *service.SessionService
}

// NewHandler 创建对话管理处理器
func NewHandler(sessions *service.SessionService) *Handler {
	return &Handler{sessions: sessions}
}

// currentAlias 路径中代表当前对话的标识
const currentAlias = "current"

func resolveID(id string) string {
	if id == currentAlias {
		return ""
	}
	return id
}
