package chat

import (
	"cogniverse/internal/ai"
	"cogniverse/internal/handler/common"
	"cogniverse/internal/service"
)

// ErrorResponse 错误响应类型别名
type ErrorResponse = common.ErrorResponse

// ModelCatalog 模型目录
type ModelCatalog interface {
	AvailableModels() []string
	ModelInfo(name string) (ai.ModelInfo, bool)
	DefaultModel() string
}

// Handler 对话处理器
type Handler struct {
	sessions *service.SessionService
	chat     *service.ChatService
	models   ModelCatalog
}

// NewHandler 创建对话处理器
func NewHandler(sessions *service.SessionService, chat *service.ChatService, models ModelCatalog) *Handler {
	return &Handler{sessions: sessions, chat: chat, models: models}
}
