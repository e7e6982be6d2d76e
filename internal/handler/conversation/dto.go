package conversation

import (
	"cogniverse/internal/model/conversation"
	"cogniverse/internal/service"
)

// CreateRequest 创建对话请求
type CreateRequest struct {
	Title string `json:"title"`
}

// RenameRequest 重命名请求
type RenameRequest struct {
	Title string `json:"title" binding:"required"`
}

// FavoriteRequest 收藏请求
type FavoriteRequest struct {
	Favorite bool `json:"favorite"`
}

// TagRequest 标签请求
type TagRequest struct {
	Tag string `json:"tag" binding:"required"`
}

// CleanupRequest 清理请求
type CleanupRequest struct {
	Days int `json:"days" binding:"required,min=1"`
}

// ConversationDetail 对话摘要与全部消息
type ConversationDetail struct {
	conversation.Summary
	Messages []service.MessageView `json:"messages"`
}

// ListData 对话列表
type ListData struct {
	Conversations []conversation.Summary `json:"conversations"`
	Total         int                    `json:"total"`
	CurrentID     string                 `json:"current_conversation_id"`
}
