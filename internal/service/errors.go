package service

import "errors"

var (
	// ErrNoConversation 没有可操作的对话
	ErrNoConversation = errors.New("no conversation available")
	// ErrConversationNotFound 指定的对话不存在
	ErrConversationNotFound = errors.New("conversation not found")
	// ErrUnsupportedExportFormat 导出格式不是 json/csv/txt
	ErrUnsupportedExportFormat = errors.New("unsupported export format")
	// ErrMessageNotSaved 对话消息写入失败，已回滚
	ErrMessageNotSaved = errors.New("message exchange could not be saved")
	// ErrFileTooLarge 上传超出大小上限
	ErrFileTooLarge = errors.New("file too large")
	// ErrEmptyMessage 消息或问题为空
	ErrEmptyMessage = errors.New("message is empty")
	// ErrNoUploadedFiles 会话中没有已上传文件
	ErrNoUploadedFiles = errors.New("no uploaded files")
	// ErrNotAnImage 上传内容不是图片
	ErrNotAnImage = errors.New("file is not an image")
	// ErrUnsupportedAnalysis 未知的图片分析方式
	ErrUnsupportedAnalysis = errors.New("unsupported analysis type")
)
