package id

import (
	"github.com/google/uuid"
)

// New 生成新的UUID（string格式），用于消息、对话与会话标识
func New() string {
	return uuid.New().String()
}

// IsValid 验证UUID格式是否有效
func IsValid(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Short 返回 UUID 的前 8 位，用于归档文件名等人类可读场景
func Short() string {
	return New()[:8]
}
