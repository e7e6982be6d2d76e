package conversation

import (
	"maps"
	"time"

	"cogniverse/internal/pkg/id"
)

// Role 消息作者角色
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid 判断角色是否为已知取值
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// nowFunc 当前时间，测试中可替换
var nowFunc = time.Now

// Message 对话中的一轮消息，创建后除 Metadata 外不可变
type Message struct {
	ID        string
	Content   string
	Role      Role
	Timestamp time.Time
	ModelUsed string // 仅 assistant 消息设置
	Metadata  map[string]any
}

func newMessage(content string, role Role, modelUsed string) *Message {
	msg := &Message{
		ID:        id.New(),
		Content:   content,
		Role:      role,
		Timestamp: nowFunc(),
		Metadata:  map[string]any{},
	}
	if role == RoleAssistant {
		msg.ModelUsed = modelUsed
	}
	return msg
}

func (m *Message) clone() *Message {
	cp := *m
	cp.Metadata = maps.Clone(m.Metadata)
	if cp.Metadata == nil {
		cp.Metadata = map[string]any{}
	}
	return &cp
}
