package conversation

import (
	"slices"
	"sort"
	"strings"
	"time"

	"cogniverse/internal/pkg/id"
)

const (
	// DefaultTitle 新对话的占位标题
	DefaultTitle = "New Conversation"

	titleMaxRunes = 50
)

// Metadata 对话派生元数据
type Metadata struct {
	TotalMessages int
	ModelsUsed    map[string]struct{}
	Tags          []string
	IsFavorite    bool
}

// Conversation 有序消息线程及其派生元数据
type Conversation struct {
	ID        string
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
	Messages  []*Message
	Metadata  Metadata
}

// New 创建对话，title 为空时使用默认标题
func New(title string) *Conversation {
	if strings.TrimSpace(title) == "" {
		title = DefaultTitle
	}
	now := nowFunc()
	return &Conversation{
		ID:        id.New(),
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
		Messages:  []*Message{},
		Metadata: Metadata{
			ModelsUsed: map[string]struct{}{},
			Tags:       []string{},
		},
	}
}

// AddMessage 追加一条消息并同步派生元数据
func (c *Conversation) AddMessage(content string, role Role, modelUsed string) *Message {
	msg := newMessage(content, role, modelUsed)
	c.Messages = append(c.Messages, msg)
	c.Metadata.TotalMessages = len(c.Messages)

	if role == RoleAssistant && modelUsed != "" {
		if c.Metadata.ModelsUsed == nil {
			c.Metadata.ModelsUsed = map[string]struct{}{}
		}
		c.Metadata.ModelsUsed[modelUsed] = struct{}{}
	}

	if len(c.Messages) == 1 && role == RoleUser && c.Title == DefaultTitle {
		c.Title = deriveTitle(content)
	}

	c.touch()
	return msg
}

// deriveTitle 截取首条用户消息生成标题
func deriveTitle(content string) string {
	trimmed := strings.TrimSpace(content)
	title := trimmed
	if runes := []rune(trimmed); len(runes) > titleMaxRunes {
		title = string(runes[:titleMaxRunes]) + "..."
	}
	title = strings.Join(strings.Fields(title), " ")
	if title == "" {
		return DefaultTitle
	}
	return title
}

// touch 更新 UpdatedAt，保证不早于 CreatedAt 且不回退
func (c *Conversation) touch() {
	now := nowFunc()
	if now.Before(c.UpdatedAt) {
		now = c.UpdatedAt
	}
	if now.Before(c.CreatedAt) {
		now = c.CreatedAt
	}
	c.UpdatedAt = now
}

// RecentMessages 返回最后 count 条消息（时间顺序）
func (c *Conversation) RecentMessages(count int) []*Message {
	if count <= 0 {
		return []*Message{}
	}
	start := len(c.Messages) - count
	if start < 0 {
		start = 0
	}
	return slices.Clone(c.Messages[start:])
}

// SearchMessages 大小写不敏感的子串匹配，空查询匹配全部消息
func (c *Conversation) SearchMessages(query string) []*Message {
	q := strings.ToLower(query)
	matches := []*Message{}
	for _, msg := range c.Messages {
		if q == "" || strings.Contains(strings.ToLower(msg.Content), q) {
			matches = append(matches, msg)
		}
	}
	return matches
}

// AnnotateMessage 为指定消息补充元数据
func (c *Conversation) AnnotateMessage(messageID, key string, value any) bool {
	for _, msg := range c.Messages {
		if msg.ID == messageID {
			if msg.Metadata == nil {
				msg.Metadata = map[string]any{}
			}
			msg.Metadata[key] = value
			c.touch()
			return true
		}
	}
	return false
}

// Rename 手动修改标题
func (c *Conversation) Rename(title string) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = DefaultTitle
	}
	c.Title = title
	c.touch()
}

// SetFavorite 设置收藏标记
func (c *Conversation) SetFavorite(favorite bool) {
	c.Metadata.IsFavorite = favorite
	c.touch()
}

// AddTag 添加标签，已存在时忽略
func (c *Conversation) AddTag(tag string) bool {
	tag = strings.TrimSpace(tag)
	if tag == "" || slices.Contains(c.Metadata.Tags, tag) {
		return false
	}
	c.Metadata.Tags = append(c.Metadata.Tags, tag)
	c.touch()
	return true
}

// RemoveTag 删除标签
func (c *Conversation) RemoveTag(tag string) bool {
	idx := slices.Index(c.Metadata.Tags, tag)
	if idx < 0 {
		return false
	}
	c.Metadata.Tags = slices.Delete(c.Metadata.Tags, idx, idx+1)
	c.touch()
	return true
}

// ResetModelsUsed 显式清空已用模型集合
func (c *Conversation) ResetModelsUsed() {
	c.Metadata.ModelsUsed = map[string]struct{}{}
	c.touch()
}

// ModelsUsedSorted 返回排序后的模型列表
func (c *Conversation) ModelsUsedSorted() []string {
	models := make([]string, 0, len(c.Metadata.ModelsUsed))
	for m := range c.Metadata.ModelsUsed {
		models = append(models, m)
	}
	sort.Strings(models)
	return models
}

// Clone 深拷贝，用于失败回滚
func (c *Conversation) Clone() *Conversation {
	cp := *c
	cp.Messages = make([]*Message, len(c.Messages))
	for i, msg := range c.Messages {
		cp.Messages[i] = msg.clone()
	}
	cp.Metadata.ModelsUsed = make(map[string]struct{}, len(c.Metadata.ModelsUsed))
	for m := range c.Metadata.ModelsUsed {
		cp.Metadata.ModelsUsed[m] = struct{}{}
	}
	cp.Metadata.Tags = slices.Clone(c.Metadata.Tags)
	if cp.Metadata.Tags == nil {
		cp.Metadata.Tags = []string{}
	}
	return &cp
}

// Summary 列表展示用的只读投影
type Summary struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
	TotalMessages     int       `json:"total_messages"`
	UserMessages      int       `json:"user_messages"`
	AssistantMessages int       `json:"assistant_messages"`
	ModelsUsed        []string  `json:"models_used"`
	DurationSeconds   float64   `json:"duration_seconds"`
	IsFavorite        bool      `json:"is_favorite"`
	Tags              []string  `json:"tags"`
}

// Summary 生成对话摘要
func (c *Conversation) Summary() Summary {
	s := Summary{
		ID:              c.ID,
		Title:           c.Title,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
		TotalMessages:   c.Metadata.TotalMessages,
		ModelsUsed:      c.ModelsUsedSorted(),
		DurationSeconds: c.UpdatedAt.Sub(c.CreatedAt).Seconds(),
		IsFavorite:      c.Metadata.IsFavorite,
		Tags:            slices.Clone(c.Metadata.Tags),
	}
	for _, msg := range c.Messages {
		switch msg.Role {
		case RoleUser:
			s.UserMessages++
		case RoleAssistant:
			s.AssistantMessages++
		}
	}
	return s
}
