package conversation

import (
	"fmt"
	"time"
)

// TimeLayout 序列化时间格式，保留纳秒以保证往返无损
const TimeLayout = time.RFC3339Nano

// MessageRecord 消息的可序列化形态
type MessageRecord struct {
	ID        string         `json:"id" bson:"id"`
	Content   string         `json:"content" bson:"content"`
	Role      Role           `json:"role" bson:"role"`
	Timestamp string         `json:"timestamp" bson:"timestamp"`
	ModelUsed string         `json:"model_used,omitempty" bson:"model_used,omitempty"`
	Metadata  map[string]any `json:"metadata" bson:"metadata"`
}

// MetadataRecord 对话元数据的可序列化形态，models_used 为有序序列
type MetadataRecord struct {
	TotalMessages int      `json:"total_messages" bson:"total_messages"`
	ModelsUsed    []string `json:"models_used" bson:"models_used"`
	Tags          []string `json:"tags" bson:"tags"`
	IsFavorite    bool     `json:"is_favorite" bson:"is_favorite"`
}

// Record 对话的可序列化形态，会话状态与导出都使用它
type Record struct {
	ID        string          `json:"id" bson:"id"`
	Title     string          `json:"title" bson:"title"`
	CreatedAt string          `json:"created_at" bson:"created_at"`
	UpdatedAt string          `json:"updated_at" bson:"updated_at"`
	Messages  []MessageRecord `json:"messages" bson:"messages"`
	Metadata  MetadataRecord  `json:"metadata" bson:"metadata"`
}

// ToRecord 序列化对话
func (c *Conversation) ToRecord() Record {
	rec := Record{
		ID:        c.ID,
		Title:     c.Title,
		CreatedAt: c.CreatedAt.Format(TimeLayout),
		UpdatedAt: c.UpdatedAt.Format(TimeLayout),
		Messages:  make([]MessageRecord, 0, len(c.Messages)),
		Metadata: MetadataRecord{
			TotalMessages: c.Metadata.TotalMessages,
			ModelsUsed:    c.ModelsUsedSorted(),
			Tags:          append([]string{}, c.Metadata.Tags...),
			IsFavorite:    c.Metadata.IsFavorite,
		},
	}
	for _, msg := range c.Messages {
		meta := msg.Metadata
		if meta == nil {
			meta = map[string]any{}
		}
		rec.Messages = append(rec.Messages, MessageRecord{
			ID:        msg.ID,
			Content:   msg.Content,
			Role:      msg.Role,
			Timestamp: msg.Timestamp.Format(TimeLayout),
			ModelUsed: msg.ModelUsed,
			Metadata:  meta,
		})
	}
	return rec
}

// FromRecord 由序列化形态重建对话
func FromRecord(rec Record) (*Conversation, error) {
	createdAt, err := time.Parse(TimeLayout, rec.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("conversation %s: invalid created_at: %w", rec.ID, err)
	}
	updatedAt, err := time.Parse(TimeLayout, rec.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("conversation %s: invalid updated_at: %w", rec.ID, err)
	}

	conv := &Conversation{
		ID:        rec.ID,
		Title:     rec.Title,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
		Messages:  make([]*Message, 0, len(rec.Messages)),
		Metadata: Metadata{
			ModelsUsed: make(map[string]struct{}, len(rec.Metadata.ModelsUsed)),
			Tags:       append([]string{}, rec.Metadata.Tags...),
			IsFavorite: rec.Metadata.IsFavorite,
		},
	}
	if conv.Title == "" {
		conv.Title = DefaultTitle
	}

	for _, m := range rec.Messages {
		if !m.Role.Valid() {
			return nil, fmt.Errorf("conversation %s: message %s has unknown role %q", rec.ID, m.ID, m.Role)
		}
		ts, err := time.Parse(TimeLayout, m.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("conversation %s: message %s: invalid timestamp: %w", rec.ID, m.ID, err)
		}
		meta := m.Metadata
		if meta == nil {
			meta = map[string]any{}
		}
		conv.Messages = append(conv.Messages, &Message{
			ID:        m.ID,
			Content:   m.Content,
			Role:      m.Role,
			Timestamp: ts,
			ModelUsed: m.ModelUsed,
			Metadata:  meta,
		})
	}
	for _, model := range rec.Metadata.ModelsUsed {
		conv.Metadata.ModelsUsed[model] = struct{}{}
	}
	conv.Metadata.TotalMessages = len(conv.Messages)

	return conv, nil
}
