package session

import (
	"context"
	"errors"
	"regexp"
	"time"

	"cogniverse/internal/model/conversation"
)

// ErrInvalidSessionID 会话标识不合法
var ErrInvalidSessionID = errors.New("invalid session id")

var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ValidateID 校验会话标识，防止被拼接进 key 或文件路径时越界
func ValidateID(sessionID string) error {
	if !sessionIDPattern.MatchString(sessionID) {
		return ErrInvalidSessionID
	}
	return nil
}

// Preferences 用户偏好
type Preferences struct {
	Model          string  `json:"model" bson:"model"`
	Temperature    float64 `json:"temperature" bson:"temperature"`
	MaxTokens      int     `json:"max_tokens" bson:"max_tokens"`
	ShowTimestamps bool    `json:"show_timestamps" bson:"show_timestamps"`
	AutoSave       bool    `json:"auto_save" bson:"auto_save"`
}

// DefaultPreferences 新会话的偏好默认值
func DefaultPreferences(model string) Preferences {
	return Preferences{
		Model:          model,
		Temperature:    0.7,
		MaxTokens:      2048,
		ShowTimestamps: true,
		AutoSave:       true,
	}
}

// UploadedFile 会话内已处理的上传文件
type UploadedFile struct {
	ID         string         `json:"id" bson:"id"`
	Name       string         `json:"name" bson:"name"`
	MediaType  string         `json:"media_type" bson:"media_type"`
	Type       string         `json:"type" bson:"type"`
	Size       int64          `json:"size" bson:"size"`
	Content    string         `json:"content" bson:"content"`
	Preview    string         `json:"preview" bson:"preview"`
	Metadata   map[string]any `json:"metadata" bson:"metadata"`
	Statistics map[string]any `json:"statistics" bson:"statistics"`
	ArchiveURL string         `json:"archive_url,omitempty" bson:"archive_url,omitempty"`
	UploadedAt time.Time      `json:"uploaded_at" bson:"uploaded_at"`
}

// State 一个会话的全部持久化状态
type State struct {
	Conversations         map[string]conversation.Record `json:"conversations" bson:"conversations"`
	CurrentConversationID string                         `json:"current_conversation_id" bson:"current_conversation_id"`
	UserPreferences       Preferences                    `json:"user_preferences" bson:"user_preferences"`
	UploadedFiles         []UploadedFile                 `json:"uploaded_files" bson:"uploaded_files"`
	UpdatedAt             time.Time                      `json:"updated_at" bson:"updated_at"`
}

// NewState 创建空会话状态
func NewState(defaultModel string) *State {
	return &State{
		Conversations:   map[string]conversation.Record{},
		UserPreferences: DefaultPreferences(defaultModel),
		UploadedFiles:   []UploadedFile{},
	}
}

// normalize 补齐反序列化后为 nil 的集合字段
func (s *State) normalize(defaultModel string) *State {
	if s.Conversations == nil {
		s.Conversations = map[string]conversation.Record{}
	}
	if s.UploadedFiles == nil {
		s.UploadedFiles = []UploadedFile{}
	}
	if s.UserPreferences.Model == "" {
		s.UserPreferences.Model = defaultModel
	}
	return s
}

// Store 会话状态持久化端口
type Store interface {
	// Load 读取会话状态，不存在时返回新的空状态
	Load(ctx context.Context, sessionID string) (*State, error)

	// Save 覆盖写入会话状态
	Save(ctx context.Context, sessionID string, state *State) error

	// Delete 删除会话状态
	Delete(ctx context.Context, sessionID string) error

	// List 列出所有会话标识
	List(ctx context.Context) ([]string, error)
}
