package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"cogniverse/internal/model/conversation"
	sessionrepo "cogniverse/internal/repository/session"
)

const (
	searchPreviewMessages = 3
	defaultRecentHistory  = 10
)

// MessageView 对外展示的消息
type MessageView struct {
	ID        string            `json:"id"`
	Content   string            `json:"content"`
	Role      conversation.Role `json:"role"`
	Timestamp time.Time         `json:"timestamp"`
	ModelUsed string            `json:"model_used,omitempty"`
	Metadata  map[string]any    `json:"metadata"`
}

func newMessageView(m *conversation.Message) MessageView {
	return MessageView{
		ID:        m.ID,
		Content:   m.Content,
		Role:      m.Role,
		Timestamp: m.Timestamp,
		ModelUsed: m.ModelUsed,
		Metadata:  m.Metadata,
	}
}

// SearchResult 单个对话的搜索命中
type SearchResult struct {
	ConversationID    string        `json:"conversation_id"`
	ConversationTitle string        `json:"conversation_title"`
	MatchingMessages  int           `json:"matching_messages"`
	Messages          []MessageView `json:"messages"`
	updatedAt         time.Time
}

// ModelUsage 模型被多少个对话使用过
type ModelUsage struct {
	Model string `json:"model"`
	Count int    `json:"count"`
}

// Stats 全部对话的统计信息
type Stats struct {
	TotalConversations             int            `json:"total_conversations"`
	TotalMessages                  int            `json:"total_messages"`
	AverageMessagesPerConversation float64        `json:"average_messages_per_conversation"`
	MostUsedModels                 []ModelUsage   `json:"most_used_models"`
	ConversationActivity           map[string]int `json:"conversation_activity"`
	OldestConversation             *time.Time     `json:"oldest_conversation"`
	NewestConversation             *time.Time     `json:"newest_conversation"`
}

// AppInfo 导出文件中的应用信息
type AppInfo struct {
	Name    string
	Version string
}

// ConversationStore 一个会话内的对话集合，每次修改都整体写回持久化端口
type ConversationStore struct {
	session       *sessionState
	conversations map[string]*conversation.Conversation
	currentID     string
	app           AppInfo
	logger        zerolog.Logger
}

// NewConversationStore 由已加载的会话状态构建，损坏的对话记录被跳过
func NewConversationStore(sessionID string, repo sessionrepo.Store, state *sessionrepo.State, app AppInfo) *ConversationStore {
	return newConversationStore(&sessionState{id: sessionID, repo: repo, state: state}, app)
}

func newConversationStore(ss *sessionState, app AppInfo) *ConversationStore {
	s := &ConversationStore{
		session:       ss,
		conversations: make(map[string]*conversation.Conversation, len(ss.state.Conversations)),
		currentID:     ss.state.CurrentConversationID,
		app:           app,
		logger:        log.With().Str("session_id", ss.id).Logger(),
	}
	for id, rec := range ss.state.Conversations {
		conv, err := conversation.FromRecord(rec)
		if err != nil {
			s.logger.Warn().Err(err).Str("conversation_id", id).Msg("skipping unreadable conversation")
			continue
		}
		s.conversations[conv.ID] = conv
	}
	return s
}

// persist 序列化全部对话并保存
func (s *ConversationStore) persist(ctx context.Context) error {
	records := make(map[string]conversation.Record, len(s.conversations))
	for id, conv := range s.conversations {
		records[id] = conv.ToRecord()
	}
	current := s.currentID
	return s.session.save(ctx, func(next *sessionrepo.State) {
		next.Conversations = records
		next.CurrentConversationID = current
	})
}

// CreateNewConversation 创建并选中新对话，持久化失败只记录日志
func (s *ConversationStore) CreateNewConversation(ctx context.Context, title string) string {
	conv := conversation.New(title)
	s.conversations[conv.ID] = conv
	s.currentID = conv.ID
	if err := s.persist(ctx); err != nil {
		s.logger.Error().Err(err).Str("conversation_id", conv.ID).Msg("failed to persist new conversation")
	}
	s.logger.Info().Str("conversation_id", conv.ID).Msg("created new conversation")
	return conv.ID
}

// GetCurrentConversation 返回当前对话，没有选中或选中的已不存在时新建
func (s *ConversationStore) GetCurrentConversation(ctx context.Context) *conversation.Conversation {
	if s.currentID == "" {
		s.CreateNewConversation(ctx, "")
		return s.conversations[s.currentID]
	}
	if conv, ok := s.conversations[s.currentID]; ok {
		return conv
	}

	s.logger.Warn().Str("conversation_id", s.currentID).Msg("conversation not found, creating new one")
	s.CreateNewConversation(ctx, "")
	return s.conversations[s.currentID]
}

// CurrentConversationID 当前选中的对话标识，可能为空
func (s *ConversationStore) CurrentConversationID() string {
	return s.currentID
}

// AddMessage 追加一问一答，任何失败都恢复到调用前的状态并返回 false
func (s *ConversationStore) AddMessage(ctx context.Context, userInput, aiResponse, model string) (ok bool) {
	var (
		conv     *conversation.Conversation
		snapshot *conversation.Conversation
	)
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Interface("panic", r).Msg("error adding message")
			if conv != nil && snapshot != nil {
				*conv = *snapshot
			}
			ok = false
		}
	}()

	conv = s.GetCurrentConversation(ctx)
	if conv == nil {
		s.logger.Error().Err(ErrNoConversation).Msg("no current conversation available")
		return false
	}
	snapshot = conv.Clone()

	conv.AddMessage(userInput, conversation.RoleUser, "")
	conv.AddMessage(aiResponse, conversation.RoleAssistant, model)

	if err := s.persist(ctx); err != nil {
		*conv = *snapshot
		s.logger.Error().Err(err).Str("conversation_id", conv.ID).Msg("error adding message")
		return false
	}

	s.logger.Info().Str("conversation_id", conv.ID).Msg("added message exchange")
	return true
}

// Conversation 按标识查找对话
func (s *ConversationStore) Conversation(id string) (*conversation.Conversation, bool) {
	conv, ok := s.conversations[id]
	return conv, ok
}

// GetConversationHistory id 为空时取当前对话，对话不存在时返回空列表
func (s *ConversationStore) GetConversationHistory(ctx context.Context, id string) []MessageView {
	var conv *conversation.Conversation
	if id == "" {
		conv = s.GetCurrentConversation(ctx)
	} else {
		conv = s.conversations[id]
	}
	if conv == nil {
		return []MessageView{}
	}

	history := make([]MessageView, 0, len(conv.Messages))
	for _, m := range conv.Messages {
		history = append(history, newMessageView(m))
	}
	return history
}

// GetRecentHistory 当前对话最后 limit 条消息
func (s *ConversationStore) GetRecentHistory(ctx context.Context, limit int) []MessageView {
	if limit <= 0 {
		limit = defaultRecentHistory
	}
	history := s.GetConversationHistory(ctx, "")
	if len(history) > limit {
		history = history[len(history)-limit:]
	}
	return history
}

// SearchConversations 按命中数降序，相同时最近更新的在前，再按标识升序
func (s *ConversationStore) SearchConversations(query string) []SearchResult {
	results := []SearchResult{}
	for _, conv := range s.conversations {
		matches := conv.SearchMessages(query)
		if len(matches) == 0 {
			continue
		}
		views := make([]MessageView, 0, searchPreviewMessages)
		for _, m := range matches[:min(searchPreviewMessages, len(matches))] {
			views = append(views, newMessageView(m))
		}
		results = append(results, SearchResult{
			ConversationID:    conv.ID,
			ConversationTitle: conv.Title,
			MatchingMessages:  len(matches),
			Messages:          views,
			updatedAt:         conv.UpdatedAt,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.MatchingMessages != b.MatchingMessages {
			return a.MatchingMessages > b.MatchingMessages
		}
		if !a.updatedAt.Equal(b.updatedAt) {
			return a.updatedAt.After(b.updatedAt)
		}
		return a.ConversationID < b.ConversationID
	})
	return results
}

// ListConversations 对话摘要，最近更新的在前
func (s *ConversationStore) ListConversations() []conversation.Summary {
	convs := s.sortedByUpdated()
	out := make([]conversation.Summary, 0, len(convs))
	for _, conv := range convs {
		out = append(out, conv.Summary())
	}
	return out
}

func (s *ConversationStore) sortedByUpdated() []*conversation.Conversation {
	convs := make([]*conversation.Conversation, 0, len(s.conversations))
	for _, conv := range s.conversations {
		convs = append(convs, conv)
	}
	sort.Slice(convs, func(i, j int) bool {
		if !convs[i].UpdatedAt.Equal(convs[j].UpdatedAt) {
			return convs[i].UpdatedAt.After(convs[j].UpdatedAt)
		}
		return convs[i].ID < convs[j].ID
	})
	return convs
}

// SelectConversation 切换当前对话
func (s *ConversationStore) SelectConversation(ctx context.Context, id string) error {
	if _, ok := s.conversations[id]; !ok {
		return ErrConversationNotFound
	}
	prev := s.currentID
	s.currentID = id
	if err := s.persist(ctx); err != nil {
		s.currentID = prev
		return fmt.Errorf("select conversation: %w", err)
	}
	return nil
}

// DeleteConversation 删除对话，删除当前对话时清空选中
func (s *ConversationStore) DeleteConversation(ctx context.Context, id string) error {
	conv, ok := s.conversations[id]
	if !ok {
		return ErrConversationNotFound
	}
	prevCurrent := s.currentID
	delete(s.conversations, id)
	if s.currentID == id {
		s.currentID = ""
	}
	if err := s.persist(ctx); err != nil {
		s.conversations[id] = conv
		s.currentID = prevCurrent
		return fmt.Errorf("delete conversation: %w", err)
	}
	s.logger.Info().Str("conversation_id", id).Msg("deleted conversation")
	return nil
}

// ClearConversations 删除全部对话
func (s *ConversationStore) ClearConversations(ctx context.Context) error {
	prev, prevCurrent := s.conversations, s.currentID
	s.conversations = map[string]*conversation.Conversation{}
	s.currentID = ""
	if err := s.persist(ctx); err != nil {
		s.conversations, s.currentID = prev, prevCurrent
		return fmt.Errorf("clear conversations: %w", err)
	}
	s.logger.Info().Int("count", len(prev)).Msg("cleared conversations")
	return nil
}

// update 对单个对话应用修改，保存失败时回滚
func (s *ConversationStore) update(ctx context.Context, id string, fn func(conv *conversation.Conversation)) error {
	conv, ok := s.conversations[id]
	if !ok {
		return ErrConversationNotFound
	}
	snapshot := conv.Clone()
	fn(conv)
	if err := s.persist(ctx); err != nil {
		*conv = *snapshot
		return err
	}
	return nil
}

// SetFavorite 设置收藏，收藏的对话不会被清理
func (s *ConversationStore) SetFavorite(ctx context.Context, id string, favorite bool) error {
	return s.update(ctx, id, func(conv *conversation.Conversation) { conv.SetFavorite(favorite) })
}

// AddTag 添加标签
func (s *ConversationStore) AddTag(ctx context.Context, id, tag string) error {
	return s.update(ctx, id, func(conv *conversation.Conversation) { conv.AddTag(tag) })
}

// RemoveTag 删除标签
func (s *ConversationStore) RemoveTag(ctx context.Context, id, tag string) error {
	return s.update(ctx, id, func(conv *conversation.Conversation) { conv.RemoveTag(tag) })
}

// RenameConversation 修改标题
func (s *ConversationStore) RenameConversation(ctx context.Context, id, title string) error {
	return s.update(ctx, id, func(conv *conversation.Conversation) { conv.Rename(title) })
}

// GetConversationStats 空集合时各项为 0 且不报错
func (s *ConversationStore) GetConversationStats() Stats {
	stats := Stats{
		MostUsedModels:       []ModelUsage{},
		ConversationActivity: map[string]int{},
	}
	if len(s.conversations) == 0 {
		return stats
	}

	usage := map[string]int{}
	var oldest, newest time.Time
	for _, conv := range s.conversations {
		stats.TotalMessages += len(conv.Messages)
		for m := range conv.Metadata.ModelsUsed {
			usage[m]++
		}
		stats.ConversationActivity[conv.CreatedAt.Format(time.DateOnly)]++
		if oldest.IsZero() || conv.CreatedAt.Before(oldest) {
			oldest = conv.CreatedAt
		}
		if newest.IsZero() || conv.CreatedAt.After(newest) {
			newest = conv.CreatedAt
		}
	}

	stats.TotalConversations = len(s.conversations)
	stats.AverageMessagesPerConversation = float64(stats.TotalMessages) / float64(stats.TotalConversations)
	for m, n := range usage {
		stats.MostUsedModels = append(stats.MostUsedModels, ModelUsage{Model: m, Count: n})
	}
	sort.Slice(stats.MostUsedModels, func(i, j int) bool {
		a, b := stats.MostUsedModels[i], stats.MostUsedModels[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Model < b.Model
	})
	stats.OldestConversation = &oldest
	stats.NewestConversation = &newest
	return stats
}

// CleanupOldConversations 删除 UpdatedAt 早于 daysOld 天前的非收藏对话
func (s *ConversationStore) CleanupOldConversations(ctx context.Context, daysOld int) (int, error) {
	cutoff := nowFunc().AddDate(0, 0, -daysOld)
	removed := map[string]*conversation.Conversation{}
	for id, conv := range s.conversations {
		if conv.UpdatedAt.Before(cutoff) && !conv.Metadata.IsFavorite {
			removed[id] = conv
		}
	}
	if len(removed) == 0 {
		return 0, nil
	}

	for id := range removed {
		delete(s.conversations, id)
	}
	if err := s.persist(ctx); err != nil {
		for id, conv := range removed {
			s.conversations[id] = conv
		}
		return 0, fmt.Errorf("cleanup conversations: %w", err)
	}
	for id := range removed {
		s.logger.Info().Str("conversation_id", id).Msg("removed old conversation")
	}
	return len(removed), nil
}
