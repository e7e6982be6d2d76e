package service

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/rs/zerolog/log"

	sessionrepo "cogniverse/internal/repository/session"
)

// SessionLocks 每个会话一把互斥锁，同一会话的请求串行执行
type SessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// NewSessionLocks 创建会话锁表
func NewSessionLocks() *SessionLocks {
	return &SessionLocks{locks: map[string]*sessionLock{}}
}

// Lock 获取会话锁，返回的函数用于释放；无人持有时回收条目
func (l *SessionLocks) Lock(sessionID string) func() {
	l.mu.Lock()
	lk, ok := l.locks[sessionID]
	if !ok {
		lk = &sessionLock{}
		l.locks[sessionID] = lk
	}
	lk.refs++
	l.mu.Unlock()

	lk.mu.Lock()
	return func() {
		lk.mu.Unlock()
		l.mu.Lock()
		lk.refs--
		if lk.refs == 0 {
			delete(l.locks, sessionID)
		}
		l.mu.Unlock()
	}
}

// Len 当前持有或等待中的会话数
func (l *SessionLocks) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

// Session 一个已加载并加锁的用户会话
type Session struct {
	state         *sessionState
	Conversations *ConversationStore
}

// ID 会话标识
func (s *Session) ID() string {
	return s.state.id
}

// Preferences 当前偏好
func (s *Session) Preferences() sessionrepo.Preferences {
	return s.state.state.UserPreferences
}

// UpdatePreferences 修改并保存偏好
func (s *Session) UpdatePreferences(ctx context.Context, fn func(p *sessionrepo.Preferences)) (sessionrepo.Preferences, error) {
	prefs := s.state.state.UserPreferences
	fn(&prefs)
	if err := s.state.save(ctx, func(next *sessionrepo.State) { next.UserPreferences = prefs }); err != nil {
		return s.state.state.UserPreferences, fmt.Errorf("save preferences: %w", err)
	}
	return prefs, nil
}

// UploadedFiles 已处理的上传文件，按上传顺序
func (s *Session) UploadedFiles() []sessionrepo.UploadedFile {
	return slices.Clone(s.state.state.UploadedFiles)
}

// AddUploadedFile 追加文件，超过 limit 时丢弃最早的
func (s *Session) AddUploadedFile(ctx context.Context, f sessionrepo.UploadedFile, limit int) error {
	files := append(slices.Clone(s.state.state.UploadedFiles), f)
	if limit > 0 && len(files) > limit {
		files = files[len(files)-limit:]
	}
	if err := s.state.save(ctx, func(next *sessionrepo.State) { next.UploadedFiles = files }); err != nil {
		return fmt.Errorf("save uploaded file: %w", err)
	}
	return nil
}

// ClearUploadedFiles 清空上传文件
func (s *Session) ClearUploadedFiles(ctx context.Context) error {
	if err := s.state.save(ctx, func(next *sessionrepo.State) { next.UploadedFiles = []sessionrepo.UploadedFile{} }); err != nil {
		return fmt.Errorf("clear uploaded files: %w", err)
	}
	return nil
}

// SessionService 会话的加载、加锁与重置
type SessionService struct {
	repo         sessionrepo.Store
	locks        *SessionLocks
	app          AppInfo
	defaultModel string
}

// NewSessionService 创建会话服务
func NewSessionService(repo sessionrepo.Store, locks *SessionLocks, app AppInfo, defaultModel string) *SessionService {
	if locks == nil {
		locks = NewSessionLocks()
	}
	return &SessionService{repo: repo, locks: locks, app: app, defaultModel: defaultModel}
}

// Open 加锁并加载会话，调用方必须调用返回的 release
func (s *SessionService) Open(ctx context.Context, sessionID string) (*Session, func(), error) {
	if err := sessionrepo.ValidateID(sessionID); err != nil {
		return nil, nil, err
	}

	release := s.locks.Lock(sessionID)
	state, err := s.repo.Load(ctx, sessionID)
	if err != nil {
		release()
		return nil, nil, fmt.Errorf("load session: %w", err)
	}

	ss := &sessionState{id: sessionID, repo: s.repo, state: state}
	return &Session{state: ss, Conversations: newConversationStore(ss, s.app)}, release, nil
}

// WithSession 在会话锁内执行 fn
func (s *SessionService) WithSession(ctx context.Context, sessionID string, fn func(sess *Session) error) error {
	sess, release, err := s.Open(ctx, sessionID)
	if err != nil {
		return err
	}
	defer release()
	return fn(sess)
}

// Reset 删除会话的全部状态
func (s *SessionService) Reset(ctx context.Context, sessionID string) error {
	if err := sessionrepo.ValidateID(sessionID); err != nil {
		return err
	}
	release := s.locks.Lock(sessionID)
	defer release()

	if err := s.repo.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("reset session: %w", err)
	}
	log.Info().Str("session_id", sessionID).Msg("session reset")
	return nil
}

// CleanupResult 批量清理的结果
type CleanupResult struct {
	Sessions int `json:"sessions"`
	Removed  int `json:"removed"`
	Failed   int `json:"failed"`
}

// CleanupAll 对每个会话执行 CleanupOldConversations
func (s *SessionService) CleanupAll(ctx context.Context, daysOld int) (CleanupResult, error) {
	ids, err := s.repo.List(ctx)
	if err != nil {
		return CleanupResult{}, fmt.Errorf("list sessions: %w", err)
	}

	var result CleanupResult
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		err := s.WithSession(ctx, id, func(sess *Session) error {
			n, err := sess.Conversations.CleanupOldConversations(ctx, daysOld)
			result.Removed += n
			return err
		})
		result.Sessions++
		if err != nil {
			result.Failed++
			log.Error().Err(err).Str("session_id", id).Msg("cleanup failed for session")
		}
	}
	log.Info().
		Int("sessions", result.Sessions).
		Int("removed", result.Removed).
		Int("failed", result.Failed).
		Msg("conversation cleanup finished")
	return result, nil
}
