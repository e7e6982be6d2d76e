package session

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/patrickmn/go-cache"
)

// MemoryStore 进程内会话存储，按 TTL 过期
type MemoryStore struct {
	cache        *cache.Cache
	defaultModel string
}

// NewMemoryStore 创建内存会话存储，ttl<=0 时永不过期
func NewMemoryStore(ttl time.Duration, defaultModel string) *MemoryStore {
	cleanup := 10 * time.Minute
	if ttl <= 0 {
		ttl = cache.NoExpiration
		cleanup = 0
	}
	return &MemoryStore{
		cache:        cache.New(ttl, cleanup),
		defaultModel: defaultModel,
	}
}

// Load 读取会话状态
func (s *MemoryStore) Load(ctx context.Context, sessionID string) (*State, error) {
	if err := ValidateID(sessionID); err != nil {
		return nil, err
	}
	raw, found := s.cache.Get(sessionID)
	if !found {
		return NewState(s.defaultModel), nil
	}
	var state State
	// 存储序列化副本，调用方修改不会污染缓存
	if err := json.Unmarshal(raw.([]byte), &state); err != nil {
		return nil, err
	}
	return state.normalize(s.defaultModel), nil
}

// Save 写入会话状态
func (s *MemoryStore) Save(ctx context.Context, sessionID string, state *State) error {
	if err := ValidateID(sessionID); err != nil {
		return err
	}
	state.UpdatedAt = time.Now()
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	s.cache.Set(sessionID, data, cache.DefaultExpiration)
	return nil
}

// Delete 删除会话状态
func (s *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	s.cache.Delete(sessionID)
	return nil
}

// List 列出未过期的会话
func (s *MemoryStore) List(ctx context.Context) ([]string, error) {
	items := s.cache.Items()
	ids := make([]string, 0, len(items))
	for k := range items {
		ids = append(ids, k)
	}
	sort.Strings(ids)
	return ids, nil
}
