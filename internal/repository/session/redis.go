package session

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"cogniverse/internal/pkg/cache"
)

// RedisStore 基于 Redis 的会话存储
type RedisStore struct {
	cache        *cache.RedisCache
	ttl          time.Duration
	defaultModel string
}

// NewRedisStore 创建 Redis 会话存储
func NewRedisStore(rc *cache.RedisCache, ttl time.Duration, defaultModel string) *RedisStore {
	return &RedisStore{cache: rc, ttl: ttl, defaultModel: defaultModel}
}

// Load 读取会话状态
func (s *RedisStore) Load(ctx context.Context, sessionID string) (*State, error) {
	if err := ValidateID(sessionID); err != nil {
		return nil, err
	}
	var state State
	if err := s.cache.Get(ctx, cache.SessionKey(sessionID), &state); err != nil {
		if cache.IsNotFound(err) {
			return NewState(s.defaultModel), nil
		}
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}
	return state.normalize(s.defaultModel), nil
}

// Save 写入会话状态并刷新 TTL
func (s *RedisStore) Save(ctx context.Context, sessionID string, state *State) error {
	if err := ValidateID(sessionID); err != nil {
		return err
	}
	state.UpdatedAt = time.Now()
	if err := s.cache.Set(ctx, cache.SessionKey(sessionID), state, s.ttl); err != nil {
		return fmt.Errorf("save session %s: %w", sessionID, err)
	}
	return nil
}

// Delete 删除会话状态
func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	return s.cache.Delete(ctx, cache.SessionKey(sessionID))
}

// List 列出所有会话
func (s *RedisStore) List(ctx context.Context) ([]string, error) {
	keys, err := s.cache.Keys(ctx, cache.SessionKeyPrefix+"*")
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		ids = append(ids, strings.TrimPrefix(k, cache.SessionKeyPrefix))
	}
	sort.Strings(ids)
	return ids, nil
}
