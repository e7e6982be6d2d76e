package service

import (
	"context"
	"errors"
	"sync"
	"time"

	sessionrepo "cogniverse/internal/repository/session"
)

const testModel = "gemini-1.5-flash"

var errStoreDown = errors.New("store unavailable")

// flakyStore 可以按需让 Save 失败的内存存储
type flakyStore struct {
	*sessionrepo.MemoryStore
	mu       sync.Mutex
	failSave bool
	saves    int
}

func newFlakyStore() *flakyStore {
	return &flakyStore{MemoryStore: sessionrepo.NewMemoryStore(time.Hour, testModel)}
}

func (s *flakyStore) setFail(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failSave = fail
}

func (s *flakyStore) Save(ctx context.Context, sessionID string, state *sessionrepo.State) error {
	s.mu.Lock()
	fail := s.failSave
	s.saves++
	s.mu.Unlock()
	if fail {
		return errStoreDown
	}
	return s.MemoryStore.Save(ctx, sessionID, state)
}

func newTestStore(repo sessionrepo.Store) *ConversationStore {
	return NewConversationStore("test-session", repo, sessionrepo.NewState(testModel), AppInfo{Name: "CogniVerse", Version: "1.0.0"})
}
