package service

import (
	"context"
	"time"

	sessionrepo "cogniverse/internal/repository/session"
)

// nowFunc 当前时间，测试中可替换
var nowFunc = time.Now

// sessionState 已加载的会话状态，所有写入都整体保存
type sessionState struct {
	id    string
	repo  sessionrepo.Store
	state *sessionrepo.State
}

// save 在副本上应用修改，保存成功后才替换内存状态
// mutate 只能整体替换字段，不能原地修改 map 或切片
func (s *sessionState) save(ctx context.Context, mutate func(next *sessionrepo.State)) error {
	next := *s.state
	mutate(&next)
	next.UpdatedAt = nowFunc()
	if err := s.repo.Save(ctx, s.id, &next); err != nil {
		return err
	}
	*s.state = next
	return nil
}
