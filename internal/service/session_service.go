package service

import (
	"context"

	"interview-copilot-go/internal/model"
	"interview-copilot-go/internal/repository"
)

// SessionService 定义了会话状态管理的接口。
type SessionService interface {
	// SetBackground 保存会话背景资料，后写覆盖。
	SetBackground(ctx context.Context, sessionID, content string) error
	// History 返回会话留存的全部轮次，最旧在前。
	History(ctx context.Context, sessionID string) ([]model.Turn, error)
	// Clear 删除会话的轮次日志与背景资料。
	Clear(ctx context.Context, sessionID string) error
}

type sessionService struct {
	repo repository.SessionRepository
}

// NewSessionService 创建一个新的 SessionService 实例。
func NewSessionService(repo repository.SessionRepository) SessionService {
	return &sessionService{repo: repo}
}

func (s *sessionService) SetBackground(ctx context.Context, sessionID, content string) error {
	return s.repo.SetContext(ctx, sessionID, content)
}

func (s *sessionService) History(ctx context.Context, sessionID string) ([]model.Turn, error) {
	return s.repo.RecentTurns(ctx, sessionID, 0)
}

func (s *sessionService) Clear(ctx context.Context, sessionID string) error {
	return s.repo.ClearSession(ctx, sessionID)
}
