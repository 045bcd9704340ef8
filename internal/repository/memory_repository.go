package repository

import (
	"context"
	"sync"
	"time"

	"interview-copilot-go/internal/model"

	"github.com/google/uuid"
)

// memorySessionRepository 是与 Redis 实现语义一致的进程内实现，
// 供未配置 Redis 的开发模式与测试使用。会话之间通过按会话键控的
// 并发映射隔离，无跨会话锁。
type memorySessionRepository struct {
	historyCap int
	sessions   sync.Map // key: sessionID, value: *sessionState
}

type sessionState struct {
	mu         sync.Mutex
	turns      []model.Turn
	background string
}

// NewMemorySessionRepository 创建一个进程内的 SessionRepository 实例。
func NewMemorySessionRepository(historyCap int) SessionRepository {
	if historyCap <= 0 {
		historyCap = 10
	}
	return &memorySessionRepository{historyCap: historyCap}
}

func (r *memorySessionRepository) state(sessionID string) *sessionState {
	s, _ := r.sessions.LoadOrStore(sessionID, &sessionState{})
	return s.(*sessionState)
}

func (r *memorySessionRepository) AppendTurn(_ context.Context, sessionID, role, content string, isVoice bool) (*model.Turn, error) {
	s := r.state(sessionID)
	s.mu.Lock()
	defer s.mu.Unlock()

	turn := model.Turn{
		ID:            uuid.NewString(),
		SessionID:     sessionID,
		Role:          role,
		Content:       content,
		CreatedAt:     time.Now(),
		IsVoiceOrigin: isVoice,
	}
	s.turns = append(s.turns, turn)
	if len(s.turns) > r.historyCap {
		s.turns = s.turns[len(s.turns)-r.historyCap:]
	}
	return &turn, nil
}

func (r *memorySessionRepository) RecentTurns(_ context.Context, sessionID string, limit int) ([]model.Turn, error) {
	s := r.state(sessionID)
	s.mu.Lock()
	defer s.mu.Unlock()

	turns := s.turns
	if limit > 0 && len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}
	out := make([]model.Turn, len(turns))
	copy(out, turns)
	return out, nil
}

func (r *memorySessionRepository) SetContext(_ context.Context, sessionID, text string) error {
	s := r.state(sessionID)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.background = text
	return nil
}

func (r *memorySessionRepository) GetContext(_ context.Context, sessionID string) (string, error) {
	s := r.state(sessionID)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.background, nil
}

func (r *memorySessionRepository) ClearSession(_ context.Context, sessionID string) error {
	r.sessions.Delete(sessionID)
	return nil
}
