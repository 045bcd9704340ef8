// Package repository 提供了数据访问层的实现。
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"interview-copilot-go/internal/model"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// 会话数据的保留时长。会话状态是短生命期的，不做跨周期持久化。
const sessionTTL = 7 * 24 * time.Hour

// SessionRepository 定义了会话轮次日志与背景资料的操作接口。
// 追加超过保留上限时淘汰最旧的轮次（FIFO）；背景资料每会话唯一，后写覆盖。
type SessionRepository interface {
	AppendTurn(ctx context.Context, sessionID, role, content string, isVoice bool) (*model.Turn, error)
	// RecentTurns 返回最近的 limit 条轮次，最旧的在前。limit<=0 表示取全部留存。
	RecentTurns(ctx context.Context, sessionID string, limit int) ([]model.Turn, error)
	SetContext(ctx context.Context, sessionID, text string) error
	// GetContext 返回会话背景资料；未设置时返回空串而不是错误。
	GetContext(ctx context.Context, sessionID string) (string, error)
	ClearSession(ctx context.Context, sessionID string) error
}

type redisSessionRepository struct {
	redisClient *redis.Client
	historyCap  int
	// 每会话一把追加锁，保证轮次追加与 FIFO 裁剪的原子性。
	// 不同会话之间不互相阻塞。
	locks sync.Map // key: sessionID, value: *sync.Mutex
}

// NewSessionRepository 创建一个基于 Redis 的 SessionRepository 实例。
func NewSessionRepository(redisClient *redis.Client, historyCap int) SessionRepository {
	if historyCap <= 0 {
		historyCap = 10
	}
	return &redisSessionRepository{
		redisClient: redisClient,
		historyCap:  historyCap,
	}
}

func turnsKey(sessionID string) string {
	return fmt.Sprintf("session:%s:turns", sessionID)
}

func contextKey(sessionID string) string {
	return fmt.Sprintf("session:%s:context", sessionID)
}

func (r *redisSessionRepository) sessionLock(sessionID string) *sync.Mutex {
	mu, _ := r.locks.LoadOrStore(sessionID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// AppendTurn 追加一条轮次并按保留上限裁剪最旧的记录。
func (r *redisSessionRepository) AppendTurn(ctx context.Context, sessionID, role, content string, isVoice bool) (*model.Turn, error) {
	mu := r.sessionLock(sessionID)
	mu.Lock()
	defer mu.Unlock()

	turns, err := r.loadTurns(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	turn := model.Turn{
		ID:            uuid.NewString(),
		SessionID:     sessionID,
		Role:          role,
		Content:       content,
		CreatedAt:     time.Now(),
		IsVoiceOrigin: isVoice,
	}
	turns = append(turns, turn)
	if len(turns) > r.historyCap {
		turns = turns[len(turns)-r.historyCap:]
	}

	data, err := json.Marshal(turns)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal turn log: %w", err)
	}
	if err := r.redisClient.Set(ctx, turnsKey(sessionID), data, sessionTTL).Err(); err != nil {
		return nil, fmt.Errorf("failed to save turn log: %w", err)
	}
	return &turn, nil
}

// RecentTurns 返回最近的 limit 条轮次，保持最旧在前的顺序。
func (r *redisSessionRepository) RecentTurns(ctx context.Context, sessionID string, limit int) ([]model.Turn, error) {
	turns, err := r.loadTurns(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}
	return turns, nil
}

func (r *redisSessionRepository) loadTurns(ctx context.Context, sessionID string) ([]model.Turn, error) {
	jsonData, err := r.redisClient.Get(ctx, turnsKey(sessionID)).Result()
	if err == redis.Nil {
		return []model.Turn{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get turn log: %w", err)
	}
	var turns []model.Turn
	if err := json.Unmarshal([]byte(jsonData), &turns); err != nil {
		return nil, fmt.Errorf("failed to unmarshal turn log: %w", err)
	}
	return turns, nil
}

// SetContext 保存会话背景资料，后写完全覆盖先前内容。
func (r *redisSessionRepository) SetContext(ctx context.Context, sessionID, text string) error {
	sc := model.SessionContext{
		SessionID:      sessionID,
		BackgroundText: text,
		CreatedAt:      time.Now(),
	}
	data, err := json.Marshal(sc)
	if err != nil {
		return fmt.Errorf("failed to marshal session context: %w", err)
	}
	if err := r.redisClient.Set(ctx, contextKey(sessionID), data, sessionTTL).Err(); err != nil {
		return fmt.Errorf("failed to save session context: %w", err)
	}
	return nil
}

func (r *redisSessionRepository) GetContext(ctx context.Context, sessionID string) (string, error) {
	jsonData, err := r.redisClient.Get(ctx, contextKey(sessionID)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get session context: %w", err)
	}
	var sc model.SessionContext
	if err := json.Unmarshal([]byte(jsonData), &sc); err != nil {
		return "", fmt.Errorf("failed to unmarshal session context: %w", err)
	}
	return sc.BackgroundText, nil
}

// ClearSession 删除会话的轮次日志与背景资料。
func (r *redisSessionRepository) ClearSession(ctx context.Context, sessionID string) error {
	if err := r.redisClient.Del(ctx, turnsKey(sessionID), contextKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	r.locks.Delete(sessionID)
	return nil
}
