// Package realtime 实现了按会话订阅/发布的实时下发通道。
// 编排层把流式事件推给已连接的订阅者；没有订阅者时发布是空操作，
// 请求本身照常同步完成，不依赖该通道。
package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"interview-copilot-go/pkg/log"

	"github.com/gorilla/websocket"
)

// 下发事件类型。
const (
	EventStreamStart = "stream_start"
	EventStreamChunk = "stream_chunk"
	EventStreamEnd   = "stream_end"
	EventError       = "error"
)

// Event 是推送给订阅者的一条下发事件。
type Event struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId"`
	Content   string `json:"content,omitempty"`  // stream_chunk 的增量分片
	Response  string `json:"response,omitempty"` // stream_end 的完整回答
	Error     string `json:"error,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// subscriber 包装一条 WebSocket 连接；写锁保证并发发布时单连接的写串行。
type subscriber struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *subscriber) send(evt Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// Hub 维护会话到订阅者的映射。每个会话至多一个订阅者，后连的替换先连的。
type Hub struct {
	subscribers sync.Map // key: sessionID, value: *subscriber
}

// NewHub 创建一个新的 Hub。
func NewHub() *Hub {
	return &Hub{}
}

// Subscribe 将连接注册为会话的订阅者，返回注销函数。
func (h *Hub) Subscribe(sessionID string, conn *websocket.Conn) func() {
	sub := &subscriber{conn: conn}
	h.subscribers.Store(sessionID, sub)
	return func() {
		// 只注销自己，避免摘掉后来替换上的连接
		if cur, ok := h.subscribers.Load(sessionID); ok && cur == sub {
			h.subscribers.Delete(sessionID)
		}
	}
}

// HasSubscriber 报告会话当前是否有已连接的订阅者。
func (h *Hub) HasSubscriber(sessionID string) bool {
	_, ok := h.subscribers.Load(sessionID)
	return ok
}

// Publish 向会话的订阅者推送一条事件。单一发布方顺序调用，
// 下发顺序与生成顺序一致。无订阅者时直接返回。
func (h *Hub) Publish(sessionID string, evt Event) {
	v, ok := h.subscribers.Load(sessionID)
	if !ok {
		return
	}
	evt.SessionID = sessionID
	if evt.Timestamp == 0 {
		evt.Timestamp = time.Now().UnixMilli()
	}
	if err := v.(*subscriber).send(evt); err != nil {
		log.Warnf("向会话 %s 推送 %s 事件失败: %v", sessionID, evt.Type, err)
		h.subscribers.Delete(sessionID)
	}
}
