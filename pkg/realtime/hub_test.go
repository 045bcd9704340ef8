package realtime

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"interview-copilot-go/pkg/log"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	log.Init("error", "console", "")
	os.Exit(m.Run())
}

// dialPair 建立一对真实的 WebSocket 连接，返回服务端侧与客户端侧。
func dialPair(t *testing.T) (*websocket.Conn, *websocket.Conn) {
	t.Helper()
	upgrader := websocket.Upgrader{}
	connCh := make(chan *websocket.Conn, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		connCh <- c
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	server := <-connCh
	t.Cleanup(func() { server.Close() })
	return server, client
}

func TestPublishDeliversEvent(t *testing.T) {
	hub := NewHub()
	server, client := dialPair(t)

	unsub := hub.Subscribe("s1", server)
	defer unsub()

	require.True(t, hub.HasSubscriber("s1"))
	assert.False(t, hub.HasSubscriber("other"))

	hub.Publish("s1", Event{Type: EventStreamChunk, Content: "hello "})

	_, data, err := client.ReadMessage()
	require.NoError(t, err)

	var evt Event
	require.NoError(t, json.Unmarshal(data, &evt))
	assert.Equal(t, EventStreamChunk, evt.Type)
	assert.Equal(t, "hello ", evt.Content)
	// 发布时补齐会话 ID 与时间戳
	assert.Equal(t, "s1", evt.SessionID)
	assert.NotZero(t, evt.Timestamp)
}

// 无订阅者时发布是空操作，不报错不阻塞。
func TestPublishWithoutSubscriber(t *testing.T) {
	hub := NewHub()
	hub.Publish("nobody", Event{Type: EventStreamStart})
}

// 每会话至多一个订阅者：后连的替换先连的，先连者的注销函数
// 不会摘掉替换上来的连接。
func TestSubscribeReplaceAndSelfUnsubscribe(t *testing.T) {
	hub := NewHub()
	serverA, _ := dialPair(t)
	serverB, clientB := dialPair(t)

	unsubA := hub.Subscribe("s1", serverA)
	unsubB := hub.Subscribe("s1", serverB)

	// A 的注销只针对自己，B 仍是订阅者
	unsubA()
	require.True(t, hub.HasSubscriber("s1"))

	hub.Publish("s1", Event{Type: EventStreamEnd, Response: "done."})
	_, data, err := clientB.ReadMessage()
	require.NoError(t, err)
	var evt Event
	require.NoError(t, json.Unmarshal(data, &evt))
	assert.Equal(t, EventStreamEnd, evt.Type)

	unsubB()
	assert.False(t, hub.HasSubscriber("s1"))
}

// 推送失败的连接被摘除，后续发布退回空操作。
func TestPublishDropsDeadSubscriber(t *testing.T) {
	hub := NewHub()
	server, client := dialPair(t)

	hub.Subscribe("s1", server)
	require.NoError(t, client.Close())
	require.NoError(t, server.Close())

	hub.Publish("s1", Event{Type: EventStreamStart})
	assert.False(t, hub.HasSubscriber("s1"))
}
