package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"interview-copilot-go/internal/config"
	"interview-copilot-go/pkg/log"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	log.Init("error", "console", "")
	os.Exit(m.Run())
}

func collect(t *testing.T, ch <-chan Fragment) (string, bool) {
	t.Helper()
	var sb strings.Builder
	simulated := false
	for f := range ch {
		sb.WriteString(f.Text)
		if f.Simulated {
			simulated = true
		}
	}
	return sb.String(), simulated
}

// 未配置凭证时，流式调用完整走模拟回复链路。
func TestStreamWithoutCredentials(t *testing.T) {
	c := NewClient(config.LLMConfig{})

	ch, err := c.StreamChatCompletion(context.Background(), []Message{{Role: "user", Content: "hi"}}, nil)
	require.NoError(t, err)

	text, simulated := collect(t, ch)
	assert.True(t, simulated)
	assert.True(t, strings.HasSuffix(text, "."), "simulated answer must end a sentence, got %q", text)
	assert.Contains(t, text, simulatedBody)
}

func TestChatCompletionWithoutCredentials(t *testing.T) {
	c := NewClient(config.LLMConfig{})

	got, err := c.ChatCompletion(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(got, "."))
}

func TestStreamParsesSSE(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"Hello \"}}]}\n\n")
		fmt.Fprint(w, ": keep-alive comment lines are ignored\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"world.\"}}]}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	c := NewClient(config.LLMConfig{APIKey: "test-key", BaseURL: srv.URL, Model: "m", TimeoutSeconds: 5})
	ch, err := c.StreamChatCompletion(context.Background(), []Message{{Role: "user", Content: "hi"}}, nil)
	require.NoError(t, err)

	text, simulated := collect(t, ch)
	assert.Equal(t, "Hello world.", text)
	assert.False(t, simulated)
}

// 上游回答以悬空词断尾时，补全的收束语同样从流上下发。
func TestStreamAppendsConclusion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"Sharding splits the data across nodes so each one only handles part of the load and\"}}]}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	c := NewClient(config.LLMConfig{APIKey: "test-key", BaseURL: srv.URL, Model: "m", TimeoutSeconds: 5})
	ch, err := c.StreamChatCompletion(context.Background(), nil, nil)
	require.NoError(t, err)

	text, _ := collect(t, ch)
	assert.True(t, strings.HasSuffix(text, "."), "got %q", text)
	assert.Contains(t, text, "part of the load and ")
}

// 流式建连拿到非 200 状态时切换为模拟回复，通道仍正常给出完整回答。
func TestStreamFallsBackOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(config.LLMConfig{APIKey: "test-key", BaseURL: srv.URL, Model: "m", TimeoutSeconds: 5})
	ch, err := c.StreamChatCompletion(context.Background(), nil, nil)
	require.NoError(t, err)

	text, simulated := collect(t, ch)
	assert.True(t, simulated)
	assert.True(t, strings.HasSuffix(text, "."))
}

func TestChatCompletion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"choices":[{"message":{"content":"A mutex serializes access to shared state."}}]}`)
	}))
	defer srv.Close()

	c := NewClient(config.LLMConfig{APIKey: "test-key", BaseURL: srv.URL, Model: "m", TimeoutSeconds: 5})
	got, err := c.ChatCompletion(context.Background(), []Message{{Role: "user", Content: "what is a mutex"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, "A mutex serializes access to shared state.", got)
}

// 非流式调用遇到非 200 状态要把错误交还给调用方。
func TestChatCompletionServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(config.LLMConfig{APIKey: "test-key", BaseURL: srv.URL, Model: "m", TimeoutSeconds: 5})
	_, err := c.ChatCompletion(context.Background(), nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-200")
}
