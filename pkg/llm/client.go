// Package llm 提供了调用外部文本补全服务的客户端。
// 流式返回被建模为一个有限的文本分片通道，而不是写回调：
// 调用方既可以逐片转发给订阅者，也可以累积成完整回答。
// 凭证缺失、请求超时或传输失败时，客户端透明地退化为本地模拟回复，
// 保证调用方始终拿到一个完整、成句的答案。
package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"interview-copilot-go/internal/config"
	"interview-copilot-go/pkg/log"
)

// Message 表示一条角色消息。
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// GenerationParams 控制生成行为。
type GenerationParams struct {
	Temperature *float64
	TopP        *float64
	MaxTokens   *int
}

// Fragment 是流式输出中的一个文本分片。
// Simulated 标记该分片来自本地模拟回复而非上游服务。
type Fragment struct {
	Text      string
	Simulated bool
}

// Client 定义了补全服务客户端的接口。
type Client interface {
	// ChatCompletion 以非流式方式调用补全接口，返回完整文本。
	ChatCompletion(ctx context.Context, messages []Message, gen *GenerationParams) (string, error)
	// StreamChatCompletion 以流式方式调用补全接口。
	// 返回的通道按生成顺序给出文本分片，结束后关闭；通道创建后不再失败，
	// 上游故障由内部的模拟回复兜底。
	StreamChatCompletion(ctx context.Context, messages []Message, gen *GenerationParams) (<-chan Fragment, error)
}

type completionClient struct {
	cfg    config.LLMConfig
	client *http.Client
}

// NewClient 创建一个新的补全服务客户端。
func NewClient(cfg config.LLMConfig) Client {
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = 15
	}
	return &completionClient{
		cfg:    cfg,
		client: &http.Client{},
	}
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Stream      bool      `json:"stream"`
	Temperature *float64  `json:"temperature,omitempty"`
	TopP        *float64  `json:"top_p,omitempty"`
	MaxTokens   *int      `json:"max_tokens,omitempty"`
}

type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *completionClient) buildRequest(ctx context.Context, messages []Message, gen *GenerationParams, stream bool) (*http.Request, error) {
	reqBody := chatRequest{
		Model:    c.cfg.Model,
		Messages: messages,
		Stream:   stream,
	}
	// 生成参数：传参优先，其次取全局配置中的非零值。
	if gen != nil {
		reqBody.Temperature = gen.Temperature
		reqBody.TopP = gen.TopP
		reqBody.MaxTokens = gen.MaxTokens
	} else {
		if c.cfg.Generation.Temperature != 0 {
			t := c.cfg.Generation.Temperature
			reqBody.Temperature = &t
		}
		if c.cfg.Generation.TopP != 0 {
			p := c.cfg.Generation.TopP
			reqBody.TopP = &p
		}
		if c.cfg.Generation.MaxTokens != 0 {
			m := c.cfg.Generation.MaxTokens
			reqBody.MaxTokens = &m
		}
	}

	reqBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.cfg.BaseURL+"/chat/completions", bytes.NewReader(reqBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create chat request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	if stream {
		req.Header.Set("Accept", "text/event-stream")
	}
	return req, nil
}

// ChatCompletion 非流式调用。超时退化为模拟回复；
// 其余传输错误向调用方返回，由其决定用户可见的报错。
func (c *completionClient) ChatCompletion(ctx context.Context, messages []Message, gen *GenerationParams) (string, error) {
	if c.cfg.APIKey == "" {
		return simulatedResponse(messages), nil
	}

	reqCtx, cancel := context.WithTimeout(ctx, time.Duration(c.cfg.TimeoutSeconds)*time.Second)
	defer cancel()

	req, err := c.buildRequest(reqCtx, messages, gen, false)
	if err != nil {
		return "", err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			log.Warnf("补全请求超时，切换为模拟回复: %v", err)
			return simulatedResponse(messages), nil
		}
		return "", fmt.Errorf("failed to call chat api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("chat api returned non-200 status: %s, body: %s", resp.Status, string(bodyBytes))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode chat response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("chat api returned no choices")
	}

	full := parsed.Choices[0].Message.Content
	full, _ = ensureComplete(full)
	return full, nil
}

// StreamChatCompletion 流式调用。无凭证、建连失败或超时一律走模拟回复；
// 中途断流时对已收到的部分做补全修饰后正常收尾。
func (c *completionClient) StreamChatCompletion(ctx context.Context, messages []Message, gen *GenerationParams) (<-chan Fragment, error) {
	ch := make(chan Fragment)

	if c.cfg.APIKey == "" {
		go func() {
			defer close(ch)
			streamSimulated(ctx, ch, simulatedResponse(messages))
		}()
		return ch, nil
	}

	reqCtx, cancel := context.WithTimeout(ctx, time.Duration(c.cfg.TimeoutSeconds)*time.Second)

	req, err := c.buildRequest(reqCtx, messages, gen, true)
	if err != nil {
		cancel()
		return nil, err
	}

	go func() {
		defer close(ch)
		defer cancel()

		resp, err := c.client.Do(req)
		if err != nil {
			log.Warnf("流式补全建连失败，切换为模拟回复: %v", err)
			streamSimulated(ctx, ch, simulatedResponse(messages))
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			bodyBytes, _ := io.ReadAll(resp.Body)
			log.Warnf("流式补全返回非 200 状态 %s，切换为模拟回复: %s", resp.Status, string(bodyBytes))
			streamSimulated(ctx, ch, simulatedResponse(messages))
			return
		}

		var accumulated strings.Builder
		reader := bufio.NewReader(resp.Body)
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				if err != io.EOF {
					log.Warnf("读取补全流失败: %v", err)
					if accumulated.Len() == 0 {
						streamSimulated(ctx, ch, simulatedResponse(messages))
						return
					}
				}
				break
			}

			if !strings.HasPrefix(line, "data: ") {
				continue
			}
			data := strings.TrimPrefix(line, "data: ")
			if strings.TrimSpace(data) == "[DONE]" {
				break
			}

			var chunk streamChunk
			if err := json.Unmarshal([]byte(data), &chunk); err != nil {
				continue
			}
			if len(chunk.Choices) == 0 {
				continue
			}
			if content := chunk.Choices[0].Delta.Content; content != "" {
				accumulated.WriteString(content)
				select {
				case ch <- Fragment{Text: content}:
				case <-ctx.Done():
					return
				}
			}
			if chunk.Choices[0].FinishReason != nil && *chunk.Choices[0].FinishReason != "" {
				break
			}
		}

		// 补全性修饰：结尾悬空时追加一句收束语，并同样通过流下发。
		if _, addition := ensureComplete(accumulated.String()); addition != "" {
			streamWords(ctx, ch, addition, false)
		}
	}()

	return ch, nil
}
