// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"interview-copilot-go/internal/analyzer"
	"interview-copilot-go/internal/formatter"
	"interview-copilot-go/internal/model"
	"interview-copilot-go/internal/prompt"
	"interview-copilot-go/internal/repository"
	"interview-copilot-go/pkg/kafka"
	"interview-copilot-go/pkg/llm"
	"interview-copilot-go/pkg/log"
	"interview-copilot-go/pkg/realtime"
)

// ChatService 定义了会话编排的入口接口。
type ChatService interface {
	// Respond 对一条入站消息跑完整的推理管线：
	// 分类与追问分析 → 提示词组装 → 流式补全 → 回答结构化。
	Respond(ctx context.Context, sessionID, message string, isVoice bool) (*model.ChatResult, error)
}

// StreamPublisher 是实时下发通道的窄接口，无订阅者时发布应为空操作。
type StreamPublisher interface {
	Publish(sessionID string, evt realtime.Event)
}

type chatService struct {
	repo          repository.SessionRepository
	llmClient     llm.Client
	classifier    *analyzer.Classifier
	detector      *analyzer.FollowUpDetector
	composer      *prompt.Composer
	structurer    *formatter.Structurer
	publisher     StreamPublisher
	correct       analyzer.CorrectionFunc
	contextWindow int
}

// NewChatService 创建一个新的 ChatService 实例。
// 所有协作者显式注入，correct 可为 nil（跳过语音转写纠正）。
func NewChatService(
	repo repository.SessionRepository,
	llmClient llm.Client,
	classifier *analyzer.Classifier,
	detector *analyzer.FollowUpDetector,
	composer *prompt.Composer,
	structurer *formatter.Structurer,
	publisher StreamPublisher,
	correct analyzer.CorrectionFunc,
	contextWindow int,
) ChatService {
	if contextWindow <= 0 {
		contextWindow = 2
	}
	return &chatService{
		repo:          repo,
		llmClient:     llmClient,
		classifier:    classifier,
		detector:      detector,
		composer:      composer,
		structurer:    structurer,
		publisher:     publisher,
		correct:       correct,
		contextWindow: contextWindow,
	}
}

// Respond 编排一次完整的问答。
// 分类器与追问检测是全函数，永不失败；补全调用失败时已持久化的
// 用户轮次保持原样，不做回滚。
func (s *chatService) Respond(ctx context.Context, sessionID, message string, isVoice bool) (*model.ChatResult, error) {
	start := time.Now()

	if isVoice && s.correct != nil {
		message = s.correct(message)
	}

	// 1. 加载背景资料与聚焦窗口。存储故障降级为空上下文，不失败请求。
	background, err := s.repo.GetContext(ctx, sessionID)
	if err != nil {
		log.Errorf("加载会话背景失败: %v", err)
		background = ""
	}
	recent, err := s.repo.RecentTurns(ctx, sessionID, s.contextWindow)
	if err != nil {
		log.Errorf("加载最近轮次失败: %v", err)
		recent = nil
	}

	// 2. 分类与追问分析，两者无数据依赖。
	followUp := s.detector.Analyze(message, recent)
	cls := s.classifier.Classify(message)

	// 3. 持久化入站用户轮次。
	if _, err := s.repo.AppendTurn(ctx, sessionID, model.RoleUser, message, isVoice); err != nil {
		log.Errorf("持久化用户轮次失败: %v", err)
	}

	// 4. 组装指令与消息列表。
	system := s.composer.Compose(cls, followUp, background)
	messages := s.composer.BuildMessages(system, followUp, message)

	// 5. 流式调用补全服务，逐片下发给订阅者并累积完整回答。
	fragments, err := s.llmClient.StreamChatCompletion(ctx, messages, nil)
	if err != nil {
		s.publisher.Publish(sessionID, realtime.Event{
			Type:  realtime.EventError,
			Error: "AI 服务暂时不可用，请稍后重试",
		})
		return nil, fmt.Errorf("completion call failed: %w", err)
	}

	s.publisher.Publish(sessionID, realtime.Event{Type: realtime.EventStreamStart})

	var full strings.Builder
	simulated := false
	for f := range fragments {
		full.WriteString(f.Text)
		if f.Simulated {
			simulated = true
		}
		s.publisher.Publish(sessionID, realtime.Event{
			Type:    realtime.EventStreamChunk,
			Content: f.Text,
		})
	}
	fullText := full.String()

	s.publisher.Publish(sessionID, realtime.Event{
		Type:     realtime.EventStreamEnd,
		Response: fullText,
	})

	// 6. 持久化助手轮次。使用后台上下文：即使原始请求已取消，
	// 成功生成的回答也应进入历史。
	if fullText != "" {
		if _, err := s.repo.AppendTurn(context.Background(), sessionID, model.RoleAssistant, fullText, false); err != nil {
			log.Errorf("持久化助手轮次失败: %v", err)
		}
	}

	// 7. 结构化整形并发出分析事件。
	structured := s.structurer.Structure(cls, fullText, background != "")

	kafka.ProduceChatEvent(kafka.ChatCompletedEvent{
		SessionID:       sessionID,
		QuestionType:    string(cls.Type),
		SuggestedFormat: string(cls.SuggestedFormat),
		IsFollowUp:      followUp.IsFollowUp,
		Simulated:       simulated,
		DurationMs:      time.Since(start).Milliseconds(),
	})

	return &model.ChatResult{
		Response:       structured,
		Classification: cls,
		FollowUp:       followUp,
		Simulated:      simulated,
	}, nil
}
