// Package kafka 提供会话分析事件的生产者。
// 事件是可观测性用途的旁路数据，发送失败只记日志，绝不影响聊天请求本身。
package kafka

import (
	"context"
	"encoding/json"
	"time"

	"interview-copilot-go/internal/config"
	"interview-copilot-go/pkg/log"

	"github.com/segmentio/kafka-go"
)

// ChatCompletedEvent 在一次编排完成后发出，记录分类与时延元数据。
type ChatCompletedEvent struct {
	SessionID       string    `json:"sessionId"`
	QuestionType    string    `json:"questionType"`
	SuggestedFormat string    `json:"suggestedFormat"`
	IsFollowUp      bool      `json:"isFollowUp"`
	Simulated       bool      `json:"simulated"`
	DurationMs      int64     `json:"durationMs"`
	Timestamp       time.Time `json:"timestamp"`
}

var producer *kafka.Writer

// InitProducer 初始化 Kafka 生产者。未启用时保持 nil，发送变为空操作。
func InitProducer(cfg config.KafkaConfig) {
	if !cfg.Enabled {
		log.Info("Kafka 分析事件未启用")
		return
	}
	producer = &kafka.Writer{
		Addr:     kafka.TCP(cfg.Brokers),
		Topic:    cfg.Topic,
		Balancer: &kafka.LeastBytes{},
		Async:    true,
	}
	log.Info("Kafka 生产者初始化成功")
}

// ProduceChatEvent 发送一条会话分析事件，fire-and-forget。
func ProduceChatEvent(evt ChatCompletedEvent) {
	if producer == nil {
		return
	}
	evt.Timestamp = time.Now()
	data, err := json.Marshal(evt)
	if err != nil {
		log.Errorf("无法序列化分析事件: %v", err)
		return
	}
	if err := producer.WriteMessages(context.Background(), kafka.Message{Value: data}); err != nil {
		log.Errorf("发送分析事件失败: %v", err)
	}
}

// Close 关闭生产者，程序退出前调用。
func Close() {
	if producer != nil {
		_ = producer.Close()
	}
}
