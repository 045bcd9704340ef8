// Package model 包含了应用的数据模型定义。
package model

import "time"

// 消息角色常量。
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Turn 代表会话轮次日志中的一条消息（用户或助手），创建后不可变。
type Turn struct {
	ID            string    `json:"id"`
	SessionID     string    `json:"sessionId"`
	Role          string    `json:"role"` // "user" 或 "assistant"
	Content       string    `json:"content"`
	CreatedAt     time.Time `json:"createdAt"`
	IsVoiceOrigin bool      `json:"isVoiceOrigin"`
}

// SessionContext 代表用户为某个会话提供的背景资料（如简历、职位描述摘录）。
// 每个会话至多一条，后写覆盖。
type SessionContext struct {
	SessionID      string    `json:"sessionId"`
	BackgroundText string    `json:"backgroundText"`
	CreatedAt      time.Time `json:"createdAt"`
}

// QuestionType 是问题分类的类型枚举。
type QuestionType string

const (
	QuestionTechnical    QuestionType = "technical"
	QuestionBehavioral   QuestionType = "behavioral"
	QuestionSystemDesign QuestionType = "system_design"
	QuestionCoding       QuestionType = "coding"
	QuestionGeneral      QuestionType = "general"
)

// ResponseFormat 是答案呈现格式的枚举。
type ResponseFormat string

const (
	FormatStar         ResponseFormat = "star"
	FormatDefinition   ResponseFormat = "definition"
	FormatComparison   ResponseFormat = "comparison"
	FormatArchitecture ResponseFormat = "architecture"
	FormatStepByStep   ResponseFormat = "step_by_step"
)

// Complexity 是问题复杂度的枚举。
type Complexity string

const (
	ComplexityBeginner     Complexity = "beginner"
	ComplexityIntermediate Complexity = "intermediate"
	ComplexityAdvanced     Complexity = "advanced"
)

// QuestionClassification 是对单条问题的即席分类结果，逐条消息重新计算，不持久化。
type QuestionClassification struct {
	Type                    QuestionType   `json:"type"`
	Category                string         `json:"category"`
	Confidence              float64        `json:"confidence"`
	SuggestedFormat         ResponseFormat `json:"suggestedFormat"`
	Complexity              Complexity     `json:"complexity"`
	EstimatedTimeSeconds    int            `json:"estimatedTimeSeconds"`
	RequiresPersonalContext bool           `json:"requiresPersonalContext"`
}

// ContextType 描述追问消息与上文的关系。
type ContextType string

const (
	ContextContinuation  ContextType = "continuation"
	ContextClarification ContextType = "clarification"
	ContextNewTopic      ContextType = "new_topic"
)

// FollowUpAnalysis 是追问检测的即席结果。
// RelevantHistory 至多携带最近的一问一答两条轮次。
type FollowUpAnalysis struct {
	IsFollowUp      bool        `json:"isFollowUp"`
	ContextType     ContextType `json:"contextType"`
	RelevantHistory []Turn      `json:"relevantHistory"`
}

// StructuredResponse 是对模型原始回答做结构化整形后的呈现结果。
type StructuredResponse struct {
	Content                  string   `json:"content"`
	StructureLabel           string   `json:"structureLabel"`
	FollowUpSuggestions      []string `json:"followUpSuggestions"`
	EstimatedDeliverySeconds int      `json:"estimatedDeliverySeconds"`
}

// ChatRequest 是入站聊天请求的数据形状。
type ChatRequest struct {
	Message   string `json:"message" binding:"required"`
	SessionID string `json:"sessionId" binding:"required"`
	IsVoice   bool   `json:"isVoice"`
}

// ContextRequest 是设置会话背景资料的请求。
type ContextRequest struct {
	Content   string `json:"content" binding:"required"`
	SessionID string `json:"sessionId" binding:"required"`
}

// ChatResult 是一次完整编排的返回值：结构化回答加上分类与追问元数据。
type ChatResult struct {
	Response       StructuredResponse     `json:"response"`
	Classification QuestionClassification `json:"classification"`
	FollowUp       FollowUpAnalysis       `json:"followUp"`
	Simulated      bool                   `json:"simulated"`
}
