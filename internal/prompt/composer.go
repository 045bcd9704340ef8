// Package prompt 负责把分类与追问分析结果组装成发给补全服务的指令文本。
package prompt

import (
	"fmt"
	"strings"

	"interview-copilot-go/internal/model"
	"interview-copilot-go/pkg/llm"
)

// 各呈现格式的附加指令。
var formatGuidance = map[model.ResponseFormat]string{
	model.FormatStar: "Structure your answer using the STAR method: describe the Situation, " +
		"the Task you were responsible for, the Action you took, and the Result you achieved. " +
		"Keep each part concrete and concise.",
	model.FormatDefinition: "Start with a clear definition, then give a short example, " +
		"and close with how it is applied in practice.",
	model.FormatComparison: "Compare both options fairly: cover the strengths and weaknesses " +
		"of each side, then finish with a clear recommendation and when to prefer which.",
	model.FormatArchitecture: "Answer from high level to detail: overall approach first, " +
		"then the main components and how data flows between them, then how the design scales.",
	model.FormatStepByStep: "Explain your approach step by step, state the time and space " +
		"complexity, and mention the edge cases you would handle.",
}

// Composer 构建发送给补全服务的 system 指令与消息列表。
type Composer struct{}

// NewComposer 创建一个新的 Composer。
func NewComposer() *Composer {
	return &Composer{}
}

// Compose 生成单条 system 角色的指令文本。
// 追问时嵌入相关历史并说明其上下文类型；否则按全新话题构建。
// 有背景资料时追加第一人称作答约束。
func (c *Composer) Compose(cls model.QuestionClassification, fua model.FollowUpAnalysis, background string) string {
	var sb strings.Builder

	sb.WriteString("You are an interview practice assistant. Answer the candidate's question " +
		"the way a strong candidate would answer it in a real interview: spoken, natural, to the point.")
	sb.WriteString("\n\n")

	if fua.IsFollowUp && len(fua.RelevantHistory) > 0 {
		sb.WriteString("This question is a follow-up to the recent exchange below")
		switch fua.ContextType {
		case model.ContextClarification:
			sb.WriteString(" and asks for clarification. Clarify the earlier answer instead of starting over.")
		case model.ContextContinuation:
			sb.WriteString(" and continues the same topic. Build on the earlier answer without repeating it.")
		default:
			sb.WriteString(". Take it into account where relevant.")
		}
		sb.WriteString("\n\nRecent exchange:\n")
		for _, t := range fua.RelevantHistory {
			sb.WriteString(fmt.Sprintf("%s: %s\n", t.Role, t.Content))
		}
		sb.WriteString("\n")
	} else {
		sb.WriteString("This is a fresh topic. Answer it on its own, without assuming earlier conversation.\n\n")
	}

	if guidance, ok := formatGuidance[cls.SuggestedFormat]; ok {
		sb.WriteString(guidance)
		sb.WriteString("\n")
	}

	if background != "" {
		sb.WriteString("\nThe candidate provided the following background:\n")
		sb.WriteString(background)
		sb.WriteString("\n\nAnswer in first person, using only facts present in this background. " +
			"Never invent experience, employers, or projects that are not mentioned.")
		if cls.SuggestedFormat != model.FormatStar {
			sb.WriteString(" Where it fits, reference the concrete projects and technologies named in the background.")
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// BuildMessages 组装最终的消息列表：
// [system 指令] + [追问时的相关历史轮次] + [当前用户消息]。
func (c *Composer) BuildMessages(system string, fua model.FollowUpAnalysis, userMessage string) []llm.Message {
	msgs := make([]llm.Message, 0, len(fua.RelevantHistory)+2)
	msgs = append(msgs, llm.Message{Role: model.RoleSystem, Content: system})
	if fua.IsFollowUp {
		for _, t := range fua.RelevantHistory {
			msgs = append(msgs, llm.Message{Role: t.Role, Content: t.Content})
		}
	}
	msgs = append(msgs, llm.Message{Role: model.RoleUser, Content: userMessage})
	return msgs
}
