package analyzer

import (
	"strings"

	"interview-copilot-go/internal/model"
)

// 追问检测的查找表。
var (
	followUpPhrases = []string{
		"what about",
		"how about",
		"tell me more",
		"more about",
		"furthermore",
		"compared to",
		"another example",
		"in addition",
		"expand on",
		"go deeper",
		"elaborate",
		"besides",
		"other than",
		"apart from",
		"follow up",
	}

	// 可能指涉上文的代词，要求按独立单词匹配，避免误伤 "italy" 这类子串。
	referencePronouns = []string{"that", "this", "it", "they", "those", "these"}

	contextualRefs = []string{
		"the same",
		"similar",
		"like that",
		"same thing",
		"that one",
	}

	clarificationMarkers = []string{
		"explain",
		"clarify",
		"what do you mean",
		"how does",
		"why",
		"could you elaborate",
		"can you expand",
		"more details",
	}

	continuationMarkers = []string{
		"what about",
		"how about",
		"also",
		"and",
		"furthermore",
		"in addition",
		"moreover",
		"next",
		"then",
	}

	// 语音转写常见的口头填充词。
	fillerWords = map[string]bool{
		"um": true, "uh": true, "ah": true, "er": true, "hmm": true,
	}

	buildingQuestionStarters = []string{"why", "how", "when", "where", "which"}
)

// FollowUpDetector 判断当前消息是否是对最近会话的追问。
type FollowUpDetector struct{}

// NewFollowUpDetector 创建一个新的 FollowUpDetector。
func NewFollowUpDetector() *FollowUpDetector {
	return &FollowUpDetector{}
}

// Analyze 对照最近两条轮次分析当前消息。历史为空时直接判定为新话题。
// 与分类器一样是全函数，从不失败。
func (d *FollowUpDetector) Analyze(message string, lastTurns []model.Turn) model.FollowUpAnalysis {
	if len(lastTurns) == 0 {
		return model.FollowUpAnalysis{
			IsFollowUp:      false,
			ContextType:     model.ContextNewTopic,
			RelevantHistory: []model.Turn{},
		}
	}

	lower := strings.ToLower(strings.TrimSpace(message))

	// 语音转写噪声护栏：过短、重复率过高或填充词过多的消息不触发追问行为。
	if isGarbled(lower) {
		return model.FollowUpAnalysis{
			IsFollowUp:      false,
			ContextType:     model.ContextNewTopic,
			RelevantHistory: []model.Turn{},
		}
	}

	isFollowUp := detectFollowUp(lower)
	contextType := model.ContextNewTopic
	if isFollowUp {
		contextType = resolveContextType(lower)
	}

	return model.FollowUpAnalysis{
		IsFollowUp:      isFollowUp,
		ContextType:     contextType,
		RelevantHistory: relevantHistory(lastTurns),
	}
}

// isGarbled 判断消息是否像语音识别产生的乱码。
func isGarbled(lower string) bool {
	if len(lower) < 5 {
		return true
	}

	words := tokenize(lower)
	if len(words) == 0 {
		return true
	}

	unique := make(map[string]bool, len(words))
	fillers := 0
	for _, w := range words {
		unique[w] = true
		if fillerWords[w] {
			fillers++
		}
	}

	if float64(len(unique))/float64(len(words)) < 0.5 {
		return true
	}
	if float64(fillers)/float64(len(words)) > 0.3 {
		return true
	}
	return false
}

func detectFollowUp(lower string) bool {
	for _, p := range followUpPhrases {
		if strings.Contains(lower, p) {
			return true
		}
	}

	words := tokenize(lower)
	for _, pronoun := range referencePronouns {
		if containsWord(words, pronoun) {
			return true
		}
	}

	for _, ref := range contextualRefs {
		if strings.Contains(lower, ref) {
			return true
		}
	}

	// 短的 why/how/when/where/which 开头问句通常是在上一答案之上追加的。
	if len(lower) < 50 {
		for _, starter := range buildingQuestionStarters {
			if strings.HasPrefix(lower, starter) {
				return true
			}
		}
	}

	return false
}

// resolveContextType 按固定顺序解析追问类型：clarification > continuation。
// 都不命中时回落到 new_topic —— 即便 isFollowUp 已为 true。这是对既有
// 可观测行为的有意保留，见 DESIGN.md 的 Open Question 记录。
func resolveContextType(lower string) model.ContextType {
	for _, m := range clarificationMarkers {
		if strings.Contains(lower, m) {
			return model.ContextClarification
		}
	}
	words := tokenize(lower)
	for _, m := range continuationMarkers {
		if strings.Contains(m, " ") {
			if strings.Contains(lower, m) {
				return model.ContextContinuation
			}
		} else if containsWord(words, m) {
			return model.ContextContinuation
		}
	}
	return model.ContextNewTopic
}

// relevantHistory 返回最近的一问一答对；不完整时返回可用的 0–2 条。
func relevantHistory(lastTurns []model.Turn) []model.Turn {
	if len(lastTurns) >= 2 {
		pair := lastTurns[len(lastTurns)-2:]
		if pair[0].Role == model.RoleUser && pair[1].Role == model.RoleAssistant {
			return []model.Turn{pair[0], pair[1]}
		}
	}
	if len(lastTurns) > 2 {
		return lastTurns[len(lastTurns)-2:]
	}
	return lastTurns
}
