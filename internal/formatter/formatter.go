// Package formatter 把补全服务的自由文本回答整形为面向练习者的
// 结构化呈现（STAR、定义、对比、架构、逐步求解），并派生追问建议。
// 整个包对相同输入是确定性的，退化输入（极短文本、无法识别的段落）
// 也会用通用占位句填满每个必需的结构段，绝不留空。
package formatter

import (
	"fmt"
	"regexp"
	"strings"

	"interview-copilot-go/internal/model"
)

// 各格式的人类可读标签。
var structureLabels = map[model.ResponseFormat]string{
	model.FormatStar:         "STAR Format",
	model.FormatDefinition:   "Technical Explanation",
	model.FormatComparison:   "Comparison Analysis",
	model.FormatArchitecture: "System Design",
	model.FormatStepByStep:   "Coding Solution",
}

const generalLabel = "General Discussion"

// 按问题类型的追问建议池。technical 池用分类得到的首个关键词做替换，
// 同一输入下选择是确定性的。
var (
	technicalSuggestions = []string{
		"Can you explain how %s works internally?",
		"What are common pitfalls when using %s?",
		"How would you debug an issue with %s?",
		"When would you avoid using %s?",
	}
	behavioralSuggestions = []string{
		"What did you learn from that experience?",
		"How would you handle the same situation today?",
		"How did your team react to the outcome?",
	}
	systemDesignSuggestions = []string{
		"How would this design handle ten times the traffic?",
		"What are the main failure modes of this architecture?",
		"How would you monitor this system in production?",
		"Which trade-offs in this design would you revisit?",
	}
	codingSuggestions = []string{
		"What is the time complexity of your solution?",
		"How would you test this code?",
		"Can you optimize it further?",
	}
	generalSuggestions = []string{
		"Can you go into more detail on that?",
		"How does this apply in day-to-day work?",
		"What should I study next on this topic?",
	}
)

// STAR 各段缺失时的通用填充句。
var starFillers = map[string]string{
	"Situation": "I was working on a project where this kind of challenge came up.",
	"Task":      "My responsibility was to resolve it without disrupting the team's progress.",
	"Action":    "I broke the problem down, aligned with the people involved, and executed step by step.",
	"Result":    "The issue was resolved and the team took away a better process for next time.",
}

// architecture 分支固定输出的组件与技术栈清单。
// 有意不从回答内容推导，保持与既有行为一致（见 DESIGN.md）。
var (
	genericComponents = []string{
		"Frontend: the client-facing layer that renders the interface and captures user actions.",
		"API Gateway: a single entry point that routes, authenticates, and rate-limits requests.",
		"Backend Services: the core business logic, split into focused, independently deployable services.",
		"Database: the system of record, with caching in front of it for hot reads.",
	}
	genericTechStack = []string{
		"Frontend: React or a comparable component framework",
		"Backend: Go or Java services behind a load balancer",
		"Storage: PostgreSQL plus Redis for caching",
		"Infrastructure: containers orchestrated with Kubernetes",
	}
	genericEdgeCases = []string{
		"Empty or nil input",
		"A single-element input",
		"Duplicate values",
		"Input already in the desired state",
	}
)

var sentenceSplitter = regexp.MustCompile(`[.!?]+`)

// Structurer 将原始回答文本整形为结构化呈现。
type Structurer struct{}

// NewStructurer 创建一个新的 Structurer。
func NewStructurer() *Structurer {
	return &Structurer{}
}

// Structure 按分类建议的格式整形原始回答。对相同输入幂等。
func (s *Structurer) Structure(cls model.QuestionClassification, rawText string, backgroundPresent bool) model.StructuredResponse {
	var content string
	label, ok := structureLabels[cls.SuggestedFormat]
	if !ok {
		label = generalLabel
	}

	switch cls.SuggestedFormat {
	case model.FormatStar:
		content = s.structureStar(rawText)
	case model.FormatDefinition:
		content = s.structureDefinition(rawText)
	case model.FormatComparison:
		content = s.structureComparison(rawText)
	case model.FormatArchitecture:
		content = s.structureArchitecture(rawText)
	case model.FormatStepByStep:
		content = s.structureStepByStep(rawText)
	default:
		content = rawText
	}

	return model.StructuredResponse{
		Content:                  content,
		StructureLabel:           label,
		FollowUpSuggestions:      s.followUpSuggestions(cls),
		EstimatedDeliverySeconds: cls.EstimatedTimeSeconds,
	}
}

// structureStar 定位 Situation/Task/Action/Result 小节；找不到字面标记时
// 按句子四等分依序标注。四段始终全部产出，空段用通用填充句补齐。
func (s *Structurer) structureStar(raw string) string {
	sections := map[string]string{}
	lower := strings.ToLower(raw)
	order := []string{"Situation", "Task", "Action", "Result"}

	markers := map[string]int{}
	for _, name := range order {
		if idx := strings.Index(lower, strings.ToLower(name)+":"); idx >= 0 {
			markers[name] = idx
		}
	}

	if len(markers) > 0 {
		for _, name := range order {
			start, ok := markers[name]
			if !ok {
				continue
			}
			start += len(name) + 1
			end := len(raw)
			for _, other := range order {
				if oi, ok := markers[other]; ok && oi > start && oi < end {
					end = oi
				}
			}
			sections[name] = strings.TrimSpace(raw[start:end])
		}
	} else {
		sentences := splitSentences(raw)
		quartiles := splitQuarters(sentences)
		for i, name := range order {
			sections[name] = joinSentences(quartiles[i])
		}
	}

	var sb strings.Builder
	for i, name := range order {
		text := sections[name]
		if text == "" {
			text = starFillers[name]
		}
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(fmt.Sprintf("**%s:** %s", name, text))
	}
	return sb.String()
}

func (s *Structurer) structureDefinition(raw string) string {
	sentences := splitSentences(raw)

	definition := "This concept is best understood through how it is used in practice."
	if len(sentences) > 0 {
		definition = sentences[0] + "."
	}

	var keyPoints []string
	for i := 1; i < len(sentences) && len(keyPoints) < 3; i++ {
		keyPoints = append(keyPoints, sentences[i])
	}
	if len(keyPoints) == 0 {
		keyPoints = []string{"The core idea matters more than the terminology"}
	}

	example := "For example, most production systems apply this in some form."
	for _, sent := range sentences {
		lowerSent := strings.ToLower(sent)
		if strings.Contains(lowerSent, "example") || strings.Contains(lowerSent, "for instance") {
			example = sent + "."
			break
		}
	}

	application := "In practice, this shows up whenever you design or review real systems."
	if len(sentences) > 1 {
		application = sentences[len(sentences)-1] + "."
	}

	var sb strings.Builder
	sb.WriteString("**Definition:** " + definition + "\n\n")
	sb.WriteString("**Key Points:**\n")
	for _, p := range keyPoints {
		sb.WriteString("- " + p + "\n")
	}
	sb.WriteString("\n**Example:** " + example + "\n\n")
	sb.WriteString("**Practical Application:** " + application)
	return sb.String()
}

func (s *Structurer) structureComparison(raw string) string {
	sentences := splitSentences(raw)

	var sb strings.Builder
	sb.WriteString("**Overview:** " + sentenceAt(sentences, 0, "Both options are widely used, and the right choice depends on the context.") + "\n\n")

	sb.WriteString("**Option A:**\n")
	writeBullets(&sb, sentences, 1, 2, "Strong where its core model matches the problem")
	sb.WriteString("\n**Option B:**\n")
	writeBullets(&sb, sentences, 3, 4, "Preferable when the constraints favor its trade-offs")
	sb.WriteString("\n**Use Cases:**\n")
	writeBullets(&sb, sentences, 5, 6, "Pick based on data shape, consistency needs, and team experience")

	recommendation := "On balance, choose the option whose trade-offs match your actual constraints."
	if len(sentences) > 6 {
		recommendation = sentences[len(sentences)-1] + "."
	}
	sb.WriteString("\n**Recommendation:** " + recommendation)
	return sb.String()
}

func (s *Structurer) structureArchitecture(raw string) string {
	sentences := splitSentences(raw)

	var sb strings.Builder
	sb.WriteString("**Overview:** " + sentenceAt(sentences, 0, "The system is organized in layers, each with a single clear responsibility.") + "\n\n")

	sb.WriteString("**Core Components:**\n")
	for _, comp := range genericComponents {
		sb.WriteString("- " + comp + "\n")
	}

	sb.WriteString("\n**Data Flow:**\n")
	step := 1
	for i := 1; i <= 3; i++ {
		if i < len(sentences) {
			sb.WriteString(fmt.Sprintf("%d. %s\n", step, sentences[i]))
			step++
		}
	}
	if step == 1 {
		sb.WriteString("1. Requests enter through the gateway, are processed by the services, and results are persisted\n")
	}

	sb.WriteString("\n**Scalability:**\n")
	writeBullets(&sb, sentences, 4, 5, "Scale the stateless layers horizontally and partition the data layer")

	sb.WriteString("\n**Tech Stack:**\n")
	for _, item := range genericTechStack {
		sb.WriteString("- " + item + "\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (s *Structurer) structureStepByStep(raw string) string {
	sentences := splitSentences(raw)

	var sb strings.Builder
	sb.WriteString("**Approach:** " + sentenceAt(sentences, 0, "Break the problem into small steps and handle the simplest case first.") + "\n\n")

	sb.WriteString("**Algorithm:**\n")
	step := 1
	for i := 1; i <= 3; i++ {
		if i < len(sentences) {
			sb.WriteString(fmt.Sprintf("%d. %s\n", step, sentences[i]))
			step++
		}
	}
	if step == 1 {
		sb.WriteString("1. Walk the input once, maintaining the minimal state needed for the answer\n")
	}

	// 占位代码块与固定复杂度：有意不从回答内容推导，见 DESIGN.md。
	sb.WriteString("\n**Code Sketch:**\n")
	sb.WriteString("```\nfunc solve(input []int) int {\n    // iterate once, track running state\n    // return the accumulated answer\n}\n```\n")

	sb.WriteString("\n**Complexity:** O(n) time, O(1) space\n")

	sb.WriteString("\n**Edge Cases:**\n")
	for _, ec := range genericEdgeCases {
		sb.WriteString("- " + ec + "\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// followUpSuggestions 按问题类型返回建议池；technical 池替换首个关键词。
func (s *Structurer) followUpSuggestions(cls model.QuestionClassification) []string {
	switch cls.Type {
	case model.QuestionTechnical:
		keyword := cls.Category
		if keyword == "" || keyword == "general" {
			keyword = "this technology"
		}
		out := make([]string, 0, len(technicalSuggestions))
		for _, tmpl := range technicalSuggestions {
			out = append(out, fmt.Sprintf(tmpl, keyword))
		}
		return out
	case model.QuestionBehavioral:
		return append([]string(nil), behavioralSuggestions...)
	case model.QuestionSystemDesign:
		return append([]string(nil), systemDesignSuggestions...)
	case model.QuestionCoding:
		return append([]string(nil), codingSuggestions...)
	default:
		return append([]string(nil), generalSuggestions...)
	}
}

// splitSentences 把原始文本切成去掉终止标点的句子序列。
func splitSentences(raw string) []string {
	parts := sentenceSplitter.Split(raw, -1)
	sentences := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			sentences = append(sentences, trimmed)
		}
	}
	return sentences
}

// splitQuarters 把句子序列尽量均匀地分成四份，依序对应 S/T/A/R。
func splitQuarters(sentences []string) [4][]string {
	var quarters [4][]string
	n := len(sentences)
	if n == 0 {
		return quarters
	}
	per := (n + 3) / 4
	for i, sent := range sentences {
		idx := i / per
		if idx > 3 {
			idx = 3
		}
		quarters[idx] = append(quarters[idx], sent)
	}
	return quarters
}

func joinSentences(sentences []string) string {
	if len(sentences) == 0 {
		return ""
	}
	return strings.Join(sentences, ". ") + "."
}

func sentenceAt(sentences []string, idx int, fallback string) string {
	if idx < len(sentences) {
		return sentences[idx] + "."
	}
	return fallback
}

func writeBullets(sb *strings.Builder, sentences []string, from, to int, fallback string) {
	wrote := false
	for i := from; i <= to && i < len(sentences); i++ {
		sb.WriteString("- " + sentences[i] + "\n")
		wrote = true
	}
	if !wrote {
		sb.WriteString("- " + fallback + "\n")
	}
}
