package llm

import (
	"context"
	"math/rand"
	"strings"
	"time"
)

// 模拟回复：上游不可用时的确定性兜底文案。
// 开头随机挑选一句，正文固定，保证答案总是成句收尾。
var simulatedOpenings = []string{
	"That's a great question, and it comes up in interviews a lot.",
	"Let me walk you through how I would answer that.",
	"Good question, this is something worth preparing well.",
	"Sure, here is how I would approach that in an interview.",
}

const simulatedBody = "The key is to structure your answer around the core concept first, " +
	"then support it with one concrete example from your own experience. " +
	"Interviewers care less about textbook definitions and more about whether you can " +
	"apply the idea in practice, so keep the explanation grounded and mention the trade-offs " +
	"you considered. Close by summarizing the main point in one sentence so the answer " +
	"lands cleanly."

// 应答结尾的悬空词：出现在末尾说明答案很可能被截断。
var danglingWords = map[string]bool{
	"and": true, "or": true, "the": true, "to": true, "of": true,
	"in": true, "for": true, "with": true, "that": true, "which": true,
	"when": true, "while": true, "because": true, "so": true, "but": true,
	"also": true, "a": true, "an": true,
}

// 按回答主题挑选的收束语。
var topicConclusions = []struct {
	keywords   []string
	conclusion string
}{
	{[]string{"database", "data"}, "In short, choosing the right data model and indexing strategy is what keeps this manageable at scale."},
	{[]string{"api", "request"}, "Overall, a clear API contract with well-defined error semantics is what makes this maintainable."},
	{[]string{"test", "quality"}, "Ultimately, solid test coverage is what gives you the confidence to keep iterating quickly."},
	{[]string{"performance", "optimiz"}, "In the end, measuring before optimizing keeps the work focused on what actually matters."},
}

var genericConclusions = []string{
	"The main thing is to keep the answer concrete and tied to real experience.",
	"That is the essence of it, and the rest follows from practice.",
	"Keeping this principle in mind makes the rest much easier to reason about.",
}

// simulatedResponse 生成一条模拟回答。消息列表仅用于保持接口对称，
// 当前文案不依赖问题内容。
func simulatedResponse(_ []Message) string {
	opening := simulatedOpenings[rand.Intn(len(simulatedOpenings))]
	return opening + " " + simulatedBody
}

// streamSimulated 把模拟回答按词重放到通道上，带少量人工延迟，
// 保持与真实流式输出一致的 UX 节奏。
func streamSimulated(ctx context.Context, ch chan<- Fragment, text string) {
	streamWords(ctx, ch, text, true)
}

func streamWords(ctx context.Context, ch chan<- Fragment, text string, simulated bool) {
	words := strings.Fields(text)
	for i, w := range words {
		fragment := w
		if i == 0 && strings.HasPrefix(text, " ") {
			// 追加在已有输出之后的文本要保留起始空格
			fragment = " " + fragment
		}
		if i < len(words)-1 {
			fragment += " "
		}
		select {
		case ch <- Fragment{Text: fragment, Simulated: simulated}:
		case <-ctx.Done():
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
}

// ensureComplete 检查应答是否以悬空词、逗号或冒号结尾且缺少终止标点；
// 是则按主题追加一句收束语。返回最终文本与追加的部分（未追加时为空）。
func ensureComplete(text string) (string, string) {
	trimmed := strings.TrimSpace(text)
	if !isIncomplete(trimmed) {
		return trimmed, ""
	}

	addition := " " + conclusionFor(trimmed)
	return trimmed + addition, addition
}

func isIncomplete(trimmed string) bool {
	if len(trimmed) <= 50 {
		return false
	}
	if strings.HasSuffix(trimmed, ".") || strings.HasSuffix(trimmed, "!") || strings.HasSuffix(trimmed, "?") {
		return false
	}
	if strings.HasSuffix(trimmed, ",") || strings.HasSuffix(trimmed, ":") {
		return true
	}
	fields := strings.Fields(strings.ToLower(trimmed))
	if len(fields) == 0 {
		return false
	}
	last := strings.Trim(fields[len(fields)-1], `"')`)
	return danglingWords[last]
}

func conclusionFor(text string) string {
	lower := strings.ToLower(text)
	for _, tc := range topicConclusions {
		for _, kw := range tc.keywords {
			if strings.Contains(lower, kw) {
				return tc.conclusion
			}
		}
	}
	return genericConclusions[rand.Intn(len(genericConclusions))]
}
