package formatter

import (
	"strings"
	"testing"

	"interview-copilot-go/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cls(qt model.QuestionType, format model.ResponseFormat) model.QuestionClassification {
	return model.QuestionClassification{
		Type:                 qt,
		SuggestedFormat:      format,
		EstimatedTimeSeconds: 25,
	}
}

const sampleAnswer = "I was on a team migrating a legacy service. " +
	"My job was to keep the API stable during the rewrite. " +
	"I set up a compatibility layer and migrated the endpoints one by one. " +
	"We shipped with zero downtime and the on-call load dropped noticeably."

func TestStructureStarWithMarkers(t *testing.T) {
	s := NewStructurer()
	raw := "Situation: the deploy pipeline was flaky. Task: stabilize it. " +
		"Action: I rewrote the retry logic. Result: failures dropped by half."

	got := s.Structure(cls(model.QuestionBehavioral, model.FormatStar), raw, false)
	assert.Equal(t, "STAR Format", got.StructureLabel)
	assert.Contains(t, got.Content, "**Situation:** the deploy pipeline was flaky.")
	assert.Contains(t, got.Content, "**Result:** failures dropped by half.")
}

func TestStructureStarWithoutMarkers(t *testing.T) {
	s := NewStructurer()

	got := s.Structure(cls(model.QuestionBehavioral, model.FormatStar), sampleAnswer, false)
	for _, section := range []string{"**Situation:**", "**Task:**", "**Action:**", "**Result:**"} {
		assert.Contains(t, got.Content, section)
	}
	assert.Contains(t, got.Content, "migrating a legacy service")
}

// 退化输入：四个 STAR 段仍然全部产出，空段由填充句补齐。
func TestStructureStarDegenerateInput(t *testing.T) {
	s := NewStructurer()

	got := s.Structure(cls(model.QuestionBehavioral, model.FormatStar), "ok.", false)
	for _, section := range []string{"**Situation:**", "**Task:**", "**Action:**", "**Result:**"} {
		assert.Contains(t, got.Content, section)
	}
	assert.Contains(t, got.Content, starFillers["Result"])
}

func TestStructureDefinition(t *testing.T) {
	s := NewStructurer()
	raw := "An index is a secondary data structure that speeds up lookups. " +
		"It trades write throughput for read latency. " +
		"For example, a B-tree index makes range scans cheap. " +
		"In practice you add indexes only for queries that need them."

	got := s.Structure(cls(model.QuestionTechnical, model.FormatDefinition), raw, false)
	assert.Equal(t, "Technical Explanation", got.StructureLabel)
	assert.Contains(t, got.Content, "**Definition:** An index is a secondary data structure that speeds up lookups.")
	assert.Contains(t, got.Content, "**Example:** For example, a B-tree index makes range scans cheap.")
	assert.Contains(t, got.Content, "**Practical Application:** In practice you add indexes only for queries that need them.")
	assert.Contains(t, got.Content, "**Key Points:**")
}

func TestStructureComparison(t *testing.T) {
	s := NewStructurer()
	raw := "Both store data but serve different shapes of workload. " +
		"SQL gives you strong schemas. Joins are first-class. " +
		"NoSQL scales writes horizontally. Schema changes are painless. " +
		"Use SQL for transactional systems. Use NoSQL for flexible, high-volume data. " +
		"Start with SQL unless you have a concrete reason not to."

	got := s.Structure(cls(model.QuestionTechnical, model.FormatComparison), raw, false)
	assert.Equal(t, "Comparison Analysis", got.StructureLabel)
	assert.Contains(t, got.Content, "**Overview:** Both store data but serve different shapes of workload.")
	assert.Contains(t, got.Content, "- SQL gives you strong schemas")
	assert.Contains(t, got.Content, "- NoSQL scales writes horizontally")
	assert.Contains(t, got.Content, "**Recommendation:** Start with SQL unless you have a concrete reason not to.")
}

func TestStructureArchitecture(t *testing.T) {
	s := NewStructurer()
	raw := "Start with a load balancer in front of stateless app servers. " +
		"Requests hit the gateway first. The service layer validates and shortens the URL. " +
		"The mapping is written to storage. Shard the keyspace when writes grow. " +
		"Cache hot redirects aggressively."

	got := s.Structure(cls(model.QuestionSystemDesign, model.FormatArchitecture), raw, false)
	assert.Equal(t, "System Design", got.StructureLabel)
	assert.Contains(t, got.Content, "**Overview:** Start with a load balancer in front of stateless app servers.")
	assert.Contains(t, got.Content, "1. Requests hit the gateway first")
	// 组件与技术栈清单是固定文案，不从回答推导
	assert.Contains(t, got.Content, "API Gateway: a single entry point")
	assert.Contains(t, got.Content, "Infrastructure: containers orchestrated with Kubernetes")
	assert.Contains(t, got.Content, "- Shard the keyspace when writes grow")
}

func TestStructureStepByStep(t *testing.T) {
	s := NewStructurer()
	raw := "Walk the list with two pointers. Keep a reference to the previous node. " +
		"Flip each next pointer as you advance. Return the old tail as the new head."

	got := s.Structure(cls(model.QuestionCoding, model.FormatStepByStep), raw, false)
	assert.Equal(t, "Coding Solution", got.StructureLabel)
	assert.Contains(t, got.Content, "**Approach:** Walk the list with two pointers.")
	assert.Contains(t, got.Content, "1. Keep a reference to the previous node")
	assert.Contains(t, got.Content, "**Complexity:** O(n) time, O(1) space")
	assert.Contains(t, got.Content, "```")
	assert.Contains(t, got.Content, "- Empty or nil input")
}

// 未知格式透传原文并打上通用标签。
func TestStructureUnknownFormatPassthrough(t *testing.T) {
	s := NewStructurer()

	got := s.Structure(model.QuestionClassification{Type: model.QuestionGeneral, SuggestedFormat: "freeform"}, "just talk.", false)
	assert.Equal(t, generalLabel, got.StructureLabel)
	assert.Equal(t, "just talk.", got.Content)
}

func TestStructureIdempotent(t *testing.T) {
	s := NewStructurer()
	c := cls(model.QuestionBehavioral, model.FormatStar)

	first := s.Structure(c, sampleAnswer, false)
	for i := 0; i < 5; i++ {
		again := s.Structure(c, sampleAnswer, false)
		assert.Equal(t, first, again)
	}
}

func TestFollowUpSuggestions(t *testing.T) {
	s := NewStructurer()

	// technical 池用分类关键词替换
	c := cls(model.QuestionTechnical, model.FormatDefinition)
	c.Category = "redis"
	got := s.Structure(c, "Redis is an in-memory store.", false)
	require.NotEmpty(t, got.FollowUpSuggestions)
	for _, sug := range got.FollowUpSuggestions {
		assert.Contains(t, sug, "redis")
		assert.False(t, strings.Contains(sug, "%s"), "unsubstituted template: %q", sug)
	}

	// 关键词缺失时回退到通用占位
	c.Category = ""
	got = s.Structure(c, "text.", false)
	assert.Contains(t, got.FollowUpSuggestions[0], "this technology")

	// 其他类型使用各自的固定池
	got = s.Structure(cls(model.QuestionSystemDesign, model.FormatArchitecture), "text.", false)
	assert.Contains(t, got.FollowUpSuggestions, "How would this design handle ten times the traffic?")

	got = s.Structure(cls(model.QuestionGeneral, model.FormatDefinition), "text.", false)
	assert.NotEmpty(t, got.FollowUpSuggestions)
}

func TestEstimatedDeliveryCarriedOver(t *testing.T) {
	s := NewStructurer()

	got := s.Structure(cls(model.QuestionTechnical, model.FormatDefinition), "text.", false)
	assert.Equal(t, 25, got.EstimatedDeliverySeconds)
}
