package analyzer

import (
	"testing"

	"interview-copilot-go/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyTypes(t *testing.T) {
	c := NewClassifier()

	cases := []struct {
		name       string
		question   string
		wantType   model.QuestionType
		wantFormat model.ResponseFormat
	}{
		{
			name:       "comparison question",
			question:   "What is the difference between SQL and NoSQL databases?",
			wantType:   model.QuestionTechnical,
			wantFormat: model.FormatComparison,
		},
		{
			name:       "behavioral question",
			question:   "Tell me about a time you faced a conflict with a teammate",
			wantType:   model.QuestionBehavioral,
			wantFormat: model.FormatStar,
		},
		{
			name:       "system design question",
			question:   "How would you design a URL shortener?",
			wantType:   model.QuestionSystemDesign,
			wantFormat: model.FormatArchitecture,
		},
		{
			name:       "coding question",
			question:   "Write a function to reverse a linked list",
			wantType:   model.QuestionCoding,
			wantFormat: model.FormatStepByStep,
		},
		{
			name:       "plain technical question",
			question:   "What is a database index?",
			wantType:   model.QuestionTechnical,
			wantFormat: model.FormatDefinition,
		},
		{
			name:       "general question",
			question:   "What should I wear to my interview tomorrow?",
			wantType:   model.QuestionGeneral,
			wantFormat: model.FormatDefinition,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := c.Classify(tc.question)
			assert.Equal(t, tc.wantType, got.Type)
			assert.Equal(t, tc.wantFormat, got.SuggestedFormat)
		})
	}
}

func TestClassifyAlwaysWellFormed(t *testing.T) {
	c := NewClassifier()

	validFormats := map[model.ResponseFormat]bool{
		model.FormatStar:         true,
		model.FormatDefinition:   true,
		model.FormatComparison:   true,
		model.FormatArchitecture: true,
		model.FormatStepByStep:   true,
	}

	inputs := []string{
		"",
		"?",
		"what",
		"Explain the CAP theorem with respect to distributed consensus and replication strategies",
		"design a design a design a",
		"ümlaut ünicode 日本語",
	}

	for _, in := range inputs {
		got := c.Classify(in)
		assert.GreaterOrEqual(t, got.Confidence, 0.0, "input %q", in)
		assert.LessOrEqual(t, got.Confidence, 1.0, "input %q", in)
		assert.True(t, validFormats[got.SuggestedFormat], "input %q produced format %q", in, got.SuggestedFormat)
		assert.NotZero(t, got.EstimatedTimeSeconds, "input %q", in)
	}
}

func TestClassifyEmptyString(t *testing.T) {
	c := NewClassifier()

	got := c.Classify("")
	assert.Equal(t, model.QuestionGeneral, got.Type)
	assert.Equal(t, model.FormatDefinition, got.SuggestedFormat)
	assert.LessOrEqual(t, got.Confidence, 0.3)
}

func TestClassifyPersonalContext(t *testing.T) {
	c := NewClassifier()

	got := c.Classify("What database have you used?")
	require.True(t, got.RequiresPersonalContext)

	got = c.Classify("What is a B-tree index?")
	assert.False(t, got.RequiresPersonalContext)
}

func TestClassifyComplexity(t *testing.T) {
	c := NewClassifier()

	got := c.Classify("How does eventual consistency interact with sharding in a distributed database?")
	assert.Equal(t, model.ComplexityAdvanced, got.Complexity)

	got = c.Classify("What is HTTP?")
	assert.Equal(t, model.ComplexityBeginner, got.Complexity)

	// 复杂度抬高预估作答时长
	beginner := c.Classify("What is HTTP?")
	advanced := c.Classify("How does HTTP behave under distributed consensus failures with replication?")
	assert.Greater(t, advanced.EstimatedTimeSeconds, beginner.EstimatedTimeSeconds)
}
