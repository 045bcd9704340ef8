// Package analyzer 实现了会话推理管线中的纯文本分析部分：
// 问题分类、追问检测与语音转写纠正。所有函数都是全函数，
// 对任意输入给出尽力而为的结果，从不返回错误。
package analyzer

import (
	"math"
	"regexp"
	"strings"
	"unicode"

	"interview-copilot-go/internal/model"
)

// 关键词与短语查找表。按设计保持为静态数据而不是分支逻辑，
// 便于测试与扩展。
var (
	technicalTerms = map[string]bool{
		"algorithm": true, "database": true, "sql": true, "nosql": true,
		"api": true, "rest": true, "http": true, "https": true,
		"cache": true, "redis": true, "kafka": true, "queue": true,
		"thread": true, "concurrency": true, "goroutine": true, "async": true,
		"index": true, "transaction": true, "docker": true, "kubernetes": true,
		"microservice": true, "microservices": true, "network": true, "tcp": true,
		"latency": true, "throughput": true, "scalability": true, "encryption": true,
		"hash": true, "hashmap": true, "framework": true, "react": true,
		"node": true, "python": true, "java": true, "javascript": true,
		"golang": true, "git": true, "linux": true, "cloud": true,
		"aws": true, "testing": true, "oop": true, "inheritance": true,
		"polymorphism": true, "interface": true, "pointer": true, "memory": true,
		"compiler": true, "recursion": true, "json": true, "graphql": true,
	}

	behavioralPhrases = []string{
		"tell me about a time",
		"describe a situation",
		"describe a time",
		"give me an example of",
		"how did you handle",
		"how do you handle",
		"have you ever",
		"what would you do if",
		"walk me through a situation",
	}

	behavioralPatterns = []*regexp.Regexp{
		regexp.MustCompile(`tell me about a time`),
		regexp.MustCompile(`describe (a|an) (situation|time|experience|challenge)`),
		regexp.MustCompile(`how (did|do|would) you (handle|deal with|manage|approach)`),
		regexp.MustCompile(`give (me )?an example of`),
	}

	systemDesignPhrases = []string{
		"design a",
		"design an",
		"how would you design",
		"system design",
		"architect a",
		"architecture of",
		"build a system",
		"scale a",
		"high availability",
		"load balancing",
	}

	codingPhrases = []string{
		"write a function",
		"write code",
		"write a program",
		"implement a",
		"implement the",
		"code a",
		"solve this problem",
		"coding challenge",
		"algorithm to",
		"reverse a",
	}

	comparisonWords = []string{
		"difference", "compare", "vs", "versus", "advantage", "disadvantage",
	}

	advancedSignals = []string{
		"distributed", "consensus", "raft", "paxos", "sharding", "replication",
		"eventual consistency", "cap theorem", "idempotency", "lock-free",
		"fault tolerance", "partitioning",
	}

	personalContextPhrases = []string{
		"tell me about",
		"your experience",
		"your background",
		"your projects",
		"have you worked",
		"did you use",
	}
)

// 各问题类型的置信度基值与上限。
var (
	confidenceBase = map[model.QuestionType]float64{
		model.QuestionTechnical:    0.6,
		model.QuestionBehavioral:   0.7,
		model.QuestionSystemDesign: 0.75,
		model.QuestionCoding:       0.7,
		model.QuestionGeneral:      0.3,
	}
	confidenceCap = map[model.QuestionType]float64{
		model.QuestionTechnical:    0.8,
		model.QuestionBehavioral:   0.9,
		model.QuestionSystemDesign: 0.9,
		model.QuestionCoding:       0.8,
		model.QuestionGeneral:      0.3,
	}
	// 按类型的基准作答秒数，乘以复杂度系数得到预估时长。
	baseAnswerSeconds = map[model.QuestionType]int{
		model.QuestionTechnical:    15,
		model.QuestionBehavioral:   25,
		model.QuestionSystemDesign: 35,
		model.QuestionCoding:       20,
		model.QuestionGeneral:      10,
	}
)

// Classifier 对单条问题做意图与格式分类。
type Classifier struct{}

// NewClassifier 创建一个新的 Classifier。
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify 对问题文本做尽力而为的分类，从不失败；
// 没有任何信号命中时回落到 general/definition、置信度 0.3。
func (c *Classifier) Classify(question string) model.QuestionClassification {
	lower := strings.ToLower(strings.TrimSpace(question))
	words := tokenize(lower)

	techHits, firstTerm := countTechnicalTerms(words)

	qType, matches, category := resolveType(lower, words, techHits, firstTerm)

	extra := matches - 1
	if extra < 0 {
		extra = 0
	}
	confidence := confidenceBase[qType] + 0.1*float64(extra)
	if limit := confidenceCap[qType]; confidence > limit {
		confidence = limit
	}

	complexity := resolveComplexity(lower, techHits)

	seconds := float64(baseAnswerSeconds[qType])
	switch complexity {
	case model.ComplexityIntermediate:
		seconds *= 1.3
	case model.ComplexityAdvanced:
		seconds *= 1.6
	}

	return model.QuestionClassification{
		Type:                    qType,
		Category:                category,
		Confidence:              confidence,
		SuggestedFormat:         resolveFormat(qType, lower),
		Complexity:              complexity,
		EstimatedTimeSeconds:    int(math.Round(seconds)),
		RequiresPersonalContext: requiresPersonalContext(lower, words),
	}
}

// resolveType 按固定优先级解析问题类型：
// system_design > coding > behavioral > technical > general。
// 返回类型、命中数（用于置信度加成）和类别标签。
func resolveType(lower string, words []string, techHits int, firstTerm string) (model.QuestionType, int, string) {
	if hits := countPhrases(lower, systemDesignPhrases); hits > 0 || (containsWord(words, "design") && techHits > 2) {
		return model.QuestionSystemDesign, hits + techHits, "system design"
	}

	if hits := countPhrases(lower, codingPhrases); hits > 0 || containsWord(words, "write") || containsWord(words, "implement") {
		return model.QuestionCoding, hits + 1, "coding"
	}

	behavioralHits := countPhrases(lower, behavioralPhrases)
	for _, p := range behavioralPatterns {
		if p.MatchString(lower) {
			behavioralHits++
		}
	}
	if behavioralHits > 0 {
		return model.QuestionBehavioral, behavioralHits, "behavioral"
	}

	if techHits > 0 {
		return model.QuestionTechnical, techHits, firstTerm
	}

	return model.QuestionGeneral, 0, "general"
}

// resolveFormat 按类型确定呈现格式；technical 进一步根据比较类措辞
// 在 comparison 与 definition 之间分流。
func resolveFormat(qType model.QuestionType, lower string) model.ResponseFormat {
	switch qType {
	case model.QuestionBehavioral:
		return model.FormatStar
	case model.QuestionSystemDesign:
		return model.FormatArchitecture
	case model.QuestionCoding:
		return model.FormatStepByStep
	case model.QuestionTechnical:
		for _, w := range comparisonWords {
			if containsWord(tokenize(lower), w) {
				return model.FormatComparison
			}
		}
		return model.FormatDefinition
	default:
		return model.FormatDefinition
	}
}

func resolveComplexity(lower string, techHits int) model.Complexity {
	for _, s := range advancedSignals {
		if strings.Contains(lower, s) {
			return model.ComplexityAdvanced
		}
	}
	if techHits > 3 {
		return model.ComplexityAdvanced
	}
	if techHits > 1 || len(lower) > 100 {
		return model.ComplexityIntermediate
	}
	return model.ComplexityBeginner
}

// requiresPersonalContext 检测问题是否指向候选人本人的经历。
// 命中第二人称代词或固定的经历指涉短语即为 true。
func requiresPersonalContext(lower string, words []string) bool {
	for _, pronoun := range []string{"you", "your", "yourself"} {
		if containsWord(words, pronoun) {
			return true
		}
	}
	for _, phrase := range personalContextPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

func countTechnicalTerms(words []string) (int, string) {
	hits := 0
	first := ""
	for _, w := range words {
		if technicalTerms[w] {
			hits++
			if first == "" {
				first = w
			}
		}
	}
	return hits, first
}

func countPhrases(lower string, phrases []string) int {
	hits := 0
	for _, p := range phrases {
		if strings.Contains(lower, p) {
			hits++
		}
	}
	return hits
}

// tokenize 将文本切分为小写单词，丢弃标点。
func tokenize(lower string) []string {
	return strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func containsWord(words []string, target string) bool {
	for _, w := range words {
		if w == target {
			return true
		}
	}
	return false
}
