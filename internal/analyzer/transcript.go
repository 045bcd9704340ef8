package analyzer

import "strings"

// CorrectionFunc 是语音转写纠正策略。作为可注入的函数传入编排层，
// 便于替换和单独测试——这些纠正是没有形式化依据的启发式规则，
// 测试套件应当记录其行为而不是试图"修正"它。
type CorrectionFunc func(transcript string) string

// transcriptCorrections 收录浏览器语音识别对技术词汇的常见误听。
// 有序列表，长短语在前，保证 "my sequel" 不会先被 "sequel" 拆掉。
var transcriptCorrections = []struct {
	wrong string
	right string
}{
	{"cooper netties", "kubernetes"},
	{"java script", "javascript"},
	{"type script", "typescript"},
	{"react j s", "reactjs"},
	{"node j s", "nodejs"},
	{"my sequel", "mysql"},
	{"no sequel", "nosql"},
	{"post grass", "postgres"},
	{"cuba netes", "kubernetes"},
	{"rest full", "restful"},
	{"sea sharp", "c#"},
	{"jay son", "json"},
	{"go lang", "golang"},
	{"get hub", "github"},
	{"calf ka", "kafka"},
	{"red is", "redis"},
	{"a p i", "api"},
	{"sequel", "sql"},
}

// leadingFillers 是转写开头常见的口头语，整体剥除。
var leadingFillers = []string{
	"um ", "uh ", "ah ", "er ", "hmm ", "okay so ", "ok so ", "so ", "well ",
}

// DefaultCorrection 是默认的表驱动转写纠正实现：
// 剥除开头口头语，替换误听的技术词汇，压缩多余空白。
func DefaultCorrection(transcript string) string {
	s := strings.TrimSpace(transcript)
	if s == "" {
		return s
	}

	lower := strings.ToLower(s)
	for _, filler := range leadingFillers {
		if strings.HasPrefix(lower, filler) {
			s = s[len(filler):]
			lower = lower[len(filler):]
			break
		}
	}

	for _, c := range transcriptCorrections {
		for {
			idx := strings.Index(lower, c.wrong)
			if idx < 0 {
				break
			}
			s = s[:idx] + c.right + s[idx+len(c.wrong):]
			lower = lower[:idx] + c.right + lower[idx+len(c.wrong):]
		}
	}

	return strings.Join(strings.Fields(s), " ")
}
