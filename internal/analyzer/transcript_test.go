package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultCorrection(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"misheard sql", "what is my sequel used for", "what is mysql used for"},
		{"longer phrase wins", "is no sequel faster than sequel", "is nosql faster than sql"},
		{"misheard javascript", "explain java script closures", "explain javascript closures"},
		{"leading filler stripped", "um what is docker", "what is docker"},
		{"clean input unchanged", "what is docker", "what is docker"},
		{"whitespace collapsed", "  what   is  docker  ", "what is docker"},
		{"empty input", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DefaultCorrection(tc.in))
		})
	}
}

// 纠正必须是确定性的：同一输入反复纠正得到同一输出。
func TestDefaultCorrectionDeterministic(t *testing.T) {
	in := "um tell me about my sequel and no sequel and java script"
	first := DefaultCorrection(in)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, DefaultCorrection(in))
	}
}

// 策略是可替换的：编排层只依赖 CorrectionFunc 签名。
func TestCorrectionFuncInjectable(t *testing.T) {
	var custom CorrectionFunc = func(s string) string { return "fixed" }
	assert.Equal(t, "fixed", custom("anything"))
}
