package korean

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain hangul", "오늘은 날씨가 좋네요", "오늘은날씨가좋네요"},
		{"strips punctuation", "네, 이해했어요!", "네이해했어요"},
		{"strips digits", "2단계로 넘어갑니다", "단계로넘어갑니다"},
		{"compound term", "AI 기술", "에이아이기술"},
		{"compound lowercase", "dna 구조", "디엔에이구조"},
		{"letter spelling", "B형 간염", "비형간염"},
		{"lowercase letter", "x축을 보세요", "엑스축을보세요"},
		{"empty", "", ""},
		{"only symbols", "... !!! ???", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"오늘은 AI에 대해 이야기합니다.",
		"COVID 이후의 RNA 연구",
		"네, 알겠습니다!",
	}
	for _, input := range inputs {
		once := Normalize(input)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q != %q", input, once, twice)
		}
	}
}
