package align

import (
	"errors"
	"math"
	"testing"
)

func TestFindAlignsTrack(t *testing.T) {
	texts := []string{
		"오늘은 우리 함께 면역의 원리를 알아봅니다",
		"네 그 부분이 정말 중요하다고 생각해요",
		"마지막으로 핵심 내용을 정리해 보겠습니다",
	}
	words := append(
		phraseWords(1.0, "우리", "함께", "면역의", "원리를", "알아봅니다"),
		phraseWords(3.0, "그", "부분이", "정말", "중요하다고", "생각해요")...,
	)
	file := buildTrack(24000, span{6.0, false})

	sf := NewSegmentFinder(NewMatcher(nil, 0), DefaultBoundaryRefiner(), nil)
	segments, err := sf.Find(file, words, texts)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(segments) != len(texts) {
		t.Fatalf("segments = %d, want %d", len(segments), len(texts))
	}
	if segments[0].Start != 0 {
		t.Errorf("first segment starts at %v", segments[0].Start)
	}
	for i := 1; i < len(segments); i++ {
		if segments[i].Start != segments[i-1].End {
			t.Errorf("gap between segment %d and %d: %v != %v", i-1, i, segments[i-1].End, segments[i].Start)
		}
	}
	if math.Abs(segments[2].End-6.0) > 1e-9 {
		t.Errorf("last segment ends at %v, want track end", segments[2].End)
	}
	// First boundary lands at the matched tail end (silent audio keeps the
	// refiner at the match point).
	if math.Abs(segments[0].End-1.95) > 0.05 {
		t.Errorf("first boundary = %v, want ~1.95", segments[0].End)
	}
}

func TestFindEstimatesWhenTailMissing(t *testing.T) {
	texts := []string{
		"첫 번째 발화는 매칭되지 않습니다 전혀",
		"두 번째 발화도 마찬가지로 실패합니다 역시",
		"마지막 발화입니다",
	}
	file := buildTrack(24000, span{9.0, false})

	sf := NewSegmentFinder(NewMatcher(nil, 0), DefaultBoundaryRefiner(), nil)
	segments, err := sf.Find(file, nil, texts)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(segments) != 3 {
		t.Fatalf("segments = %d, want 3", len(segments))
	}
	// First estimate: rune count (including spaces) times 0.15s.
	if segments[0].End <= 0 || segments[0].End >= 9.0 {
		t.Errorf("estimated first end = %v", segments[0].End)
	}
	if math.Abs(segments[2].End-9.0) > 1e-9 {
		t.Errorf("last segment ends at %v", segments[2].End)
	}
}

func TestReconcilePadsShortfall(t *testing.T) {
	sf := NewSegmentFinder(nil, DefaultBoundaryRefiner(), nil)
	segments := sf.reconcile([]Segment{{0, 2}, {2, 4}}, 4, 10)
	if len(segments) != 4 {
		t.Fatalf("segments = %d, want 4", len(segments))
	}
	// Padding uses the running average duration (2s).
	if segments[2].Start != 4 || math.Abs(segments[2].Duration()-2) > 1e-9 {
		t.Errorf("padded segment = %+v", segments[2])
	}
	if segments[3].Start != segments[2].End {
		t.Errorf("padded segments not contiguous: %+v", segments[3])
	}
}

func TestReconcileStopsAtAudioEnd(t *testing.T) {
	sf := NewSegmentFinder(nil, DefaultBoundaryRefiner(), nil)
	segments := sf.reconcile([]Segment{{0, 9.995}}, 3, 10)
	if len(segments) != 1 {
		t.Errorf("segments = %d, want 1 (audio exhausted)", len(segments))
	}
}

func TestReconcileTrimsSurplus(t *testing.T) {
	sf := NewSegmentFinder(nil, DefaultBoundaryRefiner(), nil)
	in := []Segment{{0, 1}, {1, 2}, {2, 3}, {3, 4}, {4, 5}}
	segments := sf.reconcile(in, 3, 5)
	if len(segments) != 3 {
		t.Fatalf("segments = %d, want 3", len(segments))
	}
	if segments[2].End != 3 {
		t.Errorf("kept wrong segments: %+v", segments)
	}
}

func TestValidateRejectsNegativeDuration(t *testing.T) {
	sf := NewSegmentFinder(nil, DefaultBoundaryRefiner(), nil)
	err := sf.validate([]Segment{{0, 1}, {2, 1.5}})
	if !errors.Is(err, ErrNegativeSegment) {
		t.Errorf("expected ErrNegativeSegment, got %v", err)
	}
}

func TestValidateRejectsExcessiveDuration(t *testing.T) {
	sf := NewSegmentFinder(nil, DefaultBoundaryRefiner(), nil)
	err := sf.validate([]Segment{{0, 70}})
	if !errors.Is(err, ErrExcessiveSegment) {
		t.Errorf("expected ErrExcessiveSegment, got %v", err)
	}
}
