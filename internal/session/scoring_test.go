package session

import (
	"math"
	"testing"
)

func TestQualityScore(t *testing.T) {
	score, comment := qualityScore(0, nil)
	if score != 1.0 {
		t.Errorf("Clean session must score 1.0, got %f", score)
	}
	if comment != "0 errors, 0 rejections" {
		t.Errorf("Unexpected comment: %s", comment)
	}

	score, _ = qualityScore(1, nil)
	if score != 0.9 {
		t.Errorf("One error must score 0.9, got %f", score)
	}

	decisions := []ToolDecision{
		{Tool: "Bash", Decision: "reject"},
		{Tool: "Edit", Decision: "accept"},
		{Tool: "Write", Decision: "reject"},
	}
	score, comment = qualityScore(2, decisions)
	if math.Abs(score-0.7) > 1e-9 {
		t.Errorf("Two errors and two rejections must score 0.7, got %f", score)
	}
	if comment != "2 errors, 2 rejections" {
		t.Errorf("Unexpected comment: %s", comment)
	}

	// Heavily degraded sessions clamp at 0
	score, _ = qualityScore(50, decisions)
	if score != 0 {
		t.Errorf("Score must clamp at 0, got %f", score)
	}
}

func TestEfficiencyScoreBounds(t *testing.T) {
	// No activity at all
	score, _ := efficiencyScore(Tokens{}, 0, 0)
	if score < 0 || score > 1 {
		t.Fatalf("Score out of range: %f", score)
	}

	// Perfect caching, zero cost
	score, _ = efficiencyScore(Tokens{CacheRead: 1000}, 0, 10)
	if math.Abs(score-1.0) > 1e-9 {
		t.Errorf("All-cache zero-cost session must score 1.0, got %f", score)
	}

	// No caching, expensive calls
	score, _ = efficiencyScore(Tokens{Input: 100, Output: 100}, 10.0, 2)
	if score != 0 {
		t.Errorf("Cache-free over-budget session must score 0, got %f", score)
	}
}

func TestEfficiencyScoreMixes(t *testing.T) {
	// Half the tokens cached, cost per call at half the budget
	tokens := Tokens{Input: 400, Output: 100, CacheRead: 400, CacheCreation: 100}
	score, comment := efficiencyScore(tokens, 0.30, 2)

	// cache_ratio = 0.5, cost term = 1 - 0.15/0.30 = 0.5 -> mean 0.5
	if math.Abs(score-0.5) > 1e-9 {
		t.Errorf("Expected 0.5, got %f", score)
	}
	if comment != "cache ratio 0.50, cost per call $0.1500" {
		t.Errorf("Unexpected comment: %s", comment)
	}
}

func TestEfficiencyScoreDeterministic(t *testing.T) {
	tokens := Tokens{Input: 123, Output: 45, CacheRead: 678, CacheCreation: 9}
	a, _ := efficiencyScore(tokens, 0.123, 7)
	b, _ := efficiencyScore(tokens, 0.123, 7)
	if a != b {
		t.Errorf("Score must be deterministic: %f vs %f", a, b)
	}
}
