package session

import "fmt"

// costPerCallBudget is the cost-per-call level treated as fully inefficient
const costPerCallBudget = 0.30

// qualityScore rates a session in [0,1]: start at 1.0, subtract 0.1 per API
// error and 0.05 per rejected tool decision, floor at 0.
func qualityScore(apiErrors int64, decisions []ToolDecision) (float64, string) {
	rejections := 0
	for _, d := range decisions {
		if d.Decision != "accept" {
			rejections++
		}
	}

	score := 1.0 - 0.1*float64(apiErrors) - 0.05*float64(rejections)
	score = clamp(score, 0, 1)

	return score, fmt.Sprintf("%d errors, %d rejections", apiErrors, rejections)
}

// efficiencyScore rates cache utilization and cost-per-call in [0,1],
// averaging the two terms with equal weight.
func efficiencyScore(tokens Tokens, totalCostUSD float64, apiCalls int64) (float64, string) {
	cacheRatio := float64(tokens.CacheRead+tokens.CacheCreation) / float64(max64(1, tokens.Total()))

	costPerCall := totalCostUSD / float64(max64(1, apiCalls))
	costTerm := 1 - min(1, costPerCall/costPerCallBudget)

	score := clamp((cacheRatio+costTerm)/2, 0, 1)

	comment := fmt.Sprintf("cache ratio %.2f, cost per call $%.4f", cacheRatio, costPerCall)
	return score, comment
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
