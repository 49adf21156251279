package quizgen

import (
	"math"

	"github.com/abhisek/adaptiq/internal/analysis"
)

const (
	basePassingScore     = 70.0
	minPassingScore      = 50.0
	highAchieverScore    = 85.0
	improvingCap         = 80.0
	decliningFloor       = 60.0
	strugglingAverage    = 60.0
	highAchieverAverage  = 90.0
	strugglingMultiplier = 0.8
	trendStep            = 5.0
)

// PassingScore adapts the pass mark to a student's average and trend.
// Struggling students get max(50, avg*0.8); students above 90 get 85;
// everyone else 70. The trend then moves the mark by 5 points, capped at
// 80 when improving and floored at 60 when declining. The improving cap
// applies after the high-achiever bar, so an improving student above 90
// gets a lower mark than a stable one.
func PassingScore(avg float64, trend analysis.Trend) float64 {
	var score float64
	switch {
	case avg < strugglingAverage:
		score = max(minPassingScore, avg*strugglingMultiplier)
	case avg > highAchieverAverage:
		score = highAchieverScore
	default:
		score = basePassingScore
	}

	switch trend {
	case analysis.TrendImproving:
		score = min(score+trendStep, improvingCap)
	case analysis.TrendDeclining:
		score = max(score-trendStep, decliningFloor)
	}
	return math.Round(score*10) / 10
}

// TimeLimit returns the time limit in minutes for n questions:
// max(n*1.5, 15), truncated.
func TimeLimit(n int) int {
	return int(max(float64(n)*1.5, 15))
}
