package analysis

import (
	"time"

	"github.com/abhisek/adaptiq/internal/attempt"
)

// Summarize computes the headline statistics over the completed attempts in
// records. now anchors the recent window.
func Summarize(records []attempt.Record, now time.Time) Summary {
	completed := attempt.Completed(attempt.SortNewestFirst(records))

	cutoff := now.AddDate(0, 0, -RecentWindowDays)
	var recent []float64
	all := make([]float64, 0, len(completed))
	for _, r := range completed {
		all = append(all, r.Score)
		if !r.TakenAt.Before(cutoff) {
			recent = append(recent, r.Score)
		}
	}

	return Summary{
		TotalAttempts:    len(completed),
		RecentAttempts:   len(recent),
		OverallAverage:   mean(all),
		RecentAverage:    mean(recent),
		Trend:            ScoreTrend(completed),
		LearningVelocity: float64(len(recent)) / float64(RecentWindowDays),
	}
}

// ScoreTrend classifies the direction of the most recent scores. records
// must be completed attempts ordered newest first.
//
// The last TrendWindow attempts are put back into chronological order and
// split by position into an older and a newer half; the half means are
// compared with a ±TrendDeadBand dead-band.
func ScoreTrend(records []attempt.Record) Trend {
	window := records
	if len(window) > TrendWindow {
		window = window[:TrendWindow]
	}
	if len(window) < TrendMinAttempts {
		return TrendInsufficientData
	}

	chrono := make([]float64, len(window))
	for i, r := range window {
		chrono[len(window)-1-i] = r.Score
	}

	mid := len(chrono) / 2
	diff := mean(chrono[mid:]) - mean(chrono[:mid])

	switch {
	case diff > TrendDeadBand:
		return TrendImproving
	case diff < -TrendDeadBand:
		return TrendDeclining
	default:
		return TrendStable
	}
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
