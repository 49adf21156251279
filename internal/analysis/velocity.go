package analysis

import (
	"github.com/abhisek/adaptiq/internal/attempt"
)

const (
	// VelocityMinAttempts is the minimum history for a velocity estimate.
	VelocityMinAttempts = 5

	// VelocityWindow is how many of the most recent attempts are sampled.
	VelocityWindow = 20
)

// VelocityClass buckets how quickly a student is improving.
type VelocityClass string

const (
	VelocityVeryFast VelocityClass = "very_fast"
	VelocityFast     VelocityClass = "fast"
	VelocityNormal   VelocityClass = "normal"
	VelocitySlow     VelocityClass = "slow"
	VelocityVerySlow VelocityClass = "very_slow"
)

// Confidence qualifies a classification by sample size.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Velocity is the output of ClassifyVelocity.
type Velocity struct {
	Class           VelocityClass `json:"velocity"`
	Confidence      Confidence    `json:"confidence"`
	ImprovementRate float64       `json:"improvement_rate"`
	Samples         int           `json:"samples"`
}

// ClassifyVelocity estimates the improvement rate in points per day over the
// VelocityWindow most recent completed attempts.
//
// For each adjacent pair (newest first) score_delta = older - newer and
// days_delta = whole days between them; pairs on the same day are skipped.
// The rate is mean(score_delta) / mean(days_delta).
//
// NOTE: with this sign a falling score yields a positive rate and is
// classified as fast. Kept as-is pending product clarification.
func ClassifyVelocity(records []attempt.Record) Velocity {
	completed := attempt.Completed(attempt.SortNewestFirst(records))
	if len(completed) < VelocityMinAttempts {
		return Velocity{Class: VelocityNormal, Confidence: ConfidenceLow, Samples: len(completed)}
	}

	window := completed
	if len(window) > VelocityWindow {
		window = window[:VelocityWindow]
	}

	var scoreDeltas, dayDeltas []float64
	for i := 0; i+1 < len(window); i++ {
		newer, older := window[i], window[i+1]
		days := int(newer.TakenAt.Sub(older.TakenAt).Hours() / 24)
		if days <= 0 {
			continue
		}
		scoreDeltas = append(scoreDeltas, older.Score-newer.Score)
		dayDeltas = append(dayDeltas, float64(days))
	}

	rate := 0.0
	if len(dayDeltas) > 0 {
		rate = mean(scoreDeltas) / mean(dayDeltas)
	}

	return Velocity{
		Class:           velocityClass(rate),
		Confidence:      confidenceFor(len(window)),
		ImprovementRate: rate,
		Samples:         len(window),
	}
}

func velocityClass(rate float64) VelocityClass {
	switch {
	case rate > 2:
		return VelocityVeryFast
	case rate > 1:
		return VelocityFast
	case rate > -0.5:
		return VelocityNormal
	case rate > -2:
		return VelocitySlow
	default:
		return VelocityVerySlow
	}
}

func confidenceFor(samples int) Confidence {
	switch {
	case samples >= 15:
		return ConfidenceHigh
	case samples >= 10:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}
