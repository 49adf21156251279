// Package adaptive turns performance signals into bounded tuning parameters
// for difficulty, pacing, repetition and support.
package adaptive

import (
	"math"

	"github.com/abhisek/adaptiq/internal/analysis"
)

// Parameter bounds.
const (
	MinDifficulty = -1.0
	MaxDifficulty = 1.0

	MinPace = 0.5
	MaxPace = 2.0

	MinRepetition = 1.0
	MaxRepetition = 3.0

	MinChallenge = 0.0
	MaxChallenge = 1.0

	MinSupport = 0.1
	MaxSupport = 1.0

	// BaseSessionMinutes is the nominal session length before efficiency
	// and repetition scaling.
	BaseSessionMinutes = 30
)

// Parameters are the tuning knobs handed to quiz issuing and scheduling.
// Every field always lies within its declared bounds.
type Parameters struct {
	DifficultyAdjustment       float64 `json:"difficulty_adjustment"`
	ContentPace                float64 `json:"content_pace"`
	RepetitionFactor           float64 `json:"repetition_factor"`
	ChallengeLevel             float64 `json:"challenge_level"`
	SupportLevel               float64 `json:"support_level"`
	EstimatedCompletionMinutes int     `json:"estimated_completion_minutes"`
}

// Signals is the subset of analysis output the computer depends on.
type Signals struct {
	OverallAverage float64
	Velocity       analysis.VelocityClass
	Consistency    analysis.ConsistencyBucket
	Efficiency     analysis.EfficiencyBucket
}

// SignalsFrom extracts Signals from a profile.
func SignalsFrom(p *analysis.Profile) Signals {
	return Signals{
		OverallAverage: p.Summary.OverallAverage,
		Velocity:       p.Velocity.Class,
		Consistency:    p.Consistency.Bucket,
		Efficiency:     p.Efficiency.Bucket,
	}
}

// Defaults returns the neutral parameters used when history is too short.
func Defaults() Parameters {
	return Parameters{
		DifficultyAdjustment:       0,
		ContentPace:                1.0,
		RepetitionFactor:           1.0,
		ChallengeLevel:             0.5,
		SupportLevel:               0.5,
		EstimatedCompletionMinutes: BaseSessionMinutes,
	}
}

var paceByVelocity = map[analysis.VelocityClass]float64{
	analysis.VelocityVeryFast: 1.8,
	analysis.VelocityFast:     1.4,
	analysis.VelocityNormal:   1.0,
	analysis.VelocitySlow:     0.7,
	analysis.VelocityVerySlow: 0.5,
}

var repetitionByConsistency = map[analysis.ConsistencyBucket]float64{
	analysis.ConsistencyHigh:   1.0,
	analysis.ConsistencyMedium: 1.5,
	analysis.ConsistencyLow:    2.5,
}

var efficiencyMultiplier = map[analysis.EfficiencyBucket]float64{
	analysis.EfficiencyFast:     0.8,
	analysis.EfficiencyModerate: 1.0,
	analysis.EfficiencySlow:     1.5,
}

// Compute derives parameters from signals. Unknown buckets fall back to
// their neutral value and out-of-range averages are clamped to [0, 100].
func Compute(s Signals) Parameters {
	avg := clamp(s.OverallAverage, 0, 100)

	pace, ok := paceByVelocity[s.Velocity]
	if !ok {
		pace = 1.0
	}
	rep, ok := repetitionByConsistency[s.Consistency]
	if !ok {
		rep = 1.0
	}
	mult, ok := efficiencyMultiplier[s.Efficiency]
	if !ok {
		mult = 1.0
	}

	p := Parameters{
		DifficultyAdjustment: difficultyFor(avg),
		ContentPace:          pace,
		RepetitionFactor:     rep,
		ChallengeLevel:       challengeFor(avg),
		SupportLevel:         1 - avg/100,
	}
	p.EstimatedCompletionMinutes = int(math.Round(BaseSessionMinutes * mult * rep))
	return p.Clamp()
}

// ForProfile computes parameters for a profile, returning Defaults when the
// history is insufficient.
func ForProfile(p *analysis.Profile) Parameters {
	if p == nil || p.Insufficient() {
		return Defaults()
	}
	return Compute(SignalsFrom(p))
}

func difficultyFor(avg float64) float64 {
	switch {
	case avg >= 85:
		return 0.3
	case avg >= 75:
		return 0.1
	case avg >= 65:
		return 0.0
	case avg >= 55:
		return -0.2
	default:
		return -0.5
	}
}

func challengeFor(avg float64) float64 {
	switch {
	case avg >= 80:
		return 0.8
	case avg >= 70:
		return 0.6
	case avg >= 60:
		return 0.4
	default:
		return 0.2
	}
}

// Clamp returns p with every field forced into its bounds.
func (p Parameters) Clamp() Parameters {
	p.DifficultyAdjustment = clamp(p.DifficultyAdjustment, MinDifficulty, MaxDifficulty)
	p.ContentPace = clamp(p.ContentPace, MinPace, MaxPace)
	p.RepetitionFactor = clamp(p.RepetitionFactor, MinRepetition, MaxRepetition)
	p.ChallengeLevel = clamp(p.ChallengeLevel, MinChallenge, MaxChallenge)
	p.SupportLevel = clamp(p.SupportLevel, MinSupport, MaxSupport)
	if p.EstimatedCompletionMinutes < 1 {
		p.EstimatedCompletionMinutes = 1
	}
	return p
}

// clamp restricts v to [lo, hi]. NaN maps to lo.
func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return max(lo, min(hi, v))
}
