package adaptive

import (
	"fmt"
	"math"
	"strings"

	"github.com/abhisek/adaptiq/internal/analysis"
)

// Adjustment step sizes.
const (
	StepDifficulty = 0.1
	StepChallenge  = 0.1
	StepPace       = 0.1
	StepSupport    = 0.1
	StepRepetition = 0.2

	// ReportThreshold is the minimum absolute delta reported as a change.
	ReportThreshold = 0.05
)

// Recent summarizes the latest handful of attempts.
type Recent struct {
	AverageScore float64
	Trend        analysis.Trend
	Consistency  analysis.ConsistencyBucket
}

// Direction of a parameter change.
type Direction string

const (
	Increased Direction = "increased"
	Decreased Direction = "decreased"
)

// Field names used in change reports.
const (
	FieldDifficulty = "difficulty_adjustment"
	FieldChallenge  = "challenge_level"
	FieldPace       = "content_pace"
	FieldSupport    = "support_level"
	FieldRepetition = "repetition_factor"
)

// Change records one parameter that moved during Update.
type Change struct {
	Field     string    `json:"field"`
	Direction Direction `json:"direction"`
	From      float64   `json:"from"`
	To        float64   `json:"to"`
}

// Update nudges current toward the recent performance and reports every
// field whose value moved by more than ReportThreshold.
//
// Improving with an average above 80 raises difficulty, challenge and pace.
// Declining or an average below 60 raises support and repetition and lowers
// difficulty and pace. Low recent consistency raises repetition one step.
func Update(current Parameters, recent Recent) (Parameters, []Change) {
	before := current.Clamp()
	next := before

	if recent.Trend == analysis.TrendImproving && recent.AverageScore > 80 {
		next.DifficultyAdjustment += StepDifficulty
		next.ChallengeLevel += StepChallenge
		next.ContentPace += StepPace
	}
	if recent.Trend == analysis.TrendDeclining || recent.AverageScore < 60 {
		next.SupportLevel += StepSupport
		next.RepetitionFactor += StepRepetition
		next.DifficultyAdjustment -= StepDifficulty
		next.ContentPace -= StepPace
	}
	if recent.Consistency == analysis.ConsistencyLow {
		next.RepetitionFactor += StepRepetition
	}
	next = next.Clamp()

	if next.RepetitionFactor != before.RepetitionFactor && before.RepetitionFactor > 0 {
		scaled := float64(before.EstimatedCompletionMinutes) * next.RepetitionFactor / before.RepetitionFactor
		next.EstimatedCompletionMinutes = max(1, int(math.Round(scaled)))
	}

	var changes []Change
	report := func(field string, from, to float64) {
		delta := to - from
		if math.Abs(delta) <= ReportThreshold {
			return
		}
		dir := Increased
		if delta < 0 {
			dir = Decreased
		}
		changes = append(changes, Change{Field: field, Direction: dir, From: from, To: to})
	}
	report(FieldDifficulty, before.DifficultyAdjustment, next.DifficultyAdjustment)
	report(FieldChallenge, before.ChallengeLevel, next.ChallengeLevel)
	report(FieldPace, before.ContentPace, next.ContentPace)
	report(FieldSupport, before.SupportLevel, next.SupportLevel)
	report(FieldRepetition, before.RepetitionFactor, next.RepetitionFactor)

	return next, changes
}

var fieldLabels = map[string]string{
	FieldDifficulty: "Difficulty",
	FieldChallenge:  "Challenge level",
	FieldPace:       "Content pace",
	FieldSupport:    "Support",
	FieldRepetition: "Review repetition",
}

// Explain renders changes as short sentences for display.
func Explain(changes []Change) []string {
	out := make([]string, 0, len(changes))
	for _, c := range changes {
		label, ok := fieldLabels[c.Field]
		if !ok {
			label = c.Field
		}
		out = append(out, fmt.Sprintf("%s %s from %.2f to %.2f", label, c.Direction, c.From, c.To))
	}
	return out
}

// Summary joins Explain output into one line, or reports no change.
func Summary(changes []Change) string {
	if len(changes) == 0 {
		return "No adjustments needed"
	}
	return strings.Join(Explain(changes), "; ")
}
