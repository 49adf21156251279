// Package schedule turns adaptive parameters and time-of-day performance
// into a weekly study plan.
package schedule

import (
	"math"
	"time"

	"github.com/abhisek/adaptiq/internal/adaptive"
	"github.com/abhisek/adaptiq/internal/analysis"
)

// PlanDays is the length of a weekly plan.
const PlanDays = 7

// DefaultStudyHour is used when there is no history to pick a best hour.
const DefaultStudyHour = 17

// MinPracticeMinutes is the floor for a practice session.
const MinPracticeMinutes = 15

// CheckpointMinutes is the length of a spaced-repetition checkpoint.
const CheckpointMinutes = 15

// SpacedRepetitionThreshold is the repetition factor above which
// checkpoints are scheduled.
const SpacedRepetitionThreshold = 1.5

// CheckpointIntervals are the day offsets of spaced checkpoints.
var CheckpointIntervals = []int{1, 3, 7}

// Kind is the purpose of a study day.
type Kind string

const (
	KindMain     Kind = "main"
	KindPractice Kind = "practice"
)

// ContentItem is a unit of pending course content.
type ContentItem struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Day is one day of the plan.
type Day struct {
	Offset  int           `json:"offset"`
	Date    time.Time     `json:"date"`
	Kind    Kind          `json:"kind"`
	Start   time.Time     `json:"start"`
	Minutes int           `json:"minutes"`
	Items   []ContentItem `json:"items,omitempty"`
}

// Checkpoint is a short review session of focus concepts.
type Checkpoint struct {
	Offset   int       `json:"offset"`
	Start    time.Time `json:"start"`
	Minutes  int       `json:"minutes"`
	Concepts []string  `json:"concepts,omitempty"`
}

// Weekly is a seven day study plan.
type Weekly struct {
	Start       time.Time    `json:"start"`
	BestHour    int          `json:"best_hour"`
	BestDay     time.Weekday `json:"best_day"`
	Days        []Day        `json:"days"`
	Checkpoints []Checkpoint `json:"checkpoints,omitempty"`
}

// TotalMinutes sums day and checkpoint minutes.
func (w *Weekly) TotalMinutes() int {
	total := 0
	for _, d := range w.Days {
		total += d.Minutes
	}
	for _, c := range w.Checkpoints {
		total += c.Minutes
	}
	return total
}

// Input is everything Plan needs.
type Input struct {
	Params    adaptive.Parameters
	TimeOfDay analysis.TimeOfDay
	Queue     []ContentItem

	// Focus lists the concepts reviewed at checkpoints, usually the top
	// weaknesses.
	Focus []string

	// Start is the first day of the plan. Only its date is used.
	Start time.Time
}

// Plan builds a weekly plan. Even offsets are main days that take
// max(1, round(pace)) items from the queue; odd offsets are practice days.
// A main day with an exhausted queue becomes a practice day.
func Plan(in Input) Weekly {
	params := in.Params.Clamp()
	start := midnight(in.Start)

	hour := DefaultStudyHour
	if in.TimeOfDay.HasData {
		hour = in.TimeOfDay.BestHour
	}

	w := Weekly{
		Start:    start,
		BestHour: hour,
		BestDay:  in.TimeOfDay.BestDay,
		Days:     make([]Day, 0, PlanDays),
	}

	perDay := max(1, int(math.Round(params.ContentPace)))
	practice := practiceMinutes(params)
	queue := in.Queue

	for offset := 0; offset < PlanDays; offset++ {
		date := start.AddDate(0, 0, offset)
		day := Day{
			Offset:  offset,
			Date:    date,
			Kind:    KindPractice,
			Start:   at(date, hour),
			Minutes: practice,
		}
		if offset%2 == 0 && len(queue) > 0 {
			n := min(perDay, len(queue))
			day.Kind = KindMain
			day.Items = append([]ContentItem(nil), queue[:n]...)
			day.Minutes = params.EstimatedCompletionMinutes * n
			queue = queue[n:]
		}
		w.Days = append(w.Days, day)
	}

	if params.RepetitionFactor > SpacedRepetitionThreshold {
		for _, offset := range CheckpointIntervals {
			w.Checkpoints = append(w.Checkpoints, Checkpoint{
				Offset:   offset,
				Start:    at(start.AddDate(0, 0, offset), hour),
				Minutes:  CheckpointMinutes,
				Concepts: append([]string(nil), in.Focus...),
			})
		}
	}
	return w
}

func practiceMinutes(p adaptive.Parameters) int {
	m := int(math.Round(float64(p.EstimatedCompletionMinutes) / 2 * p.RepetitionFactor))
	return max(MinPracticeMinutes, m)
}

func midnight(t time.Time) time.Time {
	if t.IsZero() {
		t = time.Now()
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func at(date time.Time, hour int) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, hour, 0, 0, 0, date.Location())
}
