package quizgen

import (
	"time"

	"github.com/abhisek/adaptiq/internal/analysis"
	"github.com/abhisek/adaptiq/internal/attempt"
)

// QuestionType is the variant tag of a generated question.
type QuestionType string

const (
	TypeMultipleChoice QuestionType = "multiple_choice"
	TypeTrueFalse      QuestionType = "true_false"
	TypeShortAnswer    QuestionType = "short_answer"
	TypeFillBlank      QuestionType = "fill_blank"
)

// Valid reports whether t is a known question type.
func (t QuestionType) Valid() bool {
	switch t {
	case TypeMultipleChoice, TypeTrueFalse, TypeShortAnswer, TypeFillBlank:
		return true
	}
	return false
}

// DefaultPoints is awarded to questions that do not specify points.
const DefaultPoints = 10

// Question is a validated quiz question.
type Question struct {
	// ID is 1-based and contiguous within a quiz.
	ID   int          `json:"id"`
	Type QuestionType `json:"type"`

	Prompt string `json:"prompt"`

	// Options is set for multiple choice only.
	Options []string `json:"options,omitempty"`

	// CorrectAnswer is canonical: the option index for multiple choice,
	// "true"/"false" for true/false, free text otherwise.
	CorrectAnswer string `json:"correct_answer"`

	Explanation string             `json:"explanation"`
	Difficulty  attempt.Difficulty `json:"difficulty"`
	Tags        []string           `json:"tags"`
	Points      int                `json:"points"`
}

// Source says whether a quiz came from a model or the template fallback.
type Source string

const (
	SourceAI       Source = "ai"
	SourceFallback Source = "fallback"
)

// Tier is the stage of the degradation chain that produced a quiz.
type Tier string

const (
	TierPrimary   Tier = "primary"
	TierSecondary Tier = "secondary"
	TierTemplate  Tier = "template"
)

// Quiz is a generated quiz. Once returned it is not modified.
type Quiz struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	StudentID        string     `json:"student_id"`
	CourseID         string     `json:"course_id"`
	Topic            string     `json:"topic"`
	TargetConcepts   []string   `json:"target_concepts"`
	Questions        []Question `json:"questions"`
	PassingScore     float64    `json:"passing_score"`
	TimeLimitMinutes int        `json:"time_limit_minutes"`
	MaxAttempts      int        `json:"max_attempts"`
	ShuffleQuestions bool       `json:"shuffle_questions"`
	ShowExplanations bool       `json:"show_explanations"`
	Source           Source     `json:"generation_source"`
	CreatedAt        time.Time  `json:"created_at"`
}

// TotalPoints sums question points.
func (q *Quiz) TotalPoints() int {
	total := 0
	for _, qq := range q.Questions {
		total += qq.Points
	}
	return total
}

// Info summarizes how a quiz was produced.
type Info struct {
	WeaknessesTargeted  int            `json:"weaknesses_targeted"`
	StrengthsReinforced int            `json:"strengths_reinforced"`
	Trend               analysis.Trend `json:"trend"`
	Source              Source         `json:"source"`
	Tier                Tier           `json:"tier"`
	Model               string         `json:"model,omitempty"`

	// Discarded counts candidates rejected during validation.
	Discarded int `json:"discarded"`

	// Trace lists the states visited, ending in StateDone.
	Trace []State `json:"trace"`
}

// Result is the output of Generate.
type Result struct {
	Quiz *Quiz `json:"quiz"`
	Info Info  `json:"generation_info"`
}

// Input is everything a generation call needs.
type Input struct {
	Request Request
	Course  attempt.Course

	// Profile may be nil for a student without history.
	Profile *analysis.Profile
}
