package attempt

import (
	"context"
	"errors"
	"sort"
	"time"
)

// ErrNotFound is returned by Directory lookups for unknown ids.
var ErrNotFound = errors.New("not found")

// Status is the lifecycle state of a quiz attempt.
type Status string

const (
	StatusCompleted  Status = "completed"
	StatusInProgress Status = "in_progress"
	StatusAbandoned  Status = "abandoned"
)

// Difficulty is the difficulty band of a single question.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Valid reports whether d is one of the known difficulty bands.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// QuestionResult is the grading outcome for one question of an attempt.
type QuestionResult struct {
	Correct    bool       `json:"correct"`
	Tags       []string   `json:"tags"`
	Difficulty Difficulty `json:"difficulty"`
}

// Record is a graded quiz attempt. Records are written once by the grading
// step and never mutated afterwards.
type Record struct {
	ID        string
	StudentID string
	QuizID    string
	CourseID  string
	Status    Status
	TakenAt   time.Time
	Score     float64
	TimeTaken time.Duration

	// Questions maps question id to its graded result.
	Questions map[string]QuestionResult

	// StrengthsIdentified and WeaknessesIdentified are produced by the
	// grading step by thresholding per-tag accuracy at 0.8 and 0.6.
	StrengthsIdentified  []string
	WeaknessesIdentified []string
}

// Completed reports whether the attempt finished grading.
func (r Record) Completed() bool {
	return r.Status == StatusCompleted
}

// Student identifies a learner.
type Student struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Course carries the descriptive context used when generating quizzes.
type Course struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Reader is read-only access to a student's attempt history.
type Reader interface {
	// Attempts returns every attempt of the student, newest first.
	// An empty courseID means all courses.
	Attempts(ctx context.Context, studentID, courseID string) ([]Record, error)
}

// Directory resolves student and course ids.
type Directory interface {
	Student(ctx context.Context, id string) (*Student, error)
	Course(ctx context.Context, id string) (*Course, error)
}

// Completed returns the completed attempts in records, preserving order.
func Completed(records []Record) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if r.Completed() {
			out = append(out, r)
		}
	}
	return out
}

// SortNewestFirst returns a copy of records ordered by TakenAt descending.
// Ties keep their input order.
func SortNewestFirst(records []Record) []Record {
	out := make([]Record, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TakenAt.After(out[j].TakenAt)
	})
	return out
}
