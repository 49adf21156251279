package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/abhisek/adaptiq/internal/attempt"
)

// Fixture is the JSON document accepted by ImportFile.
type Fixture struct {
	Students []attempt.Student `json:"students"`
	Courses  []attempt.Course  `json:"courses"`
	Attempts []FixtureAttempt  `json:"attempts"`
}

// FixtureAttempt is the wire form of a graded attempt as produced by the
// grading step.
type FixtureAttempt struct {
	ID                   string                            `json:"id"`
	StudentID            string                            `json:"student_id"`
	QuizID               string                            `json:"quiz_id"`
	CourseID             string                            `json:"course_id"`
	Status               string                            `json:"status"`
	TakenAt              time.Time                         `json:"taken_at"`
	Score                float64                           `json:"score"`
	TimeTakenSeconds     float64                           `json:"time_taken_seconds"`
	QuestionAnalytics    map[string]attempt.QuestionResult `json:"question_analytics"`
	StrengthsIdentified  []string                          `json:"strengths_identified"`
	WeaknessesIdentified []string                          `json:"weaknesses_identified"`
}

// Record converts the fixture row to a domain record.
func (f FixtureAttempt) Record() attempt.Record {
	status := attempt.Status(f.Status)
	if status == "" {
		status = attempt.StatusCompleted
	}
	return attempt.Record{
		ID:                   f.ID,
		StudentID:            f.StudentID,
		QuizID:               f.QuizID,
		CourseID:             f.CourseID,
		Status:               status,
		TakenAt:              f.TakenAt,
		Score:                f.Score,
		TimeTaken:            time.Duration(f.TimeTakenSeconds * float64(time.Second)),
		Questions:            f.QuestionAnalytics,
		StrengthsIdentified:  f.StrengthsIdentified,
		WeaknessesIdentified: f.WeaknessesIdentified,
	}
}

// ImportStats counts what ImportFile wrote.
type ImportStats struct {
	Students int
	Courses  int
	Attempts int
}

// ImportFile loads a fixture from path. Students and courses are upserted;
// attempts are appended.
func (s *Store) ImportFile(ctx context.Context, path string) (ImportStats, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return ImportStats{}, fmt.Errorf("read fixture: %w", err)
	}
	var fx Fixture
	if err := json.Unmarshal(raw, &fx); err != nil {
		return ImportStats{}, fmt.Errorf("decode fixture %s: %w", path, err)
	}
	return s.Import(ctx, fx)
}

// Import writes an already decoded fixture.
func (s *Store) Import(ctx context.Context, fx Fixture) (ImportStats, error) {
	var stats ImportStats
	dir := s.Directory()
	for _, st := range fx.Students {
		if err := dir.PutStudent(ctx, st); err != nil {
			return stats, err
		}
		stats.Students++
	}
	for _, c := range fx.Courses {
		if err := dir.PutCourse(ctx, c); err != nil {
			return stats, err
		}
		stats.Courses++
	}

	attempts := s.Attempts()
	for _, fa := range fx.Attempts {
		if fa.Score < 0 || fa.Score > 100 {
			return stats, fmt.Errorf("attempt %s: score %.1f outside [0,100]", fa.ID, fa.Score)
		}
		rec := fa.Record()
		if err := attempts.Append(ctx, &rec); err != nil {
			return stats, err
		}
		stats.Attempts++
	}
	return stats, nil
}
