package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/abhisek/adaptiq/internal/attempt"
)

var attemptColumns = []string{
	"id", "student_id", "course_id", "quiz_id", "status", "taken_at",
	"score", "time_taken_ms", "question_analytics",
	"strengths_identified", "weaknesses_identified",
}

// AttemptRepo persists graded attempts. Rows are append-only.
type AttemptRepo struct {
	drv *entsql.Driver
	seq *sequenceCounter
}

// Append stores a graded attempt. An empty ID is replaced with a UUID.
func (r *AttemptRepo) Append(ctx context.Context, rec *attempt.Record) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Status == "" {
		rec.Status = attempt.StatusCompleted
	}

	analytics, err := json.Marshal(nonNilQuestions(rec.Questions))
	if err != nil {
		return fmt.Errorf("marshal question analytics: %w", err)
	}
	strengths, err := json.Marshal(nonNilStrings(rec.StrengthsIdentified))
	if err != nil {
		return fmt.Errorf("marshal strengths: %w", err)
	}
	weaknesses, err := json.Marshal(nonNilStrings(rec.WeaknessesIdentified))
	if err != nil {
		return fmt.Errorf("marshal weaknesses: %w", err)
	}

	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	query, args := builder().Insert(AttemptsTable.Name).
		Columns(append([]string{"sequence"}, attemptColumns...)...).
		Values(
			seqNum, rec.ID, rec.StudentID, rec.CourseID, rec.QuizID, string(rec.Status),
			rec.TakenAt.UTC(), rec.Score, rec.TimeTaken.Milliseconds(),
			string(analytics), string(strengths), string(weaknesses),
		).
		Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("save attempt %s: %w", rec.ID, err)
	}
	return nil
}

// Attempts implements attempt.Reader. Records come back newest first; an
// empty courseID returns every course.
func (r *AttemptRepo) Attempts(ctx context.Context, studentID, courseID string) ([]attempt.Record, error) {
	pred := entsql.EQ("student_id", studentID)
	if courseID != "" {
		pred = entsql.And(pred, entsql.EQ("course_id", courseID))
	}

	query, args := builder().Select(attemptColumns...).
		From(entsql.Table(AttemptsTable.Name)).
		Where(pred).
		OrderBy(entsql.Desc("taken_at"), entsql.Desc("sequence")).
		Query()

	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()

	var out []attempt.Record
	for rows.Next() {
		var (
			rec                  attempt.Record
			status               string
			timeTakenMs          int64
			analytics, str, weak string
		)
		if err := rows.Scan(
			&rec.ID, &rec.StudentID, &rec.CourseID, &rec.QuizID, &status, &rec.TakenAt,
			&rec.Score, &timeTakenMs, &analytics, &str, &weak,
		); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		rec.Status = attempt.Status(status)
		rec.TimeTaken = time.Duration(timeTakenMs) * time.Millisecond

		if err := json.Unmarshal([]byte(analytics), &rec.Questions); err != nil {
			return nil, fmt.Errorf("decode question analytics for %s: %w", rec.ID, err)
		}
		if err := json.Unmarshal([]byte(str), &rec.StrengthsIdentified); err != nil {
			return nil, fmt.Errorf("decode strengths for %s: %w", rec.ID, err)
		}
		if err := json.Unmarshal([]byte(weak), &rec.WeaknessesIdentified); err != nil {
			return nil, fmt.Errorf("decode weaknesses for %s: %w", rec.ID, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attempts: %w", err)
	}
	return out, nil
}

func nonNilQuestions(m map[string]attempt.QuestionResult) map[string]attempt.QuestionResult {
	if m == nil {
		return map[string]attempt.QuestionResult{}
	}
	return m
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
