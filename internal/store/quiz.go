package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/adaptiq/internal/attempt"
)

var quizColumns = []string{
	"id", "sequence", "student_id", "course_id", "title", "source", "tier",
	"question_count", "body", "created_at",
}

// quizRepo implements QuizRepo.
type quizRepo struct {
	drv *entsql.Driver
	seq *sequenceCounter
}

func (r *quizRepo) SaveQuiz(ctx context.Context, q *QuizRecord) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now().UTC()
	}
	q.Sequence = seqNum

	query, args := builder().Insert(GeneratedQuizzesTable.Name).
		Columns(quizColumns...).
		Values(
			q.ID, q.Sequence, q.StudentID, q.CourseID, q.Title, q.Source, q.Tier,
			q.QuestionCount, string(q.Body), q.CreatedAt.UTC(),
		).
		Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("save quiz %s: %w", q.ID, err)
	}
	return nil
}

func (r *quizRepo) Quiz(ctx context.Context, id string) (*QuizRecord, error) {
	out, err := r.query(ctx, entsql.EQ("id", id), 1)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("quiz %q: %w", id, attempt.ErrNotFound)
	}
	return &out[0], nil
}

func (r *quizRepo) ListQuizzes(ctx context.Context, studentID string, limit int) ([]QuizRecord, error) {
	return r.query(ctx, entsql.EQ("student_id", studentID), limit)
}

func (r *quizRepo) query(ctx context.Context, pred *entsql.Predicate, limit int) ([]QuizRecord, error) {
	sel := builder().Select(quizColumns...).
		From(entsql.Table(GeneratedQuizzesTable.Name)).
		Where(pred).
		OrderBy(entsql.Desc("sequence"))
	if limit > 0 {
		sel.Limit(limit)
	}

	query, args := sel.Query()
	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("query quizzes: %w", err)
	}
	defer rows.Close()

	var out []QuizRecord
	for rows.Next() {
		var (
			q    QuizRecord
			body string
		)
		if err := rows.Scan(
			&q.ID, &q.Sequence, &q.StudentID, &q.CourseID, &q.Title, &q.Source, &q.Tier,
			&q.QuestionCount, &body, &q.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan quiz: %w", err)
		}
		q.Body = []byte(body)
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quizzes: %w", err)
	}
	return out, nil
}
