package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"

	"github.com/abhisek/adaptiq/internal/attempt"
)

// Attempt is one graded quiz attempt as handed over by the grading step.
type Attempt struct {
	ent.Schema
}

func (Attempt) Mixin() []ent.Mixin {
	return []ent.Mixin{SequenceMixin{}}
}

func (Attempt) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			NotEmpty().
			Unique().
			Immutable(),
		field.String("student_id").
			NotEmpty(),
		field.String("course_id"),
		field.String("quiz_id").
			Default(""),
		field.String("status").
			Comment("completed, in_progress or abandoned"),
		field.Time("taken_at"),
		field.Float("score").
			Min(0).
			Max(100),
		field.Int64("time_taken_ms").
			Default(0),
		field.JSON("question_analytics", map[string]attempt.QuestionResult{}).
			Comment("Per-question correctness, difficulty and concept tags"),
		field.JSON("strengths_identified", []string{}),
		field.JSON("weaknesses_identified", []string{}),
	}
}

func (Attempt) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("student_id", "taken_at"),
		index.Fields("student_id", "course_id"),
	}
}
