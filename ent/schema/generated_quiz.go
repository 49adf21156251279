package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// GeneratedQuiz is a personalized quiz. Rows are written once.
type GeneratedQuiz struct {
	ent.Schema
}

func (GeneratedQuiz) Mixin() []ent.Mixin {
	return []ent.Mixin{SequenceMixin{}}
}

func (GeneratedQuiz) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			NotEmpty().
			Unique().
			Immutable(),
		field.String("student_id"),
		field.String("course_id"),
		field.String("title"),
		field.String("source").
			Comment("ai or fallback"),
		field.String("tier").
			Comment("primary, secondary or template"),
		field.Int("question_count"),
		field.JSON("body", map[string]any{}).
			Comment("Full quiz document with generation info"),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
	}
}

func (GeneratedQuiz) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("student_id", "created_at"),
	}
}
