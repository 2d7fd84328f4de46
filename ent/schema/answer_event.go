package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// AnswerEvent records a single submitted answer.
type AnswerEvent struct {
	ent.Schema
}

func (AnswerEvent) Mixin() []ent.Mixin {
	return []ent.Mixin{EventMixin{}}
}

func (AnswerEvent) Fields() []ent.Field {
	return []ent.Field{
		field.String("session_id").
			NotEmpty().
			Comment("Links to SessionEvent"),
		field.String("question_id").
			NotEmpty().
			Comment("Question id, e.g. 2-045"),
		field.String("grade").
			NotEmpty().
			Comment("Grade derived from the question id"),
		field.String("question_text").
			Comment("The question shown"),
		field.String("correct_answer").
			Comment("The dataset answer"),
		field.String("selected_answer").
			Comment("The option the learner chose"),
		field.Bool("correct").
			Comment("Whether the answer was correct"),
		field.Int64("time_ms").
			Default(0).
			Comment("Milliseconds from first render to answer"),
	}
}

func (AnswerEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("session_id"),
		index.Fields("question_id"),
		index.Fields("correct"),
	}
}
