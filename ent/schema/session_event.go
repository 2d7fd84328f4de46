package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// SessionEvent records quiz session lifecycle events (start/end/abandon).
type SessionEvent struct {
	ent.Schema
}

func (SessionEvent) Mixin() []ent.Mixin {
	return []ent.Mixin{EventMixin{}}
}

func (SessionEvent) Fields() []ent.Field {
	return []ent.Field{
		field.String("session_id").
			NotEmpty().
			Comment("UUID grouping events in a session"),
		field.String("action").
			NotEmpty().
			Comment("start, end or abandon"),
		field.String("grade").
			NotEmpty().
			Comment("Grade key, or review"),
		field.String("settings").
			Default("").
			Comment("Human-readable filter settings (on start only)"),
		field.Int("questions_served").
			Default(0).
			Comment("Questions in the session snapshot"),
		field.Int("correct_answers").
			Default(0).
			Comment("Score (on end/abandon only)"),
		field.Int("duration_secs").
			Default(0).
			Comment("Wall-clock duration (on end/abandon only)"),
	}
}

func (SessionEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("session_id"),
		index.Fields("action"),
	}
}
