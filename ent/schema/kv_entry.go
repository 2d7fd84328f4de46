package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
)

// KVEntry is a single named blob. The mistake list lives here as one JSON
// document under a fixed key.
type KVEntry struct {
	ent.Schema
}

func (KVEntry) Fields() []ent.Field {
	return []ent.Field{
		field.String("key").
			NotEmpty().
			Unique().
			Comment("Blob name, e.g. eiken_mistakes"),
		field.Bytes("value").
			Comment("Opaque payload, overwritten as a whole"),
		field.Time("updated_at").
			Comment("Last write time"),
	}
}
