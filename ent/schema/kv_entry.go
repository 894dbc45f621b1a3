package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
)

// KVEntry is one durable key-value pair. The study plan and the pending
// raw plan text live here.
type KVEntry struct {
	ent.Schema
}

func (KVEntry) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("entry_key").
			NotEmpty().
			Immutable().
			Comment("Storage key, e.g. intelliStudy_studyPlan"),
		field.Text("value").
			Comment("Stored value, usually JSON"),
		field.Time("updated_at").
			Comment("Last write time"),
	}
}
