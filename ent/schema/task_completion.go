package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// TaskCompletion records whether a checklist leaf of a plan is done.
type TaskCompletion struct {
	ent.Schema
}

func (TaskCompletion) Fields() []ent.Field {
	return []ent.Field{
		field.String("plan_key").
			NotEmpty().
			Comment("Fingerprint of the plan the task belongs to"),
		field.String("task_id").
			NotEmpty().
			Comment("Task tree id, e.g. day-1-topic-2"),
		field.Bool("completed").
			Default(false),
		field.Time("updated_at"),
	}
}

func (TaskCompletion) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("plan_key", "task_id").Unique(),
	}
}
