package store

import (
	"reflect"
	"strings"

	"entgo.io/ent"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"

	entschema "github.com/abhisek/intellistudy/ent/schema"
)

const (
	kvTable         = "kv_entries"
	completionTable = "task_completions"
	llmEventTable   = "llm_request_events"
)

var (
	kvEntries        = tableFor(kvTable, entschema.KVEntry{})
	taskCompletions  = tableFor(completionTable, entschema.TaskCompletion{})
	llmRequestEvents = tableFor(llmEventTable, entschema.LLMRequestEvent{})

	tables = []*schema.Table{kvEntries, taskCompletions, llmRequestEvents}
)

// declaration is the part of an ent schema the migration tables are built
// from.
type declaration interface {
	Fields() []ent.Field
	Mixin() []ent.Mixin
	Indexes() []ent.Index
}

// tableFor builds the migration table for an ent schema declaration.
// Mixin fields come first. A declaration without an "id" field gets an
// auto-increment integer key. Index names follow ent's
// <lowercased type>_<fields> convention.
func tableFor(name string, s declaration) *schema.Table {
	var fields []ent.Field
	for _, m := range s.Mixin() {
		fields = append(fields, m.Fields()...)
	}
	fields = append(fields, s.Fields()...)

	t := &schema.Table{Name: name}
	byField := make(map[string]*schema.Column, len(fields))
	var pk *schema.Column
	for _, f := range fields {
		d := f.Descriptor()
		col := &schema.Column{
			Name:       storageName(d),
			Type:       d.Info.Type,
			Size:       int64(d.Size),
			Unique:     d.Unique,
			SchemaType: d.SchemaType,
		}
		// Function defaults such as time.Now are applied by the repos.
		if d.Default != nil && reflect.TypeOf(d.Default).Kind() != reflect.Func {
			col.Default = d.Default
		}
		if d.Name == "id" {
			col.Unique = true
			pk = col
		}
		byField[d.Name] = col
		t.Columns = append(t.Columns, col)
	}
	if pk == nil {
		pk = &schema.Column{Name: "id", Type: field.TypeInt, Increment: true}
		t.Columns = append([]*schema.Column{pk}, t.Columns...)
	}
	t.PrimaryKey = []*schema.Column{pk}

	prefix := strings.ToLower(reflect.TypeOf(s).Name())
	for _, ix := range s.Indexes() {
		d := ix.Descriptor()
		idx := &schema.Index{Name: d.StorageKey, Unique: d.Unique}
		for _, f := range d.Fields {
			idx.Columns = append(idx.Columns, byField[f])
		}
		if idx.Name == "" {
			idx.Name = prefix + "_" + strings.Join(d.Fields, "_")
		}
		t.Indexes = append(t.Indexes, idx)
	}
	return t
}

func storageName(d *field.Descriptor) string {
	if d.StorageKey != "" {
		return d.StorageKey
	}
	return d.Name
}
