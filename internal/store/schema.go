package store

import (
	"reflect"
	"strings"

	"entgo.io/ent"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"

	entity "github.com/abhisek/adaptiq/ent/schema"
)

// Tables derived from the ent schema definitions. They are applied by
// schema.NewMigrate in Open.
var (
	GlobalSequenceTable   = tableFor("global_sequence", entity.GlobalSequence{})
	StudentsTable         = tableFor("students", entity.Student{})
	CoursesTable          = tableFor("courses", entity.Course{})
	AttemptsTable         = tableFor("attempts", entity.Attempt{})
	GeneratedQuizzesTable = tableFor("generated_quizzes", entity.GeneratedQuiz{})
	LlmRequestEventsTable = tableFor("llm_request_events", entity.LLMRequestEvent{})

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		GlobalSequenceTable,
		StudentsTable,
		CoursesTable,
		AttemptsTable,
		GeneratedQuizzesTable,
		LlmRequestEventsTable,
	}
)

// tableFor builds the migration table for an ent schema the way ent's code
// generator would: mixin fields first, an "id" field becomes the primary
// key (or an auto-increment int id is added), and indexes are named
// <lowercased type>_<columns>.
func tableFor(name string, s ent.Interface) *schema.Table {
	var fields []ent.Field
	var indexes []ent.Index
	for _, m := range s.Mixin() {
		fields = append(fields, m.Fields()...)
		indexes = append(indexes, m.Indexes()...)
	}
	fields = append(fields, s.Fields()...)
	indexes = append(indexes, s.Indexes()...)

	t := &schema.Table{Name: name}
	var id *schema.Column
	for _, f := range fields {
		c := column(f.Descriptor())
		if c.Name == "id" {
			id = c
			continue
		}
		t.Columns = append(t.Columns, c)
	}
	if id == nil {
		id = &schema.Column{Name: "id", Type: field.TypeInt, Increment: true}
	}
	t.Columns = append([]*schema.Column{id}, t.Columns...)
	t.PrimaryKey = []*schema.Column{id}

	prefix := strings.ToLower(reflect.TypeOf(s).Name())
	for _, idx := range indexes {
		d := idx.Descriptor()
		si := &schema.Index{
			Name:   prefix + "_" + strings.Join(d.Fields, "_"),
			Unique: d.Unique,
		}
		for _, col := range d.Fields {
			c, ok := t.Column(col)
			if !ok {
				panic("store: index on unknown column " + name + "." + col)
			}
			si.Columns = append(si.Columns, c)
		}
		t.Indexes = append(t.Indexes, si)
	}
	return t
}

func column(d *field.Descriptor) *schema.Column {
	c := &schema.Column{
		Name:     d.Name,
		Type:     d.Info.Type,
		Unique:   d.Unique,
		Nullable: d.Optional,
		Size:     int64(d.Size),
	}
	// Function defaults (time.Now) are applied by the writer, not the table.
	if d.Default != nil && reflect.TypeOf(d.Default).Kind() != reflect.Func {
		c.Default = d.Default
	}
	return c
}
