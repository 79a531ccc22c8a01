package parser_test

import (
	"testing"

	"github.com/leapstack-labs/leapdbml/pkg/core"
	"github.com/leapstack-labs/leapdbml/pkg/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInjectPartials(t *testing.T) {
	db := mustParse(t, `
TablePartial base [headercolor: #111111] {
  id int [pk]
  created_at timestamp
  Note: 'base note'
}
TablePartial audit {
  created_at datetime
  updated_at datetime
  indexes {
    updated_at
  }
}
Table users {
  id bigint
  ~base
  ~audit
  name varchar
}`)

	users := db.LookupTable(core.DefaultSchema, "users")
	require.NotNil(t, users)

	var got []string
	for _, c := range db.TableColumns(users.ID) {
		got = append(got, c.Name+" "+c.Type+" "+c.Source)
	}
	assert.Equal(t, []string{
		"id bigint ",
		"name varchar ",
		"created_at datetime audit",
		"updated_at datetime audit",
	}, got)

	assert.Equal(t, "#111111", users.Settings[core.TableHeaderColor])
	assert.Equal(t, "base", users.SettingSource(core.TableHeaderColor))
	assert.Equal(t, "base note", users.Note.Value())
	assert.Equal(t, "base", users.NoteSource)

	indexes := db.TableIndexes(users.ID)
	require.Len(t, indexes, 1)
	assert.Equal(t, "audit", indexes[0].Source)
	updated, _ := users.ColumnID("updated_at")
	assert.Equal(t, updated, indexes[0].Columns[0].Column)

	assert.Len(t, db.Partials(), 2)
	assert.Equal(t, []string{"base", "audit"}, users.Refs)
}

func TestInjectNestedPartials(t *testing.T) {
	db := mustParse(t, `
Table a {
  ~outer
  own int
}
TablePartial outer {
  ~inner
  mid int
}
TablePartial inner {
  deep int
}
Table b {
  ~inner
  ~outer
  x int
}`)

	for _, name := range []string{"a", "b"} {
		table := db.LookupTable(core.DefaultSchema, name)
		require.NotNil(t, table)
		deep, ok := table.ColumnID("deep")
		require.True(t, ok, name)
		assert.Equal(t, "inner", db.Column(deep).Source)
		assert.True(t, table.HasColumn("mid"))
	}

	// a partial is expanded once even when several tables use it
	outer := db.Partial("outer")
	require.NotNil(t, outer)
	assert.Len(t, db.TableColumns(outer.ID), 2)
}

func TestInjectSelfReferenceIsSkipped(t *testing.T) {
	db := mustParse(t, "TablePartial a {\n  ~a\n  x int\n}\nTable t {\n  ~a\n}")

	table := db.LookupTable(core.DefaultSchema, "t")
	require.NotNil(t, table)
	assert.True(t, table.HasColumn("x"))
}

func TestInjectPartialRelationships(t *testing.T) {
	db := mustParse(t, `
Table users {
  id int
}
TablePartial owned {
  owner_id int [ref: > users.id]
}
Table posts {
  id int
  ~owned
}
Table comments {
  id int
  ~owned
}
Table drafts {
  owner_id int
  ~owned
}`)

	rels := db.Relationships()
	require.Len(t, rels, 2)
	assert.Equal(t, "posts.owner_id", db.ColumnName(rels[0].From[0]))
	assert.Equal(t, "comments.owner_id", db.ColumnName(rels[1].From[0]))
	for _, r := range rels {
		assert.Equal(t, "users.id", db.ColumnName(r.To[0]))
	}
}

func TestInjectErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		message string
	}{
		{
			name:    "unknown partial",
			src:     "Table t {\n  ~missing\n}",
			message: "TablePartial 'missing' is not defined",
		},
		{
			name:    "duplicate injection",
			src:     "TablePartial a {\n  x int\n}\nTable t {\n  ~a\n  ~a\n}",
			message: "Duplicate injection a",
		},
		{
			name:    "cycle",
			src:     "TablePartial a {\n  ~b\n  x int\n}\nTablePartial b {\n  ~a\n  y int\n}",
			message: "Circular injection a -> b -> a",
		},
		{
			name:    "alias on partial",
			src:     "TablePartial p as P {\n  x int\n}",
			message: "A TablePartial shouldn't have an alias",
		},
		{
			name:    "duplicate partial",
			src:     "TablePartial p {\n  x int\n}\nTablePartial p {\n  y int\n}",
			message: "TablePartial 'p' is already defined",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parser.Parse(tt.src)
			var perr *parser.ParseError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tt.message, perr.Message)
		})
	}
}
