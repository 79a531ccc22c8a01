package parser_test

import (
	"context"
	"errors"
	"testing"
	"testing/iotest"

	"github.com/leapstack-labs/leapdbml/internal/testutil"
	"github.com/leapstack-labs/leapdbml/pkg/core"
	"github.com/leapstack-labs/leapdbml/pkg/parser"
	"github.com/leapstack-labs/leapdbml/pkg/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, src string) *core.Database {
	t.Helper()
	db, err := parser.New(parser.WithLogger(testutil.NewTestLogger(t))).ParseString(context.Background(), src)
	require.NoError(t, err)
	return db
}

func columnByName(t *testing.T, db *core.Database, table *core.Table, name string) *core.Column {
	t.Helper()
	id, ok := table.ColumnID(name)
	require.True(t, ok, "column %s", name)
	return db.Column(id)
}

// ---------- Project ----------

func TestParseProject(t *testing.T) {
	db := mustParse(t, `
Project shop {
  database_type: 'PostgreSQL'
  Note: 'Main store'
}`)

	p := db.Project()
	require.NotNil(t, p)
	assert.Equal(t, "shop", p.Name)
	v, ok := p.Property("database_type")
	assert.True(t, ok)
	assert.Equal(t, "PostgreSQL", v)
	assert.Equal(t, "Main store", p.Note.Value())
}

func TestParseProjectWithoutName(t *testing.T) {
	db := mustParse(t, "Project {\n  Note {\n    '''\n    multi\n    '''\n  }\n}")
	require.NotNil(t, db.Project())
	assert.Empty(t, db.Project().Name)
	assert.Equal(t, "multi", db.Project().Note.Value())
}

// ---------- Tables ----------

func TestParseTable(t *testing.T) {
	db := mustParse(t, `
Table s.users as U [headercolor: #3498DB, note: 'head note'] {
  id integer [primary key, increment, note: 'replace text here']
  username varchar(255) [not null, unique, default: null]
  weight "bigint unsigned" [default: 1.23]
  price decimal(10, 2) [default: -1]
  active bool [default: true, null]
  created_at timestamp [default: ` + "`now()`" + `]
  status varchar [default: 'new', pk]
  Note: 'Stores user data'
}`)

	table := db.LookupTable("s", "users")
	require.NotNil(t, table)
	assert.Equal(t, "U", table.Alias)
	assert.Equal(t, "#3498DB", table.Settings[core.TableHeaderColor])
	assert.Equal(t, "Stores user data", table.Note.Value())
	assert.Equal(t, table, db.AliasTable("U"))
	assert.Equal(t, "s.users", db.TableName(table.ID))

	id := columnByName(t, db, table, "id")
	assert.Equal(t, "integer", id.Type)
	assert.True(t, id.Has(core.ColumnPrimaryKey))
	assert.True(t, id.Has(core.ColumnIncrement))
	assert.Equal(t, "replace text here", id.Note.Value())

	username := columnByName(t, db, table, "username")
	assert.Equal(t, "varchar(255)", username.Type)
	assert.True(t, username.Has(core.ColumnNotNull))
	assert.True(t, username.Has(core.ColumnUnique))
	assert.Equal(t, "null", username.Settings[core.ColumnDefault])
	assert.Equal(t, core.ValueBoolean, username.DefaultKind)

	weight := columnByName(t, db, table, "weight")
	assert.Equal(t, "bigint unsigned", weight.Type)
	assert.Equal(t, "1.23", weight.Settings[core.ColumnDefault])
	assert.Equal(t, core.ValueNumber, weight.DefaultKind)

	price := columnByName(t, db, table, "price")
	assert.Equal(t, "decimal(10,2)", price.Type)
	assert.Equal(t, "-1", price.Settings[core.ColumnDefault])

	active := columnByName(t, db, table, "active")
	assert.Equal(t, "true", active.Settings[core.ColumnDefault])
	assert.False(t, active.Has(core.ColumnNotNull))

	created := columnByName(t, db, table, "created_at")
	assert.Equal(t, "now()", created.Settings[core.ColumnDefault])
	assert.Equal(t, core.ValueExpression, created.DefaultKind)

	status := columnByName(t, db, table, "status")
	assert.Equal(t, "new", status.Settings[core.ColumnDefault])
	assert.Equal(t, core.ValueString, status.DefaultKind)
	assert.True(t, status.Has(core.ColumnPrimaryKey))
}

func TestParseKeywordsAsNames(t *testing.T) {
	db := mustParse(t, "Table table {\n  key int\n  type varchar\n  name text\n}")

	table := db.LookupTable(core.DefaultSchema, "table")
	require.NotNil(t, table)
	var names []string
	for _, c := range db.TableColumns(table.ID) {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"key", "type", "name"}, names)
}

func TestParseTableOnOneLine(t *testing.T) {
	db := mustParse(t, "Table t { not integer }")

	table := db.LookupTable(core.DefaultSchema, "t")
	require.NotNil(t, table)
	assert.Equal(t, "integer", columnByName(t, db, table, "not").Type)

	db = mustParse(t, "Table t { id varchar(10) }")
	table = db.LookupTable(core.DefaultSchema, "t")
	require.NotNil(t, table)
	assert.Equal(t, "varchar(10)", columnByName(t, db, table, "id").Type)
}

func TestParseDigitOnlyNames(t *testing.T) {
	db := mustParse(t, "Table 2024.events {\n  id int\n}\nTable 1 {\n  id int\n}\nRef: 2024.events.id > 1.id")

	events := db.LookupTable("2024", "events")
	require.NotNil(t, events)
	require.NotNil(t, db.LookupTable(core.DefaultSchema, "1"))

	rels := db.Relationships()
	require.Len(t, rels, 1)
	assert.Equal(t, "2024.events.id", db.ColumnName(rels[0].From[0]))
	assert.Equal(t, "1.id", db.ColumnName(rels[0].To[0]))
}

func TestParseIndexes(t *testing.T) {
	db := mustParse(t, `
Table bookings {
  id integer
  country varchar
  booking_date date
  created_at timestamp

  indexes {
    (id, country) [pk]
    created_at [name: 'created_at_index', note: 'Date']
    booking_date
    (country, booking_date) [unique]
    booking_date [type: hash]
    ` + "`id*2`" + `
    (` + "`id*3`" + `, id)
  }
}`)

	table := db.LookupTable(core.DefaultSchema, "bookings")
	require.NotNil(t, table)
	indexes := db.TableIndexes(table.ID)
	require.Len(t, indexes, 7)

	assert.Len(t, indexes[0].Columns, 2)
	assert.Contains(t, indexes[0].Settings, core.IndexPK)

	assert.Equal(t, "created_at_index", indexes[1].Settings[core.IndexName])
	assert.Equal(t, "Date", indexes[1].Note.Value())

	assert.Contains(t, indexes[3].Settings, core.IndexUnique)
	assert.Equal(t, "hash", indexes[4].Settings[core.IndexType])

	expr := indexes[5].Columns[0]
	assert.True(t, expr.Expression)
	assert.Equal(t, "id*2", expr.Name)
	assert.Equal(t, core.NoColumn, expr.Column)

	mixed := indexes[6].Columns
	require.Len(t, mixed, 2)
	assert.True(t, mixed[0].Expression)
	idCol, _ := table.ColumnID("id")
	assert.Equal(t, idCol, mixed[1].Column)
}

func TestParseIndexesOnOneLine(t *testing.T) {
	db := mustParse(t, "Table t {\n  id int\n  indexes { id }\n  Note: 'after'\n}\nTable u {\n  id int\n}")

	table := db.LookupTable(core.DefaultSchema, "t")
	require.NotNil(t, table)
	assert.Len(t, db.TableIndexes(table.ID), 1)
	assert.Equal(t, "after", table.Note.Value())
	assert.NotNil(t, db.LookupTable(core.DefaultSchema, "u"))
}

// ---------- Enums, groups, notes ----------

func TestParseEnum(t *testing.T) {
	db := mustParse(t, `
enum s.job_status {
  created [note: 'Waiting to be processed']
  running
  "done and dusted"
}`)

	enums := db.Enums()
	require.Len(t, enums, 1)
	e := enums[0]
	assert.Equal(t, "s.job_status", db.EnumName(e.ID))
	require.Len(t, e.Values, 3)
	assert.Equal(t, "created", e.Values[0].Name)
	assert.Equal(t, "Waiting to be processed", e.Values[0].Note.Value())
	assert.Equal(t, "done and dusted", e.Values[2].Name)
}

func TestParseTableGroup(t *testing.T) {
	db := mustParse(t, `
Table a as A {
  id int
}
Table b {
  id int
}
TableGroup g [color: #abc] {
  A
  b
  Note: 'group note'
}
TableGroup empty {
}`)

	g := db.TableGroup("g")
	require.NotNil(t, g)
	assert.Equal(t, "#abc", g.Color)
	assert.Equal(t, "group note", g.Note.Value())
	require.Len(t, g.Tables, 2)
	assert.Equal(t, "a", db.Table(g.Tables[0]).Name)
	assert.Equal(t, "b", db.Table(g.Tables[1]).Name)

	require.NotNil(t, db.TableGroup("empty"))
	assert.Empty(t, db.TableGroup("empty").Tables)
}

func TestParseNamedNote(t *testing.T) {
	db := mustParse(t, "Note intro [headercolor: #fff] {\n  'hello'\n}")

	n := db.NamedNote("intro")
	require.NotNil(t, n)
	assert.Equal(t, "#fff", n.HeaderColor)
	assert.Equal(t, "hello", n.Value)
}

// ---------- Relationships ----------

func TestParseRelationships(t *testing.T) {
	db := mustParse(t, `
Table users {
  id int [pk]
  org_id int
  region varchar
}
Table orgs {
  id int
  region varchar
}
Table posts {
  id int
  user_id int [ref: > users.id]
}
Ref: posts.id - users.id
Ref fk_org {
  users.(org_id, region) > orgs.(id, region) [delete: cascade, update: set null, color: #aabbcc]
}
Ref: users.id < posts.user_id
`)

	rels := db.Relationships()
	require.Len(t, rels, 4)

	assert.Equal(t, core.ManyToOne, rels[0].Kind)
	assert.Equal(t, "posts.user_id", db.ColumnName(rels[0].From[0]))
	assert.Equal(t, "users.id", db.ColumnName(rels[0].To[0]))

	assert.Equal(t, core.OneToOne, rels[1].Kind)

	assert.Equal(t, "fk_org", rels[2].Name)
	assert.Len(t, rels[2].From, 2)
	assert.Equal(t, "cascade", rels[2].Settings[core.RelationshipDelete])
	assert.Equal(t, "set null", rels[2].Settings[core.RelationshipUpdate])
	assert.Equal(t, "#aabbcc", rels[2].Settings[core.RelationshipColor])

	// the reverse of an existing relationship is a different relationship
	assert.Equal(t, core.OneToMany, rels[3].Kind)
}

func TestParseRelationshipSchemasAndAliases(t *testing.T) {
	db := mustParse(t, `
Table auth.accounts as acc {
  id int
}
Table profiles {
  account_id int
  backup_id int
}
Ref: profiles.account_id > auth.accounts.id
Ref: acc.id - profiles.account_id
Ref: profiles.backup_id <> auth.accounts.(id)
`)

	rels := db.Relationships()
	require.Len(t, rels, 3)
	assert.Equal(t, "auth.accounts.id", db.ColumnName(rels[0].To[0]))
	assert.Equal(t, "auth.accounts.id", db.ColumnName(rels[1].From[0]))
	assert.Equal(t, core.ManyToMany, rels[2].Kind)
}

// ---------- Errors ----------

func TestParseErrors(t *testing.T) {
	const users = "Table users {\n  id int\n}\n"
	tests := []struct {
		name    string
		src     string
		message string
		pos     token.Position
	}{
		{
			name:    "duplicate project",
			src:     "Project a {\n}\nProject b {\n}",
			message: "Project is already defined",
			pos:     token.Position{Line: 3, Column: 7},
		},
		{
			name:    "duplicate table",
			src:     users + users,
			message: "Table 'users' is already defined",
			pos:     token.Position{Line: 4, Column: 11},
		},
		{
			name:    "duplicate table on one line",
			src:     "Table t { id integer } Table t { id integer }",
			message: "Table 't' is already defined",
		},
		{
			name:    "empty partial name",
			src:     "TablePartial \"\" {\n  id int\n}",
			message: "table partial: name must not be empty",
		},
		{
			name:    "empty named note name",
			src:     "Note \"\" {\n  'a'\n}",
			message: "named note: name must not be empty",
		},
		{
			name:    "duplicate alias",
			src:     "Table a as A {\n  id int\n}\nTable b as A {\n  id int\n}",
			message: "Alias 'A' is already defined",
			pos:     token.Position{Line: 4, Column: 12},
		},
		{
			name:    "duplicate column",
			src:     "Table t {\n  id int\n  id int\n}",
			message: "Column 't.id' is already defined",
			pos:     token.Position{Line: 3, Column: 4},
		},
		{
			name:    "index on missing column",
			src:     "Table t {\n  id int\n  indexes {\n    foo\n  }\n}",
			message: "Column 'foo' is not defined",
			pos:     token.Position{Line: 4, Column: 7},
		},
		{
			name:    "repeated index column",
			src:     "Table t {\n  id int\n  indexes {\n    (id, id)\n  }\n}",
			message: "Column 'id' is already defined",
		},
		{
			name:    "duplicate enum",
			src:     "enum e {\n  a\n}\nenum e {\n  b\n}",
			message: "Enum 'e' is already defined",
		},
		{
			name:    "duplicate enum value",
			src:     "enum e {\n  a\n  a\n}",
			message: "Enum value 'e.a' is already defined",
			pos:     token.Position{Line: 3, Column: 3},
		},
		{
			name:    "duplicate group",
			src:     users + "TableGroup g {\n  users\n}\nTableGroup g {\n  users\n}",
			message: "TableGroup 'g' is already defined",
		},
		{
			name:    "group with unknown table",
			src:     "TableGroup g {\n  nope\n}",
			message: "Table 'nope' is not defined",
		},
		{
			name:    "group with repeated table",
			src:     users + "TableGroup g {\n  users\n  users\n}",
			message: "Table 'users' is already defined",
		},
		{
			name:    "duplicate named note",
			src:     "Note n {\n  'a'\n}\nNote n {\n  'b'\n}",
			message: "NamedNote 'n' is already defined",
		},
		{
			name:    "same endpoints",
			src:     users + "Ref: users.id > users.id",
			message: "Two endpoints are the same",
			pos:     token.Position{Line: 4, Column: 24},
		},
		{
			name:    "unequal endpoints",
			src:     users + "Ref: users.(id, x) > users.id",
			message: "Two endpoints have unequal number of fields",
		},
		{
			name:    "unknown table",
			src:     users + "Ref: users.id > orders.id",
			message: "Table 'orders' is not defined",
		},
		{
			name:    "unknown source reported first",
			src:     users + "Ref: orders.user_id > items.id",
			message: "Table 'orders' is not defined",
		},
		{
			name:    "unknown schema",
			src:     users + "Ref: users.id > shop.orders.id",
			message: "Schema 'shop' is not defined",
		},
		{
			name:    "unknown column",
			src:     users + "Table orders {\n  id int\n}\nRef: orders.user_id > users.id",
			message: "Column 'orders.user_id' is not defined",
		},
		{
			name:    "duplicate reference",
			src:     users + "Table orders {\n  user_id int [ref: > users.id]\n}\nRef: orders.user_id > users.id",
			message: "Reference with the same endpoints already exists",
		},
		{
			name:    "syntax error",
			src:     "Table t {\n}",
			message: "unexpected token 'RBRACE', expected LITERAL, DSTRING, TILDE",
		},
		{
			name:    "colon after linebreak in ref",
			src:     "Ref name\n: a.b > c.d",
			message: "unexpected token 'COLON', expected LBRACE",
		},
		{
			name:    "illegal character",
			src:     "Table t {\n  id int &\n}",
			message: "unexpected token 'ILLEGAL'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parser.Parse(tt.src)
			var perr *parser.ParseError
			require.ErrorAs(t, err, &perr)
			assert.Contains(t, perr.Message, tt.message)
			if tt.pos.IsValid() {
				assert.Equal(t, tt.pos, perr.Pos)
			}
		})
	}
}

func TestParseErrorFormat(t *testing.T) {
	_, err := parser.Parse("Project a {\n}\nProject b {\n}")
	require.Error(t, err)
	assert.Equal(t, "parse error at line 3, column 7: Project is already defined", err.Error())
}

func TestParseCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := parser.New().ParseString(ctx, "Table t {\n  id int\n}")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseReadError(t *testing.T) {
	boom := errors.New("boom")
	_, err := parser.New().Parse(context.Background(), iotest.ErrReader(boom))
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "read input")
}

func TestParserIsReusable(t *testing.T) {
	p := parser.New()
	src := "Table t {\n  id int\n}"

	first, err := p.ParseString(context.Background(), src)
	require.NoError(t, err)
	second, err := p.ParseString(context.Background(), src)
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.Equal(t, first.Stats(), second.Stats())
}
