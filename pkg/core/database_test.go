package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTable(t *testing.T, db *Database, schema, name string, columns ...string) *Table {
	t.Helper()
	s, err := db.GetOrCreateSchema(schema)
	require.NoError(t, err)
	tbl, err := db.AddTable(s.ID, name)
	require.NoError(t, err)
	for _, c := range columns {
		_, err := db.AddColumn(tbl.ID, c, "integer")
		require.NoError(t, err)
	}
	return tbl
}

func TestGetOrCreateSchema(t *testing.T) {
	db := NewDatabase()

	s1, err := db.GetOrCreateSchema(DefaultSchema)
	require.NoError(t, err)
	s2, err := db.GetOrCreateSchema(DefaultSchema)
	require.NoError(t, err)
	assert.Same(t, s1, s2)

	_, err = db.GetOrCreateSchema("")
	assert.ErrorIs(t, err, ErrEmptyName)

	_, err = db.GetOrCreateSchema("sales")
	require.NoError(t, err)
	require.Len(t, db.Schemas(), 2)
	assert.Equal(t, "sales", db.Schemas()[1].Name)
}

func TestAddTable(t *testing.T) {
	db := NewDatabase()
	tbl := newTable(t, db, DefaultSchema, "users")

	s := db.Schema(DefaultSchema)
	_, err := db.AddTable(s.ID, "users")
	assert.ErrorIs(t, err, ErrDuplicate)

	_, err = db.AddTable(s.ID, "")
	assert.ErrorIs(t, err, ErrEmptyName)

	other := newTable(t, db, "sales", "users")
	assert.NotEqual(t, tbl.ID, other.ID)
	assert.Equal(t, "users", db.TableName(tbl.ID))
	assert.Equal(t, "sales.users", db.TableName(other.ID))
	assert.Same(t, other, db.LookupTable("sales", "users"))
	assert.Nil(t, db.LookupTable("missing", "users"))
}

func TestAliases(t *testing.T) {
	db := NewDatabase()
	a := newTable(t, db, DefaultSchema, "a")
	b := newTable(t, db, DefaultSchema, "b")

	require.NoError(t, db.SetAlias(a.ID, "A"))
	assert.ErrorIs(t, db.SetAlias(b.ID, "A"), ErrDuplicate)
	assert.ErrorIs(t, db.SetAlias(b.ID, ""), ErrEmptyName)
	assert.True(t, db.HasAlias("A"))
	assert.Same(t, a, db.AliasTable("A"))
	assert.Equal(t, "A", a.Alias)
}

func TestAddColumn(t *testing.T) {
	db := NewDatabase()
	tbl := newTable(t, db, "s", "users", "id")

	_, err := db.AddColumn(tbl.ID, "id", "int")
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.Contains(t, err.Error(), "s.users.id")

	_, err = db.AddColumn(tbl.ID, "name", "")
	assert.ErrorIs(t, err, ErrEmptyType)

	_, err = db.AddColumn(tbl.ID, "", "int")
	assert.ErrorIs(t, err, ErrEmptyName)

	c, err := db.AddColumn(tbl.ID, "name", "varchar")
	require.NoError(t, err)
	assert.Equal(t, tbl.ID, c.Table)
	assert.Equal(t, "s.users.name", db.ColumnName(c.ID))

	cols := db.TableColumns(tbl.ID)
	require.Len(t, cols, 2)
	assert.Equal(t, "id", cols[0].Name)
	assert.Equal(t, "name", cols[1].Name)
}

func TestIndexColumns(t *testing.T) {
	db := NewDatabase()
	tbl := newTable(t, db, DefaultSchema, "t", "id")
	ix, err := db.AddIndex(tbl.ID)
	require.NoError(t, err)

	id, _ := tbl.ColumnID("id")
	require.NoError(t, ix.AddColumn(IndexColumn{Name: "id", Column: id}))
	require.NoError(t, ix.AddColumn(IndexColumn{Name: "id*2", Expression: true, Column: 7}))
	assert.ErrorIs(t, ix.AddColumn(IndexColumn{Name: "id"}), ErrDuplicate)

	require.Len(t, ix.Columns, 2)
	assert.Equal(t, NoColumn, ix.Columns[1].Column)
	assert.Len(t, db.TableIndexes(tbl.ID), 1)
}

func TestEnums(t *testing.T) {
	db := NewDatabase()
	s, _ := db.GetOrCreateSchema("s")
	e, err := db.AddEnum(s.ID, "status")
	require.NoError(t, err)

	_, err = db.AddEnum(s.ID, "status")
	assert.ErrorIs(t, err, ErrDuplicate)

	_, err = e.AddValue("active")
	require.NoError(t, err)
	_, err = e.AddValue("active")
	assert.ErrorIs(t, err, ErrDuplicate)
	_, err = e.AddValue("")
	assert.ErrorIs(t, err, ErrEmptyName)

	assert.Equal(t, "s.status", db.EnumName(e.ID))
	assert.Len(t, db.Enums(), 1)
}

func TestAddRelationship(t *testing.T) {
	db := NewDatabase()
	a := newTable(t, db, DefaultSchema, "a", "id", "b_id")
	b := newTable(t, db, DefaultSchema, "b", "id")
	aID, _ := a.ColumnID("id")
	aB, _ := a.ColumnID("b_id")
	bID, _ := b.ColumnID("id")

	tests := []struct {
		name string
		rel  *Relationship
		err  error
	}{
		{"valid", &Relationship{Kind: ManyToOne, From: []ColumnID{aB}, To: []ColumnID{bID}}, nil},
		{"duplicate", &Relationship{Kind: OneToOne, From: []ColumnID{aB}, To: []ColumnID{bID}}, ErrDuplicateRelationship},
		{"reversed is distinct", &Relationship{Kind: OneToMany, From: []ColumnID{bID}, To: []ColumnID{aB}}, nil},
		{"same endpoints", &Relationship{From: []ColumnID{aID}, To: []ColumnID{aID}}, ErrSameEndpoints},
		{"unequal arity", &Relationship{From: []ColumnID{aID, aB}, To: []ColumnID{bID}}, ErrArity},
		{"empty", &Relationship{}, ErrArity},
		{"unknown column", &Relationship{From: []ColumnID{aID}, To: []ColumnID{99}}, ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := db.AddRelationship(tt.rel)
			if tt.err == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.err)
			}
		})
	}
	assert.Len(t, db.Relationships(), 2)
}

func TestGroupsNotesProject(t *testing.T) {
	db := NewDatabase()
	tbl := newTable(t, db, DefaultSchema, "t")

	g, err := db.AddTableGroup("g")
	require.NoError(t, err)
	_, err = db.AddTableGroup("g")
	assert.ErrorIs(t, err, ErrDuplicate)
	require.NoError(t, g.AddTable(tbl.ID))
	assert.ErrorIs(t, g.AddTable(tbl.ID), ErrDuplicate)
	assert.Same(t, g, db.TableGroup("g"))

	n, err := db.AddNamedNote("n")
	require.NoError(t, err)
	_, err = db.AddNamedNote("n")
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.Same(t, n, db.NamedNote("n"))

	p := &Project{Name: "p"}
	p.SetProperty("database_type", "PostgreSQL")
	p.SetProperty("owner", "me")
	p.SetProperty("database_type", "MySQL")
	require.NoError(t, db.SetProject(p))
	assert.ErrorIs(t, db.SetProject(&Project{}), ErrDuplicate)
	assert.Equal(t, []Property{{"database_type", "MySQL"}, {"owner", "me"}}, p.Properties)
	v, ok := p.Property("owner")
	assert.True(t, ok)
	assert.Equal(t, "me", v)
}

func TestElementsOrder(t *testing.T) {
	db := NewDatabase()
	n, _ := db.AddNamedNote("n")
	g, _ := db.AddTableGroup("g")
	tbl := newTable(t, db, DefaultSchema, "t", "id", "x")
	partial, _ := db.AddPartial("p")
	s := db.Schema(DefaultSchema)
	e, _ := db.AddEnum(s.ID, "e")
	from, _ := tbl.ColumnID("x")
	to, _ := tbl.ColumnID("id")
	rel := &Relationship{From: []ColumnID{from}, To: []ColumnID{to}}
	require.NoError(t, db.AddRelationship(rel))
	p := &Project{}
	require.NoError(t, db.SetProject(p))

	got := db.Elements()
	want := []Element{p, e, partial, tbl, rel, g, n}
	require.Len(t, got, len(want))
	for i := range want {
		assert.Same(t, want[i], got[i], "element %d", i)
	}

	st := db.Stats()
	assert.Equal(t, 1, st.Tables)
	assert.Equal(t, 1, st.Partials)
	assert.Equal(t, 2, st.Columns)
}

func TestRelationKind(t *testing.T) {
	for _, sym := range []string{"<", ">", "-", "<>"} {
		k, ok := ParseRelationKind(sym)
		require.True(t, ok, sym)
		assert.Equal(t, sym, k.Symbol())
	}
	_, ok := ParseRelationKind("=")
	assert.False(t, ok)
	assert.Equal(t, "many-to-one", ManyToOne.String())
}

func TestNote(t *testing.T) {
	var n *Note
	assert.Equal(t, "", n.Value())
	assert.Equal(t, "x", NewNote("x").Value())
}
