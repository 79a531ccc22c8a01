package core

import (
	"fmt"
	"strconv"
	"strings"
)

// Database is the root of the entity graph and the arena owning every entity.
type Database struct {
	schemas      []*Schema
	schemaByName map[string]SchemaID
	tables       []*Table
	columns      []*Column
	indexes      []*Index
	enums        []*Enum

	partials      []TableID
	partialByName map[string]TableID
	aliases       map[string]TableID

	relationships []*Relationship
	relationKeys  map[string]struct{}

	groups      []*TableGroup
	groupByName map[string]int

	notes      []*NamedNote
	noteByName map[string]int

	project *Project
}

// NewDatabase creates an empty graph.
func NewDatabase() *Database {
	return &Database{
		schemaByName:  make(map[string]SchemaID),
		partialByName: make(map[string]TableID),
		aliases:       make(map[string]TableID),
		relationKeys:  make(map[string]struct{}),
		groupByName:   make(map[string]int),
		noteByName:    make(map[string]int),
	}
}

// ---------- Schemas ----------

// Schemas returns all schemas in creation order.
func (db *Database) Schemas() []*Schema { return db.schemas }

// Schema returns the schema with the given name, or nil.
func (db *Database) Schema(name string) *Schema {
	if id, ok := db.schemaByName[name]; ok {
		return db.schemas[id]
	}
	return nil
}

// SchemaByID returns the schema with the given ID.
func (db *Database) SchemaByID(id SchemaID) *Schema {
	if id < 0 || int(id) >= len(db.schemas) {
		return nil
	}
	return db.schemas[id]
}

// GetOrCreateSchema returns the named schema, creating it on first use.
func (db *Database) GetOrCreateSchema(name string) (*Schema, error) {
	if name == "" {
		return nil, fmt.Errorf("schema: %w", ErrEmptyName)
	}
	if s := db.Schema(name); s != nil {
		return s, nil
	}
	s := &Schema{
		ID:        SchemaID(len(db.schemas)),
		Name:      name,
		tableByID: make(map[string]TableID),
		enumByID:  make(map[string]EnumID),
	}
	db.schemas = append(db.schemas, s)
	db.schemaByName[name] = s.ID
	return s, nil
}

// ---------- Tables ----------

// Table returns the table with the given ID.
func (db *Database) Table(id TableID) *Table {
	if id < 0 || int(id) >= len(db.tables) {
		return nil
	}
	return db.tables[id]
}

// LookupTable finds a table by schema and name.
func (db *Database) LookupTable(schema, name string) *Table {
	s := db.Schema(schema)
	if s == nil {
		return nil
	}
	if id, ok := s.tableByID[name]; ok {
		return db.tables[id]
	}
	return nil
}

// AddTable creates a table in the schema. (schema, name) must be unique.
func (db *Database) AddTable(schema SchemaID, name string) (*Table, error) {
	s := db.SchemaByID(schema)
	if s == nil {
		return nil, fmt.Errorf("schema %d: %w", schema, ErrNotFound)
	}
	if name == "" {
		return nil, fmt.Errorf("table: %w", ErrEmptyName)
	}
	if _, ok := s.tableByID[name]; ok {
		return nil, fmt.Errorf("table %s: %w", QualifiedName(s.Name, name), ErrDuplicate)
	}
	t := db.newTable(schema, name)
	s.tables = append(s.tables, t.ID)
	s.tableByID[name] = t.ID
	return t, nil
}

// AddPartial creates a table partial. Partial names are unique database-wide.
func (db *Database) AddPartial(name string) (*Table, error) {
	if name == "" {
		return nil, fmt.Errorf("table partial: %w", ErrEmptyName)
	}
	if _, ok := db.partialByName[name]; ok {
		return nil, fmt.Errorf("table partial %s: %w", name, ErrDuplicate)
	}
	t := db.newTable(NoSchema, name)
	t.Partial = true
	db.partials = append(db.partials, t.ID)
	db.partialByName[name] = t.ID
	return t, nil
}

func (db *Database) newTable(schema SchemaID, name string) *Table {
	t := &Table{
		ID:            TableID(len(db.tables)),
		Schema:        schema,
		Name:          name,
		Settings:      make(map[TableSetting]string),
		settingSource: make(map[TableSetting]string),
		columnByName:  make(map[string]ColumnID),
	}
	db.tables = append(db.tables, t)
	return t
}

// Partials returns all table partials in declaration order.
func (db *Database) Partials() []*Table {
	out := make([]*Table, 0, len(db.partials))
	for _, id := range db.partials {
		out = append(out, db.tables[id])
	}
	return out
}

// Partial returns the partial with the given name, or nil.
func (db *Database) Partial(name string) *Table {
	if id, ok := db.partialByName[name]; ok {
		return db.tables[id]
	}
	return nil
}

// Tables returns all schema tables, schema by schema, in declaration order.
func (db *Database) Tables() []*Table {
	var out []*Table
	for _, s := range db.schemas {
		for _, id := range s.tables {
			out = append(out, db.tables[id])
		}
	}
	return out
}

// SetAlias assigns a database-wide unique alias to a table.
func (db *Database) SetAlias(id TableID, alias string) error {
	if alias == "" {
		return fmt.Errorf("alias: %w", ErrEmptyName)
	}
	if _, ok := db.aliases[alias]; ok {
		return fmt.Errorf("alias %s: %w", alias, ErrDuplicate)
	}
	t := db.Table(id)
	if t == nil {
		return fmt.Errorf("table %d: %w", id, ErrNotFound)
	}
	t.Alias = alias
	db.aliases[alias] = id
	return nil
}

// HasAlias reports whether an alias is taken.
func (db *Database) HasAlias(alias string) bool {
	_, ok := db.aliases[alias]
	return ok
}

// AliasTable returns the table carrying the alias, or nil.
func (db *Database) AliasTable(alias string) *Table {
	if id, ok := db.aliases[alias]; ok {
		return db.tables[id]
	}
	return nil
}

// TableName returns the display name of a table: "schema.name", with the
// default schema omitted. Partials display their bare name.
func (db *Database) TableName(id TableID) string {
	t := db.Table(id)
	if t == nil {
		return ""
	}
	if t.Partial {
		return t.Name
	}
	return QualifiedName(db.schemas[t.Schema].Name, t.Name)
}

// ---------- Columns ----------

// Column returns the column with the given ID.
func (db *Database) Column(id ColumnID) *Column {
	if id < 0 || int(id) >= len(db.columns) {
		return nil
	}
	return db.columns[id]
}

// AddColumn appends a local column to a table.
func (db *Database) AddColumn(table TableID, name, typ string) (*Column, error) {
	t := db.Table(table)
	if t == nil {
		return nil, fmt.Errorf("table %d: %w", table, ErrNotFound)
	}
	if name == "" {
		return nil, fmt.Errorf("column: %w", ErrEmptyName)
	}
	if typ == "" {
		return nil, fmt.Errorf("column %s: %w", name, ErrEmptyType)
	}
	if t.HasColumn(name) {
		return nil, fmt.Errorf("column %s.%s: %w", db.TableName(table), name, ErrDuplicate)
	}
	c := &Column{
		Table:    table,
		Name:     name,
		Type:     typ,
		Settings: make(map[ColumnSetting]string),
	}
	db.attachColumn(t, c)
	return c, nil
}

func (db *Database) attachColumn(t *Table, c *Column) {
	c.ID = ColumnID(len(db.columns))
	c.Table = t.ID
	db.columns = append(db.columns, c)
	t.columns = append(t.columns, c.ID)
	t.columnByName[c.Name] = c.ID
}

// TableColumns returns the effective columns of a table.
func (db *Database) TableColumns(table TableID) []*Column {
	t := db.Table(table)
	if t == nil {
		return nil
	}
	out := make([]*Column, 0, len(t.columns))
	for _, id := range t.columns {
		out = append(out, db.columns[id])
	}
	return out
}

// ColumnName returns "schema.table.column" with the default schema omitted.
func (db *Database) ColumnName(id ColumnID) string {
	c := db.Column(id)
	if c == nil {
		return ""
	}
	return db.TableName(c.Table) + "." + c.Name
}

// ---------- Indexes ----------

// Index returns the index with the given ID.
func (db *Database) Index(id IndexID) *Index {
	if id < 0 || int(id) >= len(db.indexes) {
		return nil
	}
	return db.indexes[id]
}

// AddIndex appends an empty local index to a table.
func (db *Database) AddIndex(table TableID) (*Index, error) {
	t := db.Table(table)
	if t == nil {
		return nil, fmt.Errorf("table %d: %w", table, ErrNotFound)
	}
	ix := &Index{Settings: make(map[IndexSetting]string)}
	db.attachIndex(t, ix)
	return ix, nil
}

func (db *Database) attachIndex(t *Table, ix *Index) {
	ix.ID = IndexID(len(db.indexes))
	ix.Table = t.ID
	db.indexes = append(db.indexes, ix)
	t.indexes = append(t.indexes, ix.ID)
}

// TableIndexes returns the effective indexes of a table.
func (db *Database) TableIndexes(table TableID) []*Index {
	t := db.Table(table)
	if t == nil {
		return nil
	}
	out := make([]*Index, 0, len(t.indexes))
	for _, id := range t.indexes {
		out = append(out, db.indexes[id])
	}
	return out
}

// ---------- Enums ----------

// Enum returns the enum with the given ID.
func (db *Database) Enum(id EnumID) *Enum {
	if id < 0 || int(id) >= len(db.enums) {
		return nil
	}
	return db.enums[id]
}

// AddEnum creates an enum in the schema. (schema, name) must be unique.
func (db *Database) AddEnum(schema SchemaID, name string) (*Enum, error) {
	s := db.SchemaByID(schema)
	if s == nil {
		return nil, fmt.Errorf("schema %d: %w", schema, ErrNotFound)
	}
	if name == "" {
		return nil, fmt.Errorf("enum: %w", ErrEmptyName)
	}
	if _, ok := s.enumByID[name]; ok {
		return nil, fmt.Errorf("enum %s: %w", QualifiedName(s.Name, name), ErrDuplicate)
	}
	e := &Enum{ID: EnumID(len(db.enums)), Schema: schema, Name: name}
	db.enums = append(db.enums, e)
	s.enums = append(s.enums, e.ID)
	s.enumByID[name] = e.ID
	return e, nil
}

// Enums returns all enums, schema by schema, in declaration order.
func (db *Database) Enums() []*Enum {
	var out []*Enum
	for _, s := range db.schemas {
		for _, id := range s.enums {
			out = append(out, db.enums[id])
		}
	}
	return out
}

// EnumName returns the display name of an enum.
func (db *Database) EnumName(id EnumID) string {
	e := db.Enum(id)
	if e == nil {
		return ""
	}
	return QualifiedName(db.schemas[e.Schema].Name, e.Name)
}

// ---------- Relationships ----------

// Relationships returns all relationships in creation order.
func (db *Database) Relationships() []*Relationship { return db.relationships }

// AddRelationship validates and inserts a relationship. Identity is the
// ordered pair (From, To): a reversed relationship is a different one.
func (db *Database) AddRelationship(r *Relationship) error {
	if len(r.From) == 0 || len(r.To) == 0 || len(r.From) != len(r.To) {
		return ErrArity
	}
	key := relationKey(r.From, r.To)
	if relationKey(r.From, nil) == relationKey(r.To, nil) {
		return ErrSameEndpoints
	}
	if _, ok := db.relationKeys[key]; ok {
		return ErrDuplicateRelationship
	}
	for _, ids := range [][]ColumnID{r.From, r.To} {
		for _, id := range ids {
			if db.Column(id) == nil {
				return fmt.Errorf("column %d: %w", id, ErrNotFound)
			}
		}
	}
	if r.Settings == nil {
		r.Settings = make(map[RelationshipSetting]string)
	}
	db.relationKeys[key] = struct{}{}
	db.relationships = append(db.relationships, r)
	return nil
}

func relationKey(from, to []ColumnID) string {
	var b strings.Builder
	for _, id := range from {
		b.WriteString(strconv.Itoa(int(id)))
		b.WriteByte(',')
	}
	b.WriteByte('|')
	for _, id := range to {
		b.WriteString(strconv.Itoa(int(id)))
		b.WriteByte(',')
	}
	return b.String()
}

// ---------- Table groups, notes, project ----------

// TableGroups returns all table groups in declaration order.
func (db *Database) TableGroups() []*TableGroup { return db.groups }

// TableGroup returns the group with the given name, or nil.
func (db *Database) TableGroup(name string) *TableGroup {
	if i, ok := db.groupByName[name]; ok {
		return db.groups[i]
	}
	return nil
}

// AddTableGroup creates a table group. Group names are unique.
func (db *Database) AddTableGroup(name string) (*TableGroup, error) {
	if name == "" {
		return nil, fmt.Errorf("table group: %w", ErrEmptyName)
	}
	if _, ok := db.groupByName[name]; ok {
		return nil, fmt.Errorf("table group %s: %w", name, ErrDuplicate)
	}
	g := &TableGroup{Name: name}
	db.groupByName[name] = len(db.groups)
	db.groups = append(db.groups, g)
	return g, nil
}

// NamedNotes returns all named notes in declaration order.
func (db *Database) NamedNotes() []*NamedNote { return db.notes }

// NamedNote returns the note with the given name, or nil.
func (db *Database) NamedNote(name string) *NamedNote {
	if i, ok := db.noteByName[name]; ok {
		return db.notes[i]
	}
	return nil
}

// AddNamedNote creates a named note. Names are unique.
func (db *Database) AddNamedNote(name string) (*NamedNote, error) {
	if name == "" {
		return nil, fmt.Errorf("named note: %w", ErrEmptyName)
	}
	if _, ok := db.noteByName[name]; ok {
		return nil, fmt.Errorf("named note %s: %w", name, ErrDuplicate)
	}
	n := &NamedNote{Name: name}
	db.noteByName[name] = len(db.notes)
	db.notes = append(db.notes, n)
	return n, nil
}

// Project returns the project, or nil if none was declared.
func (db *Database) Project() *Project { return db.project }

// SetProject sets the project. At most one project may exist.
func (db *Database) SetProject(p *Project) error {
	if db.project != nil {
		return fmt.Errorf("project: %w", ErrDuplicate)
	}
	db.project = p
	return nil
}

// ---------- Names ----------

// QualifiedName joins schema and name, omitting the default schema.
func QualifiedName(schema, name string) string {
	if schema == "" || schema == DefaultSchema {
		return name
	}
	return schema + "." + name
}

// Stats counts the entities of a graph.
type Stats struct {
	Schemas       int
	Tables        int
	Partials      int
	Columns       int
	Indexes       int
	Enums         int
	Relationships int
	TableGroups   int
	NamedNotes    int
}

// Stats returns entity counts. Columns and indexes count effective ones on
// schema tables only.
func (db *Database) Stats() Stats {
	st := Stats{
		Schemas:       len(db.schemas),
		Partials:      len(db.partials),
		Enums:         len(db.enums),
		Relationships: len(db.relationships),
		TableGroups:   len(db.groups),
		NamedNotes:    len(db.notes),
	}
	for _, t := range db.Tables() {
		st.Tables++
		st.Columns += len(t.columns)
		st.Indexes += len(t.indexes)
	}
	return st
}
