package core

// Typed arena indices. They are only meaningful for the Database that issued them.
type (
	SchemaID int
	TableID  int
	ColumnID int
	IndexID  int
	EnumID   int
)

// Sentinel IDs.
const (
	NoSchema SchemaID = -1 // owner of table partials
	NoColumn ColumnID = -1 // index entry that is an expression
)

// DefaultSchema is used when a name carries no schema qualifier.
const DefaultSchema = "public"

// Note is an immutable note text. A nil *Note means "no note".
type Note struct {
	value string
}

// NewNote wraps a note text.
func NewNote(value string) *Note {
	return &Note{value: value}
}

// Value returns the note text.
func (n *Note) Value() string {
	if n == nil {
		return ""
	}
	return n.value
}

// Schema is a named grouping of tables and enums.
type Schema struct {
	ID   SchemaID
	Name string

	tables    []TableID
	tableByID map[string]TableID
	enums     []EnumID
	enumByID  map[string]EnumID
}

// Tables returns the schema's tables in declaration order.
func (s *Schema) Tables() []TableID { return s.tables }

// Enums returns the schema's enums in declaration order.
func (s *Schema) Enums() []EnumID { return s.enums }

// Table is a table or, when Partial is set, a reusable table partial.
//
// Columns, indexes, settings and the note hold the effective result after
// injection. Elements copied from a partial carry the partial's name as
// their source; locally declared elements have an empty source.
type Table struct {
	ID      TableID
	Schema  SchemaID
	Name    string
	Alias   string
	Partial bool

	Settings   map[TableSetting]string
	Note       *Note
	NoteSource string

	// Refs are the partial names injected with ~name, in source order.
	Refs []string

	settingSource map[TableSetting]string
	columns       []ColumnID
	columnByName  map[string]ColumnID
	indexes       []IndexID
}

// Columns returns the effective columns in order: local first, then injected.
func (t *Table) Columns() []ColumnID { return t.columns }

// Indexes returns the effective indexes in order.
func (t *Table) Indexes() []IndexID { return t.indexes }

// ColumnID looks up a column of this table by name.
func (t *Table) ColumnID(name string) (ColumnID, bool) {
	id, ok := t.columnByName[name]
	return id, ok
}

// HasColumn reports whether the table has an effective column with that name.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.columnByName[name]
	return ok
}

// SettingSource returns the partial a setting was inherited from, or "".
func (t *Table) SettingSource(s TableSetting) string {
	return t.settingSource[s]
}

// Column belongs to exactly one table.
type Column struct {
	ID          ColumnID
	Table       TableID
	Name        string
	Type        string
	Settings    map[ColumnSetting]string
	DefaultKind ValueKind
	Note        *Note
	Source      string
}

// Has reports whether the setting is present.
func (c *Column) Has(s ColumnSetting) bool {
	_, ok := c.Settings[s]
	return ok
}

// IndexColumn is one entry of an index: a column reference or an expression.
type IndexColumn struct {
	Name       string
	Expression bool
	Column     ColumnID // NoColumn for expressions
}

// Index belongs to exactly one table.
type Index struct {
	ID       IndexID
	Table    TableID
	Columns  []IndexColumn
	Settings map[IndexSetting]string
	Note     *Note
	Source   string
}

// AddColumn appends an entry. The same name may not appear twice.
func (ix *Index) AddColumn(entry IndexColumn) error {
	if entry.Name == "" {
		return ErrEmptyName
	}
	for _, c := range ix.Columns {
		if c.Name == entry.Name {
			return ErrDuplicate
		}
	}
	if entry.Expression {
		entry.Column = NoColumn
	}
	ix.Columns = append(ix.Columns, entry)
	return nil
}

// Enum is a named list of values in a schema.
type Enum struct {
	ID     EnumID
	Schema SchemaID
	Name   string
	Values []*EnumValue
}

// EnumValue is one value of an enum.
type EnumValue struct {
	Name string
	Note *Note
}

// AddValue appends a value; names are unique within the enum.
func (e *Enum) AddValue(name string) (*EnumValue, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	for _, v := range e.Values {
		if v.Name == name {
			return nil, ErrDuplicate
		}
	}
	v := &EnumValue{Name: name}
	e.Values = append(e.Values, v)
	return v, nil
}

// Relationship links two equal-arity column lists.
type Relationship struct {
	Name     string
	Kind     RelationKind
	From     []ColumnID
	To       []ColumnID
	Settings map[RelationshipSetting]string
}

// TableGroup is a named collection of tables.
type TableGroup struct {
	Name   string
	Tables []TableID
	Color  string
	Note   *Note
}

// AddTable appends a table; a table may appear once per group.
func (g *TableGroup) AddTable(id TableID) error {
	for _, t := range g.Tables {
		if t == id {
			return ErrDuplicate
		}
	}
	g.Tables = append(g.Tables, id)
	return nil
}

// Property is one key/value entry of a project.
type Property struct {
	Key   string
	Value string
}

// Project is the optional project block.
type Project struct {
	Name       string
	Properties []Property
	Note       *Note
}

// SetProperty sets a property, keeping the position of an existing key.
func (p *Project) SetProperty(key, value string) {
	for i := range p.Properties {
		if p.Properties[i].Key == key {
			p.Properties[i].Value = value
			return
		}
	}
	p.Properties = append(p.Properties, Property{Key: key, Value: value})
}

// Property returns the value of a project property.
func (p *Project) Property(key string) (string, bool) {
	for _, prop := range p.Properties {
		if prop.Key == key {
			return prop.Value, true
		}
	}
	return "", false
}

// NamedNote is a standalone note declared with its own name.
type NamedNote struct {
	Name        string
	HeaderColor string
	Value       string
}
