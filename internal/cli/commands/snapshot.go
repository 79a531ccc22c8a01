package commands

import (
	"github.com/leapstack-labs/leapdbml/pkg/core"
)

// Snapshot is a serializable view of a compiled schema.
type Snapshot struct {
	Project       *ProjectSnapshot       `json:"project,omitempty" yaml:"project,omitempty"`
	Enums         []EnumSnapshot         `json:"enums" yaml:"enums"`
	Partials      []TableSnapshot        `json:"partials" yaml:"partials"`
	Tables        []TableSnapshot        `json:"tables" yaml:"tables"`
	Relationships []RelationshipSnapshot `json:"relationships" yaml:"relationships"`
	TableGroups   []GroupSnapshot        `json:"table_groups" yaml:"table_groups"`
	Notes         []NoteSnapshot         `json:"notes" yaml:"notes"`
}

// ProjectSnapshot describes the project block.
type ProjectSnapshot struct {
	Name       string             `json:"name,omitempty" yaml:"name,omitempty"`
	Properties []PropertySnapshot `json:"properties,omitempty" yaml:"properties,omitempty"`
	Note       string             `json:"note,omitempty" yaml:"note,omitempty"`
}

// PropertySnapshot is a project property.
type PropertySnapshot struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// EnumSnapshot describes an enum.
type EnumSnapshot struct {
	Schema string              `json:"schema" yaml:"schema"`
	Name   string              `json:"name" yaml:"name"`
	Values []EnumValueSnapshot `json:"values" yaml:"values"`
}

// EnumValueSnapshot is one enum value.
type EnumValueSnapshot struct {
	Name string `json:"name" yaml:"name"`
	Note string `json:"note,omitempty" yaml:"note,omitempty"`
}

// TableSnapshot describes a table or partial with its effective columns.
type TableSnapshot struct {
	Schema   string            `json:"schema,omitempty" yaml:"schema,omitempty"`
	Name     string            `json:"name" yaml:"name"`
	Alias    string            `json:"alias,omitempty" yaml:"alias,omitempty"`
	Partials []string          `json:"partials,omitempty" yaml:"partials,omitempty"`
	Settings map[string]string `json:"settings,omitempty" yaml:"settings,omitempty"`
	Note     string            `json:"note,omitempty" yaml:"note,omitempty"`
	Columns  []ColumnSnapshot  `json:"columns" yaml:"columns"`
	Indexes  []IndexSnapshot   `json:"indexes,omitempty" yaml:"indexes,omitempty"`
}

// ColumnSnapshot describes a column. Source names the partial it was
// injected from.
type ColumnSnapshot struct {
	Name     string            `json:"name" yaml:"name"`
	Type     string            `json:"type" yaml:"type"`
	Settings map[string]string `json:"settings,omitempty" yaml:"settings,omitempty"`
	Note     string            `json:"note,omitempty" yaml:"note,omitempty"`
	Source   string            `json:"source,omitempty" yaml:"source,omitempty"`
}

// IndexSnapshot describes an index. Expressions keep their backticks.
type IndexSnapshot struct {
	Columns  []string          `json:"columns" yaml:"columns"`
	Settings map[string]string `json:"settings,omitempty" yaml:"settings,omitempty"`
	Note     string            `json:"note,omitempty" yaml:"note,omitempty"`
	Source   string            `json:"source,omitempty" yaml:"source,omitempty"`
}

// RelationshipSnapshot describes a relationship.
type RelationshipSnapshot struct {
	Name     string            `json:"name,omitempty" yaml:"name,omitempty"`
	From     []string          `json:"from" yaml:"from"`
	Kind     string            `json:"kind" yaml:"kind"`
	To       []string          `json:"to" yaml:"to"`
	Settings map[string]string `json:"settings,omitempty" yaml:"settings,omitempty"`
}

// GroupSnapshot describes a table group.
type GroupSnapshot struct {
	Name   string   `json:"name" yaml:"name"`
	Tables []string `json:"tables" yaml:"tables"`
	Color  string   `json:"color,omitempty" yaml:"color,omitempty"`
	Note   string   `json:"note,omitempty" yaml:"note,omitempty"`
}

// NoteSnapshot describes a named note.
type NoteSnapshot struct {
	Name        string `json:"name" yaml:"name"`
	HeaderColor string `json:"headercolor,omitempty" yaml:"headercolor,omitempty"`
	Value       string `json:"value" yaml:"value"`
}

// NewSnapshot builds a snapshot of db.
func NewSnapshot(db *core.Database) *Snapshot {
	s := &Snapshot{
		Enums:         []EnumSnapshot{},
		Partials:      []TableSnapshot{},
		Tables:        []TableSnapshot{},
		Relationships: []RelationshipSnapshot{},
		TableGroups:   []GroupSnapshot{},
		Notes:         []NoteSnapshot{},
	}

	if p := db.Project(); p != nil {
		ps := &ProjectSnapshot{Name: p.Name, Note: p.Note.Value()}
		for _, prop := range p.Properties {
			ps.Properties = append(ps.Properties, PropertySnapshot(prop))
		}
		s.Project = ps
	}

	for _, e := range db.Enums() {
		es := EnumSnapshot{Schema: schemaName(db, e.Schema), Name: e.Name, Values: []EnumValueSnapshot{}}
		for _, v := range e.Values {
			es.Values = append(es.Values, EnumValueSnapshot{Name: v.Name, Note: v.Note.Value()})
		}
		s.Enums = append(s.Enums, es)
	}

	for _, t := range db.Partials() {
		s.Partials = append(s.Partials, tableSnapshot(db, t))
	}
	for _, t := range db.Tables() {
		s.Tables = append(s.Tables, tableSnapshot(db, t))
	}

	for _, r := range db.Relationships() {
		s.Relationships = append(s.Relationships, RelationshipSnapshot{
			Name:     r.Name,
			From:     columnNames(db, r.From),
			Kind:     r.Kind.Symbol(),
			To:       columnNames(db, r.To),
			Settings: settingMap(core.RelationshipSettings, r.Settings),
		})
	}

	for _, g := range db.TableGroups() {
		gs := GroupSnapshot{Name: g.Name, Tables: []string{}, Color: g.Color, Note: g.Note.Value()}
		for _, id := range g.Tables {
			gs.Tables = append(gs.Tables, db.TableName(id))
		}
		s.TableGroups = append(s.TableGroups, gs)
	}

	for _, n := range db.NamedNotes() {
		s.Notes = append(s.Notes, NoteSnapshot{Name: n.Name, HeaderColor: n.HeaderColor, Value: n.Value})
	}

	return s
}

func tableSnapshot(db *core.Database, t *core.Table) TableSnapshot {
	ts := TableSnapshot{
		Name:     t.Name,
		Alias:    t.Alias,
		Partials: t.Refs,
		Settings: settingMap(core.TableSettings, t.Settings),
		Note:     t.Note.Value(),
		Columns:  []ColumnSnapshot{},
	}
	if !t.Partial {
		ts.Schema = schemaName(db, t.Schema)
	}

	for _, c := range db.TableColumns(t.ID) {
		ts.Columns = append(ts.Columns, ColumnSnapshot{
			Name:     c.Name,
			Type:     c.Type,
			Settings: settingMap(core.ColumnSettings, c.Settings),
			Note:     c.Note.Value(),
			Source:   c.Source,
		})
	}

	for _, ix := range db.TableIndexes(t.ID) {
		is := IndexSnapshot{
			Columns:  make([]string, 0, len(ix.Columns)),
			Settings: settingMap(core.IndexSettings, ix.Settings),
			Note:     ix.Note.Value(),
			Source:   ix.Source,
		}
		for _, c := range ix.Columns {
			if c.Expression {
				is.Columns = append(is.Columns, "`"+c.Name+"`")
			} else {
				is.Columns = append(is.Columns, c.Name)
			}
		}
		ts.Indexes = append(ts.Indexes, is)
	}
	return ts
}

func schemaName(db *core.Database, id core.SchemaID) string {
	if s := db.SchemaByID(id); s != nil {
		return s.Name
	}
	return ""
}

func columnNames(db *core.Database, ids []core.ColumnID) []string {
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = db.ColumnName(id)
	}
	return names
}

// settingMap keys settings by name. Flag settings have an empty value.
func settingMap[K interface {
	comparable
	String() string
}](order []K, settings map[K]string) map[string]string {
	if len(settings) == 0 {
		return nil
	}
	m := make(map[string]string, len(settings))
	for _, k := range order {
		if v, ok := settings[k]; ok {
			m[k.String()] = v
		}
	}
	return m
}
