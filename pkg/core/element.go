package core

// Element is the closed set of entity kinds a consumer can receive.
// Switch on the concrete type; partials are *Table with Partial set.
type Element interface {
	element()
}

func (*Database) element()     {}
func (*Schema) element()       {}
func (*Table) element()        {}
func (*Column) element()       {}
func (*Index) element()        {}
func (*Enum) element()         {}
func (*Relationship) element() {}
func (*TableGroup) element()   {}
func (*Project) element()      {}
func (*NamedNote) element()    {}

// Elements returns the top-level elements in serialization order: project,
// enums, partials, tables, relationships, table groups, named notes.
func (db *Database) Elements() []Element {
	var out []Element
	if db.project != nil {
		out = append(out, db.project)
	}
	for _, e := range db.Enums() {
		out = append(out, e)
	}
	for _, p := range db.Partials() {
		out = append(out, p)
	}
	for _, t := range db.Tables() {
		out = append(out, t)
	}
	for _, r := range db.relationships {
		out = append(out, r)
	}
	for _, g := range db.groups {
		out = append(out, g)
	}
	for _, n := range db.notes {
		out = append(out, n)
	}
	return out
}
