package format

import (
	"strings"

	"github.com/leapstack-labs/leapdbml/pkg/core"
)

func (p *Printer) element(el core.Element) {
	switch e := el.(type) {
	case *core.Project:
		p.project(e)
	case *core.Enum:
		p.enum(e)
	case *core.Table:
		p.table(e)
	case *core.Relationship:
		p.relationship(e)
	case *core.TableGroup:
		p.tableGroup(e)
	case *core.NamedNote:
		p.namedNote(e)
	case *core.Database:
		for i, child := range e.Elements() {
			if i > 0 {
				p.writeln()
			}
			p.element(child)
		}
	}
}

// ---------- Project ----------

func (p *Printer) project(project *core.Project) {
	head := "Project"
	if project.Name != "" {
		head += " " + quoteName(project.Name)
	}
	p.block(head, func() {
		for _, prop := range project.Properties {
			p.line(quoteName(prop.Key) + ": " + quoteString(prop.Value))
		}
		if hasNote(project.Note) {
			if len(project.Properties) > 0 {
				p.writeln()
			}
			p.line("Note: " + quoteString(project.Note.Value()))
		}
	})
}

// ---------- Enums ----------

func (p *Printer) enum(e *core.Enum) {
	p.block("enum "+qualify(p.db.SchemaByID(e.Schema).Name, e.Name), func() {
		for _, v := range e.Values {
			var items []string
			if hasNote(v.Note) {
				items = append(items, "note: "+quoteString(v.Note.Value()))
			}
			p.line(quoteName(v.Name) + settings(items))
		}
	})
}

// ---------- Tables ----------

func (p *Printer) table(t *core.Table) {
	var head string
	if t.Partial {
		head = "TablePartial " + quoteName(t.Name)
	} else {
		head = "Table " + qualify(p.db.SchemaByID(t.Schema).Name, t.Name)
		if t.Alias != "" {
			head += " as " + quoteName(t.Alias)
		}
	}
	var items []string
	for _, s := range core.TableSettings {
		if v, ok := t.Settings[s]; ok && t.SettingSource(s) == "" {
			items = append(items, s.String()+": "+v)
		}
	}

	p.block(head+settings(items), func() {
		for _, ref := range t.Refs {
			p.line("~" + ref)
		}
		for _, c := range p.db.TableColumns(t.ID) {
			if c.Source == "" {
				p.column(c)
			}
		}

		var indexes []*core.Index
		for _, ix := range p.db.TableIndexes(t.ID) {
			if ix.Source == "" {
				indexes = append(indexes, ix)
			}
		}
		if len(indexes) > 0 {
			p.writeln()
			p.block("indexes", func() {
				for _, ix := range indexes {
					p.index(ix)
				}
			})
		}

		if hasNote(t.Note) && t.NoteSource == "" {
			p.writeln()
			p.line("Note: " + quoteString(t.Note.Value()))
		}
	})
}

func (p *Printer) column(c *core.Column) {
	var items []string
	for _, s := range core.ColumnSettings {
		v, ok := c.Settings[s]
		if !ok {
			continue
		}
		if s == core.ColumnDefault {
			items = append(items, s.String()+": "+quoteDefault(v, c.DefaultKind))
			continue
		}
		items = append(items, s.String())
	}
	if hasNote(c.Note) {
		items = append(items, "note: "+quoteString(c.Note.Value()))
	}
	p.line(quoteName(c.Name) + " " + quoteType(c.Type) + settings(items))
}

func (p *Printer) index(ix *core.Index) {
	cols := make([]string, len(ix.Columns))
	for i, c := range ix.Columns {
		switch {
		case c.Expression:
			cols[i] = "`" + c.Name + "`"
		case isWord(c.Name):
			// index entries downgrade keywords and take no quoted names
			cols[i] = c.Name
		default:
			cols[i] = quoteName(c.Name)
		}
	}
	entry := strings.Join(cols, ", ")
	if len(cols) > 1 {
		entry = "(" + entry + ")"
	}

	var items []string
	for _, s := range core.IndexSettings {
		v, ok := ix.Settings[s]
		switch {
		case !ok:
		case s == core.IndexName:
			items = append(items, s.String()+": "+quoteString(v))
		case s == core.IndexType:
			items = append(items, s.String()+": "+v)
		default:
			items = append(items, s.String())
		}
	}
	if hasNote(ix.Note) {
		items = append(items, "note: "+quoteString(ix.Note.Value()))
	}
	p.line(entry + settings(items))
}

// ---------- Relationships ----------

func (p *Printer) relationship(r *core.Relationship) {
	head := "Ref"
	if r.Name != "" {
		head += " " + quoteName(r.Name)
	}
	var items []string
	for _, s := range core.RelationshipSettings {
		if v, ok := r.Settings[s]; ok {
			items = append(items, s.String()+": "+v)
		}
	}
	p.line(head + ": " + p.endpoint(r.From) + " " + r.Kind.Symbol() + " " + p.endpoint(r.To) + settings(items))
}

func (p *Printer) endpoint(ids []core.ColumnID) string {
	if len(ids) == 0 {
		return ""
	}
	first := p.db.Column(ids[0])
	t := p.db.Table(first.Table)
	table := qualify(p.db.SchemaByID(t.Schema).Name, t.Name)
	if len(ids) == 1 {
		return table + "." + quoteName(first.Name)
	}
	cols := make([]string, len(ids))
	for i, id := range ids {
		cols[i] = quoteName(p.db.Column(id).Name)
	}
	return table + ".(" + strings.Join(cols, ", ") + ")"
}

// ---------- Groups and notes ----------

func (p *Printer) tableGroup(g *core.TableGroup) {
	var items []string
	if g.Color != "" {
		items = append(items, "color: "+g.Color)
	}
	schema, name := splitGroupName(g.Name)
	p.block("TableGroup "+qualify(schema, name)+settings(items), func() {
		for _, id := range g.Tables {
			t := p.db.Table(id)
			p.line(qualify(p.db.SchemaByID(t.Schema).Name, t.Name))
		}
		if hasNote(g.Note) {
			if len(g.Tables) > 0 {
				p.writeln()
			}
			p.line("Note: " + quoteString(g.Note.Value()))
		}
	})
}

// splitGroupName undoes core.QualifiedName for group names.
func splitGroupName(name string) (string, string) {
	if schema, rest, ok := strings.Cut(name, "."); ok {
		return schema, rest
	}
	return core.DefaultSchema, name
}

func (p *Printer) namedNote(n *core.NamedNote) {
	var items []string
	if n.HeaderColor != "" {
		items = append(items, "headercolor: "+n.HeaderColor)
	}
	p.block("Note "+quoteName(n.Name)+settings(items), func() {
		p.line(quoteString(n.Value))
	})
}
