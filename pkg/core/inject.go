package core

import "fmt"

// Inject merges partial src into table dst.
//
// Settings and columns are first-write-wins: anything dst already has,
// local or injected earlier, is kept. Columns are copied and owned by dst.
// Indexes are appended as copies resolved against dst's columns. The note
// is copied only when dst has none.
func (db *Database) Inject(dst, src TableID) error {
	to, from := db.Table(dst), db.Table(src)
	if to == nil || from == nil {
		return fmt.Errorf("inject %d into %d: %w", src, dst, ErrNotFound)
	}
	if dst == src {
		return nil
	}

	for _, s := range TableSettings {
		v, ok := from.Settings[s]
		if !ok {
			continue
		}
		if _, exists := to.Settings[s]; exists {
			continue
		}
		to.Settings[s] = v
		to.settingSource[s] = sourceOf(from.settingSource[s], from.Name)
	}

	for _, id := range from.columns {
		c := db.columns[id]
		if to.HasColumn(c.Name) {
			continue
		}
		cp := &Column{
			Name:        c.Name,
			Type:        c.Type,
			Settings:    make(map[ColumnSetting]string, len(c.Settings)),
			DefaultKind: c.DefaultKind,
			Note:        c.Note,
			Source:      sourceOf(c.Source, from.Name),
		}
		for k, v := range c.Settings {
			cp.Settings[k] = v
		}
		db.attachColumn(to, cp)
	}

	for _, id := range from.indexes {
		ix := db.indexes[id]
		cp := &Index{
			Columns:  make([]IndexColumn, 0, len(ix.Columns)),
			Settings: make(map[IndexSetting]string, len(ix.Settings)),
			Note:     ix.Note,
			Source:   sourceOf(ix.Source, from.Name),
		}
		for _, entry := range ix.Columns {
			if !entry.Expression {
				entry.Column, _ = to.ColumnID(entry.Name)
			}
			cp.Columns = append(cp.Columns, entry)
		}
		for k, v := range ix.Settings {
			cp.Settings[k] = v
		}
		db.attachIndex(to, cp)
	}

	if to.Note == nil && from.Note != nil {
		to.Note = from.Note
		to.NoteSource = sourceOf(from.NoteSource, from.Name)
	}
	return nil
}

func sourceOf(inherited, partial string) string {
	if inherited != "" {
		return inherited
	}
	return partial
}
