package parser

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/leapstack-labs/leapdbml/pkg/core"
	"github.com/leapstack-labs/leapdbml/pkg/token"
)

// resolve runs the second stage: partial injection, then relationships.
func resolve(db *core.Database, p pending) error {
	if err := injectPartials(db, p.refs); err != nil {
		return err
	}
	return createRelationships(db, p.relations)
}

func errorAt(pos token.Position, format string, args ...any) error {
	return &ParseError{Pos: pos, Message: fmt.Sprintf(format, args...)}
}

// ---------- Injection ----------

type injectState int

const (
	unvisited injectState = iota
	inProgress
	done
)

type injector struct {
	db    *core.Database
	refs  map[core.TableID][]partialRef
	state map[core.TableID]injectState
	stack []string
}

// injectPartials merges every referenced partial into its table. Refs of
// one table are applied last to first, and a partial's own refs are
// applied before it is merged anywhere.
func injectPartials(db *core.Database, refs []partialRef) error {
	in := &injector{
		db:    db,
		refs:  make(map[core.TableID][]partialRef),
		state: make(map[core.TableID]injectState),
	}
	var order []core.TableID
	for _, ref := range refs {
		if _, ok := in.refs[ref.table]; !ok {
			order = append(order, ref.table)
		}
		in.refs[ref.table] = append(in.refs[ref.table], ref)
	}
	for _, id := range order {
		if err := in.inject(id); err != nil {
			return err
		}
	}
	return nil
}

func (in *injector) inject(id core.TableID) error {
	if in.state[id] == done {
		return nil
	}
	table := in.db.Table(id)
	in.state[id] = inProgress
	in.stack = append(in.stack, table.Name)

	refs := in.refs[id]
	for i := len(refs) - 1; i >= 0; i-- {
		ref := refs[i]
		partial := in.db.Partial(ref.name)
		if partial == nil {
			return errorAt(ref.pos, ErrPartialNotDefined, ref.name)
		}
		if partial.ID == id {
			continue
		}
		if in.state[partial.ID] == inProgress {
			return errorAt(ref.pos, ErrCircularInjection, in.cycle(partial.Name))
		}
		if err := in.inject(partial.ID); err != nil {
			return err
		}
		if err := in.db.Inject(id, partial.ID); err != nil {
			return errorAt(ref.pos, "%v", err)
		}
	}

	in.stack = in.stack[:len(in.stack)-1]
	in.state[id] = done
	return nil
}

// cycle renders the injection path that leads back to name.
func (in *injector) cycle(name string) string {
	start := slices.Index(in.stack, name)
	if start < 0 {
		start = 0
	}
	path := append(slices.Clone(in.stack[start:]), name)
	return strings.Join(path, " -> ")
}

// ---------- Relationships ----------

func createRelationships(db *core.Database, defs []relationDef) error {
	for _, def := range defs {
		if def.from.equal(def.to) {
			return errorAt(def.pos, ErrSameEndpoints)
		}
		if len(def.from.columns) != len(def.to.columns) {
			return errorAt(def.pos, ErrUnequalEndpoints)
		}
		var sources [][]core.ColumnID
		if def.from.partial != "" {
			sources = partialColumns(db, def.from)
		} else {
			from, err := resolveEndpoint(db, def, def.from)
			if err != nil {
				return err
			}
			sources = [][]core.ColumnID{from}
		}
		to, err := resolveEndpoint(db, def, def.to)
		if err != nil {
			return err
		}

		for _, from := range sources {
			r := &core.Relationship{
				Name:     def.name,
				Kind:     def.kind,
				From:     from,
				To:       to,
				Settings: maps.Clone(def.settings),
			}
			if err := db.AddRelationship(r); err != nil {
				switch {
				case errors.Is(err, core.ErrDuplicateRelationship):
					return errorAt(def.pos, ErrReferenceDefined)
				case errors.Is(err, core.ErrSameEndpoints):
					return errorAt(def.pos, ErrSameEndpoints)
				}
				return errorAt(def.pos, "%v", err)
			}
		}
	}
	return nil
}

// resolveEndpoint maps an endpoint to column IDs. An unqualified table
// name that is not a table of the default schema may be an alias.
func resolveEndpoint(db *core.Database, def relationDef, e endpoint) ([]core.ColumnID, error) {
	table := db.LookupTable(e.schema, e.table)
	if table == nil && e.schema == core.DefaultSchema {
		table = db.AliasTable(e.table)
	}
	if table == nil {
		if e.schema != core.DefaultSchema && db.Schema(e.schema) == nil {
			return nil, errorAt(def.pos, ErrSchemaNotDefined, e.schema)
		}
		return nil, errorAt(def.pos, ErrTableNotDefined, core.QualifiedName(e.schema, e.table))
	}
	ids := make([]core.ColumnID, 0, len(e.columns))
	for _, name := range e.columns {
		id, ok := table.ColumnID(name)
		if !ok {
			return nil, errorAt(def.pos, ErrColumnNotDefined, db.TableName(table.ID)+"."+name)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// partialColumns finds the columns injected from a partial that carry an
// inline reference, one column list per table using the partial.
func partialColumns(db *core.Database, e endpoint) [][]core.ColumnID {
	var out [][]core.ColumnID
	for _, t := range db.Tables() {
		ids := make([]core.ColumnID, 0, len(e.columns))
		for _, name := range e.columns {
			id, ok := t.ColumnID(name)
			if !ok || db.Column(id).Source != e.partial {
				break
			}
			ids = append(ids, id)
		}
		if len(ids) == len(e.columns) {
			out = append(out, ids)
		}
	}
	return out
}
