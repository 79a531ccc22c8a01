package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapdbml/internal/cli/output"
	"github.com/leapstack-labs/leapdbml/pkg/core"
)

// InspectOptions holds options for the inspect command.
type InspectOptions struct {
	Columns bool
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand() *cobra.Command {
	opts := &InspectOptions{}

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Summarize the entities of a schema file",
		Long: `Compile a schema file and list its tables, relationships, enums and
table groups. With --columns every table's effective columns are listed,
including those injected from partials.

In JSON mode the full snapshot is written, as with 'leapdbml export'.`,
		Example: `  leapdbml inspect shop.dbml
  leapdbml inspect shop.dbml --columns -o markdown`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Columns, "columns", false, "List the columns of every table")

	return cmd
}

func runInspect(cmd *cobra.Command, path string, opts *InspectOptions) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	db, err := cc.Compile(path)
	if err != nil {
		return err
	}

	r := cc.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(NewSnapshot(db))
	}
	renderInspect(r, db, path, opts)
	return nil
}

func renderInspect(r *output.Renderer, db *core.Database, path string, opts *InspectOptions) {
	st := db.Stats()
	r.Header(1, "Schema "+path)
	if r.EffectiveMode() == output.ModeText {
		r.Println("")
	}
	r.Table([]string{"entity", "count"}, [][]string{
		{"schemas", strconv.Itoa(st.Schemas)},
		{"tables", strconv.Itoa(st.Tables)},
		{"partials", strconv.Itoa(st.Partials)},
		{"columns", strconv.Itoa(st.Columns)},
		{"indexes", strconv.Itoa(st.Indexes)},
		{"enums", strconv.Itoa(st.Enums)},
		{"relationships", strconv.Itoa(st.Relationships)},
		{"table groups", strconv.Itoa(st.TableGroups)},
		{"named notes", strconv.Itoa(st.NamedNotes)},
	})

	if tables := db.Tables(); len(tables) > 0 {
		section(r, "Tables")
		rows := make([][]string, 0, len(tables))
		for _, t := range tables {
			rows = append(rows, []string{
				db.TableName(t.ID),
				t.Alias,
				strconv.Itoa(len(t.Columns())),
				strconv.Itoa(len(t.Indexes())),
				strings.Join(t.Refs, ", "),
				t.Note.Value(),
			})
		}
		r.Table([]string{"table", "alias", "columns", "indexes", "partials", "note"}, rows)
	}

	if opts.Columns {
		for _, t := range db.Tables() {
			section(r, "Columns of "+db.TableName(t.ID))
			rows := make([][]string, 0, len(t.Columns()))
			for _, c := range db.TableColumns(t.ID) {
				rows = append(rows, []string{c.Name, c.Type, columnFlags(c), c.Source})
			}
			r.Table([]string{"column", "type", "settings", "source"}, rows)
		}
	}

	if rels := db.Relationships(); len(rels) > 0 {
		section(r, "Relationships")
		rows := make([][]string, 0, len(rels))
		for _, rel := range rels {
			rows = append(rows, []string{
				rel.Name,
				strings.Join(columnNames(db, rel.From), ", "),
				rel.Kind.Symbol(),
				strings.Join(columnNames(db, rel.To), ", "),
				rel.Kind.String(),
			})
		}
		r.Table([]string{"name", "from", "kind", "to", "cardinality"}, rows)
	}

	if enums := db.Enums(); len(enums) > 0 {
		section(r, "Enums")
		rows := make([][]string, 0, len(enums))
		for _, e := range enums {
			values := make([]string, len(e.Values))
			for i, v := range e.Values {
				values[i] = v.Name
			}
			rows = append(rows, []string{db.EnumName(e.ID), strings.Join(values, ", ")})
		}
		r.Table([]string{"enum", "values"}, rows)
	}

	if groups := db.TableGroups(); len(groups) > 0 {
		section(r, "Table Groups")
		rows := make([][]string, 0, len(groups))
		for _, g := range groups {
			names := make([]string, len(g.Tables))
			for i, id := range g.Tables {
				names[i] = db.TableName(id)
			}
			rows = append(rows, []string{g.Name, strings.Join(names, ", ")})
		}
		r.Table([]string{"group", "tables"}, rows)
	}
}

func section(r *output.Renderer, title string) {
	if r.EffectiveMode() == output.ModeText {
		r.Println("")
		r.Header(2, title)
		return
	}
	r.Header(2, title)
}

// columnFlags lists a column's settings in print order.
func columnFlags(c *core.Column) string {
	var parts []string
	for _, s := range core.ColumnSettings {
		v, ok := c.Settings[s]
		if !ok {
			continue
		}
		if v == "" {
			parts = append(parts, s.String())
		} else {
			parts = append(parts, fmt.Sprintf("%s: %s", s, v))
		}
	}
	return strings.Join(parts, ", ")
}
