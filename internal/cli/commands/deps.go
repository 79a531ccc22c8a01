package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapdbml/internal/cli/output"
	"github.com/leapstack-labs/leapdbml/internal/dag"
)

// GraphQuerier provides read-only access to the reference graph.
type GraphQuerier interface {
	GetParents(string) []string
	GetChildren(string) []string
	GetRoots() []string
	GetLeaves() []string
	NodeCount() int
	EdgeCount() int
}

// DepsOptions holds options for the deps command.
type DepsOptions struct {
	Table string
	Order bool
}

// DepsOutput is the JSON output structure for deps.
type DepsOutput struct {
	Levels      []DepsLevel `json:"levels"`
	Order       []string    `json:"order"`
	Roots       []string    `json:"roots"`
	Leaves      []string    `json:"leaves"`
	TotalTables int         `json:"total_tables"`
	TotalEdges  int         `json:"total_edges"`
}

// DepsLevel groups tables that can be created together.
type DepsLevel struct {
	Level  int         `json:"level"`
	Tables []DepsTable `json:"tables"`
}

// DepsTable is a table with its references.
type DepsTable struct {
	Name         string   `json:"name"`
	References   []string `json:"references"`
	ReferencedBy []string `json:"referenced_by"`
}

// NewDepsCommand creates the deps command.
func NewDepsCommand() *cobra.Command {
	opts := &DepsOptions{}

	cmd := &cobra.Command{
		Use:   "deps <file>",
		Short: "Show tables in reference order",
		Long: `Display the tables of a schema grouped by creation level.

A table references every table it holds a foreign key to. Level 0 tables
reference nothing; a table at level N only references tables of lower
levels, so creating the levels in order never points at a missing table.
Many-to-many relationships and self references do not order tables.

The command fails when tables reference each other in a cycle.`,
		Example: `  # Show the creation order
  leapdbml deps shop.dbml

  # One table per line, referenced tables first
  leapdbml deps shop.dbml --order

  # Only the tables connected to orders
  leapdbml deps shop.dbml --table orders

  # Output as JSON
  leapdbml deps shop.dbml -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeps(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.Table, "table", "", "Limit to a table and the tables connected to it")
	cmd.Flags().BoolVar(&opts.Order, "order", false, "Print a flat creation order instead of levels")

	return cmd
}

func runDeps(cmd *cobra.Command, path string, opts *DepsOptions) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	db, err := cc.Compile(path)
	if err != nil {
		return err
	}

	graph := dag.Build(db)
	if opts.Table != "" {
		if _, ok := graph.GetNode(opts.Table); !ok {
			return fmt.Errorf("table %q not found", opts.Table)
		}
		ids := append(graph.GetUpstreamNodes(opts.Table), graph.GetDownstreamNodes([]string{opts.Table})...)
		graph = graph.Subgraph(ids)
	}

	levels, err := graph.GetCreationLevels()
	if err != nil {
		return err
	}
	sorted, err := graph.TopologicalSort()
	if err != nil {
		return err
	}
	order := make([]string, len(sorted))
	for i, n := range sorted {
		order[i] = n.ID
	}

	r := cc.Renderer
	switch mode := r.EffectiveMode(); {
	case mode == output.ModeJSON:
		return r.JSON(buildDepsOutput(graph, levels, order))
	case opts.Order:
		for _, name := range order {
			r.Println(name)
		}
	case mode == output.ModeMarkdown:
		depsMarkdown(r, graph, levels)
	default:
		depsText(r, graph, levels)
	}
	return nil
}

func buildDepsOutput(graph GraphQuerier, levels [][]string, order []string) DepsOutput {
	out := DepsOutput{
		Levels:      make([]DepsLevel, 0, len(levels)),
		Order:       order,
		Roots:       nonNil(graph.GetRoots()),
		Leaves:      nonNil(graph.GetLeaves()),
		TotalTables: graph.NodeCount(),
		TotalEdges:  graph.EdgeCount(),
	}
	for i, level := range levels {
		dl := DepsLevel{Level: i, Tables: make([]DepsTable, 0, len(level))}
		for _, name := range level {
			dl.Tables = append(dl.Tables, DepsTable{
				Name:         name,
				References:   graph.GetParents(name),
				ReferencedBy: graph.GetChildren(name),
			})
		}
		out.Levels = append(out.Levels, dl)
	}
	return out
}

func depsText(r *output.Renderer, graph GraphQuerier, levels [][]string) {
	styles := r.Styles()

	r.Header(1, "Table Dependencies")

	for i, level := range levels {
		r.Println(styles.Header2.Render(fmt.Sprintf("Level %d:", i)))
		for _, name := range level {
			r.Printf("  %s\n", styles.Path.Render(name))
			if parents := graph.GetParents(name); len(parents) > 0 {
				r.Printf("    %s %s\n", styles.Muted.Render("references:"), strings.Join(parents, ", "))
			}
			if children := graph.GetChildren(name); len(children) > 0 {
				r.Printf("    %s %s\n", styles.Muted.Render("referenced by:"), strings.Join(children, ", "))
			}
		}
		r.Println("")
	}

	r.Printf("%s %s\n", styles.Muted.Render("roots:"), strings.Join(graph.GetRoots(), ", "))
	r.Printf("%s %s\n", styles.Muted.Render("leaves:"), strings.Join(graph.GetLeaves(), ", "))
	r.Println(styles.Muted.Render(fmt.Sprintf("Total: %d tables, %d references", graph.NodeCount(), graph.EdgeCount())))
}

func depsMarkdown(r *output.Renderer, graph GraphQuerier, levels [][]string) {
	r.Println(output.FormatHeader(1, "Table Dependencies"))
	r.Println("")

	for i, level := range levels {
		name := fmt.Sprintf("Level %d", i)
		if i == 0 {
			name = "Level 0 (Roots)"
		}
		r.Println(output.FormatHeader(2, name))
		r.Println("")

		for _, table := range level {
			r.Printf("- %s\n", table)
			if parents := graph.GetParents(table); len(parents) > 0 {
				r.Printf("  - references: %s\n", strings.Join(parents, ", "))
			}
			if children := graph.GetChildren(table); len(children) > 0 {
				r.Printf("  - referenced by: %s\n", strings.Join(children, ", "))
			}
		}
		r.Println("")
	}

	r.Println(output.FormatHeader(2, "Summary"))
	r.Println("")
	r.Println(output.FormatKeyValue("Total Tables", graph.NodeCount()))
	r.Println(output.FormatKeyValue("Total References", graph.EdgeCount()))
	r.Println(output.FormatKeyValue("Roots", strings.Join(graph.GetRoots(), ", ")))
	r.Println(output.FormatKeyValue("Leaves", strings.Join(graph.GetLeaves(), ", ")))
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
