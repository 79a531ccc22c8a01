package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Export formats.
const (
	ExportJSON = "json"
	ExportYAML = "yaml"
)

// ExportOptions holds options for the export command.
type ExportOptions struct {
	Format string
}

// NewExportCommand creates the export command.
func NewExportCommand() *cobra.Command {
	opts := &ExportOptions{}

	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Export a compiled schema as JSON or YAML",
		Long: `Compile a schema file and write a structured snapshot of the resulting
entity graph: project, enums, partials, tables with their effective columns
and indexes, relationships, table groups and named notes.

Columns and indexes injected from a partial carry its name as source.`,
		Example: `  leapdbml export shop.dbml
  leapdbml export shop.dbml --format yaml > shop.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", ExportJSON, "Export format (json|yaml)")
	_ = cmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{ExportJSON, ExportYAML}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runExport(cmd *cobra.Command, path string, opts *ExportOptions) error {
	if opts.Format != ExportJSON && opts.Format != ExportYAML {
		return fmt.Errorf("unknown export format %q: expected json or yaml", opts.Format)
	}

	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	db, err := cc.Compile(path)
	if err != nil {
		return err
	}
	return writeSnapshot(cmd.OutOrStdout(), NewSnapshot(db), opts.Format)
}

func writeSnapshot(w io.Writer, s *Snapshot, format string) error {
	if format == ExportYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}
