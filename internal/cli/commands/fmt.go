package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapdbml/pkg/format"
)

// FmtOptions holds options for the fmt command.
type FmtOptions struct {
	Write bool
	Check bool
}

// NewFmtCommand creates the fmt command.
func NewFmtCommand() *cobra.Command {
	opts := &FmtOptions{}

	cmd := &cobra.Command{
		Use:   "fmt <file>...",
		Short: "Reformat schema files",
		Long: `Parse schema files and print them in canonical form.

By default the formatted document is written to stdout. With --write the
files are rewritten in place; with --check nothing is written and the
command fails if any file is not already formatted.

Indentation and line breaks come from the format section of leapdbml.yaml
and can be overridden with --indent and --linebreak (lf or crlf).`,
		Example: `  # Print the formatted schema
  leapdbml fmt shop.dbml

  # Rewrite files in place with tab indentation
  leapdbml fmt -w --indent "	" *.dbml

  # Verify formatting in CI
  leapdbml fmt --check schemas/*.dbml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFmt(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.Write, "write", "w", false, "Write result to the source file instead of stdout")
	cmd.Flags().BoolVar(&opts.Check, "check", false, "Fail if any file is not formatted")
	cmd.Flags().String("indent", "", "Indentation unit (default: two spaces)")
	cmd.Flags().String("linebreak", "", "Line break style: lf or crlf")

	cmd.MarkFlagsMutuallyExclusive("write", "check")

	return cmd
}

func runFmt(cmd *cobra.Command, args []string, opts *FmtOptions) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	fmtOpts := cc.Cfg.Format.Options()

	var unformatted []string
	for _, path := range args {
		src, err := os.ReadFile(path) //nolint:gosec // G304: path is supplied by the user
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		db, err := cc.Engine.CompileSource(cc.Ctx, path, src)
		if err != nil {
			return err
		}
		formatted := format.Format(db, fmtOpts)

		switch {
		case opts.Check:
			if formatted != string(src) {
				unformatted = append(unformatted, path)
				cc.Renderer.Println(path)
			}
		case opts.Write:
			if formatted == string(src) {
				cc.Logger.Debug("already formatted", "path", path)
				continue
			}
			info, err := os.Stat(path)
			if err != nil {
				return err
			}
			if err := os.WriteFile(path, []byte(formatted), info.Mode().Perm()); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}
			cc.Logger.Info("formatted file", "path", path)
		default:
			_, _ = fmt.Fprint(cmd.OutOrStdout(), formatted)
		}
	}

	if len(unformatted) > 0 {
		return fmt.Errorf("%d of %d files are not formatted", len(unformatted), len(args))
	}
	return nil
}
