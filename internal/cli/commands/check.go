package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapdbml/internal/cli/output"
	"github.com/leapstack-labs/leapdbml/internal/engine"
)

// CheckOptions holds options for the check command.
type CheckOptions struct {
	Force bool
}

// CheckOutput is the JSON output structure for check.
type CheckOutput struct {
	Files   []CheckFile  `json:"files"`
	Summary CheckSummary `json:"summary"`
}

// CheckFile is the result for one file.
type CheckFile struct {
	Path          string      `json:"path"`
	Status        string      `json:"status"`
	Tables        int         `json:"tables"`
	Relationships int         `json:"relationships"`
	Error         *CheckError `json:"error,omitempty"`
}

// CheckError locates a compile error.
type CheckError struct {
	Type    string `json:"type"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
	Message string `json:"message"`
}

// CheckSummary totals a check run.
type CheckSummary struct {
	Total         int   `json:"total"`
	Passed        int   `json:"passed"`
	Failed        int   `json:"failed"`
	Tables        int   `json:"tables"`
	Relationships int   `json:"relationships"`
	DurationMs    int64 `json:"duration_ms"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	opts := &CheckOptions{}

	cmd := &cobra.Command{
		Use:   "check [paths...]",
		Short: "Compile schema files and report errors",
		Long: `Compile every schema file under the given files or directories and report
parse and validation errors with their positions.

Without arguments the configured schema_dir is checked. Files are compiled
concurrently; the command exits non-zero if any file fails.`,
		Example: `  # Check the schema directory
  leapdbml check

  # Check specific files and directories
  leapdbml check shop.dbml schemas/

  # Machine-readable output
  leapdbml check -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Force, "force", false, "Ignore cached results")

	return cmd
}

func runCheck(cmd *cobra.Command, args []string, opts *CheckOptions) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	result, err := cc.Engine.Discover(cc.Ctx, engine.DiscoveryOptions{
		ForceFullRefresh: opts.Force,
		Paths:            args,
	})
	if err != nil {
		return err
	}

	out := buildCheckOutput(result)
	r := cc.Renderer
	switch r.EffectiveMode() {
	case output.ModeJSON:
		if err := r.JSON(out); err != nil {
			return err
		}
	case output.ModeMarkdown:
		renderCheckMarkdown(r, out)
	default:
		renderCheckText(r, out)
	}

	if out.Summary.Failed > 0 {
		return fmt.Errorf("%d of %d files failed to compile", out.Summary.Failed, out.Summary.Total)
	}
	return nil
}

func buildCheckOutput(result *engine.DiscoveryResult) CheckOutput {
	out := CheckOutput{Files: make([]CheckFile, 0, len(result.Files))}
	errs := make(map[string]engine.DiscoveryError, len(result.Errors))
	for _, de := range result.Errors {
		errs[de.Path] = de
	}

	for _, f := range result.Files {
		cf := CheckFile{Path: displayPath(f.Path), Status: "ok"}
		if de, failed := errs[f.Path]; failed {
			cf.Status = "error"
			cf.Error = &CheckError{Type: de.Type, Line: de.Pos.Line, Column: de.Pos.Column, Message: de.Message}
			out.Summary.Failed++
		} else if f.Database != nil {
			st := f.Database.Stats()
			cf.Tables, cf.Relationships = st.Tables, st.Relationships
			out.Summary.Passed++
		}
		out.Files = append(out.Files, cf)
	}

	st := result.Stats()
	out.Summary.Total = result.Total
	out.Summary.Tables = st.Tables
	out.Summary.Relationships = st.Relationships
	out.Summary.DurationMs = result.Duration.Milliseconds()
	return out
}

func (e *CheckError) location() string {
	if e.Line == 0 {
		return ""
	}
	return fmt.Sprintf(":%d:%d", e.Line, e.Column)
}

func renderCheckText(r *output.Renderer, out CheckOutput) {
	styles := r.Styles()
	for _, f := range out.Files {
		if f.Error != nil {
			r.Printf("%s %s%s %s\n",
				styles.StatusFailed.String(),
				styles.Path.Render(f.Path),
				styles.Muted.Render(f.Error.location()),
				styles.Error.Render(f.Error.Message))
			continue
		}
		r.Printf("%s %s %s\n",
			styles.StatusSuccess.String(),
			styles.Path.Render(f.Path),
			styles.Muted.Render(fmt.Sprintf("(%d tables, %d refs)", f.Tables, f.Relationships)))
	}

	r.Println("")
	summary := fmt.Sprintf("%d files: %d passed, %d failed", out.Summary.Total, out.Summary.Passed, out.Summary.Failed)
	if out.Summary.Failed > 0 {
		r.Println(styles.Error.Render(summary))
	} else {
		r.Println(styles.Success.Render(summary))
	}
}

func renderCheckMarkdown(r *output.Renderer, out CheckOutput) {
	r.Println(output.FormatHeader(1, "Schema Check"))
	r.Println("")
	for _, f := range out.Files {
		if f.Error != nil {
			r.Printf("- **FAIL** %s%s: %s\n", output.FormatCode(f.Path), f.Error.location(), f.Error.Message)
			continue
		}
		r.Printf("- **OK** %s (%d tables, %d refs)\n", output.FormatCode(f.Path), f.Tables, f.Relationships)
	}
	r.Println("")
	r.Println(output.FormatHeader(2, "Summary"))
	r.Println("")
	r.Println(output.FormatKeyValue("Files", out.Summary.Total))
	r.Println(output.FormatKeyValue("Passed", out.Summary.Passed))
	r.Println(output.FormatKeyValue("Failed", out.Summary.Failed))
	r.Println(output.FormatKeyValue("Tables", out.Summary.Tables))
	r.Println(output.FormatKeyValue("Relationships", out.Summary.Relationships))
}

// displayPath shortens path relative to the working directory when it lies
// below it.
func displayPath(path string) string {
	cwd, err := os.Getwd()
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(cwd, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return rel
}
