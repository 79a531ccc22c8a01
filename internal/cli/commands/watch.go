package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapdbml/internal/cli/output"
	"github.com/leapstack-labs/leapdbml/internal/engine"
)

// NewWatchCommand creates the watch command.
func NewWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Recompile schema files when they change",
		Long: `Compile the schema directory, then watch it and recompile whenever a
matching file is written, created, removed or renamed. Only changed files
are parsed again; unchanged ones are reused by content hash.

Rapid successive changes are debounced (watch.debounce, default 100ms).
Press Ctrl+C to stop.`,
		Example: `  leapdbml watch
  leapdbml watch schemas/ --debounce 500ms`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				cfg := *cc.Cfg
				cfg.SchemaDir = args[0]
				if cc.Engine, err = createEngine(&cfg, cc.Logger); err != nil {
					return err
				}
			}

			r := cc.Renderer
			r.Printf("Watching %s for changes (Ctrl+C to stop)\n", cc.Engine.SchemaDir())
			return cc.Engine.Watch(cc.Ctx, cc.Cfg.Watch.Debounce, func(result *engine.DiscoveryResult, err error) {
				renderWatchRun(r, result, err)
			})
		},
	}

	cmd.Flags().Duration("debounce", 0, "Delay before recompiling after a change (default 100ms)")

	return cmd
}

func renderWatchRun(r *output.Renderer, result *engine.DiscoveryResult, err error) {
	stamp := time.Now().Format("15:04:05")
	if err != nil {
		r.Error(fmt.Sprintf("[%s] %v", stamp, err))
		return
	}

	out := buildCheckOutput(result)
	if r.EffectiveMode() == output.ModeJSON {
		_ = r.JSON(out)
		return
	}

	for _, f := range out.Files {
		if f.Error != nil {
			r.Error(fmt.Sprintf("%s%s %s", f.Path, f.Error.location(), f.Error.Message))
		}
	}
	summary := fmt.Sprintf("[%s] %s", stamp, result.Summary())
	if out.Summary.Failed > 0 {
		r.Warning(summary)
	} else {
		r.Success(summary)
	}
}
