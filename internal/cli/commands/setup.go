package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapdbml/internal/cli/config"
	"github.com/leapstack-labs/leapdbml/internal/cli/output"
	"github.com/leapstack-labs/leapdbml/internal/engine"
	"github.com/leapstack-labs/leapdbml/pkg/core"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Ctx      context.Context
	Cfg      *config.Config
	Logger   *slog.Logger
	Engine   *engine.Engine
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext with engine and renderer.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	ctx := commandCtx(cmd)
	cfg := config.GetConfig(ctx)
	logger := config.GetLogger(ctx)

	eng, err := createEngine(cfg, logger)
	if err != nil {
		return nil, err
	}

	return &CommandContext{
		Ctx:      ctx,
		Cfg:      cfg,
		Logger:   logger,
		Engine:   eng,
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.Output)),
	}, nil
}

// Compile parses a single file with the configured engine.
func (c *CommandContext) Compile(path string) (*core.Database, error) {
	return c.Engine.CompileFile(c.Ctx, path)
}

// Helper functions shared across commands

// commandCtx returns the command context, which is nil when a command is
// executed directly rather than through the root.
func commandCtx(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func createEngine(cfg *config.Config, logger *slog.Logger) (*engine.Engine, error) {
	eng, err := engine.New(engine.Config{
		SchemaDir:   cfg.SchemaDir,
		Include:     cfg.Include,
		Concurrency: cfg.Concurrency,
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}
	return eng, nil
}
