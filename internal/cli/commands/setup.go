package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/structview/structview/internal/cli/config"
	"github.com/structview/structview/internal/cli/output"
	"github.com/structview/structview/internal/engine"
	"github.com/structview/structview/internal/state"
	"github.com/structview/structview/pkg/core"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Engine   *engine.Engine
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext with engine and renderer.
// Returns the context and a cleanup function that must be called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	eng, err := createEngine(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	cleanup := func() {
		if err := eng.Close(); err != nil {
			logger.Warn("failed to close history store", "error", err)
		}
	}

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Engine:   eng,
		Renderer: r,
	}, cleanup, nil
}

// NewCommandContextWithoutEngine creates a CommandContext without an engine.
// Useful for commands that don't touch the history database.
func NewCommandContextWithoutEngine(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// rendererFor returns a renderer for the --format flag, or the context's renderer if unset.
func (c *CommandContext) rendererFor(cmd *cobra.Command, format string) *output.Renderer {
	if format == "" {
		return c.Renderer
	}
	return output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(format))
}

// getConfig returns the current configuration, or defaults when none was loaded.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return &config.Config{
		StatePath:    os.Getenv(config.EnvPrefix + "STATE_PATH"),
		OutputFormat: os.Getenv(config.EnvPrefix + "OUTPUT"),
		LogLevel:     config.DefaultLogLevel,
		LogFormat:    config.DefaultLogFormat,
	}
}

func createEngine(cfg *config.Config, logger *slog.Logger) (*engine.Engine, error) {
	var store core.Store
	if cfg.StatePath != "" {
		// Ensure state directory exists
		if cfg.StatePath != ":memory:" {
			stateDir := filepath.Dir(cfg.StatePath)
			if stateDir != "." && stateDir != "" {
				if err := os.MkdirAll(stateDir, 0750); err != nil {
					return nil, fmt.Errorf("failed to create state directory: %w", err)
				}
			}
		}
		s, err := state.OpenStore(cfg.StatePath, logger)
		if err != nil {
			return nil, err
		}
		store = s
	}

	return engine.New(engine.Config{
		Store:  store,
		Logger: logger,
	}), nil
}
