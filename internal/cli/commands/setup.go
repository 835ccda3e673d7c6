package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/anosql/internal/cli/config"
	"github.com/leapstack-labs/anosql/internal/cli/output"
	"github.com/leapstack-labs/anosql/pkg/adapter"
	"github.com/leapstack-labs/anosql/pkg/queries"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext from the loaded configuration.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
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

// LoadRegistry loads the configured query file or directory.
func (c *CommandContext) LoadRegistry() (*queries.Registry, error) {
	if err := c.Cfg.ValidateQueries(); err != nil {
		return nil, err
	}
	return loadRegistry(c.Cfg.Dialect, c.Cfg.Queries, c.Logger)
}

// OpenAdapter connects to the configured target.
// The caller must close the returned adapter.
func (c *CommandContext) OpenAdapter(ctx context.Context) (adapter.Adapter, error) {
	if c.Cfg.Target == nil {
		return nil, fmt.Errorf("no target configured\nHint: set target in anosql.yaml or pass --dsn")
	}
	a, err := adapter.Open(ctx, c.Cfg.Target.ToAdapterConfig(), c.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", c.Cfg.Target.Type, err)
	}
	return a, nil
}

// loadRegistry loads path as a directory of *.sql files or as a single file.
func loadRegistry(dialectName, path string, logger *slog.Logger) (*queries.Registry, error) {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return queries.LoadFromDir(dialectName, path, queries.WithLogger(logger))
	}
	return queries.LoadFromPath(dialectName, path, queries.WithLogger(logger))
}

// Helper functions shared across commands

// getConfig returns the current configuration.
// It uses config.GetCurrentConfig() if available, otherwise falls back to environment variables.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	dialectName := getEnvOrDefault("ANOSQL_DIALECT", config.DefaultDialect)
	return &config.Config{
		Dialect:      dialectName,
		Queries:      getEnvOrDefault("ANOSQL_QUERIES", config.DefaultQueries),
		OutputFormat: getEnvOrDefault("ANOSQL_OUTPUT", config.DefaultOutput),
		Verbose:      os.Getenv("ANOSQL_VERBOSE") == "true",
		Target:       &config.TargetConfig{Type: dialectName},
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
