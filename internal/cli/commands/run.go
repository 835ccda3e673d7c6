package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/anosql/internal/cli/output"
	"github.com/leapstack-labs/anosql/pkg/adapter"
	"github.com/leapstack-labs/anosql/pkg/queries"
)

// RunOptions holds options for the run command.
type RunOptions struct {
	Setup []string // SQL scripts executed before the query
}

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	opts := &RunOptions{}
	cmd := &cobra.Command{
		Use:   "run <name> [args...]",
		Short: "Run a query against the configured database",
		Long: `Run one query against the target database.

Arguments of the form name=value are bound as named parameters; anything
else is bound positionally. The two styles cannot be mixed in one call.

Select queries print their rows, autogen queries print the generated id,
and mutate queries print a confirmation.`,
		Example: `  # Named parameters
  anosql run get_user_by_id id=1

  # Positional parameters
  anosql run get_user_by_name ada

  # Insert into a fresh in-memory database
  anosql run create_user_auto name=ada email=ada@example.com --setup schema.sql

  # Against postgres
  anosql run get_all_users -d postgres --dsn postgres://localhost/app`,
		Args: cobra.MinimumNArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			return completeQueryNames(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, args[0], args[1:], opts)
		},
	}

	cmd.Flags().StringArrayVar(&opts.Setup, "setup", nil, "SQL script to execute before the query (repeatable)")

	return cmd
}

func runQuery(cmd *cobra.Command, name string, args []string, opts *RunOptions) error {
	ctx := cmd.Context()
	cmdCtx := NewCommandContext(cmd)

	reg, err := cmdCtx.LoadRegistry()
	if err != nil {
		return err
	}
	q, ok := reg.Get(name)
	if !ok {
		return &queries.UnknownQueryError{Name: name, Available: reg.Names()}
	}

	a, err := cmdCtx.OpenAdapter(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if err := runSetup(ctx, a, opts.Setup, cmdCtx.Logger); err != nil {
		return err
	}

	return execAndRender(ctx, cmdCtx.Renderer, a, q, args)
}

// runSetup executes each script in order.
func runSetup(ctx context.Context, a adapter.Adapter, scripts []string, logger *slog.Logger) error {
	for _, path := range scripts {
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read setup script: %w", err)
		}
		logger.Debug("running setup script", slog.String("path", path))
		if err := a.Exec(ctx, string(content)); err != nil {
			return fmt.Errorf("setup script %s: %w", path, err)
		}
	}
	return nil
}

// execAndRender runs q with command-line arguments and renders the result.
func execAndRender(ctx context.Context, r *output.Renderer, a adapter.Adapter, q *queries.Query, args []string) error {
	h := a.Handle()
	if h == nil {
		return adapter.ErrNotConnected
	}
	res, err := q.Run(ctx, h, parseQueryArgs(args)...)
	if err != nil {
		return fmt.Errorf("query %s failed: %w", q.Name, err)
	}
	return renderResult(r, q, res)
}
