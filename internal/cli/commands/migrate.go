package commands

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/anosql/internal/migrate"
)

// MigrateOptions holds options for the migrate commands.
type MigrateOptions struct {
	Dir string // overrides the configured migrations directory
}

// NewMigrateCommand creates the migrate command and its subcommands.
func NewMigrateCommand() *cobra.Command {
	opts := &MigrateOptions{}

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply schema migrations to the configured database",
		Long: `Manage the target database schema with goose SQL migrations.

Migrations live in the directory set by "migrations" in anosql.yaml
(default: migrations/). Each file is named <version>_<name>.sql and holds
"-- +goose Up" and "-- +goose Down" sections.`,
		Example: `  # Apply all pending migrations
  anosql migrate up

  # Roll back the latest migration
  anosql migrate down

  # Show applied and pending migrations
  anosql migrate status --dir db/migrations`,
	}

	cmd.PersistentFlags().StringVar(&opts.Dir, "dir", "", "Migrations directory (default from config)")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runMigrateUp(cmd, opts)
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runMigrateDown(cmd, opts)
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "List migrations and whether they are applied",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runMigrateStatus(cmd, opts)
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runMigrateVersion(cmd, opts)
			},
		},
	)

	return cmd
}

// migrationOutput is the structured form of one migration result.
type migrationOutput struct {
	Version   int64  `json:"version" yaml:"version"`
	File      string `json:"file" yaml:"file"`
	Direction string `json:"direction" yaml:"direction"`
	Empty     bool   `json:"empty,omitempty" yaml:"empty,omitempty"`
}

// migrationStatusOutput is the structured form of one status line.
type migrationStatusOutput struct {
	Version   int64      `json:"version" yaml:"version"`
	File      string     `json:"file" yaml:"file"`
	State     string     `json:"state" yaml:"state"`
	AppliedAt *time.Time `json:"applied_at,omitempty" yaml:"applied_at,omitempty"`
}

func toMigrationOutput(res *goose.MigrationResult) migrationOutput {
	return migrationOutput{
		Version:   res.Source.Version,
		File:      filepath.Base(res.Source.Path),
		Direction: res.Direction,
		Empty:     res.Empty,
	}
}

// withMigrator connects to the target, builds a migrator and runs fn.
func withMigrator(cmd *cobra.Command, opts *MigrateOptions, fn func(*CommandContext, *migrate.Migrator) error) error {
	cmdCtx := NewCommandContext(cmd)

	dir := cmdCtx.Cfg.Migrations
	if opts.Dir != "" {
		dir, _ = filepath.Abs(opts.Dir)
	}

	a, err := cmdCtx.OpenAdapter(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	m, err := migrate.New(a.DB(), a.DialectName(), dir, cmdCtx.Logger)
	if err != nil {
		return err
	}
	return fn(cmdCtx, m)
}

func runMigrateUp(cmd *cobra.Command, opts *MigrateOptions) error {
	return withMigrator(cmd, opts, func(cmdCtx *CommandContext, m *migrate.Migrator) error {
		r := cmdCtx.Renderer
		results, err := m.Up(cmd.Context())
		if ok, serr := r.Structured(migrationOutputs(results)); ok {
			return errors.Join(err, serr)
		}
		for _, res := range results {
			r.Success(res.String())
		}
		if err != nil {
			return err
		}
		if len(results) == 0 {
			r.Muted("no pending migrations")
		}
		return printVersion(cmd, cmdCtx, m)
	})
}

func migrationOutputs(results []*goose.MigrationResult) []migrationOutput {
	out := make([]migrationOutput, 0, len(results))
	for _, res := range results {
		out = append(out, toMigrationOutput(res))
	}
	return out
}

func runMigrateDown(cmd *cobra.Command, opts *MigrateOptions) error {
	return withMigrator(cmd, opts, func(cmdCtx *CommandContext, m *migrate.Migrator) error {
		r := cmdCtx.Renderer
		res, err := m.Down(cmd.Context())
		if errors.Is(err, migrate.ErrNothingToRollBack) {
			if ok, serr := r.Structured([]migrationOutput{}); ok {
				return serr
			}
			r.Muted(err.Error())
			return nil
		}
		if err != nil {
			return err
		}
		if ok, serr := r.Structured([]migrationOutput{toMigrationOutput(res)}); ok {
			return serr
		}
		r.Success(res.String())
		return printVersion(cmd, cmdCtx, m)
	})
}

func runMigrateStatus(cmd *cobra.Command, opts *MigrateOptions) error {
	return withMigrator(cmd, opts, func(cmdCtx *CommandContext, m *migrate.Migrator) error {
		r := cmdCtx.Renderer
		status, err := m.Status(cmd.Context())
		if err != nil {
			return err
		}

		out := make([]migrationStatusOutput, 0, len(status))
		rows := make([][]any, 0, len(status))
		for _, s := range status {
			o := migrationStatusOutput{
				Version: s.Source.Version,
				File:    filepath.Base(s.Source.Path),
				State:   string(s.State),
			}
			applied := "-"
			if s.State == goose.StateApplied {
				at := s.AppliedAt
				o.AppliedAt = &at
				applied = at.Local().Format(time.DateTime)
			}
			out = append(out, o)
			rows = append(rows, []any{o.Version, o.File, o.State, applied})
		}

		if ok, serr := r.Structured(out); ok {
			return serr
		}
		r.Header(1, fmt.Sprintf("Migrations (%s)", m.Dir()))
		r.Table([]string{"version", "file", "state", "applied_at"}, rows)
		return nil
	})
}

func runMigrateVersion(cmd *cobra.Command, opts *MigrateOptions) error {
	return withMigrator(cmd, opts, func(cmdCtx *CommandContext, m *migrate.Migrator) error {
		return printVersion(cmd, cmdCtx, m)
	})
}

func printVersion(cmd *cobra.Command, cmdCtx *CommandContext, m *migrate.Migrator) error {
	v, err := m.Version(cmd.Context())
	if err != nil {
		return err
	}
	if ok, serr := cmdCtx.Renderer.Structured(map[string]int64{"version": v}); ok {
		return serr
	}
	cmdCtx.Renderer.Printf("version: %d\n", v)
	return nil
}
