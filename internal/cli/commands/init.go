package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/anosql/internal/cli/config"
	"github.com/leapstack-labs/anosql/internal/cli/output"
	sharedcfg "github.com/leapstack-labs/anosql/internal/config"
)

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new anosql project",
		Long: `Initialize a new anosql project.

This creates:
  - anosql.yaml configuration for the chosen dialect
  - queries.sql with one example query of each kind
  - schema.sql creating the table the examples use

The template follows --dialect (sqlite by default).`,
		Example: `  # Initialize a SQLite project in the current directory
  anosql init

  # Initialize a PostgreSQL project in a new directory
  anosql init my-project --dialect postgres

  # Overwrite existing files
  anosql init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			dialectName := strings.ToLower(flagOrEnv(cmd, "dialect", "ANOSQL_DIALECT", config.DefaultDialect))
			mode := output.Mode(flagOrEnv(cmd, "output", "ANOSQL_OUTPUT", config.DefaultOutput))
			r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

			return runInit(r, dir, dialectName, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing files")

	return cmd
}

// flagOrEnv returns a changed flag's value, else the environment variable,
// else def. init never loads configuration.
func flagOrEnv(cmd *cobra.Command, flag, env, def string) string {
	if f := cmd.Flags().Lookup(flag); f != nil && f.Changed {
		return f.Value.String()
	}
	return getEnvOrDefault(env, def)
}

func runInit(r *output.Renderer, dir, dialectName string, force bool) error {
	if !slices.Contains(templateNames(), dialectName) {
		return fmt.Errorf("no project template for dialect %q (available: %s)",
			dialectName, strings.Join(templateNames(), ", "))
	}

	if dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	configPath := filepath.Join(dir, sharedcfg.ConfigFileName)
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("%s already exists. Use --force to overwrite", sharedcfg.ConfigFileName)
	}

	files, err := copyTemplate(dialectName, dir, force)
	if err != nil {
		return fmt.Errorf("failed to initialize project: %w", err)
	}

	for _, f := range files {
		r.Success(f)
	}

	r.Println("")
	r.Success(fmt.Sprintf("anosql project initialized (%s)", dialectName))
	r.Println("")
	r.Println("Next steps:")
	r.Println("  anosql list                                  List the example queries")
	r.Println("  anosql run list_users --setup schema.sql     Create the table and run a query")
	r.Println("  anosql shell --setup schema.sql              Explore interactively")

	return nil
}
