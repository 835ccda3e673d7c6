package config

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/leapstack-labs/anosql/pkg/dialect"

	_ "github.com/leapstack-labs/anosql/pkg/adapters/postgres" // Register postgres adapter and dialect
	_ "github.com/leapstack-labs/anosql/pkg/adapters/sqlite"   // Register sqlite adapter and dialect
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, err := dialect.Lookup(c.Dialect); err != nil {
		return err
	}

	if c.Queries == "" {
		return fmt.Errorf("queries is required")
	}

	if !slices.Contains(OutputFormats, c.OutputFormat) {
		return fmt.Errorf("invalid output format %q (expected one of: %s)", c.OutputFormat, strings.Join(OutputFormats, ", "))
	}

	if c.Target != nil {
		if err := c.Target.Validate(); err != nil {
			return fmt.Errorf("invalid target configuration: %w", err)
		}
		if c.Target.Type != c.Dialect {
			return fmt.Errorf("invalid target configuration: target type %q does not match dialect %q", c.Target.Type, c.Dialect)
		}
	}

	// Only validate the queries path if we're running a command that needs it
	// This allows help commands to work without a query file
	return nil
}

// ValidateQueries checks that the queries path exists.
func (c *Config) ValidateQueries() error {
	if _, err := os.Stat(c.Queries); os.IsNotExist(err) {
		return fmt.Errorf("queries path does not exist: %s\nHint: Create the file or use --queries to specify a different path", c.Queries)
	}
	return nil
}
