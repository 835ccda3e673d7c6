// Package config provides configuration management for the anosql CLI.
//
// Settings are layered with koanf. From lowest to highest precedence:
// built-in defaults, anosql.yaml, ANOSQL_* environment variables, and
// command-line flags. The shared TargetConfig type lives in internal/config
// and is re-exported here via a type alias for convenience.
package config

import (
	sharedcfg "github.com/leapstack-labs/anosql/internal/config"
)

// TargetConfig is an alias for the shared target configuration.
// This allows CLI code to use config.TargetConfig without importing internal/config.
type TargetConfig = sharedcfg.TargetConfig

// Config holds all CLI configuration options.
type Config struct {
	// Dialect selects the SQL dialect queries are finalized for.
	Dialect string `koanf:"dialect"`
	// Queries is a query file or a directory of *.sql files.
	Queries string `koanf:"queries"`
	// Migrations is the directory of goose migrations for the target.
	Migrations   string        `koanf:"migrations"`
	OutputFormat string        `koanf:"output"`
	Verbose      bool          `koanf:"verbose"`
	Target       *TargetConfig `koanf:"target"`

	// ProjectRoot is the directory relative paths were resolved against.
	ProjectRoot string `koanf:"-"`
}

// Default configuration values - uses shared defaults from internal/config
const (
	DefaultDialect    = sharedcfg.DefaultDialect
	DefaultQueries    = sharedcfg.DefaultQueries
	DefaultMigrations = sharedcfg.DefaultMigrations
	DefaultOutput     = sharedcfg.DefaultOutput
)

// OutputFormats lists the accepted values of the output setting.
var OutputFormats = []string{"auto", "text", "markdown", "json", "yaml"}
