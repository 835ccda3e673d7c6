package config

import "strings"

// Default configuration values.
const (
	DefaultDialect = "sqlite"
	DefaultQueries = "queries.sql"
	// DefaultMigrations is the goose migrations directory.
	DefaultMigrations = "migrations"
	DefaultOutput     = "auto" // Auto-detect: TTY=text, non-TTY=markdown
)

// ApplyTargetDefaults applies default values to a TargetConfig.
// A target without a type connects with the adapter named after the dialect.
func ApplyTargetDefaults(t *TargetConfig, dialectName string) {
	if t == nil {
		return
	}

	if t.Type == "" {
		t.Type = dialectName
	}
	t.Type = strings.ToLower(t.Type)

	if t.Type == "postgres" && t.DSN == "" {
		if t.Port == 0 {
			t.Port = 5432
		}
		if t.Host == "" {
			t.Host = "localhost"
		}
	}
}
