package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/anosql/internal/cli/config"
	sharedcfg "github.com/leapstack-labs/anosql/internal/config"
)

// generateConfigDocs generates the anosql.yaml reference.
func generateConfigDocs(outDir string) error {
	log.Printf("Generating configuration docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	filename := filepath.Join(outDir, "configuration.md")
	if err := os.WriteFile(filename, renderConfigurationDoc(), 0600); err != nil {
		return fmt.Errorf("failed to generate configuration.md: %w", err)
	}
	log.Printf("  Generated configuration.md")

	return nil
}

// ConfigField represents a configuration field definition.
type ConfigField struct {
	Name        string
	Type        string
	Default     string
	Description string
	Category    string // "project", "target", "sqlite", "postgres"
}

// getConfigSchema returns the configuration schema definition.
// This mirrors internal/cli/config.Config and internal/config.TargetConfig.
func getConfigSchema() []ConfigField {
	return []ConfigField{
		{Name: "dialect", Type: "string", Default: config.DefaultDialect, Description: "Query dialect: sqlite or postgres", Category: "project"},
		{Name: "queries", Type: "string", Default: config.DefaultQueries, Description: "Query file or directory of .sql files, relative to the project root", Category: "project"},
		{Name: "migrations", Type: "string", Default: config.DefaultMigrations, Description: "Directory of goose migrations applied by anosql migrate", Category: "project"},
		{Name: "output", Type: "string", Default: config.DefaultOutput, Description: "Output format: " + strings.Join(config.OutputFormats, ", "), Category: "project"},
		{Name: "verbose", Type: "bool", Default: "false", Description: "Enable debug logging", Category: "project"},

		{Name: "type", Type: "string", Description: "Adapter type, defaults to the dialect", Category: "target"},
		{Name: "dsn", Type: "string", Description: "Full connection string; wins over the fields below", Category: "target"},
		{Name: "options", Type: "map[string]string", Description: "Additional driver-specific options", Category: "target"},
		{Name: "params", Type: "map[string]any", Description: "Adapter-specific settings", Category: "target"},

		{Name: "database", Type: "string", Default: ":memory:", Description: "Database file, relative to the project root", Category: "sqlite"},
		{Name: "params.busy_timeout", Type: "int", Description: "Milliseconds to wait on a locked database", Category: "sqlite"},
		{Name: "params.foreign_keys", Type: "bool", Description: "Enable foreign key enforcement", Category: "sqlite"},
		{Name: "params.journal_mode", Type: "string", Description: "Journal mode, e.g. wal", Category: "sqlite"},
		{Name: "params.pragmas", Type: "map[string]string", Description: "Extra pragmas applied to every connection", Category: "sqlite"},

		{Name: "host", Type: "string", Default: "localhost", Description: "Database host", Category: "postgres"},
		{Name: "port", Type: "int", Default: "5432", Description: "Database port", Category: "postgres"},
		{Name: "database", Type: "string", Description: "Database name", Category: "postgres"},
		{Name: "user", Type: "string", Description: "Database username", Category: "postgres"},
		{Name: "password", Type: "string", Description: "Database password", Category: "postgres"},
		{Name: "options.sslmode", Type: "string", Default: "disable", Description: "libpq sslmode", Category: "postgres"},
		{Name: "params.native", Type: "bool", Default: "false", Description: "Run queries through a pgx pool instead of database/sql", Category: "postgres"},
		{Name: "params.max_conns", Type: "int", Description: "Native pool size", Category: "postgres"},
	}
}

// fieldRows returns table rows for the fields of one category.
func fieldRows(fields []ConfigField, category string) [][]string {
	var rows [][]string
	for _, f := range fields {
		if f.Category != category {
			continue
		}
		defVal := "-"
		if f.Default != "" {
			defVal = InlineCode(f.Default)
		}
		rows = append(rows, []string{InlineCode(f.Name), f.Type, defVal, f.Description})
	}
	return rows
}

// renderConfigurationDoc renders the configuration reference page.
func renderConfigurationDoc() []byte {
	w := NewMarkdownWriter()
	headers := []string{"Field", "Type", "Default", "Description"}
	fields := getConfigSchema()

	w.Frontmatter("Configuration", "anosql configuration reference")
	w.GeneratedMarker()

	w.Header(1, "Configuration")
	w.Paragraph(fmt.Sprintf("anosql reads %s (or %s) from the working directory or the nearest parent directory. Pass --config to use another file.",
		InlineCode(sharedcfg.ConfigFileName), InlineCode(sharedcfg.ConfigFileNameAlt)))

	w.Header(2, "Project Settings")
	w.Table(headers, fieldRows(fields, "project"))

	w.Header(2, "Target Configuration")
	w.Paragraph("The database used by run and shell is configured under the `target` key.")
	w.Table(headers, fieldRows(fields, "target"))

	w.Header(3, "SQLite")
	w.Table(headers, fieldRows(fields, "sqlite"))
	w.CodeBlock("yaml", `dialect: sqlite
queries: sql
target:
  database: data/app.db
  params:
    busy_timeout: 5000
    foreign_keys: true
    journal_mode: wal`)

	w.Header(3, "PostgreSQL")
	w.Table(headers, fieldRows(fields, "postgres"))
	w.CodeBlock("yaml", `dialect: postgres
queries: sql/queries.sql
target:
  host: db.example.com
  user: app
  password: ${PGPASSWORD}
  database: app
  options:
    sslmode: require
  params:
    native: true`)

	w.Header(2, "Environment Variables")
	w.Paragraph(fmt.Sprintf("Every setting can be overridden with an %s variable. A double underscore separates nested keys, so %s sets %s.",
		InlineCode(config.EnvPrefix+"*"), InlineCode(config.EnvPrefix+"TARGET__DSN"), InlineCode("target.dsn")))
	w.Paragraph("Use `${VAR_NAME}` inside target values to reference environment variables.")

	return w.Bytes()
}
