// Package adapter opens database connections for running query registries.
//
// This package contains the contract all database adapters implement and the
// registry they register into. Concrete adapters are in pkg/adapters/
// subdirectories and register themselves from init().
package adapter

import (
	"context"
	"database/sql"

	"github.com/leapstack-labs/anosql/pkg/handle"
)

// Config describes the database to connect to.
type Config struct {
	// Type selects the adapter; it matches the dialect name.
	Type string `mapstructure:"type"`
	// DSN is passed to the driver verbatim and wins over the fields below.
	DSN      string            `mapstructure:"dsn"`
	Database string            `mapstructure:"database"`
	Host     string            `mapstructure:"host"`
	Port     int               `mapstructure:"port"`
	Username string            `mapstructure:"user"`
	Password string            `mapstructure:"password"`
	Options  map[string]string `mapstructure:"options"`
	// Params holds adapter-specific settings, decoded by each adapter.
	Params map[string]any `mapstructure:"params"`
}

// Adapter defines the interface that all database adapters must implement.
type Adapter interface {
	// Connect establishes a connection to the database using the provided config.
	Connect(ctx context.Context, cfg Config) error

	// Close closes the database connection and releases resources.
	Close() error

	// Exec executes a SQL statement that doesn't return rows (e.g., CREATE TABLE).
	Exec(ctx context.Context, sql string) error

	// DB returns the database/sql pool, nil before Connect.
	DB() *sql.DB

	// Handle returns the handle registry queries should run against.
	Handle() handle.Handle

	// DialectName returns the name of the query dialect for this adapter.
	DialectName() string
}
