// Package sqlite provides a SQLite database adapter for anosql, backed by the
// pure Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"log/slog"

	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver

	"github.com/leapstack-labs/anosql/pkg/adapter"
	sqlitedialect "github.com/leapstack-labs/anosql/pkg/dialects/sqlite"
)

// Adapter implements the adapter.Adapter interface for SQLite.
type Adapter struct {
	adapter.BaseSQLAdapter
	Params Params
}

// New creates a new SQLite adapter instance.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{
		BaseSQLAdapter: adapter.BaseSQLAdapter{Logger: logger},
	}
}

// DialectName returns the SQL dialect for this adapter.
func (a *Adapter) DialectName() string {
	return sqlitedialect.Name
}

// Connect opens the database file, or an in-memory database when no path is set.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	params, err := decodeParams(cfg.Params)
	if err != nil {
		return err
	}
	a.Params = params

	dsn := cfg.DSN
	if dsn == "" {
		dsn = buildSQLiteDSN(cfg, params)
	}

	a.Logger.Debug("connecting to sqlite", slog.String("dsn", dsn))

	if err := a.Open(ctx, "sqlite", dsn, cfg); err != nil {
		return err
	}

	if cfg.DSN == "" && (cfg.Database == "" || cfg.Database == MemoryDatabase) {
		// every connection to :memory: opens a separate empty database
		a.Conn.SetMaxOpenConns(1)
	}
	return nil
}
