// Package migrate applies goose SQL migrations to the database queries run
// against, so a project can version its schema next to its query files.
package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/pressly/goose/v3"
)

// ErrNothingToRollBack is returned by Down when no migration is applied.
var ErrNothingToRollBack = errors.New("no applied migration to roll back")

// Migrator runs the migrations found in one directory.
type Migrator struct {
	p   *goose.Provider
	dir string
}

// GooseDialect maps an anosql dialect name to the goose dialect.
func GooseDialect(dialectName string) (goose.Dialect, error) {
	switch dialectName {
	case "sqlite":
		return goose.DialectSQLite3, nil
	case "postgres":
		return goose.DialectPostgres, nil
	default:
		return "", fmt.Errorf("migrations are not supported for dialect %q", dialectName)
	}
}

// New creates a Migrator for the *.sql migrations in dir.
func New(db *sql.DB, dialectName, dir string, logger *slog.Logger) (*Migrator, error) {
	if db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	d, err := GooseDialect(dialectName)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("migrations directory does not exist: %s", dir)
	}

	p, err := goose.NewProvider(d, db, os.DirFS(dir),
		goose.WithSlog(logger),
		goose.WithDisableGlobalRegistry(true),
	)
	if err != nil {
		if errors.Is(err, goose.ErrNoMigrations) {
			return nil, fmt.Errorf("no migrations in %s: %w", dir, err)
		}
		return nil, fmt.Errorf("failed to load migrations: %w", err)
	}

	return &Migrator{p: p, dir: dir}, nil
}

// Dir returns the migrations directory.
func (m *Migrator) Dir() string {
	return m.dir
}

// Up applies every pending migration. The result is empty when the
// database is already current.
func (m *Migrator) Up(ctx context.Context) ([]*goose.MigrationResult, error) {
	results, err := m.p.Up(ctx)
	if err != nil {
		return results, fmt.Errorf("failed to run migrations: %w", err)
	}
	return results, nil
}

// Down rolls back the most recently applied migration.
func (m *Migrator) Down(ctx context.Context) (*goose.MigrationResult, error) {
	res, err := m.p.Down(ctx)
	if errors.Is(err, goose.ErrNoNextVersion) {
		return nil, ErrNothingToRollBack
	}
	if err != nil {
		return nil, fmt.Errorf("failed to roll back migration: %w", err)
	}
	return res, nil
}

// Status lists every migration with its state, in version order.
func (m *Migrator) Status(ctx context.Context) ([]*goose.MigrationStatus, error) {
	return m.p.Status(ctx)
}

// Version returns the current database version, 0 before any migration.
func (m *Migrator) Version(ctx context.Context) (int64, error) {
	return m.p.GetDBVersion(ctx)
}
