package testutil

import (
	"database/sql"
	"testing"

	// modernc registers the "sqlite" driver
	_ "modernc.org/sqlite"
)

// OpenSQLite opens a private in-memory SQLite database, runs the given
// statements on it, and closes it when the test ends.
//
// The pool is limited to one connection because every new connection to
// ":memory:" would see an empty database.
func OpenSQLite(t testing.TB, stmts ...string) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("exec %q: %v", stmt, err)
		}
	}
	return db
}
