// Package handle defines the database capabilities queries run against.
//
// A caller passes either something that can run statements directly (a
// Cursor) or something that can produce one (a Connection). Cursors supplied
// by the caller are never closed; cursors produced from a Connection are
// closed after each call. Both are presented to the executor as a Handle.
//
// Implementations are provided for database/sql (*sql.DB, *sql.Tx, *sql.Conn)
// and for pgx (*pgx.Conn, pgx.Tx, *pgxpool.Pool, *pgxpool.Conn). For picks
// the right one for a value.
package handle

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Rows iterates over a query result.
type Rows interface {
	Columns() ([]string, error)
	Next() bool
	// Values returns the current row. The slice is owned by the caller.
	Values() ([]any, error)
	Err() error
	Close() error
}

// Result summarizes an executed statement. sql.Result satisfies it.
type Result interface {
	LastInsertId() (int64, error)
	RowsAffected() (int64, error)
}

// Cursor runs statements.
type Cursor interface {
	Query(ctx context.Context, query string, args ...any) (Rows, error)
	Exec(ctx context.Context, query string, args ...any) (Result, error)
}

// CursorCloser is a Cursor owned by whoever opened it.
type CursorCloser interface {
	Cursor
	Close() error
}

// Connection produces cursors.
type Connection interface {
	Cursor(ctx context.Context) (CursorCloser, error)
}

// Handle hands out a cursor for one call together with the function that
// releases it. The release function must be called exactly once.
type Handle interface {
	Acquire(ctx context.Context) (Cursor, func() error, error)
}

// CursorHandle is a Handle over a caller-owned cursor.
type CursorHandle struct {
	Cursor Cursor
}

// FromCursor returns a Handle that always hands out c and never closes it.
func FromCursor(c Cursor) *CursorHandle {
	return &CursorHandle{Cursor: c}
}

// Acquire implements Handle. Release is a no-op.
func (h *CursorHandle) Acquire(context.Context) (Cursor, func() error, error) {
	return h.Cursor, noRelease, nil
}

func noRelease() error { return nil }

// ConnectionHandle is a Handle that opens a fresh cursor per call.
type ConnectionHandle struct {
	Conn Connection
}

// FromConnection returns a Handle that opens a cursor from c for each call
// and closes it on release.
func FromConnection(c Connection) *ConnectionHandle {
	return &ConnectionHandle{Conn: c}
}

// Acquire implements Handle.
func (h *ConnectionHandle) Acquire(ctx context.Context) (Cursor, func() error, error) {
	cur, err := h.Conn.Cursor(ctx)
	if err != nil {
		return nil, nil, err
	}
	return cur, cur.Close, nil
}

// For wraps v in a Handle. The first matching capability wins:
//
//  1. Handle, returned as is
//  2. Connection, via FromConnection
//  3. *sql.DB, one dedicated *sql.Conn per call
//  4. *pgxpool.Pool, one acquired pool connection per call
//  5. Cursor, via FromCursor
//  6. SQLQuerier (*sql.Tx, *sql.Conn), used directly
//  7. PgxQuerier (*pgx.Conn, pgx.Tx, *pgxpool.Conn), used directly
//
// Anything else returns *UnsupportedHandleError.
func For(v any) (Handle, error) {
	switch h := v.(type) {
	case Handle:
		return h, nil
	case Connection:
		return FromConnection(h), nil
	case *sql.DB:
		return FromConnection(NewSQLConnection(h)), nil
	case *pgxpool.Pool:
		return FromConnection(NewPgxPool(h)), nil
	case Cursor:
		return FromCursor(h), nil
	case SQLQuerier:
		return FromCursor(NewSQLCursor(h)), nil
	case PgxQuerier:
		return FromCursor(NewPgxCursor(h)), nil
	default:
		return nil, &UnsupportedHandleError{Type: fmt.Sprintf("%T", v)}
	}
}

// UnsupportedHandleError is returned by For for values with no known capability.
type UnsupportedHandleError struct {
	Type string
}

func (e *UnsupportedHandleError) Error() string {
	return fmt.Sprintf("unsupported database handle %s: need a cursor, a connection, *sql.DB, *sql.Tx, *sql.Conn or a pgx connection", e.Type)
}
