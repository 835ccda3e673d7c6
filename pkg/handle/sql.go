package handle

import (
	"context"
	"database/sql"
)

// SQLQuerier is the database/sql statement interface.
// Implemented by *sql.DB, *sql.Tx, and *sql.Conn.
type SQLQuerier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// SQLCursor runs statements on q.
type SQLCursor struct {
	q SQLQuerier
}

// NewSQLCursor returns a cursor over a database/sql querier.
func NewSQLCursor(q SQLQuerier) *SQLCursor {
	return &SQLCursor{q: q}
}

// Query implements Cursor.
func (c *SQLCursor) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	//nolint:rowserrcheck // rows.Err() is checked by the caller after iteration completes
	rows, err := c.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	cols, err := rows.Columns()
	if err != nil {
		_ = rows.Close()
		return nil, err
	}
	return &sqlRows{rows: rows, n: len(cols)}, nil
}

// Exec implements Cursor.
func (c *SQLCursor) Exec(ctx context.Context, query string, args ...any) (Result, error) {
	return c.q.ExecContext(ctx, query, args...)
}

// sqlConnCursor is a cursor over a dedicated *sql.Conn, closed with the cursor.
type sqlConnCursor struct {
	*SQLCursor
	conn *sql.Conn
}

func (c *sqlConnCursor) Close() error {
	return c.conn.Close()
}

// SQLConnection opens cursors on a *sql.DB.
type SQLConnection struct {
	DB *sql.DB
}

// NewSQLConnection returns a Connection over db.
func NewSQLConnection(db *sql.DB) *SQLConnection {
	return &SQLConnection{DB: db}
}

// Cursor implements Connection. Each cursor holds one connection from the
// pool until it is closed.
func (c *SQLConnection) Cursor(ctx context.Context) (CursorCloser, error) {
	conn, err := c.DB.Conn(ctx)
	if err != nil {
		return nil, err
	}
	return &sqlConnCursor{SQLCursor: NewSQLCursor(conn), conn: conn}, nil
}

// sqlRows adapts *sql.Rows to Rows.
type sqlRows struct {
	rows *sql.Rows
	n    int // column count
}

func (r *sqlRows) Columns() ([]string, error) { return r.rows.Columns() }
func (r *sqlRows) Next() bool                 { return r.rows.Next() }
func (r *sqlRows) Err() error                 { return r.rows.Err() }
func (r *sqlRows) Close() error               { return r.rows.Close() }

// Values scans the current row into driver values. Scanning into *any makes
// database/sql copy []byte values, so the result outlives the next call.
func (r *sqlRows) Values() ([]any, error) {
	values := make([]any, r.n)
	ptrs := make([]any, r.n)
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := r.rows.Scan(ptrs...); err != nil {
		return nil, err
	}
	return values, nil
}
