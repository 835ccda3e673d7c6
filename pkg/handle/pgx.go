package handle

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNoLastInsertID is returned by pgx results, which have no last-insert-id.
// Use a RETURNING clause instead.
var ErrNoLastInsertID = errors.New("last insert id is not supported by pgx; use RETURNING")

// PgxQuerier is the pgx statement interface.
// Implemented by *pgx.Conn, pgx.Tx, *pgxpool.Conn and *pgxpool.Pool.
type PgxQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PgxCursor runs statements on a pgx querier.
type PgxCursor struct {
	q PgxQuerier
}

// NewPgxCursor returns a cursor over q.
func NewPgxCursor(q PgxQuerier) *PgxCursor {
	return &PgxCursor{q: q}
}

// Query implements Cursor.
func (c *PgxCursor) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	rows, err := c.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return &pgxRows{rows: rows}, nil
}

// Exec implements Cursor.
func (c *PgxCursor) Exec(ctx context.Context, query string, args ...any) (Result, error) {
	tag, err := c.q.Exec(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgxResult{tag: tag}, nil
}

// PgxPool opens cursors on acquired pool connections.
type PgxPool struct {
	Pool *pgxpool.Pool
}

// NewPgxPool returns a Connection over pool.
func NewPgxPool(pool *pgxpool.Pool) *PgxPool {
	return &PgxPool{Pool: pool}
}

// Cursor implements Connection. The pool connection is released when the
// cursor is closed.
func (p *PgxPool) Cursor(ctx context.Context) (CursorCloser, error) {
	conn, err := p.Pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return &pgxConnCursor{PgxCursor: NewPgxCursor(conn), conn: conn}, nil
}

type pgxConnCursor struct {
	*PgxCursor
	conn *pgxpool.Conn
}

func (c *pgxConnCursor) Close() error {
	c.conn.Release()
	return nil
}

type pgxResult struct {
	tag pgconn.CommandTag
}

func (r pgxResult) LastInsertId() (int64, error) { return 0, ErrNoLastInsertID }
func (r pgxResult) RowsAffected() (int64, error) { return r.tag.RowsAffected(), nil }

// pgxRows adapts pgx.Rows to Rows.
type pgxRows struct {
	rows pgx.Rows
}

func (r *pgxRows) Columns() ([]string, error) {
	fields := r.rows.FieldDescriptions()
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = f.Name
	}
	return cols, nil
}

func (r *pgxRows) Next() bool             { return r.rows.Next() }
func (r *pgxRows) Values() ([]any, error) { return r.rows.Values() }
func (r *pgxRows) Err() error             { return r.rows.Err() }

func (r *pgxRows) Close() error {
	r.rows.Close()
	return nil
}
