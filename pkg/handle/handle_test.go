package handle

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

// stubCursor records whether it was closed.
type stubCursor struct {
	closed int
}

func (c *stubCursor) Query(context.Context, string, ...any) (Rows, error)  { return nil, nil }
func (c *stubCursor) Exec(context.Context, string, ...any) (Result, error) { return nil, nil }
func (c *stubCursor) Close() error {
	c.closed++
	return nil
}

type stubConnection struct {
	cursor *stubCursor
	err    error
}

func (c *stubConnection) Cursor(context.Context) (CursorCloser, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.cursor, nil
}

func TestFromCursor_NeverCloses(t *testing.T) {
	cur := &stubCursor{}
	h := FromCursor(cur)

	got, release, err := h.Acquire(context.Background())
	require.NoError(t, err)
	assert.Same(t, cur, got)
	require.NoError(t, release())
	assert.Equal(t, 0, cur.closed)
}

func TestFromConnection_ClosesOnRelease(t *testing.T) {
	cur := &stubCursor{}
	h := FromConnection(&stubConnection{cursor: cur})

	got, release, err := h.Acquire(context.Background())
	require.NoError(t, err)
	assert.Same(t, cur, got)
	assert.Equal(t, 0, cur.closed)
	require.NoError(t, release())
	assert.Equal(t, 1, cur.closed)
}

func TestFromConnection_CursorError(t *testing.T) {
	boom := errors.New("boom")
	h := FromConnection(&stubConnection{err: boom})

	_, release, err := h.Acquire(context.Background())
	assert.Same(t, boom, err)
	assert.Nil(t, release)
}

func TestFor(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	tx, err := db.Begin()
	require.NoError(t, err)

	cur := &stubCursor{}
	conn := &stubConnection{cursor: cur}
	existing := FromCursor(cur)

	tests := []struct {
		name  string
		value any
		check func(t *testing.T, h Handle)
	}{
		{"handle", existing, func(t *testing.T, h Handle) {
			assert.Same(t, existing, h)
		}},
		{"connection", conn, func(t *testing.T, h Handle) {
			ch, ok := h.(*ConnectionHandle)
			require.True(t, ok)
			assert.Same(t, conn, ch.Conn)
		}},
		{"sql.DB", db, func(t *testing.T, h Handle) {
			ch, ok := h.(*ConnectionHandle)
			require.True(t, ok)
			assert.IsType(t, &SQLConnection{}, ch.Conn)
		}},
		{"cursor", cur, func(t *testing.T, h Handle) {
			ch, ok := h.(*CursorHandle)
			require.True(t, ok)
			assert.Same(t, cur, ch.Cursor)
		}},
		{"sql.Tx", tx, func(t *testing.T, h Handle) {
			ch, ok := h.(*CursorHandle)
			require.True(t, ok)
			assert.IsType(t, &SQLCursor{}, ch.Cursor)
		}},
		{"pgx querier", &fakePgx{}, func(t *testing.T, h Handle) {
			ch, ok := h.(*CursorHandle)
			require.True(t, ok)
			assert.IsType(t, &PgxCursor{}, ch.Cursor)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := For(tt.value)
			require.NoError(t, err)
			tt.check(t, h)
		})
	}
}

func TestFor_Unsupported(t *testing.T) {
	for _, v := range []any{"not a handle", 42, nil} {
		_, err := For(v)
		var unsupported *UnsupportedHandleError
		require.ErrorAs(t, err, &unsupported)
	}

	_, err := For(3.5)
	assert.Contains(t, err.Error(), "unsupported database handle float64")
}

func TestSQLCursor_Query(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery("select id, name from users where id = ?").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(int64(1), []byte("ada")).
			AddRow(int64(2), nil))

	rows, err := NewSQLCursor(db).Query(context.Background(), "select id, name from users where id = ?", 1)
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name"}, cols)

	var got [][]any
	for rows.Next() {
		v, err := rows.Values()
		require.NoError(t, err)
		got = append(got, v)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, [][]any{{int64(1), []byte("ada")}, {int64(2), nil}}, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLCursor_QueryZeroColumns(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery("select from users").
		WillReturnRows(sqlmock.NewRows([]string{}).AddRow().AddRow())

	rows, err := NewSQLCursor(db).Query(context.Background(), "select from users")
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()

	n := 0
	for rows.Next() {
		v, err := rows.Values()
		require.NoError(t, err)
		assert.Empty(t, v)
		n++
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, 2, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLCursor_Exec(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec("insert into users(name) values (?)").
		WithArgs("ada").
		WillReturnResult(sqlmock.NewResult(7, 1))

	res, err := NewSQLCursor(db).Exec(context.Background(), "insert into users(name) values (?)", "ada")
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLConnection_CursorPerCall(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec("delete from users").WillReturnResult(sqlmock.NewResult(0, 3))

	h := FromConnection(NewSQLConnection(db))
	cur, release, err := h.Acquire(context.Background())
	require.NoError(t, err)

	res, err := cur.Exec(context.Background(), "delete from users")
	require.NoError(t, err)
	n, err := res.RowsAffected()
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	require.NoError(t, release())
	// the dedicated connection went back to the pool
	assert.Equal(t, 0, db.Stats().InUse)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLConnection_ContextCanceled(t *testing.T) {
	db, _ := newMock(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := FromConnection(NewSQLConnection(db)).Acquire(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

// =============================================================================
// pgx
// =============================================================================

type fakePgx struct {
	rows     pgx.Rows
	tag      pgconn.CommandTag
	err      error
	lastSQL  string
	lastArgs []any
}

func (f *fakePgx) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	f.lastSQL, f.lastArgs = sql, args
	return f.rows, f.err
}

func (f *fakePgx) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.lastSQL, f.lastArgs = sql, args
	return f.tag, f.err
}

// fakeRows is an in-memory pgx.Rows.
type fakeRows struct {
	cols   []string
	data   [][]any
	i      int
	closed bool
}

func (r *fakeRows) Close()                        { r.closed = true }
func (r *fakeRows) Err() error                    { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag { return pgconn.NewCommandTag("SELECT") }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription {
	fields := make([]pgconn.FieldDescription, len(r.cols))
	for i, c := range r.cols {
		fields[i] = pgconn.FieldDescription{Name: c}
	}
	return fields
}
func (r *fakeRows) Next() bool {
	if r.i >= len(r.data) {
		return false
	}
	r.i++
	return true
}
func (r *fakeRows) Scan(...any) error      { return errors.New("not implemented") }
func (r *fakeRows) Values() ([]any, error) { return r.data[r.i-1], nil }
func (r *fakeRows) RawValues() [][]byte    { return nil }
func (r *fakeRows) Conn() *pgx.Conn        { return nil }

func TestPgxCursor_Query(t *testing.T) {
	rows := &fakeRows{cols: []string{"id", "name"}, data: [][]any{{int32(1), "ada"}}}
	q := &fakePgx{rows: rows}
	args := pgx.NamedArgs{"id": 1}

	got, err := NewPgxCursor(q).Query(context.Background(), "select id, name from users where id = @id", args)
	require.NoError(t, err)
	assert.Equal(t, []any{args}, q.lastArgs)

	cols, err := got.Columns()
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name"}, cols)

	require.True(t, got.Next())
	v, err := got.Values()
	require.NoError(t, err)
	assert.Equal(t, []any{int32(1), "ada"}, v)
	assert.False(t, got.Next())
	require.NoError(t, got.Err())
	require.NoError(t, got.Close())
	assert.True(t, rows.closed)
}

func TestPgxCursor_Exec(t *testing.T) {
	q := &fakePgx{tag: pgconn.NewCommandTag("UPDATE 4")}

	res, err := NewPgxCursor(q).Exec(context.Background(), "update users set active = true")
	require.NoError(t, err)

	n, err := res.RowsAffected()
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	_, err = res.LastInsertId()
	assert.ErrorIs(t, err, ErrNoLastInsertID)
}

func TestPgxCursor_ErrorsPassThrough(t *testing.T) {
	boom := &pgconn.PgError{Code: "23505", Message: "duplicate key"}
	q := &fakePgx{err: boom}

	_, err := NewPgxCursor(q).Query(context.Background(), "select 1")
	assert.Same(t, boom, err)

	_, err = NewPgxCursor(q).Exec(context.Background(), "select 1")
	assert.Same(t, boom, err)
}
