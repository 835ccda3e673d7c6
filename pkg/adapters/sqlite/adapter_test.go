package sqlite

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/anosql/internal/testutil"
	"github.com/leapstack-labs/anosql/pkg/adapter"
	"github.com/leapstack-labs/anosql/pkg/queries"
)

func TestBuildSQLiteDSN(t *testing.T) {
	yes := true

	tests := []struct {
		name     string
		config   adapter.Config
		params   Params
		expected string
	}{
		{
			name:     "memory by default",
			expected: ":memory:",
		},
		{
			name:     "plain file",
			config:   adapter.Config{Database: "app.db"},
			expected: "app.db",
		},
		{
			name:     "pragmas",
			config:   adapter.Config{Database: "app.db"},
			params:   Params{BusyTimeout: 5000, ForeignKeys: &yes, JournalMode: "wal"},
			expected: "file:app.db?_pragma=busy_timeout%285000%29&_pragma=foreign_keys%281%29&_pragma=journal_mode%28WAL%29",
		},
		{
			name:     "extra pragmas sorted",
			params:   Params{Pragmas: map[string]string{"synchronous": "normal", "cache_size": "-2000"}},
			expected: "file::memory:?_pragma=cache_size%28-2000%29&_pragma=synchronous%28normal%29",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, buildSQLiteDSN(tt.config, tt.params))
		})
	}
}

func TestDecodeParams(t *testing.T) {
	p, err := decodeParams(map[string]any{"busy_timeout": "250", "foreign_keys": true, "journal_mode": "wal"})
	require.NoError(t, err)
	assert.Equal(t, 250, p.BusyTimeout)
	require.NotNil(t, p.ForeignKeys)
	assert.True(t, *p.ForeignKeys)
	assert.Equal(t, "wal", p.JournalMode)

	_, err = decodeParams(map[string]any{"busytimeout": 1})
	assert.ErrorContains(t, err, "invalid sqlite params")
}

func TestConnect_Memory(t *testing.T) {
	ctx := context.Background()
	a := New(testutil.NewTestLogger(t))
	require.NoError(t, a.Connect(ctx, adapter.Config{Params: map[string]any{"foreign_keys": true}}))
	defer func() { _ = a.Close() }()

	assert.Equal(t, "sqlite", a.DialectName())
	assert.Equal(t, 1, a.DB().Stats().MaxOpenConnections)

	var fk int
	require.NoError(t, a.DB().QueryRowContext(ctx, "pragma foreign_keys").Scan(&fk))
	assert.Equal(t, 1, fk)

	require.NoError(t, a.Exec(ctx, testutil.UsersSchema))

	reg, err := queries.LoadFromString(a.DialectName(), testutil.UsersQueries)
	require.NoError(t, err)

	res, err := reg.Run(ctx, "create_user_auto", a.Handle(), sql.Named("name", "ada"), sql.Named("email", nil))
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.ID)

	res, err = reg.Run(ctx, "get_all_users", a.Handle())
	require.NoError(t, err)
	assert.Len(t, res.Rows, 1)
}

func TestConnect_File(t *testing.T) {
	ctx := context.Background()
	path := t.TempDir() + "/app.db"

	a, err := adapter.Open(ctx, adapter.Config{Type: "sqlite", Database: path}, nil)
	require.NoError(t, err)
	require.NoError(t, a.Exec(ctx, "create table t (id integer primary key)"))
	require.NoError(t, a.Close())

	b, err := adapter.Open(ctx, adapter.Config{Type: "sqlite", Database: path}, nil)
	require.NoError(t, err)
	defer func() { _ = b.Close() }()

	var n int
	require.NoError(t, b.DB().QueryRowContext(ctx, "select count(*) from t").Scan(&n))
	assert.Equal(t, 0, n)
}
