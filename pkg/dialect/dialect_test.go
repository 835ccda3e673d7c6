package dialect_test

import (
	"database/sql"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/anosql/pkg/core"
	"github.com/leapstack-labs/anosql/pkg/dialect"
	"github.com/leapstack-labs/anosql/pkg/dialects/postgres"
	"github.com/leapstack-labs/anosql/pkg/dialects/sqlite"
)

func TestFinalize_SQLite(t *testing.T) {
	d := sqlite.SQLite
	for _, kind := range []core.Kind{core.KindSelect, core.KindMutate, core.KindAutoGen} {
		t.Run(kind.String(), func(t *testing.T) {
			in := "insert into users(name) values (:name);"
			assert.Equal(t, in, d.Finalize(in, kind))
		})
	}
}

func TestFinalize_PostgresAutoGen(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"plain", "insert into users(name) values (:name)"},
		{"semicolon", "insert into users(name) values (:name);"},
		{"whitespace", "insert into users(name) values (:name)   \t"},
		{"semicolon and whitespace", "insert into users(name) values (:name) ; ;  "},
		{"already returning", "insert into users(name) values (:name) RETURNING id"},
		{"already returning lower", "insert into users(name) values (:name) returning id;"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := postgres.Postgres.Finalize(tt.input, core.KindAutoGen)
			assert.Equal(t, "insert into users(name) values (@name) RETURNING id", got)
			assert.Equal(t, 1, strings.Count(strings.ToUpper(got), "RETURNING ID"))
		})
	}
}

func TestFinalize_PostgresNonAutoGen(t *testing.T) {
	got := postgres.Postgres.Finalize("select * from users where id = :id and name::text = :name", core.KindSelect)
	assert.Equal(t, "select * from users where id = @id and name::text = @name", got)

	got = postgres.Postgres.Finalize("delete from users where id = :id;", core.KindMutate)
	assert.Equal(t, "delete from users where id = @id;", got)
}

func TestBind(t *testing.T) {
	t.Run("no args", func(t *testing.T) {
		got, err := sqlite.SQLite.Bind(nil, nil)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("positional", func(t *testing.T) {
		got, err := postgres.Postgres.Bind([]any{1, "a"}, nil)
		require.NoError(t, err)
		assert.Equal(t, []any{1, "a"}, got)
	})

	t.Run("sqlite named", func(t *testing.T) {
		got, err := sqlite.SQLite.Bind([]any{sql.Named("user-id", 7), sql.Named("name", "x")}, []string{"user_id", "name"})
		require.NoError(t, err)
		assert.Equal(t, []any{sql.Named("user_id", 7), sql.Named("name", "x")}, got)
	})

	t.Run("postgres named", func(t *testing.T) {
		got, err := postgres.Postgres.Bind([]any{sql.Named("user-id", 7), sql.Named("name", "x")}, []string{"user_id", "name"})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, pgx.NamedArgs{"user_id": 7, "name": "x"}, got[0])
	})

	t.Run("mixed", func(t *testing.T) {
		_, err := sqlite.SQLite.Bind([]any{1, sql.Named("name", "x")}, []string{"name"})
		require.ErrorIs(t, err, dialect.ErrMixedArguments)
		assert.Contains(t, err.Error(), "1 positional, 1 named")
	})

	t.Run("sqlite positional onto named markers", func(t *testing.T) {
		got, err := sqlite.SQLite.Bind([]any{7, "x"}, []string{"id", "name"})
		require.NoError(t, err)
		assert.Equal(t, []any{sql.Named("id", 7), sql.Named("name", "x")}, got)
	})

	t.Run("postgres positional onto named markers", func(t *testing.T) {
		got, err := postgres.Postgres.Bind([]any{7}, []string{"id"})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, pgx.NamedArgs{"id": 7}, got[0])
	})

	t.Run("positional count mismatch", func(t *testing.T) {
		_, err := sqlite.SQLite.Bind([]any{7}, []string{"id", "name"})
		require.ErrorIs(t, err, dialect.ErrArgumentCount)
		assert.Contains(t, err.Error(), "statement has 2 named parameters, got 1")
	})
}

func TestBuilder_Defaults(t *testing.T) {
	d := dialect.NewDialect("Custom").Build()
	assert.Equal(t, "custom", d.Name)
	assert.Nil(t, d.Placeholder)
	assert.Empty(t, d.Returning)
	assert.Equal(t, dialect.IDFromLastInsert, d.GeneratedID)

	d = dialect.NewDialect("custom").Returning("RETURNING id").Build()
	assert.Equal(t, dialect.IDFromReturning, d.GeneratedID)
}

func TestIDSource_String(t *testing.T) {
	assert.Equal(t, "last_insert_id", dialect.IDFromLastInsert.String())
	assert.Equal(t, "returning", dialect.IDFromReturning.String())
	assert.Equal(t, "unknown", dialect.IDSource(9).String())
}
