// Package postgres provides the PostgreSQL dialect.
//
// Parameter markers are rewritten to pgx named-argument syntax (@name) and
// named call arguments are bound as a single pgx.NamedArgs value, which pgx
// resolves both through pgxpool and through its database/sql driver.
// AutoGen statements get a RETURNING id clause and their id is read from the
// returned row.
package postgres

import (
	"database/sql"

	"github.com/jackc/pgx/v5"

	"github.com/leapstack-labs/anosql/pkg/dialect"
)

// Name is the registered dialect name.
const Name = "postgres"

func init() {
	dialect.Register(Postgres)
}

// Postgres is the PostgreSQL dialect.
var Postgres = dialect.NewDialect(Name).
	Placeholder(Placeholder).
	Returning("RETURNING id").
	BindNamed(BindNamed).
	Build()

// Placeholder renders a parameter in pgx named-argument form.
func Placeholder(name string) string {
	return "@" + name
}

// BindNamed collects named arguments into one pgx.NamedArgs.
func BindNamed(args []sql.NamedArg) []any {
	named := make(pgx.NamedArgs, len(args))
	for _, a := range args {
		named[a.Name] = a.Value
	}
	return []any{named}
}
