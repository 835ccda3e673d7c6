// Package sqlite provides the SQLite dialect.
//
// SQLite understands ":name" markers natively, so statements pass through
// unchanged and named arguments are handed to the driver as sql.NamedArg.
// AutoGen ids come from the driver's last insert rowid.
package sqlite

import (
	"github.com/leapstack-labs/anosql/pkg/dialect"
)

// Name is the registered dialect name.
const Name = "sqlite"

func init() {
	dialect.Register(SQLite)
}

// SQLite is the SQLite dialect.
var SQLite = dialect.NewDialect(Name).Build()
