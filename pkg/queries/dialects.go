package queries

import (
	_ "github.com/leapstack-labs/anosql/pkg/dialects/postgres" // Register postgres dialect
	_ "github.com/leapstack-labs/anosql/pkg/dialects/sqlite"   // Register sqlite dialect
)
