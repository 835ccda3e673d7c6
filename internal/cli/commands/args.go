package commands

import (
	"database/sql"
	"regexp"
)

// namedArg matches name=value, where name is a query parameter name.
var namedArg = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_-]*)=(.*)$`)

// parseQueryArgs turns command-line arguments into query arguments:
// name=value becomes sql.Named(name, value) and anything else is positional.
// Values are passed as strings and converted by the database.
func parseQueryArgs(args []string) []any {
	out := make([]any, 0, len(args))
	for _, a := range args {
		if m := namedArg.FindStringSubmatch(a); m != nil {
			out = append(out, sql.Named(m[1], m[2]))
			continue
		}
		out = append(out, a)
	}
	return out
}
