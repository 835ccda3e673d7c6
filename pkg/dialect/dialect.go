// Package dialect provides SQL dialect finalization for annotated queries.
//
// A Dialect decides how parameter markers are written, whether AutoGen
// statements need a RETURNING clause, where a generated id comes from, and how
// named arguments are handed to the driver. Concrete dialects are registered
// from pkg/dialects/*/ packages.
package dialect

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/leapstack-labs/anosql/pkg/core"
)

// ErrMixedArguments is returned by Bind when positional and named arguments
// are passed to the same call.
var ErrMixedArguments = errors.New("positional and named arguments cannot be mixed")

// ErrArgumentCount is returned by Bind when positional arguments do not match
// the statement's named parameters one to one.
var ErrArgumentCount = errors.New("wrong number of positional arguments")

// IDSource tells the executor where an AutoGen statement's generated id comes from.
type IDSource int

const (
	// IDFromLastInsert reads the id from the driver's last-insert-id after Exec.
	IDFromLastInsert IDSource = iota
	// IDFromReturning reads the first column of the first row returned by the statement.
	IDFromReturning
)

// String returns the string representation of the id source.
func (s IDSource) String() string {
	switch s {
	case IDFromLastInsert:
		return "last_insert_id"
	case IDFromReturning:
		return "returning"
	default:
		return "unknown"
	}
}

// Dialect is the finalization contract for one database family.
type Dialect struct {
	Name string

	// Placeholder renders a named parameter. nil leaves ":name" markers untouched.
	Placeholder func(name string) string

	// Returning is appended to AutoGen statements when non-empty.
	Returning string

	GeneratedID IDSource

	// BindNamed converts named call arguments into driver arguments.
	BindNamed func(args []sql.NamedArg) []any
}

// Finalize applies the dialect's rewriting to a parsed SQL body.
// It must be called exactly once per statement.
func (d *Dialect) Finalize(sqlText string, kind core.Kind) string {
	if kind == core.KindAutoGen && d.Returning != "" {
		sqlText = appendReturning(sqlText, d.Returning)
	}
	if d.Placeholder != nil {
		sqlText = RewriteParams(sqlText, d.Placeholder)
	}
	return sqlText
}

// appendReturning terminates stmt with exactly one " "+clause, dropping
// trailing whitespace and semicolons first.
func appendReturning(stmt, clause string) string {
	stmt = strings.TrimRight(stmt, " \t\r\n;")
	// an existing clause is replaced so the suffix is always spelled the same way
	if n := len(stmt) - len(clause); n > 0 && strings.EqualFold(stmt[n:], clause) && isSpace(stmt[n-1]) {
		stmt = strings.TrimRight(stmt[:n], " \t\r\n;")
	}
	return stmt + " " + clause
}

// Bind prepares call arguments for the driver. params lists the statement's
// named parameters in order of first appearance (core.Spec.Params).
//
// Arguments that are all sql.NamedArg are passed to BindNamed, with hyphens in
// names normalized to underscores the same way parameter markers are.
// Arguments with no sql.NamedArg are bound by position: onto params when the
// statement has named markers, passed through unchanged otherwise. Mixing
// positional and named arguments returns ErrMixedArguments.
func (d *Dialect) Bind(args []any, params []string) ([]any, error) {
	if len(args) == 0 {
		return nil, nil
	}

	named := make([]sql.NamedArg, 0, len(args))
	for _, arg := range args {
		if na, ok := arg.(sql.NamedArg); ok {
			na.Name = NormalizeParam(na.Name)
			named = append(named, na)
		}
	}

	switch len(named) {
	case 0:
		if len(params) == 0 {
			return args, nil
		}
		if len(args) != len(params) {
			return nil, fmt.Errorf("%w: statement has %d named parameters, got %d", ErrArgumentCount, len(params), len(args))
		}
		for i, arg := range args {
			named = append(named, sql.Named(params[i], arg))
		}
		return d.bindNamed(named), nil
	case len(args):
		return d.bindNamed(named), nil
	default:
		return nil, fmt.Errorf("%w: %d positional, %d named", ErrMixedArguments, len(args)-len(named), len(named))
	}
}

func (d *Dialect) bindNamed(named []sql.NamedArg) []any {
	if d.BindNamed == nil {
		return PassNamed(named)
	}
	return d.BindNamed(named)
}

// PassNamed is a BindNamed implementation for drivers that resolve
// sql.NamedArg themselves.
func PassNamed(named []sql.NamedArg) []any {
	out := make([]any, len(named))
	for i, na := range named {
		out[i] = na
	}
	return out
}

// NormalizeParam maps a parameter name to the form used in finalized SQL.
func NormalizeParam(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}

// =============================================================================
// Builder
// =============================================================================

// Builder provides a fluent API for constructing dialects.
type Builder struct {
	d *Dialect
}

// NewDialect starts building a dialect with the given name.
// Without further options the dialect leaves markers untouched, adds no
// RETURNING clause, and reads generated ids from the last insert.
func NewDialect(name string) *Builder {
	return &Builder{d: &Dialect{
		Name:        strings.ToLower(name),
		GeneratedID: IDFromLastInsert,
		BindNamed:   PassNamed,
	}}
}

// Placeholder sets how named parameter markers are rendered.
func (b *Builder) Placeholder(fn func(name string) string) *Builder {
	b.d.Placeholder = fn
	return b
}

// Returning sets the clause appended to AutoGen statements and switches the
// id source to the returned row.
func (b *Builder) Returning(clause string) *Builder {
	b.d.Returning = clause
	b.d.GeneratedID = IDFromReturning
	return b
}

// BindNamed sets the named argument conversion.
func (b *Builder) BindNamed(fn func([]sql.NamedArg) []any) *Builder {
	b.d.BindNamed = fn
	return b
}

// Build returns the constructed dialect.
func (b *Builder) Build() *Dialect {
	return b.d
}
