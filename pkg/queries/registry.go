// Package queries loads annotated SQL into a registry of named, runnable
// queries.
//
//	reg, err := queries.LoadFromPath("postgres", "sql/users.sql")
//	if err != nil {
//		return err
//	}
//	h, err := handle.For(pool)
//	if err != nil {
//		return err
//	}
//	res, err := reg.Run(ctx, "get_user_by_id", h, sql.Named("id", 1))
//
// Loading is all-or-nothing: the first malformed block fails the whole load.
// A Registry is immutable once returned and safe for concurrent use.
package queries

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/leapstack-labs/anosql/pkg/core"
	"github.com/leapstack-labs/anosql/pkg/dialect"
	"github.com/leapstack-labs/anosql/pkg/executor"
	"github.com/leapstack-labs/anosql/pkg/handle"
)

// Dispatcher runs one query against a handle.
type Dispatcher func(ctx context.Context, h handle.Handle, args ...any) (*executor.Result, error)

// Query is a registered query.
type Query struct {
	core.Spec
	exec *executor.Executor
}

// Run executes the query on a cursor from h.
//
// Arguments are either all positional or all sql.NamedArg. Select queries
// return rows, AutoGen queries return the generated id, and Mutate queries
// return (nil, nil).
func (q *Query) Run(ctx context.Context, h handle.Handle, args ...any) (*executor.Result, error) {
	return q.exec.Execute(ctx, &q.Spec, h, args...)
}

// Dispatcher returns Run as a function value.
func (q *Query) Dispatcher() Dispatcher {
	return q.Run
}

// clone returns a copy of q that shares no mutable state with it.
func (q *Query) clone() *Query {
	cp := *q
	cp.Params = slices.Clone(q.Params)
	return &cp
}

// Registry maps query names to queries, remembering the order names were
// first declared in.
type Registry struct {
	dialect *dialect.Dialect
	exec    *executor.Executor
	names   []string
	queries map[string]*Query
}

func newRegistry(d *dialect.Dialect, exec *executor.Executor) *Registry {
	return &Registry{
		dialect: d,
		exec:    exec,
		queries: make(map[string]*Query),
	}
}

// register adds spec under its name. A later spec with the same name
// replaces the earlier one but keeps its position.
func (r *Registry) register(spec *core.Spec) (replaced bool) {
	if _, replaced = r.queries[spec.Name]; !replaced {
		r.names = append(r.names, spec.Name)
	}
	r.queries[spec.Name] = &Query{Spec: *spec, exec: r.exec}
	return replaced
}

// Names returns the registered names in declaration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.names))
	copy(names, r.names)
	return names
}

// Queries returns copies of the registered queries in declaration order.
func (r *Registry) Queries() []*Query {
	qs := make([]*Query, len(r.names))
	for i, name := range r.names {
		qs[i] = r.queries[name].clone()
	}
	return qs
}

// Len returns the number of registered queries.
func (r *Registry) Len() int {
	return len(r.names)
}

// Get returns a copy of the query registered under name. Changes to the
// copy do not reach the registry.
func (r *Registry) Get(name string) (*Query, bool) {
	q, ok := r.queries[name]
	if !ok {
		return nil, false
	}
	return q.clone(), true
}

// Dispatcher returns the dispatcher registered under name.
func (r *Registry) Dispatcher(name string) (Dispatcher, bool) {
	q, ok := r.queries[name]
	if !ok {
		return nil, false
	}
	return q.Dispatcher(), true
}

// Run executes the query registered under name.
func (r *Registry) Run(ctx context.Context, name string, h handle.Handle, args ...any) (*executor.Result, error) {
	q, ok := r.queries[name]
	if !ok {
		return nil, &UnknownQueryError{Name: name, Available: r.Names()}
	}
	return q.Run(ctx, h, args...)
}

// Dialect returns the name of the dialect the registry was built for.
func (r *Registry) Dialect() string {
	return r.dialect.Name
}

func (r *Registry) String() string {
	return fmt.Sprintf("queries.Registry(%s)[%s]", r.dialect.Name, strings.Join(r.names, ", "))
}
