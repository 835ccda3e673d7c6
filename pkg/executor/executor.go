// Package executor runs parsed queries against a database handle and shapes
// their results by query kind.
package executor

import (
	"context"
	"log/slog"

	"github.com/leapstack-labs/anosql/pkg/core"
	"github.com/leapstack-labs/anosql/pkg/dialect"
	"github.com/leapstack-labs/anosql/pkg/handle"
)

// Result is the shaped outcome of a Select or AutoGen query.
type Result struct {
	Kind    core.Kind `json:"kind" yaml:"kind"`
	Columns []string  `json:"columns,omitempty" yaml:"columns,omitempty"`
	// Rows holds Select rows as returned by the driver.
	Rows [][]any `json:"rows,omitempty" yaml:"rows,omitempty"`
	// Records holds Select rows keyed by column name, for column-mapped queries.
	Records []map[string]any `json:"records,omitempty" yaml:"records,omitempty"`
	// ID is the generated id of an AutoGen insert, nil when no row was inserted.
	ID any `json:"id,omitempty" yaml:"id,omitempty"`
}

// Executor runs specs for one dialect. It holds no per-call state and is safe
// for concurrent use.
type Executor struct {
	dialect *dialect.Dialect
	logger  *slog.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New creates an executor for d.
func New(d *dialect.Dialect, opts ...Option) *Executor {
	e := &Executor{
		dialect: d,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Dialect returns the dialect the executor runs for.
func (e *Executor) Dialect() *dialect.Dialect {
	return e.dialect
}

// Execute runs spec on a cursor acquired from h.
//
// Select returns all rows. Mutate returns (nil, nil). AutoGen returns the
// generated id. A cursor acquired from h is released before Execute returns.
// Driver errors are returned unchanged.
func (e *Executor) Execute(ctx context.Context, spec *core.Spec, h handle.Handle, args ...any) (res *Result, err error) {
	bound, err := e.dialect.Bind(args, spec.Params)
	if err != nil {
		return nil, err
	}

	cur, release, err := h.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if rerr := release(); rerr != nil && err == nil {
			res, err = nil, rerr
		}
	}()

	e.logger.Debug("executing query",
		slog.String("name", spec.Name),
		slog.String("kind", spec.Kind.String()),
		slog.Int("args", len(bound)))

	switch spec.Kind {
	case core.KindMutate:
		_, err = cur.Exec(ctx, spec.SQL, bound...)
		return nil, err
	case core.KindAutoGen:
		if e.dialect.GeneratedID == dialect.IDFromReturning {
			return e.returningID(ctx, cur, spec, bound)
		}
		return e.lastInsertID(ctx, cur, spec, bound)
	default:
		return e.selectRows(ctx, cur, spec, bound)
	}
}

func (e *Executor) selectRows(ctx context.Context, cur handle.Cursor, spec *core.Spec, args []any) (*Result, error) {
	rows, err := cur.Query(ctx, spec.SQL, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	res := &Result{Kind: spec.Kind, Columns: cols}
	if spec.ColumnMapping {
		res.Records = make([]map[string]any, 0)
	} else {
		res.Rows = make([][]any, 0)
	}

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		if !spec.ColumnMapping {
			res.Rows = append(res.Rows, values)
			continue
		}
		record := make(map[string]any, len(cols))
		for i, col := range cols {
			if i < len(values) {
				record[col] = values[i]
			}
		}
		res.Records = append(res.Records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	e.logger.Debug("query returned rows",
		slog.String("name", spec.Name),
		slog.Int("rows", len(res.Rows)+len(res.Records)))
	return res, nil
}

// returningID reads the id from the first column of the first returned row.
func (e *Executor) returningID(ctx context.Context, cur handle.Cursor, spec *core.Spec, args []any) (*Result, error) {
	rows, err := cur.Query(ctx, spec.SQL, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	res := &Result{Kind: spec.Kind}
	if rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		if len(values) > 0 {
			res.ID = values[0]
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

func (e *Executor) lastInsertID(ctx context.Context, cur handle.Cursor, spec *core.Spec, args []any) (*Result, error) {
	r, err := cur.Exec(ctx, spec.SQL, args...)
	if err != nil {
		return nil, err
	}
	id, err := r.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &Result{Kind: spec.Kind, ID: id}, nil
}
