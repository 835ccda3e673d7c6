package commands

import (
	"fmt"

	"github.com/leapstack-labs/anosql/internal/cli/output"
	"github.com/leapstack-labs/anosql/pkg/core"
	"github.com/leapstack-labs/anosql/pkg/executor"
	"github.com/leapstack-labs/anosql/pkg/queries"
)

// mutateOutput is the structured output of a query that returns nothing.
type mutateOutput struct {
	Kind core.Kind `json:"kind" yaml:"kind"`
	OK   bool      `json:"ok" yaml:"ok"`
}

// renderResult writes the outcome of running q.
func renderResult(r *output.Renderer, q *queries.Query, res *executor.Result) error {
	if res == nil {
		if ok, err := r.Structured(mutateOutput{Kind: q.Kind, OK: true}); ok {
			return err
		}
		r.Success(q.Name)
		return nil
	}

	res = displayResult(res)
	if ok, err := r.Structured(res); ok {
		return err
	}

	switch res.Kind {
	case core.KindAutoGen:
		if res.ID == nil {
			r.Muted("no row inserted")
			return nil
		}
		r.Printf("id: %s\n", output.FormatValue(res.ID))
	default:
		rows := res.Rows
		if res.Records != nil {
			rows = recordRows(res.Columns, res.Records)
		}
		if len(rows) == 0 {
			r.Muted("(0 rows)")
			return nil
		}
		r.Table(res.Columns, rows)
		r.Muted(fmt.Sprintf("(%d rows)", len(rows)))
	}
	return nil
}

// recordRows orders record values by columns.
func recordRows(columns []string, records []map[string]any) [][]any {
	rows := make([][]any, len(records))
	for i, rec := range records {
		row := make([]any, len(columns))
		for j, col := range columns {
			row[j] = rec[col]
		}
		rows[i] = row
	}
	return rows
}

// displayResult copies res with byte slices turned into strings, so text
// columns do not print as base64 in JSON.
func displayResult(res *executor.Result) *executor.Result {
	out := *res
	out.ID = displayValue(res.ID)
	if res.Rows != nil {
		out.Rows = make([][]any, len(res.Rows))
		for i, row := range res.Rows {
			r := make([]any, len(row))
			for j, v := range row {
				r[j] = displayValue(v)
			}
			out.Rows[i] = r
		}
	}
	if res.Records != nil {
		out.Records = make([]map[string]any, len(res.Records))
		for i, rec := range res.Records {
			m := make(map[string]any, len(rec))
			for k, v := range rec {
				m[k] = displayValue(v)
			}
			out.Records[i] = m
		}
	}
	return &out
}

func displayValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
