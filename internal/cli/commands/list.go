package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/anosql/internal/cli/output"
	"github.com/leapstack-labs/anosql/pkg/core"
	"github.com/leapstack-labs/anosql/pkg/queries"
)

// ListOptions holds options for the list command.
type ListOptions struct {
	Kind string // Filter by kind: select, mutate, autogen
}

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	opts := &ListOptions{}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all queries in the query file",
		Long: `List all queries with their kind, result shape and a one-line summary.

Output adapts to environment:
  - Terminal: Styled table
  - Piped/Scripted: Markdown format (agent-friendly)

Use --output to override: auto, text, markdown, json, yaml`,
		Example: `  # List all queries (auto-detect output format)
  anosql list

  # Only inserts that return an id
  anosql list --kind autogen

  # List queries as JSON
  anosql list --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Kind, "kind", "k", "", "Filter by kind: select, mutate, autogen")
	_ = cmd.RegisterFlagCompletionFunc("kind", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"select", "mutate", "autogen"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runList(cmd *cobra.Command, opts *ListOptions) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	filter, err := kindFilter(opts.Kind)
	if err != nil {
		return err
	}

	reg, err := cmdCtx.LoadRegistry()
	if err != nil {
		return err
	}

	var specs []core.Spec
	for _, q := range reg.Queries() {
		if filter(q.Kind) {
			specs = append(specs, q.Spec)
		}
	}

	if ok, err := r.Structured(specs); ok {
		return err
	}
	return listTable(r, reg, specs)
}

// kindFilter returns a predicate accepting every kind for an empty name.
func kindFilter(name string) (func(core.Kind) bool, error) {
	if name == "" {
		return func(core.Kind) bool { return true }, nil
	}
	kind, ok := core.ParseKind(name)
	if !ok {
		return nil, fmt.Errorf("invalid kind %q (expected select, mutate or autogen)", name)
	}
	return func(k core.Kind) bool { return k == kind }, nil
}

func listTable(r *output.Renderer, reg *queries.Registry, specs []core.Spec) error {
	r.Header(1, fmt.Sprintf("Queries (%d of %d, %s)", len(specs), reg.Len(), reg.Dialect()))

	text := r.EffectiveMode() == output.ModeText
	rows := make([][]any, 0, len(specs))
	for _, s := range specs {
		name, kind := s.Name, s.Kind.String()
		if text {
			name = r.Styles().QueryName.Render(name)
			kind = r.Styles().KindLabel(kind)
		}
		shape := "rows"
		switch {
		case s.Kind == core.KindMutate:
			shape = "-"
		case s.Kind == core.KindAutoGen:
			shape = "id"
		case s.ColumnMapping:
			shape = "records"
		}
		rows = append(rows, []any{name, kind, shape, strings.TrimSpace(s.Summary())})
	}

	if len(rows) == 0 {
		r.Muted("no queries")
		return nil
	}
	r.Table([]string{"name", "kind", "returns", "summary"}, rows)
	return nil
}
