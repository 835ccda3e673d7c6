package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/anosql/internal/cli/output"
	"github.com/leapstack-labs/anosql/pkg/core"
	"github.com/leapstack-labs/anosql/pkg/queries"
)

// showOutput is the structured form of a single query.
type showOutput struct {
	core.Spec `yaml:",inline"`
	Dialect   string `json:"dialect" yaml:"dialect"`
}

// NewShowCommand creates the show command.
func NewShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Show a query's documentation, parameters and final SQL",
		Long: `Show one query as it will be executed: its documentation, kind,
named parameters, and the SQL after dialect rewriting.`,
		Example: `  anosql show get_user_by_id
  anosql show create_user_auto --dialect postgres`,
		Args: cobra.ExactArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			return completeQueryNames(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx := NewCommandContext(cmd)
			reg, err := cmdCtx.LoadRegistry()
			if err != nil {
				return err
			}
			return showQuery(cmdCtx.Renderer, reg, args[0])
		},
	}
}

func showQuery(r *output.Renderer, reg *queries.Registry, name string) error {
	q, ok := reg.Get(name)
	if !ok {
		return &queries.UnknownQueryError{Name: name, Available: reg.Names()}
	}

	if ok, err := r.Structured(showOutput{Spec: q.Spec, Dialect: reg.Dialect()}); ok {
		return err
	}

	params := "none"
	if len(q.Params) > 0 {
		params = strings.Join(q.Params, ", ")
	}

	if r.EffectiveMode() == output.ModeMarkdown {
		r.Println(output.FormatHeader(1, q.Name))
		r.Println("")
		if q.Doc != "" {
			r.Println(strings.TrimRight(q.Doc, "\n"))
			r.Println("")
		}
		r.Println(output.FormatKeyValue("Kind", q.Kind.String()))
		r.Println(output.FormatKeyValue("Column mapping", fmt.Sprintf("%t", q.ColumnMapping)))
		r.Println(output.FormatKeyValue("Params", params))
		r.Println("")
		r.Println(output.FormatCodeBlock("sql", q.SQL))
		return nil
	}

	styles := r.Styles()
	r.Println(styles.QueryName.Render(q.Name))
	if q.Doc != "" {
		r.Println(styles.Muted.Render(strings.TrimRight(q.Doc, "\n")))
	}
	r.Println("")
	r.Printf("%s %s\n", styles.Bold.Render("kind:   "), styles.KindLabel(q.Kind.String()))
	r.Printf("%s %t\n", styles.Bold.Render("mapping:"), q.ColumnMapping)
	r.Printf("%s %s\n", styles.Bold.Render("params: "), params)
	r.Println("")
	r.Println(q.SQL)
	return nil
}

// completeQueryNames offers query names from the configured file.
func completeQueryNames(cmd *cobra.Command, args []string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	reg, err := NewCommandContext(cmd).LoadRegistry()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return reg.Names(), cobra.ShellCompDirectiveNoFileComp
}
