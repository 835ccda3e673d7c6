package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/anosql/internal/cli/output"
	"github.com/leapstack-labs/anosql/pkg/adapter"
	"github.com/leapstack-labs/anosql/pkg/queries"
)

const shellPrompt = "anosql> "

// NewShellCommand creates the shell command.
func NewShellCommand() *cobra.Command {
	opts := &RunOptions{}
	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Run queries interactively",
		Long: `Start an interactive session against the configured database.

Type a query name followed by its arguments to run it. Arguments follow the
same rules as 'anosql run'. Tab completes query names.`,
		Example: `  anosql shell
  anosql shell --setup schema.sql`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runShell(cmd, opts)
		},
	}

	cmd.Flags().StringArrayVar(&opts.Setup, "setup", nil, "SQL script to execute before the session starts (repeatable)")

	return cmd
}

// shellSession holds the state of one interactive session.
type shellSession struct {
	reg *queries.Registry
	db  adapter.Adapter
	r   *output.Renderer
	out io.Writer
}

func runShell(cmd *cobra.Command, opts *RunOptions) error {
	ctx := cmd.Context()
	cmdCtx := NewCommandContext(cmd)

	reg, err := cmdCtx.LoadRegistry()
	if err != nil {
		return err
	}

	a, err := cmdCtx.OpenAdapter(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if err := runSetup(ctx, a, opts.Setup, cmdCtx.Logger); err != nil {
		return err
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          shellPrompt,
		HistoryFile:     historyFile(),
		AutoComplete:    newQueryCompleter(reg),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
		Stdout:          cmd.OutOrStdout(),
		Stderr:          cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize shell: %w", err)
	}
	defer func() { _ = rl.Close() }()

	s := &shellSession{reg: reg, db: a, r: cmdCtx.Renderer, out: cmd.OutOrStdout()}

	_, _ = fmt.Fprintf(s.out, "anosql shell (%s, %d queries)\n", reg.Dialect(), reg.Len())
	_, _ = fmt.Fprintln(s.out, "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(s.out)

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		if quit := s.handleLine(ctx, line); quit {
			return nil
		}
	}
}

// handleLine runs one line of input and reports whether the session should end.
// Errors are printed, never returned, so one bad line does not end the session.
func (s *shellSession) handleLine(ctx context.Context, line string) (quit bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "--") {
		return false
	}

	if strings.HasPrefix(line, ".") {
		return s.handleDotCommand(ctx, line)
	}

	fields := strings.Fields(line)
	q, ok := s.reg.Get(fields[0])
	if !ok {
		s.r.Error((&queries.UnknownQueryError{Name: fields[0], Available: s.reg.Names()}).Error())
		return false
	}
	if err := execAndRender(ctx, s.r, s.db, q, fields[1:]); err != nil {
		s.r.Error(err.Error())
	}
	return false
}

func (s *shellSession) handleDotCommand(ctx context.Context, line string) bool {
	command, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(command) {
	case ".quit", ".exit":
		return true

	case ".help":
		printShellHelp(s.out)

	case ".list":
		specs := make([]any, 0, s.reg.Len())
		rows := make([][]any, 0, s.reg.Len())
		for _, q := range s.reg.Queries() {
			specs = append(specs, q.Spec)
			rows = append(rows, []any{q.Name, q.Kind.String(), q.Summary()})
		}
		if ok, err := s.r.Structured(specs); ok {
			if err != nil {
				s.r.Error(err.Error())
			}
			return false
		}
		s.r.Table([]string{"name", "kind", "summary"}, rows)

	case ".show":
		if rest == "" {
			s.r.Error("usage: .show <name>")
			return false
		}
		if err := showQuery(s.r, s.reg, rest); err != nil {
			s.r.Error(err.Error())
		}

	case ".exec":
		if rest == "" {
			s.r.Error("usage: .exec <sql>")
			return false
		}
		if err := s.db.Exec(ctx, rest); err != nil {
			s.r.Error(err.Error())
			return false
		}
		s.r.Success("ok")

	default:
		s.r.Error(fmt.Sprintf("unknown command: %s (type .help for commands)", command))
	}
	return false
}

func printShellHelp(w io.Writer) {
	help := `
Commands:
  <name> [args...]  Run a query (name=value for named parameters)
  .list             List queries
  .show <name>      Show a query's documentation and SQL
  .exec <sql>       Execute raw SQL, e.g. to create tables
  .help             Show this help message
  .quit / .exit     Exit the shell

Tips:
  - Use arrow keys to navigate history
  - Tab completion works for query names
`
	_, _ = fmt.Fprintln(w, help)
}

// newQueryCompleter creates a readline completer for query names.
func newQueryCompleter(reg *queries.Registry) *readline.PrefixCompleter {
	var items []readline.PrefixCompleterInterface
	for _, name := range reg.Names() {
		items = append(items, readline.PcItem(name))
	}

	showItems := make([]readline.PrefixCompleterInterface, 0, reg.Len())
	for _, name := range reg.Names() {
		showItems = append(showItems, readline.PcItem(name))
	}

	items = append(items,
		readline.PcItem(".help"),
		readline.PcItem(".list"),
		readline.PcItem(".show", showItems...),
		readline.PcItem(".exec"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)

	return readline.NewPrefixCompleter(items...)
}

// historyFile returns the shell history path in the user cache directory,
// or "" to disable history.
func historyFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	dir = filepath.Join(dir, "anosql")
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return ""
	}
	return filepath.Join(dir, "shell_history")
}
