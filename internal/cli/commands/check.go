package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/anosql/internal/cli/output"
)

// CheckOptions holds options for the check command.
type CheckOptions struct {
	Watch bool
}

// checkResult is the outcome of loading one path.
type checkResult struct {
	Path    string `json:"path" yaml:"path"`
	Queries int    `json:"queries" yaml:"queries"`
	Error   string `json:"error,omitempty" yaml:"error,omitempty"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	opts := &CheckOptions{}
	cmd := &cobra.Command{
		Use:   "check [paths...]",
		Short: "Validate query files",
		Long: `Parse query files without touching a database.

Each path is a query file or a directory of *.sql files. Without arguments the
configured queries path is checked. Files are checked concurrently; the command
fails if any of them does not load.

With --watch, files are checked again whenever they change.`,
		Example: `  # Check the configured queries
  anosql check

  # Check several files for postgres
  anosql check -d postgres sql/users.sql sql/orders.sql

  # Re-check on every save
  anosql check --watch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx := NewCommandContext(cmd)
			paths := args
			if len(paths) == 0 {
				paths = []string{cmdCtx.Cfg.Queries}
			}

			if opts.Watch {
				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
				defer stop()
				return watchPaths(ctx, cmdCtx, paths)
			}

			results := checkPaths(cmd.Context(), cmdCtx.Cfg.Dialect, paths, cmdCtx.Logger)
			return reportCheck(cmdCtx.Renderer, results)
		},
	}

	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Re-check when files change")

	return cmd
}

// checkPaths loads every path concurrently. Results keep the order of paths.
func checkPaths(ctx context.Context, dialectName string, paths []string, logger *slog.Logger) []checkResult {
	results := make([]checkResult, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		g.Go(func() error {
			results[i] = checkResult{Path: path}
			if err := ctx.Err(); err != nil {
				results[i].Error = err.Error()
				return nil
			}
			reg, err := loadRegistry(dialectName, path, logger)
			if err != nil {
				results[i].Error = err.Error()
				return nil
			}
			results[i].Queries = reg.Len()
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// reportCheck renders results and returns an error when any path failed.
func reportCheck(r *output.Renderer, results []checkResult) error {
	failed := 0
	for _, res := range results {
		if res.Error != "" {
			failed++
		}
	}

	if ok, err := r.Structured(results); ok {
		if err != nil {
			return err
		}
	} else {
		for _, res := range results {
			if res.Error != "" {
				r.Fail(fmt.Sprintf("%s: %s", res.Path, res.Error))
				continue
			}
			r.Success(fmt.Sprintf("%s (%d queries)", res.Path, res.Queries))
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d paths failed to load", failed, len(results))
	}
	return nil
}

// watchPaths checks paths, then checks them again on every write until ctx
// is done. Directories are watched for new and changed files.
func watchPaths(ctx context.Context, cmdCtx *CommandContext, paths []string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	for _, p := range paths {
		dir := p
		if info, err := os.Stat(p); err != nil || !info.IsDir() {
			dir = filepath.Dir(p)
		}
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	r := cmdCtx.Renderer
	recheck := func() {
		results := checkPaths(ctx, cmdCtx.Cfg.Dialect, paths, cmdCtx.Logger)
		if err := reportCheck(r, results); err != nil {
			r.Error(err.Error())
		}
	}
	recheck()
	r.Muted("watching for changes (Ctrl+C to stop)")

	// Editors often write a file in several steps; wait for them to settle.
	const settle = 100 * time.Millisecond
	var timer <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !watched(ev, paths) {
				continue
			}
			cmdCtx.Logger.Debug("query file changed", slog.String("path", ev.Name), slog.String("op", ev.Op.String()))
			timer = time.After(settle)
		case <-timer:
			timer = nil
			recheck()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			if !errors.Is(err, fsnotify.ErrEventOverflow) {
				return fmt.Errorf("watch failed: %w", err)
			}
		}
	}
}

// watched reports whether ev touches one of paths or a .sql file in a
// watched directory.
func watched(ev fsnotify.Event, paths []string) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
		return false
	}
	name := filepath.Clean(ev.Name)
	for _, p := range paths {
		p = filepath.Clean(p)
		if name == p {
			return true
		}
		if filepath.Dir(name) == p && filepath.Ext(name) == ".sql" {
			return true
		}
	}
	return false
}
