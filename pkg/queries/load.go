package queries

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"sort"

	"github.com/leapstack-labs/anosql/pkg/dialect"
	"github.com/leapstack-labs/anosql/pkg/executor"
	"github.com/leapstack-labs/anosql/pkg/parser"
)

// Option configures loading.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger for load and execution debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// loader builds one registry from one or more sources.
type loader struct {
	reg    *Registry
	logger *slog.Logger
}

func newLoader(dialectName string, opts []Option) (*loader, error) {
	o := &options{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(o)
	}

	d, err := dialect.Lookup(dialectName)
	if err != nil {
		return nil, err
	}

	exec := executor.New(d, executor.WithLogger(o.logger))
	return &loader{reg: newRegistry(d, exec), logger: o.logger}, nil
}

// add parses every block of text into the registry. source names the text in
// log output.
func (l *loader) add(source, text string) error {
	for _, b := range parser.Split(text) {
		spec, err := parser.Parse(b.Text, l.reg.dialect)
		if err != nil {
			var perr *parser.ParseError
			if errors.As(err, &perr) {
				perr.Block, perr.Line = b.Index, b.Line
			}
			return err
		}
		if spec == nil {
			l.logger.Debug("skipping block without SQL",
				slog.String("source", source),
				slog.Int("block", b.Index),
				slog.Int("line", b.Line))
			continue
		}

		if l.reg.register(spec) {
			l.logger.Debug("query redefined, later definition wins",
				slog.String("source", source),
				slog.String("name", spec.Name),
				slog.Int("line", b.Line))
		} else {
			l.logger.Debug("registered query",
				slog.String("source", source),
				slog.String("name", spec.Name),
				slog.String("kind", spec.Kind.String()))
		}
	}
	return nil
}

// LoadFromString builds a registry from annotated SQL text.
func LoadFromString(dialectName, text string, opts ...Option) (*Registry, error) {
	l, err := newLoader(dialectName, opts)
	if err != nil {
		return nil, err
	}
	if err := l.add("<string>", text); err != nil {
		return nil, err
	}
	return l.reg, nil
}

// LoadFromPath builds a registry from an annotated SQL file. An unreadable
// file returns *LoadError. Parse errors are prefixed with the path.
func LoadFromPath(dialectName, filePath string, opts ...Option) (*Registry, error) {
	l, err := newLoader(dialectName, opts)
	if err != nil {
		return nil, err
	}

	content, err := os.ReadFile(filePath) //nolint:gosec // G304: the caller chooses which query file to load
	if err != nil {
		return nil, &LoadError{Path: filePath, Err: err}
	}
	if err := l.add(filePath, string(content)); err != nil {
		return nil, fmt.Errorf("%s: %w", filePath, err)
	}
	return l.reg, nil
}

// LoadFromFS builds a registry from name in fsys, such as an embed.FS. If name
// is a directory, every *.sql file directly inside it is loaded in lexical
// order into the one registry.
func LoadFromFS(fsys fs.FS, dialectName, name string, opts ...Option) (*Registry, error) {
	l, err := newLoader(dialectName, opts)
	if err != nil {
		return nil, err
	}
	if err := l.addFS(fsys, name, name); err != nil {
		return nil, err
	}
	return l.reg, nil
}

// LoadFromDir builds a registry from every *.sql file directly inside dir,
// in lexical order. Later files may redefine names from earlier ones.
func LoadFromDir(dialectName, dir string, opts ...Option) (*Registry, error) {
	l, err := newLoader(dialectName, opts)
	if err != nil {
		return nil, err
	}
	if err := l.addFS(os.DirFS(dir), ".", dir); err != nil {
		return nil, err
	}
	return l.reg, nil
}

// addFS loads name from fsys. display replaces name in errors.
func (l *loader) addFS(fsys fs.FS, name, display string) error {
	info, err := fs.Stat(fsys, name)
	if err != nil {
		return &LoadError{Path: display, Err: err}
	}
	if !info.IsDir() {
		return l.addFile(fsys, name, display)
	}

	files, err := fs.Glob(fsys, path.Join(name, "*.sql"))
	if err != nil {
		return &LoadError{Path: display, Err: err}
	}
	sort.Strings(files)
	if len(files) == 0 {
		l.logger.Debug("no query files found", slog.String("dir", display))
	}
	for _, file := range files {
		if err := l.addFile(fsys, file, path.Join(display, path.Base(file))); err != nil {
			return err
		}
	}
	return nil
}

func (l *loader) addFile(fsys fs.FS, name, display string) error {
	content, err := fs.ReadFile(fsys, name)
	if err != nil {
		return &LoadError{Path: display, Err: err}
	}
	if err := l.add(display, string(content)); err != nil {
		return fmt.Errorf("%s: %w", display, err)
	}
	return nil
}
