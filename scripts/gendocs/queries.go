package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/anosql/pkg/core"
	"github.com/leapstack-labs/anosql/pkg/queries"
)

// generateQueryDocs writes queries.md, a catalog of every query in path.
func generateQueryDocs(dialectName, path, outDir string) error {
	log.Printf("Generating query docs for %s to %s", path, outDir)

	reg, err := loadQueries(dialectName, path)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	filename := filepath.Join(outDir, "queries.md")
	if err := os.WriteFile(filename, renderQueryCatalog(filepath.Base(path), reg), 0600); err != nil {
		return err
	}
	log.Printf("  Generated queries.md (%d queries)", reg.Len())
	return nil
}

func loadQueries(dialectName, path string) (*queries.Registry, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return queries.LoadFromDir(dialectName, path)
	}
	return queries.LoadFromPath(dialectName, path)
}

// renderQueryCatalog renders an index table followed by one section per query.
func renderQueryCatalog(source string, reg *queries.Registry) []byte {
	w := NewMarkdownWriter()

	w.Frontmatter("Queries", fmt.Sprintf("Queries loaded from %s", source))
	w.GeneratedMarker()

	w.Header(1, "Queries")
	w.Paragraph(fmt.Sprintf("%d queries from %s, %s dialect.", reg.Len(), InlineCode(source), reg.Dialect()))

	var rows [][]string
	for _, q := range reg.Queries() {
		rows = append(rows, []string{
			fmt.Sprintf("[%s](#%s)", InlineCode(q.Name), anchor(q.Name)),
			q.Kind.String(),
			cleanDescription(q.Summary()),
		})
	}
	w.Table([]string{"Query", "Kind", "Summary"}, rows)

	for _, q := range reg.Queries() {
		writeQuerySection(w, q)
	}

	return w.Bytes()
}

func writeQuerySection(w *MarkdownWriter, q *queries.Query) {
	w.Header(2, q.Name)
	if q.Doc != "" {
		w.Paragraph(q.Doc)
	}

	items := []string{"Kind: " + q.Kind.String()}
	if q.ColumnMapping {
		items = append(items, "Rows: keyed by column name")
	}
	if q.Kind == core.KindAutoGen {
		items = append(items, "Returns: the generated id")
	}
	if len(q.Params) > 0 {
		params := make([]string, len(q.Params))
		for i, p := range q.Params {
			params[i] = InlineCode(p)
		}
		items = append(items, "Params: "+strings.Join(params, ", "))
	}
	w.BulletList(items)

	w.CodeBlock("sql", q.SQL)
}

// anchor mirrors the heading ids markdown renderers generate.
func anchor(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, " ", "-"))
}
