package main

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/leapstack-labs/anosql/internal/cli/output"
)

// generatedMarker tells readers and tools the page is regenerated.
const generatedMarker = "<!-- Code generated by scripts/gendocs. DO NOT EDIT. -->"

// MarkdownWriter accumulates a markdown document block by block.
// Every block is separated from the next by one blank line.
type MarkdownWriter struct {
	sb strings.Builder
}

// NewMarkdownWriter returns an empty writer.
func NewMarkdownWriter() *MarkdownWriter {
	return &MarkdownWriter{}
}

func (w *MarkdownWriter) block(s string) {
	w.sb.WriteString(s)
	w.sb.WriteString("\n\n")
}

// Frontmatter writes a yaml frontmatter block with title and description.
func (w *MarkdownWriter) Frontmatter(title, description string) {
	w.sb.WriteString("---\n")
	fmt.Fprintf(&w.sb, "title: %q\n", title)
	fmt.Fprintf(&w.sb, "description: %q\n", description)
	w.sb.WriteString("---\n\n")
}

// GeneratedMarker writes the generated-file marker.
func (w *MarkdownWriter) GeneratedMarker() {
	w.block(generatedMarker)
}

// Header writes a header of the given level.
func (w *MarkdownWriter) Header(level int, title string) {
	w.block(output.FormatHeader(level, title))
}

// Paragraph writes a paragraph.
func (w *MarkdownWriter) Paragraph(s string) {
	w.block(strings.TrimSpace(s))
}

// CodeBlock writes a fenced code block.
func (w *MarkdownWriter) CodeBlock(lang, code string) {
	w.block(output.FormatCodeBlock(lang, code))
}

// BulletList writes one bullet per item.
func (w *MarkdownWriter) BulletList(items []string) {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = "- " + item
	}
	w.block(strings.Join(lines, "\n"))
}

// Table writes a markdown table. Empty tables are skipped.
func (w *MarkdownWriter) Table(headers []string, rows [][]string) {
	if len(rows) == 0 {
		return
	}
	t := table.NewWriter()
	t.Style().Format.Header = text.FormatDefault

	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	t.AppendHeader(header)
	for _, row := range rows {
		r := make(table.Row, len(row))
		for i, c := range row {
			r[i] = c
		}
		t.AppendRow(r)
	}
	w.block(t.RenderMarkdown())
}

// Bytes returns the document with a single trailing newline.
func (w *MarkdownWriter) Bytes() []byte {
	return []byte(strings.TrimRight(w.sb.String(), "\n") + "\n")
}

// InlineCode wraps s in backticks.
func InlineCode(s string) string {
	return "`" + s + "`"
}

// cleanDescription collapses whitespace so a description fits one table cell.
func cleanDescription(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
