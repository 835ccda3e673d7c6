// Package parser turns annotated SQL text into query definitions.
//
// A source is a sequence of blocks separated by one or more blank lines.
// Each block starts with a name annotation, followed by optional
// documentation comments and the SQL body:
//
//	-- name: get-user-by-id
//	-- Fetch one user.
//	select * from users where id = :id
//
// Markers in the name select the query kind: a trailing "<!" declares an
// AutoGen insert (the name gets an "_auto" suffix), a trailing "!" declares
// a Mutate statement, and a leading "$" asks for rows keyed by column name.
package parser

import (
	"regexp"
	"strings"

	"github.com/leapstack-labs/anosql/pkg/core"
	"github.com/leapstack-labs/anosql/pkg/dialect"
)

var (
	// lineTerminator prefers \r\n, so a CRLF pair is always one terminator.
	lineTerminator = regexp.MustCompile(`\r\n|\r|\n`)

	nameAnnotation = regexp.MustCompile(`^\s*--\s+name\s*:\s*(\S+)`)
	docLine        = regexp.MustCompile(`^\s*--\s(.*)$`)
)

// Block is one raw block of a source.
type Block struct {
	Index int // 1-based
	Line  int // 1-based line the block starts on
	Text  string
}

// Split divides text into blocks at runs of blank lines.
func Split(text string) []Block {
	seps := separators(text)
	blocks := make([]Block, 0, len(seps)+1)

	start, line := 0, 1
	for _, sep := range seps {
		blocks = append(blocks, Block{Index: len(blocks) + 1, Line: line, Text: text[start:sep[0]]})
		line += countLines(text[start:sep[1]])
		start = sep[1]
	}
	blocks = append(blocks, Block{Index: len(blocks) + 1, Line: line, Text: text[start:]})
	return blocks
}

// SplitBlocks divides text into raw block strings at runs of blank lines.
func SplitBlocks(text string) []string {
	blocks := Split(text)
	out := make([]string, len(blocks))
	for i, b := range blocks {
		out[i] = b.Text
	}
	return out
}

// separators returns the spans of every run of two or more line terminators
// that are separated only by spaces and tabs. A span also covers the spaces
// and tabs before its first terminator.
func separators(text string) [][2]int {
	var seps [][2]int
	runStart, runEnd, n := 0, 0, 0
	for _, t := range lineTerminator.FindAllStringIndex(text, -1) {
		if n > 0 && isHorizontalSpace(text[runEnd:t[0]]) {
			runEnd = t[1]
			n++
			continue
		}
		if n >= 2 {
			seps = append(seps, [2]int{runStart, runEnd})
		}
		runStart = t[0]
		for runStart > 0 && (text[runStart-1] == ' ' || text[runStart-1] == '\t') {
			runStart--
		}
		runEnd = t[1]
		n = 1
	}
	if n >= 2 {
		seps = append(seps, [2]int{runStart, runEnd})
	}
	return seps
}

func isHorizontalSpace(s string) bool {
	return strings.Trim(s, " \t") == ""
}

func countLines(s string) int {
	return len(lineTerminator.FindAllStringIndex(s, -1))
}

// Parse parses one block into a finalized Spec.
//
// It returns (nil, nil) for a block without SQL: one that is blank or holds
// only the annotation and documentation lines. A block whose first non-blank
// line is not a name annotation returns a *ParseError wrapping
// ErrAnnotationMissing.
func Parse(block string, d *dialect.Dialect) (*core.Spec, error) {
	lines := trimBlankLines(lineTerminator.Split(block, -1))
	if len(lines) == 0 {
		return nil, nil
	}

	m := nameAnnotation.FindStringSubmatch(lines[0])
	if m == nil {
		return nil, &ParseError{Text: strings.TrimSpace(lines[0]), Err: ErrAnnotationMissing}
	}

	name, kind, columnMapping := parseName(m[1])
	if name == "" {
		return nil, &ParseError{Name: m[1], Err: ErrEmptyName}
	}

	var doc strings.Builder
	i := 1
	for ; i < len(lines); i++ {
		dm := docLine.FindStringSubmatch(lines[i])
		if dm == nil {
			break
		}
		doc.WriteString(dm[1])
		doc.WriteByte('\n')
	}

	body := strings.Join(lines[i:], " ")
	if strings.TrimSpace(body) == "" {
		return nil, nil
	}

	return &core.Spec{
		Name:          name,
		Kind:          kind,
		ColumnMapping: columnMapping,
		Doc:           doc.String(),
		SQL:           d.Finalize(body, kind),
		Params:        dialect.Params(body),
	}, nil
}

// parseName strips the markers from a declared name.
func parseName(token string) (name string, kind core.Kind, columnMapping bool) {
	name = strings.ReplaceAll(token, "-", "_")

	switch {
	case strings.Contains(name, "<!"):
		kind = core.KindAutoGen
		name = strings.ReplaceAll(name, "<!", "") + "_auto"
	case strings.Contains(name, "!"):
		kind = core.KindMutate
	default:
		kind = core.KindSelect
	}
	name = strings.ReplaceAll(name, "!", "")

	columnMapping = strings.HasPrefix(name, "$")
	name = strings.ReplaceAll(name, "$", "")
	return name, kind, columnMapping
}

// trimBlankLines drops whitespace-only lines from both ends.
func trimBlankLines(lines []string) []string {
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
