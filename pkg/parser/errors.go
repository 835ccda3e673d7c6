package parser

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors wrapped by ParseError.
var (
	// ErrAnnotationMissing means the first line of a block is not a "-- name:" annotation.
	ErrAnnotationMissing = errors.New(`query does not start with "-- name:"`)
	// ErrEmptyName means nothing is left of the declared name once markers are removed.
	ErrEmptyName = errors.New("query name is empty after removing markers")
)

// ParseError represents a block that does not follow the annotation grammar.
type ParseError struct {
	Block int    // 1-based block index, 0 when unknown
	Line  int    // 1-based source line the block starts on, 0 when unknown
	Name  string // declared name, when the header was readable
	Text  string // offending line
	Err   error
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString("parse error")
	if e.Block > 0 {
		fmt.Fprintf(&b, " in block %d", e.Block)
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, " at line %d", e.Line)
	}
	b.WriteString(": ")
	b.WriteString(e.Err.Error())
	if e.Name != "" {
		fmt.Fprintf(&b, " (name %q)", e.Name)
	} else if e.Text != "" {
		fmt.Fprintf(&b, " (got %q)", e.Text)
	}
	return b.String()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsAnnotationMissing reports whether err is or wraps ErrAnnotationMissing.
func IsAnnotationMissing(err error) bool {
	return errors.Is(err, ErrAnnotationMissing)
}
