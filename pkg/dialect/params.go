package dialect

import "strings"

// RewriteParams replaces every ":name" parameter marker in sqlText with
// render(name). Names have hyphens normalized to underscores before render is
// called.
//
// Text inside single-quoted strings, double-quoted identifiers, line and block
// comments, and dollar-quoted bodies is copied unchanged, as are "::type" casts.
func RewriteParams(sqlText string, render func(name string) string) string {
	var b strings.Builder
	b.Grow(len(sqlText))

	s := newParamScanner(sqlText)
	last := 0
	s.scan(func(start, end int, name string) {
		b.WriteString(sqlText[last:start])
		b.WriteString(render(name))
		last = end
	})
	b.WriteString(sqlText[last:])
	return b.String()
}

// Params returns the distinct parameter names in sqlText in order of first
// appearance, normalized the same way RewriteParams normalizes them.
func Params(sqlText string) []string {
	var names []string
	seen := make(map[string]bool)
	newParamScanner(sqlText).scan(func(_, _ int, name string) {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	})
	return names
}

// paramScanner walks SQL text looking for ":name" markers.
type paramScanner struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      byte // current char under examination
}

func newParamScanner(input string) *paramScanner {
	s := &paramScanner{input: input}
	s.readChar()
	return s
}

// readChar advances to the next character.
func (s *paramScanner) readChar() {
	if s.readPos >= len(s.input) {
		s.ch = 0
	} else {
		s.ch = s.input[s.readPos]
	}
	s.pos = s.readPos
	s.readPos++
}

// peekChar returns the next character without advancing.
func (s *paramScanner) peekChar() byte {
	if s.readPos >= len(s.input) {
		return 0
	}
	return s.input[s.readPos]
}

// prevChar returns the character before the current one, or 0 at the start.
func (s *paramScanner) prevChar() byte {
	if s.pos == 0 || s.pos > len(s.input) {
		return 0
	}
	return s.input[s.pos-1]
}

func (s *paramScanner) eof() bool {
	return s.pos >= len(s.input)
}

// scan calls onParam with the byte span [start, end) and normalized name of
// every marker.
func (s *paramScanner) scan(onParam func(start, end int, name string)) {
	for !s.eof() {
		switch {
		case s.ch == '\'':
			s.skipString(false)
		case (s.ch == 'E' || s.ch == 'e') && s.peekChar() == '\'' && !isIdentChar(s.prevChar()):
			s.readChar()
			s.skipString(true)
		case s.ch == '"':
			s.skipQuotedIdentifier()
		case s.ch == '-' && s.peekChar() == '-':
			s.skipLineComment()
		case s.ch == '/' && s.peekChar() == '*':
			s.skipBlockComment()
		case s.ch == '$':
			s.skipDollarQuoted()
		case s.ch == ':':
			s.readMarker(onParam)
		default:
			s.readChar()
		}
	}
}

// readMarker handles a ':' that may start a parameter marker.
func (s *paramScanner) readMarker(onParam func(start, end int, name string)) {
	// "::" is a cast operator; both colons are consumed so the type name is never a marker
	if s.peekChar() == ':' {
		s.readChar()
		s.readChar()
		return
	}
	if s.prevChar() == ':' || !isIdentStart(s.peekChar()) {
		s.readChar()
		return
	}

	start := s.pos
	s.readChar()
	nameStart := s.pos
	for isIdentChar(s.ch) || s.ch == '-' {
		if s.ch == '-' && s.peekChar() == '-' {
			break
		}
		s.readChar()
	}

	end := s.pos
	// a trailing hyphen belongs to the surrounding expression
	for end > nameStart && s.input[end-1] == '-' {
		end--
	}
	onParam(start, end, NormalizeParam(s.input[nameStart:end]))
}

// skipString skips a single-quoted string literal. A doubled quote is escaped;
// with backslashes set, \' is one too.
func (s *paramScanner) skipString(backslashes bool) {
	s.readChar() // opening quote
	for !s.eof() {
		switch {
		case backslashes && s.ch == '\\':
			s.readChar()
			s.readChar()
		case s.ch == '\'' && s.peekChar() == '\'':
			s.readChar()
			s.readChar()
		case s.ch == '\'':
			s.readChar()
			return
		default:
			s.readChar()
		}
	}
}

// skipQuotedIdentifier skips a double-quoted identifier. "" is an escaped quote.
func (s *paramScanner) skipQuotedIdentifier() {
	s.readChar()
	for !s.eof() {
		if s.ch == '"' {
			if s.peekChar() == '"' {
				s.readChar()
				s.readChar()
				continue
			}
			s.readChar()
			return
		}
		s.readChar()
	}
}

func (s *paramScanner) skipLineComment() {
	for !s.eof() && s.ch != '\n' {
		s.readChar()
	}
}

// skipBlockComment skips a /* */ comment. Block comments nest as in PostgreSQL.
func (s *paramScanner) skipBlockComment() {
	depth := 0
	for !s.eof() {
		switch {
		case s.ch == '/' && s.peekChar() == '*':
			depth++
			s.readChar()
			s.readChar()
		case s.ch == '*' && s.peekChar() == '/':
			depth--
			s.readChar()
			s.readChar()
			if depth == 0 {
				return
			}
		default:
			s.readChar()
		}
	}
}

// skipDollarQuoted skips a $tag$...$tag$ body. A '$' that does not open a
// tag (such as a $1 positional parameter) is consumed alone.
func (s *paramScanner) skipDollarQuoted() {
	if isIdentChar(s.prevChar()) {
		s.readChar()
		return
	}

	end := s.pos + 1
	for end < len(s.input) && isIdentChar(s.input[end]) {
		end++
	}
	if end >= len(s.input) || s.input[end] != '$' || (end > s.pos+1 && isDigit(s.input[s.pos+1])) {
		s.readChar()
		return
	}

	tag := s.input[s.pos : end+1]
	closing := strings.Index(s.input[end+1:], tag)
	stop := len(s.input)
	if closing >= 0 {
		stop = end + 1 + closing + len(tag)
	}
	for s.pos < stop {
		s.readChar()
	}
}

func isIdentStart(ch byte) bool {
	return isLetter(ch) || ch == '_'
}

func isIdentChar(ch byte) bool {
	return isLetter(ch) || isDigit(ch) || ch == '_'
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}
