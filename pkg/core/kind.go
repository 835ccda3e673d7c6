package core

import "strings"

// =============================================================================
// Kind
// =============================================================================

// Kind selects the statement shape a query is executed with.
type Kind int

// Query kinds, derived from the markers in a query's declared name.
const (
	// KindSelect reads rows.
	KindSelect Kind = iota
	// KindMutate writes and returns nothing. Declared with a trailing "!".
	KindMutate
	// KindAutoGen inserts a row and returns its generated id. Declared with "<!".
	KindAutoGen
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindSelect:
		return "select"
	case KindMutate:
		return "mutate"
	case KindAutoGen:
		return "autogen"
	default:
		return "unknown"
	}
}

// ParseKind converts a string to a Kind value.
// Returns the kind and true if valid, or KindSelect and false if invalid.
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(s) {
	case "select":
		return KindSelect, true
	case "mutate":
		return KindMutate, true
	case "autogen":
		return KindAutoGen, true
	default:
		return KindSelect, false
	}
}

// MarshalText implements encoding.TextMarshaler so kinds render by name
// in JSON and YAML output.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}
