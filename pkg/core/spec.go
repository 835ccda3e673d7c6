package core

// =============================================================================
// Spec
// =============================================================================

// Spec is a parsed and dialect-finalized query definition.
//
// Name never contains the marker characters "<!", "!" or "$".
// SQL is never empty and has had dialect rewriting applied exactly once.
type Spec struct {
	Name          string `json:"name" yaml:"name"`
	Kind          Kind   `json:"kind" yaml:"kind"`
	ColumnMapping bool   `json:"column_mapping" yaml:"column_mapping"`
	Doc           string `json:"doc,omitempty" yaml:"doc,omitempty"`
	SQL           string `json:"sql" yaml:"sql"`
	// Params lists the named parameters in order of first use, before
	// dialect rewriting. Positional markers are not listed.
	Params []string `json:"params,omitempty" yaml:"params,omitempty"`
}

// Summary returns the first line of the documentation, or "".
func (s *Spec) Summary() string {
	for i := 0; i < len(s.Doc); i++ {
		if s.Doc[i] == '\n' {
			return s.Doc[:i]
		}
	}
	return s.Doc
}
