package output

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles used in text mode.
type Styles struct {
	Header  lipgloss.Style
	Bold    lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style

	// QueryName highlights query names in listings.
	QueryName lipgloss.Style
	// Kind colors the select/mutate/autogen label.
	Kind map[string]lipgloss.Style
}

// NewStyles returns the styles for a renderer. Without a TTY every style
// renders plain text.
func NewStyles(isTTY bool) *Styles {
	if !isTTY {
		plain := lipgloss.NewStyle()
		return &Styles{
			Header:    plain,
			Bold:      plain,
			Muted:     plain,
			Success:   plain,
			Error:     plain,
			Warning:   plain,
			Info:      plain,
			QueryName: plain,
			Kind:      map[string]lipgloss.Style{},
		}
	}

	return &Styles{
		Header:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Bold:      lipgloss.NewStyle().Bold(true),
		Muted:     lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Success:   lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Error:     lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		Warning:   lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		Info:      lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
		QueryName: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13")),
		Kind: map[string]lipgloss.Style{
			"select":  lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
			"mutate":  lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
			"autogen": lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		},
	}
}

// KindLabel renders a query kind name with its color.
func (s *Styles) KindLabel(kind string) string {
	if st, ok := s.Kind[kind]; ok {
		return st.Render(kind)
	}
	return kind
}
