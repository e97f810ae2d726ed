// Package styles provides the lipgloss styles used by the console chat.
package styles

import "github.com/charmbracelet/lipgloss"

// Styles holds the styles for one output. The zero value renders text
// unchanged.
type Styles struct {
	enabled bool

	Bot    lipgloss.Style
	User   lipgloss.Style
	Button lipgloss.Style
	Muted  lipgloss.Style
	Error  lipgloss.Style
}

// New builds styles bound to r using palette p.
func New(r *lipgloss.Renderer, p Palette) Styles {
	return Styles{
		enabled: true,
		Bot: r.NewStyle().
			Foreground(p.Primary).
			Bold(true),
		User: r.NewStyle().
			Foreground(p.Success).
			Bold(true),
		Button: r.NewStyle().
			Foreground(p.Secondary).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), false, true).
			BorderForeground(p.Muted),
		Muted: r.NewStyle().
			Foreground(p.Muted),
		Error: r.NewStyle().
			Foreground(p.Error),
	}
}

// Render applies s when styling is enabled.
func (st Styles) Render(s lipgloss.Style, text string) string {
	if !st.enabled {
		return text
	}
	return s.Render(text)
}

// Enabled reports whether the styles produce styled output.
func (st Styles) Enabled() bool { return st.enabled }
