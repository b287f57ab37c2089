package output

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles used by commands.
type Styles struct {
	Header1 lipgloss.Style
	Header2 lipgloss.Style
	Bold    lipgloss.Style
	Muted   lipgloss.Style
	Info    lipgloss.Style
	Path    lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style

	StatusSuccess lipgloss.Style
	StatusFailed  lipgloss.Style
}

// NewStyles builds styles bound to a lipgloss renderer.
func NewStyles(r *lipgloss.Renderer) *Styles {
	return &Styles{
		Header1: r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Header2: r.NewStyle().Bold(true),
		Bold:    r.NewStyle().Bold(true),
		Muted:   r.NewStyle().Foreground(lipgloss.Color("8")),
		Info:    r.NewStyle().Foreground(lipgloss.Color("6")),
		Path:    r.NewStyle().Foreground(lipgloss.Color("13")),
		Success: r.NewStyle().Foreground(lipgloss.Color("10")),
		Warning: r.NewStyle().Foreground(lipgloss.Color("11")),
		Error:   r.NewStyle().Foreground(lipgloss.Color("9")),

		StatusSuccess: r.NewStyle().Foreground(lipgloss.Color("10")).SetString("✓"),
		StatusFailed:  r.NewStyle().Foreground(lipgloss.Color("9")).SetString("✗"),
	}
}
