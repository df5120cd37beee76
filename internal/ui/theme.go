package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/dashterm/internal/ui/theme"
)

// Styles contains pre-built Lipgloss styles for a theme.
type Styles struct {
	Background lipgloss.Style
	Surface    lipgloss.Style

	Text        lipgloss.Style
	MutedText   lipgloss.Style
	FaintText   lipgloss.Style
	AccentText  lipgloss.Style
	DangerText  lipgloss.Style
	WarningText lipgloss.Style

	Header   lipgloss.Style
	Footer   lipgloss.Style
	Heading  lipgloss.Style
	Input    lipgloss.Style
	Focused  lipgloss.Style
	Bar      lipgloss.Style
	LogPane  lipgloss.Style
	HelpKey  lipgloss.Style
	HelpDesc lipgloss.Style

	stateColor func(string) string
	background string
}

// newStyles builds the Lipgloss styles for t.
func newStyles(t theme.Theme) Styles {
	return Styles{
		Background: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Background)),
		Surface: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Surface)).
			Foreground(lipgloss.Color(t.Text)),

		Text:        lipgloss.NewStyle().Foreground(lipgloss.Color(t.Text)),
		MutedText:   lipgloss.NewStyle().Foreground(lipgloss.Color(t.Muted)),
		FaintText:   lipgloss.NewStyle().Foreground(lipgloss.Color(t.Faint)),
		AccentText:  lipgloss.NewStyle().Foreground(lipgloss.Color(t.Accent)),
		DangerText:  lipgloss.NewStyle().Foreground(lipgloss.Color(t.Danger)).Bold(true),
		WarningText: lipgloss.NewStyle().Foreground(lipgloss.Color(t.Warning)),

		Header: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Surface)).
			Foreground(lipgloss.Color(t.Text)).
			Bold(true).
			Padding(0, 1),
		Footer: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Surface)).
			Foreground(lipgloss.Color(t.Muted)).
			Padding(0, 1),
		Heading: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Accent)).
			Bold(true).
			MarginBottom(1),
		Input: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Text)).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.Border)).
			Padding(0, 1),
		Focused: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Text)).
			Background(lipgloss.Color(t.SurfaceAlt)).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.Focus)).
			Padding(0, 1),
		Bar: lipgloss.NewStyle().Foreground(lipgloss.Color(t.Series)),
		LogPane: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), true, false, false, false).
			BorderForeground(lipgloss.Color(t.Border)),
		HelpKey:  lipgloss.NewStyle().Foreground(lipgloss.Color(t.Accent)).Bold(true),
		HelpDesc: lipgloss.NewStyle().Foreground(lipgloss.Color(t.Muted)),

		stateColor: t.StateColor,
		background: t.Background,
	}
}

// StateStyle returns the badge style for a backend health state.
func (s Styles) StateStyle(state string) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(s.background)).
		Background(lipgloss.Color(s.stateColor(state))).
		Bold(true).
		Padding(0, 1)
}
