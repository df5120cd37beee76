package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/dashterm/internal/dash"
)

const (
	minBarWidth = 10
	barGlyph    = "█"
)

// renderLayout renders the dashboard layout tree.
func (m Model) renderLayout(width int) string {
	if !m.snapshot.HasLayout {
		if m.loadErr != nil {
			return m.styles.DangerText.Render("Dashboard unavailable: " + m.loadErr.Error())
		}
		return m.styles.MutedText.Render("Waiting for dashboard...")
	}

	var blocks []string
	dropdown := 0
	m.snapshot.Layout.Walk(func(c dash.Component) {
		switch c.Type {
		case dash.TypeH1:
			blocks = append(blocks, m.styles.Heading.Render(DisplayText(m.snapshot, c)))
		case dash.TypeText:
			blocks = append(blocks, m.styles.Text.Render(DisplayText(m.snapshot, c)))
		case dash.TypeDropdown:
			if c.ID == "" {
				return
			}
			blocks = append(blocks, m.renderDropdown(c, dropdown == m.focus))
			dropdown++
		case dash.TypeGraph:
			blocks = append(blocks, m.renderGraph(c, width-4))
		}
	})
	return lipgloss.JoinVertical(lipgloss.Left, blocks...)
}

func (m Model) renderDropdown(c dash.Component, focused bool) string {
	selected := SelectedOption(m.snapshot, c)
	position := ""
	for i, opt := range c.Options {
		if opt == selected {
			position = fmt.Sprintf(" %d/%d", i+1, len(c.Options))
			break
		}
	}
	label := fmt.Sprintf("‹ %s ›", selected)
	style := m.styles.Input
	if focused {
		style = m.styles.Focused
	}
	return lipgloss.JoinHorizontal(lipgloss.Center,
		style.Render(label),
		m.styles.FaintText.Render(position),
	)
}

// renderGraph draws the figure as a horizontal bar chart, one row per point.
func (m Model) renderGraph(c dash.Component, width int) string {
	fig, ok := FigureOf(m.snapshot, c)
	if !ok {
		return m.styles.MutedText.Render("No data")
	}

	n := min(len(fig.X), len(fig.Y))
	labelWidth, valueWidth := 0, 0
	peak := 0.0
	values := make([]string, n)
	for i := range n {
		values[i] = FormatCount(fig.Y[i])
		labelWidth = max(labelWidth, lipgloss.Width(fig.X[i]))
		valueWidth = max(valueWidth, len(values[i]))
		peak = max(peak, fig.Y[i])
	}
	barWidth := max(width-labelWidth-valueWidth-4, minBarWidth)

	var b strings.Builder
	b.WriteString(m.styles.AccentText.Bold(true).Render(fig.Title))
	for i := range n {
		bar := strings.Repeat(barGlyph, BarLength(fig.Y[i], peak, barWidth))
		b.WriteString("\n")
		b.WriteString(m.styles.MutedText.Render(fmt.Sprintf("%*s │", labelWidth, fig.X[i])))
		b.WriteString(m.styles.Bar.Render(bar))
		b.WriteString(" ")
		b.WriteString(m.styles.Text.Render(values[i]))
	}
	return "\n" + b.String()
}

func (m Model) renderHeader() string {
	status := BackendState(m.snapshot)
	left := m.title
	if left == "" {
		left = "dashterm"
	}
	badge := m.styles.StateStyle(status).Render(strings.ToUpper(status))
	right := m.styles.Header.UnsetBold().Foreground(lipgloss.Color(m.theme.Muted)).Render(m.theme.Name)
	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(badge)-lipgloss.Width(right)-2, 1)
	return m.styles.Header.Width(m.width).Render(
		left + " " + badge + strings.Repeat(" ", gap) + right,
	)
}

func (m Model) renderFooter() string {
	if err := m.snapshot.UpdateError; err != nil {
		return m.styles.Footer.Width(m.width).Render(m.styles.WarningText.Render("update failed: " + err.Error()))
	}
	parts := make([]string, 0, len(m.keys.ShortHelp()))
	for _, b := range m.keys.ShortHelp() {
		h := b.Help()
		parts = append(parts, m.styles.HelpKey.Render(h.Key)+" "+m.styles.HelpDesc.Render(h.Desc))
	}
	return m.styles.Footer.Width(m.width).Render(strings.Join(parts, "  "))
}

func (m Model) renderHelp() string {
	var rows []string
	for _, group := range m.keys.FullHelp() {
		for _, b := range group {
			h := b.Help()
			rows = append(rows, fmt.Sprintf("%s  %s",
				m.styles.HelpKey.Render(fmt.Sprintf("%-10s", h.Key)),
				m.styles.HelpDesc.Render(h.Desc)))
		}
		rows = append(rows, "")
	}
	return lipgloss.NewStyle().Padding(0, 2).Render(strings.Join(rows, "\n"))
}
