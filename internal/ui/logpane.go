package ui

import (
	"strings"

	"github.com/five82/dashterm/internal/logtail"
)

func (m *Model) handleLogs(msg logsMsg) {
	if msg.err != nil {
		m.logLines = []string{m.styles.DangerText.Render("read log: " + msg.err.Error())}
	} else {
		lines := make([]string, 0, len(msg.entries))
		for _, e := range msg.entries {
			lines = append(lines, m.formatEntry(e))
		}
		m.logLines = lines
	}
	follow := m.logs.AtBottom() || m.logs.TotalLineCount() == 0
	m.logs.SetContent(strings.Join(m.logLines, "\n"))
	if follow {
		m.logs.GotoBottom()
	}
}

func (m Model) formatEntry(e logtail.Entry) string {
	line := e.Format()
	switch e.Level {
	case "ERROR":
		return m.styles.DangerText.Render(line)
	case "WARN":
		return m.styles.WarningText.Render(line)
	case "DEBUG":
		return m.styles.FaintText.Render(line)
	default:
		return m.styles.MutedText.Render(line)
	}
}

func (m Model) renderLogs() string {
	if m.logPath == "" {
		return m.styles.LogPane.Render(m.styles.FaintText.Render("Logs are not written to a file."))
	}
	if len(m.logLines) == 0 {
		return m.styles.LogPane.Render(m.styles.FaintText.Render("No log entries yet."))
	}
	return m.styles.LogPane.Render(m.logs.View())
}
