// Package ui is the default dashterm frontend, built on Bubble Tea.
//
// NewWindow returns a frontend.Window whose event loop is a tea.Program. The
// model renders the dashboard layout fetched from the backend: headings and
// text, dropdowns that can be focused and cycled from the keyboard, and graphs
// drawn as horizontal bar charts. A log pane shows the tail of the dashterm
// log file.
//
// Keyboard:
//
//	tab / shift+tab   focus next / previous dropdown
//	left / right      select previous / next option
//	l                 toggle the log pane
//	T                 cycle the color theme (saved to preferences)
//	?                 toggle the key help
//	q / ctrl+c        close the dashboard
//
// Every close path, whether a key or a close request from another goroutine,
// calls WindowOptions.OnClose before the program quits.
//
// The helpers in dashboard.go do not depend on Bubble Tea and are shared with
// the classic tview renderer.
package ui
