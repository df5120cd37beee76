package ui

import (
	"fmt"
	"math"
	"slices"
	"strconv"

	"github.com/five82/dashterm/internal/dash"
	"github.com/five82/dashterm/internal/prefs"
	"github.com/five82/dashterm/internal/state"
	"github.com/five82/dashterm/internal/ui/theme"
)

// Dropdowns returns the dropdown components of layout in display order.
func Dropdowns(layout dash.Component) []dash.Component {
	var out []dash.Component
	layout.Walk(func(c dash.Component) {
		if c.Type == dash.TypeDropdown && c.ID != "" {
			out = append(out, c)
		}
	})
	return out
}

// SelectedOption returns the option currently selected in a dropdown.
func SelectedOption(snap state.Snapshot, c dash.Component) string {
	v, ok := snap.Value(c.ID, "value")
	if !ok {
		v = c.Value
	}
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(s)
	}
}

// StepOption returns the option delta positions away from current, wrapping
// around. The boolean is false when the selection would not change.
func StepOption(options []string, current string, delta int) (string, bool) {
	n := len(options)
	if n == 0 {
		return "", false
	}
	idx := slices.Index(options, current)
	if idx < 0 {
		if delta < 0 {
			return options[n-1], true
		}
		return options[0], true
	}
	next := options[((idx+delta)%n+n)%n]
	return next, next != current
}

// DisplayText returns the text of a heading or text component. A "children"
// value set by a binding replaces the static text.
func DisplayText(snap state.Snapshot, c dash.Component) string {
	if c.ID != "" {
		if v, ok := snap.Value(c.ID, "children"); ok && v != nil {
			return fmt.Sprint(v)
		}
	}
	return c.Text
}

// FigureOf returns the figure bound to a graph component.
func FigureOf(snap state.Snapshot, c dash.Component) (dash.Figure, bool) {
	v, ok := snap.Value(c.ID, "figure")
	if !ok {
		return dash.Figure{}, false
	}
	return dash.DecodeFigure(v)
}

// FormatCount renders v with a K, M or B suffix.
func FormatCount(v float64) string {
	switch abs := math.Abs(v); {
	case abs >= 1e9:
		return fmt.Sprintf("%.2fB", v/1e9)
	case abs >= 1e6:
		return fmt.Sprintf("%.1fM", v/1e6)
	case abs >= 1e3:
		return fmt.Sprintf("%.1fK", v/1e3)
	default:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
}

// BarLength scales v against peak to at most width cells. Any positive value
// gets at least one cell.
func BarLength(v, peak float64, width int) int {
	if width <= 0 || v <= 0 || peak <= 0 {
		return 0
	}
	n := int(math.Round(v / peak * float64(width)))
	return min(max(n, 1), width)
}

// BackendState summarizes backend health for the header badge.
func BackendState(snap state.Snapshot) string {
	switch {
	case snap.IsOffline():
		return theme.StateOffline
	case snap.LastError != nil:
		return theme.StateError
	case !snap.HasLayout:
		return theme.StateLoading
	default:
		return theme.StateOnline
	}
}

// ResolveTheme returns the configured theme, or the one saved in preferences
// when none is configured, together with the loaded preferences.
func ResolveTheme(configured, prefsPath string) (theme.Theme, prefs.Prefs) {
	p := prefs.Load(prefsPath)
	name := configured
	if name == "" {
		name = p.Theme
	}
	t := theme.Get(name)
	p.Theme = t.Name
	return t, p
}
