// Package theme holds the color palettes shared by the dashboard renderers.
package theme

import "strings"

// Theme is a named palette of hex colors.
type Theme struct {
	Name string

	Background string // outermost background
	Surface    string // header, footer and panels
	SurfaceAlt string // focused component
	Border     string
	Focus      string // focused border

	Text    string
	Muted   string
	Faint   string
	Accent  string
	Success string
	Warning string
	Danger  string
	Info    string

	// Series is the color of graph bars.
	Series string
}

// Backend health states shown in the header.
const (
	StateOnline  = "online"
	StateOffline = "offline"
	StateLoading = "loading"
	StateError   = "error"
)

// StateColor returns the badge color for a backend health state.
func (t Theme) StateColor(state string) string {
	switch strings.TrimSpace(state) {
	case StateOnline:
		return t.Success
	case StateOffline:
		return t.Danger
	case StateError:
		return t.Warning
	case StateLoading:
		return t.Info
	default:
		return t.Muted
	}
}

var themes = map[string]Theme{
	"Nightfox": nightfox(),
	"Kanagawa": kanagawa(),
	"Slate":    slate(),
}

var themeOrder = []string{"Nightfox", "Kanagawa", "Slate"}

// Get returns a theme by name, falling back to Nightfox.
func Get(name string) Theme {
	if t, ok := themes[name]; ok {
		return t
	}
	return nightfox()
}

// Next returns the theme name after current in the cycle.
func Next(current string) string {
	for i, name := range themeOrder {
		if name == current {
			return themeOrder[(i+1)%len(themeOrder)]
		}
	}
	return themeOrder[0]
}

// Names returns the available theme names in cycle order.
func Names() []string {
	return append([]string(nil), themeOrder...)
}

func nightfox() Theme {
	// https://github.com/EdenEast/nightfox.nvim
	return Theme{
		Name:       "Nightfox",
		Background: "#131a24",
		Surface:    "#192330",
		SurfaceAlt: "#212e3f",
		Border:     "#39506d",
		Focus:      "#719cd6",
		Text:       "#cdcecf",
		Muted:      "#738091",
		Faint:      "#71839b",
		Accent:     "#719cd6",
		Success:    "#81b29a",
		Warning:    "#dbc074",
		Danger:     "#c94f6d",
		Info:       "#63cdcf",
		Series:     "#9d79d6",
	}
}

func kanagawa() Theme {
	// https://github.com/rebelot/kanagawa.nvim
	return Theme{
		Name:       "Kanagawa",
		Background: "#16161D",
		Surface:    "#1F1F28",
		SurfaceAlt: "#2A2A37",
		Border:     "#54546D",
		Focus:      "#7E9CD8",
		Text:       "#DCD7BA",
		Muted:      "#C8C093",
		Faint:      "#727169",
		Accent:     "#7E9CD8",
		Success:    "#98BB6C",
		Warning:    "#E6C384",
		Danger:     "#E46876",
		Info:       "#7FB4CA",
		Series:     "#957FB8",
	}
}

func slate() Theme {
	// Tailwind slate/sky
	return Theme{
		Name:       "Slate",
		Background: "#020617",
		Surface:    "#0f172a",
		SurfaceAlt: "#1e293b",
		Border:     "#334155",
		Focus:      "#38bdf8",
		Text:       "#f1f5f9",
		Muted:      "#94a3b8",
		Faint:      "#64748b",
		Accent:     "#38bdf8",
		Success:    "#22c55e",
		Warning:    "#f59e0b",
		Danger:     "#ef4444",
		Info:       "#06b6d4",
		Series:     "#0ea5e9",
	}
}
