package classic

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/five82/dashterm/internal/dash"
	"github.com/five82/dashterm/internal/logtail"
	"github.com/five82/dashterm/internal/state"
	"github.com/five82/dashterm/internal/ui"
	"github.com/five82/dashterm/internal/ui/theme"
)

type dropdownWidget struct {
	component dash.Component
	view      *tview.DropDown
}

type textWidget struct {
	component dash.Component
	view      *tview.TextView
}

// dashboardView holds the tview widgets. All methods run on the event loop.
type dashboardView struct {
	title  string
	theme  theme.Theme
	onPick func(id, value string)

	root   *tview.Flex
	header *tview.TextView
	body   *tview.Flex
	logs   *tview.TextView
	footer *tview.TextView

	built     bool
	syncing   bool
	headings  []textWidget
	texts     []textWidget
	dropdowns []dropdownWidget
	graphs    []textWidget
	snapshot  state.Snapshot
}

func newDashboardView(title string, t theme.Theme, onPick func(id, value string)) *dashboardView {
	v := &dashboardView{
		title:  title,
		theme:  t,
		onPick: onPick,
		header: tview.NewTextView().SetDynamicColors(true).SetWrap(false),
		body:   tview.NewFlex().SetDirection(tview.FlexRow),
		logs:   tview.NewTextView().SetDynamicColors(true).SetScrollable(true),
		footer: tview.NewTextView().SetDynamicColors(true).SetWrap(false),
	}
	v.body.SetBorderPadding(1, 0, 2, 2)
	v.logs.SetBorder(true).SetTitle(" logs ")
	v.root = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(v.header, 1, 0, false).
		AddItem(v.body, 0, 1, true).
		AddItem(v.logs, 0, 0, false).
		AddItem(v.footer, 1, 0, false)
	v.applyTheme(t)
	return v
}

func color(hex string) tcell.Color {
	if strings.TrimSpace(hex) == "" {
		return tcell.ColorDefault
	}
	return tcell.GetColor(hex)
}

func (v *dashboardView) applyTheme(t theme.Theme) {
	v.theme = t
	bg := color(t.Background)
	surface := color(t.Surface)

	v.root.SetBackgroundColor(bg)
	v.body.SetBackgroundColor(bg)
	v.header.SetBackgroundColor(surface)
	v.footer.SetBackgroundColor(surface)
	v.logs.SetBackgroundColor(bg)
	v.logs.SetBorderColor(color(t.Border)).SetTitleColor(color(t.Muted))
	v.logs.SetTextColor(color(t.Muted))

	for _, w := range v.headings {
		w.view.SetBackgroundColor(bg)
		w.view.SetTextColor(color(t.Accent))
	}
	for _, w := range v.texts {
		w.view.SetBackgroundColor(bg)
		w.view.SetTextColor(color(t.Text))
	}
	for _, w := range v.graphs {
		w.view.SetBackgroundColor(bg)
	}
	for _, w := range v.dropdowns {
		w.view.SetBackgroundColor(bg)
		w.view.SetFieldBackgroundColor(color(t.SurfaceAlt))
		w.view.SetFieldTextColor(color(t.Text))
		w.view.SetLabelColor(color(t.Muted))
		w.view.SetListStyles(
			tcell.StyleDefault.Background(color(t.Surface)).Foreground(color(t.Text)),
			tcell.StyleDefault.Background(color(t.Focus)).Foreground(bg),
		)
	}
	v.renderFooter()
	v.render(v.snapshot)
}

func (v *dashboardView) showLogs(open bool) {
	height := 0
	if open {
		height = logPaneHeight
	}
	v.root.ResizeItem(v.logs, height, 0)
}

// build creates one widget per layout component.
func (v *dashboardView) build(layout dash.Component) {
	layout.Walk(func(c dash.Component) {
		switch c.Type {
		case dash.TypeH1:
			tv := tview.NewTextView().SetDynamicColors(true)
			v.headings = append(v.headings, textWidget{c, tv})
			v.body.AddItem(tv, 2, 0, false)
		case dash.TypeText:
			tv := tview.NewTextView().SetDynamicColors(true)
			v.texts = append(v.texts, textWidget{c, tv})
			v.body.AddItem(tv, 1, 0, false)
		case dash.TypeDropdown:
			if c.ID == "" {
				return
			}
			dd := tview.NewDropDown()
			id := c.ID
			dd.SetOptions(c.Options, func(text string, _ int) {
				if !v.syncing && v.onPick != nil {
					v.onPick(id, text)
				}
			})
			v.dropdowns = append(v.dropdowns, dropdownWidget{c, dd})
			v.body.AddItem(dd, 2, 0, true)
		case dash.TypeGraph:
			tv := tview.NewTextView().SetDynamicColors(true).SetWrap(false)
			v.graphs = append(v.graphs, textWidget{c, tv})
			v.body.AddItem(tv, 0, 1, false)
		}
	})
	v.built = true
	v.applyTheme(v.theme)
}

// render brings every widget in line with snap.
func (v *dashboardView) render(snap state.Snapshot) {
	v.snapshot = snap
	if snap.HasLayout && !v.built {
		v.build(snap.Layout)
		return
	}
	v.renderHeader(snap)

	for _, w := range v.headings {
		w.view.SetText(tview.Escape(ui.DisplayText(snap, w.component)))
	}
	for _, w := range v.texts {
		w.view.SetText(tview.Escape(ui.DisplayText(snap, w.component)))
	}
	for _, w := range v.dropdowns {
		idx := slices.Index(w.component.Options, ui.SelectedOption(snap, w.component))
		if cur, _ := w.view.GetCurrentOption(); cur != idx && idx >= 0 {
			v.syncing = true
			w.view.SetCurrentOption(idx)
			v.syncing = false
		}
	}
	for _, w := range v.graphs {
		_, _, width, _ := w.view.GetInnerRect()
		if fig, ok := ui.FigureOf(snap, w.component); ok {
			w.view.SetText(graphText(fig, width, v.theme))
		} else {
			w.view.SetText(fmt.Sprintf("[%s]No data[-]", v.theme.Muted))
		}
	}
	if err := snap.UpdateError; err != nil {
		v.footer.SetText(fmt.Sprintf("[%s]update failed: %s[-]", v.theme.Warning, tview.Escape(err.Error())))
	} else {
		v.renderFooter()
	}
}

func (v *dashboardView) renderHeader(snap state.Snapshot) {
	status := ui.BackendState(snap)
	title := v.title
	if title == "" {
		title = "dashterm"
	}
	v.header.SetText(fmt.Sprintf(" [%s::b]%s[-:-:-]  [%s:%s:b] %s [-:-:-]  [%s]%s[-]",
		v.theme.Text, tview.Escape(title),
		v.theme.Background, v.theme.StateColor(status), strings.ToUpper(status),
		v.theme.Faint, v.theme.Name))
}

func (v *dashboardView) renderFooter() {
	keys := []struct{ key, desc string }{
		{"tab", "next input"},
		{"enter", "open list"},
		{"l", "logs"},
		{"T", "theme"},
		{"q", "quit"},
	}
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("[%s::b]%s[-:-:-] [%s]%s[-]", v.theme.Accent, k.key, v.theme.Muted, k.desc))
	}
	v.footer.SetText(" " + strings.Join(parts, "  "))
}

func (v *dashboardView) renderLogs(path string, entries []logtail.Entry) {
	if path == "" {
		v.logs.SetText("Logs are not written to a file.")
		return
	}
	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteByte('\n')
		}
		c := v.theme.Muted
		switch e.Level {
		case "ERROR":
			c = v.theme.Danger
		case "WARN":
			c = v.theme.Warning
		case "DEBUG":
			c = v.theme.Faint
		}
		fmt.Fprintf(&b, "[%s]%s[-]", c, tview.Escape(e.Format()))
	}
	v.logs.SetText(b.String())
	v.logs.ScrollToEnd()
}

// nextDropdown returns the dropdown delta positions after the focused
// primitive, or the first one when none of them has focus.
func (v *dashboardView) nextDropdown(focused tview.Primitive, delta int) *tview.DropDown {
	n := len(v.dropdowns)
	if n == 0 {
		return nil
	}
	for i, w := range v.dropdowns {
		if tview.Primitive(w.view) == focused {
			return v.dropdowns[((i+delta)%n+n)%n].view
		}
	}
	return v.dropdowns[0].view
}

// graphText draws a horizontal bar chart with tview color tags.
func graphText(fig dash.Figure, width int, t theme.Theme) string {
	n := min(len(fig.X), len(fig.Y))
	labelWidth, valueWidth := 0, 0
	peak := 0.0
	values := make([]string, n)
	for i := range n {
		values[i] = ui.FormatCount(fig.Y[i])
		labelWidth = max(labelWidth, len(fig.X[i]))
		valueWidth = max(valueWidth, len(values[i]))
		peak = max(peak, fig.Y[i])
	}
	barWidth := max(width-labelWidth-valueWidth-4, 10)

	var b strings.Builder
	fmt.Fprintf(&b, "[%s::b]%s[-:-:-]", t.Accent, tview.Escape(fig.Title))
	for i := range n {
		fmt.Fprintf(&b, "\n[%s]%*s │[-][%s]%s[-] [%s]%s[-]",
			t.Muted, labelWidth, tview.Escape(fig.X[i]),
			t.Series, strings.Repeat("█", ui.BarLength(fig.Y[i], peak, barWidth)),
			t.Text, values[i])
	}
	return b.String()
}
