package ui

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/dashterm/internal/frontend"
	"github.com/five82/dashterm/internal/logtail"
	"github.com/five82/dashterm/internal/prefs"
	"github.com/five82/dashterm/internal/state"
	"github.com/five82/dashterm/internal/ui/theme"
)

const (
	refreshInterval = 250 * time.Millisecond
	logPaneHeight   = 8
	logTailLines    = 200
)

// Model is the Bubble Tea model of the dashboard window.
type Model struct {
	ctx     context.Context
	title   string
	session *frontend.Session
	store   *state.Store
	log     *slog.Logger
	onClose func()

	prefsPath string
	logPath   string
	prefs     prefs.Prefs

	theme  theme.Theme
	styles Styles
	keys   keyMap

	snapshot state.Snapshot
	loadErr  error
	focus    int

	logs     viewport.Model
	logLines []string
	showHelp bool

	width   int
	height  int
	ready   bool
	closing bool
}

func newModel(opts frontend.WindowOptions) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	store := opts.Store
	if store == nil && opts.Session != nil {
		store = opts.Session.Store()
	}
	if store == nil {
		store = &state.Store{}
	}
	t, p := ResolveTheme(opts.Theme, opts.PrefsPath)
	return Model{
		ctx:       ctx,
		title:     opts.Title,
		session:   opts.Session,
		store:     store,
		log:       logger,
		onClose:   opts.OnClose,
		prefsPath: opts.PrefsPath,
		logPath:   opts.LogPath,
		prefs:     p,
		theme:     t,
		styles:    newStyles(t),
		keys:      defaultKeyMap(),
		logs:      viewport.New(0, logPaneHeight),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.loadCmd(),
		fetchSnapshotCmd(m.store),
		tickCmd(refreshInterval),
	}
	if m.prefs.LogsOpen {
		cmds = append(cmds, refreshLogsCmd(m.logPath))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.logs.Width = msg.Width
		m.ready = true
		return m, nil

	case closeRequestMsg:
		return m.close()

	case tickMsg:
		return m.handleTick()

	case snapshotMsg:
		m.snapshot = state.Snapshot(msg)
		if n := len(Dropdowns(m.snapshot.Layout)); m.focus >= n {
			m.focus = 0
		}
		return m, nil

	case loadedMsg:
		m.loadErr = msg.err
		if msg.err != nil {
			m.log.WarnContext(m.ctx, "dashboard load failed", "error", msg.err)
		}
		return m, fetchSnapshotCmd(m.store)

	case inputAppliedMsg:
		return m, fetchSnapshotCmd(m.store)

	case logsMsg:
		m.handleLogs(msg)
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	sections := []string{m.renderHeader()}
	body := m.renderLayout(m.width)
	if m.prefs.LogsOpen {
		body = lipgloss.JoinVertical(lipgloss.Left, body, m.renderLogs())
	}
	sections = append(sections, lipgloss.NewStyle().Padding(1, 2).Render(body))
	if m.showHelp {
		sections = append(sections, m.renderHelp())
	}
	sections = append(sections, m.renderFooter())
	return strings.Join(sections, "\n")
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.close()

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = theme.Get(theme.Next(m.theme.Name))
		m.styles = newStyles(m.theme)
		m.prefs.Theme = m.theme.Name
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.ToggleLogs):
		m.prefs.LogsOpen = !m.prefs.LogsOpen
		m.savePrefs()
		if m.prefs.LogsOpen {
			return m, refreshLogsCmd(m.logPath)
		}
		return m, nil

	case key.Matches(msg, m.keys.NextInput):
		m.moveFocus(1)
		return m, nil

	case key.Matches(msg, m.keys.PrevInput):
		m.moveFocus(-1)
		return m, nil

	case key.Matches(msg, m.keys.NextOpt):
		return m, m.stepOption(1)

	case key.Matches(msg, m.keys.PrevOpt):
		return m, m.stepOption(-1)

	case key.Matches(msg, m.keys.Up):
		if m.prefs.LogsOpen {
			m.logs.ScrollUp(1)
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.prefs.LogsOpen {
			m.logs.ScrollDown(1)
		}
		return m, nil
	}
	return m, nil
}

// close runs the close callback once and quits the program.
func (m Model) close() (tea.Model, tea.Cmd) {
	if !m.closing {
		m.closing = true
		if m.onClose != nil {
			m.onClose()
		}
	}
	return m, tea.Quit
}

func (m *Model) moveFocus(delta int) {
	n := len(Dropdowns(m.snapshot.Layout))
	if n == 0 {
		return
	}
	m.focus = ((m.focus+delta)%n + n) % n
}

// stepOption selects the option delta positions away in the focused dropdown.
func (m Model) stepOption(delta int) tea.Cmd {
	drops := Dropdowns(m.snapshot.Layout)
	if m.focus >= len(drops) {
		return nil
	}
	c := drops[m.focus]
	next, ok := StepOption(c.Options, SelectedOption(m.snapshot, c), delta)
	if !ok {
		return nil
	}
	return m.setInputCmd(c.ID, next)
}

func (m Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	if err := prefs.Save(m.prefsPath, m.prefs); err != nil {
		m.log.WarnContext(m.ctx, "save preferences failed", "error", err)
	}
}

func (m Model) handleTick() (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{fetchSnapshotCmd(m.store), tickCmd(refreshInterval)}
	if m.prefs.LogsOpen {
		cmds = append(cmds, refreshLogsCmd(m.logPath))
	}
	return m, tea.Batch(cmds...)
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

type closeRequestMsg struct{}

type loadedMsg struct{ err error }

type inputAppliedMsg struct{ err error }

type logsMsg struct {
	entries []logtail.Entry
	err     error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

func (m Model) loadCmd() tea.Cmd {
	if m.session == nil {
		return nil
	}
	session, ctx := m.session, m.ctx
	return func() tea.Msg {
		return loadedMsg{err: session.Load(ctx)}
	}
}

func (m Model) setInputCmd(id string, value any) tea.Cmd {
	if m.session == nil {
		return nil
	}
	session, ctx := m.session, m.ctx
	return func() tea.Msg {
		return inputAppliedMsg{err: session.SetInput(ctx, id, "value", value)}
	}
}

func refreshLogsCmd(path string) tea.Cmd {
	if path == "" {
		return nil
	}
	return func() tea.Msg {
		entries, err := logtail.Tail(path, logTailLines)
		return logsMsg{entries: entries, err: err}
	}
}
