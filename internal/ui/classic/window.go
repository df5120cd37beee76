package classic

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/five82/dashterm/internal/exitcode"
	"github.com/five82/dashterm/internal/frontend"
	"github.com/five82/dashterm/internal/logtail"
	"github.com/five82/dashterm/internal/prefs"
	"github.com/five82/dashterm/internal/state"
	"github.com/five82/dashterm/internal/ui"
	"github.com/five82/dashterm/internal/ui/theme"
)

const (
	dispatchTimeout = time.Second
	refreshInterval = 250 * time.Millisecond
	logPaneHeight   = 10
	logTailLines    = 200
)

var (
	// ErrDispatchTimeout is returned when the event loop did not run a close
	// request in time.
	ErrDispatchTimeout = errors.New("close request not accepted in time")
	// ErrWindowClosed is returned when the event loop has already exited.
	ErrWindowClosed = errors.New("window already closed")
)

var _ frontend.Window = (*Window)(nil)

// Window is the tview dashboard window.
type Window struct {
	app      *tview.Application
	screen   tcell.Screen
	ctx      context.Context
	session  *frontend.Session
	store    *state.Store
	log      *slog.Logger
	onClose  func()
	finished chan struct{}
	closing  atomic.Bool

	prefsPath string
	logPath   string

	// Owned by the event loop.
	view  *dashboardView
	prefs prefs.Prefs
}

// NewWindow builds the window on the terminal. It satisfies frontend.Factory.
func NewWindow(opts frontend.WindowOptions) (frontend.Window, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("open screen: %w", err)
	}
	w, err := newWindow(opts, screen)
	if err != nil {
		return nil, err
	}
	return w, nil
}

func newWindow(opts frontend.WindowOptions, screen tcell.Screen) (*Window, error) {
	if opts.Session == nil {
		return nil, errors.New("window requires a session")
	}
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	store := opts.Store
	if store == nil {
		store = opts.Session.Store()
	}

	t, p := ui.ResolveTheme(opts.Theme, opts.PrefsPath)
	w := &Window{
		app:       tview.NewApplication(),
		screen:    screen,
		ctx:       ctx,
		session:   opts.Session,
		store:     store,
		log:       logger,
		onClose:   opts.OnClose,
		finished:  make(chan struct{}),
		prefsPath: opts.PrefsPath,
		logPath:   opts.LogPath,
		prefs:     p,
	}
	w.view = newDashboardView(opts.Title, t, w.setInput)
	w.view.showLogs(p.LogsOpen)

	w.app.SetScreen(screen)
	w.app.SetRoot(w.view.root, true)
	w.app.SetInputCapture(w.handleKey)
	return w, nil
}

// Run blocks on the tview event loop.
func (w *Window) Run() (int, error) {
	defer close(w.finished)
	go w.load()
	go w.refresh()
	if err := w.app.Run(); err != nil {
		return exitcode.Failure, fmt.Errorf("run application: %w", err)
	}
	return 0, nil
}

// QueueClose runs the close path on the event loop.
func (w *Window) QueueClose() error {
	return w.dispatch(func() { w.app.QueueUpdate(w.close) }, dispatchTimeout)
}

// PostClose posts a ctrl+c key event to the screen.
func (w *Window) PostClose() error {
	select {
	case <-w.finished:
		return ErrWindowClosed
	default:
	}
	if err := w.screen.PostEvent(tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModCtrl)); err != nil {
		return fmt.Errorf("post close event: %w", err)
	}
	return nil
}

// close runs the close callback once and stops the application. It must run
// on the event loop.
func (w *Window) close() {
	if w.closing.CompareAndSwap(false, true) && w.onClose != nil {
		w.onClose()
	}
	w.app.Stop()
}

func (w *Window) handleKey(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyCtrlC:
		w.close()
		return nil
	case tcell.KeyTAB:
		w.focusDropdown(1)
		return nil
	case tcell.KeyBacktab:
		w.focusDropdown(-1)
		return nil
	case tcell.KeyRune:
		switch event.Rune() {
		case 'q':
			w.close()
			return nil
		case 'T':
			w.prefs.Theme = theme.Next(w.view.theme.Name)
			w.view.applyTheme(theme.Get(w.prefs.Theme))
			w.savePrefs()
			return nil
		case 'l':
			w.prefs.LogsOpen = !w.prefs.LogsOpen
			w.view.showLogs(w.prefs.LogsOpen)
			w.savePrefs()
			return nil
		}
	}
	return event
}

func (w *Window) focusDropdown(delta int) {
	if dd := w.view.nextDropdown(w.app.GetFocus(), delta); dd != nil {
		w.app.SetFocus(dd)
	}
}

func (w *Window) savePrefs() {
	if w.prefsPath == "" {
		return
	}
	if err := prefs.Save(w.prefsPath, w.prefs); err != nil {
		w.log.WarnContext(w.ctx, "save preferences failed", "error", err)
	}
}

// load fetches the dashboard and builds its widgets.
func (w *Window) load() {
	if err := w.session.Load(w.ctx); err != nil {
		w.log.WarnContext(w.ctx, "dashboard load failed", "error", err)
	}
	snap := w.store.Snapshot()
	w.update(func() {
		w.view.render(snap)
		if dd := w.view.nextDropdown(nil, 1); dd != nil {
			w.app.SetFocus(dd)
		}
	})
}

// setInput is called by a dropdown on the event loop.
func (w *Window) setInput(id, value string) {
	go func() {
		if err := w.session.SetInput(w.ctx, id, "value", value); err != nil {
			w.log.DebugContext(w.ctx, "input update failed", "id", id, "error", err)
		}
		snap := w.store.Snapshot()
		w.update(func() { w.view.render(snap) })
	}()
}

func (w *Window) refresh() {
	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-w.finished:
			return
		case <-ticker.C:
			snap := w.store.Snapshot()
			var entries []logtail.Entry
			if w.logPath != "" {
				var err error
				if entries, err = logtail.Tail(w.logPath, logTailLines); err != nil {
					w.log.DebugContext(w.ctx, "read log failed", "error", err)
				}
			}
			w.update(func() {
				w.view.render(snap)
				if w.prefs.LogsOpen {
					w.view.renderLogs(w.logPath, entries)
				}
			})
		}
	}
}

// update queues fn on the event loop and redraws. It gives up when the
// window exits first.
func (w *Window) update(fn func()) {
	select {
	case <-w.finished:
		return
	default:
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.app.QueueUpdateDraw(fn)
	}()
	select {
	case <-done:
	case <-w.finished:
	}
}

// dispatch runs send and waits at most timeout for it to return. QueueUpdate
// returns only after close has stopped the application, so a window that
// finished after running the close path counts as a success.
func (w *Window) dispatch(send func(), timeout time.Duration) error {
	select {
	case <-w.finished:
		return ErrWindowClosed
	default:
	}
	sent := make(chan struct{})
	go func() {
		defer close(sent)
		send()
	}()
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-sent:
		return nil
	case <-w.finished:
		if w.closing.Load() {
			return nil
		}
		return ErrWindowClosed
	case <-timer.C:
		return ErrDispatchTimeout
	}
}
