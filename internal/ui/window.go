package ui

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/dashterm/internal/exitcode"
	"github.com/five82/dashterm/internal/frontend"
)

// dispatchTimeout bounds how long QueueClose waits for the event loop to
// accept a close request.
const dispatchTimeout = time.Second

var (
	// ErrDispatchTimeout is returned when the event loop did not accept a
	// close request in time.
	ErrDispatchTimeout = errors.New("close request not accepted in time")
	// ErrWindowClosed is returned when the event loop has already exited.
	ErrWindowClosed = errors.New("window already closed")
)

var _ frontend.Window = (*Window)(nil)

// Window runs the dashboard model in a Bubble Tea program.
type Window struct {
	program  *tea.Program
	finished chan struct{}
	// closed is set once the model has run the close path.
	closed atomic.Bool
}

// NewWindow builds the window. It satisfies frontend.Factory. Signals are
// left to the caller's context.
func NewWindow(opts frontend.WindowOptions) (frontend.Window, error) {
	w, err := newWindow(opts, tea.WithAltScreen(), tea.WithoutSignalHandler())
	if err != nil {
		return nil, err
	}
	return w, nil
}

func newWindow(opts frontend.WindowOptions, programOpts ...tea.ProgramOption) (*Window, error) {
	if opts.Session == nil {
		return nil, errors.New("window requires a session")
	}
	w := &Window{finished: make(chan struct{})}
	onClose := opts.OnClose
	opts.OnClose = func() {
		w.closed.Store(true)
		if onClose != nil {
			onClose()
		}
	}
	w.program = tea.NewProgram(newModel(opts), programOpts...)
	return w, nil
}

// Run blocks until the program exits.
func (w *Window) Run() (int, error) {
	defer close(w.finished)
	if _, err := w.program.Run(); err != nil {
		if errors.Is(err, tea.ErrInterrupted) {
			return 0, nil
		}
		return exitcode.Failure, fmt.Errorf("run program: %w", err)
	}
	return 0, nil
}

// QueueClose sends a close request through the program's message queue.
func (w *Window) QueueClose() error {
	return w.dispatch(func() { w.program.Send(closeRequestMsg{}) }, dispatchTimeout)
}

// PostClose asks the program to quit without going through the model's
// close path.
func (w *Window) PostClose() error {
	select {
	case <-w.finished:
		return ErrWindowClosed
	default:
	}
	go w.program.Quit()
	return nil
}

// dispatch runs send, which may block until the event loop reads its queue,
// and waits at most timeout for it to be accepted. A window that exits after
// running the close path counts as accepted.
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
		if w.closed.Load() {
			return nil
		}
		return ErrWindowClosed
	case <-timer.C:
		return ErrDispatchTimeout
	}
}
