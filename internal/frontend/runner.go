package frontend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/five82/dashterm/internal/dashclient"
	"github.com/five82/dashterm/internal/exitcode"
	"github.com/five82/dashterm/internal/state"
)

// ErrAlreadyStarted is returned by a second call to Start.
var ErrAlreadyStarted = errors.New("frontend already started")

// Endpoint supplies the backend address once the backend is ready.
type Endpoint interface {
	URL() string
}

// Options configures a Runner.
type Options struct {
	Endpoint     Endpoint
	Title        string
	Theme        string
	PrefsPath    string
	LogPath      string
	PollInterval time.Duration
	Logger       *slog.Logger
	Exit         *exitcode.Register
}

// Runner owns the frontend goroutine and the window running on it.
type Runner struct {
	factory Factory
	opts    Options
	log     *slog.Logger
	exit    *exitcode.Register

	started atomic.Bool
	done    chan struct{}

	mu         sync.Mutex
	window     Window
	onShutdown func()
	code       int

	closed          atomic.Bool
	closeRequested  atomic.Bool
	duplicateWarned atomic.Bool
}

// NewRunner prepares a Runner that builds its window with factory.
func NewRunner(factory Factory, opts Options) *Runner {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	exit := opts.Exit
	if exit == nil {
		exit = &exitcode.Register{}
	}
	return &Runner{
		factory: factory,
		opts:    opts,
		log:     logger.With("component", "frontend"),
		exit:    exit,
		done:    make(chan struct{}),
		code:    exitcode.Failure,
	}
}

// SetShutdownCallback sets the function called when the window closes. It
// must be called before Start; later calls are ignored.
func (r *Runner) SetShutdownCallback(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started.Load() {
		r.log.Warn("shutdown callback set after start, ignoring")
		return
	}
	r.onShutdown = fn
}

// Start launches the frontend goroutine and returns without waiting for the
// window to appear.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}
	go r.run(context.WithoutCancel(ctx))
	return nil
}

func (r *Runner) run(ctx context.Context) {
	code := exitcode.Failure
	defer close(r.done)
	defer func() {
		r.mu.Lock()
		r.window = nil
		r.code = code
		r.mu.Unlock()
	}()
	defer func() {
		if rec := recover(); rec != nil {
			r.log.ErrorContext(ctx, "frontend crashed", "panic", rec, "stack", string(debug.Stack()))
			code = exitcode.Failure
			r.exit.Report(exitcode.Failure)
		}
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	window, pollerDone, err := r.setup(ctx)
	if pollerDone != nil {
		defer func() {
			cancel()
			<-pollerDone
		}()
	}
	if err != nil {
		r.log.ErrorContext(ctx, "frontend setup failed", "error", err)
		r.exit.Report(exitcode.Failure)
		return
	}

	r.mu.Lock()
	r.window = window
	r.mu.Unlock()

	r.log.InfoContext(ctx, "frontend running")
	code, err = window.Run()
	if err != nil {
		r.log.ErrorContext(ctx, "frontend event loop failed", "error", err)
		if code == 0 {
			code = exitcode.Failure
		}
	}
	r.handleClose()
	r.log.InfoContext(ctx, "frontend stopped", "exit_code", code)
	r.exit.Report(code)
}

func (r *Runner) setup(ctx context.Context) (Window, <-chan struct{}, error) {
	if r.factory == nil {
		return nil, nil, errors.New("no window factory")
	}
	if r.opts.Endpoint == nil {
		return nil, nil, errors.New("no backend endpoint")
	}
	client, err := dashclient.NewClient(r.opts.Endpoint.URL())
	if err != nil {
		return nil, nil, fmt.Errorf("backend client: %w", err)
	}

	store := &state.Store{}
	pollerDone := StartPoller(ctx, store, client, r.opts.PollInterval, r.log)

	window, err := r.factory(WindowOptions{
		Context:   ctx,
		Title:     r.opts.Title,
		Session:   NewSession(client, store, r.log),
		Store:     store,
		Theme:     r.opts.Theme,
		PrefsPath: r.opts.PrefsPath,
		LogPath:   r.opts.LogPath,
		Logger:    r.log,
		OnClose:   r.handleClose,
	})
	if err != nil {
		return nil, pollerDone, fmt.Errorf("build window: %w", err)
	}
	return window, pollerDone, nil
}

// handleClose runs the shutdown callback the first time the window closes.
func (r *Runner) handleClose() {
	if !r.closed.CompareAndSwap(false, true) {
		return
	}
	r.mu.Lock()
	fn := r.onShutdown
	r.mu.Unlock()
	if fn == nil {
		return
	}
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("shutdown callback failed", "panic", rec, "stack", string(debug.Stack()))
		}
	}()
	fn()
}

// RequestClose asks the window to close. It may be called any number of
// times from any goroutine.
func (r *Runner) RequestClose() {
	ctx := context.Background()
	switch {
	case r.closeRequested.CompareAndSwap(false, true):
		r.log.InfoContext(ctx, "frontend close requested")
	case r.duplicateWarned.CompareAndSwap(false, true):
		r.log.WarnContext(ctx, "frontend close already requested")
	default:
		r.log.DebugContext(ctx, "frontend close requested again")
	}

	r.mu.Lock()
	window := r.window
	r.mu.Unlock()
	if window == nil {
		r.log.InfoContext(ctx, "no frontend window to close")
		return
	}

	if err := window.QueueClose(); err != nil {
		r.log.WarnContext(ctx, "close dispatch failed, posting close event", "error", err)
		if err := window.PostClose(); err != nil {
			r.log.ErrorContext(ctx, "close event could not be posted", "error", err)
		}
	}
}

// Done is closed when the frontend goroutine has returned.
func (r *Runner) Done() <-chan struct{} {
	return r.done
}

// Alive reports whether the frontend goroutine is running.
func (r *Runner) Alive() bool {
	if !r.started.Load() {
		return false
	}
	select {
	case <-r.done:
		return false
	default:
		return true
	}
}

// ExitCode returns the event loop's exit code. It is exitcode.Failure until
// the loop has returned normally.
func (r *Runner) ExitCode() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.code
}
