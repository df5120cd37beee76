package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"runtime/debug"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/five82/dashterm/internal/dash"
	"github.com/five82/dashterm/internal/exitcode"
	"github.com/five82/dashterm/internal/probe"
)

// ErrAlreadyStarted is returned by a second call to Start.
var ErrAlreadyStarted = errors.New("backend already started")

const (
	defaultHost            = "127.0.0.1"
	defaultShutdownTimeout = 2 * time.Second
	defaultShutdownTries   = 3
	readHeaderTimeout      = 5 * time.Second
)

// ListenFunc binds the listener the server accepts on.
type ListenFunc func(ctx context.Context, network, address string) (net.Listener, error)

// Options configures a Runner.
type Options struct {
	Host            string
	ProbeInterval   time.Duration
	StartupTimeout  time.Duration
	ShutdownTimeout time.Duration
	// ShutdownAttempts bounds how often one RequestShutdown call retries a
	// failed Shutdown. Defaults to 3.
	ShutdownAttempts int
	// HealthPath is the readiness path. Defaults to dash.PathHealth.
	HealthPath string
	// Listen defaults to net.ListenConfig.Listen.
	Listen ListenFunc
	Logger *slog.Logger
	Exit   *exitcode.Register
}

// Runner owns the dashboard HTTP server and the goroutine serving it.
type Runner struct {
	app  dash.App
	opts Options
	log  *slog.Logger
	exit *exitcode.Register

	started atomic.Bool
	done    chan struct{}

	mu     sync.Mutex
	server *http.Server
	port   int

	shutdownRequested atomic.Bool
	duplicateWarned   atomic.Bool
	missingWarned     atomic.Bool
}

// NewRunner prepares a Runner for app. Nothing is bound until Start.
func NewRunner(app dash.App, opts Options) *Runner {
	if opts.Host == "" {
		opts.Host = defaultHost
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = defaultShutdownTimeout
	}
	if opts.ShutdownAttempts <= 0 {
		opts.ShutdownAttempts = defaultShutdownTries
	}
	if opts.HealthPath == "" {
		opts.HealthPath = dash.PathHealth
	}
	if opts.Listen == nil {
		var lc net.ListenConfig
		opts.Listen = lc.Listen
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	exit := opts.Exit
	if exit == nil {
		exit = &exitcode.Register{}
	}
	return &Runner{
		app:  app,
		opts: opts,
		log:  logger.With("component", "backend"),
		exit: exit,
		done: make(chan struct{}),
	}
}

// Start binds the listener, launches the serve goroutine and waits until the
// service answers its health check.
func (r *Runner) Start(ctx context.Context) error {
	if !r.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}

	registry := dash.NewRegistry()
	for _, b := range r.app.Bindings() {
		if err := registry.Register(b); err != nil {
			close(r.done)
			return fmt.Errorf("register binding: %w", err)
		}
	}
	layout := r.app.Layout()

	ln, err := r.opts.Listen(ctx, "tcp", net.JoinHostPort(r.opts.Host, "0"))
	if err != nil {
		close(r.done)
		return fmt.Errorf("bind backend listener: %w", err)
	}

	srv := &http.Server{
		Handler:           newRouter(registry, layout, r.log),
		ReadHeaderTimeout: readHeaderTimeout,
	}
	r.mu.Lock()
	r.server = srv
	r.port = ln.Addr().(*net.TCPAddr).Port
	r.mu.Unlock()

	runCtx := context.WithoutCancel(ctx)
	go r.serve(runCtx, srv, ln)

	p := probe.Probe{
		Interval: r.opts.ProbeInterval,
		Timeout:  r.opts.StartupTimeout,
		Logger:   r.log,
	}
	if err := p.Wait(ctx, r.URL()+r.opts.HealthPath, r.done); err != nil {
		switch {
		case errors.Is(err, probe.ErrTerminated):
			r.log.ErrorContext(ctx, "backend stopped during startup", "error", err)
		default:
			r.log.ErrorContext(ctx, "backend did not become ready", "url", r.URL(), "error", err)
			r.RequestShutdown()
		}
		return fmt.Errorf("backend startup: %w", err)
	}

	r.log.InfoContext(ctx, "backend ready", "url", r.URL(), "bindings", len(registry.Dependencies()))
	return nil
}

func (r *Runner) serve(ctx context.Context, srv *http.Server, ln net.Listener) {
	defer close(r.done)
	defer func() {
		r.mu.Lock()
		r.server = nil
		r.mu.Unlock()
	}()
	defer func() {
		if rec := recover(); rec != nil {
			r.log.ErrorContext(ctx, "backend crashed", "panic", rec, "stack", string(debug.Stack()))
			r.exit.Report(exitcode.Failure)
		}
	}()

	r.log.InfoContext(ctx, "backend serving", "addr", ln.Addr().String())
	err := srv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		r.log.InfoContext(ctx, "backend stopped")
		return
	}
	r.log.ErrorContext(ctx, "backend serve failed", "error", err)
	r.exit.Report(exitcode.Failure)
}

// RequestShutdown asks the server to stop. It may be called any number of
// times from any goroutine and never returns an error.
func (r *Runner) RequestShutdown() {
	ctx := context.Background()
	switch {
	case r.shutdownRequested.CompareAndSwap(false, true):
		r.log.InfoContext(ctx, "backend shutdown requested")
	case r.duplicateWarned.CompareAndSwap(false, true):
		r.log.WarnContext(ctx, "backend shutdown already requested")
	default:
		r.log.DebugContext(ctx, "backend shutdown requested again")
	}

	r.mu.Lock()
	srv := r.server
	r.mu.Unlock()
	if srv == nil {
		if r.missingWarned.CompareAndSwap(false, true) {
			r.log.WarnContext(ctx, "no backend server to shut down")
		}
		return
	}

	for attempt := 1; attempt <= r.opts.ShutdownAttempts; attempt++ {
		shutdownCtx, cancel := context.WithTimeout(ctx, r.opts.ShutdownTimeout)
		err := srv.Shutdown(shutdownCtx)
		cancel()
		if err == nil {
			return
		}
		r.log.WarnContext(ctx, "backend shutdown attempt failed", "attempt", attempt, "error", err)
	}
	r.log.ErrorContext(ctx, "backend shutdown gave up", "attempts", r.opts.ShutdownAttempts)
}

// Done is closed when the serve goroutine has returned, or when Start failed
// before launching it.
func (r *Runner) Done() <-chan struct{} {
	return r.done
}

// Alive reports whether the serve goroutine is still running.
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

// Port returns the bound port, or 0 before Start.
func (r *Runner) Port() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.port
}

// URL returns the base URL of the service.
func (r *Runner) URL() string {
	return "http://" + net.JoinHostPort(r.opts.Host, strconv.Itoa(r.Port()))
}

// Title returns the application title.
func (r *Runner) Title() string {
	return r.app.Title()
}
