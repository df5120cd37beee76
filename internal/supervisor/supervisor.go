package supervisor

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/five82/dashterm/internal/exitcode"
)

// Backend is the service half of the dashboard.
type Backend interface {
	// Start blocks until the backend is ready or has failed.
	Start(ctx context.Context) error
	RequestShutdown()
	Done() <-chan struct{}
	Alive() bool
}

// Frontend is the interactive half of the dashboard.
type Frontend interface {
	SetShutdownCallback(fn func())
	// Start launches the frontend and returns without waiting for it.
	Start(ctx context.Context) error
	RequestClose()
	Done() <-chan struct{}
	Alive() bool
}

// Listener observes the supervisor's lifecycle.
type Listener interface {
	Started()
	Stopped(exitCode int)
}

// ListenerFuncs adapts plain functions to Listener. Nil fields are skipped.
type ListenerFuncs struct {
	OnStarted func()
	OnStopped func(exitCode int)
}

func (l ListenerFuncs) Started() {
	if l.OnStarted != nil {
		l.OnStarted()
	}
}

func (l ListenerFuncs) Stopped(exitCode int) {
	if l.OnStopped != nil {
		l.OnStopped(exitCode)
	}
}

const (
	defaultJoinTimeout     = 5 * time.Second
	defaultStartupGrace    = 5 * time.Second
	defaultMonitorInterval = 100 * time.Millisecond
	defaultRetryInterval   = 250 * time.Millisecond
)

// Options configures a Supervisor. Zero durations use the defaults.
type Options struct {
	Listener        Listener
	Logger          *slog.Logger
	JoinTimeout     time.Duration
	StartupGrace    time.Duration
	MonitorInterval time.Duration
	RetryInterval   time.Duration
}

// Supervisor owns one backend and one frontend for a single run.
type Supervisor struct {
	backend  Backend
	frontend Frontend
	exit     *exitcode.Register
	listener Listener
	log      *slog.Logger

	joinTimeout     time.Duration
	startupGrace    time.Duration
	monitorInterval time.Duration
	retryInterval   time.Duration

	shutdownRequested atomic.Bool
	closeRequested    atomic.Bool
}

// New builds a Supervisor. exit should be the register the runners report to.
func New(backend Backend, frontend Frontend, exit *exitcode.Register, opts Options) *Supervisor {
	if exit == nil {
		exit = &exitcode.Register{}
	}
	listener := opts.Listener
	if listener == nil {
		listener = ListenerFuncs{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Supervisor{
		backend:         backend,
		frontend:        frontend,
		exit:            exit,
		listener:        listener,
		log:             logger.With("component", "supervisor"),
		joinTimeout:     orDefault(opts.JoinTimeout, defaultJoinTimeout),
		startupGrace:    orDefault(opts.StartupGrace, defaultStartupGrace),
		monitorInterval: orDefault(opts.MonitorInterval, defaultMonitorInterval),
		retryInterval:   orDefault(opts.RetryInterval, defaultRetryInterval),
	}
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}

// Run executes the whole lifecycle and returns the process exit code.
// Cancelling ctx asks both runners to stop.
func (s *Supervisor) Run(ctx context.Context) int {
	s.log.InfoContext(ctx, "starting dashboard")
	s.execute(ctx)

	code := s.exit.Code()
	s.log.InfoContext(ctx, "finishing with exit code", "exit_code", code)
	s.notifyStopped(ctx, code)
	if s.backend.Alive() {
		s.log.WarnContext(ctx, "backend still running at exit")
	}
	if s.frontend.Alive() {
		s.log.WarnContext(ctx, "frontend still running at exit")
	}
	return code
}

// ExitCode returns the code aggregated so far.
func (s *Supervisor) ExitCode() int {
	return s.exit.Code()
}

func (s *Supervisor) execute(ctx context.Context) {
	bothStarted := false
	defer func() {
		if rec := recover(); rec != nil {
			s.log.ErrorContext(ctx, "unexpected failure while supervising", "panic", rec, "stack", string(debug.Stack()))
			s.exit.Report(exitcode.Failure)
			if bothStarted {
				s.cleanupOnError(ctx)
			}
		}
	}()

	if err := s.backend.Start(ctx); err != nil {
		s.log.ErrorContext(ctx, "backend failed to start", "error", err)
		s.exit.Report(exitcode.Failure)
		return
	}

	s.frontend.SetShutdownCallback(s.backend.RequestShutdown)
	if err := s.frontend.Start(ctx); err != nil {
		s.log.ErrorContext(ctx, "frontend failed to start", "error", err)
		s.stopBackend(ctx)
		s.exit.Report(exitcode.Failure)
		return
	}

	bothStarted = true
	s.notifyStarted(ctx)
	s.monitor(ctx)
}

// stopBackend asks the backend to stop until it has stopped or the startup
// grace period runs out.
func (s *Supervisor) stopBackend(ctx context.Context) {
	deadline := time.After(s.startupGrace)
	for {
		s.backend.RequestShutdown()
		select {
		case <-s.backend.Done():
			return
		case <-deadline:
			s.log.WarnContext(ctx, "backend did not stop in time", "timeout", s.startupGrace)
			return
		case <-time.After(s.retryInterval):
		}
	}
}

// monitor waits until both runners have stopped, asking the survivor to stop
// when the other one goes away.
func (s *Supervisor) monitor(ctx context.Context) {
	ticker := time.NewTicker(s.monitorInterval)
	defer ticker.Stop()

	cancelled := ctx.Done()
	var giveUp <-chan time.Time

	for {
		backendDone := closed(s.backend.Done())
		frontendDone := closed(s.frontend.Done())

		switch {
		case backendDone && frontendDone:
			s.joinAll(ctx)
			return
		case backendDone:
			if s.closeRequested.CompareAndSwap(false, true) {
				s.log.WarnContext(ctx, "backend stopped, closing frontend")
				s.frontend.RequestClose()
				giveUp = time.After(s.joinTimeout)
			}
		case frontendDone:
			if s.shutdownRequested.CompareAndSwap(false, true) {
				s.log.WarnContext(ctx, "frontend stopped, shutting down backend")
				s.backend.RequestShutdown()
				giveUp = time.After(s.joinTimeout)
			}
		}

		select {
		case <-cancelled:
			cancelled = nil
			s.log.InfoContext(ctx, "interrupted, stopping dashboard")
			if s.closeRequested.CompareAndSwap(false, true) {
				s.frontend.RequestClose()
			}
			if s.shutdownRequested.CompareAndSwap(false, true) {
				s.backend.RequestShutdown()
			}
			if giveUp == nil {
				giveUp = time.After(s.joinTimeout)
			}
		case <-giveUp:
			s.log.WarnContext(ctx, "dashboard did not stop after request", "timeout", s.joinTimeout)
			s.joinAll(ctx)
			return
		case <-ticker.C:
		}
	}
}

func (s *Supervisor) cleanupOnError(ctx context.Context) {
	s.log.WarnContext(ctx, "cleaning up after failure")
	s.safely(ctx, "frontend close", s.frontend.RequestClose)
	s.safely(ctx, "backend shutdown", s.backend.RequestShutdown)
	s.joinAll(ctx)
}

// joinAll waits for both runners concurrently, each for at most joinTimeout.
func (s *Supervisor) joinAll(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Go(func() { s.join(ctx, "backend", s.backend.Done()) })
	wg.Go(func() { s.join(ctx, "frontend", s.frontend.Done()) })
	wg.Wait()
}

func (s *Supervisor) join(ctx context.Context, name string, done <-chan struct{}) {
	timer := time.NewTimer(s.joinTimeout)
	defer timer.Stop()
	select {
	case <-done:
	case <-timer.C:
		s.log.WarnContext(ctx, "runner did not stop in time", "runner", name, "timeout", s.joinTimeout)
	}
}

func (s *Supervisor) notifyStarted(ctx context.Context) {
	s.safely(ctx, "listener started", s.listener.Started)
}

func (s *Supervisor) notifyStopped(ctx context.Context, code int) {
	s.safely(ctx, "listener stopped", func() { s.listener.Stopped(code) })
}

func (s *Supervisor) safely(ctx context.Context, what string, fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			s.log.ErrorContext(ctx, what+" failed", "panic", rec, "stack", string(debug.Stack()))
		}
	}()
	fn()
}

func closed(done <-chan struct{}) bool {
	select {
	case <-done:
		return true
	default:
		return false
	}
}
