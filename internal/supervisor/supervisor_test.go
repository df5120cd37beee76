package supervisor_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/five82/dashterm/internal/exitcode"
	"github.com/five82/dashterm/internal/log/logtest"
	"github.com/five82/dashterm/internal/supervisor"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeBackend struct {
	exit *exitcode.Register

	startErr   error
	startPanic bool
	// ignore is how many shutdown requests are ignored before stopping; -1 ignores all.
	ignore      int32
	panicOnDone atomic.Bool

	started   atomic.Bool
	shutdowns atomic.Int32
	done      chan struct{}
	once      sync.Once
}

func newBackend(exit *exitcode.Register) *fakeBackend {
	return &fakeBackend{exit: exit, done: make(chan struct{})}
}

func (b *fakeBackend) Start(context.Context) error {
	if b.startPanic {
		panic("backend start exploded")
	}
	if b.startErr != nil {
		b.stop()
		return b.startErr
	}
	b.started.Store(true)
	return nil
}

func (b *fakeBackend) RequestShutdown() {
	n := b.shutdowns.Add(1)
	if b.ignore >= 0 && n > b.ignore {
		b.stop()
	}
}

func (b *fakeBackend) Done() <-chan struct{} {
	if b.panicOnDone.CompareAndSwap(true, false) {
		panic("backend done exploded")
	}
	return b.done
}

func (b *fakeBackend) Alive() bool {
	if !b.started.Load() {
		return false
	}
	select {
	case <-b.done:
		return false
	default:
		return true
	}
}

func (b *fakeBackend) stop() { b.once.Do(func() { close(b.done) }) }

// crash stops the backend on its own and reports code.
func (b *fakeBackend) crash(code int) {
	b.exit.Report(code)
	b.stop()
}

type fakeFrontend struct {
	exit *exitcode.Register

	startErr    error
	ignoreClose bool

	mu       sync.Mutex
	callback func()

	started atomic.Bool
	closes  atomic.Int32
	done    chan struct{}
	once    sync.Once
}

func newFrontend(exit *exitcode.Register) *fakeFrontend {
	return &fakeFrontend{exit: exit, done: make(chan struct{})}
}

func (f *fakeFrontend) SetShutdownCallback(fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.callback = fn
}

func (f *fakeFrontend) Start(context.Context) error {
	if f.startErr != nil {
		return f.startErr
	}
	f.started.Store(true)
	return nil
}

func (f *fakeFrontend) RequestClose() {
	f.closes.Add(1)
	if !f.ignoreClose {
		f.userClose()
	}
}

func (f *fakeFrontend) Done() <-chan struct{} { return f.done }

func (f *fakeFrontend) Alive() bool {
	if !f.started.Load() {
		return false
	}
	select {
	case <-f.done:
		return false
	default:
		return true
	}
}

// userClose is the window close path: callback first, then the loop exits.
func (f *fakeFrontend) userClose() {
	f.once.Do(func() {
		f.mu.Lock()
		cb := f.callback
		f.mu.Unlock()
		if cb != nil {
			cb()
		}
		close(f.done)
	})
}

// crash exits the loop without running the close path and reports code.
func (f *fakeFrontend) crash(code int) {
	f.exit.Report(code)
	f.once.Do(func() { close(f.done) })
}

type recordingListener struct {
	mu            sync.Mutex
	started       int
	stoppedCodes  []int
	panicOnStart  bool
	panicOnStop   bool
	startedSignal chan struct{}
}

func newListener() *recordingListener {
	return &recordingListener{startedSignal: make(chan struct{}, 1)}
}

func (l *recordingListener) Started() {
	l.mu.Lock()
	l.started++
	l.mu.Unlock()
	l.startedSignal <- struct{}{}
	if l.panicOnStart {
		panic("listener start failed")
	}
}

func (l *recordingListener) Stopped(code int) {
	l.mu.Lock()
	l.stoppedCodes = append(l.stoppedCodes, code)
	l.mu.Unlock()
	if l.panicOnStop {
		panic("listener stop failed")
	}
}

func (l *recordingListener) snapshot() (int, []int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.started, append([]int(nil), l.stoppedCodes...)
}

type fixture struct {
	exit     *exitcode.Register
	backend  *fakeBackend
	frontend *fakeFrontend
	listener *recordingListener
	rec      *logtest.Recorder
}

func newFixture() *fixture {
	exit := &exitcode.Register{}
	return &fixture{
		exit:     exit,
		backend:  newBackend(exit),
		frontend: newFrontend(exit),
		listener: newListener(),
	}
}

func (f *fixture) supervisor() *supervisor.Supervisor {
	logger, rec := logtest.New()
	f.rec = rec
	return supervisor.New(f.backend, f.frontend, f.exit, supervisor.Options{
		Listener:        f.listener,
		Logger:          logger,
		JoinTimeout:     300 * time.Millisecond,
		StartupGrace:    300 * time.Millisecond,
		MonitorInterval: 5 * time.Millisecond,
		RetryInterval:   5 * time.Millisecond,
	})
}

// runAsync starts Run on its own goroutine and waits for the started notification.
func (f *fixture) runAsync(t *testing.T, ctx context.Context) <-chan int {
	t.Helper()
	sup := f.supervisor()
	result := make(chan int, 1)
	go func() { result <- sup.Run(ctx) }()
	select {
	case <-f.listener.startedSignal:
	case <-time.After(2 * time.Second):
		t.Fatal("listener was never notified of start")
	}
	return result
}

func wait(t *testing.T, result <-chan int) int {
	t.Helper()
	select {
	case code := <-result:
		return code
	case <-time.After(5 * time.Second):
		t.Fatal("supervisor did not return")
		return -1
	}
}

func TestCleanRunExitsZero(t *testing.T) {
	f := newFixture()
	result := f.runAsync(t, t.Context())

	f.frontend.userClose()

	require.Equal(t, 0, wait(t, result))
	started, stopped := f.listener.snapshot()
	require.Equal(t, 1, started)
	require.Equal(t, []int{0}, stopped)
	require.EqualValues(t, 1, f.backend.shutdowns.Load(), "closing the window shuts the backend down once")
}

func TestBackendStartFailure(t *testing.T) {
	f := newFixture()
	f.backend.startErr = errors.New("port in use")

	code := f.supervisor().Run(t.Context())

	require.Equal(t, exitcode.Failure, code)
	started, stopped := f.listener.snapshot()
	require.Zero(t, started)
	require.Equal(t, []int{exitcode.Failure}, stopped)
	require.False(t, f.frontend.started.Load(), "frontend must not start after a backend failure")
}

func TestFrontendStartFailureStopsBackend(t *testing.T) {
	f := newFixture()
	f.frontend.startErr = errors.New("no display")
	f.backend.ignore = 2

	code := f.supervisor().Run(t.Context())

	require.Equal(t, exitcode.Failure, code)
	require.EqualValues(t, 3, f.backend.shutdowns.Load(), "shutdown is retried until the backend stops")
	require.False(t, f.backend.Alive())
	started, stopped := f.listener.snapshot()
	require.Zero(t, started)
	require.Equal(t, []int{exitcode.Failure}, stopped)
}

func TestFrontendStartFailureWithStuckBackendIsBounded(t *testing.T) {
	f := newFixture()
	f.frontend.startErr = errors.New("no display")
	f.backend.ignore = -1

	start := time.Now()
	code := f.supervisor().Run(t.Context())

	require.Equal(t, exitcode.Failure, code)
	require.Less(t, time.Since(start), 2*time.Second)
	require.Equal(t, 1, f.rec.Count(slog.LevelWarn, "backend did not stop in time"))
	require.Equal(t, 1, f.rec.Count(slog.LevelWarn, "backend still running at exit"))
}

func TestBackendDeathClosesFrontendOnce(t *testing.T) {
	f := newFixture()
	f.frontend.ignoreClose = true
	result := f.runAsync(t, t.Context())

	f.backend.crash(exitcode.Failure)
	require.Eventually(t, func() bool { return f.frontend.closes.Load() == 1 }, 2*time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	require.EqualValues(t, 1, f.frontend.closes.Load(), "close is requested only once while the frontend lingers")

	f.frontend.userClose()
	require.Equal(t, exitcode.Failure, wait(t, result))
	_, stopped := f.listener.snapshot()
	require.Equal(t, []int{exitcode.Failure}, stopped)
}

func TestFrontendCrashShutsDownBackendOnce(t *testing.T) {
	f := newFixture()
	f.backend.ignore = 1
	result := f.runAsync(t, t.Context())

	f.frontend.crash(2)
	require.Eventually(t, func() bool { return f.backend.shutdowns.Load() == 1 }, 2*time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	require.EqualValues(t, 1, f.backend.shutdowns.Load(), "shutdown is requested only once by the monitor")

	f.backend.stop()
	require.Equal(t, 2, wait(t, result))
}

func TestFirstFailureWins(t *testing.T) {
	f := newFixture()
	result := f.runAsync(t, t.Context())

	f.backend.crash(3)
	f.frontend.crash(1)

	require.Equal(t, 3, wait(t, result))
	_, stopped := f.listener.snapshot()
	require.Equal(t, []int{3}, stopped)
}

func TestListenerPanicsAreSwallowed(t *testing.T) {
	f := newFixture()
	f.listener.panicOnStart = true
	f.listener.panicOnStop = true
	result := f.runAsync(t, t.Context())

	f.frontend.userClose()

	require.Equal(t, 0, wait(t, result))
	require.Equal(t, 1, f.rec.Count(slog.LevelError, "listener started failed"))
	require.Equal(t, 1, f.rec.Count(slog.LevelError, "listener stopped failed"))
}

func TestCancelStopsBoth(t *testing.T) {
	f := newFixture()
	ctx, cancel := context.WithCancel(t.Context())
	result := f.runAsync(t, ctx)

	cancel()

	require.Equal(t, 0, wait(t, result))
	require.EqualValues(t, 1, f.frontend.closes.Load())
	require.False(t, f.backend.Alive())
	require.False(t, f.frontend.Alive())
}

func TestStuckSurvivorDoesNotHangRun(t *testing.T) {
	f := newFixture()
	f.frontend.ignoreClose = true
	result := f.runAsync(t, t.Context())

	f.backend.crash(exitcode.Failure)

	require.Equal(t, exitcode.Failure, wait(t, result))
	require.Equal(t, 1, f.rec.Count(slog.LevelWarn, "dashboard did not stop after request"))
	require.Equal(t, 1, f.rec.Count(slog.LevelWarn, "frontend still running at exit"))
	f.frontend.userClose()
}

func TestPanicBeforeStartSkipsCleanup(t *testing.T) {
	f := newFixture()
	f.backend.startPanic = true

	code := f.supervisor().Run(t.Context())

	require.Equal(t, exitcode.Failure, code)
	require.Zero(t, f.frontend.closes.Load())
	require.Zero(t, f.backend.shutdowns.Load())
	_, stopped := f.listener.snapshot()
	require.Equal(t, []int{exitcode.Failure}, stopped)
}

func TestPanicAfterStartCleansUp(t *testing.T) {
	f := newFixture()
	f.backend.panicOnDone.Store(true)

	code := f.supervisor().Run(t.Context())

	require.Equal(t, exitcode.Failure, code)
	require.EqualValues(t, 1, f.frontend.closes.Load())
	require.EqualValues(t, 2, f.backend.shutdowns.Load(), "once from the close callback, once from cleanup")
	require.False(t, f.frontend.Alive())
	require.False(t, f.backend.Alive())
	require.Equal(t, 1, f.rec.Count(slog.LevelError, "unexpected failure while supervising"))
}

func TestListenerFuncs(t *testing.T) {
	var started bool
	var code int
	l := supervisor.ListenerFuncs{
		OnStarted: func() { started = true },
		OnStopped: func(c int) { code = c },
	}
	l.Started()
	l.Stopped(4)
	require.True(t, started)
	require.Equal(t, 4, code)

	require.NotPanics(t, func() {
		supervisor.ListenerFuncs{}.Started()
		supervisor.ListenerFuncs{}.Stopped(0)
	})
}
