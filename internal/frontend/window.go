package frontend

import (
	"context"
	"log/slog"

	"github.com/five82/dashterm/internal/state"
)

// Window is an interactive event loop rendering the dashboard.
//
// Run is called once, on the frontend goroutine, and blocks until the loop
// exits. QueueClose and PostClose may be called from any goroutine; they must
// only hand work to the loop through its own thread-safe queue.
type Window interface {
	// Run blocks on the event loop and returns its exit code.
	Run() (int, error)
	// QueueClose schedules the window's close path on the event loop.
	QueueClose() error
	// PostClose posts a lower-level close event through the loop's queue.
	PostClose() error
}

// WindowOptions is everything a Factory needs to build a window.
type WindowOptions struct {
	Context   context.Context
	Title     string
	Session   *Session
	Store     *state.Store
	Theme     string
	PrefsPath string
	LogPath   string
	Logger    *slog.Logger

	// OnClose must be called by the window when it is about to close,
	// before its event loop exits.
	OnClose func()
}

// Factory builds a Window. It runs on the frontend goroutine.
type Factory func(WindowOptions) (Window, error)
