// Package frontend runs the interactive dashboard window on its own goroutine.
//
// # Overview
//
// A Runner builds a Window through a Factory and blocks on the window's event
// loop from a dedicated goroutine. The window owns all of its UI state; other
// goroutines reach it only through RequestClose, which hands the close to the
// event loop with Window.QueueClose and falls back to Window.PostClose.
//
// # Closing
//
// Whatever closes the window, the user or a RequestClose, the window calls
// WindowOptions.OnClose before its loop exits. The Runner turns the first such
// call into one call of the shutdown callback, so closing the window stops the
// backend. Panics in the callback are logged and the close goes ahead.
//
// # Session
//
// Session is the renderer-independent dashboard logic: it loads the layout
// and bindings from the backend and, whenever the user changes an input,
// evaluates the bindings that depend on it and stores their outputs in a
// state.Store. StartPoller keeps the store's view of backend health current.
package frontend
