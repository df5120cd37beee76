// Package backend runs the dashboard HTTP service on its own goroutine.
//
// # Overview
//
// A Runner pulls the layout and bindings from a dash.App once, binds an
// ephemeral port on the loopback interface and serves the dashboard API with
// gin until asked to stop. Start blocks until the /health endpoint answers or
// startup fails; everything else on Runner is safe to call from any goroutine.
//
// # Failure Reporting
//
// The serve goroutine is the only place the backend can fail after Start
// returns. Serve errors and panics there are logged and reported to the
// shared exit code register as exitcode.Failure. A shutdown requested through
// RequestShutdown is a clean stop and reports nothing.
//
// # Shutdown
//
// RequestShutdown calls http.Server.Shutdown every time it is invoked, so a
// caller waiting for Done may retry it. Only the first call is logged at info
// level and only the first duplicate produces a warning.
package backend
