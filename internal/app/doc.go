// Package app is the dashterm composition root.
//
// Run loads the configuration, opens the log, and builds the two halves of a
// dashboard run: a backend.Runner serving the dashboard over HTTP on an
// ephemeral loopback port, and a frontend.Runner hosting the terminal window.
// A supervisor.Supervisor owns both and decides the process exit code.
//
//	Run()
//	 ├─> config.Load()          config.toml, then CLI overrides
//	 ├─> log.Open()             JSON records tagged with a run_id
//	 ├─> backend.NewRunner()    gin router for the dashboard
//	 ├─> frontend.NewRunner()   Bubble Tea or tview window
//	 └─> supervisor.Run()       blocks until both halves stop
//
// Because the terminal belongs to the window, logs go to a file unless the
// configuration sends them elsewhere.
package app
