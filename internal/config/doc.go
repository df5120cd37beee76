// Package config loads the dashterm configuration file.
//
// # Overview
//
// The configuration is a small TOML document. Every field is optional; a
// missing file yields Default(). Loaded values are validated before use.
//
// # TOML Format
//
//	host = "127.0.0.1"        # loopback only: localhost, 127.0.0.0/8 or ::1
//	frontend = "tea"          # or "classic"
//	title = "Population"
//	theme = "Nightfox"
//	prefs_file = "~/.config/dashterm/prefs.toml"
//
//	[log]
//	output = "~/.local/state/dashterm/dashterm.log"   # or stderr, stdout, discard
//	level = "info"
//
//	[timing]
//	startup_timeout = "15s"
//	probe_interval = "250ms"
//	join_timeout = "5s"
//	monitor_interval = "100ms"
//	poll_interval = "2s"
//
// Durations use time.ParseDuration syntax. Tilde expansion is performed for
// the config path, the prefs file and a log output that names a file.
//
// # Error Handling
//
// Load returns errors for unreadable files, TOML syntax errors, malformed
// durations and values rejected by Validate. A missing file is not an error.
package config
