// Package logtail reads the end of the dashterm log file for the log pane.
//
// Read keeps a ring buffer of the last maxLines lines, so memory stays
// bounded no matter how large the file grows. Tail additionally decodes each
// line as a slog JSON record; lines that are not JSON (for example a panic
// trace written by the runtime) are kept as plain messages.
//
// A missing file is not an error: the log pane simply shows nothing until
// the first record is written.
package logtail
