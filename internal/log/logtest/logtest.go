// Package logtest records slog output for assertions in tests.
package logtest

import (
	"context"
	"log/slog"
	"slices"
	"sync"
)

// Record is one captured log entry.
type Record struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// Recorder collects records from every logger derived from New.
type Recorder struct {
	mu      sync.Mutex
	records []Record
}

// New returns a debug-level logger and the recorder it writes to.
func New() (*slog.Logger, *Recorder) {
	rec := &Recorder{}
	return slog.New(&handler{rec: rec}), rec
}

// Records returns a copy of everything captured so far.
func (r *Recorder) Records() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.records)
}

// Count returns how many records match level and message.
func (r *Recorder) Count(level slog.Level, msg string) int {
	n := 0
	for _, rec := range r.Records() {
		if rec.Level == level && rec.Message == msg {
			n++
		}
	}
	return n
}

// CountLevel returns how many records were logged at level.
func (r *Recorder) CountLevel(level slog.Level) int {
	n := 0
	for _, rec := range r.Records() {
		if rec.Level == level {
			n++
		}
	}
	return n
}

type handler struct {
	rec   *Recorder
	attrs []slog.Attr
}

func (h *handler) Enabled(context.Context, slog.Level) bool { return true }

func (h *handler) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]any, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		attrs[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Any()
		return true
	})
	h.rec.mu.Lock()
	h.rec.records = append(h.rec.records, Record{Level: r.Level, Message: r.Message, Attrs: attrs})
	h.rec.mu.Unlock()
	return nil
}

func (h *handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &handler{rec: h.rec, attrs: slices.Concat(h.attrs, attrs)}
}

func (h *handler) WithGroup(string) slog.Handler { return h }
