package state

import (
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/five82/dashterm/internal/dash"
)

// Snapshot represents the latest data available to the UI.
type Snapshot struct {
	Layout       dash.Component
	HasLayout    bool
	Dependencies []dash.Dependency
	Values       map[string]any

	LastUpdated         time.Time
	LastError           error // last failed health check
	UpdateError         error // last failed binding update
	ConsecutiveFailures int   // consecutive failed health checks
}

// IsOffline returns true when the backend has been unreachable for multiple polls.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Value returns the stored value of the "id.property" key.
func (s Snapshot) Value(id, property string) (any, bool) {
	v, ok := s.Values[dash.PropKey(id, property)]
	return v, ok
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// SetLayout records the layout and bindings fetched from the backend.
func (s *Store) SetLayout(layout dash.Component, deps []dash.Dependency) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.Layout = layout
	s.snapshot.HasLayout = true
	s.snapshot.Dependencies = slices.Clone(deps)
	s.snapshot.LastUpdated = time.Now()
}

// SetValues merges property values into the snapshot. A nil err clears the
// recorded update error; a non-nil err is recorded and values are still merged.
func (s *Store) SetValues(values map[string]any, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snapshot.Values == nil {
		s.snapshot.Values = make(map[string]any, len(values))
	}
	maps.Copy(s.snapshot.Values, values)
	s.snapshot.UpdateError = err
	s.snapshot.LastUpdated = time.Now()
}

// RecordHealth stores the outcome of a backend health check. Failures keep the
// previous data and increment the failure counter.
func (s *Store) RecordHealth(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.ConsecutiveFailures++
		return
	}
	s.snapshot.LastError = nil
	s.snapshot.ConsecutiveFailures = 0
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Dependencies = slices.Clone(s.snapshot.Dependencies)
	snap.Values = maps.Clone(s.snapshot.Values)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}
