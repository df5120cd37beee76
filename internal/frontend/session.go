package frontend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/five82/dashterm/internal/dash"
	"github.com/five82/dashterm/internal/dashclient"
	"github.com/five82/dashterm/internal/state"
)

// Session drives the dashboard on the frontend side: it loads the layout and
// keeps output properties in sync with the inputs the user changes.
type Session struct {
	api   dashclient.API
	store *state.Store
	log   *slog.Logger
}

func NewSession(api dashclient.API, store *state.Store, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Session{api: api, store: store, log: logger}
}

// Store returns the snapshot store the session writes to.
func (s *Session) Store() *state.Store {
	return s.store
}

// Load fetches the layout and bindings, seeds input values from the layout
// and evaluates every binding once.
func (s *Session) Load(ctx context.Context) error {
	layout, err := s.api.FetchLayout(ctx)
	if err != nil {
		return fmt.Errorf("fetch layout: %w", err)
	}
	deps, err := s.api.FetchDependencies(ctx)
	if err != nil {
		return fmt.Errorf("fetch dependencies: %w", err)
	}
	s.store.SetLayout(layout, deps)
	s.store.SetValues(layout.InitialValues(), nil)

	var errs []error
	for _, dep := range deps {
		if err := s.evaluate(ctx, dep); err != nil {
			errs = append(errs, err)
		}
	}
	s.log.DebugContext(ctx, "dashboard loaded", "bindings", len(deps), "failed", len(errs))
	return errors.Join(errs...)
}

// SetInput stores a new value for an input property and re-evaluates every
// binding that depends on it, following chains of bindings whose outputs
// feed other bindings. Each binding is evaluated at most once per call.
func (s *Session) SetInput(ctx context.Context, id, property string, value any) error {
	s.store.SetValues(map[string]any{dash.PropKey(id, property): value}, nil)

	deps := s.store.Snapshot().Dependencies
	visited := make(map[string]bool, len(deps))
	changed := []string{dash.PropKey(id, property)}

	var errs []error
	for len(changed) > 0 {
		key := changed[0]
		changed = changed[1:]
		for _, dep := range deps {
			if visited[dep.Key()] || !dep.DependsOn(key) {
				continue
			}
			visited[dep.Key()] = true
			if err := s.evaluate(ctx, dep); err != nil {
				errs = append(errs, err)
				continue
			}
			for _, out := range dep.Outputs {
				changed = append(changed, out.Key())
			}
		}
	}
	return errors.Join(errs...)
}

func (s *Session) evaluate(ctx context.Context, dep dash.Dependency) error {
	snap := s.store.Snapshot()
	req := dash.UpdateRequest{Output: dep.Key()}
	for _, in := range dep.Inputs {
		req.Inputs = append(req.Inputs, dash.InputValue{
			ID:       in.ID,
			Property: in.Property,
			Value:    snap.Values[in.Key()],
		})
	}

	resp, err := s.api.Update(ctx, req)
	if err != nil {
		err = fmt.Errorf("update %s: %w", dep.Key(), err)
		s.log.WarnContext(ctx, "binding update failed", "output", dep.Key(), "error", err)
		s.store.SetValues(nil, err)
		return err
	}
	s.store.SetValues(resp.Values(), nil)
	return nil
}
