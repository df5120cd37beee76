package dash

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
)

var (
	ErrNoOutputs       = errors.New("binding has no outputs")
	ErrNoInputs        = errors.New("binding has no inputs")
	ErrNilHandler      = errors.New("binding has no handler")
	ErrDuplicateOutput = errors.New("output already bound")
	ErrUnknownOutput   = errors.New("no binding for output")
	ErrHandler         = errors.New("binding handler failed")
	ErrOutputArity     = errors.New("handler returned wrong number of outputs")
)

// Endpoint paths served by the backend.
const (
	PathHealth       = "/health"
	PathLayout       = "/_dash-layout"
	PathDependencies = "/_dash-dependencies"
	PathUpdate       = "/_dash-update-component"
)

// InputValue carries the current value of one input property.
type InputValue struct {
	ID       string `json:"id"`
	Property string `json:"property"`
	Value    any    `json:"value"`
}

// UpdateRequest asks for the binding whose first output is Output to be evaluated.
type UpdateRequest struct {
	Output string       `json:"output" binding:"required"`
	Inputs []InputValue `json:"inputs"`
}

// UpdateResponse maps component id to property to new value.
type UpdateResponse struct {
	Response map[string]map[string]any `json:"response"`
}

// Values flattens the response into "id.property" keys.
func (r UpdateResponse) Values() map[string]any {
	out := make(map[string]any)
	for id, props := range r.Response {
		for prop, v := range props {
			out[PropKey(id, prop)] = v
		}
	}
	return out
}

// Registry holds the bindings served by the backend.
type Registry struct {
	mu       sync.RWMutex
	bindings []Binding
	byKey    map[string]int
	outputs  map[string]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		byKey:   make(map[string]int),
		outputs: make(map[string]struct{}),
	}
}

// Register adds b. Every output must be unbound so far.
func (r *Registry) Register(b Binding) error {
	switch {
	case len(b.Outputs) == 0:
		return ErrNoOutputs
	case len(b.Inputs) == 0:
		return ErrNoInputs
	case b.Handler == nil:
		return ErrNilHandler
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]struct{}, len(b.Outputs))
	for _, out := range b.Outputs {
		key := out.Key()
		if _, ok := r.outputs[key]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateOutput, key)
		}
		if _, ok := seen[key]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateOutput, key)
		}
		seen[key] = struct{}{}
	}
	for key := range seen {
		r.outputs[key] = struct{}{}
	}
	r.byKey[b.Outputs[0].Key()] = len(r.bindings)
	r.bindings = append(r.bindings, b)
	return nil
}

// Dependencies lists registered bindings in registration order.
func (r *Registry) Dependencies() []Dependency {
	r.mu.RLock()
	defer r.mu.RUnlock()

	deps := make([]Dependency, 0, len(r.bindings))
	for _, b := range r.bindings {
		deps = append(deps, Dependency{
			Outputs: append([]Output(nil), b.Outputs...),
			Inputs:  append([]Input(nil), b.Inputs...),
		})
	}
	return deps
}

// Dispatch evaluates the binding selected by req.Output. Inputs missing from
// the request are passed to the handler as nil.
func (r *Registry) Dispatch(ctx context.Context, req UpdateRequest) (UpdateResponse, error) {
	r.mu.RLock()
	idx, ok := r.byKey[req.Output]
	var b Binding
	if ok {
		b = r.bindings[idx]
	}
	r.mu.RUnlock()
	if !ok {
		return UpdateResponse{}, fmt.Errorf("%w: %s", ErrUnknownOutput, req.Output)
	}

	given := make(map[string]any, len(req.Inputs))
	for _, in := range req.Inputs {
		given[PropKey(in.ID, in.Property)] = in.Value
	}
	args := make([]any, len(b.Inputs))
	for i, in := range b.Inputs {
		args[i] = given[in.Key()]
	}

	results, err := invoke(ctx, b.Handler, args)
	if err != nil {
		return UpdateResponse{}, fmt.Errorf("%w: %s: %w", ErrHandler, req.Output, err)
	}
	if len(results) != len(b.Outputs) {
		return UpdateResponse{}, fmt.Errorf("%w: %s: got %d, want %d", ErrOutputArity, req.Output, len(results), len(b.Outputs))
	}

	resp := UpdateResponse{Response: make(map[string]map[string]any)}
	for i, out := range b.Outputs {
		props, ok := resp.Response[out.ID]
		if !ok {
			props = make(map[string]any)
			resp.Response[out.ID] = props
		}
		props[out.Property] = results[i]
	}
	return resp, nil
}

func invoke(ctx context.Context, h Handler, args []any) (results []any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v\n%s", rec, debug.Stack())
		}
	}()
	return h(ctx, args)
}
