package dash

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func echoBinding(out, in string) Binding {
	return Binding{
		Outputs: []Output{{ID: out, Property: "children"}},
		Inputs:  []Input{{ID: in, Property: "value"}},
		Handler: func(_ context.Context, inputs []any) ([]any, error) {
			return []any{fmt.Sprintf("got %v", inputs[0])}, nil
		},
	}
}

func TestRegisterRejectsInvalidBindings(t *testing.T) {
	handler := func(context.Context, []any) ([]any, error) { return nil, nil }
	tests := []struct {
		name    string
		binding Binding
		want    error
	}{
		{"no outputs", Binding{Inputs: []Input{{ID: "a", Property: "value"}}, Handler: handler}, ErrNoOutputs},
		{"no inputs", Binding{Outputs: []Output{{ID: "a", Property: "value"}}, Handler: handler}, ErrNoInputs},
		{"nil handler", Binding{Outputs: []Output{{ID: "a", Property: "x"}}, Inputs: []Input{{ID: "b", Property: "value"}}}, ErrNilHandler},
		{"repeated output", Binding{
			Outputs: []Output{{ID: "a", Property: "x"}, {ID: "a", Property: "x"}},
			Inputs:  []Input{{ID: "b", Property: "value"}},
			Handler: handler,
		}, ErrDuplicateOutput},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := NewRegistry().Register(tc.binding); !errors.Is(err, tc.want) {
				t.Fatalf("Register error = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestRegisterRejectsOutputBoundTwice(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(echoBinding("out", "in")); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	if err := r.Register(echoBinding("out", "other")); !errors.Is(err, ErrDuplicateOutput) {
		t.Fatalf("second Register error = %v, want ErrDuplicateOutput", err)
	}
	if got := len(r.Dependencies()); got != 1 {
		t.Fatalf("Dependencies() has %d entries, want 1", got)
	}
}

func TestDispatch(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(echoBinding("out", "in")); err != nil {
		t.Fatalf("Register: %v", err)
	}

	resp, err := r.Dispatch(context.Background(), UpdateRequest{
		Output: "out.children",
		Inputs: []InputValue{{ID: "in", Property: "value", Value: "hello"}},
	})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if got := resp.Values()["out.children"]; got != "got hello" {
		t.Fatalf("out.children = %v, want %q", got, "got hello")
	}

	resp, err = r.Dispatch(context.Background(), UpdateRequest{Output: "out.children"})
	if err != nil {
		t.Fatalf("Dispatch without inputs: %v", err)
	}
	if got := resp.Values()["out.children"]; got != "got <nil>" {
		t.Fatalf("out.children = %v, want %q", got, "got <nil>")
	}
}

func TestDispatchErrors(t *testing.T) {
	r := NewRegistry()
	register := func(out string, h Handler) {
		t.Helper()
		err := r.Register(Binding{
			Outputs: []Output{{ID: out, Property: "x"}},
			Inputs:  []Input{{ID: "in", Property: "value"}},
			Handler: h,
		})
		if err != nil {
			t.Fatalf("Register(%s): %v", out, err)
		}
	}
	register("fails", func(context.Context, []any) ([]any, error) { return nil, errors.New("boom") })
	register("panics", func(context.Context, []any) ([]any, error) { panic("kaboom") })
	register("arity", func(context.Context, []any) ([]any, error) { return []any{1, 2}, nil })

	tests := []struct {
		output string
		want   error
	}{
		{"missing.x", ErrUnknownOutput},
		{"fails.x", ErrHandler},
		{"panics.x", ErrHandler},
		{"arity.x", ErrOutputArity},
	}
	for _, tc := range tests {
		t.Run(tc.output, func(t *testing.T) {
			_, err := r.Dispatch(context.Background(), UpdateRequest{Output: tc.output})
			if !errors.Is(err, tc.want) {
				t.Fatalf("Dispatch error = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestComponentFindAndInitialValues(t *testing.T) {
	layout := Div(
		H1("Title"),
		Div(Dropdown("pick", []string{"a", "b"}, "b")),
		Graph("chart"),
	)

	got, ok := layout.Find("chart")
	if !ok || got.Type != TypeGraph {
		t.Fatalf("Find(chart) = %+v, %v", got, ok)
	}
	if _, ok := layout.Find("nope"); ok {
		t.Fatalf("Find(nope) succeeded")
	}

	values := layout.InitialValues()
	if len(values) != 1 || values["pick.value"] != "b" {
		t.Fatalf("InitialValues() = %v, want pick.value=b", values)
	}
}

func TestDecodeFigure(t *testing.T) {
	wire := map[string]any{
		"title": "Growth",
		"x":     []any{"1990", "2000"},
		"y":     []any{1.5, 2.5},
	}
	fig, ok := DecodeFigure(wire)
	if !ok {
		t.Fatalf("DecodeFigure failed")
	}
	if fig.Title != "Growth" || len(fig.X) != 2 || fig.Y[1] != 2.5 {
		t.Fatalf("DecodeFigure = %+v", fig)
	}

	for _, v := range []any{nil, "text", map[string]any{}} {
		if _, ok := DecodeFigure(v); ok {
			t.Fatalf("DecodeFigure(%v) succeeded, want failure", v)
		}
	}
}
