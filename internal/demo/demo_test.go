package demo

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/five82/dashterm/internal/dash"
)

func TestNewParsesEmbeddedData(t *testing.T) {
	app, err := New()
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	layout := app.Layout()
	dropdown, ok := layout.Find(DropdownID)
	if !ok {
		t.Fatalf("layout has no %s", DropdownID)
	}
	if dropdown.Value != defaultCountry {
		t.Fatalf("dropdown value = %v, want %q", dropdown.Value, defaultCountry)
	}
	if len(dropdown.Options) < 2 {
		t.Fatalf("dropdown options = %v, want several countries", dropdown.Options)
	}
	if _, ok := layout.Find(GraphID); !ok {
		t.Fatalf("layout has no %s", GraphID)
	}
}

func TestBindingProducesFigure(t *testing.T) {
	app, err := New()
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	reg := dash.NewRegistry()
	for _, b := range app.Bindings() {
		if err := reg.Register(b); err != nil {
			t.Fatalf("Register: %v", err)
		}
	}

	resp, err := reg.Dispatch(context.Background(), dash.UpdateRequest{
		Output: dash.PropKey(GraphID, "figure"),
		Inputs: []dash.InputValue{{ID: DropdownID, Property: "value", Value: "Canada"}},
	})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	fig, ok := dash.DecodeFigure(resp.Values()[dash.PropKey(GraphID, "figure")])
	if !ok {
		t.Fatalf("response has no figure: %v", resp)
	}
	if fig.Title != "Canada population" || len(fig.X) != len(fig.Y) || len(fig.X) == 0 {
		t.Fatalf("figure = %+v", fig)
	}
	for i := 1; i < len(fig.X); i++ {
		if fig.X[i] <= fig.X[i-1] {
			t.Fatalf("years not ascending: %v", fig.X)
		}
	}
}

func TestFigureUnknownCountry(t *testing.T) {
	app, err := New()
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if _, err := app.Figure("Atlantis"); !errors.Is(err, ErrUnknownCountry) {
		t.Fatalf("Figure error = %v, want ErrUnknownCountry", err)
	}
}

func TestParseRejectsBadData(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"wrong header", "name,year,pop\nX,1952,1\n"},
		{"bad number", "country,year,pop\nX,1952,lots\n"},
		{"empty", "country,year,pop\n"},
		{"short row", "country,year,pop\nX,1952\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := parse(strings.NewReader(tc.data)); err == nil {
				t.Fatalf("parse succeeded, want error")
			}
		})
	}
}
