// Package demo is the bundled population dashboard.
package demo

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/five82/dashterm/internal/dash"
)

//go:embed data/population.csv
var populationCSV []byte

// Component ids used by the layout and binding.
const (
	DropdownID = "dropdown-selection"
	GraphID    = "graph-content"

	defaultCountry = "United States"
)

var ErrUnknownCountry = errors.New("unknown country")

type point struct {
	year string
	pop  float64
}

// App serves population over time for one selected country.
type App struct {
	countries []string
	series    map[string][]point
}

var _ dash.App = (*App)(nil)

// New parses the embedded dataset.
func New() (*App, error) {
	return parse(bytes.NewReader(populationCSV))
}

func parse(r io.Reader) (*App, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 3

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if strings.Join(header, ",") != "country,year,pop" {
		return nil, fmt.Errorf("unexpected header %q", header)
	}

	app := &App{series: make(map[string][]point)}
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		pop, err := strconv.ParseFloat(rec[2], 64)
		if err != nil {
			return nil, fmt.Errorf("parse pop for %s %s: %w", rec[0], rec[1], err)
		}
		country := strings.TrimSpace(rec[0])
		if _, ok := app.series[country]; !ok {
			app.countries = append(app.countries, country)
		}
		app.series[country] = append(app.series[country], point{year: rec[1], pop: pop})
	}
	if len(app.countries) == 0 {
		return nil, errors.New("dataset is empty")
	}
	return app, nil
}

func (a *App) Title() string { return "Population Growth" }

func (a *App) Layout() dash.Component {
	selected := defaultCountry
	if _, ok := a.series[selected]; !ok {
		selected = a.countries[0]
	}
	return dash.Div(
		dash.H1("Population by country"),
		dash.Dropdown(DropdownID, a.countries, selected),
		dash.Graph(GraphID),
	)
}

func (a *App) Bindings() []dash.Binding {
	return []dash.Binding{{
		Outputs: []dash.Output{{ID: GraphID, Property: "figure"}},
		Inputs:  []dash.Input{{ID: DropdownID, Property: "value"}},
		Handler: a.updateGraph,
	}}
}

func (a *App) updateGraph(_ context.Context, inputs []any) ([]any, error) {
	country, _ := inputs[0].(string)
	fig, err := a.Figure(country)
	if err != nil {
		return nil, err
	}
	return []any{fig}, nil
}

// Figure returns the population series of country.
func (a *App) Figure(country string) (dash.Figure, error) {
	points, ok := a.series[country]
	if !ok {
		return dash.Figure{}, fmt.Errorf("%w: %q", ErrUnknownCountry, country)
	}
	fig := dash.Figure{Title: country + " population"}
	for _, p := range points {
		fig.X = append(fig.X, p.year)
		fig.Y = append(fig.Y, p.pop)
	}
	return fig, nil
}
