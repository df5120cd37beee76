package dash

import "encoding/json"

// Figure is a single-series chart.
type Figure struct {
	Title string    `json:"title"`
	X     []string  `json:"x"`
	Y     []float64 `json:"y"`
}

// DecodeFigure converts a property value received over the wire into a Figure.
func DecodeFigure(v any) (Figure, bool) {
	switch f := v.(type) {
	case Figure:
		return f, true
	case *Figure:
		if f == nil {
			return Figure{}, false
		}
		return *f, true
	case nil:
		return Figure{}, false
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return Figure{}, false
	}
	var fig Figure
	if err := json.Unmarshal(raw, &fig); err != nil {
		return Figure{}, false
	}
	if len(fig.X) == 0 && len(fig.Y) == 0 && fig.Title == "" {
		return Figure{}, false
	}
	return fig, true
}
