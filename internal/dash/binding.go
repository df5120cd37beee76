package dash

import "context"

// PropKey renders the "id.property" address of a component property.
func PropKey(id, property string) string {
	return id + "." + property
}

// Output is a component property a binding writes.
type Output struct {
	ID       string `json:"id"`
	Property string `json:"property"`
}

func (o Output) Key() string { return PropKey(o.ID, o.Property) }

// Input is a component property a binding reads.
type Input struct {
	ID       string `json:"id"`
	Property string `json:"property"`
}

func (i Input) Key() string { return PropKey(i.ID, i.Property) }

// Handler computes one value per output from one value per input, in declaration order.
type Handler func(ctx context.Context, inputs []any) ([]any, error)

// Binding ties outputs to the inputs they are computed from.
type Binding struct {
	Outputs []Output
	Inputs  []Input
	Handler Handler
}

// Dependency is the wire form of a binding, without its handler.
type Dependency struct {
	Outputs []Output `json:"outputs"`
	Inputs  []Input  `json:"inputs"`
}

// Key identifies the dependency by its first output.
func (d Dependency) Key() string {
	if len(d.Outputs) == 0 {
		return ""
	}
	return d.Outputs[0].Key()
}

// DependsOn reports whether the dependency reads the given property.
func (d Dependency) DependsOn(key string) bool {
	for _, in := range d.Inputs {
		if in.Key() == key {
			return true
		}
	}
	return false
}

// App is a dashboard application. The backend reads it once at startup.
type App interface {
	Title() string
	Layout() Component
	Bindings() []Binding
}
