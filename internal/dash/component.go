package dash

// Component types understood by the frontends.
const (
	TypeDiv      = "div"
	TypeH1       = "h1"
	TypeText     = "text"
	TypeDropdown = "dropdown"
	TypeGraph    = "graph"
)

// Component is one node of a layout tree.
type Component struct {
	Type     string      `json:"type"`
	ID       string      `json:"id,omitempty"`
	Text     string      `json:"text,omitempty"`
	Options  []string    `json:"options,omitempty"`
	Value    any         `json:"value,omitempty"`
	Children []Component `json:"children,omitempty"`
}

func Div(children ...Component) Component {
	return Component{Type: TypeDiv, Children: children}
}

func H1(text string) Component {
	return Component{Type: TypeH1, Text: text}
}

func Text(text string) Component {
	return Component{Type: TypeText, Text: text}
}

// Dropdown is a single-choice input whose "value" property holds the selected option.
func Dropdown(id string, options []string, value string) Component {
	return Component{Type: TypeDropdown, ID: id, Options: options, Value: value}
}

// Graph displays the Figure stored in its "figure" property.
func Graph(id string) Component {
	return Component{Type: TypeGraph, ID: id}
}

// Walk visits c and its descendants depth first.
func (c Component) Walk(fn func(Component)) {
	fn(c)
	for _, child := range c.Children {
		child.Walk(fn)
	}
}

// Find returns the first component with the given id.
func (c Component) Find(id string) (Component, bool) {
	if id == "" {
		return Component{}, false
	}
	var (
		found Component
		ok    bool
	)
	c.Walk(func(n Component) {
		if !ok && n.ID == id {
			found, ok = n, true
		}
	})
	return found, ok
}

// InitialValues returns the "value" property of every identified component that sets one.
func (c Component) InitialValues() map[string]any {
	values := make(map[string]any)
	c.Walk(func(n Component) {
		if n.ID != "" && n.Value != nil {
			values[PropKey(n.ID, "value")] = n.Value
		}
	})
	return values
}
