// Package dash defines the dashboard application model shared by the backend
// service and the terminal frontends.
//
// # Overview
//
// An App supplies three things: a title, a component tree (the layout) and a
// set of bindings. A binding names the component properties it reads (inputs)
// and writes (outputs) and carries the handler that computes the outputs.
// The backend pulls all three once when it starts and serves them over HTTP.
// Frontends render the layout and, whenever an input changes, ask the backend
// to evaluate the bindings that depend on it.
//
// # Properties
//
// A component property is addressed as "id.property", for example
// "dropdown-selection.value". Each output property is written by at most one
// binding; Registry.Register rejects a second binding for the same output.
//
// # Wire Format
//
// The backend exposes the registry through three endpoints:
//
//	GET  /_dash-layout             -> Component
//	GET  /_dash-dependencies       -> []Dependency
//	POST /_dash-update-component   UpdateRequest -> UpdateResponse
//
// Values travel as JSON, so handlers receive decoded JSON values (string,
// float64, bool, []any, map[string]any) and may return any JSON-encodable value.
package dash
