// Package state holds the frontend's view of the dashboard.
//
// The session writes the layout, the binding list and property values as
// they arrive from the backend, and the health poller records liveness. The
// renderers only ever read copies returned by Snapshot, so a slow render never
// blocks an update and vice versa.
//
// The layout tree is treated as immutable once stored and is not deep copied.
package state
