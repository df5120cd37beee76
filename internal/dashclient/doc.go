// Package dashclient is the frontend's HTTP client for the dashboard backend.
//
// The client mirrors the endpoints registered by the backend package: a
// liveness check, the layout, the binding list and the update call. Requests
// carry a 5 second timeout. Any non-2xx response is returned as a
// *StatusError so callers can tell an unhealthy backend from a transport
// failure with errors.As.
package dashclient
