// Package supervisor runs the dashboard backend and frontend side by side and
// coordinates their shutdown.
//
// # Overview
//
// Run starts the backend and waits for it to be ready, then starts the
// frontend with the backend's RequestShutdown attached as the frontend's
// shutdown callback. Once both are up it polls their liveness. When one side
// stops, the other is asked to stop once, and Run returns after both have
// stopped or the bounded joins have timed out.
//
// # Exit Codes
//
// Every failure is reported to a shared exitcode.Register, where the first
// non-zero code wins. Run returns the register's value: 0 for a clean run.
//
// # Listener
//
// A Listener is told when both runners are up and, always, when the
// supervisor is done with the exit code it settled on. Panics raised by the
// listener are logged and never change the outcome.
package supervisor
