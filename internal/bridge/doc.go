// Package bridge is the core of the HDHomeRun radio bridge: it owns the
// device map, the channel registry, and the session table, and runs the
// single loop that keeps decode sessions converged onto the host's active
// routes.
//
// # Loop Model
//
// One goroutine runs everything in the steady state. Each tick it checks
// whether periodic re-discovery (5 minutes) or lineup refresh (hourly) is
// due, reconciles routes (1 second cadence), performs one non-blocking
// poll-and-forward cycle per running session, and sleeps when idle. No
// step blocks longer than its documented bound, so one stuck session
// never stalls delivery to the others.
//
// Request-triggered paths (the control API) interact with the loop only
// through buffered trigger channels and read-locked snapshot accessors.
//
// # Reconciliation
//
// Desired state is the host's active-routes view; actual state is the
// supervisor's session table. Reconcile issues the minimal start/stop
// calls to converge them and is idempotent: an unchanged active set
// produces no further calls.
//
// # Collaborators
//
// The host is abstracted behind the AudioSink, SourceRegistry, and
// RouteSource interfaces, so the bridge is constructible without a live
// host for testing. Concrete clients live in internal/host.
package bridge
