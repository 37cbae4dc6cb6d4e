// Package syncer coordinates the two data paths that keep the zone table
// live: the interval poller, which replaces the table wholesale from the
// controller's listing endpoint, and the event stream, whose partial
// updates are folded in between polls. It also dispatches control
// commands, which never touch the table directly; a successful command
// waits a settle delay and then confirms itself through a forced poll.
//
// Client is the single facade the rest of the daemon uses: snapshots,
// change subscriptions, refresh, and commands, with a shutdown order that
// guarantees silence after Stop returns.
package syncer
