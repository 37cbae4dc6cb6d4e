// Package api implements the HTTP API and WebSocket server for tadosync.
//
// This package provides:
//   - REST endpoints for zone snapshots, sync status, and health
//   - Command forwarding (setpoint, mode, forced refresh) to the controller
//   - WebSocket hub broadcasting the zone table on every applied merge
//   - Prometheus scrape endpoint
//   - Middleware stack (request ID, logging, recovery, body size limit)
//
// # Architecture
//
// The server sits on top of the sync client: reads are served from store
// snapshots, commands go through the same facade library consumers use, and
// a store subscription feeds the WebSocket hub. Broadcasts never block the
// merge path; a slow client's message is dropped and the next broadcast
// carries the full current table anyway.
//
// # Security
//
// There is no inbound authentication. The daemon binds to localhost by
// default; the controller bearer token is outbound-only and never exposed.
package api
