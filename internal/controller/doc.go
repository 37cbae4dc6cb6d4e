// Package controller provides the HTTP transport client for the local
// thermostat controller API.
//
// Every request carries a bearer token. The client distinguishes two call
// shapes:
//
//   - Get/Post: short total timeout (poll and command requests). Non-2xx
//     statuses are returned as values for the caller to branch on.
//   - Stream: short connect timeout, unbounded total duration (the SSE
//     event feed).
//
// Network-level failures (DNS, refused connection, timeout) are wrapped in
// ErrTransport so callers can tell them apart from controller responses.
package controller
