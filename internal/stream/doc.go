// Package stream maintains the live event feed from the controller.
//
// The controller pushes newline-delimited server-sent events: keepalives,
// partial zone updates, and device state reports, each a JSON object on a
// "data:" line discriminated by its "type" field. Decoder turns the raw
// byte stream into typed events, tolerating arbitrary chunk boundaries and
// skipping malformed lines. Reader owns the connection lifecycle: it dials,
// consumes until the stream drops, and reconnects with exponential backoff
// (5s doubling to a 60s cap, reset once a connection is established).
//
// Events reach the Handler synchronously in stream order. The Reader never
// touches the zone table itself; the syncer wires its handler to the store.
package stream
