package controller

import (
	"errors"
	"fmt"
	"strings"
)

// Domain-specific errors for controller transport operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrTransport is returned for network-level failures: DNS resolution,
	// refused connections, and timeouts. The request never produced an
	// HTTP response. Callers retry per their own policies.
	ErrTransport = errors.New("controller: transport failure")
)

// StatusError reports a non-success HTTP status where the caller required
// success, such as opening the event stream. Polling and command paths
// receive status codes directly and branch on them instead.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("controller: unexpected status %d", e.Status)
	}
	return fmt.Sprintf("controller: unexpected status %d: %s", e.Status, strings.TrimSpace(e.Body))
}
