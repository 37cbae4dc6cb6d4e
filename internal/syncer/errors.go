package syncer

import (
	"errors"
	"fmt"

	"github.com/nerrad567/tadosync/internal/zone"
)

var (
	// ErrStopped is returned when an operation is attempted on a stopped
	// client.
	ErrStopped = errors.New("syncer: stopped")
)

// CommandError reports a control request the controller did not accept.
// The zone table is untouched when a command fails; no refresh is issued.
type CommandError struct {
	// Op names the command, e.g. "set_temperature".
	Op string
	// ZoneID is the target zone.
	ZoneID zone.ID
	// Status is the controller's HTTP status, 0 when the request never
	// completed.
	Status int
	// Err is the underlying transport error, nil when Status is set.
	Err error
}

func (e *CommandError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("syncer: %s zone %s: %v", e.Op, e.ZoneID, e.Err)
	}
	return fmt.Sprintf("syncer: %s zone %s: controller returned status %d", e.Op, e.ZoneID, e.Status)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}
