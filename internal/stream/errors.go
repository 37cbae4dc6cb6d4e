package stream

import "fmt"

// maxErrorLineLen bounds how much of a bad line is echoed into an error.
const maxErrorLineLen = 256

// DecodeError reports a single malformed stream line. The decoder skips the
// line and remains usable; callers typically log and continue.
type DecodeError struct {
	// Line is the offending payload, truncated for logging.
	Line string
	// Err is the underlying parse error.
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("stream: decoding line %q: %v", e.Line, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func newDecodeError(line string, err error) *DecodeError {
	if len(line) > maxErrorLineLen {
		line = line[:maxErrorLineLen]
	}
	return &DecodeError{Line: line, Err: err}
}
