package zone

import "errors"

// Domain errors for the zone package.
//
// These errors can be checked using errors.Is():
//
//	if errors.Is(err, zone.ErrMalformedRecord) {
//	    // skip the record, keep the stream alive
//	}
var (
	// ErrMalformedRecord is returned when a wire record cannot be decoded.
	ErrMalformedRecord = errors.New("zone: malformed record")

	// ErrMissingID is returned when a record carries neither of the two
	// legacy id keys. Such records cannot be stored.
	ErrMissingID = errors.New("zone: record has no id")
)
