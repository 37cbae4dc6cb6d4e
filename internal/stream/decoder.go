package stream

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"

	"github.com/nerrad567/tadosync/internal/zone"
)

// EventType discriminates stream payloads by their "type" field.
type EventType string

const (
	EventKeepalive EventType = "keepalive"
	EventZone      EventType = "zone"
	EventDevice    EventType = "device"
)

// Event is one decoded stream payload. Zone is set only for EventZone,
// Device only for EventDevice. Types this package does not recognise pass
// through with Type preserved and both pointers nil, so callers can count
// or log them without the decoder guessing at their shape.
type Event struct {
	Type   EventType
	Zone   *zone.ZoneEvent
	Device *zone.DeviceEvent
}

// Decoder reads server-sent events from a byte stream.
//
// The transport delivers arbitrary chunks, so a single event may arrive
// split across reads or several events may arrive in one. The decoder
// buffers until a full newline-terminated line is available and only then
// parses it, which makes chunk boundaries invisible to callers.
//
// Only "data:" lines carry payloads. Blank lines, ":" comments (the
// controller's keepalive carrier on some firmware), and other SSE fields
// are skipped.
type Decoder struct {
	r *bufio.Reader
}

// NewDecoder wraps r for event decoding.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReader(r)}
}

// Next returns the next event on the stream.
//
// A *DecodeError means one line was malformed; the decoder has skipped it
// and Next may be called again. Any other error, io.EOF included, means the
// stream is finished. A partial line at stream end is an interrupted frame
// and is dropped.
func (d *Decoder) Next() (Event, error) {
	for {
		line, err := d.r.ReadString('\n')
		if err != nil {
			return Event{}, err
		}
		line = strings.TrimRight(line, "\r\n")

		if line == "" || strings.HasPrefix(line, ":") {
			continue
		}

		payload, ok := strings.CutPrefix(line, "data:")
		if !ok {
			// Other SSE fields (event:, id:, retry:) carry no zone data.
			continue
		}
		payload = strings.TrimSpace(payload)
		if payload == "" {
			continue
		}

		return parseEvent(payload)
	}
}

// parseEvent dispatches a data payload on its "type" discriminator.
func parseEvent(payload string) (Event, error) {
	var env struct {
		Type EventType `json:"type"`
	}
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		return Event{}, newDecodeError(payload, err)
	}

	switch env.Type {
	case EventKeepalive:
		return Event{Type: EventKeepalive}, nil

	case EventZone:
		var ev zone.ZoneEvent
		if err := json.Unmarshal([]byte(payload), &ev); err != nil {
			return Event{}, newDecodeError(payload, err)
		}
		return Event{Type: EventZone, Zone: &ev}, nil

	case EventDevice:
		var ev zone.DeviceEvent
		if err := json.Unmarshal([]byte(payload), &ev); err != nil {
			return Event{}, newDecodeError(payload, err)
		}
		return Event{Type: EventDevice, Device: &ev}, nil

	default:
		return Event{Type: env.Type}, nil
	}
}
