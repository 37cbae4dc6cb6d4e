package zone

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Mode is the operating mode reported by the controller.
//
// The wire format uses small integers; values this package does not
// recognise decode to ModeOff.
type Mode int

const (
	ModeOff  Mode = 0
	ModeHeat Mode = 1
	ModeAuto Mode = 3
)

// ModeFromInt converts a wire integer to a Mode, mapping unknown values
// to ModeOff.
func ModeFromInt(v int) Mode {
	switch Mode(v) {
	case ModeHeat, ModeAuto:
		return Mode(v)
	default:
		return ModeOff
	}
}

func (m Mode) String() string {
	switch m {
	case ModeHeat:
		return "heat"
	case ModeAuto:
		return "auto"
	default:
		return "off"
	}
}

// Action is the running state derived from mode and heating output.
type Action string

const (
	ActionOff     Action = "off"
	ActionHeating Action = "heating"
	ActionIdle    Action = "idle"
)

// State holds the climate measurements and setpoint for a zone.
// Temperature fields are nil when the controller has not reported them.
type State struct {
	CurrentTempC   *float64
	TargetTempC    *float64
	Mode           Mode
	HeatingPercent int
}

// Action derives the running action: off when the mode is off, heating when
// the controller reports any heating output, idle otherwise.
func (s State) Action() Action {
	if s.Mode == ModeOff {
		return ActionOff
	}
	if s.HeatingPercent > 0 {
		return ActionHeating
	}
	return ActionIdle
}

// Zone is one controllable heating area.
//
// ID is canonical: the wire formats carry it under either thermostat_id or
// zone_id, and as either a number or a string; parsing collapses all of
// these to one string identity.
type Zone struct {
	ID    ID
	Name  string
	State State
}

// Table is the ordered canonical zone listing. Zone IDs are unique within
// a table; a zone without an ID is never stored.
type Table []Zone

// Lookup returns the zone with the given id, or false if absent.
func (t Table) Lookup(id ID) (Zone, bool) {
	for i := range t {
		if t[i].ID == id {
			return t[i], true
		}
	}
	return Zone{}, false
}

// index returns the position of the zone with the given id, or -1.
func (t Table) index(id ID) int {
	for i := range t {
		if t[i].ID == id {
			return i
		}
	}
	return -1
}

// indexByName returns the position of the first zone with the given name,
// or -1. Matching is exact; the controller's device events reference zones
// by display name.
func (t Table) indexByName(name string) int {
	if name == "" {
		return -1
	}
	for i := range t {
		if t[i].Name == name {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the table. State pointer fields are copied
// so callers can never mutate the canonical table through a snapshot.
func (t Table) Clone() Table {
	if t == nil {
		return nil
	}
	out := make(Table, len(t))
	for i := range t {
		out[i] = t[i]
		out[i].State.CurrentTempC = copyFloat(t[i].State.CurrentTempC)
		out[i].State.TargetTempC = copyFloat(t[i].State.TargetTempC)
	}
	return out
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// ID is a canonical zone identity. On the wire it may arrive as a JSON
// number or string under either of two legacy key names; both collapse to
// the same string form here.
type ID string

// UnmarshalJSON accepts a number, a string, or null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("%w: id: %w", ErrMalformedRecord, err)
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("%w: id: %w", ErrMalformedRecord, err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }
