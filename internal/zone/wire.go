package zone

import (
	"encoding/json"
	"fmt"
)

// StatePayload is the state object as it appears on the wire, in both the
// poll listing and stream events. Every field is a pointer so a partial
// update can be told apart from an explicit zero.
type StatePayload struct {
	CurTempC    *float64 `json:"cur_temp_c"`
	TargetTempC *float64 `json:"target_temp_c"`
	Mode        *int     `json:"mode"`
	CurHeating  *int     `json:"cur_heating"`
}

// State converts a payload to a State, using zero defaults for absent
// fields.
func (p *StatePayload) State() State {
	return p.mergeInto(State{})
}

// mergeInto lays the payload's present fields over prev, preserving prev's
// values for fields the payload omits.
func (p *StatePayload) mergeInto(prev State) State {
	out := prev
	if p == nil {
		return out
	}
	if p.CurTempC != nil {
		out.CurrentTempC = copyFloat(p.CurTempC)
	}
	if p.TargetTempC != nil {
		out.TargetTempC = copyFloat(p.TargetTempC)
	}
	if p.Mode != nil {
		out.Mode = ModeFromInt(*p.Mode)
	}
	if p.CurHeating != nil {
		out.HeatingPercent = clampPercent(*p.CurHeating)
	}
	return out
}

func clampPercent(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// record is one zone entry in the poll listing. The id and name each arrive
// under one of two legacy keys depending on controller firmware.
type record struct {
	ThermostatID ID            `json:"thermostat_id"`
	ZoneID       ID            `json:"zone_id"`
	Name         string        `json:"name"`
	ZoneName     string        `json:"zone_name"`
	State        *StatePayload `json:"state"`
}

// zone canonicalizes a wire record. ErrMissingID is returned when neither
// id key is present.
func (r record) zone() (Zone, error) {
	id := r.ThermostatID
	if id == "" {
		id = r.ZoneID
	}
	if id == "" {
		return Zone{}, ErrMissingID
	}

	name := r.Name
	if name == "" {
		name = r.ZoneName
	}

	return Zone{
		ID:    id,
		Name:  name,
		State: r.State.State(),
	}, nil
}

// listing matches the two wrapped response shapes the controller may
// return; a bare array is handled separately in ParseListing.
type listing struct {
	Zones       []record `json:"zones"`
	Thermostats []record `json:"thermostats"`
}

// ParseListing decodes a poll response body into zones.
//
// The controller returns either a bare JSON array of zone records or an
// object wrapping that array under "zones" or "thermostats". Records with
// no id are dropped; they cannot be stored or addressed.
func ParseListing(data []byte) ([]Zone, error) {
	var records []record

	if err := json.Unmarshal(data, &records); err != nil {
		var wrapped listing
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return nil, fmt.Errorf("%w: listing: %w", ErrMalformedRecord, err)
		}
		records = wrapped.Zones
		if records == nil {
			records = wrapped.Thermostats
		}
	}

	zones := make([]Zone, 0, len(records))
	for _, r := range records {
		z, err := r.zone()
		if err != nil {
			continue
		}
		zones = append(zones, z)
	}
	return zones, nil
}

// ZoneEvent is a partial zone update from the event stream.
type ZoneEvent struct {
	ZoneID   ID            `json:"zone_id"`
	ZoneName string        `json:"zone_name"`
	State    *StatePayload `json:"state"`
}

// DeviceEvent is a device state report from the event stream. Devices are
// tied to zones only by display name; an event whose zone name matches no
// zone is dropped.
type DeviceEvent struct {
	DeviceID ID            `json:"device_id"`
	Serial   string        `json:"serial"`
	ZoneName string        `json:"zone_name"`
	State    *StatePayload `json:"state"`
}
