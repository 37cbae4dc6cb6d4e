package zone

// Merge rules. The two sources feed the same table with different
// authority: a poll result replaces the table wholesale, a stream event
// patches individual zones while preserving everything it does not name.

// fullReplace builds a fresh table from a poll listing. Duplicate ids keep
// the first occurrence; zones with no id are never stored. Applying the
// same listing twice yields the same table.
func fullReplace(zones []Zone) Table {
	out := make(Table, 0, len(zones))
	for _, z := range zones {
		if z.ID == "" {
			continue
		}
		if out.index(z.ID) >= 0 {
			continue
		}
		out = append(out, z)
	}
	return out
}

// applyZone patches or inserts a zone from a stream event. Fields the event
// omits keep the existing zone's values; an unknown id is an upsert. The
// returned bool reports whether the table changed.
func applyZone(t Table, ev ZoneEvent) (Table, bool) {
	if ev.ZoneID == "" {
		return t, false
	}

	i := t.index(ev.ZoneID)
	if i < 0 {
		return append(t, Zone{
			ID:    ev.ZoneID,
			Name:  ev.ZoneName,
			State: ev.State.State(),
		}), true
	}

	if ev.ZoneName != "" {
		t[i].Name = ev.ZoneName
	}
	t[i].State = ev.State.mergeInto(t[i].State)
	return t, true
}

// applyDevice patches the state of the zone whose name matches the event.
// Devices never create zones; an unmatched name is a no-op.
func applyDevice(t Table, ev DeviceEvent) (Table, bool) {
	i := t.indexByName(ev.ZoneName)
	if i < 0 {
		return t, false
	}
	t[i].State = ev.State.mergeInto(t[i].State)
	return t, true
}
