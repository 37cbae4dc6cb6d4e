// Package zone holds the canonical climate zone model, the merge engine
// that folds poll results and stream events into it, and the store that
// serializes access and fans out change notifications.
//
// # Merge semantics
//
// The two data sources carry different authority:
//
//   - A poll listing replaces the table wholesale. Zones missing from the
//     listing are dropped; zones present keep exactly the fields given.
//   - A stream event patches zones field by field. Fields the event omits
//     keep their previous values, so a partial update never nulls data the
//     controller did not mention.
//
// Zone identity is canonical: the wire carries ids under thermostat_id or
// zone_id (number or string), and parsing collapses both aliases to one
// string id, so lookups by either legacy key resolve to the same entry.
// Device events are tied to zones by display name only; this is fragile
// under renames but is all the controller exposes.
package zone
