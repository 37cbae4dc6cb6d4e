package mqtt

import "fmt"

// Topics builds the daemon's MQTT topic names from the configured prefix.
// Using these helpers keeps topic naming consistent between the publisher
// and any consumer documentation.
//
//	topics := mqtt.NewTopics("tadosync")
//	topics.ZoneState("1")  // "tadosync/zone/1/state"
type Topics struct {
	prefix string
}

// NewTopics creates a topic builder rooted at prefix.
func NewTopics(prefix string) Topics {
	return Topics{prefix: prefix}
}

// ZoneState returns the retained per-zone state topic.
//
// Example: tadosync/zone/1/state
func (t Topics) ZoneState(zoneID string) string {
	return fmt.Sprintf("%s/zone/%s/state", t.prefix, zoneID)
}

// SystemStatus returns the daemon's online/offline status topic. The LWT
// and graceful shutdown both publish here, retained.
//
// Example: tadosync/system/status
func (t Topics) SystemStatus() string {
	return fmt.Sprintf("%s/system/status", t.prefix)
}
