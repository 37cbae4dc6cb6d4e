// Package mqtt provides the optional MQTT state bridge for the sync daemon.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Retained per-zone state publishing with QoS guarantees
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// The daemon is publish-only on MQTT: every applied merge produces a
// retained JSON state message per zone, so dashboards and automations can
// read current zone state without speaking the controller's protocol.
// There is no inbound command path over MQTT; commands go through the
// daemon's own API against the controller.
//
//	tadosync → MQTT Broker → dashboards / automations
//
// # Security Considerations
//
//   - TLS is required for production deployments (cfg.Broker.TLS=true)
//   - Credentials are validated against broker ACL
//   - Anonymous access is only for local development
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if errors.Is(err, mqtt.ErrDisabled) {
//	    // run without the bridge
//	}
//	defer client.Close()
//
//	topic := client.Topics().ZoneState("1")
//	client.PublishJSON(topic, state)
package mqtt
