// Package telemetry exports synced zone state to the observability sinks:
// Prometheus gauges and counters for scraping, retained MQTT state
// messages for consumers on the broker, and InfluxDB points for history.
//
// Collector reads the in-memory table at scrape time. Recorder is
// push-driven: it subscribes to store notifications and hands snapshots to
// a worker goroutine, dropping under backpressure rather than ever
// blocking a merge.
package telemetry
