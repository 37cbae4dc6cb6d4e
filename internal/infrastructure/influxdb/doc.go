// Package influxdb provides optional time-series recording of zone
// telemetry for the sync daemon.
//
// This package manages:
//   - Connection to InfluxDB v2 with token authentication
//   - Non-blocking batched writes of zone climate measurements
//   - Async error reporting for failed writes
//   - Health monitoring
//
// # Architecture
//
// Every applied merge can be recorded as one zone_climate point per zone
// (current temperature, target, heating output, mode). Writes are batched
// by the underlying client and flushed on an interval, so recording never
// slows the sync loop; a failed write loses that batch, nothing more.
//
// # Usage
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
//	if errors.Is(err, influxdb.ErrDisabled) {
//	    // run without telemetry
//	}
//	defer client.Close()
//
//	client.WriteZoneMetric("1", "Lounge", "cur_temp_c", 19.5)
package influxdb
