package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteZoneMetric writes a single zone measurement.
//
// This is the primary method for recording zone telemetry. The write is
// non-blocking; data is batched and sent asynchronously.
//
// Example:
//
//	client.WriteZoneMetric("1", "Lounge", "cur_temp_c", 19.5)
//	client.WriteZoneMetric("1", "Lounge", "heating_percent", 40)
func (c *Client) WriteZoneMetric(zoneID, zoneName, field string, value float64) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"zone_climate",
		map[string]string{
			"zone_id":   zoneID,
			"zone_name": zoneName,
		},
		map[string]interface{}{
			field: value,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteZoneState writes one point carrying a zone's full numeric state,
// so a single snapshot is one row per zone rather than one per field.
// Fields with nil values are omitted.
func (c *Client) WriteZoneState(zoneID, zoneName string, fields map[string]interface{}) {
	if !c.IsConnected() || len(fields) == 0 {
		return
	}

	point := write.NewPoint(
		"zone_climate",
		map[string]string{
			"zone_id":   zoneID,
			"zone_name": zoneName,
		},
		fields,
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for measurements that don't fit the zone helpers, such as sync
// runtime statistics.
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}
