package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/nerrad567/tadosync/internal/syncer"
	"github.com/nerrad567/tadosync/internal/zone"
)

// StatusSource supplies the data the collector exports. *syncer.Client
// satisfies it.
type StatusSource interface {
	Snapshot() zone.Table
	Status() syncer.Status
}

// Collector exports zone climate state and sync runtime counters as
// Prometheus metrics. Collection reads the in-memory table only; a scrape
// never touches the controller.
type Collector struct {
	source StatusSource

	temp          *prometheus.GaugeVec
	setpoint      *prometheus.GaugeVec
	heatingPower  *prometheus.GaugeVec
	mode          *prometheus.GaugeVec
	heatingActive *prometheus.GaugeVec
	zones         prometheus.Gauge
	streamUp      prometheus.Gauge

	pollsDesc      *prometheus.Desc
	eventsDesc     *prometheus.Desc
	reconnectsDesc *prometheus.Desc
}

// NewCollector creates a collector over the given source.
func NewCollector(source StatusSource) *Collector {
	labels := []string{"zone_id", "zone_name"}
	return &Collector{
		source: source,
		temp: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "tadosync_zone_current_temperature_celsius",
			Help: "Current measured temperature per zone",
		}, labels),
		setpoint: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "tadosync_zone_target_temperature_celsius",
			Help: "Target temperature per zone",
		}, labels),
		heatingPower: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "tadosync_zone_heating_percent",
			Help: "Heating output demand per zone",
		}, labels),
		mode: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "tadosync_zone_mode",
			Help: "Operating mode per zone (0=off, 1=heat, 3=auto)",
		}, labels),
		heatingActive: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "tadosync_zone_heating_active_bool",
			Help: "Heating active per zone (1=heating, 0=idle or off)",
		}, labels),
		zones: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tadosync_zones",
			Help: "Number of zones in the synced table",
		}),
		streamUp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tadosync_stream_connected_bool",
			Help: "Event stream connection state (1=streaming)",
		}),
		pollsDesc: prometheus.NewDesc(
			"tadosync_polls_applied_total",
			"Full poll results applied to the zone table",
			nil, nil,
		),
		eventsDesc: prometheus.NewDesc(
			"tadosync_stream_events_applied_total",
			"Stream events applied to the zone table",
			nil, nil,
		),
		reconnectsDesc: prometheus.NewDesc(
			"tadosync_stream_reconnects_total",
			"Event stream connections dropped and retried",
			nil, nil,
		),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.temp.Describe(ch)
	c.setpoint.Describe(ch)
	c.heatingPower.Describe(ch)
	c.mode.Describe(ch)
	c.heatingActive.Describe(ch)
	c.zones.Describe(ch)
	c.streamUp.Describe(ch)
	ch <- c.pollsDesc
	ch <- c.eventsDesc
	ch <- c.reconnectsDesc
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	table := c.source.Snapshot()
	status := c.source.Status()

	c.temp.Reset()
	c.setpoint.Reset()
	c.heatingPower.Reset()
	c.mode.Reset()
	c.heatingActive.Reset()

	for _, z := range table {
		labels := prometheus.Labels{
			"zone_id":   z.ID.String(),
			"zone_name": z.Name,
		}
		if z.State.CurrentTempC != nil {
			c.temp.With(labels).Set(*z.State.CurrentTempC)
		}
		if z.State.TargetTempC != nil {
			c.setpoint.With(labels).Set(*z.State.TargetTempC)
		}
		c.heatingPower.With(labels).Set(float64(z.State.HeatingPercent))
		c.mode.With(labels).Set(float64(z.State.Mode))
		c.heatingActive.With(labels).Set(boolToFloat(z.State.Action() == zone.ActionHeating))
	}

	c.zones.Set(float64(len(table)))
	c.streamUp.Set(boolToFloat(status.StreamState == "streaming"))

	c.temp.Collect(ch)
	c.setpoint.Collect(ch)
	c.heatingPower.Collect(ch)
	c.mode.Collect(ch)
	c.heatingActive.Collect(ch)
	c.zones.Collect(ch)
	c.streamUp.Collect(ch)

	ch <- prometheus.MustNewConstMetric(c.pollsDesc, prometheus.CounterValue, float64(status.PollsApplied))
	ch <- prometheus.MustNewConstMetric(c.eventsDesc, prometheus.CounterValue, float64(status.EventsApplied))
	ch <- prometheus.MustNewConstMetric(c.reconnectsDesc, prometheus.CounterValue, float64(status.Reconnects))
}

func boolToFloat(value bool) float64 {
	if value {
		return 1
	}
	return 0
}
