package telemetry

import (
	"sync"
	"sync/atomic"

	"github.com/nerrad567/tadosync/internal/infrastructure/influxdb"
	"github.com/nerrad567/tadosync/internal/infrastructure/mqtt"
	"github.com/nerrad567/tadosync/internal/zone"
)

// snapshotBuffer is how many pending snapshots the recorder queues. Store
// notifications must never block, so a full buffer drops the snapshot; the
// next merge carries the newer state anyway.
const snapshotBuffer = 16

// Logger defines the logging interface used by this package.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// zoneStatePayload is the retained MQTT state message per zone.
type zoneStatePayload struct {
	ZoneID         string   `json:"zone_id"`
	Name           string   `json:"name"`
	CurrentTempC   *float64 `json:"cur_temp_c,omitempty"`
	TargetTempC    *float64 `json:"target_temp_c,omitempty"`
	Mode           string   `json:"mode"`
	HeatingPercent int      `json:"heating_percent"`
	Action         string   `json:"action"`
}

// Recorder forwards applied zone snapshots to the optional sinks: retained
// JSON state on MQTT and climate points in InfluxDB.
//
// The store's notification callback only enqueues; a worker goroutine does
// the publishing, so a slow broker never stalls a merge. Either sink may be
// nil and is skipped.
type Recorder struct {
	mqtt   *mqtt.Client
	influx *influxdb.Client
	logger Logger

	ch        chan zone.Table
	done      chan struct{}
	dropped   atomic.Uint64
	unsub     func()
	closeOnce sync.Once
}

// NewRecorder creates a recorder over the given sinks and starts its
// worker. Attach connects it to a store; Close shuts it down.
func NewRecorder(mqttClient *mqtt.Client, influxClient *influxdb.Client) *Recorder {
	r := &Recorder{
		mqtt:   mqttClient,
		influx: influxClient,
		logger: noopLogger{},
		ch:     make(chan zone.Table, snapshotBuffer),
		done:   make(chan struct{}),
	}
	go r.run()
	return r
}

// SetLogger sets the logger for the recorder.
func (r *Recorder) SetLogger(logger Logger) {
	r.logger = logger
}

// Attach subscribes the recorder to a store's change notifications.
func (r *Recorder) Attach(store *zone.Store) {
	r.unsub = store.Subscribe(r.onChange)
}

// Dropped returns how many snapshots were discarded because the worker was
// behind.
func (r *Recorder) Dropped() uint64 {
	return r.dropped.Load()
}

// Close detaches from the store, drains queued snapshots, and stops the
// worker. Safe to call more than once.
func (r *Recorder) Close() {
	r.closeOnce.Do(func() {
		if r.unsub != nil {
			r.unsub()
		}
		close(r.ch)
		<-r.done
	})
}

// onChange runs on the store's merge path and must not block.
func (r *Recorder) onChange(table zone.Table) {
	select {
	case r.ch <- table:
	default:
		r.dropped.Add(1)
	}
}

func (r *Recorder) run() {
	defer close(r.done)
	for table := range r.ch {
		r.record(table)
	}
}

func (r *Recorder) record(table zone.Table) {
	for _, z := range table {
		if r.mqtt != nil {
			r.publishState(z)
		}
		if r.influx != nil {
			r.writeClimate(z)
		}
	}
}

func (r *Recorder) publishState(z zone.Zone) {
	payload := zoneStatePayload{
		ZoneID:         z.ID.String(),
		Name:           z.Name,
		CurrentTempC:   z.State.CurrentTempC,
		TargetTempC:    z.State.TargetTempC,
		Mode:           z.State.Mode.String(),
		HeatingPercent: z.State.HeatingPercent,
		Action:         string(z.State.Action()),
	}

	topic := r.mqtt.Topics().ZoneState(z.ID.String())
	if err := r.publishJSON(topic, payload); err != nil {
		r.logger.Warn("zone state publish failed",
			"topic", topic,
			"error", err,
		)
	}
}

func (r *Recorder) publishJSON(topic string, v any) error {
	return r.mqtt.PublishJSON(topic, v)
}

func (r *Recorder) writeClimate(z zone.Zone) {
	fields := map[string]interface{}{
		"heating_percent": float64(z.State.HeatingPercent),
		"mode":            float64(z.State.Mode),
		"heating_active":  boolToFloat(z.State.Action() == zone.ActionHeating),
	}
	if z.State.CurrentTempC != nil {
		fields["cur_temp_c"] = *z.State.CurrentTempC
	}
	if z.State.TargetTempC != nil {
		fields["target_temp_c"] = *z.State.TargetTempC
	}

	r.influx.WriteZoneState(z.ID.String(), z.Name, fields)
}
