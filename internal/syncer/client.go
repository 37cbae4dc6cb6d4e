package syncer

import (
	"context"
	"time"

	"github.com/nerrad567/tadosync/internal/controller"
	"github.com/nerrad567/tadosync/internal/infrastructure/config"
	"github.com/nerrad567/tadosync/internal/stream"
	"github.com/nerrad567/tadosync/internal/zone"
)

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

// Client is the synchronization facade: one handle owning the store, the
// event stream reader, the poller, and command dispatch.
//
// Lifecycle: Start brings the table up (eager poll) and opens the stream;
// Stop tears down in an order that guarantees no notification fires after
// it returns. The reader goes first so no stream event races the shutdown,
// then the poller, then the store is closed.
//
// Thread Safety:
//   - All methods are safe for concurrent use once Start has returned.
type Client struct {
	store     *zone.Store
	reader    *stream.Reader
	poller    *Poller
	commander *Commander
	logger    Logger
}

// storeHandler feeds decoded stream events straight into the store.
type storeHandler struct {
	store *zone.Store
}

func (h storeHandler) OnZone(ev zone.ZoneEvent) {
	h.store.ApplyZoneEvent(ev)
}

func (h storeHandler) OnDevice(ev zone.DeviceEvent) {
	h.store.ApplyDeviceEvent(ev)
}

// New wires a client from controller configuration. The endpoint family
// (zones or thermostats) applies uniformly to polling and commands.
func New(ctrl *controller.Client, store *zone.Store, cfg config.ControllerConfig) *Client {
	listPath := "/" + string(cfg.Naming)

	poller := NewPoller(ctrl, store, PollerConfig{
		Path:     listPath,
		Interval: time.Duration(cfg.PollIntervalSeconds) * time.Second,
	})

	reader := stream.NewReader(ctrl, storeHandler{store: store}, stream.Config{
		InitialBackoff: time.Duration(cfg.Stream.InitialBackoffSeconds) * time.Second,
		MaxBackoff:     time.Duration(cfg.Stream.MaxBackoffSeconds) * time.Second,
	})

	commander := NewCommander(ctrl, poller.RequestRefresh, CommanderConfig{
		Scheme:           string(cfg.Naming),
		SettleDelay:      time.Duration(cfg.SettleDelayMillis) * time.Millisecond,
		AcceptInterim100: cfg.AcceptInterim100,
	})

	return &Client{
		store:     store,
		reader:    reader,
		poller:    poller,
		commander: commander,
		logger:    noopLogger{},
	}
}

// SetLogger sets the logger for the client and its components.
func (c *Client) SetLogger(logger Logger) {
	c.logger = logger
	c.poller.SetLogger(logger)
	c.commander.SetLogger(logger)
	c.reader.SetLogger(logger)
}

// Start performs the initial poll, then launches the poll loop and the
// event stream.
func (c *Client) Start(ctx context.Context) {
	c.logger.Info("sync starting")
	c.poller.Start(ctx)
	c.reader.Start(ctx)
}

// Stop shuts the client down. The reader stops first so no event lands
// mid-teardown, then the poller, then the store closes so subscribers see
// nothing further. In-flight command POSTs finish on their own contexts.
func (c *Client) Stop() {
	c.reader.Stop()
	c.poller.Stop()
	c.store.Close()
	c.logger.Info("sync stopped")
}

// Snapshot returns a deep copy of the current zone table.
func (c *Client) Snapshot() zone.Table {
	return c.store.Snapshot()
}

// OnChange registers a callback for every applied merge. Callbacks run
// synchronously on the merge path and must not block; see zone.Store.
func (c *Client) OnChange(fn func(zone.Table)) (cancel func()) {
	return c.store.Subscribe(fn)
}

// RequestRefresh forces a full poll and waits for its outcome.
func (c *Client) RequestRefresh(ctx context.Context) error {
	return c.poller.RequestRefresh(ctx)
}

// SetTemperature changes a zone's setpoint and confirms it via refresh.
func (c *Client) SetTemperature(ctx context.Context, id zone.ID, celsius float64) error {
	return c.commander.SetTemperature(ctx, id, celsius)
}

// SetMode changes a zone's operating mode and confirms it via refresh.
func (c *Client) SetMode(ctx context.Context, id zone.ID, mode zone.Mode) error {
	return c.commander.SetMode(ctx, id, mode)
}

// Status is a point-in-time summary of sync health for the status API.
type Status struct {
	StreamState   string    `json:"stream_state"`
	Reconnects    uint64    `json:"stream_reconnects"`
	LastPollAt    time.Time `json:"last_poll_at"`
	LastPollError string    `json:"last_poll_error,omitempty"`
	Zones         int       `json:"zones"`
	PollsApplied  uint64    `json:"polls_applied"`
	EventsApplied uint64    `json:"events_applied"`
}

// Status reports current sync health.
func (c *Client) Status() Status {
	lastAt, lastErr := c.poller.LastPoll()
	polls, events := c.store.Counts()

	s := Status{
		StreamState:   c.reader.State().String(),
		Reconnects:    c.reader.Reconnects(),
		LastPollAt:    lastAt,
		Zones:         c.store.Size(),
		PollsApplied:  polls,
		EventsApplied: events,
	}
	if lastErr != nil {
		s.LastPollError = lastErr.Error()
	}
	return s
}

// StreamState exposes the reader's lifecycle phase.
func (c *Client) StreamState() stream.State {
	return c.reader.State()
}

// Reconnects exposes the reader's dropped-connection count.
func (c *Client) Reconnects() uint64 {
	return c.reader.Reconnects()
}
