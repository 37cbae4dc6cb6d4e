package syncer

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/nerrad567/tadosync/internal/zone"
)

// DefaultSettleDelay is how long a successful command waits before forcing
// a refresh. The controller acknowledges before it finishes applying a
// change; refreshing immediately would read the old state back.
const DefaultSettleDelay = 1 * time.Second

// Poster issues control requests to the controller. *controller.Client
// satisfies it.
type Poster interface {
	Post(ctx context.Context, path string) (int, error)
}

// CommanderConfig tunes command dispatch.
type CommanderConfig struct {
	// Scheme is the endpoint family, "zones" or "thermostats".
	Scheme string
	// SettleDelay between command acceptance and the confirming refresh.
	// Zero takes the default.
	SettleDelay time.Duration
	// AcceptInterim100 treats the controller's nonstandard interim 100
	// status as success.
	AcceptInterim100 bool
}

// Commander sends control requests and confirms them with a refresh.
//
// Commands never write the zone table directly. A successful POST waits the
// settle delay, then asks the poller for a fresh table; the authoritative
// state always comes back from the controller. A failed POST changes
// nothing and triggers no refresh.
type Commander struct {
	client  Poster
	refresh func(ctx context.Context) error
	logger  Logger

	scheme        string
	settleDelay   time.Duration
	acceptInterim bool
}

// NewCommander creates a commander. refresh is typically
// (*Poller).RequestRefresh.
func NewCommander(client Poster, refresh func(ctx context.Context) error, cfg CommanderConfig) *Commander {
	if cfg.SettleDelay <= 0 {
		cfg.SettleDelay = DefaultSettleDelay
	}

	return &Commander{
		client:        client,
		refresh:       refresh,
		logger:        noopLogger{},
		scheme:        cfg.Scheme,
		settleDelay:   cfg.SettleDelay,
		acceptInterim: cfg.AcceptInterim100,
	}
}

// SetLogger sets the logger for the commander.
func (c *Commander) SetLogger(logger Logger) {
	c.logger = logger
}

// SetTemperature asks the controller to change a zone's setpoint.
func (c *Commander) SetTemperature(ctx context.Context, id zone.ID, celsius float64) error {
	q := url.Values{}
	q.Set("temperature", strconv.FormatFloat(celsius, 'f', -1, 64))
	return c.execute(ctx, "set_temperature", id, q)
}

// SetMode switches a zone between off, manual heat, and schedule-driven
// auto. The wire protocol expresses this as a heating-enabled flag with an
// auto qualifier.
func (c *Commander) SetMode(ctx context.Context, id zone.ID, mode zone.Mode) error {
	q := url.Values{}
	switch mode {
	case zone.ModeOff:
		q.Set("heating_enabled", "false")
	case zone.ModeHeat:
		q.Set("heating_enabled", "true")
	case zone.ModeAuto:
		q.Set("heating_enabled", "true")
		q.Set("mode", "auto")
	}
	return c.execute(ctx, "set_mode", id, q)
}

// execute POSTs the command and, on acceptance, settles then refreshes.
func (c *Commander) execute(ctx context.Context, op string, id zone.ID, q url.Values) error {
	path := "/" + c.scheme + "/" + url.PathEscape(id.String()) + "/set?" + q.Encode()

	status, err := c.client.Post(ctx, path)
	if err != nil {
		return &CommandError{Op: op, ZoneID: id, Err: err}
	}
	if !c.accepted(status) {
		return &CommandError{Op: op, ZoneID: id, Status: status}
	}

	c.logger.Info("command accepted",
		"op", op,
		"zone_id", id.String(),
		"status", status,
	)

	// Give the controller time to apply before reading back.
	t := time.NewTimer(c.settleDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return nil
	case <-t.C:
	}

	if err := c.refresh(ctx); err != nil && ctx.Err() == nil {
		// The command already succeeded; a failed confirmation poll is
		// logged, not surfaced. The next scheduled poll repairs drift.
		c.logger.Warn("post-command refresh failed",
			"op", op,
			"zone_id", id.String(),
			"error", err,
		)
	}
	return nil
}

func (c *Commander) accepted(status int) bool {
	if status == http.StatusOK {
		return true
	}
	return c.acceptInterim && status == http.StatusContinue
}
