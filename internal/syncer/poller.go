package syncer

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/nerrad567/tadosync/internal/controller"
	"github.com/nerrad567/tadosync/internal/zone"
)

// DefaultPollInterval is the fallback full-poll cadence. The event stream
// carries most updates; the poll exists to repair drift and catch zones
// added or removed while the stream was down.
const DefaultPollInterval = 300 * time.Second

// Getter fetches documents from the controller. *controller.Client
// satisfies it.
type Getter interface {
	Get(ctx context.Context, path string) (int, []byte, error)
}

// PollerConfig tunes the poll loop.
type PollerConfig struct {
	// Path is the listing endpoint, e.g. "/zones".
	Path string
	// Interval between scheduled polls. Zero takes the default.
	Interval time.Duration
}

// Poller periodically replaces the zone table from the controller's
// listing endpoint.
//
// One goroutine owns all polling. Scheduled ticks and on-demand refreshes
// are serialized through it, so two polls never race and a refresh caller
// observes a table at least as fresh as its request. A failed poll keeps
// the previous table; staleness is preferred over an empty table.
type Poller struct {
	client Getter
	store  *zone.Store
	logger Logger

	path     string
	interval time.Duration

	refreshCh chan refreshRequest
	cancel    context.CancelFunc
	done      chan struct{}
	once      sync.Once
	stopOnce  sync.Once

	mu         sync.Mutex
	lastPollAt time.Time
	lastErr    error
}

type refreshRequest struct {
	reply chan error
}

// NewPoller creates a poller. Start must be called before the table fills.
func NewPoller(client Getter, store *zone.Store, cfg PollerConfig) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultPollInterval
	}

	return &Poller{
		client:    client,
		store:     store,
		logger:    noopLogger{},
		path:      cfg.Path,
		interval:  cfg.Interval,
		refreshCh: make(chan refreshRequest),
		done:      make(chan struct{}),
	}
}

// SetLogger sets the logger for the poller.
func (p *Poller) SetLogger(logger Logger) {
	p.logger = logger
}

// Start polls once immediately, then launches the interval loop. The eager
// poll runs synchronously so callers see a populated table (or a logged
// failure) before Start returns.
func (p *Poller) Start(ctx context.Context) {
	p.once.Do(func() {
		if err := p.poll(ctx); err != nil {
			p.logger.Warn("initial poll failed", "path", p.path, "error", err)
		}

		ctx, p.cancel = context.WithCancel(ctx)
		go p.run(ctx)
	})
}

// Stop halts the loop and waits for it to exit. Pending refresh callers
// receive ErrStopped. Safe to call more than once and before Start.
func (p *Poller) Stop() {
	if p.cancel != nil {
		p.cancel()
		<-p.done
		return
	}
	p.stopOnce.Do(func() { close(p.done) })
}

// RequestRefresh forces an out-of-cycle poll and waits for it to complete.
// The returned error is the poll's own outcome, so callers can tell a fresh
// table from a preserved stale one.
func (p *Poller) RequestRefresh(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	req := refreshRequest{reply: make(chan error, 1)}

	select {
	case p.refreshCh <- req:
	case <-p.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-req.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LastPoll returns when the most recent poll attempt finished and its
// outcome.
func (p *Poller) LastPoll() (time.Time, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastPollAt, p.lastErr
}

func (p *Poller) run(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			if err := p.poll(ctx); err != nil && ctx.Err() == nil {
				p.logger.Warn("scheduled poll failed, keeping previous table",
					"path", p.path,
					"error", err,
				)
			}

		case req := <-p.refreshCh:
			err := p.poll(ctx)
			if err != nil && ctx.Err() == nil {
				p.logger.Warn("refresh poll failed, keeping previous table",
					"path", p.path,
					"error", err,
				)
			}
			req.reply <- err
			// A refresh just produced a fresh table; restart the clock.
			ticker.Reset(p.interval)
		}
	}
}

// poll fetches the listing and installs it as the full table.
func (p *Poller) poll(ctx context.Context) error {
	status, body, err := p.client.Get(ctx, p.path)
	if err == nil && (status < http.StatusOK || status >= http.StatusMultipleChoices) {
		err = &controller.StatusError{Status: status, Body: truncate(body)}
	}

	var zones []zone.Zone
	if err == nil {
		zones, err = zone.ParseListing(body)
		if err != nil {
			err = fmt.Errorf("syncer: parsing listing: %w", err)
		}
	}

	p.mu.Lock()
	p.lastPollAt = time.Now()
	p.lastErr = err
	p.mu.Unlock()

	if err != nil {
		return err
	}

	p.store.SetFullReplace(zones)
	p.logger.Debug("poll applied", "path", p.path, "zones", len(zones))
	return nil
}

// truncate bounds an error body for logging.
func truncate(body []byte) string {
	const max = 256
	if len(body) > max {
		body = body[:max]
	}
	return string(body)
}
