package stream

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nerrad567/tadosync/internal/zone"
)

// Defaults for the reconnect schedule.
const (
	// DefaultPath subscribes to the event categories the merge engine
	// understands.
	DefaultPath = "/events?types=zone,device"

	// DefaultInitialBackoff is the first reconnect delay.
	DefaultInitialBackoff = 5 * time.Second

	// DefaultMaxBackoff caps the doubling reconnect delay.
	DefaultMaxBackoff = 60 * time.Second
)

// State is the lifecycle phase of the Reader's connection loop.
type State int32

const (
	StateIdle State = iota
	StateConnecting
	StateStreaming
	StateReconnecting
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateStreaming:
		return "streaming"
	case StateReconnecting:
		return "reconnecting"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Opener opens the event transport. *controller.Client satisfies it.
type Opener interface {
	Stream(ctx context.Context, path string) (io.ReadCloser, error)
}

// Handler receives decoded events from the reader loop. Calls are made
// synchronously from the loop goroutine in stream order; the next line is
// not read until the handler returns.
type Handler interface {
	OnZone(ev zone.ZoneEvent)
	OnDevice(ev zone.DeviceEvent)
}

// Logger defines the logging interface used by the Reader.
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

// Config tunes the reader's endpoint and reconnect schedule. Zero values
// take the package defaults.
type Config struct {
	Path           string
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// Reader maintains a live event stream connection.
//
// Start launches a loop that connects, decodes events until the connection
// drops, then reconnects with exponential backoff (doubling from the initial
// delay up to the cap, reset whenever a connection is established). Stop
// cancels the in-flight connection and any backoff sleep, then waits for the
// loop to exit, so no handler call happens after Stop returns.
type Reader struct {
	opener  Opener
	handler Handler
	logger  Logger

	path           string
	initialBackoff time.Duration
	maxBackoff     time.Duration

	state      atomic.Int32
	reconnects atomic.Uint64
	stopped    atomic.Bool

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// NewReader creates a reader. Start must be called before events flow.
func NewReader(opener Opener, handler Handler, cfg Config) *Reader {
	if cfg.Path == "" {
		cfg.Path = DefaultPath
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = DefaultInitialBackoff
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = DefaultMaxBackoff
	}

	return &Reader{
		opener:         opener,
		handler:        handler,
		logger:         noopLogger{},
		path:           cfg.Path,
		initialBackoff: cfg.InitialBackoff,
		maxBackoff:     cfg.MaxBackoff,
		done:           make(chan struct{}),
	}
}

// SetLogger sets the logger for the reader.
func (r *Reader) SetLogger(logger Logger) {
	r.logger = logger
}

// Start launches the connection loop. It returns immediately; the loop runs
// until Stop is called or ctx is cancelled. Start is not reusable, and a
// reader that was stopped before Start never connects.
func (r *Reader) Start(ctx context.Context) {
	r.once.Do(func() {
		if r.stopped.Load() {
			r.setState(StateStopped)
			return
		}
		ctx, r.cancel = context.WithCancel(ctx)
		go r.run(ctx)
	})
}

// Stop cancels the loop and waits for it to exit. Safe to call more than
// once and before Start, in which case the reader is marked stopped and a
// later Start does nothing.
func (r *Reader) Stop() {
	r.stopped.Store(true)
	if r.cancel != nil {
		r.cancel()
		<-r.done
		return
	}
	r.setState(StateStopped)
}

// State returns the current lifecycle phase.
func (r *Reader) State() State {
	return State(r.state.Load())
}

// Reconnects returns how many established connections have dropped.
func (r *Reader) Reconnects() uint64 {
	return r.reconnects.Load()
}

func (r *Reader) setState(s State) {
	r.state.Store(int32(s))
}

func (r *Reader) run(ctx context.Context) {
	defer close(r.done)
	defer r.setState(StateStopped)

	backoff := r.initialBackoff
	for {
		if ctx.Err() != nil {
			return
		}

		r.setState(StateConnecting)
		body, err := r.opener.Stream(ctx, r.path)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			r.logger.Warn("stream connect failed",
				"path", r.path,
				"error", err,
				"retry_in", backoff,
			)
			if !r.wait(ctx, backoff) {
				return
			}
			backoff = r.nextBackoff(backoff)
			continue
		}

		r.setState(StateStreaming)
		r.logger.Info("stream connected", "path", r.path)
		// A connection that reached streaming restores the short retry.
		backoff = r.initialBackoff

		err = r.consume(ctx, body)
		if ctx.Err() != nil {
			// Cancellation during shutdown is expected, not a failure.
			return
		}

		r.setState(StateReconnecting)
		r.reconnects.Add(1)
		r.logger.Warn("stream disconnected",
			"error", err,
			"retry_in", backoff,
		)
		if !r.wait(ctx, backoff) {
			return
		}
		backoff = r.nextBackoff(backoff)
	}
}

// consume decodes events until the connection ends, handing each to the
// handler in order. Bad lines are logged and skipped. Cancelling ctx closes
// the body so a blocked read returns promptly.
func (r *Reader) consume(ctx context.Context, body io.ReadCloser) error {
	defer body.Close() //nolint:errcheck // Read side; nothing to flush.

	unwatch := context.AfterFunc(ctx, func() {
		_ = body.Close() //nolint:errcheck // Unblocking the read is the point.
	})
	defer unwatch()

	dec := NewDecoder(body)
	for {
		ev, err := dec.Next()
		if err != nil {
			var derr *DecodeError
			if errors.As(err, &derr) {
				r.logger.Warn("stream line skipped", "error", derr)
				continue
			}
			return err
		}

		switch ev.Type {
		case EventKeepalive:
			r.logger.Debug("stream keepalive")
		case EventZone:
			r.handler.OnZone(*ev.Zone)
		case EventDevice:
			r.handler.OnDevice(*ev.Device)
		default:
			r.logger.Debug("stream event ignored", "type", string(ev.Type))
		}
	}
}

// wait sleeps for d unless ctx is cancelled first. It reports whether the
// full delay elapsed.
func (r *Reader) wait(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (r *Reader) nextBackoff(cur time.Duration) time.Duration {
	next := cur * 2
	if next > r.maxBackoff {
		return r.maxBackoff
	}
	return next
}
