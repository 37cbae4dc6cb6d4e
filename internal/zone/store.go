package zone

import "sync"

// Logger defines the logging interface used by the Store.
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

// Store holds the canonical zone table and fans out change notifications.
//
// A single mutex serializes every read and write, so a snapshot never
// observes a table mid-mutation. Subscriber callbacks run synchronously
// under that mutex in merge order: they must return quickly and must not
// call back into the Store. Hand the work to your own goroutine if it can
// block.
//
// After Close, mutations are ignored and no further notifications are
// delivered.
type Store struct {
	mu      sync.Mutex
	table   Table
	subs    map[int]func(Table)
	nextSub int
	closed  bool
	logger  Logger

	// Counters for the status API and metrics.
	pollsApplied  uint64
	eventsApplied uint64
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		subs:   make(map[int]func(Table)),
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the store.
func (s *Store) SetLogger(logger Logger) {
	s.mu.Lock()
	s.logger = logger
	s.mu.Unlock()
}

// Snapshot returns a deep copy of the current table.
func (s *Store) Snapshot() Table {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.Clone()
}

// Subscribe registers a callback invoked with a fresh snapshot after every
// applied merge. The returned cancel function removes the subscription and
// is safe to call more than once.
func (s *Store) Subscribe(fn func(Table)) (cancel func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// SetFullReplace installs a poll result as the entire table and notifies
// subscribers. The poll listing is authoritative: zones absent from it are
// dropped.
func (s *Store) SetFullReplace(zones []Zone) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	s.table = fullReplace(zones)
	s.pollsApplied++
	s.logger.Debug("full replace applied", "zones", len(s.table))
	s.notifyLocked()
}

// ApplyZoneEvent folds a zone stream event into the table. It returns true
// and notifies subscribers when the event was applied.
func (s *Store) ApplyZoneEvent(ev ZoneEvent) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}

	table, applied := applyZone(s.table, ev)
	if !applied {
		s.logger.Debug("zone event dropped: no id")
		return false
	}
	s.table = table
	s.eventsApplied++
	s.notifyLocked()
	return true
}

// ApplyDeviceEvent folds a device stream event into the table. Events whose
// zone name matches no known zone are dropped without notification.
func (s *Store) ApplyDeviceEvent(ev DeviceEvent) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}

	table, applied := applyDevice(s.table, ev)
	if !applied {
		s.logger.Debug("device event dropped: unknown zone name",
			"zone_name", ev.ZoneName,
			"device_id", ev.DeviceID.String(),
		)
		return false
	}
	s.table = table
	s.eventsApplied++
	s.notifyLocked()
	return true
}

// Counts returns the number of applied polls and stream events.
func (s *Store) Counts() (polls, events uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pollsApplied, s.eventsApplied
}

// Size returns the number of zones currently in the table.
func (s *Store) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.table)
}

// Close stops the store. Subsequent mutations are ignored and no further
// notifications are delivered once Close returns.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.subs = make(map[int]func(Table))
}

// notifyLocked delivers one snapshot to every subscriber. Caller holds mu.
func (s *Store) notifyLocked() {
	if len(s.subs) == 0 {
		return
	}
	snap := s.table.Clone()
	for _, fn := range s.subs {
		fn(snap)
	}
}
