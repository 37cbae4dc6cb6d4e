package syncer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/tadosync/internal/controller"
	"github.com/nerrad567/tadosync/internal/zone"
)

type getResponse struct {
	status int
	body   string
	err    error
}

// fakeGetter replays scripted responses, holding the last one once the
// script runs out.
type fakeGetter struct {
	mu        sync.Mutex
	responses []getResponse
	calls     int
}

func (g *fakeGetter) Get(_ context.Context, _ string) (int, []byte, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	r := g.responses[0]
	if len(g.responses) > 1 {
		g.responses = g.responses[1:]
	}
	return r.status, []byte(r.body), r.err
}

func (g *fakeGetter) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

const listingOne = `[{"zone_id":1,"name":"Lounge","state":{"cur_temp_c":19.5,"target_temp_c":21.0,"mode":1,"cur_heating":40}}]`

func TestPoller_EagerPollPopulatesStore(t *testing.T) {
	getter := &fakeGetter{responses: []getResponse{{status: 200, body: listingOne}}}
	store := zone.NewStore()

	p := NewPoller(getter, store, PollerConfig{Path: "/zones", Interval: time.Hour})
	p.Start(context.Background())
	defer p.Stop()

	snap := store.Snapshot()
	if len(snap) != 1 || snap[0].ID != "1" {
		t.Fatalf("Snapshot() = %+v, want one zone with id 1 after Start", snap)
	}

	at, err := p.LastPoll()
	if at.IsZero() {
		t.Error("LastPoll() time is zero after the eager poll")
	}
	if err != nil {
		t.Errorf("LastPoll() error = %v, want nil", err)
	}
}

func TestPoller_RefreshAppliesNewListing(t *testing.T) {
	getter := &fakeGetter{responses: []getResponse{
		{status: 200, body: listingOne},
		{status: 200, body: `[{"zone_id":1,"name":"Lounge"},{"zone_id":2,"name":"Kitchen"}]`},
	}}
	store := zone.NewStore()

	p := NewPoller(getter, store, PollerConfig{Path: "/zones", Interval: time.Hour})
	p.Start(context.Background())
	defer p.Stop()

	if err := p.RequestRefresh(context.Background()); err != nil {
		t.Fatalf("RequestRefresh() error = %v", err)
	}
	if got := store.Size(); got != 2 {
		t.Errorf("Size() = %d, want 2 after refresh", got)
	}
}

func TestPoller_TransportFailurePreservesTable(t *testing.T) {
	getter := &fakeGetter{responses: []getResponse{
		{status: 200, body: listingOne},
		{err: errors.New("connection refused")},
	}}
	store := zone.NewStore()

	p := NewPoller(getter, store, PollerConfig{Path: "/zones", Interval: time.Hour})
	p.Start(context.Background())
	defer p.Stop()

	err := p.RequestRefresh(context.Background())
	if err == nil {
		t.Fatal("RequestRefresh() error = nil, want transport failure")
	}

	snap := store.Snapshot()
	if len(snap) != 1 || snap[0].Name != "Lounge" {
		t.Errorf("Snapshot() = %+v, want table preserved after failed poll", snap)
	}

	if _, lastErr := p.LastPoll(); lastErr == nil {
		t.Error("LastPoll() error = nil, want recorded failure")
	}
}

func TestPoller_Non2xxIsStatusError(t *testing.T) {
	getter := &fakeGetter{responses: []getResponse{
		{status: 200, body: listingOne},
		{status: 503, body: "maintenance"},
	}}
	store := zone.NewStore()

	p := NewPoller(getter, store, PollerConfig{Path: "/zones", Interval: time.Hour})
	p.Start(context.Background())
	defer p.Stop()

	err := p.RequestRefresh(context.Background())
	var serr *controller.StatusError
	if !errors.As(err, &serr) {
		t.Fatalf("RequestRefresh() error = %v, want *controller.StatusError", err)
	}
	if serr.Status != 503 {
		t.Errorf("Status = %d, want 503", serr.Status)
	}
	if store.Size() != 1 {
		t.Errorf("Size() = %d, want table preserved", store.Size())
	}
}

func TestPoller_MalformedListingPreservesTable(t *testing.T) {
	getter := &fakeGetter{responses: []getResponse{
		{status: 200, body: listingOne},
		{status: 200, body: "not json"},
	}}
	store := zone.NewStore()

	p := NewPoller(getter, store, PollerConfig{Path: "/zones", Interval: time.Hour})
	p.Start(context.Background())
	defer p.Stop()

	if err := p.RequestRefresh(context.Background()); err == nil {
		t.Fatal("RequestRefresh() error = nil, want parse failure")
	}
	if store.Size() != 1 {
		t.Errorf("Size() = %d, want table preserved after parse failure", store.Size())
	}
}

func TestPoller_ScheduledPolls(t *testing.T) {
	getter := &fakeGetter{responses: []getResponse{{status: 200, body: listingOne}}}
	store := zone.NewStore()

	p := NewPoller(getter, store, PollerConfig{Path: "/zones", Interval: 10 * time.Millisecond})
	p.Start(context.Background())
	defer p.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for getter.callCount() < 3 {
		if time.Now().After(deadline) {
			t.Fatalf("calls = %d, ticker never fired enough", getter.callCount())
		}
		time.Sleep(time.Millisecond)
	}
}

func TestPoller_RefreshAfterStop(t *testing.T) {
	getter := &fakeGetter{responses: []getResponse{{status: 200, body: listingOne}}}
	store := zone.NewStore()

	p := NewPoller(getter, store, PollerConfig{Path: "/zones", Interval: time.Hour})
	p.Start(context.Background())
	p.Stop()

	if err := p.RequestRefresh(context.Background()); !errors.Is(err, ErrStopped) {
		t.Errorf("RequestRefresh() error = %v, want ErrStopped", err)
	}
}

func TestPoller_RefreshHonoursContext(t *testing.T) {
	getter := &fakeGetter{responses: []getResponse{{status: 200, body: listingOne}}}
	store := zone.NewStore()

	p := NewPoller(getter, store, PollerConfig{Path: "/zones", Interval: time.Hour})
	p.Start(context.Background())
	defer p.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := p.RequestRefresh(ctx); err == nil {
		t.Error("RequestRefresh() error = nil with cancelled context")
	}
}
