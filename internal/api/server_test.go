package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nerrad567/tadosync/internal/infrastructure/config"
	"github.com/nerrad567/tadosync/internal/infrastructure/logging"
	"github.com/nerrad567/tadosync/internal/syncer"
	"github.com/nerrad567/tadosync/internal/zone"
)

// fakeSync is an in-memory Syncer for handler tests.
type fakeSync struct {
	mu        sync.Mutex
	table     zone.Table
	status    syncer.Status
	refreshes int
	commands  []string
	cmdErr    error
}

func (f *fakeSync) Snapshot() zone.Table {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.table.Clone()
}

func (f *fakeSync) Status() syncer.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

func (f *fakeSync) RequestRefresh(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cmdErr != nil {
		return f.cmdErr
	}
	f.refreshes++
	return nil
}

func (f *fakeSync) SetTemperature(_ context.Context, id zone.ID, celsius float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cmdErr != nil {
		return f.cmdErr
	}
	f.commands = append(f.commands, fmt.Sprintf("set_temperature %s %v", id, celsius))
	for i := range f.table {
		if f.table[i].ID == id {
			f.table[i].State.TargetTempC = &celsius
		}
	}
	return nil
}

func (f *fakeSync) SetMode(_ context.Context, id zone.ID, mode zone.Mode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cmdErr != nil {
		return f.cmdErr
	}
	f.commands = append(f.commands, fmt.Sprintf("set_mode %s %s", id, mode))
	for i := range f.table {
		if f.table[i].ID == id {
			f.table[i].State.Mode = mode
		}
	}
	return nil
}

func floatPtr(v float64) *float64 { return &v }

func testTable() zone.Table {
	return zone.Table{
		{
			ID:   "1",
			Name: "Lounge",
			State: zone.State{
				CurrentTempC:   floatPtr(19.5),
				TargetTempC:    floatPtr(21.0),
				Mode:           zone.ModeHeat,
				HeatingPercent: 40,
			},
		},
		{
			ID:    "2",
			Name:  "Kitchen",
			State: zone.State{Mode: zone.ModeOff},
		},
	}
}

func newTestServer(t *testing.T, fake *fakeSync) (*Server, *httptest.Server) {
	t.Helper()

	logger := logging.New(config.LoggingConfig{Level: "error"}, "test")
	srv, err := New(Deps{
		WS: config.WebSocketConfig{
			MaxMessageSize: 4096,
			PingInterval:   30,
			PongTimeout:    10,
		},
		Logger:  logger,
		Sync:    fake,
		Version: "test",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	srv.hub = NewHub(srv.wsCfg, logger)
	srv.started = time.Now()

	ts := httptest.NewServer(srv.buildRouter())
	t.Cleanup(ts.Close)
	return srv, ts
}

func TestServer_RequiresDependencies(t *testing.T) {
	logger := logging.New(config.LoggingConfig{Level: "error"}, "test")

	if _, err := New(Deps{Sync: &fakeSync{}}); err == nil {
		t.Errorf("New() without logger: error = nil, want error")
	}
	if _, err := New(Deps{Logger: logger}); err == nil {
		t.Errorf("New() without sync client: error = nil, want error")
	}
}

func TestServer_Health(t *testing.T) {
	_, ts := newTestServer(t, &fakeSync{})

	resp, err := http.Get(ts.URL + "/api/v1/health")
	if err != nil {
		t.Fatalf("GET /health error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if got := resp.Header.Get("X-Request-ID"); got == "" {
		t.Errorf("X-Request-ID header missing")
	}

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %v, want ok", body["status"])
	}
	if body["version"] != "test" {
		t.Errorf("version field = %v, want test", body["version"])
	}
}

func TestServer_ListZones(t *testing.T) {
	_, ts := newTestServer(t, &fakeSync{table: testTable()})

	resp, err := http.Get(ts.URL + "/api/v1/zones")
	if err != nil {
		t.Fatalf("GET /zones error = %v", err)
	}
	defer resp.Body.Close()

	var body struct {
		Zones []zoneView `json:"zones"`
		Count int        `json:"count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}

	if body.Count != 2 || len(body.Zones) != 2 {
		t.Fatalf("count = %d, zones = %d, want 2 and 2", body.Count, len(body.Zones))
	}
	lounge := body.Zones[0]
	if lounge.ID != "1" || lounge.Name != "Lounge" {
		t.Errorf("zones[0] = %s/%s, want 1/Lounge", lounge.ID, lounge.Name)
	}
	if lounge.Mode != "heat" || lounge.Action != "heating" {
		t.Errorf("zones[0] mode/action = %s/%s, want heat/heating", lounge.Mode, lounge.Action)
	}
	if lounge.CurrentTempC == nil || *lounge.CurrentTempC != 19.5 {
		t.Errorf("zones[0].current_temp_c = %v, want 19.5", lounge.CurrentTempC)
	}
	if body.Zones[1].Action != "off" {
		t.Errorf("zones[1].action = %s, want off", body.Zones[1].Action)
	}
}

func TestServer_GetZone(t *testing.T) {
	_, ts := newTestServer(t, &fakeSync{table: testTable()})

	resp, err := http.Get(ts.URL + "/api/v1/zones/2")
	if err != nil {
		t.Fatalf("GET /zones/2 error = %v", err)
	}
	defer resp.Body.Close()

	var view zoneView
	if err := json.NewDecoder(resp.Body).Decode(&view); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if view.ID != "2" || view.Name != "Kitchen" {
		t.Errorf("zone = %s/%s, want 2/Kitchen", view.ID, view.Name)
	}
	if view.CurrentTempC != nil {
		t.Errorf("current_temp_c = %v, want omitted", *view.CurrentTempC)
	}
}

func TestServer_GetZoneNotFound(t *testing.T) {
	_, ts := newTestServer(t, &fakeSync{table: testTable()})

	resp, err := http.Get(ts.URL + "/api/v1/zones/99")
	if err != nil {
		t.Fatalf("GET /zones/99 error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
	var apiErr Error
	if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil {
		t.Fatalf("decoding error body: %v", err)
	}
	if apiErr.Code != ErrCodeNotFound {
		t.Errorf("error code = %s, want %s", apiErr.Code, ErrCodeNotFound)
	}
}

func putJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPut, url, bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("PUT %s error = %v", url, err)
	}
	return resp
}

func TestServer_SetTemperature(t *testing.T) {
	fake := &fakeSync{table: testTable()}
	_, ts := newTestServer(t, fake)

	resp := putJSON(t, ts.URL+"/api/v1/zones/1/temperature", `{"celsius": 22.5}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	var view zoneView
	if err := json.NewDecoder(resp.Body).Decode(&view); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if view.TargetTempC == nil || *view.TargetTempC != 22.5 {
		t.Errorf("target_temp_c = %v, want 22.5 after command", view.TargetTempC)
	}
	if len(fake.commands) != 1 || fake.commands[0] != "set_temperature 1 22.5" {
		t.Errorf("commands = %v, want [set_temperature 1 22.5]", fake.commands)
	}
}

func TestServer_SetTemperatureValidation(t *testing.T) {
	fake := &fakeSync{table: testTable()}
	_, ts := newTestServer(t, fake)

	for _, body := range []string{`{}`, `not json`} {
		resp := putJSON(t, ts.URL+"/api/v1/zones/1/temperature", body)
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want %d", body, resp.StatusCode, http.StatusBadRequest)
		}
	}
	if len(fake.commands) != 0 {
		t.Errorf("commands = %v, want none for rejected requests", fake.commands)
	}
}

func TestServer_SetMode(t *testing.T) {
	fake := &fakeSync{table: testTable()}
	_, ts := newTestServer(t, fake)

	resp := putJSON(t, ts.URL+"/api/v1/zones/2/mode", `{"mode": "auto"}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	var view zoneView
	if err := json.NewDecoder(resp.Body).Decode(&view); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if view.Mode != "auto" {
		t.Errorf("mode = %s, want auto", view.Mode)
	}
}

func TestServer_SetModeRejectsUnknown(t *testing.T) {
	fake := &fakeSync{table: testTable()}
	_, ts := newTestServer(t, fake)

	resp := putJSON(t, ts.URL+"/api/v1/zones/2/mode", `{"mode": "defrost"}`)
	resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
}

func TestServer_CommandFailureMapsToBadGateway(t *testing.T) {
	fake := &fakeSync{
		table:  testTable(),
		cmdErr: &syncer.CommandError{Op: "set_temperature", ZoneID: "1", Status: http.StatusServiceUnavailable},
	}
	_, ts := newTestServer(t, fake)

	resp := putJSON(t, ts.URL+"/api/v1/zones/1/temperature", `{"celsius": 20}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadGateway)
	}
	var apiErr Error
	if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil {
		t.Fatalf("decoding error body: %v", err)
	}
	if apiErr.Code != ErrCodeBadGateway {
		t.Errorf("error code = %s, want %s", apiErr.Code, ErrCodeBadGateway)
	}
}

func TestServer_Refresh(t *testing.T) {
	fake := &fakeSync{table: testTable()}
	_, ts := newTestServer(t, fake)

	resp, err := http.Post(ts.URL+"/api/v1/refresh", "application/json", nil)
	if err != nil {
		t.Fatalf("POST /refresh error = %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNoContent)
	}
	if fake.refreshes != 1 {
		t.Errorf("refreshes = %d, want 1", fake.refreshes)
	}
}

func TestServer_Status(t *testing.T) {
	fake := &fakeSync{
		table: testTable(),
		status: syncer.Status{
			StreamState: "streaming",
			Zones:       2,
		},
	}
	_, ts := newTestServer(t, fake)

	resp, err := http.Get(ts.URL + "/api/v1/status")
	if err != nil {
		t.Fatalf("GET /status error = %v", err)
	}
	defer resp.Body.Close()

	var body struct {
		Sync             syncer.Status  `json:"sync"`
		Version          string         `json:"version"`
		WebsocketClients int            `json:"websocket_clients"`
		Runtime          map[string]any `json:"runtime"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body.Sync.StreamState != "streaming" {
		t.Errorf("sync.stream_state = %s, want streaming", body.Sync.StreamState)
	}
	if body.Version != "test" {
		t.Errorf("version = %s, want test", body.Version)
	}
	if _, ok := body.Runtime["goroutines"]; !ok {
		t.Errorf("runtime.goroutines missing from status response")
	}
}

func TestServer_WebSocketPush(t *testing.T) {
	fake := &fakeSync{table: testTable()}
	srv, ts := newTestServer(t, fake)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dialing websocket: %v", err)
	}
	defer conn.Close()

	readMessage := func() WSMessage {
		t.Helper()
		//nolint:errcheck // Deadline on test connection
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var msg WSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("reading websocket message: %v", err)
		}
		return msg
	}

	// First message is the snapshot sent on connect.
	msg := readMessage()
	if msg.Type != WSTypeEvent || msg.EventType != "zone_state" {
		t.Fatalf("message type = %s/%s, want event/zone_state", msg.Type, msg.EventType)
	}

	// Subsequent table changes are broadcast to the same client.
	srv.hub.Broadcast("zone_state", zoneViews(fake.Snapshot()))
	msg = readMessage()
	if msg.EventType != "zone_state" {
		t.Fatalf("broadcast event_type = %s, want zone_state", msg.EventType)
	}
	payload, err := json.Marshal(msg.Payload)
	if err != nil {
		t.Fatalf("re-marshalling payload: %v", err)
	}
	var zones []zoneView
	if err := json.Unmarshal(payload, &zones); err != nil {
		t.Fatalf("decoding payload: %v", err)
	}
	if len(zones) != 2 || zones[0].Name != "Lounge" {
		t.Errorf("payload zones = %v, want Lounge and Kitchen", zones)
	}
}

func TestStatusWriter_Hijack(t *testing.T) {
	// The upgrade handler requires the logged writer to stay hijackable;
	// the full path is exercised by TestServer_WebSocketPush.
	var _ http.Hijacker = (*statusWriter)(nil)

	w := &statusWriter{ResponseWriter: httptest.NewRecorder(), status: http.StatusOK}
	if _, _, err := w.Hijack(); err == nil {
		t.Error("Hijack() error = nil, want error when the underlying writer is not a Hijacker")
	}
}

func TestGenerateRequestID(t *testing.T) {
	a, b := generateRequestID(), generateRequestID()
	if len(a) != requestIDBytes*2 {
		t.Errorf("len = %d, want %d hex chars", len(a), requestIDBytes*2)
	}
	if a == b {
		t.Errorf("consecutive IDs collide: %s", a)
	}
}
