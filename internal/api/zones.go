package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/tadosync/internal/syncer"
	"github.com/nerrad567/tadosync/internal/zone"
)

// zoneView is the JSON representation of a zone.
type zoneView struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	CurrentTempC   *float64 `json:"current_temp_c,omitempty"`
	TargetTempC    *float64 `json:"target_temp_c,omitempty"`
	Mode           string   `json:"mode"`
	HeatingPercent int      `json:"heating_percent"`
	Action         string   `json:"action"`
}

func newZoneView(z zone.Zone) zoneView {
	return zoneView{
		ID:             z.ID.String(),
		Name:           z.Name,
		CurrentTempC:   z.State.CurrentTempC,
		TargetTempC:    z.State.TargetTempC,
		Mode:           z.State.Mode.String(),
		HeatingPercent: z.State.HeatingPercent,
		Action:         string(z.State.Action()),
	}
}

func zoneViews(table zone.Table) []zoneView {
	views := make([]zoneView, len(table))
	for i, z := range table {
		views[i] = newZoneView(z)
	}
	return views
}

// handleListZones returns the current zone table.
func (s *Server) handleListZones(w http.ResponseWriter, _ *http.Request) {
	table := s.sync.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"zones": zoneViews(table),
		"count": len(table),
	})
}

// handleGetZone returns a single zone by ID.
func (s *Server) handleGetZone(w http.ResponseWriter, r *http.Request) {
	id := zone.ID(chi.URLParam(r, "id"))

	z, ok := s.sync.Snapshot().Lookup(id)
	if !ok {
		writeNotFound(w, "zone not found: "+id.String())
		return
	}
	writeJSON(w, http.StatusOK, newZoneView(z))
}

// setTemperatureRequest is the body for PUT /zones/{id}/temperature.
type setTemperatureRequest struct {
	Celsius *float64 `json:"celsius"`
}

// handleSetTemperature forwards a setpoint change to the controller and
// returns the zone as read back by the confirming refresh.
func (s *Server) handleSetTemperature(w http.ResponseWriter, r *http.Request) {
	id := zone.ID(chi.URLParam(r, "id"))

	var req setTemperatureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}
	if req.Celsius == nil {
		writeBadRequest(w, "celsius is required")
		return
	}

	if err := s.sync.SetTemperature(r.Context(), id, *req.Celsius); err != nil {
		s.writeCommandError(w, err)
		return
	}
	s.writeZoneAfterCommand(w, id)
}

// setModeRequest is the body for PUT /zones/{id}/mode.
type setModeRequest struct {
	Mode string `json:"mode"`
}

// handleSetMode switches a zone between off, heat, and auto.
func (s *Server) handleSetMode(w http.ResponseWriter, r *http.Request) {
	id := zone.ID(chi.URLParam(r, "id"))

	var req setModeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}

	var mode zone.Mode
	switch req.Mode {
	case "off":
		mode = zone.ModeOff
	case "heat":
		mode = zone.ModeHeat
	case "auto":
		mode = zone.ModeAuto
	default:
		writeBadRequest(w, "mode must be one of: off, heat, auto")
		return
	}

	if err := s.sync.SetMode(r.Context(), id, mode); err != nil {
		s.writeCommandError(w, err)
		return
	}
	s.writeZoneAfterCommand(w, id)
}

// handleRefresh forces an immediate full poll.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := s.sync.RequestRefresh(r.Context()); err != nil {
		s.writeCommandError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeZoneAfterCommand responds with the post-refresh view of a zone. The
// zone can legitimately be absent if the confirming poll dropped it.
func (s *Server) writeZoneAfterCommand(w http.ResponseWriter, id zone.ID) {
	z, ok := s.sync.Snapshot().Lookup(id)
	if !ok {
		writeNotFound(w, "zone not found after refresh: "+id.String())
		return
	}
	writeJSON(w, http.StatusOK, newZoneView(z))
}

// writeCommandError maps controller command failures to HTTP responses.
// A rejected or unreachable controller is an upstream failure, not ours.
func (s *Server) writeCommandError(w http.ResponseWriter, err error) {
	var cmdErr *syncer.CommandError
	switch {
	case errors.As(err, &cmdErr):
		writeBadGateway(w, cmdErr.Error())
	case errors.Is(err, syncer.ErrStopped):
		writeError(w, http.StatusServiceUnavailable, ErrCodeInternal, err.Error())
	default:
		writeBadGateway(w, err.Error())
	}
}
