package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"cortlandcast/config"
	"cortlandcast/core/artwork"
	"cortlandcast/core/player"
	"cortlandcast/core/state"
	"cortlandcast/logger"
	"cortlandcast/model"
)

// APIHandler handles all API requests against the player bridge.
type APIHandler struct {
	adapter  *player.Adapter
	hub      *state.Hub
	resolver *artwork.Resolver
	store    *artwork.Store
	cfg      *config.Config
}

// NewAPIHandler creates a new API handler.
func NewAPIHandler(adapter *player.Adapter, hub *state.Hub, resolver *artwork.Resolver, store *artwork.Store, cfg *config.Config) *APIHandler {
	return &APIHandler{
		adapter:  adapter,
		hub:      hub,
		resolver: resolver,
		store:    store,
		cfg:      cfg,
	}
}

func (h *APIHandler) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), h.cfg.ScriptTimeout+5*time.Second)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Warn("response encode failed", logger.ErrorField(err))
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writePlayerError maps adapter failures onto HTTP statuses. A stopped
// player is a service condition, a bad name is the caller's problem.
func writePlayerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, player.ErrNotRunning):
		writeError(w, http.StatusServiceUnavailable, "music player is not running")
	case errors.Is(err, player.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	default:
		logger.Error("player command failed", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "player command failed")
	}
}

func writeOK(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// NowPlayingHandler returns the full current player state.
func (h *APIHandler) NowPlayingHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	snap, err := h.adapter.QuerySnapshot(ctx)
	if err != nil {
		writePlayerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.NowPlayingFromSnapshot(snap))
}

// simpleCommandHandler wraps a no-argument transport command.
func (h *APIHandler) simpleCommandHandler(cmd func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := h.requestContext(r)
		defer cancel()

		if err := cmd(ctx); err != nil {
			writePlayerError(w, err)
			return
		}
		writeOK(w)
	}
}

type playRequest struct {
	Type  string `json:"type"`
	Name  string `json:"name"`
	Album string `json:"album"`
}

// PlayHandler starts playback of a playlist, album, artist or track.
func (h *APIHandler) PlayHandler(w http.ResponseWriter, r *http.Request) {
	var req playRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	var err error
	switch req.Type {
	case "playlist":
		err = h.adapter.PlayPlaylist(ctx, req.Name)
	case "album":
		err = h.adapter.PlayAlbum(ctx, req.Name)
	case "artist":
		err = h.adapter.PlayArtist(ctx, req.Name)
	case "track":
		if req.Album == "" {
			writeError(w, http.StatusBadRequest, "album is required for track playback")
			return
		}
		err = h.adapter.PlayAlbumTrack(ctx, req.Album, req.Name)
	default:
		writeError(w, http.StatusBadRequest, "type must be playlist, album, artist or track")
		return
	}
	if err != nil {
		writePlayerError(w, err)
		return
	}
	writeOK(w)
}

// SetVolumeHandler sets the master player volume.
func (h *APIHandler) SetVolumeHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Volume *int `json:"volume"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Volume == nil || *req.Volume < 0 || *req.Volume > 100 {
		writeError(w, http.StatusBadRequest, "volume must be between 0 and 100")
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	if err := h.adapter.SetVolume(ctx, *req.Volume); err != nil {
		writePlayerError(w, err)
		return
	}
	writeOK(w)
}

// SetShuffleHandler toggles shuffle mode.
func (h *APIHandler) SetShuffleHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Enabled *bool `json:"enabled"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Enabled == nil {
		writeError(w, http.StatusBadRequest, "enabled is required")
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	if err := h.adapter.SetShuffle(ctx, *req.Enabled); err != nil {
		writePlayerError(w, err)
		return
	}
	writeOK(w)
}

// SetRepeatHandler sets the repeat mode.
func (h *APIHandler) SetRepeatHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Mode string `json:"mode"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	switch req.Mode {
	case "off", "one", "all":
	default:
		writeError(w, http.StatusBadRequest, "mode must be off, one or all")
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	if err := h.adapter.SetRepeat(ctx, req.Mode); err != nil {
		writePlayerError(w, err)
		return
	}
	writeOK(w)
}

// SeekHandler jumps to a position within the current track.
func (h *APIHandler) SeekHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Position *float64 `json:"position"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Position == nil || *req.Position < 0 {
		writeError(w, http.StatusBadRequest, "position must be a non-negative number")
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	if err := h.adapter.Seek(ctx, *req.Position); err != nil {
		writePlayerError(w, err)
		return
	}
	writeOK(w)
}

// AirPlayDevicesHandler lists all AirPlay output devices.
func (h *APIHandler) AirPlayDevicesHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	snap, err := h.adapter.QuerySnapshot(ctx)
	if err != nil {
		writePlayerError(w, err)
		return
	}
	devices := snap.Devices
	if devices == nil {
		devices = []model.AirPlayDevice{}
	}
	writeJSON(w, http.StatusOK, devices)
}

// AirPlaySetActiveHandler activates or deactivates one AirPlay device.
func (h *APIHandler) AirPlaySetActiveHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID     string `json:"id"`
		Active *bool  `json:"active"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.ID == "" || req.Active == nil {
		writeError(w, http.StatusBadRequest, "id and active are required")
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	if err := h.adapter.SetDeviceActive(ctx, req.ID, *req.Active); err != nil {
		writePlayerError(w, err)
		return
	}
	writeOK(w)
}

// AirPlaySetVolumeHandler sets one AirPlay device's volume.
func (h *APIHandler) AirPlaySetVolumeHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID     string `json:"id"`
		Volume *int   `json:"volume"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.ID == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}
	if req.Volume == nil || *req.Volume < 0 || *req.Volume > 100 {
		writeError(w, http.StatusBadRequest, "volume must be between 0 and 100")
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	if err := h.adapter.SetDeviceVolume(ctx, req.ID, *req.Volume); err != nil {
		writePlayerError(w, err)
		return
	}
	writeOK(w)
}

// HealthHandler reports process liveness and whether the player answers.
func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	playerUp := true
	if _, err := h.adapter.QuerySnapshot(ctx); err != nil {
		playerUp = false
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"player_up":   playerUp,
		"subscribers": h.hub.Count(),
	})
}
