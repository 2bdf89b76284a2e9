package server

import (
	"net/http"
	"strconv"
	"strings"

	"cortlandcast/core/artwork"
	"cortlandcast/logger"
)

// artworkQuery reads the shared size/refresh parameters.
func (h *APIHandler) artworkQuery(r *http.Request) (size int, refresh bool) {
	size = h.cfg.ArtworkDefaultSize
	if s := r.URL.Query().Get("size"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			size = v
		}
	}
	refresh = r.URL.Query().Get("refresh") == "true"
	return size, refresh
}

func (h *APIHandler) serveArtwork(w http.ResponseWriter, r *http.Request, req artwork.Request) {
	data, contentType := h.resolver.Resolve(r.Context(), req)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if _, err := w.Write(data); err != nil {
		logger.Debug("artwork write aborted", logger.ErrorField(err))
	}
}

// CurrentArtworkHandler serves artwork for whatever track is playing.
func (h *APIHandler) CurrentArtworkHandler(w http.ResponseWriter, r *http.Request) {
	size, refresh := h.artworkQuery(r)

	// Key the cache by the playing track so consecutive requests for
	// the same track reuse one entry. An unreachable player still gets
	// a placeholder response through the resolver.
	identifier := "current"
	ctx, cancel := h.requestContext(r)
	if snap, err := h.adapter.QuerySnapshot(ctx); err == nil {
		if id := snap.TrackIdentity(); id != "" {
			identifier = strings.ReplaceAll(id, "\x00", " - ")
		}
	}
	cancel()

	h.serveArtwork(w, r, artwork.Request{
		Kind:         artwork.KindCurrent,
		Identifier:   identifier,
		Size:         size,
		ForceRefresh: refresh,
	})
}

// AlbumArtworkHandler serves artwork for a named album.
func (h *APIHandler) AlbumArtworkHandler(w http.ResponseWriter, r *http.Request) {
	h.namedArtworkHandler(w, r, artwork.KindAlbum)
}

// ArtistArtworkHandler serves a profile image for a named artist.
func (h *APIHandler) ArtistArtworkHandler(w http.ResponseWriter, r *http.Request) {
	h.namedArtworkHandler(w, r, artwork.KindArtist)
}

// PlaylistArtworkHandler serves artwork for a named playlist, composing
// a track mosaic when the playlist has no artwork of its own.
func (h *APIHandler) PlaylistArtworkHandler(w http.ResponseWriter, r *http.Request) {
	h.namedArtworkHandler(w, r, artwork.KindPlaylist)
}

func (h *APIHandler) namedArtworkHandler(w http.ResponseWriter, r *http.Request, kind artwork.Kind) {
	name := r.URL.Query().Get("name")
	if name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	size, refresh := h.artworkQuery(r)
	h.serveArtwork(w, r, artwork.Request{
		Kind:         kind,
		Identifier:   name,
		Size:         size,
		ForceRefresh: refresh,
	})
}

// ClearArtworkCacheHandler empties every artwork cache partition.
func (h *APIHandler) ClearArtworkCacheHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.store.PurgeAll(); err != nil {
		logger.Error("cache purge failed", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "cache purge failed")
		return
	}
	writeOK(w)
}
