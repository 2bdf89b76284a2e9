package server

import (
	"context"
	"net/http"
	"strings"

	"cortlandcast/core/search"
	"cortlandcast/model"
)

// AlbumsHandler lists every album name in the library.
func (h *APIHandler) AlbumsHandler(w http.ResponseWriter, r *http.Request) {
	h.nameListHandler(w, r, h.adapter.AlbumNames)
}

// ArtistsHandler lists every artist name in the library.
func (h *APIHandler) ArtistsHandler(w http.ResponseWriter, r *http.Request) {
	h.nameListHandler(w, r, h.adapter.ArtistNames)
}

// PlaylistsHandler lists every user playlist name.
func (h *APIHandler) PlaylistsHandler(w http.ResponseWriter, r *http.Request) {
	h.nameListHandler(w, r, h.adapter.PlaylistNames)
}

func (h *APIHandler) nameListHandler(w http.ResponseWriter, r *http.Request, fetch func(ctx context.Context) ([]string, error)) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	names, err := fetch(ctx)
	if err != nil {
		writePlayerError(w, err)
		return
	}
	if letter := r.URL.Query().Get("letter"); letter != "" {
		names = filterByLetter(names, letter)
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, names)
}

// filterByLetter keeps names whose folded first rune matches the given
// bucket. The "#" bucket collects everything that does not start with
// a letter.
func filterByLetter(names []string, letter string) []string {
	letter = strings.ToUpper(search.Fold(letter))
	out := []string{}
	for _, name := range names {
		folded := strings.TrimSpace(strings.ToUpper(search.Fold(name)))
		if folded == "" {
			continue
		}
		first := folded[:1]
		if letter == "#" {
			if first < "A" || first > "Z" {
				out = append(out, name)
			}
			continue
		}
		if first == letter {
			out = append(out, name)
		}
	}
	return out
}

// AlbumTracksHandler lists the tracks of one album in track order.
func (h *APIHandler) AlbumTracksHandler(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	tracks, err := h.adapter.AlbumTracks(ctx, name)
	if err != nil {
		writePlayerError(w, err)
		return
	}
	if tracks == nil {
		tracks = []model.Track{}
	}
	writeJSON(w, http.StatusOK, tracks)
}

// ArtistAlbumsHandler lists the album names of one artist.
func (h *APIHandler) ArtistAlbumsHandler(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	albums, err := h.adapter.ArtistAlbums(ctx, name)
	if err != nil {
		writePlayerError(w, err)
		return
	}
	if albums == nil {
		albums = []string{}
	}
	writeJSON(w, http.StatusOK, albums)
}

// PlaylistTracksHandler lists the tracks of one playlist, capped at the
// configured limit. The response says whether the list was truncated.
func (h *APIHandler) PlaylistTracksHandler(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	list, err := h.adapter.PlaylistTracks(ctx, name)
	if err != nil {
		writePlayerError(w, err)
		return
	}
	if list.Tracks == nil {
		list.Tracks = []model.Track{}
	}
	writeJSON(w, http.StatusOK, list)
}

// SearchHandler finds library tracks matching every word of the query,
// accent- and case-insensitively, across title, artist and album.
func (h *APIHandler) SearchHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "q is required")
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	tracks, err := h.adapter.LibraryTracks(ctx)
	if err != nil {
		writePlayerError(w, err)
		return
	}

	matched := []model.Track{}
	for _, t := range tracks {
		if search.Matches(query, t.Name, t.Artist, t.Album) {
			matched = append(matched, t)
		}
	}
	writeJSON(w, http.StatusOK, matched)
}
