package artwork

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cortlandcast/core/player"
)

// fakePlayer counts calls so tests can assert cache behavior.
type fakePlayer struct {
	currentArt  []byte
	albumArt    map[string][]byte
	trackArt    map[string][]byte
	playlistIDs map[string][]string

	currentCalls int
	albumCalls   int
	trackCalls   int
}

func (f *fakePlayer) CurrentTrackArt(ctx context.Context) ([]byte, error) {
	f.currentCalls++
	if f.currentArt == nil {
		return nil, player.ErrNoArtwork
	}
	return f.currentArt, nil
}

func (f *fakePlayer) AlbumArt(ctx context.Context, album string) ([]byte, error) {
	f.albumCalls++
	if art, ok := f.albumArt[album]; ok {
		return art, nil
	}
	return nil, player.ErrNotFound
}

func (f *fakePlayer) PlaylistArt(ctx context.Context, playlist string) ([]byte, error) {
	return nil, player.ErrNoArtwork
}

func (f *fakePlayer) TrackArt(ctx context.Context, id string) ([]byte, error) {
	f.trackCalls++
	if art, ok := f.trackArt[id]; ok {
		return art, nil
	}
	return nil, player.ErrNoArtwork
}

func (f *fakePlayer) PlaylistTracksWithArt(ctx context.Context, playlist string) ([]string, error) {
	ids, ok := f.playlistIDs[playlist]
	if !ok {
		return nil, player.ErrNotFound
	}
	return ids, nil
}

type fakeProfiles struct {
	url string
	err error
}

func (f *fakeProfiles) ProfileImageURL(ctx context.Context, artist string) (string, error) {
	return f.url, f.err
}

func newTestResolver(t *testing.T, p PlayerArt, profiles ProfileResolver) *Resolver {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	if profiles == nil {
		profiles = &fakeProfiles{err: ErrNoProfileImage}
	}
	return NewResolver(store, p, profiles, http.DefaultClient, 600)
}

func TestResolveAlbumOfficialArtAndIdempotence(t *testing.T) {
	art := encodeTestImage(t, 300, 300, color.NRGBA{R: 200, A: 255})
	p := &fakePlayer{albumArt: map[string][]byte{"Talk On Corners": art}}
	r := newTestResolver(t, p, nil)

	req := Request{Kind: KindAlbum, Identifier: "Talk On Corners", Size: 600}
	first, contentType := r.Resolve(context.Background(), req)
	assert.Equal(t, art, first)
	assert.Equal(t, "image/jpeg", contentType)
	assert.Equal(t, 1, p.albumCalls)

	// Warm cache: byte-identical result, no further player calls.
	second, _ := r.Resolve(context.Background(), req)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, p.albumCalls)
}

func TestResolveForceRefreshBypassesCache(t *testing.T) {
	art := encodeTestImage(t, 300, 300, color.NRGBA{G: 200, A: 255})
	p := &fakePlayer{albumArt: map[string][]byte{"Talk On Corners": art}}
	r := newTestResolver(t, p, nil)

	req := Request{Kind: KindAlbum, Identifier: "Talk On Corners", Size: 600}
	r.Resolve(context.Background(), req)

	refreshed := encodeTestImage(t, 300, 300, color.NRGBA{B: 200, A: 255})
	p.albumArt["Talk On Corners"] = refreshed

	req.ForceRefresh = true
	data, _ := r.Resolve(context.Background(), req)
	assert.Equal(t, refreshed, data)
	assert.Equal(t, 2, p.albumCalls)

	// The refreshed result overwrote the cache entry.
	req.ForceRefresh = false
	data, _ = r.Resolve(context.Background(), req)
	assert.Equal(t, refreshed, data)
	assert.Equal(t, 2, p.albumCalls)
}

func TestResolveMissingAlbumReturnsPlaceholder(t *testing.T) {
	p := &fakePlayer{}
	r := newTestResolver(t, p, nil)

	data, contentType := r.Resolve(context.Background(), Request{Kind: KindAlbum, Identifier: "Nope"})
	assert.Equal(t, Placeholder(), data)
	assert.Equal(t, "image/png", contentType)

	// Placeholders are never cached.
	_, err := r.store.Get(CategoryAlbum, "Nope", 600)
	assert.ErrorIs(t, err, ErrMiss)
}

func TestResolveCurrentTrackArt(t *testing.T) {
	art := encodeTestImage(t, 256, 256, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	p := &fakePlayer{currentArt: art}
	r := newTestResolver(t, p, nil)

	data, _ := r.Resolve(context.Background(), Request{Kind: KindCurrent, Identifier: "The Corrs - Runaway"})
	assert.Equal(t, art, data)
	assert.Equal(t, 1, p.currentCalls)
}

func TestResolvePlaylistCollage(t *testing.T) {
	trackArt := map[string][]byte{
		"t1": encodeTestImage(t, 200, 200, color.NRGBA{R: 255, A: 255}),
		"t2": encodeTestImage(t, 200, 200, color.NRGBA{G: 255, A: 255}),
		"t3": encodeTestImage(t, 200, 200, color.NRGBA{B: 255, A: 255}),
		"t4": encodeTestImage(t, 200, 200, color.NRGBA{R: 255, B: 255, A: 255}),
	}
	p := &fakePlayer{
		trackArt:    trackArt,
		playlistIDs: map[string][]string{"Road Trip": {"t1", "t2", "t3", "t4", "t5"}},
	}
	r := newTestResolver(t, p, nil)

	data, contentType := r.Resolve(context.Background(), Request{Kind: KindPlaylist, Identifier: "Road Trip", Size: 400})
	assert.Equal(t, "image/jpeg", contentType)
	assert.NotEqual(t, Placeholder(), data)

	// The mosaic was cached under the playlist category.
	cached, err := r.store.Get(CategoryPlaylist, "Road Trip", 400)
	require.NoError(t, err)
	assert.Equal(t, data, cached)
}

func TestResolvePlaylistWithoutArtfulTracks(t *testing.T) {
	p := &fakePlayer{playlistIDs: map[string][]string{"Empty": {}}}
	r := newTestResolver(t, p, nil)

	data, _ := r.Resolve(context.Background(), Request{Kind: KindPlaylist, Identifier: "Empty"})
	assert.Equal(t, Placeholder(), data)
}

func TestResolveArtistProfileImage(t *testing.T) {
	profileImg := encodeTestImage(t, 800, 500, color.NRGBA{R: 120, G: 40, B: 200, A: 255})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write(profileImg)
	}))
	defer srv.Close()

	p := &fakePlayer{}
	r := newTestResolver(t, p, &fakeProfiles{url: srv.URL + "/image/220x220bb.jpg"})

	data, contentType := r.Resolve(context.Background(), Request{Kind: KindArtist, Identifier: "The Corrs", Size: 300})
	assert.Equal(t, "image/jpeg", contentType)
	assert.NotEqual(t, Placeholder(), data)

	// Cached under the artist profile category.
	_, err := r.store.Get(CategoryArtist, "The Corrs", 300)
	assert.NoError(t, err)
}

func TestResolveArtistLookupFailureReturnsPlaceholder(t *testing.T) {
	p := &fakePlayer{}
	r := newTestResolver(t, p, &fakeProfiles{err: errors.New("network down")})

	data, _ := r.Resolve(context.Background(), Request{Kind: KindArtist, Identifier: "The Corrs"})
	assert.Equal(t, Placeholder(), data)
}

func TestDownloadImageRejectsOversizedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		// PNG magic so the content check passes, then padding past
		// the read ceiling.
		w.Write([]byte("\x89PNG\r\n\x1a\n"))
		w.Write(bytes.Repeat([]byte{0}, maxImageBytes))
	}))
	defer srv.Close()

	_, err := downloadImage(context.Background(), srv.Client(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds")
}

func TestUpgradeImageURL(t *testing.T) {
	assert.Equal(t,
		"https://example.com/img/600x600bb.jpg",
		UpgradeImageURL("https://example.com/img/220x220bb.jpg", 600))
	assert.Equal(t,
		"https://example.com/img/photo.jpg",
		UpgradeImageURL("https://example.com/img/photo.jpg", 600))
}

func TestFindMetaImage(t *testing.T) {
	page := `<html><head>
		<meta property="og:title" content="The Corrs"/>
		<meta property="og:image" content="https://example.com/img/220x220bb.jpg"/>
	</head><body></body></html>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if strings.HasPrefix(req.URL.Path, "/page") {
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte(page))
			return
		}
		http.NotFound(w, req)
	}))
	defer srv.Close()

	resolver := &ITunesProfileResolver{Client: srv.Client(), SearchURL: srv.URL + "/search"}
	url, err := resolver.scrapeImageURL(context.Background(), srv.URL+"/page")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/img/220x220bb.jpg", url)
}
