package artwork

import (
	"bytes"
	"context"
	"math/rand"
	"net/http"

	"github.com/disintegration/imaging"

	"cortlandcast/logger"
	"cortlandcast/metrics"
)

// Kind is the entity an artwork request targets.
type Kind string

const (
	KindCurrent  Kind = "current"
	KindAlbum    Kind = "album"
	KindArtist   Kind = "artist"
	KindPlaylist Kind = "playlist"
)

// Request describes one artwork resolution.
type Request struct {
	Kind         Kind
	Identifier   string
	Size         int
	ForceRefresh bool
}

// PlayerArt is the slice of the player adapter the resolver needs.
type PlayerArt interface {
	CurrentTrackArt(ctx context.Context) ([]byte, error)
	AlbumArt(ctx context.Context, album string) ([]byte, error)
	PlaylistArt(ctx context.Context, playlist string) ([]byte, error)
	TrackArt(ctx context.Context, persistentID string) ([]byte, error)
	PlaylistTracksWithArt(ctx context.Context, playlist string) ([]string, error)
}

// Resolver produces image bytes for every artwork request, consulting
// the cache first and falling back through official art, collage or
// external profile fetch to the placeholder. Absence of artwork is
// never an error.
type Resolver struct {
	store       *Store
	player      PlayerArt
	profiles    ProfileResolver
	client      *http.Client
	defaultSize int
}

// NewResolver creates a resolver. defaultSize is used when a request
// carries no size.
func NewResolver(store *Store, player PlayerArt, profiles ProfileResolver, client *http.Client, defaultSize int) *Resolver {
	if defaultSize <= 0 {
		defaultSize = 600
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Resolver{
		store:       store,
		player:      player,
		profiles:    profiles,
		client:      client,
		defaultSize: defaultSize,
	}
}

func categoryFor(kind Kind) Category {
	switch kind {
	case KindAlbum:
		return CategoryAlbum
	case KindArtist:
		return CategoryArtist
	case KindPlaylist:
		return CategoryPlaylist
	default:
		return CategoryTrack
	}
}

// Resolve returns image bytes and their content type. It always
// returns a valid image; every failure path falls through to the
// placeholder.
func (r *Resolver) Resolve(ctx context.Context, req Request) ([]byte, string) {
	size := req.Size
	if size <= 0 {
		size = r.defaultSize
	}
	cat := categoryFor(req.Kind)

	if !req.ForceRefresh && !r.store.IsStale(cat, req.Identifier, size) {
		if data, err := r.store.Get(cat, req.Identifier, size); err == nil {
			metrics.ArtworkCacheHits.WithLabelValues(string(cat)).Inc()
			return data, http.DetectContentType(data)
		}
	}
	metrics.ArtworkCacheMisses.WithLabelValues(string(cat)).Inc()

	data, err := r.officialArt(ctx, req)
	if err == nil {
		r.cache(cat, req.Identifier, size, data)
		metrics.ArtworkFallbacks.WithLabelValues("official").Inc()
		return data, http.DetectContentType(data)
	}
	logger.Debug("official artwork unavailable",
		logger.String("kind", string(req.Kind)),
		logger.String("identifier", req.Identifier),
		logger.ErrorField(err))

	switch req.Kind {
	case KindPlaylist:
		data, err = r.collageArt(ctx, req.Identifier, size)
		if err == nil {
			r.cache(cat, req.Identifier, size, data)
			metrics.ArtworkFallbacks.WithLabelValues("collage").Inc()
			return data, http.DetectContentType(data)
		}
		logger.Debug("playlist collage failed",
			logger.String("playlist", req.Identifier),
			logger.ErrorField(err))
	case KindArtist:
		data, err = r.profileArt(ctx, req.Identifier, size)
		if err == nil {
			r.cache(cat, req.Identifier, size, data)
			metrics.ArtworkFallbacks.WithLabelValues("profile").Inc()
			return data, http.DetectContentType(data)
		}
		logger.Debug("artist profile fetch failed",
			logger.String("artist", req.Identifier),
			logger.ErrorField(err))
	}

	metrics.ArtworkFallbacks.WithLabelValues("placeholder").Inc()
	data = Placeholder()
	return data, http.DetectContentType(data)
}

// officialArt asks the player for the entity's own embedded artwork.
// The library has no artist-level artwork, so the artist kind skips
// straight to its fallback.
func (r *Resolver) officialArt(ctx context.Context, req Request) ([]byte, error) {
	switch req.Kind {
	case KindCurrent:
		return r.player.CurrentTrackArt(ctx)
	case KindAlbum:
		return r.player.AlbumArt(ctx, req.Identifier)
	case KindPlaylist:
		return r.player.PlaylistArt(ctx, req.Identifier)
	default:
		return nil, ErrNoProfileImage
	}
}

// collageArt builds a 2x2 mosaic from up to four randomly chosen
// playlist tracks that carry embedded artwork.
func (r *Resolver) collageArt(ctx context.Context, playlist string, size int) ([]byte, error) {
	ids, err := r.player.PlaylistTracksWithArt(ctx, playlist)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, ErrNoSources
	}

	rand.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })

	var sources [][]byte
	for _, id := range ids {
		art, err := r.player.TrackArt(ctx, id)
		if err != nil {
			continue
		}
		sources = append(sources, art)
		if len(sources) == 4 {
			break
		}
	}
	return Collage(sources, size)
}

// profileArt resolves an artist image through the external lookup,
// upgrades the URL's encoded size, downloads and squares it.
func (r *Resolver) profileArt(ctx context.Context, artist string, size int) ([]byte, error) {
	imageURL, err := r.profiles.ProfileImageURL(ctx, artist)
	if err != nil {
		return nil, err
	}

	data, err := downloadImage(ctx, r.client, UpgradeImageURL(imageURL, size))
	if err != nil {
		return nil, err
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	square := imaging.Fill(img, size, size, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, square, imaging.JPEG, imaging.JPEGQuality(90)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// cache stores a resolved image; write failures are logged and
// swallowed so they never fail the request.
func (r *Resolver) cache(cat Category, id string, size int, data []byte) {
	if err := r.store.Put(cat, id, size, data); err != nil {
		logger.Warn("artwork cache write failed",
			logger.String("category", string(cat)),
			logger.String("identifier", id),
			logger.ErrorField(err))
	}
}
