// Package artwork implements the multi-tier artwork pipeline: a
// content-addressed disk cache plus a resolver that falls back from
// official embedded art to collages, external profile images and
// finally a placeholder.
package artwork

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cortlandcast/logger"
)

// Category partitions the cache directory tree.
type Category string

const (
	CategoryTrack    Category = "artwork"
	CategoryAlbum    Category = "album"
	CategoryArtist   Category = "artist_profiles"
	CategoryPlaylist Category = "playlist_artwork"
)

// Categories lists every cache partition.
var Categories = []Category{CategoryTrack, CategoryAlbum, CategoryArtist, CategoryPlaylist}

// ErrMiss means no cache entry exists for the requested key.
var ErrMiss = errors.New("artwork cache miss")

// playlistMaxAge is how long playlist mosaics stay fresh. Playlists
// change under us; everything else is point-in-time.
const playlistMaxAge = 24 * time.Hour

// Store is the on-disk artwork cache: one file per
// (category, identifier, size).
type Store struct {
	root string
}

// NewStore creates the cache tree under root.
func NewStore(root string) (*Store, error) {
	for _, cat := range Categories {
		if err := os.MkdirAll(filepath.Join(root, string(cat)), 0755); err != nil {
			return nil, fmt.Errorf("create cache dir %s: %w", cat, err)
		}
	}
	return &Store{root: root}, nil
}

// sanitizeIdentifier replaces path separators so a library name like
// "AC/DC" can never escape the cache directory.
func sanitizeIdentifier(id string) string {
	id = strings.ReplaceAll(id, "/", "_")
	id = strings.ReplaceAll(id, `\`, "_")
	id = strings.ReplaceAll(id, "\x00", "_")
	if id == "" {
		id = "_"
	}
	return id
}

func (s *Store) entryPath(cat Category, id string, size int) string {
	name := fmt.Sprintf("%s_%d.jpg", sanitizeIdentifier(id), size)
	return filepath.Join(s.root, string(cat), name)
}

// Get returns the cached bytes or ErrMiss. I/O failures other than
// absence degrade to a miss as well.
func (s *Store) Get(cat Category, id string, size int) ([]byte, error) {
	data, err := os.ReadFile(s.entryPath(cat, id, size))
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("artwork cache read failed", logger.ErrorField(err))
		}
		return nil, ErrMiss
	}
	return data, nil
}

// Put writes a cache entry atomically: temp file in the same
// directory, then rename, so a concurrent reader never sees a partial
// entry.
func (s *Store) Put(cat Category, id string, size int, data []byte) error {
	dest := s.entryPath(cat, id, size)

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".tmp-*")
	if err != nil {
		return fmt.Errorf("create cache temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write cache temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close cache temp file: %w", err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("publish cache entry: %w", err)
	}
	return nil
}

// IsStale reports whether an existing entry should be regenerated.
// Only the playlist category ages out; other categories are refreshed
// solely on request.
func (s *Store) IsStale(cat Category, id string, size int) bool {
	if cat != CategoryPlaylist {
		return false
	}
	info, err := os.Stat(s.entryPath(cat, id, size))
	if err != nil {
		return false
	}
	return time.Since(info.ModTime()) > playlistMaxAge
}

// PruneStale removes aged-out playlist entries. Run periodically so
// the cache directory does not accumulate dead mosaics.
func (s *Store) PruneStale() (int, error) {
	dir := filepath.Join(s.root, string(CategoryPlaylist))
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("scan playlist cache: %w", err)
	}

	removed := 0
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil || entry.IsDir() {
			continue
		}
		if time.Since(info.ModTime()) > playlistMaxAge {
			if err := os.Remove(filepath.Join(dir, entry.Name())); err == nil {
				removed++
			}
		}
	}
	return removed, nil
}

// Purge removes every entry in a category.
func (s *Store) Purge(cat Category) error {
	dir := filepath.Join(s.root, string(cat))
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("scan cache dir %s: %w", cat, err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
			return fmt.Errorf("purge %s: %w", cat, err)
		}
	}
	return nil
}

// PurgeAll clears every category.
func (s *Store) PurgeAll() error {
	for _, cat := range Categories {
		if err := s.Purge(cat); err != nil {
			return err
		}
	}
	return nil
}
