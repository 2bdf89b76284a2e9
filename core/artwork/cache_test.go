package artwork

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestStoreRoundTrip(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get(CategoryAlbum, "Talk On Corners", 600)
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, store.Put(CategoryAlbum, "Talk On Corners", 600, []byte("image-bytes")))

	data, err := store.Get(CategoryAlbum, "Talk On Corners", 600)
	require.NoError(t, err)
	assert.Equal(t, []byte("image-bytes"), data)

	// Different size is a distinct entry.
	_, err = store.Get(CategoryAlbum, "Talk On Corners", 300)
	assert.ErrorIs(t, err, ErrMiss)
}

func TestStoreSanitizesPathSeparators(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Put(CategoryAlbum, "AC/DC", 600, []byte("x")))
	data, err := store.Get(CategoryAlbum, "AC/DC", 600)
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), data)

	// The identifier cannot climb out of the category directory.
	require.NoError(t, store.Put(CategoryAlbum, "../../escape", 600, []byte("y")))
	entries, err := os.ReadDir(filepath.Join(store.root, string(CategoryAlbum)))
	require.NoError(t, err)
	for _, entry := range entries {
		assert.False(t, entry.IsDir())
	}
	_, err = os.Stat(filepath.Join(store.root, "escape_600.jpg"))
	assert.True(t, os.IsNotExist(err))
}

func TestStoreOverwriteInPlace(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Put(CategoryTrack, "id", 600, []byte("old")))
	require.NoError(t, store.Put(CategoryTrack, "id", 600, []byte("new")))

	data, err := store.Get(CategoryTrack, "id", 600)
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), data)
}

func backdate(t *testing.T, store *Store, cat Category, id string, size int, age time.Duration) {
	t.Helper()
	path := store.entryPath(cat, id, size)
	past := time.Now().Add(-age)
	require.NoError(t, os.Chtimes(path, past, past))
}

func TestStaleOnlyForPlaylistsPast24h(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Put(CategoryPlaylist, "Road Trip", 600, []byte("mosaic")))
	require.NoError(t, store.Put(CategoryAlbum, "Talk On Corners", 600, []byte("art")))

	// Fresh entries are not stale.
	backdate(t, store, CategoryPlaylist, "Road Trip", 600, time.Hour)
	assert.False(t, store.IsStale(CategoryPlaylist, "Road Trip", 600))

	// Past 24h a playlist mosaic ages out; album art never does.
	backdate(t, store, CategoryPlaylist, "Road Trip", 600, 25*time.Hour)
	assert.True(t, store.IsStale(CategoryPlaylist, "Road Trip", 600))

	backdate(t, store, CategoryAlbum, "Talk On Corners", 600, 25*time.Hour)
	assert.False(t, store.IsStale(CategoryAlbum, "Talk On Corners", 600))
}

func TestStaleMissingEntry(t *testing.T) {
	store := newTestStore(t)
	assert.False(t, store.IsStale(CategoryPlaylist, "nope", 600))
}

func TestPruneStaleRemovesOnlyAgedPlaylistEntries(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Put(CategoryPlaylist, "old", 600, []byte("a")))
	require.NoError(t, store.Put(CategoryPlaylist, "fresh", 600, []byte("b")))
	backdate(t, store, CategoryPlaylist, "old", 600, 25*time.Hour)

	removed, err := store.PruneStale()
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = store.Get(CategoryPlaylist, "old", 600)
	assert.ErrorIs(t, err, ErrMiss)
	_, err = store.Get(CategoryPlaylist, "fresh", 600)
	assert.NoError(t, err)
}

func TestPurge(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Put(CategoryAlbum, "a", 600, []byte("x")))
	require.NoError(t, store.Put(CategoryArtist, "b", 600, []byte("y")))

	require.NoError(t, store.Purge(CategoryAlbum))
	_, err := store.Get(CategoryAlbum, "a", 600)
	assert.ErrorIs(t, err, ErrMiss)
	_, err = store.Get(CategoryArtist, "b", 600)
	assert.NoError(t, err)

	require.NoError(t, store.PurgeAll())
	_, err = store.Get(CategoryArtist, "b", 600)
	assert.ErrorIs(t, err, ErrMiss)
}

func TestSanitizeIdentifier(t *testing.T) {
	assert.Equal(t, "AC_DC", sanitizeIdentifier("AC/DC"))
	assert.Equal(t, "a_b_c", sanitizeIdentifier(`a/b\c`))
	assert.Equal(t, "_", sanitizeIdentifier(""))
}
