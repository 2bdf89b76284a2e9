package player

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"cortlandcast/model"
)

const devicesMarker = "---devices---"

// Adapter issues one-shot queries and commands against the player. It
// is stateless; every call is an independent osascript invocation.
type Adapter struct {
	timeout    time.Duration
	trackLimit int
}

// NewAdapter creates a player adapter. trackLimit caps playlist track
// listings; zero means 100.
func NewAdapter(timeout time.Duration, trackLimit int) *Adapter {
	if trackLimit <= 0 {
		trackLimit = 100
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Adapter{timeout: timeout, trackLimit: trackLimit}
}

func (a *Adapter) run(ctx context.Context, script string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	return runScript(ctx, script)
}

// checkMarkers maps sentinel script outputs to typed errors.
func checkMarkers(out string) error {
	switch out {
	case "NOT_FOUND":
		return ErrNotFound
	case "NO_ART":
		return ErrNoArtwork
	}
	return nil
}

// QuerySnapshot returns the full player state, including the AirPlay
// device roster, from a single script run.
func (a *Adapter) QuerySnapshot(ctx context.Context) (*model.Snapshot, error) {
	out, err := a.run(ctx, snapshotScript())
	if err != nil {
		return nil, err
	}

	lines := strings.Split(out, "\n")
	if len(lines) < 9 {
		return nil, fmt.Errorf("%w: short snapshot output", ErrScriptFailed)
	}

	snap := &model.Snapshot{
		State:    parsePlaybackState(lines[0]),
		Volume:   parseInt(lines[1]),
		Shuffle:  strings.TrimSpace(lines[2]) == "true",
		Repeat:   parseRepeat(lines[3]),
		Duration: parseFloat(lines[4]),
		Position: parseFloat(lines[5]),
		Title:    strings.TrimSpace(lines[6]),
		Artist:   strings.TrimSpace(lines[7]),
		Album:    strings.TrimSpace(lines[8]),
	}

	for i := 9; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == devicesMarker {
			snap.Devices = parseDevices(lines[i+1:])
			break
		}
	}
	return snap, nil
}

func parseDevices(lines []string) []model.AirPlayDevice {
	var devices []model.AirPlayDevice
	for _, line := range lines {
		fields := strings.Split(strings.TrimRight(line, "\r"), "\t")
		if len(fields) != 3 || strings.TrimSpace(fields[0]) == "" {
			continue
		}
		name := strings.TrimSpace(fields[0])
		devices = append(devices, model.AirPlayDevice{
			ID:     DeviceID(name),
			Name:   name,
			Active: strings.TrimSpace(fields[1]) == "true",
			Volume: parseInt(fields[2]),
		})
	}
	return devices
}

// DeviceID derives the stable identifier used on the wire from a
// device name.
func DeviceID(name string) string {
	id := strings.ToLower(strings.TrimSpace(name))
	return strings.ReplaceAll(id, " ", "_")
}

func parsePlaybackState(s string) model.PlaybackState {
	switch strings.TrimSpace(s) {
	case "playing", "fast forwarding", "rewinding":
		return model.StatePlaying
	case "paused":
		return model.StatePaused
	default:
		return model.StateStopped
	}
}

func parseRepeat(s string) string {
	switch strings.TrimSpace(s) {
	case "one", "all":
		return strings.TrimSpace(s)
	default:
		return "off"
	}
}

func parseInt(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}

func parseFloat(s string) float64 {
	// AppleScript prints decimals with a comma under some locales.
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	f, _ := strconv.ParseFloat(s, 64)
	return f
}

// Transport commands.

func (a *Adapter) Resume(ctx context.Context) error    { return a.command(ctx, "play") }
func (a *Adapter) Pause(ctx context.Context) error     { return a.command(ctx, "pause") }
func (a *Adapter) PlayPause(ctx context.Context) error { return a.command(ctx, "playpause") }
func (a *Adapter) Stop(ctx context.Context) error      { return a.command(ctx, "stop") }
func (a *Adapter) Next(ctx context.Context) error      { return a.command(ctx, "next track") }
func (a *Adapter) Previous(ctx context.Context) error  { return a.command(ctx, "previous track") }
func (a *Adapter) PowerOff(ctx context.Context) error  { return a.command(ctx, "quit") }

// RestartMusic quits the player and launches it again.
func (a *Adapter) RestartMusic(ctx context.Context) error {
	if err := a.command(ctx, "quit"); err != nil {
		return err
	}
	// Plain activate without the running check; the point is to start it.
	_, err := a.run(ctx, `tell application "Music" to activate`)
	return err
}

func (a *Adapter) command(ctx context.Context, cmd string) error {
	_, err := a.run(ctx, simpleCommand(cmd))
	return err
}

func (a *Adapter) SetVolume(ctx context.Context, volume int) error {
	_, err := a.run(ctx, setVolumeScript(volume))
	return err
}

func (a *Adapter) SetShuffle(ctx context.Context, enabled bool) error {
	_, err := a.run(ctx, setShuffleScript(enabled))
	return err
}

func (a *Adapter) SetRepeat(ctx context.Context, mode string) error {
	_, err := a.run(ctx, setRepeatScript(mode))
	return err
}

func (a *Adapter) Seek(ctx context.Context, position float64) error {
	_, err := a.run(ctx, seekScript(position))
	return err
}

func (a *Adapter) PlayPlaylist(ctx context.Context, name string) error {
	out, err := a.run(ctx, playPlaylistScript(name))
	if err != nil {
		return err
	}
	return checkMarkers(out)
}

func (a *Adapter) PlayAlbum(ctx context.Context, name string) error {
	out, err := a.run(ctx, playAlbumScript(name))
	if err != nil {
		return err
	}
	return checkMarkers(out)
}

func (a *Adapter) PlayArtist(ctx context.Context, name string) error {
	out, err := a.run(ctx, playArtistScript(name))
	if err != nil {
		return err
	}
	return checkMarkers(out)
}

// PlayAlbumTrack plays one named track from a named album.
func (a *Adapter) PlayAlbumTrack(ctx context.Context, album, track string) error {
	out, err := a.run(ctx, playAlbumTrackScript(album, track))
	if err != nil {
		return err
	}
	return checkMarkers(out)
}

func (a *Adapter) PlayTrack(ctx context.Context, persistentID string) error {
	out, err := a.run(ctx, playTrackScript(persistentID))
	if err != nil {
		return err
	}
	return checkMarkers(out)
}

// AirPlay device control. id is the wire identifier from the roster.

func (a *Adapter) SetDeviceActive(ctx context.Context, id string, active bool) error {
	name, err := a.deviceName(ctx, id)
	if err != nil {
		return err
	}
	out, err := a.run(ctx, setDeviceActiveScript(name, active))
	if err != nil {
		return err
	}
	return checkMarkers(out)
}

func (a *Adapter) SetDeviceVolume(ctx context.Context, id string, volume int) error {
	name, err := a.deviceName(ctx, id)
	if err != nil {
		return err
	}
	out, err := a.run(ctx, setDeviceVolumeScript(name, volume))
	if err != nil {
		return err
	}
	return checkMarkers(out)
}

func (a *Adapter) deviceName(ctx context.Context, id string) (string, error) {
	snap, err := a.QuerySnapshot(ctx)
	if err != nil {
		return "", err
	}
	for _, d := range snap.Devices {
		if d.ID == id {
			return d.Name, nil
		}
	}
	return "", ErrNotFound
}

// Artwork queries. The script writes raw image bytes to a temp file
// because binary data cannot cross the osascript stdout boundary.

func (a *Adapter) artworkViaFile(ctx context.Context, build func(dest string) string) ([]byte, error) {
	tmp, err := os.CreateTemp("", "cortlandcast_art_*.bin")
	if err != nil {
		return nil, fmt.Errorf("create artwork temp file: %w", err)
	}
	path := tmp.Name()
	tmp.Close()
	defer os.Remove(path)

	out, err := a.run(ctx, build(path))
	if err != nil {
		return nil, err
	}
	if err := checkMarkers(out); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read artwork temp file: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrNoArtwork
	}
	return data, nil
}

// CurrentTrackArt returns the embedded artwork of the current track.
func (a *Adapter) CurrentTrackArt(ctx context.Context) ([]byte, error) {
	return a.artworkViaFile(ctx, currentTrackArtworkScript)
}

// AlbumArt returns the first embedded artwork found among the album's tracks.
func (a *Adapter) AlbumArt(ctx context.Context, album string) ([]byte, error) {
	return a.artworkViaFile(ctx, func(dest string) string {
		return albumArtworkScript(album, dest)
	})
}

// PlaylistArt returns a playlist's own embedded artwork, which most
// playlists do not have.
func (a *Adapter) PlaylistArt(ctx context.Context, playlist string) ([]byte, error) {
	return a.artworkViaFile(ctx, func(dest string) string {
		return playlistArtworkScript(playlist, dest)
	})
}

// TrackArt returns the embedded artwork of a track by persistent ID.
func (a *Adapter) TrackArt(ctx context.Context, persistentID string) ([]byte, error) {
	return a.artworkViaFile(ctx, func(dest string) string {
		return trackArtworkScript(persistentID, dest)
	})
}

// PlaylistTracksWithArt lists persistent IDs of playlist tracks that
// carry embedded artwork.
func (a *Adapter) PlaylistTracksWithArt(ctx context.Context, playlist string) ([]string, error) {
	out, err := a.run(ctx, playlistTracksWithArtScript(playlist))
	if err != nil {
		return nil, err
	}
	if err := checkMarkers(out); err != nil {
		return nil, err
	}
	var ids []string
	for _, line := range strings.Split(out, "\n") {
		if id := strings.TrimSpace(line); id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// Library browse queries.

func (a *Adapter) AlbumNames(ctx context.Context) ([]string, error) {
	out, err := a.run(ctx, albumNamesScript())
	if err != nil {
		return nil, err
	}
	return dedupeLines(out), nil
}

func (a *Adapter) ArtistNames(ctx context.Context) ([]string, error) {
	out, err := a.run(ctx, artistNamesScript())
	if err != nil {
		return nil, err
	}
	return dedupeLines(out), nil
}

func (a *Adapter) PlaylistNames(ctx context.Context) ([]string, error) {
	out, err := a.run(ctx, playlistNamesScript())
	if err != nil {
		return nil, err
	}
	return dedupeLines(out), nil
}

// AlbumTracks lists the tracks of a named album.
func (a *Adapter) AlbumTracks(ctx context.Context, album string) ([]model.Track, error) {
	out, err := a.run(ctx, albumTracksScript(album))
	if err != nil {
		return nil, err
	}
	if err := checkMarkers(out); err != nil {
		return nil, err
	}
	return parseTrackLines(out, ""), nil
}

// ArtistAlbums lists the distinct album names for an artist.
func (a *Adapter) ArtistAlbums(ctx context.Context, artist string) ([]string, error) {
	out, err := a.run(ctx, artistAlbumsScript(artist))
	if err != nil {
		return nil, err
	}
	if err := checkMarkers(out); err != nil {
		return nil, err
	}
	return dedupeLines(out), nil
}

// PlaylistTracks lists playlist tracks, capped at the adapter's track
// limit; the result notes the full count and whether it was truncated.
func (a *Adapter) PlaylistTracks(ctx context.Context, playlist string) (*model.TrackList, error) {
	out, err := a.run(ctx, playlistTracksScript(playlist, a.trackLimit))
	if err != nil {
		return nil, err
	}
	if err := checkMarkers(out); err != nil {
		return nil, err
	}

	lines := strings.SplitN(out, "\n", 2)
	total := parseInt(lines[0])
	var body string
	if len(lines) > 1 {
		body = lines[1]
	}
	tracks := parseTrackLines(body, "")
	return &model.TrackList{
		Tracks:    tracks,
		Total:     total,
		Truncated: total > len(tracks),
	}, nil
}

// LibraryTracks lists every library track with name, artist and album,
// used by the search endpoint.
func (a *Adapter) LibraryTracks(ctx context.Context) ([]model.Track, error) {
	out, err := a.run(ctx, libraryTracksScript())
	if err != nil {
		return nil, err
	}
	var tracks []model.Track
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Split(strings.TrimRight(line, "\r"), "\t")
		if len(fields) != 4 || strings.TrimSpace(fields[1]) == "" {
			continue
		}
		tracks = append(tracks, model.Track{
			ID:     strings.TrimSpace(fields[0]),
			Name:   strings.TrimSpace(fields[1]),
			Artist: strings.TrimSpace(fields[2]),
			Album:  strings.TrimSpace(fields[3]),
		})
	}
	return tracks, nil
}

func parseTrackLines(out, album string) []model.Track {
	var tracks []model.Track
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Split(strings.TrimRight(line, "\r"), "\t")
		if len(fields) != 4 || strings.TrimSpace(fields[1]) == "" {
			continue
		}
		tracks = append(tracks, model.Track{
			ID:       strings.TrimSpace(fields[0]),
			Name:     strings.TrimSpace(fields[1]),
			Artist:   strings.TrimSpace(fields[2]),
			Album:    album,
			Duration: parseFloat(fields[3]),
		})
	}
	return tracks
}

func dedupeLines(out string) []string {
	seen := make(map[string]bool)
	var names []string
	for _, line := range strings.Split(out, "\n") {
		name := strings.TrimSpace(strings.TrimRight(line, "\r"))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}
