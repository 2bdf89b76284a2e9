package model

import "encoding/json"

// StateKey identifies one tracked piece of player state.
type StateKey string

const (
	KeyPlaybackState StateKey = "playback_state"
	KeyVolume        StateKey = "volume"
	KeyPosition      StateKey = "position"
	KeyShuffle       StateKey = "shuffle"
	KeyRepeat        StateKey = "repeat"
	KeyNowPlaying    StateKey = "now_playing"
	KeyDevices       StateKey = "airplay_devices"
)

// PlaybackState is the transport state reported by the player.
type PlaybackState string

const (
	StatePlaying PlaybackState = "playing"
	StatePaused  PlaybackState = "paused"
	StateStopped PlaybackState = "stopped"
)

// Snapshot is the full player state observed at one poll tick. It is
// produced by the player adapter, diffed, then discarded.
type Snapshot struct {
	State    PlaybackState
	Volume   int
	Position float64
	Shuffle  bool
	Repeat   string // off, one, all
	Title    string
	Artist   string
	Album    string
	Duration float64
	Devices  []AirPlayDevice
}

// TrackIdentity is the composite key used to detect track changes.
// Empty when nothing is playing.
func (s *Snapshot) TrackIdentity() string {
	if s.Title == "" && s.Artist == "" {
		return ""
	}
	return s.Title + "\x00" + s.Artist
}

// Event is the unit broadcast to live subscribers. Data is the typed
// payload for the event's key, already in wire shape.
type Event struct {
	Type StateKey    `json:"type"`
	Data interface{} `json:"data"`
}

// Encode renders the event in the wire framing consumed by clients:
// a single text line `data: {json}`.
func (e *Event) Encode() ([]byte, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	return append([]byte("data: "), payload...), nil
}

// Wire payloads, one fixed shape per event type.

type PlaybackStateData struct {
	State PlaybackState `json:"state"`
}

type VolumeData struct {
	Volume int `json:"volume"`
}

type PositionData struct {
	Position float64 `json:"position"`
}

type ShuffleData struct {
	Enabled bool `json:"enabled"`
}

type RepeatData struct {
	Mode string `json:"mode"`
}

type NowPlayingData struct {
	Title     string        `json:"title"`
	Artist    string        `json:"artist"`
	Album     string        `json:"album"`
	Duration  float64       `json:"duration"`
	Position  float64       `json:"position"`
	Volume    int           `json:"volume"`
	State     PlaybackState `json:"state"`
	IsPlaying bool          `json:"is_playing"`
	Shuffle   bool          `json:"shuffle"`
	Repeat    string        `json:"repeat"`
}

type DevicesData struct {
	Devices []AirPlayDevice `json:"devices"`
}

// NowPlayingFromSnapshot builds the now_playing payload for a snapshot.
func NowPlayingFromSnapshot(s *Snapshot) NowPlayingData {
	return NowPlayingData{
		Title:     s.Title,
		Artist:    s.Artist,
		Album:     s.Album,
		Duration:  s.Duration,
		Position:  s.Position,
		Volume:    s.Volume,
		State:     s.State,
		IsPlaying: s.State == StatePlaying,
		Shuffle:   s.Shuffle,
		Repeat:    s.Repeat,
	}
}
