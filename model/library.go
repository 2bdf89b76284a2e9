package model

// Track is one library track as returned by browse and search queries.
type Track struct {
	ID       string  `json:"id,omitempty"`
	Name     string  `json:"name"`
	Artist   string  `json:"artist,omitempty"`
	Album    string  `json:"album,omitempty"`
	Duration float64 `json:"duration,omitempty"`
}

// TrackList is a browse response that may be capped server-side.
type TrackList struct {
	Tracks    []Track `json:"tracks"`
	Total     int     `json:"total"`
	Truncated bool    `json:"truncated"`
}
