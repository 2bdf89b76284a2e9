package model

// AirPlayDevice is one entry in the player's output device roster.
type AirPlayDevice struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
	Volume int    `json:"volume"`
}
