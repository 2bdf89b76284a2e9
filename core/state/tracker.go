// Package state implements live state synchronization: a poll loop
// samples the player, a tracker detects deltas, and a hub fans the
// resulting events out to subscribers.
package state

import (
	"sync"

	"cortlandcast/model"
)

// Tracker holds the last observed value for each tracked state key.
// Values are canonical strings; the poller is responsible for
// formatting each key consistently.
type Tracker struct {
	mu     sync.Mutex
	values map[model.StateKey]string
}

// NewTracker creates an empty tracker. Each poller owns its own
// instance; there is no process-wide tracker.
func NewTracker() *Tracker {
	return &Tracker{values: make(map[model.StateKey]string)}
}

// HasChanged reports whether value differs from the stored value for
// key and records it when it does. A repeated identical value never
// touches storage. The first observation of a key seeds storage
// silently, except now_playing: subscribers need an initial event, so
// its first non-empty observation reports a change.
func (t *Tracker) HasChanged(key model.StateKey, value string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	prev, seen := t.values[key]
	if !seen {
		t.values[key] = value
		return key == model.KeyNowPlaying && value != ""
	}
	if prev == value {
		return false
	}
	t.values[key] = value
	return true
}

// Last returns the stored value for key, if any.
func (t *Tracker) Last(key model.StateKey) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, ok := t.values[key]
	return v, ok
}
