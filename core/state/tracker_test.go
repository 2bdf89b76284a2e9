package state

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"cortlandcast/model"
)

func TestTrackerFirstObservationSeedsSilently(t *testing.T) {
	tr := NewTracker()

	assert.False(t, tr.HasChanged(model.KeyVolume, "50"))
	assert.False(t, tr.HasChanged(model.KeyPlaybackState, "playing"))
	assert.False(t, tr.HasChanged(model.KeyRepeat, "off"))

	v, ok := tr.Last(model.KeyVolume)
	assert.True(t, ok)
	assert.Equal(t, "50", v)
}

func TestTrackerEmitsOnlyOnDifference(t *testing.T) {
	tr := NewTracker()

	tr.HasChanged(model.KeyVolume, "50")
	assert.False(t, tr.HasChanged(model.KeyVolume, "50"))
	assert.True(t, tr.HasChanged(model.KeyVolume, "60"))
	assert.False(t, tr.HasChanged(model.KeyVolume, "60"))
	assert.True(t, tr.HasChanged(model.KeyVolume, "50"))
}

func TestTrackerRepeatedValueDoesNotTouchStorage(t *testing.T) {
	tr := NewTracker()

	tr.HasChanged(model.KeyRepeat, "off")
	tr.HasChanged(model.KeyRepeat, "off")
	v, _ := tr.Last(model.KeyRepeat)
	assert.Equal(t, "off", v)

	assert.True(t, tr.HasChanged(model.KeyRepeat, "all"))
	v, _ = tr.Last(model.KeyRepeat)
	assert.Equal(t, "all", v)
}

func TestTrackerNowPlayingEmitsOnFirstNonEmpty(t *testing.T) {
	tr := NewTracker()
	assert.True(t, tr.HasChanged(model.KeyNowPlaying, "Runaway\x00The Corrs"))
	assert.False(t, tr.HasChanged(model.KeyNowPlaying, "Runaway\x00The Corrs"))
}

func TestTrackerNowPlayingEmptyFirstObservationStaysSilent(t *testing.T) {
	tr := NewTracker()
	assert.False(t, tr.HasChanged(model.KeyNowPlaying, ""))
	// Track appears later: that is a change.
	assert.True(t, tr.HasChanged(model.KeyNowPlaying, "Runaway\x00The Corrs"))
}
