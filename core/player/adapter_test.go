package player

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeString(t *testing.T) {
	assert.Equal(t, `Talk \"On\" Corners`, escapeString(`Talk "On" Corners`))
	assert.Equal(t, `back\\slash`, escapeString(`back\slash`))
	assert.Equal(t, `plain`, escapeString(`plain`))
}

func TestParseDevices(t *testing.T) {
	lines := []string{
		"Living Room\ttrue\t40",
		"Kitchen HomePod\tfalse\t25",
		"",
		"bad line without tabs",
	}
	devices := parseDevices(lines)
	assert.Len(t, devices, 2)
	assert.Equal(t, "living_room", devices[0].ID)
	assert.Equal(t, "Living Room", devices[0].Name)
	assert.True(t, devices[0].Active)
	assert.Equal(t, 40, devices[0].Volume)
	assert.Equal(t, "kitchen_homepod", devices[1].ID)
	assert.False(t, devices[1].Active)
}

func TestParsePlaybackState(t *testing.T) {
	assert.Equal(t, "playing", string(parsePlaybackState("playing")))
	assert.Equal(t, "playing", string(parsePlaybackState("fast forwarding")))
	assert.Equal(t, "paused", string(parsePlaybackState("paused")))
	assert.Equal(t, "stopped", string(parsePlaybackState("stopped")))
	assert.Equal(t, "stopped", string(parsePlaybackState("garbage")))
}

func TestParseFloatLocale(t *testing.T) {
	assert.InDelta(t, 302.443, parseFloat("302.443"), 0.001)
	assert.InDelta(t, 302.443, parseFloat("302,443"), 0.001)
	assert.Zero(t, parseFloat("not a number"))
}

func TestParseRepeat(t *testing.T) {
	assert.Equal(t, "one", parseRepeat("one"))
	assert.Equal(t, "all", parseRepeat("all"))
	assert.Equal(t, "off", parseRepeat("off"))
	assert.Equal(t, "off", parseRepeat("anything else"))
}

func TestDedupeLines(t *testing.T) {
	names := dedupeLines("Abbey Road\nAbbey Road\n\nRevolver\r\nAbbey Road")
	assert.Equal(t, []string{"Abbey Road", "Revolver"}, names)
}

func TestParseTrackLines(t *testing.T) {
	out := "ABC123\tCome Together\tThe Beatles\t259.7\nDEF456\tSomething\tThe Beatles\t182.1\nshort line"
	tracks := parseTrackLines(out, "Abbey Road")
	assert.Len(t, tracks, 2)
	assert.Equal(t, "Come Together", tracks[0].Name)
	assert.Equal(t, "Abbey Road", tracks[0].Album)
	assert.InDelta(t, 259.7, tracks[0].Duration, 0.01)
}
