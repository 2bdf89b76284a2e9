package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cortlandcast/model"
)

func volumeEvent(v int) *model.Event {
	return &model.Event{Type: model.KeyVolume, Data: model.VolumeData{Volume: v}}
}

func TestHubBroadcastReachesAllSubscribers(t *testing.T) {
	hub := NewHub()
	a := hub.Subscribe()
	b := hub.Subscribe()
	defer hub.Unsubscribe(a)
	defer hub.Unsubscribe(b)

	hub.Broadcast(volumeEvent(42))

	assert.Equal(t, volumeEvent(42), <-a.Send)
	assert.Equal(t, volumeEvent(42), <-b.Send)
}

func TestHubPreservesProductionOrder(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe()
	defer hub.Unsubscribe(sub)

	for i := 0; i < 10; i++ {
		hub.Broadcast(volumeEvent(i))
	}
	for i := 0; i < 10; i++ {
		ev := <-sub.Send
		assert.Equal(t, model.VolumeData{Volume: i}, ev.Data)
	}
}

func TestHubUnsubscribeClosesQueue(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe()
	hub.Unsubscribe(sub)

	_, open := <-sub.Send
	assert.False(t, open)
	assert.Zero(t, hub.Count())

	// Double unsubscribe must be a no-op, not a panic.
	hub.Unsubscribe(sub)
}

func TestHubSlowSubscriberDoesNotBlockOthers(t *testing.T) {
	hub := NewHub()
	slow := hub.Subscribe()

	// Fill the slow subscriber's queue without draining it.
	for i := 0; i < sendBuffer; i++ {
		hub.Broadcast(volumeEvent(i))
	}

	fast := hub.Subscribe()
	defer hub.Unsubscribe(fast)

	// The next broadcast overflows the slow queue: slow is dropped,
	// fast still receives the event.
	hub.Broadcast(volumeEvent(sendBuffer))

	ev := <-fast.Send
	assert.Equal(t, model.VolumeData{Volume: sendBuffer}, ev.Data)
	assert.Equal(t, 1, hub.Count())

	// The slow queue keeps its backlog and is then closed.
	for i := 0; i < sendBuffer; i++ {
		ev, open := <-slow.Send
		require.True(t, open)
		assert.Equal(t, model.VolumeData{Volume: i}, ev.Data)
	}
	_, open := <-slow.Send
	assert.False(t, open)
}

func TestHubReplaysLastNowPlayingOnSubscribe(t *testing.T) {
	hub := NewHub()
	np := &model.Event{Type: model.KeyNowPlaying, Data: model.NowPlayingData{Title: "Runaway"}}
	hub.Broadcast(np)

	sub := hub.Subscribe()
	defer hub.Unsubscribe(sub)

	assert.Equal(t, np, <-sub.Send)
}
