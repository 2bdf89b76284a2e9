package state

import (
	"context"
	"fmt"
	"hash/fnv"
	"sort"
	"strconv"
	"time"

	"cortlandcast/logger"
	"cortlandcast/metrics"
	"cortlandcast/model"
)

// Snapshotter is the slice of the player adapter the poller needs.
type Snapshotter interface {
	QuerySnapshot(ctx context.Context) (*model.Snapshot, error)
}

// Poller samples the player on a fixed cadence, diffs each snapshot
// against the tracker, and broadcasts one event per changed key.
type Poller struct {
	adapter  Snapshotter
	tracker  *Tracker
	hub      *Hub
	interval time.Duration
}

// NewPoller creates a poller. interval defaults to 500ms when zero.
func NewPoller(adapter Snapshotter, tracker *Tracker, hub *Hub, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	return &Poller{
		adapter:  adapter,
		tracker:  tracker,
		hub:      hub,
		interval: interval,
	}
}

// Run drives the poll loop until ctx is cancelled. It must be run in
// its own goroutine; no error ever terminates the loop.
func (p *Poller) Run(ctx context.Context) {
	logger.Info("state poller started", logger.Duration("interval", p.interval))
	defer logger.Info("state poller stopped")

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.pollOnce(ctx)
		}
	}
}

// pollOnce performs a single tick. A failed snapshot query skips the
// tick: the player being unreachable is a normal condition, not an
// error to surface.
func (p *Poller) pollOnce(ctx context.Context) {
	metrics.PollTicks.Inc()

	snap, err := p.adapter.QuerySnapshot(ctx)
	if err != nil {
		metrics.PollFailures.Inc()
		logger.Debug("poll tick skipped", logger.ErrorField(err))
		return
	}

	for _, ev := range p.diff(snap) {
		metrics.EventsEmitted.WithLabelValues(string(ev.Type)).Inc()
		p.hub.Broadcast(ev)
	}
}

// diff compares the snapshot against the tracker and returns events for
// every changed key, in a fixed key order.
func (p *Poller) diff(snap *model.Snapshot) []*model.Event {
	var events []*model.Event

	if p.tracker.HasChanged(model.KeyNowPlaying, snap.TrackIdentity()) {
		events = append(events, &model.Event{
			Type: model.KeyNowPlaying,
			Data: model.NowPlayingFromSnapshot(snap),
		})
	}
	if p.tracker.HasChanged(model.KeyPlaybackState, string(snap.State)) {
		events = append(events, &model.Event{
			Type: model.KeyPlaybackState,
			Data: model.PlaybackStateData{State: snap.State},
		})
	}
	if p.tracker.HasChanged(model.KeyVolume, strconv.Itoa(snap.Volume)) {
		events = append(events, &model.Event{
			Type: model.KeyVolume,
			Data: model.VolumeData{Volume: snap.Volume},
		})
	}
	if p.tracker.HasChanged(model.KeyPosition, strconv.FormatFloat(snap.Position, 'f', -1, 64)) {
		events = append(events, &model.Event{
			Type: model.KeyPosition,
			Data: model.PositionData{Position: snap.Position},
		})
	}
	if p.tracker.HasChanged(model.KeyShuffle, strconv.FormatBool(snap.Shuffle)) {
		events = append(events, &model.Event{
			Type: model.KeyShuffle,
			Data: model.ShuffleData{Enabled: snap.Shuffle},
		})
	}
	if p.tracker.HasChanged(model.KeyRepeat, snap.Repeat) {
		events = append(events, &model.Event{
			Type: model.KeyRepeat,
			Data: model.RepeatData{Mode: snap.Repeat},
		})
	}
	if p.tracker.HasChanged(model.KeyDevices, rosterHash(snap.Devices)) {
		events = append(events, &model.Event{
			Type: model.KeyDevices,
			Data: model.DevicesData{Devices: snap.Devices},
		})
	}

	return events
}

// rosterHash returns a stable hash over (id, active, volume) tuples
// sorted by id, so reordering the roster without an actual change
// never looks like one.
func rosterHash(devices []model.AirPlayDevice) string {
	sorted := make([]model.AirPlayDevice, len(devices))
	copy(sorted, devices)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	h := fnv.New64a()
	for _, d := range sorted {
		fmt.Fprintf(h, "%s|%t|%d;", d.ID, d.Active, d.Volume)
	}
	return strconv.FormatUint(h.Sum64(), 16)
}
