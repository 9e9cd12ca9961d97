package state

import "sync/atomic"

// Counters are lock-free event counters exposed by /api/counters.
type Counters struct {
	FramesReceived   atomic.Uint64
	FramesDropped    atomic.Uint64
	SnapshotsApplied atomic.Uint64
	EventsApplied    atomic.Uint64
	UnknownTags      atomic.Uint64
	TradesOpened     atomic.Uint64
	TradesClosed     atomic.Uint64
	Reconnects       atomic.Uint64
}

// CountersSnapshot is the JSON projection of Counters.
type CountersSnapshot struct {
	FramesReceived   uint64 `json:"frames_received"`
	FramesDropped    uint64 `json:"frames_dropped"`
	SnapshotsApplied uint64 `json:"snapshots_applied"`
	EventsApplied    uint64 `json:"events_applied"`
	UnknownTags      uint64 `json:"unknown_tags"`
	TradesOpened     uint64 `json:"trades_opened"`
	TradesClosed     uint64 `json:"trades_closed"`
	Reconnects       uint64 `json:"reconnects"`
}

// Snapshot reads all counters.
func (c *Counters) Snapshot() CountersSnapshot {
	return CountersSnapshot{
		FramesReceived:   c.FramesReceived.Load(),
		FramesDropped:    c.FramesDropped.Load(),
		SnapshotsApplied: c.SnapshotsApplied.Load(),
		EventsApplied:    c.EventsApplied.Load(),
		UnknownTags:      c.UnknownTags.Load(),
		TradesOpened:     c.TradesOpened.Load(),
		TradesClosed:     c.TradesClosed.Load(),
		Reconnects:       c.Reconnects.Load(),
	}
}
