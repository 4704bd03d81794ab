package domain

import (
	"context"

	"github.com/disgoorg/snowflake/v2"
)

// EventKind identifies a class of engine event.
type EventKind int

const (
	EventTrackStart EventKind = iota
	EventTrackEnd
	EventTrackException
	EventTrackStuck
)

// String returns a human-readable representation of the event kind.
func (k EventKind) String() string {
	switch k {
	case EventTrackStart:
		return "track_start"
	case EventTrackEnd:
		return "track_end"
	case EventTrackException:
		return "track_exception"
	case EventTrackStuck:
		return "track_stuck"
	default:
		return "unknown"
	}
}

// TrackEndReason represents why a track ended.
type TrackEndReason string

const (
	// TrackEndFinished means the track finished normally.
	TrackEndFinished TrackEndReason = "finished"
	// TrackEndLoadFailed means the track failed to load.
	TrackEndLoadFailed TrackEndReason = "load_failed"
	// TrackEndStopped means the track was stopped explicitly.
	TrackEndStopped TrackEndReason = "stopped"
	// TrackEndReplaced means the track was replaced by another.
	TrackEndReplaced TrackEndReason = "replaced"
	// TrackEndCleanup means the track was cleaned up.
	TrackEndCleanup TrackEndReason = "cleanup"
)

// ShouldAdvanceQueue returns true if this end reason is a natural completion
// after which the queue moves on by itself.
func (r TrackEndReason) ShouldAdvanceQueue() bool {
	return r == TrackEndFinished || r == TrackEndLoadFailed
}

// TrackEvent is delivered to engine subscribers.
type TrackEvent struct {
	Kind    EventKind
	GuildID snowflake.ID
	Handle  *Handle // nil when the engine cannot attribute the event
	Reason  TrackEndReason
	Message string // exception message or stuck threshold
}

// EventHandler handles an engine event.
type EventHandler func(ctx context.Context, event TrackEvent)
