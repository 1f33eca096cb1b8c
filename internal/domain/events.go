// Package domain defines events for the event-driven architecture.
// Events decouple the playback layer from the visualization core and the UI.
package domain

import (
	"time"
)

// Event is the base interface for all events in the system.
// All events must implement this interface to be published via the event bus.
type Event interface {
	// Type returns the event type identifier
	Type() EventType

	// Timestamp returns when the event occurred
	Timestamp() time.Time
}

// EventType is a string identifier for different event types.
type EventType string

// Event type constants define all possible events in the system.
const (
	// Media events
	EventTrackLoaded          EventType = "track.loaded"
	EventTrackError           EventType = "track.error"
	EventPlaybackStateChanged EventType = "playback.state_changed"
	EventTimeUpdate           EventType = "playback.time_update"
	EventVolumeChanged        EventType = "volume.changed"

	// Lyric events
	EventScriptReplaced EventType = "lyrics.script_replaced"

	// Visualizer events
	EventVisualizerChanged EventType = "visualizer.changed"
)

// EventHandler is a function that handles events.
type EventHandler func(event Event)

// SubscriptionID uniquely identifies an event subscription.
type SubscriptionID string

// baseEvent provides common event functionality.
// All concrete events should embed this struct.
type baseEvent struct {
	timestamp time.Time
}

// Timestamp returns when the event occurred.
func (e baseEvent) Timestamp() time.Time {
	return e.timestamp
}

// newBaseEvent creates a new base event with the current timestamp.
func newBaseEvent() baseEvent {
	return baseEvent{timestamp: time.Now()}
}

// TrackLoadedEvent is published when a track is decoded and bound to the signal source.
type TrackLoadedEvent struct {
	baseEvent
	Track Track
}

// Type returns the event type.
func (e TrackLoadedEvent) Type() EventType {
	return EventTrackLoaded
}

// NewTrackLoadedEvent creates a new TrackLoadedEvent.
func NewTrackLoadedEvent(track Track) TrackLoadedEvent {
	return TrackLoadedEvent{
		baseEvent: newBaseEvent(),
		Track:     track,
	}
}

// TrackErrorEvent is published when a track cannot be fetched, decoded or bound.
type TrackErrorEvent struct {
	baseEvent
	URI   string
	Error error
}

// Type returns the event type.
func (e TrackErrorEvent) Type() EventType {
	return EventTrackError
}

// NewTrackErrorEvent creates a new TrackErrorEvent.
func NewTrackErrorEvent(uri string, err error) TrackErrorEvent {
	return TrackErrorEvent{
		baseEvent: newBaseEvent(),
		URI:       uri,
		Error:     err,
	}
}

// PlaybackStateChangedEvent is published on every media state transition.
type PlaybackStateChangedEvent struct {
	baseEvent
	State    PlaybackState
	Previous PlaybackState
}

// Type returns the event type.
func (e PlaybackStateChangedEvent) Type() EventType {
	return EventPlaybackStateChanged
}

// Playing reports whether the new state is StatePlaying.
func (e PlaybackStateChangedEvent) Playing() bool {
	return e.State == StatePlaying
}

// NewPlaybackStateChangedEvent creates a new PlaybackStateChangedEvent.
func NewPlaybackStateChangedEvent(state, previous PlaybackState) PlaybackStateChangedEvent {
	return PlaybackStateChangedEvent{
		baseEvent: newBaseEvent(),
		State:     state,
		Previous:  previous,
	}
}

// TimeUpdateEvent mirrors a media element's timeupdate notification.
type TimeUpdateEvent struct {
	baseEvent
	Position time.Duration
	Duration time.Duration
}

// Type returns the event type.
func (e TimeUpdateEvent) Type() EventType {
	return EventTimeUpdate
}

// NewTimeUpdateEvent creates a new TimeUpdateEvent.
func NewTimeUpdateEvent(position, duration time.Duration) TimeUpdateEvent {
	return TimeUpdateEvent{
		baseEvent: newBaseEvent(),
		Position:  position,
		Duration:  duration,
	}
}

// VolumeChangedEvent is published when the output gain changes.
type VolumeChangedEvent struct {
	baseEvent
	Volume float64
}

// Type returns the event type.
func (e VolumeChangedEvent) Type() EventType {
	return EventVolumeChanged
}

// NewVolumeChangedEvent creates a new VolumeChangedEvent.
func NewVolumeChangedEvent(volume float64) VolumeChangedEvent {
	return VolumeChangedEvent{
		baseEvent: newBaseEvent(),
		Volume:    volume,
	}
}

// ScriptReplacedEvent is published when a new lyric script is loaded (possibly empty).
type ScriptReplacedEvent struct {
	baseEvent
	Script Script
	Source string
}

// Type returns the event type.
func (e ScriptReplacedEvent) Type() EventType {
	return EventScriptReplaced
}

// NewScriptReplacedEvent creates a new ScriptReplacedEvent.
func NewScriptReplacedEvent(script Script, source string) ScriptReplacedEvent {
	return ScriptReplacedEvent{
		baseEvent: newBaseEvent(),
		Script:    script,
		Source:    source,
	}
}

// VisualizerChangedEvent is published when the active visualizer set changes.
type VisualizerChangedEvent struct {
	baseEvent
	Types []string
}

// Type returns the event type.
func (e VisualizerChangedEvent) Type() EventType {
	return EventVisualizerChanged
}

// NewVisualizerChangedEvent creates a new VisualizerChangedEvent.
func NewVisualizerChangedEvent(types []string) VisualizerChangedEvent {
	return VisualizerChangedEvent{
		baseEvent: newBaseEvent(),
		Types:     types,
	}
}
