// Package domain contains core models and logic with no external dependencies.
// This package defines the fundamental entities of the govis visualizer.
package domain

import (
	"time"
)

// FrequencySnapshot is one frame of per-bin magnitudes in [0,255].
// The signal source owns the backing array and overwrites it on every poll,
// so receivers must treat it as read-only and copy it if they keep it.
type FrequencySnapshot []uint8

// Clone returns a copy that is safe to retain across polls.
func (s FrequencySnapshot) Clone() FrequencySnapshot {
	if s == nil {
		return nil
	}
	out := make(FrequencySnapshot, len(s))
	copy(out, s)
	return out
}

// Empty reports whether the snapshot carries no data.
func (s FrequencySnapshot) Empty() bool {
	return len(s) == 0
}

// PlaybackState represents the state of the bound media element.
type PlaybackState int

const (
	// StateStopped indicates nothing is playing and the position is reset.
	StateStopped PlaybackState = iota

	// StatePlaying indicates playback is active
	StatePlaying

	// StatePaused indicates playback is paused at the current position
	StatePaused
)

// String returns a human-readable representation of the playback state.
func (s PlaybackState) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// Track describes a media resource that can be bound to the signal source.
type Track struct {
	// URI is a local file path or an http(s) URL
	URI string

	// Title is the song title (from metadata or the URI)
	Title string

	// Artist is the performing artist name
	Artist string

	// Album is the album name
	Album string

	// Duration is the total length of the track
	Duration time.Duration

	// Cover is the embedded album artwork as raw image bytes (may be nil)
	Cover []byte
}

// DisplayName returns the label shown for the track.
func (t Track) DisplayName() string {
	if t.Artist != "" && t.Title != "" {
		return t.Artist + " - " + t.Title
	}
	if t.Title != "" {
		return t.Title
	}
	return t.URI
}

// TimedLine is one line of a timed lyric script.
type TimedLine struct {
	Start       time.Duration
	End         time.Duration
	Text        string
	Translation string
}

// Contains reports whether t lies within [Start, End].
func (l TimedLine) Contains(t time.Duration) bool {
	return t >= l.Start && t <= l.End
}

// Length returns End - Start.
func (l TimedLine) Length() time.Duration {
	return l.End - l.Start
}

// Script is an ordered sequence of timed lines.
// Lines are expected to be sorted and non-overlapping but this is not enforced.
type Script []TimedLine

// Viewport describes the drawing surface a renderer is mounted on.
type Viewport struct {
	Width  float64
	Height float64

	// Cover is the encoded image shown in the rotating center disc (optional)
	Cover []byte
}

// Center returns the center point of the viewport.
func (v Viewport) Center() (float64, float64) {
	return v.Width / 2, v.Height / 2
}

// MinDim returns the smaller of width and height.
func (v Viewport) MinDim() float64 {
	if v.Width < v.Height {
		return v.Width
	}
	return v.Height
}
