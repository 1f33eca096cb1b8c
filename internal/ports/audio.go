// Package ports define interfaces for dependency inversion.
// These interfaces allow the visualization core to remain independent of external frameworks.
package ports

import (
	"io"
	"time"

	"github.com/tejashwikalptaru/govis/internal/domain"
)

// MediaElement is a playable, analyzable audio resource.
// This is the Go counterpart of an HTML audio element: the core treats it
// opaquely as "the currently bound media source".
//
// Implementations must be thread-safe: the frame loop reads samples while
// the UI drives playback and the output device pulls audio.
type MediaElement interface {
	// ID returns a stable identifier for the element (usually its URI).
	ID() string

	// Track returns the metadata of the loaded resource.
	Track() domain.Track

	// SampleRate returns the native sample rate of the decoded audio in Hz.
	SampleRate() int

	// Window copies the most recent len(dst) mono samples ending at the
	// current playback position into dst, zero-filling what is unavailable.
	// It returns the number of real samples copied.
	Window(dst []float64) int

	// Play starts or resumes playback.
	Play() error

	// Pause pauses playback, keeping the position.
	Pause() error

	// Stop stops playback and rewinds to the start.
	Stop() error

	// Seek moves the playback position.
	Seek(position time.Duration) error

	// State returns the current playback state. A playing element whose
	// position reaches the duration reports StateStopped.
	State() domain.PlaybackState

	// CurrentTime returns the playback position.
	CurrentTime() time.Duration

	// Duration returns the total length.
	Duration() time.Duration

	// Stream returns a reader producing float32 little-endian mono PCM at the
	// requested sample rate, starting at the current position. It produces
	// silence while the element is not playing.
	Stream(sampleRate int) io.Reader

	// Close releases decoded buffers.
	Close() error
}

// MediaLoader opens media elements from a URI (local path or http(s) URL).
type MediaLoader interface {
	Open(uri string) (MediaElement, error)
}

// AudioOutput is the audible end of the analysis graph.
// Gain applied here never affects analysis data.
type AudioOutput interface {
	// Connect routes a PCM stream to the device, replacing any previous stream.
	Connect(stream io.Reader) error

	// Disconnect detaches the current stream. Disconnecting twice is a no-op.
	Disconnect() error

	// SetVolume sets the output gain (0.0 to 1.0).
	SetVolume(volume float64)

	// SampleRate returns the device sample rate streams must be produced at.
	SampleRate() int

	// Close releases the device.
	Close() error
}
