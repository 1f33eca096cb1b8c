// Package media provides ports.MediaElement implementations: decoded audio
// files and URLs, and a synthetic element for running without audio files.
package media

import (
	"sync"
	"time"

	"github.com/tejashwikalptaru/govis/internal/animation"
	"github.com/tejashwikalptaru/govis/internal/domain"
)

// transport tracks the playback state and position of an element against a
// clock. Position advances with wall time while playing and is clamped at
// the duration, where the element stops.
type transport struct {
	mu       sync.Mutex
	clock    animation.Clock
	duration time.Duration

	state      domain.PlaybackState
	offset     time.Duration // position when the clock anchor was taken
	anchoredAt time.Time
}

func newTransport(clock animation.Clock, duration time.Duration) *transport {
	if clock == nil {
		clock = animation.SystemClock()
	}
	return &transport{
		clock:    clock,
		duration: duration,
		state:    domain.StateStopped,
	}
}

func (t *transport) play() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.refreshLocked()
	if t.state == domain.StatePlaying {
		return
	}
	if t.state == domain.StateStopped && t.offset >= t.duration {
		t.offset = 0
	}
	t.anchoredAt = t.clock.Now()
	t.state = domain.StatePlaying
}

func (t *transport) pause() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.refreshLocked()
	if t.state != domain.StatePlaying {
		return
	}
	t.offset = t.positionLocked()
	t.state = domain.StatePaused
}

func (t *transport) stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = domain.StateStopped
	t.offset = 0
}

func (t *transport) seek(pos time.Duration) error {
	if pos < 0 || pos > t.duration {
		return domain.NewValidationError("position", pos, "must be within the track")
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.offset = pos
	t.anchoredAt = t.clock.Now()
	return nil
}

func (t *transport) current() (domain.PlaybackState, time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.refreshLocked()
	return t.state, t.positionLocked()
}

func (t *transport) positionLocked() time.Duration {
	pos := t.offset
	if t.state == domain.StatePlaying {
		pos += t.clock.Now().Sub(t.anchoredAt)
	}
	return min(pos, t.duration)
}

// refreshLocked stops a playing transport that ran past the end.
func (t *transport) refreshLocked() {
	if t.state != domain.StatePlaying {
		return
	}
	if t.clock.Now().Sub(t.anchoredAt)+t.offset >= t.duration {
		t.offset = t.duration
		t.state = domain.StateStopped
	}
}
