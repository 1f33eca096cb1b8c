// Package service orchestrates playback and visualization for govis.
package service

import (
	"errors"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/tejashwikalptaru/govis/internal/domain"
	"github.com/tejashwikalptaru/govis/internal/lyrics"
	"github.com/tejashwikalptaru/govis/internal/ports"
)

// DefaultUpdateInterval is how often time updates are published while playing.
const DefaultUpdateInterval = 250 * time.Millisecond

// Binder is the part of the signal source playback needs.
type Binder interface {
	Bind(el ports.MediaElement) error
	SetGain(v float64) error
}

// PlaybackService owns the loaded media element and publishes its
// notifications on the bus: loads, state changes, time updates and lyric
// scripts.
//
// Thread-safety: All operations are thread-safe. Events are published after
// the service lock is released, so handlers may call back into the service.
type PlaybackService struct {
	// Dependencies (injected)
	logger *slog.Logger
	loader ports.MediaLoader
	source Binder
	bus    ports.EventBus

	// State
	mu          sync.RWMutex
	element     ports.MediaElement
	lastState   domain.PlaybackState
	volume      float64
	savedVolume float64 // volume before mute
	isMuted     bool
	isLooping   bool

	// Update routine
	updateInterval time.Duration
	stopUpdate     chan struct{}
	updateWg       sync.WaitGroup
	shutdownOnce   sync.Once
}

// PlaybackOption configures a PlaybackService.
type PlaybackOption func(*PlaybackService)

// WithUpdateInterval sets the time update period.
func WithUpdateInterval(d time.Duration) PlaybackOption {
	return func(s *PlaybackService) {
		if d > 0 {
			s.updateInterval = d
		}
	}
}

// NewPlaybackService creates the service and starts its update routine.
func NewPlaybackService(
	logger *slog.Logger,
	loader ports.MediaLoader,
	source Binder,
	bus ports.EventBus,
	opts ...PlaybackOption,
) *PlaybackService {
	s := &PlaybackService{
		logger:         logger.With("component", "playback"),
		loader:         loader,
		source:         source,
		bus:            bus,
		volume:         1.0,
		updateInterval: DefaultUpdateInterval,
		stopUpdate:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.updateWg.Add(1)
	go s.updateRoutine()

	s.logger.Debug("playback service initialized", "update_interval", s.updateInterval)
	return s
}

// LoadTrack opens uri and binds it to the signal source, replacing the
// current track. The new track starts stopped.
func (s *PlaybackService) LoadTrack(uri string) (domain.Track, error) {
	s.logger.Debug("loading track", "uri", uri)

	el, err := s.loader.Open(uri)
	if err != nil {
		s.logger.Warn("failed to open track", "uri", uri, "error", err)
		s.bus.Publish(domain.NewTrackErrorEvent(uri, err))
		return domain.Track{}, domain.NewServiceError("PlaybackService", "LoadTrack", "failed to open media", err)
	}

	if err := s.source.Bind(el); err != nil {
		_ = el.Close()
		s.bus.Publish(domain.NewTrackErrorEvent(uri, err))
		return domain.Track{}, domain.NewServiceError("PlaybackService", "LoadTrack", "failed to bind media", err)
	}

	s.mu.Lock()
	old := s.element
	previous := s.lastState
	s.element = el
	s.lastState = domain.StateStopped
	gain := s.effectiveVolumeLocked()
	s.mu.Unlock()

	if old != nil {
		_ = old.Stop()
		if err := old.Close(); err != nil {
			s.logger.Warn("failed to close previous track", "error", err)
		}
	}
	if err := s.source.SetGain(gain); err != nil {
		s.logger.Warn("failed to apply volume", "error", err)
	}

	track := el.Track()
	s.logger.Info("track loaded", "uri", uri, "title", track.DisplayName(), "duration", track.Duration)

	if previous != domain.StateStopped {
		s.bus.Publish(domain.NewPlaybackStateChangedEvent(domain.StateStopped, previous))
	}
	s.bus.Publish(domain.NewTrackLoadedEvent(track))
	s.bus.Publish(domain.NewTimeUpdateEvent(0, track.Duration))

	return track, nil
}

// Play starts or resumes the current track.
func (s *PlaybackService) Play() error {
	return s.control("Play", func(el ports.MediaElement) error { return el.Play() })
}

// Pause pauses the current track.
func (s *PlaybackService) Pause() error {
	return s.control("Pause", func(el ports.MediaElement) error { return el.Pause() })
}

// TogglePlayPause pauses while playing and plays otherwise.
func (s *PlaybackService) TogglePlayPause() error {
	if s.State() == domain.StatePlaying {
		return s.Pause()
	}
	return s.Play()
}

// Stop stops the current track and rewinds it.
func (s *PlaybackService) Stop() error {
	return s.control("Stop", func(el ports.MediaElement) error { return el.Stop() })
}

// Seek moves the playback position and publishes a time update.
func (s *PlaybackService) Seek(position time.Duration) error {
	return s.control("Seek", func(el ports.MediaElement) error { return el.Seek(position) })
}

// control runs op on the element, then publishes the resulting state change
// (if any) and a time update.
func (s *PlaybackService) control(name string, op func(ports.MediaElement) error) error {
	s.mu.RLock()
	el := s.element
	s.mu.RUnlock()

	if el == nil {
		return domain.ErrNoTrackLoaded
	}
	if err := op(el); err != nil {
		return domain.NewServiceError("PlaybackService", name, "media operation failed", err)
	}

	s.publishState(el)
	s.bus.Publish(domain.NewTimeUpdateEvent(el.CurrentTime(), el.Duration()))
	return nil
}

// publishState publishes a state change event if el's state moved since
// the last one published.
func (s *PlaybackService) publishState(el ports.MediaElement) domain.PlaybackState {
	state := el.State()

	s.mu.Lock()
	if s.element != el || s.lastState == state {
		s.mu.Unlock()
		return state
	}
	previous := s.lastState
	s.lastState = state
	s.mu.Unlock()

	s.logger.Debug("playback state changed", "state", state, "previous", previous)
	s.bus.Publish(domain.NewPlaybackStateChangedEvent(state, previous))
	return state
}

// SetVolume sets the output gain (0.0 to 1.0). Analysis is unaffected.
func (s *PlaybackService) SetVolume(volume float64) error {
	if volume < 0 || volume > 1 {
		return domain.NewValidationError("volume", volume, "must be between 0.0 and 1.0")
	}

	s.mu.Lock()
	s.volume = volume
	if s.isMuted {
		s.savedVolume = volume
	}
	gain := s.effectiveVolumeLocked()
	s.mu.Unlock()

	if err := s.source.SetGain(gain); err != nil {
		return err
	}
	s.bus.Publish(domain.NewVolumeChangedEvent(volume))
	return nil
}

// Volume returns the volume setting (not affected by mute).
func (s *PlaybackService) Volume() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.volume
}

// Mute silences the output without changing the volume setting.
func (s *PlaybackService) Mute(mute bool) error {
	s.mu.Lock()
	if s.isMuted == mute {
		s.mu.Unlock()
		return nil
	}
	s.isMuted = mute
	if mute {
		s.savedVolume = s.volume
	}
	gain := s.effectiveVolumeLocked()
	s.mu.Unlock()

	return s.source.SetGain(gain)
}

// IsMuted reports whether output is muted.
func (s *PlaybackService) IsMuted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isMuted
}

func (s *PlaybackService) effectiveVolumeLocked() float64 {
	if s.isMuted {
		return 0
	}
	return s.volume
}

// SetLoop makes the track restart when it ends.
func (s *PlaybackService) SetLoop(loop bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isLooping = loop
}

// IsLooping reports whether loop mode is on.
func (s *PlaybackService) IsLooping() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isLooping
}

// Track returns the loaded track, if any.
func (s *PlaybackService) Track() (domain.Track, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.element == nil {
		return domain.Track{}, false
	}
	return s.element.Track(), true
}

// State returns the playback state of the loaded track.
func (s *PlaybackService) State() domain.PlaybackState {
	s.mu.RLock()
	el := s.element
	s.mu.RUnlock()
	if el == nil {
		return domain.StateStopped
	}
	return el.State()
}

// Position returns the position and duration of the loaded track.
func (s *PlaybackService) Position() (time.Duration, time.Duration) {
	s.mu.RLock()
	el := s.element
	s.mu.RUnlock()
	if el == nil {
		return 0, 0
	}
	return el.CurrentTime(), el.Duration()
}

// LoadLyrics parses the LRC file at path and publishes it as the new script.
// Content that cannot be parsed gives an empty script; only I/O errors fail.
func (s *PlaybackService) LoadLyrics(path string) (domain.Script, error) {
	script, err := lyrics.ParseFile(path)
	if err != nil {
		s.logger.Warn("failed to load lyrics", "path", path, "error", err)
		return nil, domain.NewServiceError("PlaybackService", "LoadLyrics", "failed to read lyrics", err)
	}

	s.logger.Info("lyrics loaded", "path", path, "lines", len(script))
	s.SetScript(script, filepath.Base(path))
	return script, nil
}

// SetScript publishes script as the new lyric script.
func (s *PlaybackService) SetScript(script domain.Script, source string) {
	s.bus.Publish(domain.NewScriptReplacedEvent(script, source))
}

// Shutdown stops the update routine and releases the loaded track.
func (s *PlaybackService) Shutdown() error {
	var err error
	s.shutdownOnce.Do(func() {
		close(s.stopUpdate)
		s.updateWg.Wait()

		s.mu.Lock()
		el := s.element
		s.element = nil
		s.mu.Unlock()

		if el != nil {
			err = errors.Join(el.Stop(), el.Close())
		}
		s.logger.Debug("playback service shut down")
	})
	return err
}

func (s *PlaybackService) updateRoutine() {
	defer s.updateWg.Done()

	ticker := time.NewTicker(s.updateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopUpdate:
			return
		case <-ticker.C:
			s.publishProgress()
		}
	}
}

// publishProgress publishes a time update while playing and notices when
// the track ends on its own.
func (s *PlaybackService) publishProgress() {
	s.mu.RLock()
	el := s.element
	was := s.lastState
	loop := s.isLooping
	s.mu.RUnlock()

	if el == nil {
		return
	}

	state := s.publishState(el)
	switch {
	case state == domain.StatePlaying:
		s.bus.Publish(domain.NewTimeUpdateEvent(el.CurrentTime(), el.Duration()))

	case was == domain.StatePlaying && state == domain.StateStopped:
		s.bus.Publish(domain.NewTimeUpdateEvent(el.CurrentTime(), el.Duration()))
		s.logger.Debug("track ended", "uri", el.ID(), "loop", loop)
		if loop {
			if err := s.Play(); err != nil {
				s.logger.Warn("failed to restart track", "error", err)
			}
		}
	}
}
