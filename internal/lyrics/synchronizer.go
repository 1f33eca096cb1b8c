// Package lyrics tracks which timed line is active and drives its reveal sweep.
package lyrics

import (
	"log/slog"
	"sync"
	"time"

	"github.com/tejashwikalptaru/govis/internal/animation"
	"github.com/tejashwikalptaru/govis/internal/domain"
	"github.com/tejashwikalptaru/govis/internal/ports"
)

// NoLine is the cursor value when no line is active.
const NoLine = -1

// Synchronizer follows playback time and shows the matching lyric line.
//
// Time updates arrive a few times per second; the reveal sweep between them
// is a tween that the render loop pushes to the view through Refresh.
//
// Thread-safety: all methods are safe for concurrent use.
type Synchronizer struct {
	view   ports.LyricView
	clock  animation.Clock
	logger *slog.Logger

	mu      sync.Mutex
	script  domain.Script
	active  int
	playing bool
	reveal  *animation.Tween
}

// NewSynchronizer creates a synchronizer with an empty script.
func NewSynchronizer(view ports.LyricView, clock animation.Clock, logger *slog.Logger) *Synchronizer {
	if clock == nil {
		clock = animation.SystemClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Synchronizer{
		view:   view,
		clock:  clock,
		logger: logger.With("component", "lyrics"),
		active: NoLine,
	}
}

// OnTimeUpdate moves the cursor to the line containing t.
// If the active line still contains t nothing happens.
func (s *Synchronizer) OnTimeUpdate(t time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active != NoLine && s.script[s.active].Contains(t) {
		return
	}

	for i, line := range s.script {
		if !line.Contains(t) {
			continue
		}

		startPercent := 0.0
		if length := line.Length(); length > 0 {
			startPercent = float64(t-line.Start) / float64(length) * 100
		}

		s.active = i
		s.view.ShowLine(line)
		s.view.SetReveal(startPercent)

		s.reveal = animation.NewTween(s.clock, line.End-t, animation.WithRange(startPercent, 100))
		if s.playing {
			s.reveal.Start()
		} else {
			s.reveal.StartPaused()
		}

		s.logger.Debug("lyric line active", "index", i, "start_percent", startPercent)
		return
	}

	s.clearLocked()
}

// OnPlayingChange pauses or resumes the reveal. It never restarts it.
func (s *Synchronizer) OnPlayingChange(playing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.playing = playing
	if s.reveal == nil {
		return
	}
	if playing {
		s.reveal.Resume()
	} else {
		s.reveal.Pause()
	}
}

// OnScriptReplaced installs a new script. The display is cleared and stays
// empty until the next time update.
func (s *Synchronizer) OnScriptReplaced(script domain.Script) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.script = script
	s.clearLocked()
	s.logger.Debug("lyric script replaced", "lines", len(script))
}

// Refresh pushes the current reveal percent to the view.
func (s *Synchronizer) Refresh() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == NoLine || s.reveal == nil {
		return
	}
	s.view.SetReveal(s.reveal.Value())
}

// Active returns the active line index, or NoLine.
func (s *Synchronizer) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Reveal returns the current reveal percent (0 when no line is active).
func (s *Synchronizer) Reveal() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == NoLine || s.reveal == nil {
		return 0
	}
	return s.reveal.Value()
}

// Script returns the installed script.
func (s *Synchronizer) Script() domain.Script {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.script
}

func (s *Synchronizer) clearLocked() {
	if s.reveal != nil {
		s.reveal.Stop()
		s.reveal = nil
	}
	s.active = NoLine
	s.view.ClearLine()
}
