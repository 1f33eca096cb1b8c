package service

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/tejashwikalptaru/govis/internal/domain"
	"github.com/tejashwikalptaru/govis/internal/loop"
	"github.com/tejashwikalptaru/govis/internal/lyrics"
	"github.com/tejashwikalptaru/govis/internal/ports"
	"github.com/tejashwikalptaru/govis/internal/visualizer"
)

// VisualizerService connects playback events to the visual core: it keeps
// the active renderers mounted on the current viewport, feeds them from the
// render loop, and drives the lyric synchronizer.
//
// The render loop follows playback: it runs while playing and is idle
// otherwise.
//
// Renderers stack in the order they were selected; the first is drawn at the
// bottom.
//
// Thread-safety: All operations are thread-safe.
type VisualizerService struct {
	// Dependencies (injected)
	logger *slog.Logger
	bus    ports.EventBus
	driver *loop.Driver
	lyrics *lyrics.Synchronizer
	deps   visualizer.Deps

	mu       sync.Mutex
	viewport domain.Viewport
	active   []visualizer.Renderer
	playing  bool
	started  bool
	subs     []domain.SubscriptionID
	sink     loop.SinkID
}

// NewVisualizerService creates the service. Nothing happens until Start.
func NewVisualizerService(
	logger *slog.Logger,
	bus ports.EventBus,
	driver *loop.Driver,
	synchronizer *lyrics.Synchronizer,
	deps visualizer.Deps,
) *VisualizerService {
	if deps.Logger == nil {
		deps.Logger = logger
	}
	return &VisualizerService{
		logger: logger.With("component", "visualizer_service"),
		bus:    bus,
		driver: driver,
		lyrics: synchronizer,
		deps:   deps,
	}
}

// Start registers with the render loop and subscribes to playback events.
// The loop itself starts on the next Playing transition.
func (s *VisualizerService) Start() {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.sink = s.driver.Register(loop.SinkFunc(s.onFrame))
	s.mu.Unlock()

	subs := []domain.SubscriptionID{
		s.bus.Subscribe(domain.EventTrackLoaded, s.handleTrackLoaded),
		s.bus.Subscribe(domain.EventPlaybackStateChanged, s.handleStateChanged),
		s.bus.Subscribe(domain.EventTimeUpdate, s.handleTimeUpdate),
		s.bus.Subscribe(domain.EventScriptReplaced, s.handleScriptReplaced),
	}

	s.mu.Lock()
	s.subs = subs
	s.mu.Unlock()

	s.logger.Debug("visualizer service started")
}

// SetVisualizers replaces the active renderers. The list is validated
// first; on error nothing changes.
func (s *VisualizerService) SetVisualizers(types []visualizer.Type) error {
	renderers := make([]visualizer.Renderer, 0, len(types))
	for _, t := range types {
		r, err := visualizer.Factory(t, s.deps)
		if err != nil {
			return domain.NewServiceError("VisualizerService", "SetVisualizers", "cannot create renderer", err)
		}
		renderers = append(renderers, r)
	}

	s.mu.Lock()
	old := s.active
	s.active = renderers
	for _, r := range old {
		r.Unmount()
	}
	if s.viewportReadyLocked() {
		for _, r := range renderers {
			s.mountLocked(r)
		}
	}
	s.mu.Unlock()

	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	s.logger.Info("visualizers changed", "types", names)
	s.bus.Publish(domain.NewVisualizerChangedEvent(names))
	return nil
}

// Visualizers returns the active types in stacking order.
func (s *VisualizerService) Visualizers() []visualizer.Type {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]visualizer.Type, len(s.active))
	for i, r := range s.active {
		out[i] = r.Type()
	}
	return out
}

// Renderers returns the active renderers in stacking order.
func (s *VisualizerService) Renderers() []visualizer.Renderer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.active)
}

// Resize remounts every renderer on a viewport of the given size, keeping
// the current cover.
func (s *VisualizerService) Resize(width, height float64) error {
	if width <= 0 || height <= 0 {
		return domain.NewValidationError("viewport", fmt.Sprintf("%gx%g", width, height), "must have a positive size")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.viewport.Width == width && s.viewport.Height == height {
		return nil
	}
	s.viewport.Width = width
	s.viewport.Height = height
	s.remountLocked()
	return nil
}

// Viewport returns the current viewport.
func (s *VisualizerService) Viewport() domain.Viewport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewport
}

// Playing reports the last playing state seen.
func (s *VisualizerService) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

// Shutdown stops the render loop, unsubscribes and unmounts everything.
func (s *VisualizerService) Shutdown() {
	s.mu.Lock()
	subs := s.subs
	s.subs = nil
	started := s.started
	s.started = false
	s.mu.Unlock()

	s.driver.Stop()

	s.mu.Lock()
	if started {
		s.driver.Unregister(s.sink)
	}
	for _, r := range s.active {
		r.Unmount()
	}
	s.mu.Unlock()

	for _, id := range subs {
		s.bus.Unsubscribe(id)
	}
	s.logger.Debug("visualizer service shut down")
}

// onFrame runs on the render loop for every snapshot.
func (s *VisualizerService) onFrame(snapshot domain.FrequencySnapshot) {
	s.mu.Lock()
	renderers := s.active
	s.mu.Unlock()

	for _, r := range renderers {
		r.OnData(snapshot)
	}
	s.lyrics.Refresh()
}

func (s *VisualizerService) handleTrackLoaded(event domain.Event) {
	e := event.(domain.TrackLoadedEvent)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.viewport.Cover = e.Track.Cover
	s.remountLocked()
}

func (s *VisualizerService) handleStateChanged(event domain.Event) {
	playing := event.(domain.PlaybackStateChangedEvent).Playing()

	s.mu.Lock()
	if s.playing == playing || !s.started {
		s.mu.Unlock()
		return
	}
	s.playing = playing
	s.mu.Unlock()

	if !playing {
		s.driver.Stop()
	}

	s.mu.Lock()
	for _, r := range s.active {
		r.OnPlayingChange(playing)
	}
	s.mu.Unlock()
	s.lyrics.OnPlayingChange(playing)

	if playing {
		s.driver.Start()
	} else {
		s.lyrics.Refresh()
	}
}

func (s *VisualizerService) handleTimeUpdate(event domain.Event) {
	s.lyrics.OnTimeUpdate(event.(domain.TimeUpdateEvent).Position)
}

func (s *VisualizerService) handleScriptReplaced(event domain.Event) {
	s.lyrics.OnScriptReplaced(event.(domain.ScriptReplacedEvent).Script)
}

func (s *VisualizerService) viewportReadyLocked() bool {
	return s.viewport.Width > 0 && s.viewport.Height > 0
}

func (s *VisualizerService) remountLocked() {
	if !s.viewportReadyLocked() {
		return
	}
	for _, r := range s.active {
		r.Unmount()
		s.mountLocked(r)
	}
}

func (s *VisualizerService) mountLocked(r visualizer.Renderer) {
	r.OnPlayingChange(s.playing)
	if err := r.Mount(s.viewport); err != nil {
		s.logger.Error("failed to mount renderer", "type", r.Type(), "error", err)
	}
}
