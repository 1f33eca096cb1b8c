// Package fyne provides Fyne UI adapter implementations.
// This package implements the desktop shell of the visualizer using the Fyne toolkit.
package fyne

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/tejashwikalptaru/govis/internal/adapter/ui/fyne/widgets"
	"github.com/tejashwikalptaru/govis/internal/domain"
	"github.com/tejashwikalptaru/govis/internal/ports"
	"github.com/tejashwikalptaru/govis/internal/service"
	"github.com/tejashwikalptaru/govis/internal/visualizer"
)

// titleWidth is the number of runes of the track title shown at once.
const titleWidth = 40

// UIView defines the interface for UI updates.
// The actual UI implementation (MainWindow) must implement this interface.
// Methods may be called from any goroutine.
type UIView interface {
	// Playback state updates
	SetPlayState(playing bool)
	SetMuteState(muted bool)
	SetLoopState(enabled bool)
	SetVolume(volume float64)

	// Track information updates
	SetTrackInfo(text string)

	// Progress updates
	SetCurrentTime(seconds float64)
	SetTotalTime(seconds float64)
	SetProgress(position, duration float64)

	// Visualizer selection
	SetVisualizers(active []visualizer.Type)

	// RepaintScene draws the visualizer scene once. The render loop only
	// runs while playing; scene changes made while idle need this.
	RepaintScene()

	// Notifications
	ShowNotification(title, message string)
}

// Resumer is the analysis context transition made on the first user
// interaction.
type Resumer interface {
	Resume()
}

// Presenter implements the Presenter pattern (MVP architecture).
// It coordinates between services and the UI, handling all event-driven updates.
//
// Responsibilities:
// - Subscribe to events from the event bus
// - Map domain events to UI updates
// - Translate UI commands to service method calls
// - Persist shell preferences (volume, visualizers, lyric folder)
//
// Thread-safety: All operations are thread-safe via sync.Mutex.
type Presenter struct {
	// Dependencies
	logger *slog.Logger

	// Services (injected)
	playbackService   *service.PlaybackService
	visualizerService *service.VisualizerService
	prefs             ports.PreferencesRepository
	analysis          Resumer

	eventBus ports.EventBus
	view     UIView

	// Presentation state
	mu      sync.Mutex
	title   *widgets.Rotator
	playing bool
	subs    []domain.SubscriptionID

	shutdownOnce sync.Once
}

// NewPresenter creates a new presenter and syncs the view with the current
// service state.
func NewPresenter(
	logger *slog.Logger,
	playbackService *service.PlaybackService,
	visualizerService *service.VisualizerService,
	prefs ports.PreferencesRepository,
	analysis Resumer,
	eventBus ports.EventBus,
	view UIView,
) *Presenter {
	p := &Presenter{
		logger:            logger,
		playbackService:   playbackService,
		visualizerService: visualizerService,
		prefs:             prefs,
		analysis:          analysis,
		eventBus:          eventBus,
		view:              view,
		title:             widgets.NewRotator("No track loaded", titleWidth),
	}

	p.subscribeToEvents()
	p.syncInitialState()

	return p
}

// subscribeToEvents subscribes to all relevant events from the event bus.
func (p *Presenter) subscribeToEvents() {
	subscriptions := map[domain.EventType]domain.EventHandler{
		// Playback events
		domain.EventTrackLoaded:          p.onTrackLoaded,
		domain.EventTrackError:           p.onTrackError,
		domain.EventPlaybackStateChanged: p.onStateChanged,
		domain.EventTimeUpdate:           p.onTimeUpdate,

		// Volume events
		domain.EventVolumeChanged: p.onVolumeChanged,

		// Visual events
		domain.EventVisualizerChanged: p.onVisualizerChanged,
		domain.EventScriptReplaced:    p.onScriptReplaced,
	}

	subs := make([]domain.SubscriptionID, 0, len(subscriptions))
	for eventType, handler := range subscriptions {
		subs = append(subs, p.eventBus.Subscribe(eventType, handler))
	}

	p.mu.Lock()
	p.subs = subs
	p.mu.Unlock()
}

// syncInitialState synchronizes the UI with the current application state.
func (p *Presenter) syncInitialState() {
	p.view.SetVolume(p.playbackService.Volume() * 100.0)
	p.view.SetMuteState(p.playbackService.IsMuted())
	p.view.SetLoopState(p.playbackService.IsLooping())
	p.view.SetVisualizers(p.visualizerService.Visualizers())

	if track, ok := p.playbackService.Track(); ok {
		p.showTrack(track)
	} else {
		p.view.SetTrackInfo(p.title.Text())
	}

	p.view.SetPlayState(p.playbackService.State() == domain.StatePlaying)

	position, duration := p.playbackService.Position()
	if duration > 0 {
		p.view.SetCurrentTime(position.Seconds())
		p.view.SetProgress(position.Seconds(), duration.Seconds())
	}
}

// Event handlers

func (p *Presenter) onTrackLoaded(event domain.Event) {
	e, ok := event.(domain.TrackLoadedEvent)
	if !ok {
		return
	}
	p.showTrack(e.Track)
	p.repaintIfIdle()
}

func (p *Presenter) showTrack(track domain.Track) {
	p.mu.Lock()
	p.title = widgets.NewRotator(track.DisplayName(), titleWidth)
	text := p.title.Text()
	p.mu.Unlock()

	p.view.SetTrackInfo(text)
	p.view.SetTotalTime(track.Duration.Seconds())
	p.view.SetCurrentTime(0)
	p.view.SetProgress(0, track.Duration.Seconds())
}

func (p *Presenter) onTrackError(event domain.Event) {
	e, ok := event.(domain.TrackErrorEvent)
	if !ok {
		return
	}
	p.view.ShowNotification("Track Error", fmt.Sprintf("Failed to load %s: %v", filepath.Base(e.URI), e.Error))
}

func (p *Presenter) onStateChanged(event domain.Event) {
	e, ok := event.(domain.PlaybackStateChangedEvent)
	if !ok {
		return
	}

	p.mu.Lock()
	p.playing = e.Playing()
	p.mu.Unlock()

	p.view.SetPlayState(e.Playing())
	if e.State == domain.StateStopped {
		p.view.SetCurrentTime(0)
	}
	p.repaintIfIdle()
}

func (p *Presenter) onTimeUpdate(event domain.Event) {
	e, ok := event.(domain.TimeUpdateEvent)
	if !ok {
		return
	}

	p.view.SetCurrentTime(e.Position.Seconds())
	p.view.SetProgress(e.Position.Seconds(), e.Duration.Seconds())

	// scroll long titles while playing
	p.mu.Lock()
	playing := p.playing
	text := p.title.Text()
	if playing {
		text = p.title.Rotate()
	}
	p.mu.Unlock()
	if playing {
		p.view.SetTrackInfo(text)
	}
}

func (p *Presenter) onVolumeChanged(event domain.Event) {
	e, ok := event.(domain.VolumeChangedEvent)
	if !ok {
		return
	}
	p.view.SetVolume(e.Volume * 100.0)
}

func (p *Presenter) onVisualizerChanged(event domain.Event) {
	e, ok := event.(domain.VisualizerChangedEvent)
	if !ok {
		return
	}

	types := make([]visualizer.Type, len(e.Types))
	for i, t := range e.Types {
		types[i] = visualizer.Type(t)
	}
	p.view.SetVisualizers(types)
}

func (p *Presenter) onScriptReplaced(event domain.Event) {
	e, ok := event.(domain.ScriptReplacedEvent)
	if !ok {
		return
	}
	if len(e.Script) == 0 {
		p.view.ShowNotification("Lyrics", fmt.Sprintf("No timed lines found in %s", e.Source))
	}
}

// UI Command handlers (called by UI)

// OnInteraction marks the first user interaction, which starts analysis.
func (p *Presenter) OnInteraction() {
	if p.analysis != nil {
		p.analysis.Resume()
	}
}

// OnPlayClicked handles the play/pause button click.
func (p *Presenter) OnPlayClicked() {
	p.OnInteraction()

	if err := p.playbackService.TogglePlayPause(); err != nil {
		p.logger.Error("play/pause failed", slog.Any("error", err))
		p.view.ShowNotification("Playback Error",
			fmt.Sprintf("Failed to start playback: %v", err))
	}
}

// OnStopClicked handles the stop button click.
func (p *Presenter) OnStopClicked() {
	if err := p.playbackService.Stop(); err != nil {
		p.logger.Error("stop failed", slog.Any("error", err))
		p.view.ShowNotification("Playback Error",
			fmt.Sprintf("Failed to stop playback: %v", err))
	}
}

// OnVolumeChanged handles volume slider changes (0 to 100).
func (p *Presenter) OnVolumeChanged(volume float64) {
	normalized := volume / 100.0
	if err := p.playbackService.SetVolume(normalized); err != nil {
		p.logger.Error("volume change failed", slog.Any("error", err))
		return
	}
	if err := p.prefs.SaveVolume(normalized); err != nil {
		p.logger.Warn("failed to save volume", slog.Any("error", err))
	}
}

// OnMuteClicked handles the mute button click.
func (p *Presenter) OnMuteClicked() {
	muted := !p.playbackService.IsMuted()
	if err := p.playbackService.Mute(muted); err != nil {
		p.logger.Error("mute failed", slog.Any("error", err))
		return
	}
	p.view.SetMuteState(muted)
}

// OnLoopClicked handles the loop button click.
func (p *Presenter) OnLoopClicked() {
	loop := !p.playbackService.IsLooping()
	p.playbackService.SetLoop(loop)
	p.view.SetLoopState(loop)
}

// OnSeekRequested handles seek requests from the progress slider.
func (p *Presenter) OnSeekRequested(seconds float64) {
	position := time.Duration(seconds * float64(time.Second))
	if err := p.playbackService.Seek(position); err != nil {
		p.logger.Error("seek failed", slog.Any("error", err))
		p.view.ShowNotification("Seek Error",
			fmt.Sprintf("Failed to seek: %v", err))
	}
}

// OnTrackOpened loads a local file or URL and starts playing it.
func (p *Presenter) OnTrackOpened(uri string) error {
	p.OnInteraction()

	if _, err := p.playbackService.LoadTrack(uri); err != nil {
		return err
	}
	return p.playbackService.Play()
}

// OnLyricsOpened loads an LRC file and remembers its folder.
func (p *Presenter) OnLyricsOpened(path string) error {
	if _, err := p.playbackService.LoadLyrics(path); err != nil {
		return err
	}
	if err := p.prefs.SaveLastLyricsDir(filepath.Dir(path)); err != nil {
		p.logger.Warn("failed to save lyrics folder", slog.Any("error", err))
	}
	return nil
}

// LastLyricsDir returns the folder the last lyric file came from.
func (p *Presenter) LastLyricsDir() string {
	dir, err := p.prefs.LoadLastLyricsDir()
	if err != nil {
		return ""
	}
	return dir
}

// OnVisualizerToggled enables or disables one visualizer. The active set
// keeps the picker order.
func (p *Presenter) OnVisualizerToggled(t visualizer.Type, enabled bool) {
	current := p.visualizerService.Visualizers()

	var next []visualizer.Type
	for _, info := range visualizer.Types() {
		on := slices.Contains(current, info.Type)
		if info.Type == t {
			on = enabled
		}
		if on {
			next = append(next, info.Type)
		}
	}

	if err := p.visualizerService.SetVisualizers(next); err != nil {
		p.logger.Error("visualizer change failed", slog.Any("error", err))
		p.view.ShowNotification("Visualizer Error", err.Error())
		return
	}
	p.repaintIfIdle()

	names := make([]string, len(next))
	for i, v := range next {
		names[i] = string(v)
	}
	if err := p.prefs.SaveVisualizers(names); err != nil {
		p.logger.Warn("failed to save visualizers", slog.Any("error", err))
	}
}

// OnViewportResized remounts the visualizers on the new drawing area.
func (p *Presenter) OnViewportResized(width, height float32) {
	if err := p.visualizerService.Resize(float64(width), float64(height)); err != nil {
		p.logger.Warn("viewport resize rejected", slog.Any("error", err))
		return
	}
	p.repaintIfIdle()
}

func (p *Presenter) repaintIfIdle() {
	p.mu.Lock()
	playing := p.playing
	p.mu.Unlock()

	if !playing {
		p.view.RepaintScene()
	}
}

// Shutdown unsubscribes from the event bus.
// It's safe to call multiple times (idempotent).
func (p *Presenter) Shutdown() {
	p.shutdownOnce.Do(func() {
		p.mu.Lock()
		subs := p.subs
		p.subs = nil
		p.mu.Unlock()

		for _, id := range subs {
			p.eventBus.Unsubscribe(id)
		}
	})
}
