// Package app provides application-level orchestration and dependency injection.
// This package wires together all components and manages the application lifecycle.
package app

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"

	"github.com/tejashwikalptaru/govis/internal/adapter/eventbus"
	"github.com/tejashwikalptaru/govis/internal/adapter/media"
	"github.com/tejashwikalptaru/govis/internal/adapter/output"
	"github.com/tejashwikalptaru/govis/internal/adapter/repository/prefs"
	"github.com/tejashwikalptaru/govis/internal/adapter/scheduler"
	"github.com/tejashwikalptaru/govis/internal/adapter/transport"
	fyneui "github.com/tejashwikalptaru/govis/internal/adapter/ui/fyne"
	"github.com/tejashwikalptaru/govis/internal/animation"
	"github.com/tejashwikalptaru/govis/internal/logger"
	"github.com/tejashwikalptaru/govis/internal/loop"
	"github.com/tejashwikalptaru/govis/internal/lyrics"
	"github.com/tejashwikalptaru/govis/internal/ports"
	"github.com/tejashwikalptaru/govis/internal/scene"
	"github.com/tejashwikalptaru/govis/internal/service"
	"github.com/tejashwikalptaru/govis/internal/signal"
	"github.com/tejashwikalptaru/govis/internal/visualizer"
)

// fetchTimeout bounds downloads of remote tracks.
const fetchTimeout = 30 * time.Second

// Application is the root application structure that holds all dependencies.
// It follows the Dependency Injection pattern with constructor-based injection.
//
// The Application struct is responsible for:
// - Creating and wiring all dependencies
// - Managing the application lifecycle (startup, shutdown)
// - Providing a clean entry point for main.go
type Application struct {
	config Config

	// Core dependencies
	logger  *slog.Logger
	fyneApp fyne.App
	clock   animation.Clock

	// Infrastructure
	eventBus    ports.EventBus
	analysis    *signal.Context
	source      *signal.Source
	output      *output.Oto
	ticker      *scheduler.Ticker
	driver      *loop.Driver
	broadcaster *transport.Broadcaster
	wsAddr      net.Addr

	// Repositories
	preferencesRepo ports.PreferencesRepository

	// Services
	playbackService   *service.PlaybackService
	visualizerService *service.VisualizerService

	// UI
	presenter  *fyneui.Presenter
	mainWindow *fyneui.MainWindow

	shutdownOnce sync.Once
}

// NewApplication creates a new application with all dependencies wired.
// This is the main dependency injection function.
func NewApplication(config Config) (*Application, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	app := &Application{
		config: config,
		clock:  animation.SystemClock(),
	}

	// Step 1: Create Fyne application
	if config.TestFyneApp != nil {
		app.fyneApp = config.TestFyneApp
	} else {
		app.fyneApp = fyneapp.NewWithID(config.AppID)
	}

	// Step 2: Create logger
	app.logger = logger.NewLogger(config.LoggerConfig())
	app.logger.Info("initializing application",
		slog.String("app_id", config.AppID),
		slog.String("version", GetVersionInfo().Version))

	// Step 3: Create an event bus
	app.eventBus = eventbus.NewSyncEventBus(app.logger)

	// Step 4: Create the analysis graph
	if err := app.initSignal(); err != nil {
		app.Shutdown()
		return nil, err
	}

	// Step 5: Create the render loop
	app.ticker = scheduler.NewTicker(config.FPS, app.logger)
	app.driver = loop.NewDriver(app.source, app.ticker, app.logger)

	// Step 6: Create the window; its lyric line is the synchronizer's view
	app.mainWindow = fyneui.NewMainWindow(app.fyneApp, app.layers)
	synchronizer := lyrics.NewSynchronizer(app.mainWindow.LyricView(), app.clock, app.logger)

	// Step 7: Create repositories and services
	app.preferencesRepo = prefs.NewRepository(app.fyneApp.Preferences())

	var loader ports.MediaLoader
	if config.Audio.Mock {
		loader = media.NewMockLoader(app.clock, app.logger)
	} else {
		loader = media.NewLoader(&http.Client{Timeout: fetchTimeout}, app.clock, app.logger)
	}

	app.playbackService = service.NewPlaybackService(
		app.logger.With(slog.String("service", "playback")),
		loader,
		app.source,
		app.eventBus,
	)

	app.visualizerService = service.NewVisualizerService(
		app.logger.With(slog.String("service", "visualizer")),
		app.eventBus,
		app.driver,
		synchronizer,
		visualizer.Deps{Clock: app.clock},
	)

	// Step 8: Create Presenter and wire with UI
	app.presenter = fyneui.NewPresenter(
		app.logger.With(slog.String("component", "presenter")),
		app.playbackService,
		app.visualizerService,
		app.preferencesRepo,
		app.analysis,
		app.eventBus,
		app.mainWindow,
	)
	app.mainWindow.SetPresenter(app.presenter)
	app.mainWindow.SetOnBeforeClose(app.Shutdown)

	// Step 9: Restore state, then start rendering
	if err := app.loadSavedState(); err != nil {
		// Non-fatal - just log and continue
		app.logger.Warn("failed to load saved state", slog.Any("error", err))
	}

	app.visualizerService.Start()
	app.driver.Register(app.mainWindow)

	// Step 10: Optional snapshot broadcaster
	if config.WebSocket.Addr != "" {
		if err := app.startBroadcaster(config.WebSocket.Addr); err != nil {
			app.Shutdown()
			return nil, err
		}
	}

	return app, nil
}

// initSignal creates the analysis context, its source and the audio device.
// Tests get an isolated context; the desktop app uses the shared one.
func (a *Application) initSignal() error {
	if a.config.TestFyneApp != nil {
		a.analysis = signal.NewContext(a.logger)
	} else {
		a.analysis = signal.Shared()
	}

	source, err := signal.NewSource(a.analysis)
	if err != nil {
		return fmt.Errorf("failed to create signal source: %w", err)
	}
	a.source = source

	if a.config.Audio.Mock {
		return nil
	}

	opts, err := a.config.OutputOptions()
	if err != nil {
		return err
	}
	out, err := output.NewOto(opts, a.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize audio output: %w", err)
	}
	a.output = out
	if err := a.analysis.AttachOutput(out); err != nil {
		return fmt.Errorf("failed to attach audio output: %w", err)
	}
	return nil
}

func (a *Application) startBroadcaster(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	a.broadcaster = transport.NewBroadcaster(a.clock, a.logger)
	a.wsAddr = ln.Addr()
	a.driver.Register(a.broadcaster)

	go func() {
		if err := a.broadcaster.Serve(ln); err != nil {
			a.logger.Error("websocket server stopped", slog.Any("error", err))
		}
	}()
	return nil
}

// layers returns the arenas of the active renderers, bottom first.
func (a *Application) layers() []*scene.Arena {
	if a.visualizerService == nil {
		return nil
	}
	renderers := a.visualizerService.Renderers()
	arenas := make([]*scene.Arena, len(renderers))
	for i, r := range renderers {
		arenas[i] = r.Arena()
	}
	return arenas
}

// loadSavedState restores the volume and the visualizer selection.
// Visualizers named in the config win over the saved ones; with neither,
// the defaults are used.
func (a *Application) loadSavedState() error {
	volume, err := a.preferencesRepo.LoadVolume()
	if err != nil {
		return fmt.Errorf("failed to load volume: %w", err)
	}
	if err := a.playbackService.SetVolume(volume); err != nil {
		a.logger.Warn("failed to set volume", slog.Any("error", err))
	}

	types := a.config.VisualizerTypes()
	if len(types) == 0 {
		saved, err := a.preferencesRepo.LoadVisualizers()
		if err != nil {
			a.logger.Warn("failed to load visualizers", slog.Any("error", err))
		}
		for _, name := range saved {
			t, err := visualizer.ParseType(name)
			if err != nil {
				a.logger.Warn("ignoring saved visualizer", slog.String("type", name))
				continue
			}
			types = append(types, t)
		}
	}
	if len(types) == 0 {
		types = visualizer.DefaultTypes()
	}

	if err := a.visualizerService.SetVisualizers(types); err != nil {
		return fmt.Errorf("failed to restore visualizers: %w", err)
	}
	return nil
}

// OpenInitial opens the track and lyrics named in the config.
// Naming a track on the command line counts as the first interaction.
func (a *Application) OpenInitial() error {
	if a.config.Lyrics != "" {
		if err := a.presenter.OnLyricsOpened(a.config.Lyrics); err != nil {
			return fmt.Errorf("failed to open lyrics: %w", err)
		}
	}
	if a.config.Track != "" {
		if err := a.presenter.OnTrackOpened(a.config.Track); err != nil {
			return fmt.Errorf("failed to open track: %w", err)
		}
	}
	return nil
}

// Run starts the application.
// This is called from main.go after the application is created.
func (a *Application) Run() {
	a.logger.Info("govis started", slog.String("version", GetVersionInfo().FullString()))

	go func() {
		if err := a.OpenInitial(); err != nil {
			a.logger.Error("startup open failed", slog.Any("error", err))
		}
	}()

	// Show and run UI (blocks until the window is closed)
	a.mainWindow.ShowAndRun()
}

// Shutdown gracefully shuts down the application.
// It's safe to call multiple times (idempotent).
func (a *Application) Shutdown() {
	a.shutdownOnce.Do(a.shutdown)
}

func (a *Application) shutdown() {
	if a.logger != nil {
		a.logger.Info("shutting down application")
	}

	// Shutdown UI and presenter
	if a.presenter != nil {
		a.presenter.Shutdown()
	}

	// Stop the render loop before its sinks go away
	if a.visualizerService != nil {
		a.visualizerService.Shutdown()
	}
	if a.ticker != nil {
		if err := a.ticker.Close(); err != nil {
			a.logger.Warn("failed to close frame ticker", slog.Any("error", err))
		}
	}
	if a.broadcaster != nil {
		if err := a.broadcaster.Close(); err != nil {
			a.logger.Warn("failed to close websocket server", slog.Any("error", err))
		}
	}

	if a.playbackService != nil {
		if err := a.playbackService.Shutdown(); err != nil {
			a.logger.Warn("failed to shutdown playback service", slog.Any("error", err))
		}
	}

	// Release the analysis graph; closing the context closes the device
	if a.source != nil {
		a.source.Release()
	}
	if a.analysis != nil {
		if err := a.analysis.Close(); err != nil {
			a.logger.Warn("failed to close analysis context", slog.Any("error", err))
		}
	}

	if a.eventBus != nil {
		_ = a.eventBus.Close()
	}

	if a.logger != nil {
		a.logger.Info("application shutdown complete")
	}
}

// Getters, mainly for tests and the CLI

// GetServices returns the playback and visualizer services.
func (a *Application) GetServices() (*service.PlaybackService, *service.VisualizerService) {
	return a.playbackService, a.visualizerService
}

// GetEventBus returns the event bus.
func (a *Application) GetEventBus() ports.EventBus {
	return a.eventBus
}

// GetFyneApp returns the Fyne application.
func (a *Application) GetFyneApp() fyne.App {
	return a.fyneApp
}

// GetDriver returns the render loop driver.
func (a *Application) GetDriver() *loop.Driver {
	return a.driver
}

// AnalysisState returns the lifecycle state of the analysis context.
func (a *Application) AnalysisState() signal.State {
	return a.analysis.State()
}

// WebSocketAddr returns the broadcaster's listening address, nil when disabled.
func (a *Application) WebSocketAddr() net.Addr {
	return a.wsAddr
}
