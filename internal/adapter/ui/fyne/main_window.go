package fyne

import (
	"fmt"
	"math"
	"sync"

	fyneapp "fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/tejashwikalptaru/govis/internal/adapter/ui/fyne/widgets"
	"github.com/tejashwikalptaru/govis/internal/domain"
	"github.com/tejashwikalptaru/govis/internal/visualizer"
	"github.com/tejashwikalptaru/govis/res"
)

// Window defaults.
const (
	AppName = "govis"
	Width   = 960
	Height  = 720
)

// volumeStep is the slider change made by the volume shortcuts.
const volumeStep = 5

// MainWindow is the main UI window implementing the UIView interface.
// It handles all UI rendering and user interactions.
//
// The MainWindow follows the MVP pattern:
// - It's a "dumb view" that just displays data
// - All business logic is in the Presenter
// - User interactions are forwarded to the Presenter
//
// UIView methods may be called from any goroutine; they hop onto the Fyne
// thread with fyne.Do.
type MainWindow struct {
	app    fyneapp.App
	window fyneapp.Window

	// UI components
	playButton     *widget.Button
	stopButton     *widget.Button
	muteButton     *widget.Button
	loopButton     *widget.Button
	songInfo       *widget.Label
	currentTime    *widget.Label
	endTime        *widget.Label
	progressSlider *widget.Slider
	volumeSlider   *widget.Slider

	scene  *widgets.SceneView
	lyrics *widgets.LyricLine
	stage  *widgets.TappableStack

	visualizerItems map[visualizer.Type]*fyneapp.MenuItem
	visualizerMenu  *fyneapp.Menu

	// Lifecycle management
	closeOnce     sync.Once
	onBeforeClose func()

	// Presenter (set after construction)
	presenter *Presenter
}

// NewMainWindow creates a new main window painting the given layers.
func NewMainWindow(app fyneapp.App, layers widgets.LayerSource) *MainWindow {
	w := &MainWindow{
		app:             app,
		visualizerItems: make(map[visualizer.Type]*fyneapp.MenuItem),
	}

	w.window = app.NewWindow(AppName)
	w.scene = widgets.NewSceneView(layers)
	w.lyrics = widgets.NewLyricLine()

	w.buildUI()

	w.window.Resize(fyneapp.NewSize(Width, Height))
	w.window.SetCloseIntercept(func() {
		if w.onBeforeClose != nil {
			w.onBeforeClose()
		}
		w.window.Close()
	})

	return w
}

// SetPresenter connects the presenter to this view.
// This must be called before showing the window.
func (w *MainWindow) SetPresenter(presenter *Presenter) {
	w.presenter = presenter
	w.wirePresenterHandlers()
	w.addShortcuts()
}

// SetOnBeforeClose registers a callback run before the window closes.
func (w *MainWindow) SetOnBeforeClose(fn func()) {
	w.onBeforeClose = fn
}

// LyricView returns the lyric overlay, which implements ports.LyricView.
func (w *MainWindow) LyricView() *widgets.LyricLine {
	return w.lyrics
}

// OnData implements loop.Sink: every frame repaints the scene.
func (w *MainWindow) OnData(domain.FrequencySnapshot) {
	w.scene.Invalidate()
}

// RepaintScene implements UIView.
func (w *MainWindow) RepaintScene() {
	w.scene.Invalidate()
}

// buildUI constructs the UI components.
func (w *MainWindow) buildUI() {
	// Control buttons
	w.playButton = widget.NewButtonWithIcon("", theme.MediaPlayIcon(), nil)
	w.stopButton = widget.NewButtonWithIcon("", theme.MediaStopIcon(), nil)
	w.muteButton = widget.NewButtonWithIcon("", theme.VolumeUpIcon(), nil)
	w.loopButton = widget.NewButtonWithIcon("", theme.MediaReplayIcon(), nil)

	// Song info label
	w.songInfo = widget.NewLabel("")
	w.songInfo.Truncation = fyneapp.TextTruncateClip
	w.songInfo.TextStyle = fyneapp.TextStyle{
		Bold:   true,
		Italic: true,
	}

	// Volume slider
	w.volumeSlider = widget.NewSlider(0, 100)
	w.volumeSlider.Orientation = widget.Horizontal
	volumeHolder := container.NewBorder(nil, nil, widget.NewIcon(theme.VolumeUpIcon()), nil, w.volumeSlider)
	volumeHolder = container.NewGridWrap(fyneapp.NewSize(160, volumeHolder.MinSize().Height), volumeHolder)

	buttonsHBox := container.NewHBox(w.playButton, w.stopButton, w.muteButton, w.loopButton)
	buttonsHolder := container.NewBorder(nil, nil, buttonsHBox, volumeHolder, w.songInfo)

	// Progress slider
	w.progressSlider = widget.NewSlider(0, 1)
	w.progressSlider.Step = 0.1
	w.currentTime = widget.NewLabel(formatTime(0))
	w.endTime = widget.NewLabel(formatTime(0))
	sliderHolder := container.NewBorder(nil, nil, w.currentTime, w.endTime, w.progressSlider)

	// Visualizer stage with the lyric line at the bottom
	lyricHolder := container.NewBorder(nil, container.NewPadded(w.lyrics), nil, nil)
	w.stage = widgets.NewTappableStack(w.scene, lyricHolder)

	controls := container.NewVBox(buttonsHolder, sliderHolder)
	w.window.SetContent(container.NewBorder(nil, container.NewPadded(controls), nil, nil, w.stage))

	w.window.SetMainMenu(fyneapp.NewMainMenu(w.createMenu()...))
}

// wirePresenterHandlers connects UI events to presenter handlers.
func (w *MainWindow) wirePresenterHandlers() {
	if w.presenter == nil {
		return
	}

	w.playButton.OnTapped = w.presenter.OnPlayClicked
	w.stopButton.OnTapped = w.presenter.OnStopClicked
	w.muteButton.OnTapped = w.presenter.OnMuteClicked
	w.loopButton.OnTapped = w.presenter.OnLoopClicked

	w.volumeSlider.OnChanged = w.presenter.OnVolumeChanged
	w.progressSlider.OnChangeEnded = w.presenter.OnSeekRequested

	w.stage.SetOnTapped(w.presenter.OnPlayClicked)
	w.stage.SetOnTappedSecondary(func(pe *fyneapp.PointEvent) {
		widget.ShowPopUpMenuAtPosition(w.visualizerMenu, w.window.Canvas(), pe.AbsolutePosition)
	})

	w.scene.SetOnResize(w.presenter.OnViewportResized)
	if size := w.scene.Size(); size.Width > 0 && size.Height > 0 {
		w.presenter.OnViewportResized(size.Width, size.Height)
	}
}

// createMenu creates the application menu.
func (w *MainWindow) createMenu() []*fyneapp.Menu {
	separator := fyneapp.NewMenuItemSeparator()

	openFile := fyneapp.NewMenuItem("Open Track...", w.handleOpenFile)
	openURL := fyneapp.NewMenuItem("Open URL...", w.handleOpenURL)
	openLyrics := fyneapp.NewMenuItem("Open Lyrics...", w.handleOpenLyrics)
	fileMenu := fyneapp.NewMenu("File", openFile, openURL, separator, openLyrics)

	var items []*fyneapp.MenuItem
	for _, info := range visualizer.Types() {
		t := info.Type
		item := fyneapp.NewMenuItem(info.Name, nil)
		item.Action = func() {
			if w.presenter != nil {
				w.presenter.OnVisualizerToggled(t, !item.Checked)
			}
		}
		w.visualizerItems[t] = item
		items = append(items, item)
	}
	w.visualizerMenu = fyneapp.NewMenu("Visualizers", items...)

	about := fyneapp.NewMenuItem("About", w.showAbout)
	helpMenu := fyneapp.NewMenu("Help", about)

	return []*fyneapp.Menu{fileMenu, w.visualizerMenu, helpMenu}
}

// handleOpenFile handles the "Open Track" menu action.
func (w *MainWindow) handleOpenFile() {
	if w.presenter == nil {
		return
	}

	NewFileDialog(w.window, func(filePath string) {
		w.openTrack(filePath)
	}, w.presenter.logger).WithExtensions(".mp3", ".wav").Show()
}

// handleOpenURL asks for a remote track URL.
func (w *MainWindow) handleOpenURL() {
	if w.presenter == nil {
		return
	}

	entry := widget.NewEntry()
	entry.SetPlaceHolder("https://example.com/track.mp3")
	items := []*widget.FormItem{widget.NewFormItem("URL", entry)}
	dialog.ShowForm("Open URL", "Open", "Cancel", items, func(ok bool) {
		if ok && entry.Text != "" {
			w.openTrack(entry.Text)
		}
	}, w.window)
}

// openTrack loads off the Fyne thread; remote tracks may take a while.
func (w *MainWindow) openTrack(uri string) {
	go func() {
		if err := w.presenter.OnTrackOpened(uri); err != nil {
			w.showError(fmt.Errorf("failed to open track: %w", err))
		}
	}()
}

// handleOpenLyrics handles the "Open Lyrics" menu action.
func (w *MainWindow) handleOpenLyrics() {
	if w.presenter == nil {
		return
	}

	NewFileDialog(w.window, func(filePath string) {
		if err := w.presenter.OnLyricsOpened(filePath); err != nil {
			w.showError(fmt.Errorf("failed to open lyrics: %w", err))
		}
	}, w.presenter.logger).WithExtensions(".lrc").WithLocation(w.presenter.LastLyricsDir()).Show()
}

func (w *MainWindow) showAbout() {
	content := widget.NewRichTextFromMarkdown(res.AboutContent)
	content.Wrapping = fyneapp.TextWrapWord
	d := dialog.NewCustom("About "+AppName, "Close", content, w.window)
	d.Resize(fyneapp.NewSize(420, 320))
	d.Show()
}

func (w *MainWindow) showError(err error) {
	fyneapp.Do(func() {
		dialog.ShowError(err, w.window)
	})
}

// addShortcuts adds keyboard shortcuts.
func (w *MainWindow) addShortcuts() {
	w.window.Canvas().SetOnTypedKey(func(ev *fyneapp.KeyEvent) {
		if ev.Name == fyneapp.KeySpace {
			w.presenter.OnPlayClicked()
		}
	})

	w.window.Canvas().AddShortcut(&desktop.CustomShortcut{
		KeyName:  fyneapp.KeyUp,
		Modifier: fyneapp.KeyModifierAlt,
	}, func(fyneapp.Shortcut) {
		w.volumeSlider.SetValue(math.Min(w.volumeSlider.Value+volumeStep, 100))
	})

	w.window.Canvas().AddShortcut(&desktop.CustomShortcut{
		KeyName:  fyneapp.KeyDown,
		Modifier: fyneapp.KeyModifierAlt,
	}, func(fyneapp.Shortcut) {
		w.volumeSlider.SetValue(math.Max(w.volumeSlider.Value-volumeStep, 0))
	})
}

// ShowAndRun shows the window and runs the application.
func (w *MainWindow) ShowAndRun() {
	w.window.ShowAndRun()
}

// Close closes the window.
// It's safe to call multiple times (idempotent).
func (w *MainWindow) Close() {
	w.closeOnce.Do(func() {
		w.window.Close()
	})
}

// GetWindow returns the underlying Fyne window.
func (w *MainWindow) GetWindow() fyneapp.Window {
	return w.window
}

// UIView interface implementation

// SetPlayState updates the play/pause button state.
func (w *MainWindow) SetPlayState(playing bool) {
	fyneapp.Do(func() {
		if playing {
			w.playButton.SetIcon(theme.MediaPauseIcon())
		} else {
			w.playButton.SetIcon(theme.MediaPlayIcon())
		}
	})
}

// SetMuteState updates the mute button state.
func (w *MainWindow) SetMuteState(muted bool) {
	fyneapp.Do(func() {
		if muted {
			w.muteButton.SetIcon(theme.VolumeMuteIcon())
		} else {
			w.muteButton.SetIcon(theme.VolumeUpIcon())
		}
	})
}

// SetLoopState updates the loop button state.
func (w *MainWindow) SetLoopState(enabled bool) {
	fyneapp.Do(func() {
		if enabled {
			w.loopButton.Importance = widget.HighImportance
		} else {
			w.loopButton.Importance = widget.MediumImportance
		}
		w.loopButton.Refresh()
	})
}

// SetVolume updates the volume slider (0 to 100) without echoing it back.
func (w *MainWindow) SetVolume(volume float64) {
	fyneapp.Do(func() {
		w.volumeSlider.Value = volume
		w.volumeSlider.Refresh()
	})
}

// SetTrackInfo updates the displayed track information.
func (w *MainWindow) SetTrackInfo(text string) {
	fyneapp.Do(func() {
		w.songInfo.SetText(text)
	})
}

// SetCurrentTime updates the current playback time display.
func (w *MainWindow) SetCurrentTime(seconds float64) {
	fyneapp.Do(func() {
		w.currentTime.SetText(formatTime(seconds))
	})
}

// SetTotalTime updates the total track duration display.
func (w *MainWindow) SetTotalTime(seconds float64) {
	fyneapp.Do(func() {
		w.progressSlider.Max = math.Max(seconds, 1)
		w.endTime.SetText(formatTime(seconds))
		w.progressSlider.Refresh()
	})
}

// SetProgress updates the progress slider position.
func (w *MainWindow) SetProgress(position, duration float64) {
	if duration <= 0 {
		return
	}
	fyneapp.Do(func() {
		w.progressSlider.Value = math.Min(position, w.progressSlider.Max)
		w.progressSlider.Refresh()
	})
}

// SetVisualizers checks the menu items of the active visualizers.
func (w *MainWindow) SetVisualizers(active []visualizer.Type) {
	fyneapp.Do(func() {
		for _, item := range w.visualizerItems {
			item.Checked = false
		}
		for _, t := range active {
			if item, ok := w.visualizerItems[t]; ok {
				item.Checked = true
			}
		}
		w.visualizerMenu.Refresh()
	})
}

// ShowNotification displays a system notification.
func (w *MainWindow) ShowNotification(title, message string) {
	w.app.SendNotification(fyneapp.NewNotification(title, message))
}

// formatTime renders seconds as mm:ss.
func formatTime(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%.2d:%.2d", int(seconds/60), int(math.Mod(seconds, 60)))
}

// Verify UIView implementation
var _ UIView = (*MainWindow)(nil)
