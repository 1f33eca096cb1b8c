package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"fyne.io/fyne/v2/test"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/tejashwikalptaru/govis/internal/adapter/repository/prefs"
	"github.com/tejashwikalptaru/govis/internal/adapter/transport"
	"github.com/tejashwikalptaru/govis/internal/domain"
	"github.com/tejashwikalptaru/govis/internal/loop"
	"github.com/tejashwikalptaru/govis/internal/signal"
	"github.com/tejashwikalptaru/govis/internal/testutil"
	"github.com/tejashwikalptaru/govis/internal/visualizer"
)

func testConfig() Config {
	config := DefaultConfig()
	config.Audio.Mock = true // no output device in tests
	config.Log.Level = "error"
	config.TestFyneApp = test.NewApp()
	return config
}

func newTestApplication(t *testing.T, config Config) *Application {
	t.Helper()
	app, err := NewApplication(config)
	require.NoError(t, err)
	t.Cleanup(app.Shutdown)
	return app
}

func TestNewApplication(t *testing.T) {
	app := newTestApplication(t, testConfig())

	playback, visuals := app.GetServices()
	require.NotNil(t, playback)
	require.NotNil(t, visuals)
	assert.NotNil(t, app.GetEventBus())
	assert.NotNil(t, app.GetFyneApp())

	assert.Equal(t, visualizer.DefaultTypes(), visuals.Visualizers())
	assert.Equal(t, loop.StateIdle, app.GetDriver().State(), "no frames before playback")
	assert.Equal(t, signal.StateSuspended, app.AnalysisState(), "analysis waits for the first interaction")
	assert.Nil(t, app.WebSocketAddr())
	assert.Len(t, app.layers(), len(visualizer.DefaultTypes()))
}

func TestApplicationLifecycle(t *testing.T) {
	config := testConfig()
	defer testutil.VerifyNoLeaks(t, append(testutil.IgnoreFyneGoroutines(), goleak.IgnoreCurrent())...)

	app, err := NewApplication(config)
	require.NoError(t, err)

	app.Shutdown()
	assert.Equal(t, loop.StateIdle, app.GetDriver().State())
	assert.Equal(t, signal.StateClosed, app.AnalysisState())

	// Shutdown again should not panic
	app.Shutdown()
}

func TestApplication_InvalidConfig(t *testing.T) {
	config := testConfig()
	config.FPS = 0

	_, err := NewApplication(config)
	assert.True(t, domain.IsConfigurationError(err))
}

func TestApplication_ConfigVisualizersWin(t *testing.T) {
	config := testConfig()
	require.NoError(t, prefs.NewRepository(config.TestFyneApp.Preferences()).SaveVisualizers([]string{"ring_pulse"}))
	config.Visualizers = []string{"blobs", "particles"}

	app := newTestApplication(t, config)
	_, visuals := app.GetServices()
	assert.Equal(t, []visualizer.Type{visualizer.TypeBlobs, visualizer.TypeParticles}, visuals.Visualizers())
}

func TestApplication_RestoresSavedState(t *testing.T) {
	config := testConfig()
	repo := prefs.NewRepository(config.TestFyneApp.Preferences())
	require.NoError(t, repo.SaveVolume(0.3))
	require.NoError(t, repo.SaveVisualizers([]string{"ring_pulse", "gone", "outline"}))

	app := newTestApplication(t, config)
	playback, visuals := app.GetServices()

	assert.Equal(t, 0.3, playback.Volume())
	assert.Equal(t, []visualizer.Type{visualizer.TypeRingPulse, visualizer.TypeOutline}, visuals.Visualizers(),
		"unknown saved names are skipped")
}

func TestApplication_OpenInitial(t *testing.T) {
	lrc := filepath.Join(t.TempDir(), "song.lrc")
	require.NoError(t, os.WriteFile(lrc, []byte("[00:00.50]hello\n[00:02.00]world\n"), 0o600))

	config := testConfig()
	config.Track = "/music/Song.mp3"
	config.Lyrics = lrc

	app := newTestApplication(t, config)
	require.NoError(t, app.OpenInitial())

	playback, _ := app.GetServices()
	track, ok := playback.Track()
	require.True(t, ok)
	assert.Equal(t, "Song", track.Title)
	assert.Equal(t, domain.StatePlaying, playback.State())
	assert.Equal(t, signal.StateRunning, app.AnalysisState())
	assert.Equal(t, loop.StateRunning, app.GetDriver().State())

	require.NoError(t, playback.Pause())
	assert.Equal(t, loop.StateIdle, app.GetDriver().State())
}

func TestApplication_OpenInitialFailure(t *testing.T) {
	config := testConfig()
	config.Lyrics = filepath.Join(t.TempDir(), "missing.lrc")

	app := newTestApplication(t, config)
	assert.ErrorContains(t, app.OpenInitial(), "failed to open lyrics")
}

func TestApplication_WebSocketBroadcast(t *testing.T) {
	config := testConfig()
	config.WebSocket.Addr = "127.0.0.1:0"
	config.Track = "/music/Song.mp3"

	app := newTestApplication(t, config)
	addr := app.WebSocketAddr()
	require.NotNil(t, addr)

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+addr.String()+transport.Path, nil)
	require.NoError(t, err)
	defer conn.Close()

	// frames flow once playback starts
	require.NoError(t, app.OpenInitial())
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	var frame transport.Frame
	require.NoError(t, conn.ReadJSON(&frame))
	assert.NotEmpty(t, frame.Bins)
}

func TestApplication_WebSocketAddrInUse(t *testing.T) {
	first := testConfig()
	first.WebSocket.Addr = "127.0.0.1:0"
	app := newTestApplication(t, first)

	second := testConfig()
	second.WebSocket.Addr = app.WebSocketAddr().String()
	_, err := NewApplication(second)
	assert.ErrorContains(t, err, "failed to listen")
}

func TestVersionInfo(t *testing.T) {
	info := GetVersionInfo()
	assert.Equal(t, Version, info.Version)
	assert.Contains(t, info.FullString(), "govis dev")

	info.GitTag = "v1.2.0"
	assert.Contains(t, info.FullString(), "govis v1.2.0")
}
