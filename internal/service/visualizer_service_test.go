package service

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/govis/internal/adapter/eventbus"
	"github.com/tejashwikalptaru/govis/internal/adapter/scheduler"
	"github.com/tejashwikalptaru/govis/internal/animation"
	"github.com/tejashwikalptaru/govis/internal/domain"
	"github.com/tejashwikalptaru/govis/internal/logger"
	"github.com/tejashwikalptaru/govis/internal/loop"
	"github.com/tejashwikalptaru/govis/internal/lyrics"
	"github.com/tejashwikalptaru/govis/internal/scene"
	"github.com/tejashwikalptaru/govis/internal/visualizer"
)

type rampPoller struct{ snapshot domain.FrequencySnapshot }

func (p *rampPoller) Poll() domain.FrequencySnapshot { return p.snapshot }

type lyricView struct {
	line  *domain.TimedLine
	shown []string
}

func (v *lyricView) ShowLine(line domain.TimedLine) {
	v.line = &line
	v.shown = append(v.shown, line.Text)
}
func (v *lyricView) SetReveal(float64) {}
func (v *lyricView) ClearLine() { v.line = nil }

type visualizerFixture struct {
	svc    *VisualizerService
	bus    *eventbus.SyncEventBus
	sched  *scheduler.Manual
	driver *loop.Driver
	view   *lyricView
	poller *rampPoller
}

func newVisualizerFixture(t *testing.T) *visualizerFixture {
	t.Helper()

	log := logger.NewTestLogger()
	clock := animation.NewManualClock(epoch)

	snap := make(domain.FrequencySnapshot, 128)
	for i := range snap {
		snap[i] = uint8(255 - i)
	}
	poller := &rampPoller{snapshot: snap}

	sched := scheduler.NewManual()
	driver := loop.NewDriver(poller, sched, log)
	view := &lyricView{}
	bus := eventbus.NewSyncEventBus(log)

	svc := NewVisualizerService(log, bus, driver, lyrics.NewSynchronizer(view, clock, log), visualizer.Deps{
		Clock: clock,
		Rand:  rand.New(rand.NewPCG(1, 2)),
	})
	t.Cleanup(func() {
		svc.Shutdown()
		_ = bus.Close()
	})

	return &visualizerFixture{svc: svc, bus: bus, sched: sched, driver: driver, view: view, poller: poller}
}

func testCover(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.NRGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestVisualizerService_MountsWhenViewportKnown(t *testing.T) {
	f := newVisualizerFixture(t)
	f.svc.Start()

	var changed []string
	f.bus.Subscribe(domain.EventVisualizerChanged, func(e domain.Event) {
		changed = e.(domain.VisualizerChangedEvent).Types
	})

	require.NoError(t, f.svc.SetVisualizers([]visualizer.Type{visualizer.TypeRadialBars, visualizer.TypeRingPulse}))
	assert.Equal(t, []string{"radial_bars", "ring_pulse"}, changed)
	for _, r := range f.svc.Renderers() {
		assert.False(t, r.Mounted(), "no viewport yet")
	}

	require.NoError(t, f.svc.Resize(800, 600))
	for _, r := range f.svc.Renderers() {
		assert.True(t, r.Mounted())
	}
	assert.Equal(t, []visualizer.Type{visualizer.TypeRadialBars, visualizer.TypeRingPulse}, f.svc.Visualizers())

	var vErr *domain.ValidationError
	assert.ErrorAs(t, f.svc.Resize(0, 600), &vErr)
}

func TestVisualizerService_UnknownTypeKeepsCurrent(t *testing.T) {
	f := newVisualizerFixture(t)
	require.NoError(t, f.svc.SetVisualizers([]visualizer.Type{visualizer.TypeBlobs}))

	err := f.svc.SetVisualizers([]visualizer.Type{visualizer.TypeOutline, "sparkles"})
	assert.ErrorIs(t, err, domain.ErrUnknownVisualizer)
	assert.Equal(t, []visualizer.Type{visualizer.TypeBlobs}, f.svc.Visualizers())
}

func TestVisualizerService_FramesReachRenderers(t *testing.T) {
	f := newVisualizerFixture(t)
	require.NoError(t, f.svc.Resize(400, 400))
	require.NoError(t, f.svc.SetVisualizers([]visualizer.Type{visualizer.TypeRadialBars}))
	f.svc.Start()
	assert.Equal(t, loop.StateIdle, f.driver.State(), "nothing to draw until playback starts")

	f.bus.Publish(domain.NewPlaybackStateChangedEvent(domain.StatePlaying, domain.StateStopped))
	assert.Equal(t, loop.StateRunning, f.driver.State())

	arena := f.svc.Renderers()[0].Arena()
	before := arena.Snapshot()

	require.Equal(t, 1, f.sched.Fire(epoch))
	assert.NotEqual(t, before, arena.Snapshot())
	assert.Equal(t, uint64(1), f.driver.Frames())
}

func TestVisualizerService_LoopFollowsPlayback(t *testing.T) {
	f := newVisualizerFixture(t)
	require.NoError(t, f.svc.Resize(400, 400))
	require.NoError(t, f.svc.SetVisualizers([]visualizer.Type{visualizer.TypeRadialBars}))
	f.svc.Start()

	f.bus.Publish(domain.NewPlaybackStateChangedEvent(domain.StatePlaying, domain.StateStopped))
	require.Equal(t, 1, f.sched.Fire(epoch))
	require.Equal(t, uint64(1), f.driver.Frames())

	tests := []struct {
		name  string
		state domain.PlaybackState
	}{
		{"paused", domain.StatePaused},
		{"stopped", domain.StateStopped},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f.bus.Publish(domain.NewPlaybackStateChangedEvent(tt.state, domain.StatePlaying))

			assert.Equal(t, loop.StateIdle, f.driver.State())
			assert.Equal(t, 0, f.sched.Pending(), "pending frame canceled")

			frames := f.driver.Frames()
			assert.Equal(t, 0, f.sched.Fire(epoch))
			assert.Equal(t, frames, f.driver.Frames())

			f.bus.Publish(domain.NewPlaybackStateChangedEvent(domain.StatePlaying, tt.state))
			assert.Equal(t, loop.StateRunning, f.driver.State())
			assert.Equal(t, 1, f.sched.Fire(epoch))
			assert.Equal(t, frames+1, f.driver.Frames())
		})
	}
}

func TestVisualizerService_TrackCoverRemounts(t *testing.T) {
	f := newVisualizerFixture(t)
	f.svc.Start()
	require.NoError(t, f.svc.SetVisualizers([]visualizer.Type{visualizer.TypeMultiCircle}))
	require.NoError(t, f.svc.Resize(400, 400))

	first := func() scene.Kind {
		var kind scene.Kind
		f.svc.Renderers()[0].Arena().View(func(shapes []scene.Shape) { kind = shapes[0].Kind() })
		return kind
	}
	assert.Equal(t, scene.KindCircle, first())

	f.bus.Publish(domain.NewTrackLoadedEvent(domain.Track{URI: "a.mp3", Cover: testCover(t)}))
	assert.Equal(t, scene.KindImage, first())
	assert.NotEmpty(t, f.svc.Viewport().Cover)
}

func TestVisualizerService_PlaybackEventsDriveLyrics(t *testing.T) {
	f := newVisualizerFixture(t)
	f.svc.Start()

	f.bus.Publish(domain.NewScriptReplacedEvent(domain.Script{
		{Start: 0, End: 2 * time.Second, Text: "hello"},
		{Start: 2 * time.Second, End: 4 * time.Second, Text: "world"},
	}, "test"))
	f.bus.Publish(domain.NewPlaybackStateChangedEvent(domain.StatePlaying, domain.StateStopped))
	assert.True(t, f.svc.Playing())

	f.bus.Publish(domain.NewTimeUpdateEvent(time.Second, 4*time.Second))
	require.NotNil(t, f.view.line)
	assert.Equal(t, "hello", f.view.line.Text)

	f.bus.Publish(domain.NewTimeUpdateEvent(3*time.Second, 4*time.Second))
	assert.Equal(t, []string{"hello", "world"}, f.view.shown)

	f.bus.Publish(domain.NewPlaybackStateChangedEvent(domain.StatePaused, domain.StatePlaying))
	assert.False(t, f.svc.Playing())
}

func TestVisualizerService_Shutdown(t *testing.T) {
	f := newVisualizerFixture(t)
	require.NoError(t, f.svc.Resize(400, 400))
	require.NoError(t, f.svc.SetVisualizers([]visualizer.Type{visualizer.TypeOutline}))
	f.svc.Start()
	f.svc.Start()
	assert.Equal(t, 4, f.bus.SubscriberCount())

	f.svc.Shutdown()

	assert.Equal(t, loop.StateIdle, f.driver.State())
	assert.Equal(t, 0, f.sched.Pending())
	assert.Equal(t, 0, f.bus.SubscriberCount())
	assert.False(t, f.svc.Renderers()[0].Mounted())
}
