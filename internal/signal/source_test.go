package signal

import (
	"bytes"
	"errors"
	"io"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/govis/internal/domain"
	"github.com/tejashwikalptaru/govis/internal/logger"
)

// toneElement is a media element that always renders a pure sine at bin k.
type toneElement struct {
	id  string
	bin int
}

func (e *toneElement) ID() string { return e.id }
func (e *toneElement) Track() domain.Track { return domain.Track{URI: e.id} }
func (e *toneElement) SampleRate() int { return 44100 }
func (e *toneElement) Play() error { return nil }
func (e *toneElement) Pause() error { return nil }
func (e *toneElement) Stop() error { return nil }
func (e *toneElement) Seek(time.Duration) error { return nil }
func (e *toneElement) State() domain.PlaybackState { return domain.StatePlaying }
func (e *toneElement) CurrentTime() time.Duration { return 0 }
func (e *toneElement) Duration() time.Duration { return time.Minute }
func (e *toneElement) Stream(int) io.Reader { return bytes.NewReader(nil) }
func (e *toneElement) Close() error { return nil }

func (e *toneElement) Window(dst []float64) int {
	n := float64(len(dst))
	for i := range dst {
		dst[i] = math.Sin(2 * math.Pi * float64(e.bin) * float64(i) / n)
	}
	return len(dst)
}

type fakeOutput struct {
	mu          sync.Mutex
	volume      float64
	connects    int
	disconnects int
	live        bool
	failNext    error
}

func (o *fakeOutput) Connect(io.Reader) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.failNext != nil {
		err := o.failNext
		o.failNext = nil
		return err
	}
	o.connects++
	o.live = true
	return nil
}

func (o *fakeOutput) Disconnect() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.live {
		o.disconnects++
	}
	o.live = false
	return nil
}

func (o *fakeOutput) SetVolume(v float64) {
	o.mu.Lock()
	o.volume = v
	o.mu.Unlock()
}

func (o *fakeOutput) SampleRate() int { return 44100 }
func (o *fakeOutput) Close() error { return nil }

func newRunningSource(t *testing.T) (*Source, *Context) {
	t.Helper()
	ctx := NewContext(logger.NewTestLogger())
	ctx.Resume()
	src, err := NewSource(ctx)
	require.NoError(t, err)
	return src, ctx
}

func TestShared_ReturnsSameContext(t *testing.T) {
	assert.Same(t, Shared(), Shared())
}

func TestContext_ResumeOnce(t *testing.T) {
	ctx := NewContext(logger.NewTestLogger())
	assert.Equal(t, StateSuspended, ctx.State())

	ctx.Resume()
	ctx.Resume()
	assert.Equal(t, StateRunning, ctx.State())
}

func TestSource_SnapshotLength(t *testing.T) {
	src, _ := newRunningSource(t)
	assert.Equal(t, 128, src.BinCount())
	assert.Len(t, src.Poll(), 128)
}

func TestSource_RebindKeepsSingleConnection(t *testing.T) {
	src, ctx := newRunningSource(t)
	out := &fakeOutput{}
	require.NoError(t, ctx.AttachOutput(out))

	a := &toneElement{id: "a", bin: 4}
	b := &toneElement{id: "b", bin: 8}

	require.NoError(t, src.Bind(a))
	require.NoError(t, src.Bind(b))
	assert.Equal(t, 1, ctx.Connections())
	assert.Same(t, b, ctx.Element())
	assert.Equal(t, 2, out.connects)
	assert.Equal(t, 1, out.disconnects)

	// Rebinding the same element does nothing.
	require.NoError(t, src.Bind(b))
	assert.Equal(t, 2, out.connects)
	assert.Equal(t, 1, ctx.Connections())
}

func TestSource_BindNil(t *testing.T) {
	src, _ := newRunningSource(t)
	var vErr *domain.ValidationError
	assert.ErrorAs(t, src.Bind(nil), &vErr)
}

func TestSource_BindSurvivesOutputFailure(t *testing.T) {
	src, ctx := newRunningSource(t)
	out := &fakeOutput{failNext: errors.New("device busy")}
	require.NoError(t, ctx.AttachOutput(out))

	el := &toneElement{id: "a", bin: 4}
	require.NoError(t, src.Bind(el))
	assert.Equal(t, 1, ctx.Connections())
	assert.NotZero(t, src.Poll()[4])
}

func TestSource_SuspendedReportsZeros(t *testing.T) {
	ctx := NewContext(logger.NewTestLogger())
	src, err := NewSource(ctx)
	require.NoError(t, err)
	require.NoError(t, src.Bind(&toneElement{id: "a", bin: 10}))

	for _, v := range src.Poll() {
		require.Zero(t, v)
	}

	ctx.Resume()
	assert.Equal(t, uint8(255), src.Poll()[10])
}

func TestSource_PollRefreshesInPlace(t *testing.T) {
	src, _ := newRunningSource(t)
	require.NoError(t, src.Bind(&toneElement{id: "a", bin: 10}))

	first := src.Poll()
	second := src.Poll()
	assert.Same(t, &first[0], &second[0])
}

func TestSource_SinePeak(t *testing.T) {
	src, _ := newRunningSource(t)
	require.NoError(t, src.Bind(&toneElement{id: "a", bin: 10}))

	snap := src.Poll()
	assert.Equal(t, uint8(255), snap[10])
	assert.Less(t, snap[60], uint8(128))
}

func TestSource_GainDoesNotAffectAnalysis(t *testing.T) {
	src, ctx := newRunningSource(t)
	out := &fakeOutput{}
	require.NoError(t, ctx.AttachOutput(out))
	require.NoError(t, src.Bind(&toneElement{id: "a", bin: 10}))

	loud := src.Poll().Clone()

	// A fresh source gives the same first frame regardless of gain.
	src2, err := NewSource(ctx)
	require.NoError(t, err)
	require.NoError(t, src2.SetGain(0))
	require.NoError(t, src2.Bind(&toneElement{id: "b", bin: 10}))

	assert.Equal(t, loud, src2.Poll().Clone())
	assert.InDelta(t, 0.0, out.volume, 1e-9)
}

func TestSource_SetGainValidation(t *testing.T) {
	src, ctx := newRunningSource(t)

	var vErr *domain.ValidationError
	assert.ErrorAs(t, src.SetGain(1.5), &vErr)
	assert.ErrorAs(t, src.SetGain(-0.1), &vErr)

	require.NoError(t, src.SetGain(0.4))
	assert.InDelta(t, 0.4, ctx.Gain(), 1e-9)
}

func TestSource_Release(t *testing.T) {
	src, ctx := newRunningSource(t)
	require.NoError(t, src.Bind(&toneElement{id: "a", bin: 10}))

	src.Release()
	assert.Equal(t, 0, ctx.Connections())
	assert.Nil(t, src.Element())
	assert.Zero(t, src.Poll()[10])

	src.Release()
}

func TestContext_ClosedRejectsBind(t *testing.T) {
	src, ctx := newRunningSource(t)
	require.NoError(t, ctx.Close())
	assert.ErrorIs(t, src.Bind(&toneElement{id: "a"}), domain.ErrContextClosed)
}

func TestNewAnalyser_Validation(t *testing.T) {
	_, err := NewAnalyser(WithFFTSize(100))
	assert.True(t, domain.IsConfigurationError(err))

	_, err = NewAnalyser(WithSmoothing(2))
	assert.True(t, domain.IsConfigurationError(err))

	_, err = NewAnalyser(WithDecibelRange(-30, -100))
	assert.True(t, domain.IsConfigurationError(err))

	a, err := NewAnalyser(WithFFTSize(512))
	require.NoError(t, err)
	assert.Equal(t, 256, a.FrequencyBinCount())
}

func TestAnalyser_SilenceIsZero(t *testing.T) {
	a, err := NewAnalyser()
	require.NoError(t, err)

	dst := make([]uint8, a.FrequencyBinCount())
	a.ByteFrequencyData(make([]float64, a.FFTSize()), dst)
	for _, v := range dst {
		require.Zero(t, v)
	}
}
