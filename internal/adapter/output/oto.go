// Package output plays PCM streams on the system audio device.
package output

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/tejashwikalptaru/govis/internal/domain"
	"github.com/tejashwikalptaru/govis/internal/ports"
)

const (
	DefaultSampleRate = 44100
	DefaultBufferSize = 80 * time.Millisecond
)

// Options configures the device.
type Options struct {
	SampleRate int
	BufferSize time.Duration
}

// DefaultOptions returns 44.1kHz with a short device buffer.
func DefaultOptions() Options {
	return Options{SampleRate: DefaultSampleRate, BufferSize: DefaultBufferSize}
}

// Validate checks the sample rate and buffer size.
func (o Options) Validate() error {
	if o.SampleRate < 8000 || o.SampleRate > 192000 {
		return domain.NewConfigurationError("sampleRate", o.SampleRate, "must be between 8000 and 192000")
	}
	if o.BufferSize < 0 {
		return domain.NewConfigurationError("bufferSize", o.BufferSize, "must not be negative")
	}
	return nil
}

// Oto is an AudioOutput on an oto context. The device takes float32 mono,
// which is what media streams produce.
//
// oto allows one context per process, so there should be one Oto.
//
// Thread-safety: This implementation is thread-safe.
type Oto struct {
	ctx    *oto.Context
	rate   int
	logger *slog.Logger

	mu     sync.Mutex
	player *oto.Player
	volume float64
	closed bool
}

var _ ports.AudioOutput = (*Oto)(nil)

// NewOto opens the audio device and waits until it is ready.
func NewOto(opts Options, logger *slog.Logger) (*Oto, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   opts.SampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
		BufferSize:   opts.BufferSize,
	})
	if err != nil {
		return nil, domain.NewAudioEngineError("open device", "", err.Error(), err)
	}
	<-ready

	logger = logger.With("component", "oto_output")
	logger.Info("audio device ready", "sample_rate", opts.SampleRate, "buffer", opts.BufferSize)

	return &Oto{
		ctx:    ctx,
		rate:   opts.SampleRate,
		logger: logger,
		volume: 1.0,
	}, nil
}

// Connect plays stream, replacing the current one.
func (o *Oto) Connect(stream io.Reader) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return domain.NewAudioEngineError("connect", "", "output closed", domain.ErrContextClosed)
	}
	if stream == nil {
		return domain.NewValidationError("stream", nil, "must not be nil")
	}

	o.disconnectLocked()

	player := o.ctx.NewPlayer(stream)
	player.SetVolume(o.volume)
	player.Play()
	if err := player.Err(); err != nil {
		return domain.NewAudioEngineError("connect", "", fmt.Sprintf("player: %v", err), err)
	}
	o.player = player

	o.logger.Debug("stream connected")
	return nil
}

// Disconnect stops the current stream.
func (o *Oto) Disconnect() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.disconnectLocked()
	return nil
}

func (o *Oto) disconnectLocked() {
	if o.player == nil {
		return
	}
	o.player.Pause()
	o.player = nil
	o.logger.Debug("stream disconnected")
}

// SetVolume sets the player volume, clamped to [0, 1].
func (o *Oto) SetVolume(volume float64) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.volume = min(max(volume, 0), 1)
	if o.player != nil {
		o.player.SetVolume(o.volume)
	}
}

// SampleRate returns the device rate.
func (o *Oto) SampleRate() int {
	return o.rate
}

// Close stops playback and suspends the device.
func (o *Oto) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return nil
	}
	o.closed = true
	o.disconnectLocked()

	if err := o.ctx.Suspend(); err != nil {
		return domain.NewAudioEngineError("close device", "", err.Error(), err)
	}
	return nil
}
