package media

import (
	"encoding/binary"
	"io"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/tejashwikalptaru/govis/internal/animation"
	"github.com/tejashwikalptaru/govis/internal/domain"
)

// resyncThreshold is how far a stream may drift from the element position
// before it jumps back in step.
const resyncThreshold = 250 * time.Millisecond

// Element is a decoded track held in memory.
// Playback position follows the clock, so analysis and output read the same
// part of the track without sharing a device cursor.
//
// Thread-safety: This implementation is thread-safe.
type Element struct {
	*transport

	id     string
	track  domain.Track
	logger *slog.Logger

	mu  sync.RWMutex
	pcm *PCM
}

// NewElement wraps decoded audio as a media element.
func NewElement(track domain.Track, pcm *PCM, clock animation.Clock, logger *slog.Logger) *Element {
	if logger == nil {
		logger = slog.Default()
	}
	track.Duration = pcm.Duration()
	return &Element{
		transport: newTransport(clock, track.Duration),
		id:        track.URI,
		track:     track,
		pcm:       pcm,
		logger:    logger.With("component", "media", "uri", track.URI),
	}
}

// ID returns the element URI.
func (e *Element) ID() string { return e.id }

// Track returns the track metadata.
func (e *Element) Track() domain.Track { return e.track }

// SampleRate returns the decoded sample rate.
func (e *Element) SampleRate() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.pcm == nil {
		return 0
	}
	return e.pcm.SampleRate
}

// Window copies the samples leading up to the current position into dst.
func (e *Element) Window(dst []float64) int {
	_, pos := e.current()

	e.mu.RLock()
	defer e.mu.RUnlock()

	clear(dst)
	if e.pcm == nil || len(dst) == 0 {
		return 0
	}

	end := min(int(pos.Seconds()*float64(e.pcm.SampleRate)), len(e.pcm.Samples))
	start := end - len(dst)
	offset := 0
	if start < 0 {
		offset = -start
		start = 0
	}
	for i, s := range e.pcm.Samples[start:end] {
		dst[offset+i] = float64(s)
	}
	return end - start
}

// Play starts or resumes playback.
func (e *Element) Play() error {
	if e.closed() {
		return domain.NewAudioEngineError("play", e.id, "element closed", nil)
	}
	e.play()
	e.logger.Debug("playing")
	return nil
}

// Pause pauses playback.
func (e *Element) Pause() error {
	e.pause()
	return nil
}

// Stop stops playback and rewinds.
func (e *Element) Stop() error {
	e.stop()
	return nil
}

// Seek moves the playback position.
func (e *Element) Seek(position time.Duration) error {
	return e.seek(position)
}

// State returns the playback state.
func (e *Element) State() domain.PlaybackState {
	state, _ := e.current()
	return state
}

// CurrentTime returns the playback position.
func (e *Element) CurrentTime() time.Duration {
	_, pos := e.current()
	return pos
}

// Duration returns the track length.
func (e *Element) Duration() time.Duration {
	return e.duration
}

// Stream returns a float32 mono reader resampled to sampleRate.
func (e *Element) Stream(sampleRate int) io.Reader {
	return &stream{element: e, rate: sampleRate}
}

// Close drops the decoded samples.
func (e *Element) Close() error {
	e.stop()
	e.mu.Lock()
	e.pcm = nil
	e.mu.Unlock()
	return nil
}

func (e *Element) closed() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.pcm == nil
}

// stream resamples an element by linear interpolation. It keeps its own
// cursor in source samples and snaps to the element position when they
// drift apart, which covers seeks and pauses.
type stream struct {
	element *Element
	rate    int
	cursor  float64
}

func (s *stream) Read(p []byte) (int, error) {
	n := len(p) / 4
	if n == 0 {
		return 0, nil
	}

	state, pos := s.element.current()

	s.element.mu.RLock()
	defer s.element.mu.RUnlock()

	pcm := s.element.pcm
	if pcm == nil {
		return 0, io.EOF
	}
	if state != domain.StatePlaying || s.rate <= 0 {
		clear(p[:n*4])
		s.cursor = pos.Seconds() * float64(pcm.SampleRate)
		return n * 4, nil
	}

	expected := pos.Seconds() * float64(pcm.SampleRate)
	if math.Abs(s.cursor-expected) > resyncThreshold.Seconds()*float64(pcm.SampleRate) {
		s.cursor = expected
	}

	step := float64(pcm.SampleRate) / float64(s.rate)
	last := len(pcm.Samples) - 1
	for i := range n {
		var v float32
		idx := int(s.cursor)
		if idx >= 0 && idx < last {
			frac := float32(s.cursor - float64(idx))
			v = pcm.Samples[idx]*(1-frac) + pcm.Samples[idx+1]*frac
		} else if idx == last {
			v = pcm.Samples[idx]
		}
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(v))
		s.cursor += step
	}
	return n * 4, nil
}
