package media

import (
	"log/slog"
	"math"
	"path/filepath"
	"sync"
	"time"

	"github.com/tejashwikalptaru/govis/internal/animation"
	"github.com/tejashwikalptaru/govis/internal/domain"
	"github.com/tejashwikalptaru/govis/internal/ports"
)

const (
	// MockSampleRate is the rate of synthesized tracks.
	MockSampleRate = 22050

	// MockDuration is the default length of synthesized tracks.
	MockDuration = 30 * time.Second
)

// MockLoader opens synthesized tracks instead of reading files.
// It is used for testing services and for running without audio files.
//
// Thread-safety: This implementation is thread-safe.
type MockLoader struct {
	clock  animation.Clock
	logger *slog.Logger

	mu       sync.Mutex
	duration time.Duration
	opened   []string

	// Behavior configuration (for testing error scenarios)
	failLoad bool
}

var _ ports.MediaLoader = (*MockLoader)(nil)

// NewMockLoader creates a loader producing MockDuration tracks.
func NewMockLoader(clock animation.Clock, logger *slog.Logger) *MockLoader {
	if logger == nil {
		logger = slog.Default()
	}
	return &MockLoader{
		clock:    clock,
		logger:   logger.With("component", "mock_loader"),
		duration: MockDuration,
	}
}

// SetFailLoad configures the mock to fail opening tracks (for testing).
func (m *MockLoader) SetFailLoad(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failLoad = fail
}

// SetDuration sets the length of tracks opened afterwards.
func (m *MockLoader) SetDuration(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.duration = d
}

// Opened returns the URIs opened so far.
func (m *MockLoader) Opened() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.opened...)
}

// Open synthesizes a track for uri.
func (m *MockLoader) Open(uri string) (ports.MediaElement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if uri == "" {
		return nil, domain.ErrInvalidURI
	}
	if m.failLoad {
		return nil, domain.NewAudioEngineError("fetch", uri, "mock load failed", nil)
	}

	m.opened = append(m.opened, uri)

	name := filepath.Base(uri)
	track := domain.Track{
		URI:    uri,
		Title:  name[:len(name)-len(filepath.Ext(name))],
		Artist: "Mock Artist",
		Album:  "Mock Album",
	}
	return NewElement(track, Synthesize(m.duration, MockSampleRate), m.clock, m.logger), nil
}

// Synthesize renders a test signal: a low chord whose level pulses twice a
// second, with a tone sweeping up through the spectrum every eight seconds.
func Synthesize(d time.Duration, sampleRate int) *PCM {
	n := int(d.Seconds() * float64(sampleRate))
	out := make([]float32, n)

	chord := []float64{110, 138.6, 164.8}
	var sweepPhase float64
	for i := range out {
		t := float64(i) / float64(sampleRate)

		beat := 0.5 + 0.5*math.Cos(2*math.Pi*2*t)
		var v float64
		for _, f := range chord {
			v += math.Sin(2*math.Pi*f*t) * 0.2 * beat
		}

		sweep := 200 * math.Pow(2, 5*math.Mod(t, 8)/8)
		sweepPhase += 2 * math.Pi * sweep / float64(sampleRate)
		v += math.Sin(sweepPhase) * 0.25

		out[i] = float32(v)
	}
	return &PCM{Samples: out, SampleRate: sampleRate}
}
