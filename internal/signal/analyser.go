package signal

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"

	"github.com/tejashwikalptaru/govis/internal/domain"
)

// Analyser defaults, matching a browser AnalyserNode.
const (
	DefaultFFTSize   = 256
	DefaultSmoothing = 0.8
	DefaultMinDB     = -100.0
	DefaultMaxDB     = -30.0
)

// AnalyserOption customizes an Analyser.
type AnalyserOption func(*Analyser)

// WithFFTSize sets the transform size. It must be a power of two in [32, 32768].
func WithFFTSize(n int) AnalyserOption {
	return func(a *Analyser) { a.fftSize = n }
}

// WithSmoothing sets the time smoothing constant in [0, 1].
func WithSmoothing(tau float64) AnalyserOption {
	return func(a *Analyser) { a.smoothing = tau }
}

// WithDecibelRange sets the range mapped onto 0..255.
func WithDecibelRange(minDB, maxDB float64) AnalyserOption {
	return func(a *Analyser) {
		a.minDB = minDB
		a.maxDB = maxDB
	}
}

// Analyser turns a window of time-domain samples into byte frequency data.
//
// Each call applies a Blackman window, takes a real FFT, blends the
// magnitudes with the previous frame and maps decibels linearly onto 0..255.
// Not safe for concurrent use; the Source serializes access.
type Analyser struct {
	fftSize   int
	smoothing float64
	minDB     float64
	maxDB     float64

	fft      *fourier.FFT
	shape    []float64 // Blackman coefficients
	windowed []float64
	coeffs   []complex128
	smoothed []float64
}

// NewAnalyser creates an analyser with the browser defaults unless overridden.
func NewAnalyser(opts ...AnalyserOption) (*Analyser, error) {
	a := &Analyser{
		fftSize:   DefaultFFTSize,
		smoothing: DefaultSmoothing,
		minDB:     DefaultMinDB,
		maxDB:     DefaultMaxDB,
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.fftSize < 32 || a.fftSize > 32768 || a.fftSize&(a.fftSize-1) != 0 {
		return nil, domain.NewConfigurationError("fftSize", a.fftSize, "must be a power of two in [32, 32768]")
	}
	if a.smoothing < 0 || a.smoothing > 1 {
		return nil, domain.NewConfigurationError("smoothing", a.smoothing, "must be in [0, 1]")
	}
	if a.minDB >= a.maxDB {
		return nil, domain.NewConfigurationError("decibelRange", [2]float64{a.minDB, a.maxDB}, "min must be below max")
	}

	a.fft = fourier.NewFFT(a.fftSize)
	a.shape = make([]float64, a.fftSize)
	for i := range a.shape {
		a.shape[i] = 1
	}
	window.Blackman(a.shape)

	a.windowed = make([]float64, a.fftSize)
	a.coeffs = make([]complex128, a.fftSize/2+1)
	a.smoothed = make([]float64, a.fftSize/2)
	return a, nil
}

// FFTSize returns the number of time-domain samples consumed per frame.
func (a *Analyser) FFTSize() int {
	return a.fftSize
}

// FrequencyBinCount returns the snapshot length (half the FFT size).
func (a *Analyser) FrequencyBinCount() int {
	return a.fftSize / 2
}

// ByteFrequencyData analyses samples (len == FFTSize) into dst (len == FrequencyBinCount).
func (a *Analyser) ByteFrequencyData(samples []float64, dst []uint8) {
	for i := range a.windowed {
		var s float64
		if i < len(samples) {
			s = samples[i]
		}
		a.windowed[i] = s * a.shape[i]
	}

	a.coeffs = a.fft.Coefficients(a.coeffs, a.windowed)

	scale := 255 / (a.maxDB - a.minDB)
	n := float64(a.fftSize)
	for k := 0; k < len(a.smoothed) && k < len(dst); k++ {
		mag := cmplx.Abs(a.coeffs[k]) / n
		v := a.smoothing*a.smoothed[k] + (1-a.smoothing)*mag
		if math.IsNaN(v) || math.IsInf(v, 0) {
			v = 0
		}
		a.smoothed[k] = v

		db := 20 * math.Log10(v)
		b := math.Floor(scale * (db - a.minDB))
		switch {
		case b < 0 || math.IsNaN(b):
			dst[k] = 0
		case b > 255:
			dst[k] = 255
		default:
			dst[k] = uint8(b)
		}
	}
}

// Reset forgets the smoothing history.
func (a *Analyser) Reset() {
	clear(a.smoothed)
}
