package signal

import (
	"errors"
	"fmt"
	"sync"

	"github.com/tejashwikalptaru/govis/internal/domain"
	"github.com/tejashwikalptaru/govis/internal/ports"
)

// Source binds one media element to the analysis context and samples it.
//
// The snapshot buffer is allocated once and refreshed in place by every Poll,
// so its length never changes for the lifetime of the Source.
//
// Thread-safety: all methods are safe for concurrent use.
type Source struct {
	ctx      *Context
	analyser *Analyser

	mu      sync.Mutex
	element ports.MediaElement
	samples []float64
	buf     domain.FrequencySnapshot
}

// NewSource creates a Source on ctx. A nil ctx means Shared().
func NewSource(ctx *Context, opts ...AnalyserOption) (*Source, error) {
	if ctx == nil {
		ctx = Shared()
	}
	analyser, err := NewAnalyser(opts...)
	if err != nil {
		return nil, fmt.Errorf("create analyser: %w", err)
	}

	return &Source{
		ctx:      ctx,
		analyser: analyser,
		samples:  make([]float64, analyser.FFTSize()),
		buf:      make(domain.FrequencySnapshot, analyser.FrequencyBinCount()),
	}, nil
}

// Context returns the analysis context the source is built on.
func (s *Source) Context() *Context {
	return s.ctx
}

// BinCount returns the snapshot length.
func (s *Source) BinCount() int {
	return len(s.buf)
}

// Bind connects el, disconnecting any previously bound element first.
// Binding the element that is already bound is a no-op.
func (s *Source) Bind(el ports.MediaElement) error {
	if el == nil {
		return domain.NewValidationError("element", nil, "media element is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.element == el {
		return nil
	}

	if err := s.ctx.connect(el); err != nil {
		var engineErr *domain.AudioEngineError
		if !errors.As(err, &engineErr) {
			return fmt.Errorf("bind %s: %w", el.ID(), err)
		}
		// Output routing failed; analysis still runs on the new edge.
		s.ctx.logger.Error("audio output unavailable", "id", el.ID(), "error", err)
	}

	s.element = el
	s.analyser.Reset()
	return nil
}

// Element returns the bound media element, or nil.
func (s *Source) Element() ports.MediaElement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.element
}

// Poll refreshes and returns the shared snapshot buffer.
// While the context is not running, or nothing is bound, the snapshot is all zeros.
func (s *Source) Poll() domain.FrequencySnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.element == nil || s.ctx.State() != StateRunning {
		clear(s.buf)
		return s.buf
	}

	s.element.Window(s.samples)
	s.analyser.ByteFrequencyData(s.samples, s.buf)
	return s.buf
}

// SetGain sets the audible volume. Analysis data is unaffected.
func (s *Source) SetGain(v float64) error {
	if v < 0 || v > 1 {
		return domain.NewValidationError("gain", v, "must be between 0.0 and 1.0")
	}
	s.ctx.setGain(v)
	return nil
}

// Release disconnects the bound element, if any.
func (s *Source) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.element == nil {
		return
	}
	if s.ctx.Element() == s.element {
		s.ctx.disconnect()
	}
	s.element = nil
	clear(s.buf)
}
