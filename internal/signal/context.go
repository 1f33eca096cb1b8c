// Package signal implements the audio analysis graph: one process-wide
// Context, the Analyser that turns samples into byte frequency data, and the
// Source that binds a media element and hands out snapshots.
package signal

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/tejashwikalptaru/govis/internal/domain"
	"github.com/tejashwikalptaru/govis/internal/ports"
)

// State is the lifecycle state of a Context.
type State int

const (
	// StateSuspended is the initial state. Analysis reports silence.
	StateSuspended State = iota

	// StateRunning is entered on the first user interaction.
	StateRunning

	// StateClosed is terminal.
	StateClosed
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateSuspended:
		return "suspended"
	case StateRunning:
		return "running"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

var (
	sharedOnce sync.Once
	shared     *Context
)

// Shared returns the process-wide analysis context, creating it on first use.
// Every Source in the application must be built on this context.
func Shared() *Context {
	sharedOnce.Do(func() {
		shared = NewContext(slog.Default())
	})
	return shared
}

// Context is the analysis graph: it owns the single media-element edge and
// the optional audio output that element is routed to.
//
// Thread-safety: all methods are safe for concurrent use.
type Context struct {
	mu      sync.Mutex
	state   State
	output  ports.AudioOutput
	element ports.MediaElement
	gain    float64
	logger  *slog.Logger
}

// NewContext creates an isolated context. Production code uses Shared.
func NewContext(logger *slog.Logger) *Context {
	if logger == nil {
		logger = slog.Default()
	}
	return &Context{
		state:  StateSuspended,
		gain:   1.0,
		logger: logger.With("component", "signal"),
	}
}

// State returns the current lifecycle state.
func (c *Context) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Resume moves a suspended context to running. Later calls are no-ops.
func (c *Context) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateSuspended {
		return
	}
	c.state = StateRunning
	c.logger.Info("analysis context resumed")
}

// AttachOutput sets the device the bound element is routed to.
// The current gain is applied and any bound element is reconnected.
func (c *Context) AttachOutput(out ports.AudioOutput) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateClosed {
		return domain.ErrContextClosed
	}
	if c.output != nil {
		_ = c.output.Disconnect()
	}

	c.output = out
	if out == nil {
		return nil
	}
	out.SetVolume(c.gain)
	if c.element != nil {
		return c.routeLocked(c.element)
	}
	return nil
}

// Connections returns the number of media elements currently connected (0 or 1).
func (c *Context) Connections() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.element == nil {
		return 0
	}
	return 1
}

// Element returns the connected media element, or nil.
func (c *Context) Element() ports.MediaElement {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.element
}

// connect replaces the current edge with el. The old edge is always torn
// down first so at most one element is ever connected.
func (c *Context) connect(el ports.MediaElement) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateClosed {
		return domain.ErrContextClosed
	}
	if c.element == el {
		return nil
	}

	c.disconnectLocked()
	c.element = el
	c.logger.Debug("media element connected", "id", el.ID())

	if c.output != nil {
		return c.routeLocked(el)
	}
	return nil
}

func (c *Context) disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disconnectLocked()
}

func (c *Context) disconnectLocked() {
	if c.element == nil {
		return
	}
	if c.output != nil {
		if err := c.output.Disconnect(); err != nil {
			c.logger.Warn("output disconnect failed", "error", err)
		}
	}
	c.logger.Debug("media element disconnected", "id", c.element.ID())
	c.element = nil
}

func (c *Context) routeLocked(el ports.MediaElement) error {
	if err := c.output.Connect(el.Stream(c.output.SampleRate())); err != nil {
		return domain.NewAudioEngineError("connect", el.ID(), "failed to route element to output", err)
	}
	return nil
}

func (c *Context) setGain(v float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gain = v
	if c.output != nil {
		c.output.SetVolume(v)
	}
}

// Gain returns the output gain.
func (c *Context) Gain() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gain
}

// Close disconnects everything and releases the output.
func (c *Context) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateClosed {
		return nil
	}
	c.disconnectLocked()
	c.state = StateClosed

	if c.output != nil {
		if err := c.output.Close(); err != nil {
			return fmt.Errorf("close output: %w", err)
		}
	}
	return nil
}
