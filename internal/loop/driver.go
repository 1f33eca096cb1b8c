// Package loop implements the render loop driver: once per frame it polls the
// signal source and hands the same snapshot to every registered sink.
package loop

import (
	"log/slog"
	"sync"
	"time"

	"github.com/tejashwikalptaru/govis/internal/domain"
	"github.com/tejashwikalptaru/govis/internal/ports"
)

// Poller produces one frequency snapshot per call.
type Poller interface {
	Poll() domain.FrequencySnapshot
}

// Sink receives every frame's snapshot. The slice is only valid during the call.
type Sink interface {
	OnData(snapshot domain.FrequencySnapshot)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(snapshot domain.FrequencySnapshot)

// OnData implements Sink.
func (f SinkFunc) OnData(snapshot domain.FrequencySnapshot) { f(snapshot) }

// SinkID identifies a registration.
type SinkID uint64

// State is the driver state.
type State int

const (
	// StateIdle means no frame is pending.
	StateIdle State = iota

	// StateRunning means exactly one frame is pending at any time.
	StateRunning
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	if s == StateRunning {
		return "running"
	}
	return "idle"
}

type registration struct {
	id   SinkID
	sink Sink
}

// Driver pulls snapshots from a Poller at the scheduler's frame rate.
// There is no throttle of its own; the scheduler decides the cadence.
//
// Thread-safety: all methods are safe for concurrent use, including from
// inside a sink.
type Driver struct {
	mu        sync.Mutex
	source    Poller
	scheduler ports.FrameScheduler
	logger    *slog.Logger

	sinks  []registration
	nextID SinkID

	state   State
	pending ports.FrameID
	gen     uint64 // bumped on every Start so stale callbacks are ignored

	latest domain.FrequencySnapshot
	frames uint64
}

// NewDriver creates an idle driver.
func NewDriver(source Poller, scheduler ports.FrameScheduler, logger *slog.Logger) *Driver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Driver{
		source:    source,
		scheduler: scheduler,
		logger:    logger.With("component", "loop"),
	}
}

// Register adds a sink. Sinks are called in registration order.
func (d *Driver) Register(s Sink) SinkID {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.nextID++
	d.sinks = append(d.sinks, registration{id: d.nextID, sink: s})
	return d.nextID
}

// Unregister removes a sink. Unknown IDs are ignored.
func (d *Driver) Unregister(id SinkID) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i, r := range d.sinks {
		if r.id == id {
			d.sinks = append(d.sinks[:i:i], d.sinks[i+1:]...)
			return
		}
	}
}

// Start moves Idle to Running and requests the first frame.
// Calling Start while running is a no-op.
func (d *Driver) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state == StateRunning {
		return
	}
	d.state = StateRunning
	d.gen++
	gen := d.gen
	d.pending = d.scheduler.RequestFrame(func(now time.Time) { d.tick(gen, now) })
	d.logger.Debug("render loop started")
}

// Stop moves Running to Idle and cancels the pending frame.
func (d *Driver) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state == StateIdle {
		return
	}
	d.state = StateIdle
	d.scheduler.CancelFrame(d.pending)
	d.pending = 0
	d.logger.Debug("render loop stopped", "frames", d.frames)
}

// State returns the current state.
func (d *Driver) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Latest returns the snapshot of the most recent tick (nil before the first).
func (d *Driver) Latest() domain.FrequencySnapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.latest
}

// Frames returns the number of ticks processed.
func (d *Driver) Frames() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.frames
}

func (d *Driver) tick(gen uint64, _ time.Time) {
	d.mu.Lock()
	if d.state != StateRunning || d.gen != gen {
		d.mu.Unlock()
		return
	}
	snapshot := d.source.Poll()
	d.latest = snapshot
	d.frames++
	sinks := make([]Sink, len(d.sinks))
	for i, r := range d.sinks {
		sinks[i] = r.sink
	}
	d.mu.Unlock()

	for _, s := range sinks {
		s.OnData(snapshot)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state == StateRunning && d.gen == gen {
		d.pending = d.scheduler.RequestFrame(func(now time.Time) { d.tick(gen, now) })
	}
}
