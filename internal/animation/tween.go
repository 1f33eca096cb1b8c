package animation

import (
	"sync"
	"time"

	"fyne.io/fyne/v2"
)

// State is the lifecycle state of a Tween.
type State int

const (
	// StateIdle means the tween was never started or was stopped.
	StateIdle State = iota
	// StateRunning means time is flowing for the tween.
	StateRunning
	// StatePaused means elapsed time is frozen.
	StatePaused
	// StateFinished means a non-repeating tween reached its end.
	StateFinished
)

// Tween interpolates a value between From and To over Duration, after an
// optional Delay, optionally repeating forever.
//
// Thread-safety: all methods are safe for concurrent use.
type Tween struct {
	mu sync.Mutex

	clock    Clock
	duration time.Duration
	delay    time.Duration
	from     float64
	to       float64
	curve    fyne.AnimationCurve
	repeat   bool

	state     State
	startedAt time.Time
	pausedAt  time.Time
	pausedFor time.Duration
}

// Option configures a Tween.
type Option func(*Tween)

// WithDelay postpones the first iteration.
func WithDelay(d time.Duration) Option {
	return func(t *Tween) { t.delay = d }
}

// WithRange sets the interpolated range (default 0 to 1).
func WithRange(from, to float64) Option {
	return func(t *Tween) {
		t.from = from
		t.to = to
	}
}

// WithCurve sets the easing curve (default linear).
func WithCurve(curve fyne.AnimationCurve) Option {
	return func(t *Tween) {
		if curve != nil {
			t.curve = curve
		}
	}
}

// WithRepeat makes the tween loop forever.
func WithRepeat() Option {
	return func(t *Tween) { t.repeat = true }
}

// NewTween creates an idle tween. Call Start to begin.
func NewTween(clock Clock, duration time.Duration, opts ...Option) *Tween {
	if clock == nil {
		clock = SystemClock()
	}
	t := &Tween{
		clock:    clock,
		duration: duration,
		to:       1,
		curve:    fyne.AnimationLinear,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Start (re)starts the tween from the beginning, including its delay.
func (t *Tween) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state = StateRunning
	t.startedAt = t.clock.Now()
	t.pausedFor = 0
}

// StartPaused starts the tween with its clock frozen at zero.
func (t *Tween) StartPaused() {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.clock.Now()
	t.state = StatePaused
	t.startedAt = now
	t.pausedAt = now
	t.pausedFor = 0
}

// Pause freezes the tween. Pausing an idle, paused or finished tween is a no-op.
func (t *Tween) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != StateRunning {
		return
	}
	t.refreshLocked()
	if t.state != StateRunning {
		return
	}
	t.state = StatePaused
	t.pausedAt = t.clock.Now()
}

// Resume continues a paused tween from where it stopped.
func (t *Tween) Resume() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != StatePaused {
		return
	}
	t.pausedFor += t.clock.Now().Sub(t.pausedAt)
	t.state = StateRunning
}

// Stop returns the tween to idle; its value goes back to From.
func (t *Tween) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = StateIdle
}

// State returns the lifecycle state.
func (t *Tween) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.refreshLocked()
	return t.state
}

// Active reports whether the tween is running or paused.
func (t *Tween) Active() bool {
	s := t.State()
	return s == StateRunning || s == StatePaused
}

// Elapsed returns the effective running time since Start, including the delay.
func (t *Tween) Elapsed() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.elapsedLocked()
}

// Progress returns the linear progress of the current iteration in [0,1].
// Before the delay has passed it is 0.
func (t *Tween) Progress() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.progressLocked()
}

// Value returns the eased value for the current progress.
func (t *Tween) Value() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	p := t.progressLocked()
	eased := float64(t.curve(float32(p)))
	return t.from + (t.to-t.from)*eased
}

// Iteration returns the zero-based loop count, or -1 while the tween is idle
// or still waiting out its delay.
func (t *Tween) Iteration() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state == StateIdle {
		return -1
	}
	run := t.elapsedLocked() - t.delay
	if run < 0 {
		return -1
	}
	if t.duration <= 0 {
		return 0
	}
	iter := int(run / t.duration)
	if !t.repeat && iter > 0 {
		return 0
	}
	return iter
}

// Started reports whether the delay has passed.
func (t *Tween) Started() bool {
	return t.Iteration() >= 0
}

func (t *Tween) elapsedLocked() time.Duration {
	switch t.state {
	case StateIdle:
		return 0
	case StatePaused:
		return t.pausedAt.Sub(t.startedAt) - t.pausedFor
	default:
		return t.clock.Now().Sub(t.startedAt) - t.pausedFor
	}
}

func (t *Tween) progressLocked() float64 {
	if t.state == StateIdle {
		return 0
	}
	if t.state == StateFinished {
		return 1
	}

	run := t.elapsedLocked() - t.delay
	if run <= 0 {
		return 0
	}
	if t.duration <= 0 {
		return 1
	}
	if t.repeat {
		return float64(run%t.duration) / float64(t.duration)
	}
	if run >= t.duration {
		return 1
	}
	return float64(run) / float64(t.duration)
}

// refreshLocked moves a running one-shot tween to finished once it has ended.
func (t *Tween) refreshLocked() {
	if t.state != StateRunning || t.repeat {
		return
	}
	if t.elapsedLocked()-t.delay >= t.duration {
		t.state = StateFinished
	}
}
