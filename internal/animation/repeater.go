package animation

import (
	"sync"
	"sync/atomic"
)

// Repeater runs a callback at every iteration boundary of a repeating tween.
// Callers poll it once per frame; cancellation is checked at the next boundary,
// after which the tween is stopped and no further callbacks run.
type Repeater struct {
	tween       *Tween
	onIteration func(iteration int)

	mu       sync.Mutex
	last     int
	canceled atomic.Bool
}

// NewRepeater wraps a repeating tween. onIteration may be nil.
func NewRepeater(tween *Tween, onIteration func(iteration int)) *Repeater {
	return &Repeater{
		tween:       tween,
		onIteration: onIteration,
		last:        -1,
	}
}

// Tween returns the wrapped tween.
func (r *Repeater) Tween() *Tween {
	return r.tween
}

// Poll fires onIteration if a new iteration began since the previous poll.
// It returns true when a boundary was crossed.
func (r *Repeater) Poll() bool {
	iter := r.tween.Iteration()
	if iter < 0 {
		return false
	}

	r.mu.Lock()
	if iter == r.last {
		r.mu.Unlock()
		return false
	}
	if r.canceled.Load() {
		r.mu.Unlock()
		r.tween.Stop()
		return false
	}
	r.last = iter
	r.mu.Unlock()

	if r.onIteration != nil {
		r.onIteration(iter)
	}
	return true
}

// Cancel stops the loop at the next iteration boundary.
func (r *Repeater) Cancel() {
	r.canceled.Store(true)
}

// Canceled reports whether Cancel was called.
func (r *Repeater) Canceled() bool {
	return r.canceled.Load()
}

// Reset forgets the last seen iteration and clears cancellation,
// so the next Poll after a restart fires again.
func (r *Repeater) Reset() {
	r.mu.Lock()
	r.last = -1
	r.mu.Unlock()
	r.canceled.Store(false)
}
